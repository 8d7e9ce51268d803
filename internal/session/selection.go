package session

import (
	"fmt"
	"sort"

	"contextly/internal/model"
)

// Selection marks ledger indices for export. A missing index reads as not selected.
type Selection struct {
	ledger *Ledger
	marks  map[int]bool
}

// NewSelection returns an empty selection validated against ledger.
func NewSelection(ledger *Ledger) *Selection {
	return &Selection{ledger: ledger, marks: make(map[int]bool)}
}

// Toggle flips the mark for index and returns the new value.
func (s *Selection) Toggle(index int) (bool, error) {
	if !s.ledger.valid(index) {
		return false, fmt.Errorf("toggle %d of %d: %w", index, s.ledger.Len(), model.ErrIndexOutOfRange)
	}
	s.marks[index] = !s.marks[index]
	return s.marks[index], nil
}

func (s *Selection) IsSelected(index int) bool {
	return s.marks[index]
}

// AnySelected reports whether at least one index is marked.
func (s *Selection) AnySelected() bool {
	for _, v := range s.marks {
		if v {
			return true
		}
	}
	return false
}

// Indices returns the selected indices in ascending order.
func (s *Selection) Indices() []int {
	out := make([]int, 0, len(s.marks))
	for i, v := range s.marks {
		if v {
			out = append(out, i)
		}
	}
	sort.Ints(out)
	return out
}

// Snapshot copies the current marks.
func (s *Selection) Snapshot() map[int]bool {
	out := make(map[int]bool, len(s.marks))
	for i, v := range s.marks {
		out[i] = v
	}
	return out
}
