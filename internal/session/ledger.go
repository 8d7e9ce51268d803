package session

import (
	"fmt"

	"contextly/internal/model"
)

// Ledger is the append-only list of question/answer pairs of a session.
// Indices are assigned in append order and never reused.
type Ledger struct {
	pairs []model.QAPair
}

// Append stores a copy of pair at the end and returns its index.
func (l *Ledger) Append(pair model.QAPair) int {
	l.pairs = append(l.pairs, pair.Clone())
	return len(l.pairs) - 1
}

// Get returns the pair stored at index.
func (l *Ledger) Get(index int) (model.QAPair, error) {
	if !l.valid(index) {
		return model.QAPair{}, fmt.Errorf("get %d of %d: %w", index, len(l.pairs), model.ErrIndexOutOfRange)
	}
	return l.pairs[index].Clone(), nil
}

// All returns copies of every pair in ledger order.
func (l *Ledger) All() []model.QAPair {
	out := make([]model.QAPair, len(l.pairs))
	for i, p := range l.pairs {
		out[i] = p.Clone()
	}
	return out
}

func (l *Ledger) Len() int {
	return len(l.pairs)
}

func (l *Ledger) valid(index int) bool {
	return index >= 0 && index < len(l.pairs)
}
