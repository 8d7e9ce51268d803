package session

import (
	"fmt"

	"contextly/internal/model"
)

// State is the user visible state of a session.
type State int

const (
	NoDocuments State = iota
	HasDocuments
)

func (s State) String() string {
	if s == HasDocuments {
		return "has_documents"
	}
	return "no_documents"
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(text []byte) error {
	switch string(text) {
	case "no_documents":
		*s = NoDocuments
	case "has_documents":
		*s = HasDocuments
	default:
		return fmt.Errorf("unknown session state %q", text)
	}
	return nil
}

// PairView is a ledger entry with its selection mark.
type PairView struct {
	Index    int  `json:"index"`
	Selected bool `json:"selected"`
	model.QAPair
}

// View is a consistent read of a whole session.
type View struct {
	State     State                  `json:"state"`
	Files     []model.FileDescriptor `json:"files"`
	Pairs     []PairView             `json:"pairs"`
	CanAsk    bool                   `json:"can_ask"`
	CanExport bool                   `json:"can_export"`
}

// State reports whether any documents are attached.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *Session) stateLocked() State {
	if s.docs.Len() == 0 {
		return NoDocuments
	}
	return HasDocuments
}

// CanAsk reports whether asking and selecting are offered.
func (s *Session) CanAsk() bool {
	return s.State() == HasDocuments
}

// CanExport reports whether at least one pair is selected.
func (s *Session) CanExport() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection.AnySelected()
}

func (s *Session) Files() []model.FileDescriptor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.docs.List()
}

func (s *Session) Pairs() []model.QAPair {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.All()
}

// Pair returns the ledger entry at index.
func (s *Session) Pair(index int) (model.QAPair, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Get(index)
}

func (s *Session) IsSelected(index int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection.IsSelected(index)
}

// View returns files, pairs and flags read under a single lock.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	pairs := s.ledger.All()
	views := make([]PairView, len(pairs))
	for i, p := range pairs {
		views[i] = PairView{Index: i, Selected: s.selection.IsSelected(i), QAPair: p}
	}

	state := s.stateLocked()
	return View{
		State:     state,
		Files:     s.docs.List(),
		Pairs:     views,
		CanAsk:    state == HasDocuments,
		CanExport: s.selection.AnySelected(),
	}
}
