package model

import "errors"

// Errors shared by the session core, its collaborators and the transport layers.
var (
	// ErrNetwork indicates an upload or ask call to the backend failed.
	ErrNetwork = errors.New("backend request failed")

	// ErrIndexOutOfRange indicates a ledger index outside [0, length).
	ErrIndexOutOfRange = errors.New("ledger index out of range")

	// ErrRender indicates the export document could not be serialized.
	ErrRender = errors.New("export rendering failed")

	// ErrNoDocuments indicates an operation that is only offered once documents are attached.
	ErrNoDocuments = errors.New("no documents uploaded")

	// ErrNothingSelected indicates an export with no selected pairs.
	ErrNothingSelected = errors.New("no question/answer pairs selected")

	// ErrBlankQuestion indicates an empty or whitespace-only question.
	ErrBlankQuestion = errors.New("question must not be blank")

	// ErrSessionNotFound indicates an unknown or expired session id.
	ErrSessionNotFound = errors.New("session not found")
)
