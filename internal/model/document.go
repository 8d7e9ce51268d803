package model

// FileDescriptor identifies a document attached to a session.
// Identity is name based; no file content is kept once the backend has acknowledged the upload.
// DocumentID and Chunks are filled from the backend acknowledgment when it reports them.
type FileDescriptor struct {
	Name       string `json:"name"`
	DocumentID int    `json:"document_id,omitempty"`
	Chunks     int    `json:"chunks,omitempty"`
}

// Source references a backend chunk that contributed to an answer.
type Source struct {
	ChunkID int     `json:"chunk_id"`
	Score   float64 `json:"score"`
}

// QAPair is a question and the answer the backend produced for it.
// Pairs are immutable once appended to a ledger; their ledger index is their identity.
type QAPair struct {
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Score    float64  `json:"score,omitempty"`
	Sources  []Source `json:"sources,omitempty"`
}

// Clone returns a copy that shares no memory with p.
func (p QAPair) Clone() QAPair {
	if p.Sources != nil {
		p.Sources = append([]Source(nil), p.Sources...)
	}
	return p
}

// Answer is what an answer provider returns for one question.
type Answer struct {
	Text    string
	QAID    int
	Score   float64
	Sources []Source
}

// Artifact is a rendered export ready to be handed to a sink.
type Artifact struct {
	Name        string
	ContentType string
	Data        []byte
	Pages       int
}
