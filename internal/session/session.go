package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"go.uber.org/zap"

	"contextly/internal/export"
	"contextly/internal/model"
)

// Uploader sends one file to the backend and returns the acknowledged descriptor.
type Uploader interface {
	Upload(ctx context.Context, name string, content io.Reader) (model.FileDescriptor, error)
}

// AnswerProvider asks the backend a question.
type AnswerProvider interface {
	Ask(ctx context.Context, question string) (model.Answer, error)
}

// Renderer turns an export snapshot into an artifact.
type Renderer interface {
	Render(ctx context.Context, snap export.Snapshot) (*model.Artifact, error)
}

// ArtifactSink persists or delivers a rendered export.
type ArtifactSink interface {
	Save(ctx context.Context, artifact *model.Artifact) error
}

// UploadFile is one file picked by the user. Content is only read by the Uploader.
type UploadFile struct {
	Name    string
	Content io.Reader
}

// CommitPolicy decides when acknowledged uploads join the document set.
type CommitPolicy string

const (
	// CommitBatch adds the descriptors of a batch only once every file was acknowledged.
	CommitBatch CommitPolicy = "batch"
	// CommitPerFile adds each descriptor as soon as its upload is acknowledged.
	CommitPerFile CommitPolicy = "per_file"
)

// ParseCommitPolicy maps a config value to a policy, defaulting to CommitBatch.
func ParseCommitPolicy(s string) CommitPolicy {
	if CommitPolicy(strings.ToLower(strings.TrimSpace(s))) == CommitPerFile {
		return CommitPerFile
	}
	return CommitBatch
}

// Option configures a Session.
type Option func(*Session)

func WithCommitPolicy(p CommitPolicy) Option {
	return func(s *Session) { s.policy = p }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

// Session owns the document set, ledger and selection of one user session and
// orchestrates uploads, questions and exports.
//
// Every mutation runs to completion under the session lock. Backend calls and rendering
// happen outside the lock; exports render from a snapshot taken under it.
type Session struct {
	mu        sync.Mutex
	docs      DocumentSet
	ledger    Ledger
	selection *Selection

	uploader Uploader
	answers  AnswerProvider
	renderer Renderer
	policy   CommitPolicy
	log      *zap.Logger
}

// New creates an empty session.
func New(uploader Uploader, answers AnswerProvider, renderer Renderer, opts ...Option) *Session {
	s := &Session{
		uploader: uploader,
		answers:  answers,
		renderer: renderer,
		policy:   CommitBatch,
		log:      zap.NewNop(),
	}
	s.selection = NewSelection(&s.ledger)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// UploadFiles uploads files one at a time in order and returns the descriptors added
// to the document set. Under CommitBatch a failure adds nothing; under CommitPerFile the
// files acknowledged before the failure stay added.
func (s *Session) UploadFiles(ctx context.Context, files []UploadFile) ([]model.FileDescriptor, error) {
	if len(files) == 0 {
		return nil, nil
	}

	acked := make([]model.FileDescriptor, 0, len(files))
	for _, f := range files {
		desc, err := s.uploader.Upload(ctx, f.Name, f.Content)
		if err != nil {
			s.log.Warn("upload failed",
				zap.String("file", f.Name),
				zap.String("policy", string(s.policy)),
				zap.Int("acknowledged", len(acked)),
				zap.Error(err),
			)
			if s.policy == CommitPerFile {
				return acked, fmt.Errorf("upload %q: %w", f.Name, err)
			}
			return nil, fmt.Errorf("upload %q: %w", f.Name, err)
		}
		if desc.Name == "" {
			desc.Name = f.Name
		}
		if s.policy == CommitPerFile {
			s.commit(desc)
		}
		acked = append(acked, desc)
	}

	if s.policy == CommitBatch {
		s.commit(acked...)
	}
	s.log.Info("files uploaded", zap.Int("count", len(acked)))
	return acked, nil
}

func (s *Session) commit(descs ...model.FileDescriptor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs.Add(descs...)
}

// RemoveFile drops every attached file called name. Unknown names are a no-op.
// Collected question/answer pairs are kept.
func (s *Session) RemoveFile(name string) {
	s.mu.Lock()
	removed := s.docs.Remove(name)
	s.mu.Unlock()

	if removed > 0 {
		s.log.Info("file removed", zap.String("file", name), zap.Int("count", removed))
	}
}

// SubmitQuestion asks the backend and appends the resulting pair to the ledger.
// Nothing is appended when the backend call fails.
func (s *Session) SubmitQuestion(ctx context.Context, question string) (int, model.QAPair, error) {
	if strings.TrimSpace(question) == "" {
		return -1, model.QAPair{}, model.ErrBlankQuestion
	}
	if !s.CanAsk() {
		return -1, model.QAPair{}, model.ErrNoDocuments
	}

	ans, err := s.answers.Ask(ctx, question)
	if err != nil {
		s.log.Warn("ask failed", zap.Error(err))
		return -1, model.QAPair{}, fmt.Errorf("ask: %w", err)
	}

	pair := model.QAPair{
		Question: question,
		Answer:   ans.Text,
		Score:    ans.Score,
		Sources:  ans.Sources,
	}

	s.mu.Lock()
	idx := s.ledger.Append(pair)
	s.mu.Unlock()

	s.log.Info("question answered", zap.Int("index", idx), zap.Float64("score", ans.Score))
	return idx, pair.Clone(), nil
}

// ToggleSelection flips whether the pair at index is included in exports.
func (s *Session) ToggleSelection(index int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.docs.Len() == 0 {
		return false, model.ErrNoDocuments
	}
	return s.selection.Toggle(index)
}

// ExportSelected renders the selected pairs and hands the artifact to sink, which may be nil.
func (s *Session) ExportSelected(ctx context.Context, sink ArtifactSink) (*model.Artifact, error) {
	snap, ok := s.snapshot()
	if !ok {
		return nil, model.ErrNothingSelected
	}

	art, err := s.renderer.Render(ctx, snap)
	if err != nil {
		if !errors.Is(err, model.ErrRender) {
			err = fmt.Errorf("%w: %v", model.ErrRender, err)
		}
		s.log.Error("export render failed", zap.Error(err))
		return nil, err
	}

	if sink != nil {
		if err := sink.Save(ctx, art); err != nil {
			s.log.Error("export save failed", zap.String("artifact", art.Name), zap.Error(err))
			return nil, fmt.Errorf("save %s: %w", art.Name, err)
		}
	}

	s.log.Info("export rendered", zap.String("artifact", art.Name), zap.Int("pages", art.Pages), zap.Int("bytes", len(art.Data)))
	return art, nil
}

func (s *Session) snapshot() (export.Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.selection.AnySelected() {
		return export.Snapshot{}, false
	}
	return export.Snapshot{
		Pairs:    s.ledger.All(),
		Selected: s.selection.Snapshot(),
	}, true
}
