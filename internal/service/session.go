package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"contextly/internal/export"
	"contextly/internal/model"
	"contextly/internal/session"
	"contextly/internal/storage"
	"contextly/internal/validation"
)

const tracerName = "contextly/internal/service"

// ExportResult is a rendered export plus, when it was archived, a download link.
type ExportResult struct {
	Artifact *model.Artifact
	URL      string
}

// SessionService manages independent Q&A sessions keyed by id.
type SessionService interface {
	// Create starts an empty session and returns its id.
	Create(ctx context.Context) (string, session.View, error)

	// Get returns the current view of a session.
	Get(ctx context.Context, id string) (session.View, error)

	// End discards a session and its archived export.
	End(ctx context.Context, id string) error

	// Upload sends files to the backend and adds the acknowledged ones to the session.
	Upload(ctx context.Context, id string, files []session.UploadFile) ([]model.FileDescriptor, error)

	// RemoveFile drops a file from the session's document list.
	RemoveFile(ctx context.Context, id, name string) (session.View, error)

	// Ask submits a question and returns the new pair with its index.
	Ask(ctx context.Context, id, question string) (session.PairView, error)

	// Toggle flips the selection flag of one pair and returns the new flag.
	Toggle(ctx context.Context, id string, index int) (bool, error)

	// Export renders the selected pairs and archives the result when storage is configured.
	Export(ctx context.Context, id string) (*ExportResult, error)
}

// Options tunes a SessionService.
type Options struct {
	TTL           time.Duration
	CleanupEvery  time.Duration
	CommitPolicy  session.CommitPolicy
	ArchivePrefix string
	ExportName    string
	URLExpiry     time.Duration
	Validator     *validation.Validator
	Logger        *zap.Logger
	Metrics       *Metrics
}

type sessionService struct {
	sessions *cache.Cache
	uploader session.Uploader
	answers  session.AnswerProvider
	renderer session.Renderer
	store    storage.Storage
	opts     Options
	log      *zap.Logger
	metrics  *Metrics
	tracer   trace.Tracer
}

// NewSessionService constructs a SessionService. store may be nil, in which
// case exports are rendered but not archived.
func NewSessionService(uploader session.Uploader, answers session.AnswerProvider, renderer session.Renderer, store storage.Storage, opts Options) SessionService {
	if opts.TTL <= 0 {
		opts.TTL = time.Hour
	}
	if opts.CleanupEvery <= 0 {
		opts.CleanupEvery = 10 * time.Minute
	}
	if opts.CommitPolicy == "" {
		opts.CommitPolicy = session.CommitBatch
	}
	if opts.ArchivePrefix == "" {
		opts.ArchivePrefix = "exports"
	}
	if opts.ExportName == "" {
		opts.ExportName = export.DefaultFileName
	}
	if opts.URLExpiry <= 0 {
		opts.URLExpiry = 15 * time.Minute
	}
	if opts.Validator == nil {
		opts.Validator = validation.New(nil)
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics, _ = NewMetrics(prometheus.NewRegistry())
	}

	s := &sessionService{
		sessions: cache.New(opts.TTL, opts.CleanupEvery),
		uploader: uploader,
		answers:  answers,
		renderer: renderer,
		store:    store,
		opts:     opts,
		log:      log.Named("sessions"),
		metrics:  metrics,
		tracer:   otel.Tracer(tracerName),
	}
	s.sessions.OnEvicted(func(id string, _ interface{}) {
		s.metrics.sessionsActive.Dec()
		s.log.Debug("session evicted", zap.String("session_id", id))
	})
	return s
}

func (s *sessionService) Create(ctx context.Context) (string, session.View, error) {
	_, span := s.tracer.Start(ctx, "session.create")
	defer span.End()

	id := uuid.NewString()
	sess := session.New(s.uploader, s.answers, s.renderer,
		session.WithCommitPolicy(s.opts.CommitPolicy),
		session.WithLogger(s.log.With(zap.String("session_id", id))),
	)
	s.sessions.Set(id, sess, cache.DefaultExpiration)
	s.metrics.sessionsActive.Inc()
	span.SetAttributes(attribute.String("session.id", id))

	s.log.Info("session created", zap.String("session_id", id))
	return id, sess.View(), nil
}

func (s *sessionService) Get(ctx context.Context, id string) (session.View, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return session.View{}, err
	}
	return sess.View(), nil
}

func (s *sessionService) End(ctx context.Context, id string) error {
	ctx, span := s.startSpan(ctx, "session.end", id)
	defer span.End()

	if _, err := s.lookup(id); err != nil {
		return err
	}
	s.sessions.Delete(id)

	if s.store != nil {
		// best effort
		if err := storage.NewObjectSink(s.store, s.archivePrefix(id)).Remove(ctx, s.opts.ExportName); err != nil {
			s.log.Warn("remove archived export", zap.String("session_id", id), zap.Error(err))
		}
	}
	s.log.Info("session ended", zap.String("session_id", id))
	return nil
}

func (s *sessionService) Upload(ctx context.Context, id string, files []session.UploadFile) ([]model.FileDescriptor, error) {
	ctx, span := s.startSpan(ctx, "session.upload", id)
	defer span.End()
	span.SetAttributes(attribute.Int("files", len(files)))

	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	for _, f := range files {
		if err := s.opts.Validator.FileName(f.Name); err != nil {
			return nil, err
		}
	}

	descs, err := sess.UploadFiles(ctx, files)
	s.metrics.uploads.WithLabelValues("ok").Add(float64(len(descs)))
	if err != nil {
		s.metrics.uploads.WithLabelValues("error").Inc()
		recordError(span, err)
		return descs, err
	}
	return descs, nil
}

func (s *sessionService) RemoveFile(ctx context.Context, id, name string) (session.View, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return session.View{}, err
	}
	sess.RemoveFile(name)
	return sess.View(), nil
}

func (s *sessionService) Ask(ctx context.Context, id, question string) (session.PairView, error) {
	ctx, span := s.startSpan(ctx, "session.ask", id)
	defer span.End()

	sess, err := s.lookup(id)
	if err != nil {
		return session.PairView{}, err
	}

	index, pair, err := sess.SubmitQuestion(ctx, question)
	if errors.Is(err, model.ErrBlankQuestion) {
		return session.PairView{}, err
	}
	s.metrics.questions.WithLabelValues(outcome(err)).Inc()
	if err != nil {
		recordError(span, err)
		return session.PairView{}, err
	}
	span.SetAttributes(attribute.Int("qa.index", index))
	return session.PairView{Index: index, QAPair: pair}, nil
}

func (s *sessionService) Toggle(ctx context.Context, id string, index int) (bool, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return false, err
	}
	return sess.ToggleSelection(index)
}

func (s *sessionService) Export(ctx context.Context, id string) (*ExportResult, error) {
	ctx, span := s.startSpan(ctx, "session.export", id)
	defer span.End()

	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}

	var (
		sink    session.ArtifactSink = storage.DiscardSink{}
		archive *storage.ObjectSink
	)
	if s.store != nil {
		archive = storage.NewObjectSink(s.store, s.archivePrefix(id))
		sink = archive
	}

	art, err := sess.ExportSelected(ctx, sink)
	s.metrics.exports.WithLabelValues(outcome(err)).Inc()
	if err != nil {
		recordError(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("pdf.pages", art.Pages))

	res := &ExportResult{Artifact: art}
	if archive != nil {
		url, err := archive.URL(ctx, art.Name, s.opts.URLExpiry)
		if err != nil {
			s.log.Warn("presign export", zap.String("session_id", id), zap.Error(err))
		}
		res.URL = url
	}
	return res, nil
}

// lookup returns the session and slides its expiry forward.
func (s *sessionService) lookup(id string) (*session.Session, error) {
	v, ok := s.sessions.Get(id)
	if !ok {
		return nil, fmt.Errorf("session %q: %w", id, model.ErrSessionNotFound)
	}
	sess := v.(*session.Session)
	// id may alias a request buffer; the cache keeps the key.
	s.sessions.Set(strings.Clone(id), sess, cache.DefaultExpiration)
	return sess, nil
}

func (s *sessionService) archivePrefix(id string) string {
	return path.Join(s.opts.ArchivePrefix, id)
}

func (s *sessionService) startSpan(ctx context.Context, name, id string) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, name, trace.WithAttributes(attribute.String("session.id", id)))
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
