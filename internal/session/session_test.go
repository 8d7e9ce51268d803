package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"contextly/internal/export"
	"contextly/internal/model"
	"contextly/internal/session/mocks"
)

type fixture struct {
	up     *mocks.MockUploader
	ans    *mocks.MockAnswerProvider
	render *mocks.MockRenderer
	sink   *mocks.MockArtifactSink
}

func newFixture() *fixture {
	return &fixture{
		up:     new(mocks.MockUploader),
		ans:    new(mocks.MockAnswerProvider),
		render: new(mocks.MockRenderer),
		sink:   new(mocks.MockArtifactSink),
	}
}

func (f *fixture) session(opts ...Option) *Session {
	return New(f.up, f.ans, f.render, opts...)
}

func (f *fixture) assertExpectations(t *testing.T) {
	f.up.AssertExpectations(t)
	f.ans.AssertExpectations(t)
	f.render.AssertExpectations(t)
	f.sink.AssertExpectations(t)
}

func uploads(names ...string) []UploadFile {
	out := make([]UploadFile, len(names))
	for i, n := range names {
		out[i] = UploadFile{Name: n, Content: strings.NewReader("content of " + n)}
	}
	return out
}

// withDocument returns a session that already holds one document.
func withDocument(t *testing.T, f *fixture, opts ...Option) *Session {
	t.Helper()
	s := f.session(opts...)
	f.up.On("Upload", mock.Anything, "seed.pdf", mock.Anything).Return(model.FileDescriptor{Name: "seed.pdf"}, nil).Once()
	_, err := s.UploadFiles(context.Background(), uploads("seed.pdf"))
	require.NoError(t, err)
	return s
}

func TestSession_UploadFiles(t *testing.T) {
	ctx := context.Background()
	netErr := fmt.Errorf("connection refused: %w", model.ErrNetwork)

	tests := []struct {
		name       string
		policy     CommitPolicy
		files      []UploadFile
		setupMocks func(up *mocks.MockUploader)
		wantErr    bool
		wantAdded  []string
		wantFiles  []string
		wantState  State
	}{
		{
			name:   "batch success keeps input order",
			policy: CommitBatch,
			files:  uploads("a.pdf", "b.txt"),
			setupMocks: func(up *mocks.MockUploader) {
				up.On("Upload", ctx, "a.pdf", mock.Anything).Return(model.FileDescriptor{Name: "a.pdf", DocumentID: 1}, nil).Once()
				up.On("Upload", ctx, "b.txt", mock.Anything).Return(model.FileDescriptor{}, nil).Once()
			},
			wantAdded: []string{"a.pdf", "b.txt"},
			wantFiles: []string{"a.pdf", "b.txt"},
			wantState: HasDocuments,
		},
		{
			name:       "zero files is a no-op",
			policy:     CommitBatch,
			files:      nil,
			setupMocks: func(up *mocks.MockUploader) {},
			wantFiles:  []string{},
			wantState:  NoDocuments,
		},
		{
			name:   "batch failure adds nothing",
			policy: CommitBatch,
			files:  uploads("a.pdf", "b.txt", "c.doc"),
			setupMocks: func(up *mocks.MockUploader) {
				up.On("Upload", ctx, "a.pdf", mock.Anything).Return(model.FileDescriptor{Name: "a.pdf"}, nil).Once()
				up.On("Upload", ctx, "b.txt", mock.Anything).Return(model.FileDescriptor{}, netErr).Once()
			},
			wantErr:   true,
			wantFiles: []string{},
			wantState: NoDocuments,
		},
		{
			name:   "per-file failure keeps acknowledged files",
			policy: CommitPerFile,
			files:  uploads("a.pdf", "b.txt", "c.doc"),
			setupMocks: func(up *mocks.MockUploader) {
				up.On("Upload", ctx, "a.pdf", mock.Anything).Return(model.FileDescriptor{Name: "a.pdf"}, nil).Once()
				up.On("Upload", ctx, "b.txt", mock.Anything).Return(model.FileDescriptor{}, netErr).Once()
			},
			wantErr:   true,
			wantAdded: []string{"a.pdf"},
			wantFiles: []string{"a.pdf"},
			wantState: HasDocuments,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			s := f.session(WithCommitPolicy(tt.policy))
			tt.setupMocks(f.up)

			added, err := s.UploadFiles(ctx, tt.files)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			var addedNames []string
			for _, d := range added {
				addedNames = append(addedNames, d.Name)
			}
			assert.Equal(t, tt.wantAdded, addedNames)

			names := make([]string, 0)
			for _, d := range s.Files() {
				names = append(names, d.Name)
			}
			assert.Equal(t, tt.wantFiles, names)
			assert.Equal(t, tt.wantState, s.State())
			f.assertExpectations(t)
		})
	}
}

func TestSession_UploadFilesKeepsBackendMetadata(t *testing.T) {
	f := newFixture()
	s := f.session()
	f.up.On("Upload", mock.Anything, "a.pdf", mock.Anything).
		Return(model.FileDescriptor{Name: "a.pdf", DocumentID: 7, Chunks: 12}, nil).Once()

	_, err := s.UploadFiles(context.Background(), uploads("a.pdf"))

	require.NoError(t, err)
	assert.Equal(t, []model.FileDescriptor{{Name: "a.pdf", DocumentID: 7, Chunks: 12}}, s.Files())
}

func TestSession_RemoveFile(t *testing.T) {
	f := newFixture()
	s := withDocument(t, f)

	s.RemoveFile("missing.pdf")
	assert.Len(t, s.Files(), 1)

	s.RemoveFile("seed.pdf")
	assert.Empty(t, s.Files())
	assert.Equal(t, NoDocuments, s.State())
}

func TestSession_SubmitQuestion(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		question   string
		noDocs     bool
		setupMocks func(ans *mocks.MockAnswerProvider)
		wantErr    error
		wantIndex  int
		wantLen    int
	}{
		{
			name:     "answer appended",
			question: "What is the term?",
			setupMocks: func(ans *mocks.MockAnswerProvider) {
				ans.On("Ask", ctx, "What is the term?").Return(model.Answer{
					Text:    "Twelve months",
					Score:   0.8,
					Sources: []model.Source{{ChunkID: 3, Score: 0.4}},
				}, nil).Once()
			},
			wantIndex: 0,
			wantLen:   1,
		},
		{
			name:       "blank question rejected",
			question:   "   \t",
			setupMocks: func(ans *mocks.MockAnswerProvider) {},
			wantErr:    model.ErrBlankQuestion,
			wantIndex:  -1,
		},
		{
			name:       "no documents",
			question:   "anything?",
			noDocs:     true,
			setupMocks: func(ans *mocks.MockAnswerProvider) {},
			wantErr:    model.ErrNoDocuments,
			wantIndex:  -1,
		},
		{
			name:     "network error leaves ledger unchanged",
			question: "anything?",
			setupMocks: func(ans *mocks.MockAnswerProvider) {
				ans.On("Ask", ctx, "anything?").Return(model.Answer{}, model.ErrNetwork).Once()
			},
			wantErr:   model.ErrNetwork,
			wantIndex: -1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			var s *Session
			if tt.noDocs {
				s = f.session()
			} else {
				s = withDocument(t, f)
			}
			tt.setupMocks(f.ans)

			idx, pair, err := s.SubmitQuestion(ctx, tt.question)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.question, pair.Question)
				stored, err := s.Pair(idx)
				require.NoError(t, err)
				assert.Equal(t, pair, stored)
			}
			assert.Equal(t, tt.wantIndex, idx)
			assert.Len(t, s.Pairs(), tt.wantLen)
			f.assertExpectations(t)
		})
	}
}

func TestSession_SubmitQuestionIndicesFollowCallOrder(t *testing.T) {
	f := newFixture()
	s := withDocument(t, f)
	f.ans.On("Ask", mock.Anything, mock.Anything).Return(model.Answer{Text: "ok"}, nil)

	for i := 0; i < 4; i++ {
		idx, _, err := s.SubmitQuestion(context.Background(), "question")
		require.NoError(t, err)
		assert.Equal(t, i, idx)
	}
}

func TestSession_QAHistorySurvivesDocumentRemoval(t *testing.T) {
	f := newFixture()
	s := withDocument(t, f)
	f.ans.On("Ask", mock.Anything, "Q1").Return(model.Answer{Text: "A1"}, nil).Once()

	_, _, err := s.SubmitQuestion(context.Background(), "Q1")
	require.NoError(t, err)
	_, err = s.ToggleSelection(0)
	require.NoError(t, err)

	s.RemoveFile("seed.pdf")

	assert.Equal(t, NoDocuments, s.State())
	assert.Len(t, s.Pairs(), 1)
	assert.True(t, s.IsSelected(0))
	assert.True(t, s.CanExport(), "export does not depend on documents")
	assert.False(t, s.CanAsk())

	_, err = s.ToggleSelection(0)
	assert.ErrorIs(t, err, model.ErrNoDocuments)
}

func TestSession_ToggleSelection(t *testing.T) {
	f := newFixture()
	s := withDocument(t, f)
	f.ans.On("Ask", mock.Anything, mock.Anything).Return(model.Answer{Text: "a"}, nil)
	s.SubmitQuestion(context.Background(), "q")

	v, err := s.ToggleSelection(0)
	require.NoError(t, err)
	assert.True(t, v)
	assert.True(t, s.CanExport())

	_, err = s.ToggleSelection(1)
	assert.ErrorIs(t, err, model.ErrIndexOutOfRange)

	v, err = s.ToggleSelection(0)
	require.NoError(t, err)
	assert.False(t, v)
	assert.False(t, s.CanExport())
}

func TestSession_ExportSelected(t *testing.T) {
	ctx := context.Background()
	art := &model.Artifact{Name: export.DefaultFileName, ContentType: export.ContentType, Data: []byte("%PDF-1.7"), Pages: 1}

	tests := []struct {
		name       string
		selectIdx  []int
		useSink    bool
		setupMocks func(f *fixture)
		wantErr    error
		wantErrMsg string
	}{
		{
			name:      "renders selected snapshot and saves",
			selectIdx: []int{1},
			useSink:   true,
			setupMocks: func(f *fixture) {
				f.render.On("Render", ctx, export.Snapshot{
					Pairs:    []model.QAPair{{Question: "Q1", Answer: "A1"}, {Question: "Q2", Answer: "A2"}},
					Selected: map[int]bool{1: true},
				}).Return(art, nil).Once()
				f.sink.On("Save", ctx, art).Return(nil).Once()
			},
		},
		{
			name:      "nil sink skips saving",
			selectIdx: []int{0},
			setupMocks: func(f *fixture) {
				f.render.On("Render", ctx, mock.Anything).Return(art, nil).Once()
			},
		},
		{
			name:       "nothing selected",
			setupMocks: func(f *fixture) {},
			wantErr:    model.ErrNothingSelected,
		},
		{
			name:      "renderer failure is a render error",
			selectIdx: []int{0},
			useSink:   true,
			setupMocks: func(f *fixture) {
				f.render.On("Render", ctx, mock.Anything).Return(nil, errors.New("font missing")).Once()
			},
			wantErr: model.ErrRender,
		},
		{
			name:      "sink failure surfaces",
			selectIdx: []int{0},
			useSink:   true,
			setupMocks: func(f *fixture) {
				f.render.On("Render", ctx, mock.Anything).Return(art, nil).Once()
				f.sink.On("Save", ctx, art).Return(errors.New("bucket gone")).Once()
			},
			wantErrMsg: "save selected-qa.pdf: bucket gone",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			s := withDocument(t, f)
			f.ans.On("Ask", ctx, "Q1").Return(model.Answer{Text: "A1"}, nil).Once()
			f.ans.On("Ask", ctx, "Q2").Return(model.Answer{Text: "A2"}, nil).Once()
			s.SubmitQuestion(ctx, "Q1")
			s.SubmitQuestion(ctx, "Q2")
			for _, i := range tt.selectIdx {
				_, err := s.ToggleSelection(i)
				require.NoError(t, err)
			}
			tt.setupMocks(f)

			var sink ArtifactSink
			if tt.useSink {
				sink = f.sink
			}
			got, err := s.ExportSelected(ctx, sink)

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
			case tt.wantErrMsg != "":
				assert.EqualError(t, err, tt.wantErrMsg)
			default:
				assert.NoError(t, err)
				assert.Equal(t, art, got)
			}
			f.assertExpectations(t)
		})
	}
}

func TestSession_View(t *testing.T) {
	f := newFixture()
	s := f.session()

	v := s.View()
	assert.Equal(t, NoDocuments, v.State)
	assert.False(t, v.CanAsk)
	assert.False(t, v.CanExport)
	assert.Empty(t, v.Pairs)

	s = withDocument(t, f)
	f.ans.On("Ask", mock.Anything, mock.Anything).Return(model.Answer{Text: "a"}, nil)
	s.SubmitQuestion(context.Background(), "q0")
	s.SubmitQuestion(context.Background(), "q1")
	s.ToggleSelection(1)

	v = s.View()
	assert.Equal(t, HasDocuments, v.State)
	assert.True(t, v.CanAsk)
	assert.True(t, v.CanExport)
	require.Len(t, v.Pairs, 2)
	assert.False(t, v.Pairs[0].Selected)
	assert.True(t, v.Pairs[1].Selected)
	assert.Equal(t, "q1", v.Pairs[1].Question)
}

func TestParseCommitPolicy(t *testing.T) {
	assert.Equal(t, CommitPerFile, ParseCommitPolicy("per_file"))
	assert.Equal(t, CommitPerFile, ParseCommitPolicy(" PER_FILE "))
	assert.Equal(t, CommitBatch, ParseCommitPolicy("batch"))
	assert.Equal(t, CommitBatch, ParseCommitPolicy(""))
	assert.Equal(t, CommitBatch, ParseCommitPolicy("unknown"))
}
