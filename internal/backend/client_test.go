package backend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contextly/internal/config"
	"contextly/internal/model"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(config.BackendConfig{BaseURL: srv.URL + "/", TimeoutSec: 5})
}

func TestUpload(t *testing.T) {
	var gotName, gotBody string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/upload/", r.URL.Path)

		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		b, _ := io.ReadAll(f)
		gotName, gotBody = hdr.Filename, string(b)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"document_id":7,"filename":"contract.pdf","chunks":12}`))
	})

	fd, err := c.Upload(context.Background(), "contract.pdf", strings.NewReader("%PDF-1.7 body"))

	require.NoError(t, err)
	assert.Equal(t, model.FileDescriptor{Name: "contract.pdf", DocumentID: 7, Chunks: 12}, fd)
	assert.Equal(t, "contract.pdf", gotName)
	assert.Equal(t, "%PDF-1.7 body", gotBody)
}

func TestUploadKeepsLocalNameWhenBackendOmitsIt(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"document_id":1}`))
	})

	fd, err := c.Upload(context.Background(), "notes.txt", strings.NewReader("x"))

	require.NoError(t, err)
	assert.Equal(t, "notes.txt", fd.Name)
}

func TestAsk(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		want    model.Answer
		wantErr string
	}{
		{
			name:   "answer with sources",
			status: http.StatusOK,
			body:   `{"qa_id":3,"question":"Q1","answer":"A1","score":0.92,"sources":[{"chunk_id":4,"score":0.92},{"chunk_id":9,"score":0.4}]}`,
			want: model.Answer{Text: "A1", QAID: 3, Score: 0.92, Sources: []model.Source{
				{ChunkID: 4, Score: 0.92}, {ChunkID: 9, Score: 0.4},
			}},
		},
		{
			name:   "null answer",
			status: http.StatusOK,
			body:   `{"qa_id":5,"answer":null,"score":null,"sources":[]}`,
			want:   model.Answer{QAID: 5},
		},
		{
			name:    "backend rejects question",
			status:  http.StatusBadRequest,
			body:    `{"detail":"Question must be provided."}`,
			wantErr: "status 400: Question must be provided.",
		},
		{
			name:    "server error with plain body",
			status:  http.StatusInternalServerError,
			body:    "boom",
			wantErr: "status 500: boom",
		},
		{
			name:    "malformed json",
			status:  http.StatusOK,
			body:    `{"answer":`,
			wantErr: "decode /ask/ response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/ask/", r.URL.Path)
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

				var req askRequest
				require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
				assert.Equal(t, "Q1", req.Question)

				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			got, err := c.Ask(context.Background(), "Q1")

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.ErrorIs(t, err, model.ErrNetwork)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUnreachableBackend(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New(config.BackendConfig{BaseURL: url, TimeoutSec: 1})

	_, err := c.Ask(context.Background(), "Q1")
	assert.ErrorIs(t, err, model.ErrNetwork)

	_, err = c.Upload(context.Background(), "a.pdf", strings.NewReader("x"))
	assert.ErrorIs(t, err, model.ErrNetwork)
}

func TestAskHonoursContext(t *testing.T) {
	release := make(chan struct{})
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.Ask(ctx, "slow?")
	assert.ErrorIs(t, err, model.ErrNetwork)
}

func TestWithHTTPClient(t *testing.T) {
	hc := &http.Client{Timeout: time.Second}
	c := New(config.BackendConfig{BaseURL: "http://backend"}, WithHTTPClient(hc))

	assert.Same(t, hc, c.http)
	assert.Equal(t, "http://backend", c.baseURL)
}

func TestPing(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr bool
	}{
		{name: "healthy", status: http.StatusOK},
		{name: "unhealthy", status: http.StatusServiceUnavailable, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodGet, r.Method)
				assert.Equal(t, "/", r.URL.Path)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"status":"ok"}`))
			})

			err := c.Ping(context.Background())

			if tt.wantErr {
				assert.ErrorIs(t, err, model.ErrNetwork)
				return
			}
			assert.NoError(t, err)
		})
	}
}
