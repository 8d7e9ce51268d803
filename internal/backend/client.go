// Package backend talks to the retrieval service that indexes documents and
// answers questions.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"contextly/internal/config"
	"contextly/internal/model"
	"contextly/internal/session"
)

var (
	_ session.Uploader       = (*Client)(nil)
	_ session.AnswerProvider = (*Client)(nil)
)

// maxErrorBody bounds how much of a failed response ends up in an error message.
const maxErrorBody = 512

// Client uploads documents to and asks questions of the backend service.
// It is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default traced http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New creates a client for the backend at cfg.BaseURL.
func New(cfg config.BackendConfig, opts ...Option) *Client {
	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type uploadResponse struct {
	DocumentID int    `json:"document_id"`
	Filename   string `json:"filename"`
	Chunks     int    `json:"chunks"`
}

type askRequest struct {
	Question string `json:"question"`
}

type askResponse struct {
	QAID    int     `json:"qa_id"`
	Answer  *string `json:"answer"`
	Score   float64 `json:"score"`
	Sources []struct {
		ChunkID int     `json:"chunk_id"`
		Score   float64 `json:"score"`
	} `json:"sources"`
}

// Upload sends one file as the multipart field "file" to POST /upload/.
func (c *Client) Upload(ctx context.Context, name string, content io.Reader) (model.FileDescriptor, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", name)
	if err != nil {
		return model.FileDescriptor{}, fmt.Errorf("create form file: %w", err)
	}
	if content != nil {
		if _, err := io.Copy(part, content); err != nil {
			return model.FileDescriptor{}, fmt.Errorf("read %q: %w", name, err)
		}
	}
	if err := mw.Close(); err != nil {
		return model.FileDescriptor{}, fmt.Errorf("close multipart body: %w", err)
	}

	var resp uploadResponse
	if err := c.do(ctx, "/upload/", mw.FormDataContentType(), &body, &resp); err != nil {
		return model.FileDescriptor{}, err
	}

	fd := model.FileDescriptor{Name: resp.Filename, DocumentID: resp.DocumentID, Chunks: resp.Chunks}
	if fd.Name == "" {
		fd.Name = name
	}
	return fd, nil
}

// Ask sends the question to POST /ask/ and returns the answer text and its metadata.
// A null answer from the backend becomes the empty string.
func (c *Client) Ask(ctx context.Context, question string) (model.Answer, error) {
	payload, err := json.Marshal(askRequest{Question: question})
	if err != nil {
		return model.Answer{}, fmt.Errorf("marshal question: %w", err)
	}

	var resp askResponse
	if err := c.do(ctx, "/ask/", "application/json", bytes.NewReader(payload), &resp); err != nil {
		return model.Answer{}, err
	}

	ans := model.Answer{QAID: resp.QAID, Score: resp.Score}
	if resp.Answer != nil {
		ans.Text = *resp.Answer
	}
	for _, s := range resp.Sources {
		ans.Sources = append(ans.Sources, model.Source{ChunkID: s.ChunkID, Score: s.Score})
	}
	return ans, nil
}

// Ping checks that the backend answers its status endpoint.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return fmt.Errorf("create request: %v: %w", err, model.ErrNetwork)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("get /: %v: %w", err, model.ErrNetwork)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("get /: status %d: %w", resp.StatusCode, model.ErrNetwork)
	}
	return nil
}

// do posts body to path and decodes a 2xx JSON response into out.
// Every failure wraps model.ErrNetwork.
func (c *Client) do(ctx context.Context, path, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %v: %w", err, model.ErrNetwork)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("post %s: %v: %w", path, err, model.ErrNetwork)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s response: %v: %w", path, err, model.ErrNetwork)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("post %s: status %d: %s: %w", path, resp.StatusCode, errorDetail(respBody), model.ErrNetwork)
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode %s response: %v: %w", path, err, model.ErrNetwork)
	}
	return nil
}

// errorDetail extracts the "detail" field the backend puts in error bodies,
// falling back to the trimmed raw body.
func errorDetail(body []byte) string {
	var e struct {
		Detail any `json:"detail"`
	}
	if err := json.Unmarshal(body, &e); err == nil && e.Detail != nil {
		return fmt.Sprint(e.Detail)
	}
	s := strings.TrimSpace(string(body))
	if len(s) > maxErrorBody {
		s = s[:maxErrorBody]
	}
	return s
}
