package storage

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"time"

	"contextly/internal/model"
	"contextly/internal/session"
)

var (
	_ session.ArtifactSink = (*ObjectSink)(nil)
	_ session.ArtifactSink = (*FileSink)(nil)
	_ session.ArtifactSink = DiscardSink{}
)

// ObjectSink archives artifacts in object storage under a key prefix,
// typically "exports/<session-id>".
type ObjectSink struct {
	store  Storage
	prefix string
}

func NewObjectSink(store Storage, prefix string) *ObjectSink {
	return &ObjectSink{store: store, prefix: prefix}
}

// Key returns the object key an artifact named name is stored under.
func (s *ObjectSink) Key(name string) string {
	return path.Join(s.prefix, name)
}

// Save uploads the artifact, replacing an earlier export with the same name.
func (s *ObjectSink) Save(ctx context.Context, art *model.Artifact) error {
	_, err := s.store.Put(ctx, s.Key(art.Name), bytes.NewReader(art.Data), PutObjectOptions{
		Size:        int64(len(art.Data)),
		ContentType: art.ContentType,
		Metadata:    map[string]string{"pages": strconv.Itoa(art.Pages)},
	})
	return err
}

// URL returns a download link for the archived artifact named name.
func (s *ObjectSink) URL(ctx context.Context, name string, expiry time.Duration) (string, error) {
	return s.store.PresignGet(ctx, s.Key(name), expiry)
}

// Remove deletes the archived artifact named name.
func (s *ObjectSink) Remove(ctx context.Context, name string) error {
	return s.store.Delete(ctx, s.Key(name))
}

// FileSink writes artifacts into a local directory.
type FileSink struct {
	dir string
}

func NewFileSink(dir string) *FileSink {
	return &FileSink{dir: dir}
}

// Path returns where an artifact named name is written.
func (s *FileSink) Path(name string) string {
	return filepath.Join(s.dir, filepath.Base(name))
}

func (s *FileSink) Save(ctx context.Context, art *model.Artifact) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	return os.WriteFile(s.Path(art.Name), art.Data, 0o644)
}

// DiscardSink drops every artifact.
type DiscardSink struct{}

func (DiscardSink) Save(context.Context, *model.Artifact) error { return nil }
