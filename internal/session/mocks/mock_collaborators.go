package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"contextly/internal/export"
	"contextly/internal/model"
)

type MockUploader struct {
	mock.Mock
}

func (m *MockUploader) Upload(ctx context.Context, name string, content io.Reader) (model.FileDescriptor, error) {
	args := m.Called(ctx, name, content)
	return args.Get(0).(model.FileDescriptor), args.Error(1)
}

type MockAnswerProvider struct {
	mock.Mock
}

func (m *MockAnswerProvider) Ask(ctx context.Context, question string) (model.Answer, error) {
	args := m.Called(ctx, question)
	return args.Get(0).(model.Answer), args.Error(1)
}

type MockRenderer struct {
	mock.Mock
}

func (m *MockRenderer) Render(ctx context.Context, snap export.Snapshot) (*model.Artifact, error) {
	args := m.Called(ctx, snap)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Artifact), args.Error(1)
}

type MockArtifactSink struct {
	mock.Mock
}

func (m *MockArtifactSink) Save(ctx context.Context, artifact *model.Artifact) error {
	args := m.Called(ctx, artifact)
	return args.Error(0)
}
