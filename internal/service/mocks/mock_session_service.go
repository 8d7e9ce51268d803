package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"contextly/internal/model"
	"contextly/internal/service"
	"contextly/internal/session"
)

type MockSessionService struct {
	mock.Mock
}

func (m *MockSessionService) Create(ctx context.Context) (string, session.View, error) {
	args := m.Called(ctx)
	return args.String(0), args.Get(1).(session.View), args.Error(2)
}

func (m *MockSessionService) Get(ctx context.Context, id string) (session.View, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(session.View), args.Error(1)
}

func (m *MockSessionService) End(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockSessionService) Upload(ctx context.Context, id string, files []session.UploadFile) ([]model.FileDescriptor, error) {
	args := m.Called(ctx, id, files)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.FileDescriptor), args.Error(1)
}

func (m *MockSessionService) RemoveFile(ctx context.Context, id, name string) (session.View, error) {
	args := m.Called(ctx, id, name)
	return args.Get(0).(session.View), args.Error(1)
}

func (m *MockSessionService) Ask(ctx context.Context, id, question string) (session.PairView, error) {
	args := m.Called(ctx, id, question)
	return args.Get(0).(session.PairView), args.Error(1)
}

func (m *MockSessionService) Toggle(ctx context.Context, id string, index int) (bool, error) {
	args := m.Called(ctx, id, index)
	return args.Bool(0), args.Error(1)
}

func (m *MockSessionService) Export(ctx context.Context, id string) (*service.ExportResult, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ExportResult), args.Error(1)
}
