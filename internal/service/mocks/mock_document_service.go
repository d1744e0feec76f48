package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"legalpub/internal/export"
	"legalpub/internal/model"
	"legalpub/internal/service"
)

type MockDocumentService struct {
	mock.Mock
}

var _ service.DocumentService = (*MockDocumentService)(nil)

func (m *MockDocumentService) List(ctx context.Context) ([]model.DocumentSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.DocumentSummary), args.Error(1)
}

func (m *MockDocumentService) Recent(ctx context.Context) ([]model.DocumentSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.DocumentSummary), args.Error(1)
}

func (m *MockDocumentService) Get(ctx context.Context, slug string) (*model.LegalDocument, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.LegalDocument), args.Error(1)
}

func (m *MockDocumentService) Slugs(ctx context.Context) ([]model.SlugEntry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.SlugEntry), args.Error(1)
}

func (m *MockDocumentService) Export(ctx context.Context, slug string) (*export.Artifact, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*export.Artifact), args.Error(1)
}

func (m *MockDocumentService) AttachmentURL(ctx context.Context, doc *model.LegalDocument) (string, error) {
	args := m.Called(ctx, doc)
	return args.String(0), args.Error(1)
}

func (m *MockDocumentService) Seed(ctx context.Context, doc *model.LegalDocument, att *service.Attachment) error {
	args := m.Called(ctx, doc, att)
	return args.Error(0)
}
