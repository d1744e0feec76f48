package mocks

import (
	"context"

	"legalpub/internal/model"
	"github.com/stretchr/testify/mock"
)

type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) ListPublished(ctx context.Context) ([]model.DocumentSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.DocumentSummary), args.Error(1)
}

func (m *MockDocumentRepository) RecentPublished(ctx context.Context, limit int) ([]model.DocumentSummary, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.DocumentSummary), args.Error(1)
}

func (m *MockDocumentRepository) FindPublishedBySlug(ctx context.Context, slug string) (*model.LegalDocument, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.LegalDocument), args.Error(1)
}

func (m *MockDocumentRepository) PublishedSlugs(ctx context.Context) ([]model.SlugEntry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.SlugEntry), args.Error(1)
}

func (m *MockDocumentRepository) Upsert(ctx context.Context, doc *model.LegalDocument) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}
