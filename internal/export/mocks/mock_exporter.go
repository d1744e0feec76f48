package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"legalpub/internal/export"
	"legalpub/internal/model"
)

type MockExporter struct {
	mock.Mock
}

func (m *MockExporter) Strategy() export.Strategy {
	args := m.Called()
	return args.Get(0).(export.Strategy)
}

func (m *MockExporter) Export(ctx context.Context, doc *model.LegalDocument) (*export.Artifact, error) {
	args := m.Called(ctx, doc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*export.Artifact), args.Error(1)
}
