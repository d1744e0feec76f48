package service

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"legalpub/internal/export"
	expMocks "legalpub/internal/export/mocks"
	"legalpub/internal/logger"
	"legalpub/internal/model"
	repoMocks "legalpub/internal/repository/mocks"
	"legalpub/internal/storage"
	storeMocks "legalpub/internal/storage/mocks"
)

func publishedDoc(slug string) *model.LegalDocument {
	return &model.LegalDocument{
		ID:              "id-" + slug,
		Slug:            slug,
		Title:           "Notice " + slug,
		DocumentType:    model.TypeNotice,
		Status:          model.StatusPublished,
		PublicationDate: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		Content:         []model.Block{{Children: []model.Span{{Text: "body"}}}},
	}
}

func TestDocumentService_List(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		setupMocks func(mRepo *repoMocks.MockDocumentRepository)
		wantLen    int
		wantErr    bool
	}{
		{
			name: "happy path",
			setupMocks: func(mRepo *repoMocks.MockDocumentRepository) {
				mRepo.On("ListPublished", ctx).
					Return([]model.DocumentSummary{{Slug: "a"}, {Slug: "b"}}, nil)
			},
			wantLen: 2,
		},
		{
			name: "repository error",
			setupMocks: func(mRepo *repoMocks.MockDocumentRepository) {
				mRepo.On("ListPublished", ctx).Return(nil, errors.New("db fail"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mRepo := new(repoMocks.MockDocumentRepository)
			svc := NewDocumentService(mRepo, nil, nil, nil)

			tt.setupMocks(mRepo)

			res, err := svc.List(ctx)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Len(t, res, tt.wantLen)
			}
			mRepo.AssertExpectations(t)
		})
	}
}

func TestDocumentService_RecentAndSlugs(t *testing.T) {
	ctx := context.Background()
	mRepo := new(repoMocks.MockDocumentRepository)
	svc := NewDocumentService(mRepo, nil, nil, nil)

	mRepo.On("RecentPublished", ctx, RecentLimit).Return([]model.DocumentSummary{{Slug: "a"}}, nil)
	mRepo.On("PublishedSlugs", ctx).Return([]model.SlugEntry{{Slug: "a"}}, nil)

	recent, err := svc.Recent(ctx)
	require.NoError(t, err)
	assert.Len(t, recent, 1)

	slugs, err := svc.Slugs(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", slugs[0].Slug)

	mRepo.AssertExpectations(t)
}

func TestDocumentService_Get(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		slug       string
		setupMocks func(mRepo *repoMocks.MockDocumentRepository)
		wantErr    error
		wantAnyErr bool
	}{
		{
			name: "happy path",
			slug: "notice-1",
			setupMocks: func(mRepo *repoMocks.MockDocumentRepository) {
				mRepo.On("FindPublishedBySlug", ctx, "notice-1").Return(publishedDoc("notice-1"), nil)
			},
		},
		{
			name:       "validation - empty slug",
			slug:       "",
			setupMocks: func(mRepo *repoMocks.MockDocumentRepository) {},
			wantErr:    ErrSlugRequired,
		},
		{
			name: "not found - mapping sql.ErrNoRows",
			slug: "missing",
			setupMocks: func(mRepo *repoMocks.MockDocumentRepository) {
				mRepo.On("FindPublishedBySlug", ctx, "missing").Return(nil, sql.ErrNoRows)
			},
			wantErr: ErrNotFound,
		},
		{
			name: "draft is never exposed",
			slug: "draft",
			setupMocks: func(mRepo *repoMocks.MockDocumentRepository) {
				doc := publishedDoc("draft")
				doc.Status = model.StatusDraft
				mRepo.On("FindPublishedBySlug", ctx, "draft").Return(doc, nil)
			},
			wantErr: ErrNotFound,
		},
		{
			name: "generic repository error",
			slug: "error",
			setupMocks: func(mRepo *repoMocks.MockDocumentRepository) {
				mRepo.On("FindPublishedBySlug", ctx, "error").Return(nil, errors.New("db fail"))
			},
			wantAnyErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mRepo := new(repoMocks.MockDocumentRepository)
			svc := NewDocumentService(mRepo, nil, nil, nil)

			tt.setupMocks(mRepo)

			doc, err := svc.Get(ctx, tt.slug)

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, doc)
			case tt.wantAnyErr:
				assert.Error(t, err)
				assert.NotErrorIs(t, err, ErrNotFound)
				assert.Nil(t, doc)
			default:
				assert.NoError(t, err)
				require.NotNil(t, doc)
				assert.Equal(t, tt.slug, doc.Slug)
			}
			mRepo.AssertExpectations(t)
		})
	}
}

func TestDocumentService_Export(t *testing.T) {
	ctx := context.Background()
	artifact := &export.Artifact{Filename: "notice-a.pdf", ContentType: export.ContentType, Body: []byte("%PDF-1.3")}

	tests := []struct {
		name       string
		slug       string
		setupMocks func(mRepo *repoMocks.MockDocumentRepository, mExp *expMocks.MockExporter)
		wantErrs   []error
	}{
		{
			name: "happy path",
			slug: "a",
			setupMocks: func(mRepo *repoMocks.MockDocumentRepository, mExp *expMocks.MockExporter) {
				doc := publishedDoc("a")
				mRepo.On("FindPublishedBySlug", ctx, "a").Return(doc, nil)
				mExp.On("Export", ctx, doc).Return(artifact, nil)
				mExp.On("Strategy").Return(export.StrategyStructured)
			},
		},
		{
			name:       "missing slug",
			slug:       "",
			setupMocks: func(*repoMocks.MockDocumentRepository, *expMocks.MockExporter) {},
			wantErrs:   []error{ErrSlugRequired},
		},
		{
			name: "unknown slug",
			slug: "nope",
			setupMocks: func(mRepo *repoMocks.MockDocumentRepository, _ *expMocks.MockExporter) {
				mRepo.On("FindPublishedBySlug", ctx, "nope").Return(nil, sql.ErrNoRows)
			},
			wantErrs: []error{ErrNotFound},
		},
		{
			name: "repository failure is an export failure",
			slug: "a",
			setupMocks: func(mRepo *repoMocks.MockDocumentRepository, _ *expMocks.MockExporter) {
				mRepo.On("FindPublishedBySlug", ctx, "a").Return(nil, errors.New("conn reset"))
			},
			wantErrs: []error{ErrExportFailed},
		},
		{
			name: "capture target missing keeps identity",
			slug: "a",
			setupMocks: func(mRepo *repoMocks.MockDocumentRepository, mExp *expMocks.MockExporter) {
				doc := publishedDoc("a")
				mRepo.On("FindPublishedBySlug", ctx, "a").Return(doc, nil)
				mExp.On("Export", ctx, doc).Return(nil, export.ErrCaptureTargetMissing)
				mExp.On("Strategy").Return(export.StrategyCapture)
			},
			wantErrs: []error{ErrExportFailed, export.ErrCaptureTargetMissing},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mRepo := new(repoMocks.MockDocumentRepository)
			mExp := new(expMocks.MockExporter)
			svc := NewDocumentService(mRepo, mExp, nil, nil)

			tt.setupMocks(mRepo, mExp)

			art, err := svc.Export(ctx, tt.slug)

			if len(tt.wantErrs) > 0 {
				for _, want := range tt.wantErrs {
					assert.ErrorIs(t, err, want)
				}
				assert.Nil(t, art)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, artifact, art)
			}
			mRepo.AssertExpectations(t)
			mExp.AssertExpectations(t)
		})
	}
}

func TestDocumentService_ExportLogsFailure(t *testing.T) {
	ctx := context.Background()
	core, logs := observer.New(zap.InfoLevel)
	mRepo := new(repoMocks.MockDocumentRepository)
	mExp := new(expMocks.MockExporter)
	svc := NewDocumentService(mRepo, mExp, nil, logger.FromZap(zap.New(core)))

	doc := publishedDoc("a")
	mRepo.On("FindPublishedBySlug", ctx, "a").Return(doc, nil)
	mExp.On("Export", ctx, doc).Return(nil, errors.New("fpdf: bad font"))
	mExp.On("Strategy").Return(export.StrategyStructured)

	_, err := svc.Export(ctx, "a")
	require.ErrorIs(t, err, ErrExportFailed)

	entries := logs.FilterMessage("export_failed").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "a", fields["slug"])
	assert.Equal(t, "structured", fields["strategy"])
	assert.Equal(t, "document_service", fields["component"])
}

func TestDocumentService_ExportWithoutExporter(t *testing.T) {
	ctx := context.Background()
	mRepo := new(repoMocks.MockDocumentRepository)
	svc := NewDocumentService(mRepo, nil, nil, nil)
	mRepo.On("FindPublishedBySlug", ctx, "a").Return(publishedDoc("a"), nil)

	_, err := svc.Export(ctx, "a")

	assert.ErrorIs(t, err, ErrExportFailed)
	assert.ErrorIs(t, err, ErrExporterDisabled)
}

func TestDocumentService_AttachmentURL(t *testing.T) {
	ctx := context.Background()

	t.Run("no attachment", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		svc := NewDocumentService(nil, nil, mStore, nil)

		u, err := svc.AttachmentURL(ctx, publishedDoc("a"))

		assert.NoError(t, err)
		assert.Empty(t, u)
		mStore.AssertNotCalled(t, "PresignGet", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("presigned", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		svc := NewDocumentService(nil, nil, mStore, nil)
		doc := publishedDoc("a")
		doc.PDFFileKey = "attachments/a.pdf"
		mStore.On("PresignGet", ctx, "attachments/a.pdf", AttachmentURLExpiry).Return("https://minio/a.pdf?sig", nil)

		u, err := svc.AttachmentURL(ctx, doc)

		assert.NoError(t, err)
		assert.Equal(t, "https://minio/a.pdf?sig", u)
		mStore.AssertExpectations(t)
	})

	t.Run("storage disabled", func(t *testing.T) {
		svc := NewDocumentService(nil, nil, nil, nil)
		doc := publishedDoc("a")
		doc.PDFFileKey = "attachments/a.pdf"

		u, err := svc.AttachmentURL(ctx, doc)

		assert.NoError(t, err)
		assert.Empty(t, u)
	})

	t.Run("presign error", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		svc := NewDocumentService(nil, nil, mStore, nil)
		doc := publishedDoc("a")
		doc.PDFFileKey = "attachments/a.pdf"
		mStore.On("PresignGet", ctx, "attachments/a.pdf", AttachmentURLExpiry).Return("", errors.New("denied"))

		_, err := svc.AttachmentURL(ctx, doc)

		assert.ErrorContains(t, err, "presign attachment: denied")
	})
}

func TestDocumentService_Seed(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		doc        func() *model.LegalDocument
		withAtt    bool
		setupMocks func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockDocumentRepository)
		wantErr    error
		wantErrMsg string
		wantKey    string
	}{
		{
			name: "without attachment",
			doc:  func() *model.LegalDocument { d := publishedDoc("a"); d.ID = ""; return d },
			setupMocks: func(_ *storeMocks.MockStorage, mRepo *repoMocks.MockDocumentRepository) {
				mRepo.On("Upsert", ctx, mock.MatchedBy(func(d *model.LegalDocument) bool {
					return d.ID != "" && d.PDFFileKey == ""
				})).Return(nil)
			},
		},
		{
			name:    "with attachment",
			doc:     func() *model.LegalDocument { return publishedDoc("a") },
			withAtt: true,
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockDocumentRepository) {
				mStore.On("Put", ctx, "attachments/a.pdf", mock.Anything, mock.MatchedBy(func(o storage.PutObjectOptions) bool {
					return o.ContentType == "application/pdf" && o.Size == 8 && o.Metadata["document-slug"] == "a"
				})).Return(func(_ context.Context, key string, _ io.Reader, _ storage.PutObjectOptions) storage.ObjectInfo {
					return storage.ObjectInfo{Key: key}
				}, nil)
				mRepo.On("Upsert", ctx, mock.Anything).Return(nil)
			},
			wantKey: "attachments/a.pdf",
		},
		{
			name:       "invalid document",
			doc:        func() *model.LegalDocument { d := publishedDoc("a"); d.Title = ""; return d },
			setupMocks: func(*storeMocks.MockStorage, *repoMocks.MockDocumentRepository) {},
			wantErr:    model.ErrTitleRequired,
		},
		{
			name:    "repository error with successful rollback",
			doc:     func() *model.LegalDocument { return publishedDoc("a") },
			withAtt: true,
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockDocumentRepository) {
				mStore.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything).
					Return(storage.ObjectInfo{Key: "attachments/a.pdf"}, nil)
				mRepo.On("Upsert", ctx, mock.Anything).Return(errors.New("db fail"))
				mStore.On("Delete", ctx, "attachments/a.pdf").Return(nil)
			},
			wantErrMsg: "db save failed: db fail",
		},
		{
			name:    "repository error with failed rollback",
			doc:     func() *model.LegalDocument { return publishedDoc("a") },
			withAtt: true,
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockDocumentRepository) {
				mStore.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything).
					Return(storage.ObjectInfo{Key: "attachments/a.pdf"}, nil)
				mRepo.On("Upsert", ctx, mock.Anything).Return(errors.New("db fail"))
				mStore.On("Delete", ctx, "attachments/a.pdf").Return(errors.New("delete fail"))
			},
			wantErrMsg: "rollback delete failed: delete fail",
		},
		{
			name:    "storage error",
			doc:     func() *model.LegalDocument { return publishedDoc("a") },
			withAtt: true,
			setupMocks: func(mStore *storeMocks.MockStorage, _ *repoMocks.MockDocumentRepository) {
				mStore.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything).
					Return(storage.ObjectInfo{}, errors.New("storage fail"))
			},
			wantErrMsg: "upload to storage: storage fail",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mStore := new(storeMocks.MockStorage)
			mRepo := new(repoMocks.MockDocumentRepository)
			svc := NewDocumentService(mRepo, nil, mStore, nil)
			tt.setupMocks(mStore, mRepo)

			doc := tt.doc()
			var att *Attachment
			if tt.withAtt {
				att = &Attachment{Reader: strings.NewReader("%PDF-1.4"), Size: 8, Filename: "a.pdf"}
			}

			err := svc.Seed(ctx, doc, att)

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
				assert.ErrorIs(t, err, ErrInvalidDocument)
			case tt.wantErrMsg != "":
				assert.ErrorContains(t, err, tt.wantErrMsg)
			default:
				assert.NoError(t, err)
				assert.NotEmpty(t, doc.ID)
				assert.Equal(t, tt.wantKey, doc.PDFFileKey)
			}
			mStore.AssertExpectations(t)
			mRepo.AssertExpectations(t)
		})
	}
}

func TestDocumentService_SeedAttachmentWithoutStorage(t *testing.T) {
	svc := NewDocumentService(new(repoMocks.MockDocumentRepository), nil, nil, nil)

	err := svc.Seed(context.Background(), publishedDoc("a"), &Attachment{Reader: strings.NewReader("x")})

	assert.ErrorIs(t, err, ErrStorageDisabled)
}
