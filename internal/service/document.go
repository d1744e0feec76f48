package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"legalpub/internal/export"
	"legalpub/internal/logger"
	"legalpub/internal/model"
	"legalpub/internal/repository"
	"legalpub/internal/storage"
)

var (
	ErrSlugRequired     = errors.New("slug is required")
	ErrNotFound         = errors.New("document not found")
	ErrExportFailed     = errors.New("export failed")
	ErrInvalidDocument  = errors.New("invalid document")
	ErrReaderNil        = errors.New("reader is nil")
	ErrStorageDisabled  = errors.New("attachment storage is not configured")
	ErrExporterDisabled = errors.New("no exporter configured")
)

const (
	// RecentLimit is the number of documents on the home page.
	RecentLimit = 6
	// AttachmentURLExpiry bounds presigned attachment links.
	AttachmentURLExpiry = 15 * time.Minute
)

// Attachment is an uploaded PDF that accompanies a seeded document.
type Attachment struct {
	Reader   io.Reader
	Size     int64
	Filename string
}

// DocumentService defines the use cases of the public site.
type DocumentService interface {
	// List returns every published document, newest first.
	List(ctx context.Context) ([]model.DocumentSummary, error)

	// Recent returns the RecentLimit newest published documents.
	Recent(ctx context.Context) ([]model.DocumentSummary, error)

	// Get returns one published document by slug.
	Get(ctx context.Context, slug string) (*model.LegalDocument, error)

	// Slugs returns the sitemap entries of all published documents.
	Slugs(ctx context.Context) ([]model.SlugEntry, error)

	// Export fetches a published document and renders it as a PDF with the
	// configured strategy.
	Export(ctx context.Context, slug string) (*export.Artifact, error)

	// AttachmentURL returns a presigned download link for the document's
	// uploaded PDF, or "" when it has none.
	AttachmentURL(ctx context.Context, doc *model.LegalDocument) (string, error)

	// Seed validates and stores a document. When att is set the PDF is
	// uploaded first and removed again if the database write fails.
	Seed(ctx context.Context, doc *model.LegalDocument, att *Attachment) error
}

// documentService is a concrete implementation of DocumentService.
type documentService struct {
	repo     repository.DocumentRepository
	exporter export.Exporter
	store    storage.Storage
	log      *logger.Logger
}

// NewDocumentService constructs a new DocumentService. exporter and store
// may be nil when the deployment does not use them.
func NewDocumentService(repo repository.DocumentRepository, exporter export.Exporter, store storage.Storage, log *logger.Logger) DocumentService {
	if log == nil {
		log = logger.Nop()
	}
	return &documentService{
		repo:     repo,
		exporter: exporter,
		store:    store,
		log:      log.With("component", "document_service"),
	}
}

func (s *documentService) List(ctx context.Context) ([]model.DocumentSummary, error) {
	return s.repo.ListPublished(ctx)
}

func (s *documentService) Recent(ctx context.Context) ([]model.DocumentSummary, error) {
	return s.repo.RecentPublished(ctx, RecentLimit)
}

func (s *documentService) Slugs(ctx context.Context) ([]model.SlugEntry, error) {
	return s.repo.PublishedSlugs(ctx)
}

// Get maps a missing row and a non-published document to ErrNotFound.
func (s *documentService) Get(ctx context.Context, slug string) (*model.LegalDocument, error) {
	if slug == "" {
		return nil, ErrSlugRequired
	}
	doc, err := s.repo.FindPublishedBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find document %q: %w", slug, err)
	}
	if !doc.IsPublished() {
		return nil, ErrNotFound
	}
	return doc, nil
}

func (s *documentService) Export(ctx context.Context, slug string) (*export.Artifact, error) {
	doc, err := s.Get(ctx, slug)
	if err != nil {
		if errors.Is(err, ErrSlugRequired) || errors.Is(err, ErrNotFound) {
			return nil, err
		}
		s.log.Error("export_fetch_failed", "slug", slug, "error", err.Error())
		return nil, fmt.Errorf("%w: %w", ErrExportFailed, err)
	}
	if s.exporter == nil {
		return nil, fmt.Errorf("%w: %w", ErrExportFailed, ErrExporterDisabled)
	}

	art, err := s.exporter.Export(ctx, doc)
	if err != nil {
		s.log.Error("export_failed",
			"slug", slug,
			"strategy", string(s.exporter.Strategy()),
			"error", err.Error(),
		)
		return nil, fmt.Errorf("%w: %w", ErrExportFailed, err)
	}
	s.log.Info("export_completed",
		"slug", slug,
		"strategy", string(s.exporter.Strategy()),
		"bytes", len(art.Body),
	)
	return art, nil
}

func (s *documentService) AttachmentURL(ctx context.Context, doc *model.LegalDocument) (string, error) {
	if doc == nil || doc.PDFFileKey == "" || s.store == nil {
		return "", nil
	}
	u, err := s.store.PresignGet(ctx, doc.PDFFileKey, AttachmentURLExpiry)
	if err != nil {
		return "", fmt.Errorf("presign attachment: %w", err)
	}
	return u, nil
}

func (s *documentService) Seed(ctx context.Context, doc *model.LegalDocument, att *Attachment) error {
	if doc == nil {
		return ErrInvalidDocument
	}
	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	if err := doc.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	var key string
	if att != nil {
		if s.store == nil {
			return ErrStorageDisabled
		}
		if att.Reader == nil {
			return ErrReaderNil
		}
		info, err := s.store.Put(ctx, storage.AttachmentKey(doc.Slug), att.Reader, storage.PutObjectOptions{
			Size:        att.Size,
			ContentType: export.ContentType,
			Metadata: map[string]string{
				"document-slug":     doc.Slug,
				"original-filename": att.Filename,
			},
		})
		if err != nil {
			return fmt.Errorf("upload to storage: %w", err)
		}
		key = info.Key
		doc.PDFFileKey = key
	}

	if err := s.repo.Upsert(ctx, doc); err != nil {
		if key != "" {
			// Rollback: delete the uploaded attachment
			if delErr := s.store.Delete(ctx, key); delErr != nil {
				return fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
			}
		}
		return fmt.Errorf("db save failed: %w", err)
	}
	s.log.Info("document_seeded", "slug", doc.Slug, "status", string(doc.Status), "attachment", key != "")
	return nil
}
