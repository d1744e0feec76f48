package repository

import (
	"context"

	"legalpub/internal/model"
)

// DocumentRepository is the content repository contract. Every read is
// restricted to published documents; drafts never leave the store.
type DocumentRepository interface {
	// ListPublished returns all published documents ordered by publication date, newest first.
	// Content and signature are not loaded.
	ListPublished(ctx context.Context) ([]model.DocumentSummary, error)

	// RecentPublished returns the limit most recent published documents.
	RecentPublished(ctx context.Context, limit int) ([]model.DocumentSummary, error)

	// FindPublishedBySlug returns the full published record for slug.
	// It returns sql.ErrNoRows when no published document has that slug.
	FindPublishedBySlug(ctx context.Context, slug string) (*model.LegalDocument, error)

	// PublishedSlugs returns slug and publication date of every published document.
	PublishedSlugs(ctx context.Context) ([]model.SlugEntry, error)

	// Upsert inserts or replaces a document keyed by slug. Used by the seeding CLI.
	Upsert(ctx context.Context, doc *model.LegalDocument) error
}
