package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"legalpub/internal/model"
	"legalpub/internal/repository"
)

// DocumentPostgres is a PostgreSQL implementation of repository.DocumentRepository.
// Portable-text content and tags are stored as JSONB.
type DocumentPostgres struct {
	db *sql.DB
}

// NewDocumentPostgres creates a new DocumentPostgres repository.
func NewDocumentPostgres(db *sql.DB) *DocumentPostgres {
	return &DocumentPostgres{db: db}
}

var _ repository.DocumentRepository = (*DocumentPostgres)(nil)

const summaryColumns = `id, slug, title, document_type, publication_date,
		COALESCE(court_header, ''), COALESCE(excerpt, ''), COALESCE(case_number, ''), tags`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSummary(row rowScanner) (model.DocumentSummary, error) {
	var (
		s    model.DocumentSummary
		tags []byte
	)
	if err := row.Scan(
		&s.ID,
		&s.Slug,
		&s.Title,
		&s.DocumentType,
		&s.PublicationDate,
		&s.CourtHeader,
		&s.Excerpt,
		&s.CaseNumber,
		&tags,
	); err != nil {
		return s, err
	}
	if err := decodeJSON(tags, &s.Tags); err != nil {
		return s, fmt.Errorf("decode tags: %w", err)
	}
	return s, nil
}

func (r *DocumentPostgres) listSummaries(ctx context.Context, q string, args ...any) ([]model.DocumentSummary, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.DocumentSummary, 0)
	for rows.Next() {
		s, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// ListPublished returns every published document, newest first.
func (r *DocumentPostgres) ListPublished(ctx context.Context) ([]model.DocumentSummary, error) {
	q := `
		SELECT ` + summaryColumns + `
		FROM legal_documents
		WHERE status = 'published'
		ORDER BY publication_date DESC, slug ASC
	`
	return r.listSummaries(ctx, q)
}

// RecentPublished returns the limit most recent published documents.
func (r *DocumentPostgres) RecentPublished(ctx context.Context, limit int) ([]model.DocumentSummary, error) {
	q := `
		SELECT ` + summaryColumns + `
		FROM legal_documents
		WHERE status = 'published'
		ORDER BY publication_date DESC, slug ASC
		LIMIT $1
	`
	return r.listSummaries(ctx, q, limit)
}

// FindPublishedBySlug fetches a single published document with its content.
func (r *DocumentPostgres) FindPublishedBySlug(ctx context.Context, slug string) (*model.LegalDocument, error) {
	const q = `
		SELECT id, slug, title, document_type, status, publication_date, filing_date,
			COALESCE(court_header, ''), COALESCE(case_information, ''), COALESCE(document_subtitle, ''),
			content, COALESCE(signature_block, ''), COALESCE(excerpt, ''), COALESCE(case_number, ''),
			tags, COALESCE(pdf_file_key, '')
		FROM legal_documents
		WHERE slug = $1 AND status = 'published'
	`
	var (
		d       model.LegalDocument
		filing  sql.NullTime
		content []byte
		tags    []byte
	)
	if err := r.db.QueryRowContext(ctx, q, slug).Scan(
		&d.ID,
		&d.Slug,
		&d.Title,
		&d.DocumentType,
		&d.Status,
		&d.PublicationDate,
		&filing,
		&d.CourtHeader,
		&d.CaseInformation,
		&d.DocumentSubtitle,
		&content,
		&d.SignatureBlock,
		&d.Excerpt,
		&d.CaseNumber,
		&tags,
		&d.PDFFileKey,
	); err != nil {
		return nil, err
	}
	if filing.Valid {
		t := filing.Time
		d.FilingDate = &t
	}
	if err := decodeJSON(content, &d.Content); err != nil {
		return nil, fmt.Errorf("decode content: %w", err)
	}
	if err := decodeJSON(tags, &d.Tags); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	return &d, nil
}

// PublishedSlugs lists the sitemap entries.
func (r *DocumentPostgres) PublishedSlugs(ctx context.Context) ([]model.SlugEntry, error) {
	const q = `
		SELECT slug, publication_date
		FROM legal_documents
		WHERE status = 'published' AND slug <> ''
		ORDER BY publication_date DESC, slug ASC
	`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.SlugEntry, 0)
	for rows.Next() {
		var e model.SlugEntry
		if err := rows.Scan(&e.Slug, &e.PublicationDate); err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Upsert inserts the document or replaces the row with the same slug.
func (r *DocumentPostgres) Upsert(ctx context.Context, doc *model.LegalDocument) error {
	const q = `
		INSERT INTO legal_documents (
			id, slug, title, document_type, status, publication_date, filing_date,
			court_header, case_information, document_subtitle, content, signature_block,
			excerpt, case_number, tags, pdf_file_key, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7,
			NULLIF($8, ''), NULLIF($9, ''), NULLIF($10, ''), $11, NULLIF($12, ''),
			NULLIF($13, ''), NULLIF($14, ''), $15, NULLIF($16, ''), now()
		)
		ON CONFLICT (slug) DO UPDATE SET
			title = EXCLUDED.title,
			document_type = EXCLUDED.document_type,
			status = EXCLUDED.status,
			publication_date = EXCLUDED.publication_date,
			filing_date = EXCLUDED.filing_date,
			court_header = EXCLUDED.court_header,
			case_information = EXCLUDED.case_information,
			document_subtitle = EXCLUDED.document_subtitle,
			content = EXCLUDED.content,
			signature_block = EXCLUDED.signature_block,
			excerpt = EXCLUDED.excerpt,
			case_number = EXCLUDED.case_number,
			tags = EXCLUDED.tags,
			pdf_file_key = EXCLUDED.pdf_file_key,
			updated_at = now()
	`
	content, err := json.Marshal(doc.Content)
	if err != nil {
		return fmt.Errorf("encode content: %w", err)
	}
	tags := doc.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("encode tags: %w", err)
	}
	var filing sql.NullTime
	if doc.FilingDate != nil {
		filing = sql.NullTime{Time: *doc.FilingDate, Valid: true}
	}

	_, err = r.db.ExecContext(ctx, q,
		doc.ID,
		doc.Slug,
		doc.Title,
		string(doc.DocumentType),
		string(doc.Status),
		doc.PublicationDate,
		filing,
		doc.CourtHeader,
		doc.CaseInformation,
		doc.DocumentSubtitle,
		content,
		doc.SignatureBlock,
		doc.Excerpt,
		doc.CaseNumber,
		tagsJSON,
		doc.PDFFileKey,
	)
	return err
}

func decodeJSON(raw []byte, dst any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dst)
}
