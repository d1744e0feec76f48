package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"legalpub/internal/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var summaryCols = []string{"id", "slug", "title", "document_type", "publication_date", "court_header", "excerpt", "case_number", "tags"}

func TestDocumentPostgres_ListPublished(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewDocumentPostgres(db)
	pub := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows(summaryCols).
		AddRow("id-1", "notice-1", "Notice One", "notice", pub, "IN THE COURT", "Short", "8:25-cv-1", []byte(`["a","b"]`)).
		AddRow("id-2", "motion-1", "Motion One", "motion", pub.AddDate(0, 0, -1), "", "", "", []byte(`[]`))

	mock.ExpectQuery("SELECT (.+) FROM legal_documents WHERE status = 'published' ORDER BY publication_date DESC").
		WillReturnRows(rows)

	items, err := repo.ListPublished(context.Background())

	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "notice-1", items[0].Slug)
	assert.Equal(t, model.TypeNotice, items[0].DocumentType)
	assert.Equal(t, []string{"a", "b"}, items[0].Tags)
	assert.Empty(t, items[1].Tags)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentPostgres_RecentPublished(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewDocumentPostgres(db)

	mock.ExpectQuery("SELECT (.+) FROM legal_documents (.+) LIMIT").
		WithArgs(6).
		WillReturnRows(sqlmock.NewRows(summaryCols))

	items, err := repo.RecentPublished(context.Background(), 6)

	require.NoError(t, err)
	assert.Empty(t, items)
	assert.NotNil(t, items)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentPostgres_FindPublishedBySlug(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()
	cols := []string{"id", "slug", "title", "document_type", "status", "publication_date", "filing_date",
		"court_header", "case_information", "document_subtitle", "content", "signature_block",
		"excerpt", "case_number", "tags", "pdf_file_key"}

	t.Run("found", func(t *testing.T) {
		pub := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
		filed := pub.AddDate(0, 0, -30)
		content := []byte(`[{"_key":"b1","style":"h3","children":[{"text":"I. Facts","marks":["strong"]}]}]`)
		rows := sqlmock.NewRows(cols).AddRow(
			"id-1", "notice-1", "Notice One", "notice", "published", pub, filed,
			"IN THE COURT\nTAMPA DIVISION", "Case No.: 1", "", content, "Respectfully,",
			"", "1", []byte(`["tag"]`), "attachments/notice-1.pdf",
		)

		mock.ExpectQuery("SELECT (.+) FROM legal_documents WHERE slug = \\$1 AND status = 'published'").
			WithArgs("notice-1").
			WillReturnRows(rows)

		doc, err := repo.FindPublishedBySlug(ctx, "notice-1")

		require.NoError(t, err)
		assert.Equal(t, "Notice One", doc.Title)
		assert.Equal(t, model.StatusPublished, doc.Status)
		require.NotNil(t, doc.FilingDate)
		assert.True(t, filed.Equal(*doc.FilingDate))
		require.Len(t, doc.Content, 1)
		assert.Equal(t, model.StyleH3, doc.Content[0].ParsedStyle())
		assert.Equal(t, []string{"strong"}, doc.Content[0].Children[0].Marks)
		assert.Equal(t, "attachments/notice-1.pdf", doc.PDFFileKey)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM legal_documents WHERE slug = \\$1").
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		doc, err := repo.FindPublishedBySlug(ctx, "missing")

		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.Nil(t, doc)
	})

	t.Run("corrupt content", func(t *testing.T) {
		rows := sqlmock.NewRows(cols).AddRow(
			"id-1", "bad", "Bad", "notice", "published", time.Now(), nil,
			"", "", "", []byte(`{not json`), "", "", "", []byte(`[]`), "",
		)
		mock.ExpectQuery("SELECT (.+) FROM legal_documents").
			WithArgs("bad").
			WillReturnRows(rows)

		doc, err := repo.FindPublishedBySlug(ctx, "bad")

		assert.ErrorContains(t, err, "decode content")
		assert.Nil(t, doc)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentPostgres_PublishedSlugs(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewDocumentPostgres(db)
	pub := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT slug, publication_date FROM legal_documents").
		WillReturnRows(sqlmock.NewRows([]string{"slug", "publication_date"}).
			AddRow("a", pub).
			AddRow("b", pub))

	items, err := repo.PublishedSlugs(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []model.SlugEntry{{Slug: "a", PublicationDate: pub}, {Slug: "b", PublicationDate: pub}}, items)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentPostgres_Upsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewDocumentPostgres(db)
	pub := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	doc := &model.LegalDocument{
		ID:              "id-1",
		Slug:            "notice-1",
		Title:           "Notice One",
		DocumentType:    model.TypeNotice,
		Status:          model.StatusDraft,
		PublicationDate: pub,
		Content:         []model.Block{{Children: []model.Span{{Text: "x"}}}},
	}

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO legal_documents (.+) ON CONFLICT \\(slug\\) DO UPDATE").
			WithArgs("id-1", "notice-1", "Notice One", "notice", "draft", pub, sqlmock.AnyArg(),
				"", "", "", sqlmock.AnyArg(), "", "", "", []byte(`[]`), "").
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Upsert(context.Background(), doc))
	})

	t.Run("db error", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO legal_documents").WillReturnError(errors.New("boom"))

		assert.Error(t, repo.Upsert(context.Background(), doc))
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
