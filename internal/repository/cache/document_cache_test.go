package cache

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"legalpub/internal/model"
	repoMocks "legalpub/internal/repository/mocks"
)

func newCache(t *testing.T) (*DocumentCache, *repoMocks.MockDocumentRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	repo := new(repoMocks.MockDocumentRepository)
	return NewDocumentCache(repo, rdb, time.Minute, nil), repo, mr
}

func TestDocumentCache_FindPublishedBySlug(t *testing.T) {
	ctx := context.Background()
	c, repo, mr := newCache(t)

	doc := &model.LegalDocument{
		ID:         "id-1",
		Slug:       "notice-1",
		Title:      "Notice",
		Status:     model.StatusPublished,
		PDFFileKey: "attachments/notice-1.pdf",
		Content:    []model.Block{{Style: "h2", Children: []model.Span{{Text: "Heading"}}}},
	}
	repo.On("FindPublishedBySlug", mock.Anything, "notice-1").Return(doc, nil).Once()

	first, err := c.FindPublishedBySlug(ctx, "notice-1")
	require.NoError(t, err)
	second, err := c.FindPublishedBySlug(ctx, "notice-1")
	require.NoError(t, err)

	assert.Equal(t, doc.Title, first.Title)
	assert.Equal(t, doc.Title, second.Title)
	assert.Equal(t, doc.PDFFileKey, second.PDFFileKey)
	assert.Equal(t, model.StyleH2, second.Content[0].ParsedStyle())
	assert.True(t, mr.Exists(documentKey("notice-1")))
	assert.InDelta(t, time.Minute.Seconds(), mr.TTL(documentKey("notice-1")).Seconds(), 1)
	repo.AssertExpectations(t)
}

func TestDocumentCache_ErrorsAreNotCached(t *testing.T) {
	ctx := context.Background()
	c, repo, mr := newCache(t)

	repo.On("FindPublishedBySlug", mock.Anything, "missing").Return(nil, sql.ErrNoRows).Twice()

	_, err := c.FindPublishedBySlug(ctx, "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	_, err = c.FindPublishedBySlug(ctx, "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	assert.False(t, mr.Exists(documentKey("missing")))
	repo.AssertExpectations(t)
}

func TestDocumentCache_ExpiresAfterTTL(t *testing.T) {
	ctx := context.Background()
	c, repo, mr := newCache(t)

	list := []model.DocumentSummary{{Slug: "a"}}
	repo.On("ListPublished", mock.Anything).Return(list, nil).Twice()

	_, err := c.ListPublished(ctx)
	require.NoError(t, err)
	mr.FastForward(2 * time.Minute)
	got, err := c.ListPublished(ctx)
	require.NoError(t, err)

	assert.Equal(t, list, got)
	repo.AssertExpectations(t)
}

func TestDocumentCache_RedisDownFallsThrough(t *testing.T) {
	ctx := context.Background()
	c, repo, mr := newCache(t)
	mr.Close()

	entries := []model.SlugEntry{{Slug: "a"}}
	repo.On("PublishedSlugs", mock.Anything).Return(entries, nil).Once()

	got, err := c.PublishedSlugs(ctx)
	require.NoError(t, err)
	assert.Equal(t, entries, got)
	repo.AssertExpectations(t)
}

func TestDocumentCache_UpsertInvalidates(t *testing.T) {
	ctx := context.Background()
	c, repo, mr := newCache(t)

	repo.On("RecentPublished", mock.Anything, 6).Return([]model.DocumentSummary{{Slug: "a"}}, nil).Once()
	repo.On("ListPublished", mock.Anything).Return([]model.DocumentSummary{{Slug: "a"}}, nil).Once()
	_, err := c.RecentPublished(ctx, 6)
	require.NoError(t, err)
	_, err = c.ListPublished(ctx)
	require.NoError(t, err)
	require.True(t, mr.Exists(recentKey(6)))

	doc := &model.LegalDocument{Slug: "a"}
	repo.On("Upsert", mock.Anything, doc).Return(nil).Once()
	require.NoError(t, c.Upsert(ctx, doc))

	assert.False(t, mr.Exists(recentKey(6)))
	assert.False(t, mr.Exists(listKey()))
	repo.AssertExpectations(t)
}
