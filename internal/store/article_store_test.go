package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-newsrank/internal/model"
)

func testStore(t *testing.T) *ArticleStore {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { Close(db) })
	return NewArticleStore(db)
}

func sampleArticles() []model.Article {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return []model.Article{
		{URL: "https://a.com", Title: "Post A", Source: "Yahoo", PublishedAt: now.Add(-time.Hour), Score: 2, InsertedAt: now},
		{URL: "https://b.com", Title: "Post B", Source: "Yahoo", PublishedAt: now.Add(-2 * time.Hour), Score: 5, InsertedAt: now},
		{URL: "https://c.com", Title: "Post C", Source: "Reuters", PublishedAt: now.Add(-3 * time.Hour), Score: -1, InsertedAt: now},
	}
}

func TestInsertAndList(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	n, err := s.Insert(ctx, sampleArticles())
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	got, err := s.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "https://b.com", got[0].URL, "highest score first")
	assert.Equal(t, "https://c.com", got[2].URL)
	assert.NotZero(t, got[0].ID)

	limited, err := s.List(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestInsertIgnoresDuplicateURL(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	_, err := s.Insert(ctx, sampleArticles())
	require.NoError(t, err)

	n, err := s.Insert(ctx, sampleArticles()[:1])
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)
}

func TestKnownURLs(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	_, err := s.Insert(ctx, sampleArticles())
	require.NoError(t, err)

	known, err := s.KnownURLs(ctx, []string{"https://a.com", "https://z.com"})
	require.NoError(t, err)
	assert.Len(t, known, 1)
	assert.Contains(t, known, "https://a.com")

	empty, err := s.KnownURLs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestFindAndUpdate(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	_, err := s.Insert(ctx, sampleArticles())
	require.NoError(t, err)
	all, err := s.List(ctx, 0)
	require.NoError(t, err)
	id := all[0].ID

	require.NoError(t, s.UpdateRanking(ctx, id, 4, 9))
	got, err := s.Find(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 4, got.Votes)
	assert.Equal(t, 9, got.Score)

	require.NoError(t, s.UpdateScore(ctx, id, 0))
	got, err = s.Find(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 4, got.Votes, "score update leaves votes alone")
	assert.Equal(t, 0, got.Score)
}

func TestMissingArticleIsNotFound(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	_, err := s.Find(ctx, 42)
	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.NotErrorIs(t, err, model.ErrStoreUnavailable)

	assert.ErrorIs(t, s.UpdateRanking(ctx, 42, 1, 1), model.ErrNotFound)
	assert.ErrorIs(t, s.UpdateScore(ctx, 42, 1), model.ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, 42), model.ErrNotFound)
}

func TestDeleteAndDeleteAll(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	_, err := s.Insert(ctx, sampleArticles())
	require.NoError(t, err)
	all, err := s.List(ctx, 0)
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, all[0].ID))
	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	n, err := s.DeleteAll(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	count, err = s.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestClosedStoreIsUnavailable(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "closed.db"))
	require.NoError(t, err)
	s := NewArticleStore(db)
	require.NoError(t, Close(db))

	_, err = s.List(context.Background(), 0)
	assert.ErrorIs(t, err, model.ErrStoreUnavailable)
}
