package service

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"go-newsrank/internal/model"
	"go-newsrank/internal/store"
)

var t0 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close(db) })
	return db
}

func testStore(t *testing.T) *store.ArticleStore {
	t.Helper()
	return store.NewArticleStore(testDB(t))
}

func fakeClock() *clockwork.FakeClock {
	return clockwork.NewFakeClockAt(t0)
}

func record(url string) model.Record {
	return model.Record{URL: url, Title: "Title " + url, Source: "Yahoo", PublishedAt: t0}
}

func newClosedStore(t *testing.T, db *gorm.DB) *store.ArticleStore {
	t.Helper()
	require.NoError(t, store.Close(db))
	return store.NewArticleStore(db)
}
