package service

import (
	"context"

	"go-newsrank/internal/model"
)

// ArticleRepository 文章持久化接口,由 store.ArticleStore 实现
type ArticleRepository interface {
	KnownURLs(ctx context.Context, urls []string) (map[string]struct{}, error)
	Insert(ctx context.Context, articles []model.Article) (int, error)
	List(ctx context.Context, limit int) ([]model.Article, error)
	Find(ctx context.Context, id uint) (model.Article, error)
	UpdateRanking(ctx context.Context, id uint, votes, score int) error
	UpdateScore(ctx context.Context, id uint, score int) error
	Delete(ctx context.Context, id uint) error
	DeleteAll(ctx context.Context) (int64, error)
	Count(ctx context.Context) (int64, error)
}
