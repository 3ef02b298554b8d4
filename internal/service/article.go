package service

import (
	"context"

	"go-newsrank/internal/model"
	"go-newsrank/internal/ranking"
)

// ArticleService 文章查询与删除。读取不加锁,分数可能落后于最近一次写入。
type ArticleService struct {
	store ArticleRepository
	locks *ranking.Locker
}

func NewArticleService(store ArticleRepository, locks *ranking.Locker) *ArticleService {
	return &ArticleService{store: store, locks: locks}
}

func (s *ArticleService) List(ctx context.Context, limit int) ([]model.Article, error) {
	return s.store.List(ctx, limit)
}

func (s *ArticleService) Get(ctx context.Context, id uint) (model.Article, error) {
	return s.store.Find(ctx, id)
}

// Remove 删除单篇文章
func (s *ArticleService) Remove(ctx context.Context, id uint) error {
	unlock := s.locks.Lock(id)
	defer unlock()
	return s.store.Delete(ctx, id)
}

// RemoveAll 删除全部文章,与淘汰策略无关
func (s *ArticleService) RemoveAll(ctx context.Context) (int64, error) {
	return s.store.DeleteAll(ctx)
}
