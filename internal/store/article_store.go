package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"go-newsrank/internal/model"
)

type ArticleStore struct {
	db *gorm.DB
}

func NewArticleStore(db *gorm.DB) *ArticleStore {
	return &ArticleStore{db: db}
}

func wrap(op string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", op, model.ErrNotFound)
	}
	return fmt.Errorf("%w: %s: %w", model.ErrStoreUnavailable, op, err)
}

// KnownURLs 返回 urls 中已经存在的部分
func (s *ArticleStore) KnownURLs(ctx context.Context, urls []string) (map[string]struct{}, error) {
	known := make(map[string]struct{})
	if len(urls) == 0 {
		return known, nil
	}

	var found []string
	err := s.db.WithContext(ctx).Model(&model.Article{}).
		Where("url IN ?", urls).
		Pluck("url", &found).Error
	if err != nil {
		return nil, wrap("known urls", err)
	}

	for _, u := range found {
		known[u] = struct{}{}
	}
	return known, nil
}

// Insert 批量插入新文章,URL 冲突的行被忽略。返回实际插入的行数。
func (s *ArticleStore) Insert(ctx context.Context, articles []model.Article) (int, error) {
	if len(articles) == 0 {
		return 0, nil
	}

	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "url"}}, DoNothing: true}).
		CreateInBatches(&articles, 100)
	if result.Error != nil {
		return 0, wrap("insert articles", result.Error)
	}
	return int(result.RowsAffected), nil
}

// List 按分数降序返回文章,limit <= 0 时返回全部
func (s *ArticleStore) List(ctx context.Context, limit int) ([]model.Article, error) {
	query := s.db.WithContext(ctx).Order("score DESC").Order("published_at DESC").Order("id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var articles []model.Article
	if err := query.Find(&articles).Error; err != nil {
		return nil, wrap("list articles", err)
	}
	return articles, nil
}

func (s *ArticleStore) Find(ctx context.Context, id uint) (model.Article, error) {
	var article model.Article
	if err := s.db.WithContext(ctx).First(&article, id).Error; err != nil {
		return model.Article{}, wrap(fmt.Sprintf("find article %d", id), err)
	}
	return article, nil
}

// UpdateRanking 写入票数和分数
func (s *ArticleStore) UpdateRanking(ctx context.Context, id uint, votes, score int) error {
	return s.update(ctx, id, map[string]any{"votes": votes, "score": score})
}

// UpdateScore 只写入分数,票数保持不变
func (s *ArticleStore) UpdateScore(ctx context.Context, id uint, score int) error {
	return s.update(ctx, id, map[string]any{"score": score})
}

func (s *ArticleStore) update(ctx context.Context, id uint, fields map[string]any) error {
	result := s.db.WithContext(ctx).Model(&model.Article{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return wrap(fmt.Sprintf("update article %d", id), result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("update article %d: %w", id, model.ErrNotFound)
	}
	return nil
}

func (s *ArticleStore) Delete(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&model.Article{}, id)
	if result.Error != nil {
		return wrap(fmt.Sprintf("delete article %d", id), result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("delete article %d: %w", id, model.ErrNotFound)
	}
	return nil
}

// DeleteAll 删除全部文章,返回删除的行数
func (s *ArticleStore) DeleteAll(ctx context.Context) (int64, error) {
	result := s.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.Article{})
	if result.Error != nil {
		return 0, wrap("delete all articles", result.Error)
	}
	return result.RowsAffected, nil
}

func (s *ArticleStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&model.Article{}).Count(&n).Error; err != nil {
		return 0, wrap("count articles", err)
	}
	return n, nil
}
