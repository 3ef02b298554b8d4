package service

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"go-newsrank/internal/model"
)

type StatusService struct {
	db       *gorm.DB
	articles ArticleRepository
}

type SystemStatus struct {
	// 文章统计
	TotalArticles int64 `json:"total_articles"`

	// 订阅源统计
	TotalFeeds   int64 `json:"total_feeds"`
	EnabledFeeds int64 `json:"enabled_feeds"`

	// 定时任务信息
	Running         bool               `json:"running"`
	NextRefreshTime time.Time          `json:"next_refresh_time"`
	LastCycle       *model.CycleReport `json:"last_cycle,omitempty"`
}

func NewStatusService(db *gorm.DB, articles ArticleRepository) *StatusService {
	return &StatusService{db: db, articles: articles}
}

// GetSystemStatus 获取系统状态
func (s *StatusService) GetSystemStatus(ctx context.Context) (*SystemStatus, error) {
	total, err := s.articles.Count(ctx)
	if err != nil {
		return nil, err
	}
	status := &SystemStatus{TotalArticles: total}
	db := s.db.WithContext(ctx)

	if err := db.Model(&model.Feed{}).Count(&status.TotalFeeds).Error; err != nil {
		return nil, fmt.Errorf("%w: counting feeds: %w", model.ErrStoreUnavailable, err)
	}
	if err := db.Model(&model.Feed{}).Where("enabled = ?", true).Count(&status.EnabledFeeds).Error; err != nil {
		return nil, fmt.Errorf("%w: counting enabled feeds: %w", model.ErrStoreUnavailable, err)
	}

	return status, nil
}
