package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/jonboulle/clockwork"
	"github.com/mmcdole/gofeed"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"go-newsrank/config"
	"go-newsrank/internal/model"
)

type FeedService struct {
	db          *gorm.DB
	client      *http.Client
	clock       clockwork.Clock
	concurrency int
	maxItems    int
}

func NewFeedService(db *gorm.DB, cfg config.FeedConfig, clock clockwork.Clock) *FeedService {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	return &FeedService{
		db:          db,
		client:      &http.Client{Timeout: cfg.Timeout},
		clock:       clock,
		concurrency: concurrency,
		maxItems:    cfg.MaxItems,
	}
}

// Seed 仅在订阅源表为空时写入配置文件中的订阅源,之后以 API 的增删为准
func (s *FeedService) Seed(ctx context.Context, sources []config.FeedSource) error {
	var existing int64
	if err := s.db.WithContext(ctx).Model(&model.Feed{}).Count(&existing).Error; err != nil {
		return fmt.Errorf("%w: counting feeds: %w", model.ErrStoreUnavailable, err)
	}
	if existing > 0 {
		slog.InfoContext(ctx, "Feeds already registered, skipping seed", "feeds", existing)
		return nil
	}

	for _, src := range sources {
		feed := model.Feed{Name: src.Name, URL: src.URL, Enabled: true}
		if err := s.db.WithContext(ctx).Where("url = ?", src.URL).FirstOrCreate(&feed).Error; err != nil {
			return fmt.Errorf("seeding feed %s: %w", src.URL, err)
		}
	}
	return nil
}

func (s *FeedService) List(ctx context.Context) ([]model.Feed, error) {
	var feeds []model.Feed
	if err := s.db.WithContext(ctx).Order("id").Find(&feeds).Error; err != nil {
		return nil, fmt.Errorf("%w: listing feeds: %w", model.ErrStoreUnavailable, err)
	}
	return feeds, nil
}

func (s *FeedService) Create(ctx context.Context, feed *model.Feed) error {
	enabled := feed.Enabled
	if err := s.db.WithContext(ctx).Create(feed).Error; err != nil {
		return fmt.Errorf("%w: creating feed: %w", model.ErrStoreUnavailable, err)
	}
	// enabled 有数据库默认值 true,零值 false 不会随 Create 写入
	if !enabled {
		if err := s.db.WithContext(ctx).Model(feed).Update("enabled", false).Error; err != nil {
			return fmt.Errorf("%w: disabling feed: %w", model.ErrStoreUnavailable, err)
		}
	}
	return nil
}

func (s *FeedService) Delete(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&model.Feed{}, id)
	if result.Error != nil {
		return fmt.Errorf("%w: deleting feed %d: %w", model.ErrStoreUnavailable, id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("feed %d: %w", id, model.ErrNotFound)
	}
	return nil
}

// Fetch 并发抓取所有启用的订阅源。
// 单个源失败只记录日志;全部失败时返回 ErrFeedFetch。
func (s *FeedService) Fetch(ctx context.Context) ([]model.Record, error) {
	var feeds []model.Feed
	if err := s.db.WithContext(ctx).Where("enabled = ?", true).Find(&feeds).Error; err != nil {
		return nil, fmt.Errorf("%w: listing enabled feeds: %w", model.ErrStoreUnavailable, err)
	}
	if len(feeds) == 0 {
		return nil, nil
	}

	var (
		mu      sync.Mutex
		records []model.Record
		errs    []error
	)

	var g errgroup.Group
	g.SetLimit(s.concurrency)

	for _, feed := range feeds {
		g.Go(func() error {
			recs, err := s.FetchFeed(ctx, feed)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				slog.WarnContext(ctx, "Feed fetch failed", "feed", feed.Name, "url", feed.URL, "error", err)
				errs = append(errs, err)
				return nil
			}
			records = append(records, recs...)
			return nil
		})
	}
	_ = g.Wait()

	if len(errs) == len(feeds) {
		return nil, fmt.Errorf("%w: %w", model.ErrFeedFetch, errors.Join(errs...))
	}
	return records, nil
}

// FetchFeed 抓取单个订阅源并转换为标准记录
func (s *FeedService) FetchFeed(ctx context.Context, feed model.Feed) ([]model.Record, error) {
	// gofeed.Parser 内部有解析状态,每次抓取单独创建
	parser := gofeed.NewParser()
	parser.Client = s.client

	parsed, err := parser.ParseURLWithContext(feed.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", feed.Name, err)
	}

	source := feed.Name
	if source == "" {
		source = parsed.Title
	}

	items := parsed.Items
	if s.maxItems > 0 && len(items) > s.maxItems {
		items = items[:s.maxItems]
	}

	records := make([]model.Record, 0, len(items))
	for _, item := range items {
		link := strings.TrimSpace(item.Link)
		if link == "" {
			continue
		}
		records = append(records, model.Record{
			URL:         link,
			Title:       cleanText(item.Title),
			Source:      source,
			PublishedAt: s.parseTime(item),
		})
	}
	return records, nil
}

func (s *FeedService) parseTime(item *gofeed.Item) time.Time {
	if item.PublishedParsed != nil {
		return *item.PublishedParsed
	}
	if item.UpdatedParsed != nil {
		return *item.UpdatedParsed
	}
	return s.clock.Now()
}

// cleanText 去掉标题中的 HTML 标签并合并空白
func cleanText(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.Join(strings.Fields(s), " ")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.Join(strings.Fields(s), " ")
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
