package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"go-newsrank/internal/metrics"
	"go-newsrank/internal/model"
	"go-newsrank/internal/ranking"
)

// RefreshService 执行刷新周期:抓取 → 去重 → 入库 → 重新打分 → 淘汰
type RefreshService struct {
	fetcher Fetcher
	store   ArticleRepository
	locks   *ranking.Locker
	clock   clockwork.Clock
	policy  ranking.Policy
}

func NewRefreshService(fetcher Fetcher, store ArticleRepository, locks *ranking.Locker, clock clockwork.Clock, policy ranking.Policy) *RefreshService {
	return &RefreshService{
		fetcher: fetcher,
		store:   store,
		locks:   locks,
		clock:   clock,
		policy:  policy,
	}
}

// Run 执行一次完整的刷新周期。任一步骤失败时周期提前结束,
// 已完成步骤的结果保留在 report 中。
func (s *RefreshService) Run(ctx context.Context) (model.CycleReport, error) {
	report := model.CycleReport{StartedAt: s.clock.Now()}

	err := s.run(ctx, &report)

	report.FinishedAt = s.clock.Now()
	if err != nil {
		report.Error = err.Error()
	}
	return report, err
}

func (s *RefreshService) run(ctx context.Context, report *model.CycleReport) error {
	records, err := s.fetcher.Fetch(ctx)
	if err != nil {
		if !errors.Is(err, model.ErrFeedFetch) {
			err = fmt.Errorf("%w: %w", model.ErrFeedFetch, err)
		}
		return err
	}
	report.Fetched = len(records)

	inserted, err := s.Ingest(ctx, records)
	if err != nil {
		return fmt.Errorf("ingest: %w", err)
	}
	report.Inserted = inserted

	now := s.clock.Now()

	articles, err := s.Rescore(ctx, now)
	report.Rescored = len(articles)
	if err != nil {
		return fmt.Errorf("rescore: %w", err)
	}

	evicted, err := s.Evict(ctx, articles, now)
	report.Evicted = evicted
	if err != nil {
		return fmt.Errorf("evict: %w", err)
	}

	return nil
}

// Ingest 过滤已知 URL 后插入新文章,返回插入数量
func (s *RefreshService) Ingest(ctx context.Context, records []model.Record) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	known, err := s.store.KnownURLs(ctx, ranking.URLs(records))
	if err != nil {
		return 0, err
	}

	fresh := ranking.Dedup(records, known)
	if len(fresh) == 0 {
		return 0, nil
	}

	now := s.clock.Now()
	articles := make([]model.Article, 0, len(fresh))
	for _, rec := range fresh {
		articles = append(articles, model.Article{
			URL:         rec.URL,
			Title:       rec.Title,
			Source:      rec.Source,
			PublishedAt: rec.PublishedAt,
			Votes:       0,
			Score:       ranking.Score(0, rec.PublishedAt, now),
			InsertedAt:  now,
		})
	}

	n, err := s.store.Insert(ctx, articles)
	if err != nil {
		return 0, err
	}
	metrics.ArticlesIngestedTotal.Add(float64(n))
	return n, nil
}

// Rescore 以 now 为准重新计算所有文章的分数。
// 每篇文章在自己的锁内重新读取,不会覆盖并发投票写入的票数。
// 返回重新打分后的文章;扫描过程中被删除的文章会被跳过。
func (s *RefreshService) Rescore(ctx context.Context, now time.Time) ([]model.Article, error) {
	articles, err := s.store.List(ctx, 0)
	if err != nil {
		return nil, err
	}

	rescored := make([]model.Article, 0, len(articles))
	for _, a := range articles {
		if err := ctx.Err(); err != nil {
			return rescored, err
		}

		current, err := s.rescoreOne(ctx, a.ID, now)
		if errors.Is(err, model.ErrNotFound) {
			continue
		}
		if err != nil {
			return rescored, err
		}
		rescored = append(rescored, current)
	}
	return rescored, nil
}

func (s *RefreshService) rescoreOne(ctx context.Context, id uint, now time.Time) (model.Article, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	article, err := s.store.Find(ctx, id)
	if err != nil {
		return model.Article{}, err
	}

	score := ranking.Score(article.Votes, article.PublishedAt, now)
	if score != article.Score {
		if err := s.store.UpdateScore(ctx, id, score); err != nil {
			return model.Article{}, err
		}
		article.Score = score
	}
	return article, nil
}

// Evict 按淘汰策略删除低分文章,返回实际删除数量。
// ctx 已结束时整个步骤跳过;一旦开始则不再受 ctx 取消影响,直到全部删除完成。
func (s *RefreshService) Evict(ctx context.Context, articles []model.Article, now time.Time) (int, error) {
	ids := ranking.Evict(articles, now, s.policy)
	if len(ids) == 0 {
		return 0, nil
	}
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("eviction skipped: %w", err)
	}
	ctx = context.WithoutCancel(ctx)

	var evicted int
	for _, id := range ids {
		err := s.removeOne(ctx, id)
		if errors.Is(err, model.ErrNotFound) {
			continue
		}
		if err != nil {
			return evicted, err
		}
		evicted++
	}

	metrics.ArticlesEvictedTotal.Add(float64(evicted))
	slog.DebugContext(ctx, "Evicted low score articles", "candidates", len(ids), "evicted", evicted, "mode", s.policy.Mode)
	return evicted, nil
}

func (s *RefreshService) removeOne(ctx context.Context, id uint) error {
	unlock := s.locks.Lock(id)
	defer unlock()
	return s.store.Delete(ctx, id)
}
