package service

import (
	"context"
	"fmt"

	"github.com/jonboulle/clockwork"

	"go-newsrank/internal/metrics"
	"go-newsrank/internal/model"
	"go-newsrank/internal/ranking"
)

type VoteService struct {
	store ArticleRepository
	locks *ranking.Locker
	clock clockwork.Clock
}

func NewVoteService(store ArticleRepository, locks *ranking.Locker, clock clockwork.Clock) *VoteService {
	return &VoteService{store: store, locks: locks, clock: clock}
}

// ApplyVote 对文章票数加减 1 并重新计算分数。
// 同一篇文章的读-改-写在文章锁内完成,不同文章互不影响。
func (s *VoteService) ApplyVote(ctx context.Context, id uint, delta int) (model.VoteResult, error) {
	if delta != 1 && delta != -1 {
		return model.VoteResult{}, fmt.Errorf("%w: got %d", model.ErrInvalidVote, delta)
	}

	unlock := s.locks.Lock(id)
	defer unlock()

	article, err := s.store.Find(ctx, id)
	if err != nil {
		return model.VoteResult{}, err
	}

	votes := article.Votes + delta
	score := ranking.Score(votes, article.PublishedAt, s.clock.Now())

	if err := s.store.UpdateRanking(ctx, id, votes, score); err != nil {
		return model.VoteResult{}, err
	}

	direction := "up"
	if delta < 0 {
		direction = "down"
	}
	metrics.VotesTotal.WithLabelValues(direction).Inc()

	return model.VoteResult{Votes: votes, Score: score}, nil
}

func (s *VoteService) Upvote(ctx context.Context, id uint) (model.VoteResult, error) {
	return s.ApplyVote(ctx, id, 1)
}

func (s *VoteService) Downvote(ctx context.Context, id uint) (model.VoteResult, error) {
	return s.ApplyVote(ctx, id, -1)
}
