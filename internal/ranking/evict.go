package ranking

import (
	"fmt"
	"math"
	"sort"
	"time"

	"go-newsrank/internal/model"
)

type EvictMode string

const (
	EvictKeepCount EvictMode = "keep_count" // 只保留分数最高的 KeepCount 篇
	EvictThreshold EvictMode = "threshold"  // 删除分数低于 Threshold 的文章
	EvictFraction  EvictMode = "fraction"   // 删除分数最低的 Fraction 比例
	EvictNone      EvictMode = "none"
)

// Policy 淘汰策略
type Policy struct {
	Mode      EvictMode
	KeepCount int
	Threshold int
	Fraction  float64
}

func (p Policy) Validate() error {
	switch p.Mode {
	case EvictKeepCount:
		if p.KeepCount < 0 {
			return fmt.Errorf("keep_count must be >= 0, got %d", p.KeepCount)
		}
	case EvictFraction:
		if p.Fraction < 0 || p.Fraction > 1 {
			return fmt.Errorf("fraction must be within [0,1], got %v", p.Fraction)
		}
	case EvictThreshold, EvictNone:
	default:
		return fmt.Errorf("unknown evict mode %q", p.Mode)
	}
	return nil
}

// Candidate 参与淘汰排序的文章
type Candidate struct {
	ID          uint
	Score       int
	PublishedAt time.Time
}

// Evict 以 now 为时间点重新计算每篇文章的分数,返回应删除的文章 ID
func Evict(articles []model.Article, now time.Time, policy Policy) []uint {
	candidates := make([]Candidate, 0, len(articles))
	for _, a := range articles {
		candidates = append(candidates, Candidate{
			ID:          a.ID,
			Score:       Score(a.Votes, a.PublishedAt, now),
			PublishedAt: a.PublishedAt,
		})
	}
	return Select(candidates, policy)
}

// Select 按分数升序排序后,根据策略选出最低分的一段
func Select(candidates []Candidate, policy Policy) []uint {
	sorted := make([]Candidate, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Score != sorted[j].Score {
			return sorted[i].Score < sorted[j].Score
		}
		if !sorted[i].PublishedAt.Equal(sorted[j].PublishedAt) {
			return sorted[i].PublishedAt.Before(sorted[j].PublishedAt)
		}
		return sorted[i].ID < sorted[j].ID
	})

	var n int
	switch policy.Mode {
	case EvictKeepCount:
		n = len(sorted) - policy.KeepCount
	case EvictFraction:
		n = int(math.Floor(float64(len(sorted)) * policy.Fraction))
	case EvictThreshold:
		for n < len(sorted) && sorted[n].Score < policy.Threshold {
			n++
		}
	}
	if n <= 0 {
		return nil
	}
	if n > len(sorted) {
		n = len(sorted)
	}

	ids := make([]uint, 0, n)
	for _, c := range sorted[:n] {
		ids = append(ids, c.ID)
	}
	return ids
}
