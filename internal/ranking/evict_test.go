package ranking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-newsrank/internal/model"
)

func candidates(scores ...int) []Candidate {
	out := make([]Candidate, len(scores))
	for i, s := range scores {
		out[i] = Candidate{ID: uint(i + 1), Score: s, PublishedAt: t0}
	}
	return out
}

func TestSelect_KeepCount(t *testing.T) {
	// 分数 [3,1,5,2,4] 保留 3 篇,删除 1 和 2 (ID 2 与 4)
	got := Select(candidates(3, 1, 5, 2, 4), Policy{Mode: EvictKeepCount, KeepCount: 3})

	assert.ElementsMatch(t, []uint{2, 4}, got)
}

func TestSelect_KeepCountLargerThanSet(t *testing.T) {
	got := Select(candidates(3, 1), Policy{Mode: EvictKeepCount, KeepCount: 10})

	assert.Empty(t, got)
}

func TestSelect_Threshold(t *testing.T) {
	got := Select(candidates(3, -1, 5, 0, 4), Policy{Mode: EvictThreshold, Threshold: 1})

	assert.ElementsMatch(t, []uint{2, 4}, got)
}

func TestSelect_Fraction(t *testing.T) {
	got := Select(candidates(3, 1, 5, 2, 4), Policy{Mode: EvictFraction, Fraction: 0.5})

	assert.ElementsMatch(t, []uint{2, 4}, got)
}

func TestSelect_None(t *testing.T) {
	assert.Empty(t, Select(candidates(3, 1, 5), Policy{Mode: EvictNone}))
}

func TestSelect_TiesEvictOlderFirst(t *testing.T) {
	cs := []Candidate{
		{ID: 1, Score: 0, PublishedAt: t0},
		{ID: 2, Score: 0, PublishedAt: t0.Add(-time.Hour)},
		{ID: 3, Score: 0, PublishedAt: t0.Add(time.Hour)},
	}

	got := Select(cs, Policy{Mode: EvictKeepCount, KeepCount: 2})

	assert.Equal(t, []uint{2}, got)
}

func TestEvict_ComputesScoresAtNow(t *testing.T) {
	// 票数 3/8/21/55/149 在零流逝时间下分数为 1/2/3/4/5
	articles := []model.Article{
		{ID: 10, Votes: 21, PublishedAt: t0},
		{ID: 11, Votes: 3, PublishedAt: t0},
		{ID: 12, Votes: 149, PublishedAt: t0},
		{ID: 13, Votes: 8, PublishedAt: t0},
		{ID: 14, Votes: 55, PublishedAt: t0},
	}

	got := Evict(articles, t0, Policy{Mode: EvictKeepCount, KeepCount: 3})

	assert.ElementsMatch(t, []uint{11, 13}, got)
}

func TestEvict_IgnoresCachedScore(t *testing.T) {
	articles := []model.Article{
		{ID: 1, Votes: -5, Score: 100, PublishedAt: t0},
		{ID: 2, Votes: 5, Score: -100, PublishedAt: t0},
	}

	got := Evict(articles, t0.Add(10*DecayConstant*time.Second), Policy{Mode: EvictKeepCount, KeepCount: 1})

	assert.Equal(t, []uint{1}, got)
}

func TestPolicy_Validate(t *testing.T) {
	require.NoError(t, Policy{Mode: EvictKeepCount, KeepCount: 5}.Validate())
	require.NoError(t, Policy{Mode: EvictThreshold, Threshold: -3}.Validate())
	require.NoError(t, Policy{Mode: EvictNone}.Validate())

	assert.Error(t, Policy{Mode: EvictKeepCount, KeepCount: -1}.Validate())
	assert.Error(t, Policy{Mode: EvictFraction, Fraction: 1.5}.Validate())
	assert.Error(t, Policy{Mode: "bottom"}.Validate())
}
