package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 刷新周期
var (
	RefreshCyclesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsrank_refresh_cycles_total",
			Help: "Refresh cycles by result (ok, fetch_error, store_error)",
		},
		[]string{"result"},
	)

	RefreshSkippedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "newsrank_refresh_skipped_total",
			Help: "Ticks skipped because a refresh cycle was still running",
		},
	)

	RefreshDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "newsrank_refresh_duration_seconds",
			Help:    "Refresh cycle duration in seconds",
			Buckets: []float64{.01, .05, .1, .5, 1, 5, 15, 30, 60, 120},
		},
	)
)

// 文章生命周期
var (
	ArticlesIngestedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "newsrank_articles_ingested_total",
			Help: "Articles inserted by the ingest step",
		},
	)

	ArticlesEvictedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "newsrank_articles_evicted_total",
			Help: "Articles deleted by the eviction sweep",
		},
	)

	VotesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsrank_votes_total",
			Help: "Applied votes by direction (up, down)",
		},
		[]string{"direction"},
	)
)
