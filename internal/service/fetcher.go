package service

import (
	"context"

	"go-newsrank/internal/model"
)

//go:generate mockgen -source=fetcher.go -destination=mock_fetcher_test.go -package=service

// Fetcher 每次调用返回一批标准化的文章记录
type Fetcher interface {
	Fetch(ctx context.Context) ([]model.Record, error)
}
