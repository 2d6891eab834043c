package store

import (
	"context"
	"time"

	"CupSentinel/internal/model"
)

// PriceStore persists price samples per ticker. Range results are ascending by
// time with at most one sample per (symbol, time).
type PriceStore interface {
	Append(ctx context.Context, points ...model.PricePoint) error
	Range(ctx context.Context, symbol string, from, to time.Time) ([]model.PricePoint, error)
	Trim(ctx context.Context, before time.Time) (int64, error)
	Close() error
}
