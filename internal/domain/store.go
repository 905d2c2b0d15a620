package domain

import (
	"context"
	"time"
)

// SpreadFilter narrows List queries. Zero values mean "no constraint";
// Since supports the dashboard's incremental "records newer than X" polling.
type SpreadFilter struct {
	Symbol string
	Pair   string
	Since  *time.Time
	Until  *time.Time
	Limit  int
	Offset int
}

// SpreadStore persists detected spreads and serves the read API. InsertBatch
// must accept an empty batch as a no-op success.
type SpreadStore interface {
	InsertBatch(ctx context.Context, spreads []Spread) error
	List(ctx context.Context, filter SpreadFilter) ([]Spread, error)
	ListRecent(ctx context.Context, limit int) ([]Spread, error)
	ListLargest(ctx context.Context, since time.Time, limit int) ([]Spread, error)
	ListBefore(ctx context.Context, before time.Time) ([]Spread, error)
	DeleteBefore(ctx context.Context, before time.Time) (int64, error)
}
