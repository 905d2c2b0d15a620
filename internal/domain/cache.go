package domain

import (
	"context"
	"io"
)

// QuoteCache holds the latest merged top-of-book per canonical symbol so the
// read API can serve live quotes without touching the feed clients.
type QuoteCache interface {
	SetQuotes(ctx context.Context, symbol string, quotes map[Venue]Quote) error
	GetQuotes(ctx context.Context, symbol string) (map[Venue]Quote, error)
	Symbols(ctx context.Context) ([]string, error)
}

// SpreadChannel is the bus channel freshly detected spreads are published on.
const SpreadChannel = "spreads"

// SignalBus is a fire-and-forget pub/sub channel for freshly detected
// spreads, consumed by dashboards or downstream tooling.
type SignalBus interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
}

// BlobWriter uploads a single object to cold storage.
type BlobWriter interface {
	Put(ctx context.Context, path string, data io.Reader, contentType string) error
}
