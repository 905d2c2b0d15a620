package poller

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/spreadwatch/internal/detector"
	"github.com/alanyoungcy/spreadwatch/internal/domain"
)

type fakeFeed struct {
	name    domain.Venue
	markets []domain.VenueMarket
	err     error
}

func (f *fakeFeed) Name() domain.Venue { return f.name }

func (f *fakeFeed) Markets() ([]domain.VenueMarket, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.markets, nil
}

type fakeStore struct {
	domain.SpreadStore
	batches [][]domain.Spread
}

func (s *fakeStore) InsertBatch(_ context.Context, spreads []domain.Spread) error {
	s.batches = append(s.batches, spreads)
	return nil
}

func quote(bid, ask float64) []domain.VenueMarket {
	return []domain.VenueMarket{{Symbol: "BTC_USDC_PERP", Bid: bid, Ask: ask, UpdatedAt: time.Now()}}
}

func newTestPoller(paradex, backpack, hyperliquid Feed, store domain.SpreadStore) *Poller {
	return New(Config{
		Paradex:     paradex,
		Backpack:    backpack,
		Hyperliquid: hyperliquid,
		Detector:    detector.New(0.5),
		Store:       store,
		Interval:    time.Second,
	}, slog.New(slog.DiscardHandler))
}

func TestCycleDetectsAndPersists(t *testing.T) {
	store := &fakeStore{}
	p := newTestPoller(
		&fakeFeed{name: domain.VenueParadex, markets: quote(100, 101)},
		&fakeFeed{name: domain.VenueBackpack, markets: quote(102, 103)},
		&fakeFeed{name: domain.VenueHyperliquid, markets: quote(100, 101)},
		store,
	)

	p.cycle(context.Background())

	require.Len(t, store.batches, 1)
	assert.NotEmpty(t, store.batches[0], "crossed prices must yield spreads")
}

func TestCycleSkippedWhenAnyFeedFails(t *testing.T) {
	store := &fakeStore{}
	p := newTestPoller(
		&fakeFeed{name: domain.VenueParadex, markets: quote(100, 101)},
		&fakeFeed{name: domain.VenueBackpack, err: domain.ErrNoMarketData},
		&fakeFeed{name: domain.VenueHyperliquid, markets: quote(100, 101)},
		store,
	)

	p.cycle(context.Background())

	assert.Empty(t, store.batches, "a failing venue must skip the whole cycle, including the store call")
}

func TestCycleZeroSignalsStillSubmits(t *testing.T) {
	store := &fakeStore{}
	p := newTestPoller(
		&fakeFeed{name: domain.VenueParadex, markets: quote(100, 100.1)},
		&fakeFeed{name: domain.VenueBackpack, markets: quote(100, 100.1)},
		&fakeFeed{name: domain.VenueHyperliquid, markets: quote(100, 100.1)},
		store,
	)

	p.cycle(context.Background())

	// A quiet cycle is distinguishable from a skipped one: the store is
	// still called, with an empty batch.
	require.Len(t, store.batches, 1)
	assert.Empty(t, store.batches[0])
}

func TestRunStopsOnCancel(t *testing.T) {
	store := &fakeStore{}
	p := newTestPoller(
		&fakeFeed{name: domain.VenueParadex, err: domain.ErrNoMarketData},
		&fakeFeed{name: domain.VenueBackpack, err: domain.ErrNoMarketData},
		&fakeFeed{name: domain.VenueHyperliquid, err: domain.ErrNoMarketData},
		store,
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("poller did not stop on cancel")
	}
}
