// Package poller drives the evaluation cycle: on a fixed interval it reads
// every venue's current markets, aggregates them, runs spread detection, and
// hands the results to the persistence and fan-out layers.
package poller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/alanyoungcy/spreadwatch/internal/aggregator"
	"github.com/alanyoungcy/spreadwatch/internal/detector"
	"github.com/alanyoungcy/spreadwatch/internal/domain"
)

// Alerter delivers operator notifications for detected spreads.
type Alerter interface {
	SpreadDetected(ctx context.Context, s domain.Spread) error
}

// Poller runs the fixed-interval evaluation loop. The store is required;
// the quote cache, signal bus, and alerter are optional fan-out targets
// whose failures never abort a cycle.
type Poller struct {
	paradex     Feed
	backpack    Feed
	hyperliquid Feed

	detector *detector.Detector
	store    domain.SpreadStore

	quotes  domain.QuoteCache
	bus     domain.SignalBus
	alerter Alerter

	interval time.Duration
	logger   *slog.Logger
}

// Feed is the slice of venue.Feed the poller consumes.
type Feed interface {
	Name() domain.Venue
	Markets() ([]domain.VenueMarket, error)
}

// Config wires a Poller.
type Config struct {
	Paradex     Feed
	Backpack    Feed
	Hyperliquid Feed
	Detector    *detector.Detector
	Store       domain.SpreadStore
	Quotes      domain.QuoteCache
	Bus         domain.SignalBus
	Alerter     Alerter
	Interval    time.Duration
}

// New creates a Poller.
func New(cfg Config, logger *slog.Logger) *Poller {
	return &Poller{
		paradex:     cfg.Paradex,
		backpack:    cfg.Backpack,
		hyperliquid: cfg.Hyperliquid,
		detector:    cfg.Detector,
		store:       cfg.Store,
		quotes:      cfg.Quotes,
		bus:         cfg.Bus,
		alerter:     cfg.Alerter,
		interval:    cfg.Interval,
		logger:      logger.With(slog.String("component", "poller")),
	}
}

// Run executes one cycle immediately and then once per interval until ctx is
// cancelled.
func (p *Poller) Run(ctx context.Context) error {
	p.logger.Info("poller starting", slog.Duration("interval", p.interval))

	p.cycle(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("poller stopped")
			return ctx.Err()
		case <-ticker.C:
			p.cycle(ctx)
		}
	}
}

// cycle runs one evaluation pass. A cycle only proceeds when all three
// venues can produce markets; any feed failure skips the entire cycle, which
// is logged distinctly from a clean zero-signal cycle.
func (p *Poller) cycle(ctx context.Context) {
	snap, err := p.collect()
	if err != nil {
		if errors.Is(err, domain.ErrNoMarketData) {
			p.logger.Warn("cycle skipped, venue not ready", slog.String("reason", err.Error()))
		} else {
			p.logger.Warn("cycle skipped", slog.String("error", err.Error()))
		}
		return
	}

	markets := aggregator.Merge(snap)
	spreads := p.detector.Detect(markets)

	if err := p.store.InsertBatch(ctx, spreads); err != nil {
		p.logger.Error("spread insert failed",
			slog.Int("spreads", len(spreads)),
			slog.String("error", err.Error()),
		)
		return
	}

	if len(spreads) == 0 {
		p.logger.Debug("cycle complete, no spreads", slog.Int("markets", len(markets)))
	} else {
		p.logger.Info("cycle complete",
			slog.Int("markets", len(markets)),
			slog.Int("spreads", len(spreads)),
		)
	}

	p.fanOut(ctx, markets, spreads)
}

// collect reads every feed's current markets. The first failing feed aborts
// the collection; partial-venue evaluation is deliberately not supported.
func (p *Poller) collect() (aggregator.Snapshot, error) {
	var snap aggregator.Snapshot
	for _, f := range []Feed{p.paradex, p.backpack, p.hyperliquid} {
		markets, err := f.Markets()
		if err != nil {
			return aggregator.Snapshot{}, fmt.Errorf("%s: %w", f.Name(), err)
		}
		switch f.Name() {
		case domain.VenueParadex:
			snap.Paradex = markets
		case domain.VenueBackpack:
			snap.Backpack = markets
		case domain.VenueHyperliquid:
			snap.Hyperliquid = markets
		}
	}
	return snap, nil
}

// fanOut publishes quotes and spreads to the optional outputs. Every output
// is best effort: failures are logged and the cycle still counts as
// successful since the rows are already persisted.
func (p *Poller) fanOut(ctx context.Context, markets []domain.AggregatedMarket, spreads []domain.Spread) {
	if p.quotes != nil {
		for _, m := range markets {
			quotes := map[domain.Venue]domain.Quote{
				domain.VenueParadex:     m.Paradex,
				domain.VenueBackpack:    m.Backpack,
				domain.VenueHyperliquid: m.Hyperliquid,
			}
			if err := p.quotes.SetQuotes(ctx, m.Symbol, quotes); err != nil {
				p.logger.Warn("quote cache update failed",
					slog.String("symbol", m.Symbol),
					slog.String("error", err.Error()),
				)
				break
			}
		}
	}

	for _, s := range spreads {
		if p.bus != nil {
			payload, err := json.Marshal(s)
			if err == nil {
				err = p.bus.Publish(ctx, domain.SpreadChannel, payload)
			}
			if err != nil {
				p.logger.Warn("spread publish failed",
					slog.String("symbol", s.Symbol),
					slog.String("error", err.Error()),
				)
			}
		}
		if p.alerter != nil {
			if err := p.alerter.SpreadDetected(ctx, s); err != nil {
				p.logger.Warn("spread alert failed",
					slog.String("symbol", s.Symbol),
					slog.String("error", err.Error()),
				)
			}
		}
	}
}
