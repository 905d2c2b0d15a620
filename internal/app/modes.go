package app

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/alanyoungcy/spreadwatch/internal/detector"
	"github.com/alanyoungcy/spreadwatch/internal/poller"
	"github.com/alanyoungcy/spreadwatch/internal/server"
	"github.com/alanyoungcy/spreadwatch/internal/server/handler"
	"github.com/alanyoungcy/spreadwatch/internal/server/ws"
	"github.com/alanyoungcy/spreadwatch/internal/venue/backpack"
	"github.com/alanyoungcy/spreadwatch/internal/venue/hyperliquid"
	"github.com/alanyoungcy/spreadwatch/internal/venue/paradex"
)

// CollectMode runs the venue feeds, the spread poller, and the cold-storage
// archiver. No HTTP API is served.
func (a *App) CollectMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting collect mode")

	g, ctx := errgroup.WithContext(ctx)
	a.startCollectors(ctx, g, deps)

	return g.Wait()
}

// ServeMode runs only the read API over the persisted spreads and, when
// Redis is wired, the live quote endpoints and the WebSocket stream.
func (a *App) ServeMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting serve mode")

	g, ctx := errgroup.WithContext(ctx)
	a.startHTTPServer(ctx, g, deps)

	return g.Wait()
}

// FullMode runs collection and the API in one process.
func (a *App) FullMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting full mode")

	g, ctx := errgroup.WithContext(ctx)
	a.startCollectors(ctx, g, deps)
	if a.cfg.Server.Enabled {
		a.startHTTPServer(ctx, g, deps)
	}

	return g.Wait()
}

// startCollectors adds the three venue feeds, the poller, and (when S3 is
// wired) the archiver loop to the given errgroup.
func (a *App) startCollectors(ctx context.Context, g *errgroup.Group, deps *Dependencies) {
	paradexFeed := paradex.New(paradex.Config{
		WSURL:   a.cfg.Paradex.WSURL,
		APIURL:  a.cfg.Paradex.APIURL,
		Symbols: a.cfg.Paradex.Symbols,
		JWT:     a.cfg.Paradex.JWT,
		Testnet: a.cfg.Paradex.Testnet,
	}, a.logger)
	backpackFeed := backpack.New(backpack.Config{
		WSURL:   a.cfg.Backpack.WSURL,
		Symbols: a.cfg.Backpack.Symbols,
	}, a.logger)
	hyperliquidFeed := hyperliquid.New(hyperliquid.Config{
		WSURL:   a.cfg.Hyperliquid.WSURL,
		APIURL:  a.cfg.Hyperliquid.APIURL,
		Symbols: a.cfg.Hyperliquid.Symbols,
		Testnet: a.cfg.Hyperliquid.Testnet,
	}, a.logger)

	g.Go(func() error { return paradexFeed.Run(ctx) })
	g.Go(func() error { return backpackFeed.Run(ctx) })
	g.Go(func() error { return hyperliquidFeed.Run(ctx) })

	pollCfg := poller.Config{
		Paradex:     paradexFeed,
		Backpack:    backpackFeed,
		Hyperliquid: hyperliquidFeed,
		Detector:    detector.New(a.cfg.Detector.MinMarginPct),
		Store:       deps.SpreadStore,
		Quotes:      deps.QuoteCache,
		Bus:         deps.SignalBus,
		Interval:    a.cfg.Detector.PollInterval.Duration,
	}
	if deps.Alerter != nil {
		pollCfg.Alerter = deps.Alerter
	}
	p := poller.New(pollCfg, a.logger)
	g.Go(func() error { return p.Run(ctx) })

	if deps.Archiver != nil {
		interval := a.cfg.S3.ArchiveInterval.Duration
		g.Go(func() error { return deps.Archiver.RunLoop(ctx, interval) })
	}
}

// startHTTPServer adds the HTTP server (and the WebSocket hub when the
// signal bus is wired) to the given errgroup. The server is shut down
// gracefully when the context is cancelled.
func (a *App) startHTTPServer(ctx context.Context, g *errgroup.Group, deps *Dependencies) {
	handlers := server.Handlers{
		Health:  handler.NewHealthHandler(),
		Spreads: handler.NewSpreadHandler(deps.SpreadStore, a.logger),
	}
	if deps.QuoteCache != nil {
		handlers.Quotes = handler.NewQuoteHandler(deps.QuoteCache, a.logger)
	}

	var hub *ws.Hub
	if deps.SignalBus != nil {
		hub = ws.NewHub(deps.SignalBus, a.logger)
		g.Go(func() error { return hub.Run(ctx) })
	}

	srv := server.NewServer(server.Config{
		Port:        a.cfg.Server.Port,
		CORSOrigins: a.cfg.Server.CORSOrigins,
		APIKey:      a.cfg.Server.APIKey,
	}, handlers, hub, a.logger)

	g.Go(func() error {
		return srv.Start()
	})
	g.Go(func() error {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	})
}
