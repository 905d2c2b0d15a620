// Package hyperliquid implements the Hyperliquid feed client. Hyperliquid
// streams full l2Book levels per coin, from which only the top level is
// kept, plus an allMids stream used to synthesize an approximate bid/ask
// until a real top-of-book update arrives. The tradable coin list is
// discovered over REST when none is configured.
package hyperliquid

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/alanyoungcy/spreadwatch/internal/domain"
	"github.com/alanyoungcy/spreadwatch/internal/venue"
)

const (
	mainnetWSURL = "wss://api.hyperliquid.xyz/ws"
	testnetWSURL = "wss://api.hyperliquid-testnet.xyz/ws"

	handshakeTimeout = 15 * time.Second
	writeWait        = 10 * time.Second

	// pingPeriod is the app-level {"method":"ping"} interval the venue
	// expects; staleWindow forces a reconnect on a silent stall.
	pingPeriod  = 15 * time.Second
	staleWindow = 60 * time.Second

	// subscribePause spaces per-coin subscription requests to stay under
	// the venue's message rate limits.
	subscribePause = 100 * time.Millisecond

	// midSpread is the half-spread applied around a mid price when
	// synthesizing a quote from the allMids stream.
	midSpread = 0.001
)

// Config holds the Hyperliquid client settings. Symbols may be empty, in
// which case the tradable universe is discovered via the REST info endpoint.
type Config struct {
	WSURL   string
	APIURL  string
	Symbols []string
	Testnet bool
}

// Client maintains a live top-of-book view for Hyperliquid coins. It
// implements venue.Feed.
type Client struct {
	wsURL   string
	apiURL  string
	symbols []string

	book     *venue.Book
	backoff  *venue.Backoff
	lastRecv atomic.Int64
	logger   *slog.Logger
}

// New creates a Hyperliquid feed client.
func New(cfg Config, logger *slog.Logger) *Client {
	wsURL := cfg.WSURL
	if wsURL == "" {
		if cfg.Testnet {
			wsURL = testnetWSURL
		} else {
			wsURL = mainnetWSURL
		}
	}
	apiURL := cfg.APIURL
	if apiURL == "" {
		if cfg.Testnet {
			apiURL = testnetAPIURL
		} else {
			apiURL = mainnetAPIURL
		}
	}
	c := &Client{
		wsURL:   wsURL,
		apiURL:  apiURL,
		symbols: cfg.Symbols,
		book:    venue.NewBook(),
		backoff: venue.NewBackoff(venue.DefaultBackoffMin, venue.DefaultBackoffMax),
		logger:  logger.With(slog.String("component", "hyperliquid_feed")),
	}
	c.book.Init(cfg.Symbols)
	return c
}

// Name returns the venue identifier.
func (c *Client) Name() domain.Venue {
	return domain.VenueHyperliquid
}

// Markets materializes the current snapshot. It returns
// domain.ErrNoMarketData while no coin has a valid quote yet.
func (c *Client) Markets() ([]domain.VenueMarket, error) {
	markets := c.book.Markets()
	if len(markets) == 0 {
		return nil, fmt.Errorf("hyperliquid: %w", domain.ErrNoMarketData)
	}
	return markets, nil
}

// Run discovers the coin universe if needed, then connects and listens until
// ctx is cancelled, reconnecting with capped exponential backoff.
func (c *Client) Run(ctx context.Context) error {
	if len(c.symbols) == 0 {
		coins, err := c.fetchUniverse(ctx)
		if err != nil {
			c.logger.Warn("hyperliquid universe discovery failed, using fallback coins",
				slog.String("error", err.Error()),
			)
			coins = fallbackCoins
		}
		c.symbols = coins
		c.book.Init(coins)
		c.logger.Info("hyperliquid universe discovered", slog.Int("coins", len(coins)))
	}

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		err := c.session(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.logger.Warn("hyperliquid feed disconnected, reconnecting",
			slog.String("error", err.Error()),
		)
		if err := c.backoff.Wait(ctx); err != nil {
			return err
		}
	}
}

func (c *Client) session(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, c.wsURL, nil)
	if err != nil {
		return fmt.Errorf("hyperliquid: connect: %w", err)
	}
	defer conn.Close()

	c.backoff.Reset()
	c.markReceived()
	c.logger.Info("connected to hyperliquid websocket")

	sessCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		<-sessCtx.Done()
		conn.Close()
	}()
	go c.keepalive(sessCtx, conn)

	if err := c.subscribe(sessCtx, conn); err != nil {
		return err
	}

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("hyperliquid: read: %w: %w", domain.ErrWSDisconnect, err)
		}
		c.markReceived()
		c.handleMessage(msg)
	}
}

// subscribe requests l2Book per coin plus the venue-wide allMids stream.
// A failed write for one coin aborts the session; the reconnect loop retries
// the whole subscription set.
func (c *Client) subscribe(ctx context.Context, conn *websocket.Conn) error {
	for _, coin := range c.symbols {
		req := subscribeRequest{
			Method:       "subscribe",
			Subscription: subscription{Type: "l2Book", Coin: coin},
		}
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(req); err != nil {
			return fmt.Errorf("hyperliquid: subscribe l2Book %s: %w", coin, err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(subscribePause):
		}
	}

	req := subscribeRequest{
		Method:       "subscribe",
		Subscription: subscription{Type: "allMids"},
	}
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(req); err != nil {
		return fmt.Errorf("hyperliquid: subscribe allMids: %w", err)
	}

	c.logger.Info("subscribed to hyperliquid streams", slog.Int("coins", len(c.symbols)))
	return nil
}

func (c *Client) keepalive(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if c.sinceLastReceived() > staleWindow {
				c.logger.Warn("hyperliquid feed stale, forcing reconnect",
					slog.Duration("since_last_message", c.sinceLastReceived()),
				)
				conn.Close()
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(pingRequest{Method: "ping"}); err != nil {
				return
			}
		}
	}
}

// handleMessage routes one stream message by channel.
func (c *Client) handleMessage(raw []byte) {
	var env channelEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		c.logger.Debug("hyperliquid: malformed message", slog.String("error", err.Error()))
		return
	}

	switch env.Channel {
	case "l2Book":
		var book l2BookData
		if err := json.Unmarshal(env.Data, &book); err != nil {
			c.logger.Debug("hyperliquid: malformed l2Book", slog.String("error", err.Error()))
			return
		}
		c.applyBook(book)
	case "allMids":
		var mids allMidsData
		if err := json.Unmarshal(env.Data, &mids); err != nil {
			c.logger.Debug("hyperliquid: malformed allMids", slog.String("error", err.Error()))
			return
		}
		c.applyMids(mids)
	case "pong", "subscriptionResponse":
		// Nothing to do.
	}
}

// applyBook extracts the top level from a full l2Book push. Levels arrive
// bids-first; only the best price on each side is kept.
func (c *Client) applyBook(book l2BookData) {
	if book.Coin == "" || !c.book.Has(book.Coin) {
		return
	}

	var bestBid, bestAsk float64
	if len(book.Levels) > 0 && len(book.Levels[0]) > 0 {
		bestBid = book.Levels[0][0].Price.Float()
	}
	if len(book.Levels) > 1 && len(book.Levels[1]) > 0 {
		bestAsk = book.Levels[1][0].Price.Float()
	}
	if bestBid <= 0 || bestAsk <= 0 {
		return
	}

	ts := time.Now()
	if book.Time > 0 {
		ts = time.UnixMilli(book.Time)
	}
	c.book.Set(book.Coin, domain.Quote{Bid: bestBid, Ask: bestAsk, UpdatedAt: ts})
}

// applyMids synthesizes mid±0.1% quotes for tracked coins that have no valid
// top-of-book data yet. A real l2Book update always takes precedence.
func (c *Client) applyMids(mids allMidsData) {
	now := time.Now()
	for coin, midStr := range mids.Mids {
		current, ok := c.book.Get(coin)
		if !ok || current.Valid() {
			continue
		}
		mid := midStr.Float()
		if mid <= 0 {
			continue
		}
		c.book.Set(coin, domain.Quote{
			Bid:       mid * (1 - midSpread),
			Ask:       mid * (1 + midSpread),
			UpdatedAt: now,
		})
	}
}

func (c *Client) markReceived() {
	c.lastRecv.Store(time.Now().UnixNano())
}

func (c *Client) sinceLastReceived() time.Duration {
	return time.Since(time.Unix(0, c.lastRecv.Load()))
}
