// Package paradex implements the Paradex feed client. Paradex speaks
// JSON-RPC 2.0 over WebSocket with per-channel bbo subscriptions and an
// optional bearer-JWT auth step. Tradable symbols and per-instrument
// contract sizes are discovered over REST when not configured, and quotes
// are exposed alongside their venue-native raw prices.
package paradex

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/alanyoungcy/spreadwatch/internal/domain"
	"github.com/alanyoungcy/spreadwatch/internal/symbol"
	"github.com/alanyoungcy/spreadwatch/internal/venue"
)

const (
	handshakeTimeout = 15 * time.Second
	writeWait        = 10 * time.Second

	pingPeriod  = 30 * time.Second
	staleWindow = 60 * time.Second

	// subscribePause spaces per-channel subscription requests to stay under
	// the venue's rate limits.
	subscribePause = 100 * time.Millisecond
)

// Config holds the Paradex client settings. Symbols may be empty, in which
// case the perpetual universe is discovered via REST. JWT enables the
// authenticated feed when set.
type Config struct {
	WSURL   string
	APIURL  string
	Symbols []string
	JWT     string
	Testnet bool
}

// Client maintains a live top-of-book view for Paradex perpetuals. It
// implements venue.Feed.
type Client struct {
	wsURL   string
	apiURL  string
	symbols []string
	jwt     string

	book    *venue.Book
	backoff *venue.Backoff

	sizesMu       sync.RWMutex
	contractSizes map[string]float64

	msgID    atomic.Int64
	lastRecv atomic.Int64
	logger   *slog.Logger
}

// New creates a Paradex feed client.
func New(cfg Config, logger *slog.Logger) *Client {
	mode := "prod"
	if cfg.Testnet {
		mode = "testnet"
	}
	wsURL := cfg.WSURL
	if wsURL == "" {
		wsURL = fmt.Sprintf("wss://ws.api.%s.paradex.trade/v1", mode)
	}
	apiURL := cfg.APIURL
	if apiURL == "" {
		apiURL = fmt.Sprintf("https://api.%s.paradex.trade/v1", mode)
	}

	sizes := make(map[string]float64, 2*len(defaultContractSizes))
	for sym, size := range defaultContractSizes {
		sizes[sym] = size
		sizes[strings.ReplaceAll(sym, "-", "_")] = size
	}

	c := &Client{
		wsURL:         wsURL,
		apiURL:        apiURL,
		symbols:       cfg.Symbols,
		jwt:           cfg.JWT,
		book:          venue.NewBook(),
		backoff:       venue.NewBackoff(venue.DefaultBackoffMin, venue.DefaultBackoffMax),
		contractSizes: sizes,
		logger:        logger.With(slog.String("component", "paradex_feed")),
	}
	c.book.Init(cfg.Symbols)
	return c
}

// Name returns the venue identifier.
func (c *Client) Name() domain.Venue {
	return domain.VenueParadex
}

// ContractSize returns the multiplier for a native symbol, 1.0 when unknown.
func (c *Client) ContractSize(native string) float64 {
	c.sizesMu.RLock()
	defer c.sizesMu.RUnlock()
	if size, ok := c.contractSizes[native]; ok {
		return size
	}
	return 1.0
}

// Markets materializes the current snapshot: every non-option instrument
// with a valid quote, under its canonical symbol, carrying its raw
// venue-native prices and contract size. It returns domain.ErrNoMarketData
// while nothing is available.
func (c *Client) Markets() ([]domain.VenueMarket, error) {
	snap := c.book.Snapshot()

	out := make([]domain.VenueMarket, 0, len(snap))
	for native, q := range snap {
		if !q.Valid() || isOption(native) {
			continue
		}
		out = append(out, domain.VenueMarket{
			Symbol:       symbol.Normalize(native),
			Bid:          q.Bid,
			Ask:          q.Ask,
			UpdatedAt:    q.UpdatedAt,
			RawBid:       q.Bid,
			RawAsk:       q.Ask,
			ContractSize: c.ContractSize(native),
		})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("paradex: %w", domain.ErrNoMarketData)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out, nil
}

// Run discovers symbols and contract sizes if needed, then connects and
// listens until ctx is cancelled, reconnecting with capped exponential
// backoff.
func (c *Client) Run(ctx context.Context) error {
	if len(c.symbols) == 0 {
		symbols, err := c.fetchSymbols(ctx)
		if err != nil {
			c.logger.Warn("paradex symbol discovery failed, using fallback symbols",
				slog.String("error", err.Error()),
			)
			symbols = fallbackSymbols
		}
		c.symbols = symbols
		c.book.Init(symbols)
		c.logger.Info("paradex symbols discovered", slog.Int("symbols", len(symbols)))
	}

	if err := c.loadContractSizes(ctx); err != nil {
		c.logger.Warn("paradex contract sizes unavailable, using defaults",
			slog.String("error", err.Error()),
		)
	}

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		err := c.session(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.logger.Warn("paradex feed disconnected, reconnecting",
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
		return fmt.Errorf("paradex: connect: %w", err)
	}
	defer conn.Close()

	c.backoff.Reset()
	c.markReceived()
	c.logger.Info("connected to paradex websocket")

	sessCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		<-sessCtx.Done()
		conn.Close()
	}()
	go c.keepalive(sessCtx, conn)

	if c.jwt != "" {
		if err := c.send(conn, "auth", authParams{Bearer: c.jwt}); err != nil {
			return err
		}
	}
	if err := c.subscribe(sessCtx, conn); err != nil {
		return err
	}

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("paradex: read: %w: %w", domain.ErrWSDisconnect, err)
		}
		c.markReceived()
		c.handleMessage(msg)
	}
}

// subscribe requests the bbo channel for every configured symbol. Per-symbol
// failures surface as error replies in the listen loop and are tolerated;
// one live subscription is enough for the client to proceed.
func (c *Client) subscribe(ctx context.Context, conn *websocket.Conn) error {
	for _, sym := range c.symbols {
		if err := c.send(conn, "subscribe", subscribeParams{Channel: "bbo." + sym}); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(subscribePause):
		}
	}
	c.logger.Info("subscribed to paradex bbo channels", slog.Int("symbols", len(c.symbols)))
	return nil
}

// send writes one JSON-RPC command with a fresh message ID.
func (c *Client) send(conn *websocket.Conn, method string, params any) error {
	req := rpcRequest{
		Jsonrpc: "2.0",
		Method:  method,
		Params:  params,
		ID:      c.msgID.Add(1),
	}
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(req); err != nil {
		return fmt.Errorf("paradex: send %s: %w", method, err)
	}
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
				c.logger.Warn("paradex feed stale, forcing reconnect",
					slog.Duration("since_last_message", c.sinceLastReceived()),
				)
				conn.Close()
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage routes one JSON-RPC message. Error replies and unknown
// methods are logged and skipped; they never tear down the connection.
func (c *Client) handleMessage(raw []byte) {
	var msg rpcMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.logger.Debug("paradex: malformed message", slog.String("error", err.Error()))
		return
	}

	if msg.Error != nil {
		c.logger.Warn("paradex rpc error",
			slog.Int("code", msg.Error.Code),
			slog.String("message", msg.Error.Message),
			slog.Int64("id", msg.ID),
		)
		return
	}

	switch msg.Method {
	case "subscription":
		var push subscriptionPush
		if err := json.Unmarshal(msg.Params, &push); err != nil {
			c.logger.Debug("paradex: malformed subscription push", slog.String("error", err.Error()))
			return
		}
		if strings.HasPrefix(push.Channel, "bbo.") {
			c.applyBBO(push.Data)
		}
	default:
		// Replies to auth/subscribe commands carry Result; nothing to do.
	}
}

// applyBBO overwrites the quote for one tracked market from a bbo push.
// Pushes for untracked markets and zero or missing prices leave the book
// untouched.
func (c *Client) applyBBO(data json.RawMessage) {
	var bbo bboData
	if err := json.Unmarshal(data, &bbo); err != nil {
		c.logger.Debug("paradex: malformed bbo", slog.String("error", err.Error()))
		return
	}
	if bbo.Market == "" || !c.book.Has(bbo.Market) {
		return
	}

	bid := bbo.Bid.Float()
	ask := bbo.Ask.Float()
	if bid <= 0 || ask <= 0 {
		return
	}

	ts := time.Now()
	if bbo.LastUpdatedAt > 0 {
		ts = time.UnixMilli(bbo.LastUpdatedAt)
	}
	c.book.Set(bbo.Market, domain.Quote{Bid: bid, Ask: ask, UpdatedAt: ts})
}

func (c *Client) markReceived() {
	c.lastRecv.Store(time.Now().UnixNano())
}

func (c *Client) sinceLastReceived() time.Duration {
	return time.Since(time.Unix(0, c.lastRecv.Load()))
}
