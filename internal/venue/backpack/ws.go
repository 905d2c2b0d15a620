// Package backpack implements the Backpack Exchange feed client. Backpack
// pushes best bid/ask directly on its bookTicker stream, so the client is a
// thin parse-and-store loop over one batched subscription.
package backpack

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
	defaultWSURL = "wss://ws.backpack.exchange/"

	handshakeTimeout = 15 * time.Second
	writeWait        = 10 * time.Second

	// pingPeriod keeps the connection alive; staleWindow forces a reconnect
	// when the feed goes silent without the socket closing.
	pingPeriod  = 20 * time.Second
	staleWindow = 60 * time.Second
)

// Config holds the Backpack client settings.
type Config struct {
	WSURL   string
	Symbols []string
}

// Client maintains a live top-of-book view for the configured Backpack
// instruments. It implements venue.Feed.
type Client struct {
	wsURL   string
	symbols []string

	book     *venue.Book
	backoff  *venue.Backoff
	lastRecv atomic.Int64 // unix nanos of the last received message
	logger   *slog.Logger
}

// New creates a Backpack feed client for the given instruments.
func New(cfg Config, logger *slog.Logger) *Client {
	wsURL := cfg.WSURL
	if wsURL == "" {
		wsURL = defaultWSURL
	}
	c := &Client{
		wsURL:   wsURL,
		symbols: cfg.Symbols,
		book:    venue.NewBook(),
		backoff: venue.NewBackoff(venue.DefaultBackoffMin, venue.DefaultBackoffMax),
		logger:  logger.With(slog.String("component", "backpack_feed")),
	}
	c.book.Init(cfg.Symbols)
	return c
}

// Name returns the venue identifier.
func (c *Client) Name() domain.Venue {
	return domain.VenueBackpack
}

// Markets materializes the current snapshot. It returns
// domain.ErrNoMarketData while no instrument has a valid quote yet.
func (c *Client) Markets() ([]domain.VenueMarket, error) {
	markets := c.book.Markets()
	if len(markets) == 0 {
		return nil, fmt.Errorf("backpack: %w", domain.ErrNoMarketData)
	}
	return markets, nil
}

// Run connects, subscribes, and listens until ctx is cancelled, reconnecting
// with capped exponential backoff on any transport failure.
func (c *Client) Run(ctx context.Context) error {
	if len(c.symbols) == 0 {
		return fmt.Errorf("backpack: no symbols configured")
	}
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		err := c.session(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.logger.Warn("backpack feed disconnected, reconnecting",
			slog.String("error", err.Error()),
		)
		if err := c.backoff.Wait(ctx); err != nil {
			return err
		}
	}
}

// session runs one connection lifetime: dial, subscribe, listen. It returns
// the transport error that ended the session.
func (c *Client) session(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, c.wsURL, nil)
	if err != nil {
		return fmt.Errorf("backpack: connect: %w", err)
	}
	defer conn.Close()

	c.backoff.Reset()
	c.markReceived()
	c.logger.Info("connected to backpack websocket")

	sessCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Unblock ReadMessage on shutdown or forced reconnect.
	go func() {
		<-sessCtx.Done()
		conn.Close()
	}()
	go c.keepalive(sessCtx, conn)

	if err := c.subscribe(conn); err != nil {
		return err
	}

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("backpack: read: %w: %w", domain.ErrWSDisconnect, err)
		}
		c.markReceived()
		c.handleMessage(msg)
	}
}

// subscribe sends one batched SUBSCRIBE covering every configured
// instrument's bookTicker stream.
func (c *Client) subscribe(conn *websocket.Conn) error {
	params := make([]string, len(c.symbols))
	for i, s := range c.symbols {
		params[i] = "bookTicker." + s
	}
	req := subscribeRequest{Method: "SUBSCRIBE", Params: params, ID: 1}

	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(req); err != nil {
		return fmt.Errorf("backpack: subscribe: %w", err)
	}
	c.logger.Info("subscribed to backpack bookTicker streams",
		slog.Int("symbols", len(c.symbols)),
	)
	return nil
}

// keepalive sends periodic pings and forces a reconnect when no message has
// arrived within the staleness window. Some failures are silent stalls
// rather than closed sockets.
func (c *Client) keepalive(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if c.sinceLastReceived() > staleWindow {
				c.logger.Warn("backpack feed stale, forcing reconnect",
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

// handleMessage parses one stream message and applies bookTicker updates to
// the snapshot. Malformed or unrelated messages are skipped without tearing
// down the connection.
func (c *Client) handleMessage(raw []byte) {
	var env streamEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		c.logger.Debug("backpack: malformed message", slog.String("error", err.Error()))
		return
	}

	// Subscription acknowledgements carry a result field and no data.
	if len(env.Data) == 0 {
		return
	}

	var tick bookTicker
	if err := json.Unmarshal(env.Data, &tick); err != nil {
		c.logger.Debug("backpack: malformed bookTicker", slog.String("error", err.Error()))
		return
	}
	if tick.Event != "bookTicker" || tick.Symbol == "" {
		return
	}
	if !c.book.Has(tick.Symbol) {
		return
	}

	ts := time.Now()
	if tick.EngineTs > 0 {
		ts = time.UnixMicro(tick.EngineTs)
	}
	c.book.Set(tick.Symbol, domain.Quote{
		Bid:       tick.Bid.Float(),
		Ask:       tick.Ask.Float(),
		UpdatedAt: ts,
	})
}

func (c *Client) markReceived() {
	c.lastRecv.Store(time.Now().UnixNano())
}

func (c *Client) sinceLastReceived() time.Duration {
	return time.Since(time.Unix(0, c.lastRecv.Load()))
}
