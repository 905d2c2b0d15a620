package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/alanyoungcy/spreadwatch/internal/domain"
)

// quoteTTL bounds how long a symbol's quotes survive without a refresh. The
// poller rewrites every tracked symbol each cycle, so anything older than
// this is a leftover from a dead feed.
const quoteTTL = 5 * time.Minute

// QuoteCache implements domain.QuoteCache on Redis hashes. Each symbol's
// quotes live at "quotes:{symbol}" with one JSON-encoded field per venue;
// the set "quotes:symbols" tracks which symbols are present.
type QuoteCache struct {
	rdb *redis.Client
}

// NewQuoteCache creates a QuoteCache backed by the given Client.
func NewQuoteCache(c *Client) *QuoteCache {
	return &QuoteCache{rdb: c.Underlying()}
}

func quoteKey(sym string) string {
	return "quotes:" + sym
}

const symbolsKey = "quotes:symbols"

// SetQuotes stores the merged per-venue quotes for a symbol. Invalid quotes
// are skipped so a venue that lost its data drops out of the cached view.
func (qc *QuoteCache) SetQuotes(ctx context.Context, sym string, quotes map[domain.Venue]domain.Quote) error {
	fields := make(map[string]interface{}, len(quotes))
	for venue, q := range quotes {
		if !q.Valid() {
			continue
		}
		data, err := json.Marshal(q)
		if err != nil {
			return fmt.Errorf("redis: encode quote %s/%s: %w", sym, venue, err)
		}
		fields[string(venue)] = data
	}
	if len(fields) == 0 {
		return nil
	}

	key := quoteKey(sym)
	pipe := qc.rdb.Pipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, fields)
	pipe.Expire(ctx, key, quoteTTL)
	pipe.SAdd(ctx, symbolsKey, sym)
	pipe.Expire(ctx, symbolsKey, quoteTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis: set quotes %s: %w", sym, err)
	}
	return nil
}

// GetQuotes retrieves the cached per-venue quotes for a symbol. It returns
// domain.ErrNotFound when the symbol has no cached data.
func (qc *QuoteCache) GetQuotes(ctx context.Context, sym string) (map[domain.Venue]domain.Quote, error) {
	vals, err := qc.rdb.HGetAll(ctx, quoteKey(sym)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: get quotes %s: %w", sym, err)
	}
	if len(vals) == 0 {
		return nil, domain.ErrNotFound
	}

	quotes := make(map[domain.Venue]domain.Quote, len(vals))
	for venue, raw := range vals {
		var q domain.Quote
		if err := json.Unmarshal([]byte(raw), &q); err != nil {
			return nil, fmt.Errorf("redis: decode quote %s/%s: %w", sym, venue, err)
		}
		quotes[domain.Venue(venue)] = q
	}
	return quotes, nil
}

// Symbols returns every symbol with cached quotes, sorted.
func (qc *QuoteCache) Symbols(ctx context.Context) ([]string, error) {
	symbols, err := qc.rdb.SMembers(ctx, symbolsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: list quote symbols: %w", err)
	}
	sort.Strings(symbols)
	return symbols, nil
}

// Compile-time interface check.
var _ domain.QuoteCache = (*QuoteCache)(nil)
