package hyperliquid

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/spreadwatch/internal/domain"
)

func newTestClient(coins ...string) *Client {
	return New(Config{Symbols: coins}, slog.New(slog.DiscardHandler))
}

func TestHandleMessageL2Book(t *testing.T) {
	c := newTestClient("BTC")

	c.handleMessage([]byte(`{
		"channel": "l2Book",
		"data": {
			"coin": "BTC",
			"levels": [
				[{"px": "64100.0", "sz": "1.5", "n": 3}, {"px": "64099.0", "sz": "2.0", "n": 1}],
				[{"px": "64101.0", "sz": "0.8", "n": 2}, {"px": "64102.0", "sz": "1.1", "n": 4}]
			],
			"time": 1718000000000
		}
	}`))

	q, ok := c.book.Get("BTC")
	require.True(t, ok)
	assert.Equal(t, 64100.0, q.Bid, "best bid is the first entry of the first level array")
	assert.Equal(t, 64101.0, q.Ask, "best ask is the first entry of the second level array")
	assert.Equal(t, int64(1718000000000), q.UpdatedAt.UnixMilli())
}

func TestHandleMessageL2BookEmptySide(t *testing.T) {
	c := newTestClient("BTC")

	c.handleMessage([]byte(`{
		"channel": "l2Book",
		"data": {"coin": "BTC", "levels": [[], [{"px": "64101.0", "sz": "1", "n": 1}]]}
	}`))

	q, _ := c.book.Get("BTC")
	assert.False(t, q.Valid(), "one-sided book must not produce a quote")
}

func TestHandleMessageAllMidsSynthesis(t *testing.T) {
	c := newTestClient("BTC", "ETH")

	c.handleMessage([]byte(`{
		"channel": "allMids",
		"data": {"mids": {"BTC": "64000", "ETH": "3000", "SOL": "150"}}
	}`))

	q, ok := c.book.Get("BTC")
	require.True(t, ok)
	assert.InDelta(t, 64000*0.999, q.Bid, 1e-9)
	assert.InDelta(t, 64000*1.001, q.Ask, 1e-9)

	// Untracked coins are never added.
	_, ok = c.book.Get("SOL")
	assert.False(t, ok)
}

func TestAllMidsNeverOverwritesBook(t *testing.T) {
	c := newTestClient("BTC")

	c.handleMessage([]byte(`{
		"channel": "l2Book",
		"data": {"coin": "BTC", "levels": [[{"px": "64100.0", "sz": "1", "n": 1}], [{"px": "64101.0", "sz": "1", "n": 1}]]}
	}`))
	c.handleMessage([]byte(`{
		"channel": "allMids",
		"data": {"mids": {"BTC": "50000"}}
	}`))

	q, _ := c.book.Get("BTC")
	assert.Equal(t, 64100.0, q.Bid, "a synthesized mid must not replace real top-of-book data")
	assert.Equal(t, 64101.0, q.Ask)
}

func TestHandleMessageIgnoresNoise(t *testing.T) {
	c := newTestClient("BTC")

	c.handleMessage([]byte(`{"channel": "pong"}`))
	c.handleMessage([]byte(`{"channel": "subscriptionResponse", "data": {}}`))
	c.handleMessage([]byte(`not json`))
	c.handleMessage([]byte(`{"channel": "l2Book", "data": {"coin": "DOGE", "levels": [[{"px": "0.1", "sz": "1", "n": 1}], [{"px": "0.2", "sz": "1", "n": 1}]]}}`))

	markets := c.book.Markets()
	assert.Empty(t, markets)
}

func TestMarketsCanonicalSymbols(t *testing.T) {
	c := newTestClient("BTC")

	c.handleMessage([]byte(`{
		"channel": "l2Book",
		"data": {"coin": "BTC", "levels": [[{"px": "64100.0", "sz": "1", "n": 1}], [{"px": "64101.0", "sz": "1", "n": 1}]]}
	}`))

	markets, err := c.Markets()
	require.NoError(t, err)
	require.Len(t, markets, 1)
	assert.Equal(t, "BTC_USDC_PERP", markets[0].Symbol)
}

func TestMarketsEmpty(t *testing.T) {
	c := newTestClient("BTC")
	_, err := c.Markets()
	assert.ErrorIs(t, err, domain.ErrNoMarketData)
}
