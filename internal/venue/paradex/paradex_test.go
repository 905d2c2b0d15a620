package paradex

import (
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/spreadwatch/internal/domain"
)

func newTestClient(symbols ...string) *Client {
	return New(Config{Symbols: symbols}, slog.New(slog.DiscardHandler))
}

func TestHandleMessageBBOPush(t *testing.T) {
	c := newTestClient("BTC-USD-PERP")

	c.handleMessage([]byte(`{
		"jsonrpc": "2.0",
		"method": "subscription",
		"params": {
			"channel": "bbo.BTC-USD-PERP",
			"data": {
				"market": "BTC-USD-PERP",
				"bid": "64100.5",
				"ask": "64101.0",
				"last_updated_at": 1718000000000
			}
		}
	}`))

	q, ok := c.book.Get("BTC-USD-PERP")
	require.True(t, ok)
	assert.Equal(t, 64100.5, q.Bid)
	assert.Equal(t, 64101.0, q.Ask)
	assert.Equal(t, int64(1718000000000), q.UpdatedAt.UnixMilli())
}

func TestHandleMessageZeroSideIgnored(t *testing.T) {
	c := newTestClient("BTC-USD-PERP")

	c.handleMessage([]byte(`{
		"jsonrpc": "2.0",
		"method": "subscription",
		"params": {
			"channel": "bbo.BTC-USD-PERP",
			"data": {"market": "BTC-USD-PERP", "bid": "0", "ask": "64101.0"}
		}
	}`))

	q, _ := c.book.Get("BTC-USD-PERP")
	assert.False(t, q.Valid(), "one-sided book must not produce a usable quote")
	_, err := c.Markets()
	assert.ErrorIs(t, err, domain.ErrNoMarketData)
}

func TestHandleMessageErrorReply(t *testing.T) {
	c := newTestClient("BTC-USD-PERP")

	// Must not panic or produce a quote.
	c.handleMessage([]byte(`{
		"jsonrpc": "2.0",
		"error": {"code": -32600, "message": "invalid subscription"},
		"id": 3
	}`))
	c.handleMessage([]byte(`not json`))

	_, err := c.Markets()
	assert.ErrorIs(t, err, domain.ErrNoMarketData)
}

func TestApplyBBOUntrackedIgnored(t *testing.T) {
	c := newTestClient("BTC-USD-PERP")
	c.applyBBO(json.RawMessage(`{"market": "DOGE-USD-PERP", "bid": "0.1", "ask": "0.2"}`))

	assert.False(t, c.book.Has("DOGE-USD-PERP"), "stray channel pushes must not add instruments")
	_, err := c.Markets()
	assert.ErrorIs(t, err, domain.ErrNoMarketData)
}

func TestMarketsSkipsOptionsAndNormalizes(t *testing.T) {
	c := newTestClient("BTC-USD-PERP", "BTC-USD-65000-C")
	c.applyBBO(json.RawMessage(`{"market": "BTC-USD-PERP", "bid": "100", "ask": "101"}`))
	c.applyBBO(json.RawMessage(`{"market": "BTC-USD-65000-C", "bid": "5", "ask": "6"}`))

	markets, err := c.Markets()
	require.NoError(t, err)
	require.Len(t, markets, 1)
	assert.Equal(t, "BTC_USDC_PERP", markets[0].Symbol)
	assert.Equal(t, 100.0, markets[0].RawBid)
	assert.Equal(t, 101.0, markets[0].RawAsk)
	assert.Equal(t, 0.001, markets[0].ContractSize)
}

func TestMarketsEmpty(t *testing.T) {
	c := newTestClient("BTC-USD-PERP")
	_, err := c.Markets()
	assert.ErrorIs(t, err, domain.ErrNoMarketData)
}

func TestContractSizeDefault(t *testing.T) {
	c := newTestClient()
	assert.Equal(t, 0.001, c.ContractSize("BTC-USD-PERP"))
	assert.Equal(t, 0.001, c.ContractSize("BTC_USD_PERP"))
	assert.Equal(t, 1.0, c.ContractSize("UNKNOWN-USD-PERP"))
}

func TestIsOption(t *testing.T) {
	assert.True(t, isOption("BTC-USD-65000-C"))
	assert.True(t, isOption("ETH-USD-3000-P"))
	assert.False(t, isOption("BTC-USD-PERP"))
	assert.False(t, isOption("BTC-USD"))
}

func TestMarketsResponseShapes(t *testing.T) {
	var bare marketsResponse
	require.NoError(t, json.Unmarshal([]byte(`[{"symbol":"BTC-USD-PERP","baseSize":"0.001"}]`), &bare))
	require.Len(t, bare.Markets, 1)
	assert.Equal(t, 0.001, bare.Markets[0].BaseSize.Float())

	var wrapped marketsResponse
	require.NoError(t, json.Unmarshal([]byte(`{"markets":[{"id":"ETH-USD-PERP","contractSize":0.01}]}`), &wrapped))
	require.Len(t, wrapped.Markets, 1)
	assert.Equal(t, 0.01, wrapped.Markets[0].ContractSize.Float())
}
