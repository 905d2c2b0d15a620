package aggregator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/spreadwatch/internal/domain"
)

func TestMergeCommonSymbol(t *testing.T) {
	now := time.Now()
	snap := Snapshot{
		Paradex: []domain.VenueMarket{{
			Symbol: "BTC_USDC_PERP", Bid: 64100, Ask: 64101, UpdatedAt: now,
			RawBid: 64100, RawAsk: 64101, ContractSize: 0.001,
		}},
		Backpack: []domain.VenueMarket{{
			Symbol: "BTC_USDC_PERP", Bid: 64090, Ask: 64095, UpdatedAt: now,
		}},
		Hyperliquid: []domain.VenueMarket{{
			Symbol: "BTC_USDC_PERP", Bid: 64105, Ask: 64110, UpdatedAt: now,
		}},
	}

	out := Merge(snap)
	require.Len(t, out, 1)

	m := out[0]
	assert.Equal(t, "BTC_USDC_PERP", m.Symbol)
	assert.Equal(t, 64100.0, m.Paradex.Bid)
	assert.Equal(t, 64095.0, m.Backpack.Ask)
	assert.Equal(t, 64105.0, m.Hyperliquid.Bid)
	assert.Equal(t, 0.001, m.ParadexRaw.ContractSize)
}

func TestMergePartialCoverage(t *testing.T) {
	snap := Snapshot{
		Paradex:  []domain.VenueMarket{{Symbol: "APT_USDC_PERP", Bid: 10, Ask: 10.1}},
		Backpack: []domain.VenueMarket{{Symbol: "SOL_USDC_PERP", Bid: 150, Ask: 150.1}},
	}

	out := Merge(snap)
	require.Len(t, out, 2)

	// Sorted by symbol.
	assert.Equal(t, "APT_USDC_PERP", out[0].Symbol)
	assert.Equal(t, "SOL_USDC_PERP", out[1].Symbol)

	assert.False(t, out[0].Backpack.Valid())
	assert.False(t, out[0].Hyperliquid.Valid())
	assert.True(t, out[0].Paradex.Valid())

	assert.False(t, out[1].Paradex.Valid())
	assert.True(t, out[1].Backpack.Valid())
}

func TestMergeEmpty(t *testing.T) {
	assert.Empty(t, Merge(Snapshot{}))
}

func TestQuoteForVenue(t *testing.T) {
	snap := Snapshot{
		Paradex:     []domain.VenueMarket{{Symbol: "ETH_USDC_PERP", Bid: 3000, Ask: 3001}},
		Backpack:    []domain.VenueMarket{{Symbol: "ETH_USDC_PERP", Bid: 2999, Ask: 3000.5}},
		Hyperliquid: []domain.VenueMarket{{Symbol: "ETH_USDC_PERP", Bid: 3001, Ask: 3002}},
	}

	m := Merge(snap)[0]
	assert.Equal(t, 3000.0, m.QuoteFor(domain.VenueParadex).Bid)
	assert.Equal(t, 2999.0, m.QuoteFor(domain.VenueBackpack).Bid)
	assert.Equal(t, 3001.0, m.QuoteFor(domain.VenueHyperliquid).Bid)
}
