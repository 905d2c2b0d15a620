package detector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/spreadwatch/internal/domain"
)

func market(sym string, paradex, backpack, hyperliquid domain.Quote) domain.AggregatedMarket {
	return domain.AggregatedMarket{
		Symbol:      sym,
		Paradex:     paradex,
		Backpack:    backpack,
		Hyperliquid: hyperliquid,
		ParadexRaw:  domain.RawPricing{Bid: paradex.Bid, Ask: paradex.Ask, ContractSize: 0.001},
	}
}

func TestDetectSingleDirection(t *testing.T) {
	// Paradex bid=100 vs Backpack ask=103: 103 > 100*1.005, BUY fires.
	// Backpack bid=102 vs Paradex ask=101: 101 <= 102*1.005, SELL stays quiet.
	m := market("BTC_USDC_PERP",
		domain.Quote{Bid: 100, Ask: 101},
		domain.Quote{Bid: 102, Ask: 103},
		domain.Quote{},
	)

	spreads := New(0.5).Detect([]domain.AggregatedMarket{m})
	require.Len(t, spreads, 1)

	s := spreads[0]
	assert.Equal(t, domain.DirectionBuy, s.Direction)
	assert.Equal(t, domain.PairParadexBackpack, s.Pair)
	assert.Equal(t, 100.0, s.ParadexPrice, "source price is the first venue's bid")
	assert.Equal(t, 103.0, s.BackpackPrice, "destination price is the second venue's ask")
	assert.Zero(t, s.HyperliquidPrice)
	require.NotNil(t, s.Raw)
	assert.Equal(t, 0.001, s.Raw.ContractSize)
}

func TestDetectSellDirection(t *testing.T) {
	// Backpack bid=105 vs Paradex ask=101: 105's counterpart check is
	// 101 > 105*1.005? No. The SELL check is second bid vs first ask:
	// first=paradex ask=110, second=backpack bid=100. 110 > 100*1.005 fires.
	m := market("ETH_USDC_PERP",
		domain.Quote{Bid: 108, Ask: 110},
		domain.Quote{Bid: 100, Ask: 101},
		domain.Quote{},
	)

	spreads := New(0.5).Detect([]domain.AggregatedMarket{m})
	require.Len(t, spreads, 1)

	s := spreads[0]
	assert.Equal(t, domain.DirectionSell, s.Direction)
	assert.Equal(t, domain.PairParadexBackpack, s.Pair)
	assert.Equal(t, 110.0, s.ParadexPrice, "destination price is the first venue's ask")
	assert.Equal(t, 100.0, s.BackpackPrice, "source price is the second venue's bid")
}

func TestDetectBelowThreshold(t *testing.T) {
	// Every direction sits exactly at the threshold: 100*(1+2/100) is
	// exactly 102 in float64, so the comparison is not clouded by rounding.
	m := market("BTC_USDC_PERP",
		domain.Quote{Bid: 100, Ask: 102},
		domain.Quote{Bid: 100, Ask: 102},
		domain.Quote{Bid: 100, Ask: 102},
	)

	spreads := New(2).Detect([]domain.AggregatedMarket{m})
	assert.Empty(t, spreads, "ask == bid*(1+margin) must not fire, the inequality is strict")
}

func TestDetectMissingVenueSuppressed(t *testing.T) {
	// Hyperliquid has no data; only the paradex_backpack pair can fire.
	m := market("SOL_USDC_PERP",
		domain.Quote{Bid: 100, Ask: 101},
		domain.Quote{Bid: 200, Ask: 201},
		domain.Quote{},
	)

	spreads := New(0).Detect([]domain.AggregatedMarket{m})
	for _, s := range spreads {
		assert.Equal(t, domain.PairParadexBackpack, s.Pair,
			"pairs with a missing venue must yield no signal")
	}
	require.Len(t, spreads, 1)
	assert.Equal(t, domain.DirectionBuy, spreads[0].Direction)
}

func TestDetectZeroSideSuppressed(t *testing.T) {
	m := market("SOL_USDC_PERP",
		domain.Quote{Bid: 0, Ask: 101},
		domain.Quote{Bid: 100, Ask: 200},
		domain.Quote{},
	)

	// Paradex bid is zero so the BUY check is skipped, not treated as an
	// infinite spread. SELL still evaluates: paradex ask=101 vs backpack
	// bid=100 clears a zero margin.
	spreads := New(0).Detect([]domain.AggregatedMarket{m})
	require.Len(t, spreads, 1)
	assert.Equal(t, domain.DirectionSell, spreads[0].Direction)
}

func TestDetectMaxSixSignals(t *testing.T) {
	// Intentionally crossed prices: every venue's ask exceeds every other
	// venue's bid, so all 2 directions x 3 pairs fire at zero margin.
	m := market("ETH_USDC_PERP",
		domain.Quote{Bid: 100, Ask: 102},
		domain.Quote{Bid: 101, Ask: 103},
		domain.Quote{Bid: 100.5, Ask: 102.5},
	)

	spreads := New(0).Detect([]domain.AggregatedMarket{m})
	require.Len(t, spreads, 6)

	seen := make(map[string]bool)
	for _, s := range spreads {
		seen[s.Pair.String()+"/"+string(s.Direction)] = true
	}
	assert.Len(t, seen, 6, "each pair/direction combination fires exactly once")
}

func TestDetectIdempotent(t *testing.T) {
	m := market("BTC_USDC_PERP",
		domain.Quote{Bid: 100, Ask: 101},
		domain.Quote{Bid: 102, Ask: 103},
		domain.Quote{Bid: 99, Ask: 104},
	)
	d := New(0.5)

	a := d.Detect([]domain.AggregatedMarket{m})
	b := d.Detect([]domain.AggregatedMarket{m})

	require.Equal(t, len(a), len(b))
	for i := range a {
		a[i].CreatedAt = 0
		b[i].CreatedAt = 0
	}
	assert.Equal(t, a, b)
}

func TestDerivedDifference(t *testing.T) {
	buy := domain.Spread{
		Direction:     domain.DirectionBuy,
		Pair:          domain.PairParadexBackpack,
		ParadexPrice:  100,
		BackpackPrice: 103,
	}
	assert.InDelta(t, 3.0, buy.DerivedDifference(), 1e-9)

	sell := domain.Spread{
		Direction:     domain.DirectionSell,
		Pair:          domain.PairParadexBackpack,
		ParadexPrice:  110,
		BackpackPrice: 100,
	}
	// SELL buys at the second venue's price and sells at the first's.
	assert.InDelta(t, 10.0, sell.DerivedDifference(), 1e-9)

	assert.Zero(t, domain.Spread{Direction: domain.DirectionBuy, Pair: domain.PairParadexBackpack}.DerivedDifference())
}
