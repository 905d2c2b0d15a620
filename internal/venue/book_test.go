package venue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/spreadwatch/internal/domain"
)

func TestBookMarketsFiltersInvalidQuotes(t *testing.T) {
	b := NewBook()
	b.Init([]string{"BTC", "ETH", "SOL"})

	now := time.Now()
	b.Set("BTC", domain.Quote{Bid: 90000, Ask: 90010, UpdatedAt: now})
	b.Set("ETH", domain.Quote{Bid: 0, Ask: 2000, UpdatedAt: now}) // one-sided, invalid

	markets := b.Markets()
	require.Len(t, markets, 1)
	assert.Equal(t, "BTC_USDC_PERP", markets[0].Symbol)
	assert.Equal(t, 90000.0, markets[0].Bid)
	assert.Equal(t, 90010.0, markets[0].Ask)
}

func TestBookMarketsCanonicalSymbolsSorted(t *testing.T) {
	b := NewBook()
	now := time.Now()
	b.Set("SOL_USDC_PERP", domain.Quote{Bid: 200, Ask: 201, UpdatedAt: now})
	b.Set("AVAX_USDC_PERP", domain.Quote{Bid: 30, Ask: 30.1, UpdatedAt: now})

	markets := b.Markets()
	require.Len(t, markets, 2)
	assert.Equal(t, "AVAX_USDC_PERP", markets[0].Symbol)
	assert.Equal(t, "SOL_USDC_PERP", markets[1].Symbol)
}

func TestBookSnapshotIsACopy(t *testing.T) {
	b := NewBook()
	b.Set("BTC", domain.Quote{Bid: 1, Ask: 2})

	snap := b.Snapshot()
	snap["BTC"] = domain.Quote{Bid: 99, Ask: 100}

	q, ok := b.Get("BTC")
	require.True(t, ok)
	assert.Equal(t, 1.0, q.Bid)
}

func TestBookLastWriteWins(t *testing.T) {
	b := NewBook()
	b.Set("ETH", domain.Quote{Bid: 1999, Ask: 2001})
	b.Set("ETH", domain.Quote{Bid: 2000, Ask: 2002})

	q, _ := b.Get("ETH")
	assert.Equal(t, 2000.0, q.Bid)
	assert.Equal(t, 2002.0, q.Ask)
}
