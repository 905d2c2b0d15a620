// Package aggregator merges per-venue market snapshots into unified
// per-symbol views keyed by the canonical symbol form.
package aggregator

import (
	"sort"

	"github.com/alanyoungcy/spreadwatch/internal/domain"
)

// Snapshot holds one polling cycle's markets from every venue.
type Snapshot struct {
	Paradex     []domain.VenueMarket
	Backpack    []domain.VenueMarket
	Hyperliquid []domain.VenueMarket
}

// Merge combines the three venue snapshots into aggregated markets, one per
// canonical symbol, sorted by symbol. A symbol present on only some venues
// still yields an entry; the missing venues' quotes stay zero and are
// skipped by downstream validity checks. Paradex entries additionally carry
// their raw venue prices and contract size.
func Merge(snap Snapshot) []domain.AggregatedMarket {
	merged := make(map[string]*domain.AggregatedMarket)

	get := func(sym string) *domain.AggregatedMarket {
		m, ok := merged[sym]
		if !ok {
			m = &domain.AggregatedMarket{Symbol: sym}
			merged[sym] = m
		}
		return m
	}

	for _, vm := range snap.Paradex {
		m := get(vm.Symbol)
		m.Paradex = domain.Quote{Bid: vm.Bid, Ask: vm.Ask, UpdatedAt: vm.UpdatedAt}
		m.ParadexRaw = domain.RawPricing{
			Bid:          vm.RawBid,
			Ask:          vm.RawAsk,
			ContractSize: vm.ContractSize,
		}
	}
	for _, vm := range snap.Backpack {
		get(vm.Symbol).Backpack = domain.Quote{Bid: vm.Bid, Ask: vm.Ask, UpdatedAt: vm.UpdatedAt}
	}
	for _, vm := range snap.Hyperliquid {
		get(vm.Symbol).Hyperliquid = domain.Quote{Bid: vm.Bid, Ask: vm.Ask, UpdatedAt: vm.UpdatedAt}
	}

	out := make([]domain.AggregatedMarket, 0, len(merged))
	for _, m := range merged {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}
