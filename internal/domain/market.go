// Package domain defines the core types shared by the feed clients, the
// aggregator, the spread detector, and the persistence layer.
package domain

import "time"

// Venue identifies one of the monitored trading venues.
type Venue string

const (
	VenueParadex     Venue = "paradex"
	VenueBackpack    Venue = "backpack"
	VenueHyperliquid Venue = "hyperliquid"
)

// Quote is the top-of-book state for one (venue, symbol) pair. A Quote is
// only usable downstream when both sides are positive; a zero-valued Quote
// means "no current data".
type Quote struct {
	Bid       float64   `json:"bid"`
	Ask       float64   `json:"ask"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Valid reports whether the quote carries usable prices on both sides.
func (q Quote) Valid() bool {
	return q.Bid > 0 && q.Ask > 0
}

// RawPricing carries Paradex's venue-native prices and the contract
// multiplier between its quoting unit and one unit of the underlying asset.
type RawPricing struct {
	Bid          float64 `json:"bid"`
	Ask          float64 `json:"ask"`
	ContractSize float64 `json:"contract_size"`
}

// VenueMarket is one instrument's top of book as materialized by a feed
// client: canonical symbol plus the latest valid quote. RawBid, RawAsk and
// ContractSize are populated only by the Paradex client and stay zero for
// the other venues.
type VenueMarket struct {
	Symbol       string    `json:"symbol"`
	Bid          float64   `json:"bid"`
	Ask          float64   `json:"ask"`
	UpdatedAt    time.Time `json:"last_update"`
	RawBid       float64   `json:"raw_bid,omitempty"`
	RawAsk       float64   `json:"raw_ask,omitempty"`
	ContractSize float64   `json:"contract_size,omitempty"`
}

// AggregatedMarket joins the three venues' quotes for one canonical symbol.
// It is rebuilt from scratch on every evaluation cycle and never persisted;
// absent venues leave their Quote zero-valued.
type AggregatedMarket struct {
	Symbol      string
	Paradex     Quote
	Backpack    Quote
	Hyperliquid Quote
	ParadexRaw  RawPricing
}

// QuoteFor returns the quote this record holds for the given venue.
func (m AggregatedMarket) QuoteFor(v Venue) Quote {
	switch v {
	case VenueParadex:
		return m.Paradex
	case VenueBackpack:
		return m.Backpack
	case VenueHyperliquid:
		return m.Hyperliquid
	}
	return Quote{}
}
