package domain

import (
	"encoding/json"
	"fmt"
)

// Direction labels which side of a venue pair a spread was detected on.
// BUY means "buy at the first venue's bid, sell at the second venue's ask";
// SELL is the independent check in the opposite direction (second venue's
// bid against the first venue's ask). The two are not opposite legs of one
// trade.
type Direction string

const (
	DirectionBuy  Direction = "BUY"
	DirectionSell Direction = "SELL"
)

// VenuePair is an ordered pair of venues a spread is evaluated across.
type VenuePair struct {
	First  Venue
	Second Venue
}

// The three configured venue pairs, in evaluation order.
var (
	PairParadexBackpack     = VenuePair{VenueParadex, VenueBackpack}
	PairParadexHyperliquid  = VenuePair{VenueParadex, VenueHyperliquid}
	PairBackpackHyperliquid = VenuePair{VenueBackpack, VenueHyperliquid}

	VenuePairs = []VenuePair{
		PairParadexBackpack,
		PairParadexHyperliquid,
		PairBackpackHyperliquid,
	}
)

// String returns the pair identifier used in persisted rows and API filters,
// e.g. "paradex_backpack".
func (p VenuePair) String() string {
	return string(p.First) + "_" + string(p.Second)
}

// HasParadex reports whether the pair involves the raw-price venue.
func (p VenuePair) HasParadex() bool {
	return p.First == VenueParadex || p.Second == VenueParadex
}

// ParseVenuePair maps a pair identifier back to its VenuePair. The second
// return value is false for unknown identifiers.
func ParseVenuePair(s string) (VenuePair, bool) {
	for _, p := range VenuePairs {
		if p.String() == s {
			return p, true
		}
	}
	return VenuePair{}, false
}

// MarshalJSON encodes the pair as its string identifier.
func (p VenuePair) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON decodes a pair identifier, rejecting unknown pairs.
func (p *VenuePair) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, ok := ParseVenuePair(s)
	if !ok {
		return fmt.Errorf("unknown venue pair %q", s)
	}
	*p = parsed
	return nil
}

// Spread is one detected arbitrage opportunity. Exactly two of the per-venue
// price fields are populated: for BUY the first venue's bid and the second
// venue's ask, for SELL the second venue's bid and the first venue's ask.
// Raw is attached only when the pair involves Paradex. Spreads are immutable
// once created.
type Spread struct {
	ID               string      `json:"id"`
	Symbol           string      `json:"symbol"`
	Direction        Direction   `json:"signal"`
	Pair             VenuePair   `json:"exchange_pair"`
	ParadexPrice     float64     `json:"paradex_price,omitempty"`
	BackpackPrice    float64     `json:"backpack_price,omitempty"`
	HyperliquidPrice float64     `json:"hyperliquid_price,omitempty"`
	Difference       float64     `json:"difference"`
	Raw              *RawPricing `json:"paradex_raw,omitempty"`
	CreatedAt        int64       `json:"created"`
}

// PriceFor returns the persisted price for the given venue, zero when the
// venue is not part of the spread's pair.
func (s Spread) PriceFor(v Venue) float64 {
	switch v {
	case VenueParadex:
		return s.ParadexPrice
	case VenueBackpack:
		return s.BackpackPrice
	case VenueHyperliquid:
		return s.HyperliquidPrice
	}
	return 0
}

// SetPriceFor records the persisted price for the given venue.
func (s *Spread) SetPriceFor(v Venue, price float64) {
	switch v {
	case VenueParadex:
		s.ParadexPrice = price
	case VenueBackpack:
		s.BackpackPrice = price
	case VenueHyperliquid:
		s.HyperliquidPrice = price
	}
}

// DerivedDifference computes the presentation-layer percentage difference
// for the spread. For BUY the entry is the first venue's price and the exit
// the second venue's; SELL mirrors that. This is a display value derived by
// the persistence sink, not the detector's threshold arithmetic.
func (s Spread) DerivedDifference() float64 {
	buy := s.PriceFor(s.Pair.First)
	sell := s.PriceFor(s.Pair.Second)
	if s.Direction == DirectionSell {
		buy, sell = sell, buy
	}
	if buy <= 0 {
		return 0
	}
	return (sell - buy) / buy * 100
}
