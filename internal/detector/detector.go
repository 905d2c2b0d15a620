// Package detector evaluates aggregated markets for cross-venue price
// spreads. Each venue pair is checked in both directions independently: a
// BUY signal compares the first venue's bid against the second venue's ask,
// a SELL signal compares the second venue's bid against the first venue's
// ask. The two directions are deliberately not opposite legs of one trade.
package detector

import (
	"time"

	"github.com/alanyoungcy/spreadwatch/internal/domain"
)

// Detector screens aggregated markets against a minimum margin threshold.
type Detector struct {
	// MinMarginPct is the minimum percentage edge before a spread is
	// reported, e.g. 0.5 means the destination ask must exceed the source
	// bid by more than 0.5%.
	MinMarginPct float64
}

// New creates a detector with the given minimum margin percentage.
func New(minMarginPct float64) *Detector {
	return &Detector{MinMarginPct: minMarginPct}
}

// Detect evaluates every market against all venue pairs in both directions
// and returns the spreads that clear the threshold, up to six per market.
// Detection is stateless: the same input always yields the same spreads.
func (d *Detector) Detect(markets []domain.AggregatedMarket) []domain.Spread {
	var out []domain.Spread
	now := time.Now().Unix()
	for _, m := range markets {
		out = append(out, d.detectOne(m, now)...)
	}
	return out
}

func (d *Detector) detectOne(m domain.AggregatedMarket, now int64) []domain.Spread {
	var out []domain.Spread
	for _, pair := range domain.VenuePairs {
		first := m.QuoteFor(pair.First)
		second := m.QuoteFor(pair.Second)

		// Buy direction: enter at the first venue's bid, exit at the
		// second venue's ask.
		if d.exceeds(first.Bid, second.Ask) {
			out = append(out, d.build(m, pair, domain.DirectionBuy, first.Bid, second.Ask, now))
		}
		// Sell direction: enter at the second venue's bid, exit at the
		// first venue's ask.
		if d.exceeds(second.Bid, first.Ask) {
			out = append(out, d.build(m, pair, domain.DirectionSell, second.Bid, first.Ask, now))
		}
	}
	return out
}

// exceeds reports whether the destination ask clears the source bid by more
// than the margin threshold. A zero or missing price on either side
// suppresses the check entirely.
func (d *Detector) exceeds(srcBid, dstAsk float64) bool {
	if srcBid <= 0 || dstAsk <= 0 {
		return false
	}
	return dstAsk > srcBid*(1+d.MinMarginPct/100)
}

// build assembles one spread record. The per-venue price columns carry the
// two prices the threshold compared: the source venue's bid and the
// destination venue's ask. Raw pricing is attached only for pairs involving
// Paradex, the one venue that quotes in contract units.
func (d *Detector) build(m domain.AggregatedMarket, pair domain.VenuePair, dir domain.Direction, srcBid, dstAsk float64, now int64) domain.Spread {
	s := domain.Spread{
		Symbol:    m.Symbol,
		Direction: dir,
		Pair:      pair,
		CreatedAt: now,
	}

	// For BUY the source is pair.First; for SELL the source is pair.Second.
	src, dst := pair.First, pair.Second
	if dir == domain.DirectionSell {
		src, dst = pair.Second, pair.First
	}
	s.SetPriceFor(src, srcBid)
	s.SetPriceFor(dst, dstAsk)

	if pair.HasParadex() {
		raw := m.ParadexRaw
		s.Raw = &raw
	}
	return s
}
