// Package symbol maps venue-specific instrument identifiers onto the
// canonical symbol space used to join quotes across venues.
//
// Native formats:
//
//	Paradex:     BTC-USD-PERP (perps), BTC-USD-<STRIKE>-<C|P> (options)
//	Backpack:    BTC_USDC_PERP
//	Hyperliquid: BTC (bare base asset)
//
// All of them normalize to BTC_USDC_PERP.
package symbol

import "strings"

// Suffix is appended to the base asset to form a canonical symbol.
const Suffix = "_USDC_PERP"

// Normalize maps any venue-native instrument identifier to its canonical
// form {BASE}_USDC_PERP. It is a total function: every input produces an
// output, and an already-canonical symbol is returned unchanged.
func Normalize(venueSymbol string) string {
	base := venueSymbol
	if i := strings.IndexByte(venueSymbol, '-'); i >= 0 {
		base = venueSymbol[:i]
	} else if i := strings.IndexByte(venueSymbol, '_'); i >= 0 {
		base = venueSymbol[:i]
	}
	return base + Suffix
}

// Base extracts the base asset token from a venue-native or canonical
// symbol, e.g. "BTC" from "BTC-USD-PERP".
func Base(venueSymbol string) string {
	return strings.TrimSuffix(Normalize(venueSymbol), Suffix)
}
