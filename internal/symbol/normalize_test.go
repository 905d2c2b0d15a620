package symbol

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeAcrossVenueFormats(t *testing.T) {
	cases := map[string]string{
		"BTC-USD-PERP":    "BTC_USDC_PERP", // Paradex perp
		"BTC-USD-90000-C": "BTC_USDC_PERP", // Paradex option
		"BTC_USDC_PERP":   "BTC_USDC_PERP", // Backpack
		"BTC":             "BTC_USDC_PERP", // Hyperliquid
		"ETH-USD-PERP":    "ETH_USDC_PERP",
		"ETH_USDC_PERP":   "ETH_USDC_PERP",
		"ETH":             "ETH_USDC_PERP",
		"kPEPE":           "kPEPE_USDC_PERP",
		"SOL-PERP":        "SOL_USDC_PERP",
	}
	for in, want := range cases {
		assert.Equal(t, want, Normalize(in), "Normalize(%q)", in)
	}
}

func TestNormalizeCanonicalIsFixedPoint(t *testing.T) {
	for _, in := range []string{"BTC-USD-PERP", "AVAX_USDC_PERP", "DOGE"} {
		canonical := Normalize(in)
		assert.Equal(t, canonical, Normalize(canonical))
	}
}

func TestBase(t *testing.T) {
	assert.Equal(t, "BTC", Base("BTC-USD-PERP"))
	assert.Equal(t, "SUI", Base("SUI_USDC_PERP"))
	assert.Equal(t, "JUP", Base("JUP"))
}
