package paradex

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const restTimeout = 10 * time.Second

// fallbackSymbols is used when REST symbol discovery fails.
var fallbackSymbols = []string{"BTC-USD-PERP", "ETH-USD-PERP", "SOL-USD-PERP"}

// defaultContractSizes covers the major perpetuals when the markets endpoint
// is unavailable. Keys are stored in both separator formats.
var defaultContractSizes = map[string]float64{
	"BTC-USD-PERP":  0.001,
	"ETH-USD-PERP":  0.01,
	"SOL-USD-PERP":  0.1,
	"AVAX-USD-PERP": 0.1,
	"BNB-USD-PERP":  0.01,
	"DOGE-USD-PERP": 1.0,
	"SUI-USD-PERP":  1.0,
	"JTO-USD-PERP":  1.0,
	"JUP-USD-PERP":  1.0,
	"HYPE-USD-PERP": 1.0,
	"APT-USD-PERP":  0.1,
}

// fetchSymbols retrieves the tradable perpetual list from the markets
// summary endpoint. Option instruments are excluded up front.
func (c *Client) fetchSymbols(ctx context.Context) ([]string, error) {
	url := c.apiURL + "/markets/summary?market=ALL"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("paradex: create summary request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	client := &http.Client{Timeout: restTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("paradex: fetch symbols: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("paradex: fetch symbols: status %d", resp.StatusCode)
	}

	var summary marketsSummaryResponse
	if err := json.NewDecoder(resp.Body).Decode(&summary); err != nil {
		return nil, fmt.Errorf("paradex: decode symbols: %w", err)
	}

	symbols := make([]string, 0, len(summary.Results))
	for _, r := range summary.Results {
		if r.Symbol == "" || isOption(r.Symbol) {
			continue
		}
		if !strings.HasSuffix(r.Symbol, "-PERP") {
			continue
		}
		symbols = append(symbols, r.Symbol)
	}
	if len(symbols) == 0 {
		return nil, fmt.Errorf("paradex: no perpetual markets in summary")
	}
	return symbols, nil
}

// loadContractSizes merges the markets endpoint's per-instrument multipliers
// over the built-in defaults. Failures leave the defaults in place; callers
// treat this as best-effort.
func (c *Client) loadContractSizes(ctx context.Context) error {
	url := c.apiURL + "/markets"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("paradex: create markets request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.jwt != "" {
		req.Header.Set("Authorization", "Bearer "+c.jwt)
	}

	client := &http.Client{Timeout: restTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("paradex: fetch markets: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("paradex: fetch markets: status %d", resp.StatusCode)
	}

	var markets marketsResponse
	if err := json.NewDecoder(resp.Body).Decode(&markets); err != nil {
		return fmt.Errorf("paradex: decode markets: %w", err)
	}

	loaded := 0
	c.sizesMu.Lock()
	for _, m := range markets.Markets {
		id := m.ID
		if id == "" {
			id = m.Symbol
		}
		if id == "" {
			continue
		}
		size := m.BaseSize.Float()
		if size <= 0 {
			size = m.ContractSize.Float()
		}
		if size <= 0 {
			continue
		}
		c.contractSizes[id] = size
		c.contractSizes[strings.ReplaceAll(id, "-", "_")] = size
		loaded++
	}
	c.sizesMu.Unlock()

	c.logger.Info("loaded paradex contract sizes", slog.Int("markets", loaded))
	return nil
}
