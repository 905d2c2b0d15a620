package hyperliquid

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const (
	mainnetAPIURL = "https://api.hyperliquid.xyz/info"
	testnetAPIURL = "https://api.hyperliquid-testnet.xyz/info"

	restTimeout = 10 * time.Second
)

// fallbackCoins is used when universe discovery fails.
var fallbackCoins = []string{"BTC", "ETH", "SOL"}

// metaResponse is the relevant slice of the info endpoint's meta payload.
type metaResponse struct {
	Universe []struct {
		Name string `json:"name"`
	} `json:"universe"`
}

// fetchUniverse retrieves the tradable coin list from the REST info
// endpoint (POST {"type":"meta"}).
func (c *Client) fetchUniverse(ctx context.Context) ([]string, error) {
	body, err := json.Marshal(map[string]string{"type": "meta"})
	if err != nil {
		return nil, fmt.Errorf("hyperliquid: marshal meta request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("hyperliquid: create meta request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: restTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("hyperliquid: fetch universe: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("hyperliquid: fetch universe: status %d", resp.StatusCode)
	}

	var meta metaResponse
	if err := json.NewDecoder(resp.Body).Decode(&meta); err != nil {
		return nil, fmt.Errorf("hyperliquid: decode universe: %w", err)
	}

	coins := make([]string, 0, len(meta.Universe))
	for _, asset := range meta.Universe {
		if asset.Name != "" {
			coins = append(coins, asset.Name)
		}
	}
	if len(coins) == 0 {
		return nil, fmt.Errorf("hyperliquid: universe is empty")
	}
	return coins, nil
}
