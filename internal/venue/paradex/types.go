package paradex

import (
	"encoding/json"
	"strconv"
	"strings"
)

// rpcRequest is an outgoing JSON-RPC 2.0 command.
type rpcRequest struct {
	Jsonrpc string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
	ID      int64  `json:"id"`
}

// authParams carries the bearer JWT for the auth method.
type authParams struct {
	Bearer string `json:"bearer"`
}

// subscribeParams names the channel to subscribe to, e.g. "bbo.BTC-USD-PERP".
type subscribeParams struct {
	Channel string `json:"channel"`
}

// rpcMessage is an incoming JSON-RPC message: either a reply to one of our
// commands (Result/Error with ID) or a subscription push (Method + Params).
type rpcMessage struct {
	Jsonrpc string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
	Result  json.RawMessage `json:"result"`
	Error   *rpcError       `json:"error"`
	ID      int64           `json:"id"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// subscriptionPush wraps the payload of a subscription message.
type subscriptionPush struct {
	Channel string          `json:"channel"`
	Data    json.RawMessage `json:"data"`
}

// bboData is a best bid/offer push for one market. Prices arrive as decimal
// strings; LastUpdatedAt is a millisecond timestamp.
type bboData struct {
	Market        string      `json:"market"`
	Bid           priceString `json:"bid"`
	Ask           priceString `json:"ask"`
	LastUpdatedAt int64       `json:"last_updated_at"`
}

// marketsSummaryResponse is the REST symbol-discovery payload.
type marketsSummaryResponse struct {
	Results []struct {
		Symbol string `json:"symbol"`
	} `json:"results"`
}

// marketInfo is one entry of the REST markets listing, used for contract
// sizes. Different API revisions expose the multiplier under different keys.
type marketInfo struct {
	ID           string      `json:"id"`
	Symbol       string      `json:"symbol"`
	BaseSize     priceString `json:"baseSize"`
	ContractSize priceString `json:"contractSize"`
}

// marketsResponse tolerates both the bare-list and wrapped response shapes.
type marketsResponse struct {
	Markets []marketInfo
}

func (m *marketsResponse) UnmarshalJSON(b []byte) error {
	trimmed := strings.TrimSpace(string(b))
	if strings.HasPrefix(trimmed, "[") {
		return json.Unmarshal(b, &m.Markets)
	}
	var wrapped struct {
		Markets []marketInfo `json:"markets"`
	}
	if err := json.Unmarshal(b, &wrapped); err != nil {
		return err
	}
	m.Markets = wrapped.Markets
	return nil
}

// isOption reports whether a Paradex symbol names an option contract
// (BTC-USD-<STRIKE>-<C|P>) rather than a perpetual.
func isOption(symbol string) bool {
	parts := strings.Split(symbol, "-")
	if len(parts) < 3 {
		return false
	}
	last := parts[len(parts)-1]
	return last == "C" || last == "P"
}

// priceString is a decimal value that may arrive as a JSON string or number.
type priceString string

func (p *priceString) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*p = priceString(s)
		return nil
	}
	*p = priceString(b)
	return nil
}

// Float parses the value, returning 0 for empty or malformed input.
func (p priceString) Float() float64 {
	f, err := strconv.ParseFloat(string(p), 64)
	if err != nil {
		return 0
	}
	return f
}
