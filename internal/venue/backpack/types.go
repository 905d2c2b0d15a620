package backpack

import (
	"encoding/json"
	"strconv"
)

// subscribeRequest is the batched stream subscription command.
type subscribeRequest struct {
	Method string   `json:"method"`
	Params []string `json:"params"`
	ID     int      `json:"id"`
}

// streamEnvelope wraps every message on the public stream. Subscription
// acknowledgements carry Result; data pushes carry Stream and Data.
type streamEnvelope struct {
	Stream string          `json:"stream"`
	Data   json.RawMessage `json:"data"`
	Result json.RawMessage `json:"result"`
	ID     int             `json:"id"`
}

// bookTicker is the best bid/ask push for one instrument. Prices arrive as
// decimal strings; E is the engine timestamp in microseconds.
type bookTicker struct {
	Event    string      `json:"e"`
	Symbol   string      `json:"s"`
	Ask      priceString `json:"a"`
	Bid      priceString `json:"b"`
	EngineTs int64       `json:"E"`
}

// priceString is a decimal price that may arrive as a JSON string or number.
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

// Float parses the price, returning 0 for empty or malformed values so a bad
// field degrades to "no data" instead of an error.
func (p priceString) Float() float64 {
	f, err := strconv.ParseFloat(string(p), 64)
	if err != nil {
		return 0
	}
	return f
}
