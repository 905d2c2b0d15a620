package hyperliquid

import (
	"encoding/json"
	"strconv"
)

// subscribeRequest is the stream subscription command.
type subscribeRequest struct {
	Method       string       `json:"method"`
	Subscription subscription `json:"subscription"`
}

type subscription struct {
	Type string `json:"type"`
	Coin string `json:"coin,omitempty"`
}

// pingRequest is the app-level keepalive the venue answers with a pong
// channel message.
type pingRequest struct {
	Method string `json:"method"`
}

// channelEnvelope wraps every stream push.
type channelEnvelope struct {
	Channel string          `json:"channel"`
	Data    json.RawMessage `json:"data"`
}

// l2BookData is a full order book push for one coin. Levels holds two
// arrays, bids first then asks, each sorted best-first.
type l2BookData struct {
	Coin   string      `json:"coin"`
	Levels [][]l2Level `json:"levels"`
	Time   int64       `json:"time"`
}

// l2Level is one resting price level.
type l2Level struct {
	Price priceString `json:"px"`
	Size  priceString `json:"sz"`
	Count int         `json:"n"`
}

// allMidsData carries the mid price of every listed coin as decimal strings.
type allMidsData struct {
	Mids map[string]priceString `json:"mids"`
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
