package domain

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrNoMarketData = errors.New("no market data")
	ErrWSDisconnect = errors.New("websocket disconnected")
)
