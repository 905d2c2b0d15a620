package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/spreadwatch/internal/domain"
)

type stubStore struct {
	domain.SpreadStore
	lastFilter domain.SpreadFilter
	spreads    []domain.Spread
}

func (s *stubStore) List(_ context.Context, filter domain.SpreadFilter) ([]domain.Spread, error) {
	s.lastFilter = filter
	return s.spreads, nil
}

func (s *stubStore) ListRecent(_ context.Context, limit int) ([]domain.Spread, error) {
	if limit < len(s.spreads) {
		return s.spreads[:limit], nil
	}
	return s.spreads, nil
}

func newHandler(store *stubStore) *SpreadHandler {
	return NewSpreadHandler(store, slog.New(slog.DiscardHandler))
}

func TestListParsesFilters(t *testing.T) {
	store := &stubStore{}
	h := newHandler(store)

	req := httptest.NewRequest(http.MethodGet,
		"/api/spreads?symbol=BTC_USDC_PERP&pair=paradex_backpack&since=1718000000&limit=10&offset=5", nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "BTC_USDC_PERP", store.lastFilter.Symbol)
	assert.Equal(t, "paradex_backpack", store.lastFilter.Pair)
	require.NotNil(t, store.lastFilter.Since)
	assert.Equal(t, time.Unix(1718000000, 0).UTC(), *store.lastFilter.Since)
	assert.Equal(t, 10, store.lastFilter.Limit)
	assert.Equal(t, 5, store.lastFilter.Offset)
}

func TestListRejectsUnknownPair(t *testing.T) {
	h := newHandler(&stubStore{})

	req := httptest.NewRequest(http.MethodGet, "/api/spreads?pair=paradex_binance", nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListRejectsBadLimit(t *testing.T) {
	h := newHandler(&stubStore{})

	req := httptest.NewRequest(http.MethodGet, "/api/spreads?limit=abc", nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListEmptyResultIsArray(t *testing.T) {
	h := newHandler(&stubStore{})

	req := httptest.NewRequest(http.MethodGet, "/api/spreads", nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Spreads []domain.Spread `json:"spreads"`
		Count   int             `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotNil(t, body.Spreads)
	assert.Zero(t, body.Count)
	assert.Contains(t, rec.Body.String(), `"spreads":[]`)
}

func TestListRecentSerializesSpread(t *testing.T) {
	store := &stubStore{spreads: []domain.Spread{{
		ID:            "s-1",
		Symbol:        "BTC_USDC_PERP",
		Direction:     domain.DirectionBuy,
		Pair:          domain.PairParadexBackpack,
		ParadexPrice:  100,
		BackpackPrice: 103,
		Difference:    3,
		Raw:           &domain.RawPricing{Bid: 100, Ask: 101, ContractSize: 0.001},
		CreatedAt:     1718000000,
	}}}
	h := newHandler(store)

	req := httptest.NewRequest(http.MethodGet, "/api/spreads/recent", nil)
	rec := httptest.NewRecorder()
	h.ListRecent(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"exchange_pair":"paradex_backpack"`)
	assert.Contains(t, rec.Body.String(), `"signal":"BUY"`)
	assert.Contains(t, rec.Body.String(), `"contract_size":0.001`)
}
