package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/alanyoungcy/spreadwatch/internal/domain"
)

// SpreadHandler serves the persisted-spread read API.
type SpreadHandler struct {
	store  domain.SpreadStore
	logger *slog.Logger
}

// NewSpreadHandler creates a SpreadHandler.
func NewSpreadHandler(store domain.SpreadStore, logger *slog.Logger) *SpreadHandler {
	return &SpreadHandler{store: store, logger: logger}
}

// List returns spreads matching the query filters, newest first.
// GET /api/spreads?symbol=&pair=&since=&until=&limit=&offset=
func (h *SpreadHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := parseSpreadFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	spreads, err := h.store.List(r.Context(), filter)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list spreads failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to list spreads")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"spreads": emptyIfNil(spreads),
		"count":   len(spreads),
	})
}

// ListRecent returns the newest spreads.
// GET /api/spreads/recent?limit=
func (h *SpreadHandler) ListRecent(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	spreads, err := h.store.ListRecent(r.Context(), limit)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list recent spreads failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to list spreads")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"spreads": emptyIfNil(spreads),
		"count":   len(spreads),
	})
}

// ListLargest returns the spreads with the biggest percentage difference
// inside a lookback window.
// GET /api/spreads/largest?hours=24&limit=
func (h *SpreadHandler) ListLargest(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	hours := 24
	if v := r.URL.Query().Get("hours"); v != "" {
		n, convErr := strconv.Atoi(v)
		if convErr != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "invalid hours parameter: "+v)
			return
		}
		hours = n
	}
	since := time.Now().UTC().Add(-time.Duration(hours) * time.Hour)

	spreads, err := h.store.ListLargest(r.Context(), since, limit)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list largest spreads failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to list spreads")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"spreads": emptyIfNil(spreads),
		"count":   len(spreads),
		"since":   since.Unix(),
	})
}

// emptyIfNil keeps JSON responses as [] instead of null for empty results.
func emptyIfNil(spreads []domain.Spread) []domain.Spread {
	if spreads == nil {
		return []domain.Spread{}
	}
	return spreads
}
