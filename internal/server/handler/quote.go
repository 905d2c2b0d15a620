package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/alanyoungcy/spreadwatch/internal/domain"
)

// QuoteHandler serves live merged quotes out of the quote cache.
type QuoteHandler struct {
	cache  domain.QuoteCache
	logger *slog.Logger
}

// NewQuoteHandler creates a QuoteHandler.
func NewQuoteHandler(cache domain.QuoteCache, logger *slog.Logger) *QuoteHandler {
	return &QuoteHandler{cache: cache, logger: logger}
}

// ListSymbols returns every symbol with cached quotes.
// GET /api/quotes
func (h *QuoteHandler) ListSymbols(w http.ResponseWriter, r *http.Request) {
	symbols, err := h.cache.Symbols(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list quote symbols failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to list symbols")
		return
	}
	if symbols == nil {
		symbols = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"symbols": symbols,
		"count":   len(symbols),
	})
}

// GetQuotes returns the per-venue quotes for one symbol.
// GET /api/quotes/{symbol}
func (h *QuoteHandler) GetQuotes(w http.ResponseWriter, r *http.Request) {
	symbol := r.PathValue("symbol")
	if symbol == "" {
		writeError(w, http.StatusBadRequest, "missing symbol")
		return
	}

	quotes, err := h.cache.GetQuotes(r.Context(), symbol)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no quotes for symbol "+symbol)
			return
		}
		h.logger.ErrorContext(r.Context(), "get quotes failed",
			slog.String("symbol", symbol),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to get quotes")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"symbol": symbol,
		"quotes": quotes,
	})
}
