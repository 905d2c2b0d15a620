package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/alanyoungcy/spreadwatch/internal/domain"
)

// writeJSON marshals v as JSON and writes it with the given status code. If
// marshaling fails, it falls back to a plain 500.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(data)
}

// writeError sends a JSON-formatted error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// parseSpreadFilter extracts filter parameters from the query string:
// symbol, pair, since/until (epoch seconds), limit (default 50, max 500),
// offset.
func parseSpreadFilter(r *http.Request) (domain.SpreadFilter, error) {
	q := r.URL.Query()
	filter := domain.SpreadFilter{
		Symbol: q.Get("symbol"),
		Pair:   q.Get("pair"),
		Limit:  50,
	}

	if filter.Pair != "" {
		if _, ok := domain.ParseVenuePair(filter.Pair); !ok {
			return domain.SpreadFilter{}, errBadParam{"pair", filter.Pair}
		}
	}
	if v := q.Get("since"); v != "" {
		ts, err := parseEpoch(v)
		if err != nil {
			return domain.SpreadFilter{}, errBadParam{"since", v}
		}
		filter.Since = &ts
	}
	if v := q.Get("until"); v != "" {
		ts, err := parseEpoch(v)
		if err != nil {
			return domain.SpreadFilter{}, errBadParam{"until", v}
		}
		filter.Until = &ts
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return domain.SpreadFilter{}, errBadParam{"limit", v}
		}
		filter.Limit = n
	}
	if filter.Limit > 500 {
		filter.Limit = 500
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return domain.SpreadFilter{}, errBadParam{"offset", v}
		}
		filter.Offset = n
	}
	return filter, nil
}

// parseLimit extracts a standalone limit parameter with the same defaults as
// parseSpreadFilter.
func parseLimit(r *http.Request) (int, error) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return 0, errBadParam{"limit", v}
		}
		limit = n
	}
	if limit > 500 {
		limit = 500
	}
	return limit, nil
}

func parseEpoch(v string) (time.Time, error) {
	secs, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(secs, 0).UTC(), nil
}

type errBadParam struct {
	name  string
	value string
}

func (e errBadParam) Error() string {
	return "invalid " + e.name + " parameter: " + e.value
}
