package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/alanyoungcy/spreadwatch/internal/domain"
)

// EventSpread is the event type for detected-spread notifications.
const EventSpread = "spread"

// SpreadAlerter turns detected spreads into operator notifications. Alerts
// only fire for spreads whose derived difference clears MinDifferencePct,
// and each (symbol, pair, direction) combination is rate limited by a
// cooldown so a persistent spread does not flood the channels.
type SpreadAlerter struct {
	notifier *Notifier

	minDifferencePct float64
	cooldown         time.Duration

	mu       sync.Mutex
	lastSent map[string]time.Time
	logger   *slog.Logger
}

// NewSpreadAlerter creates a SpreadAlerter.
func NewSpreadAlerter(notifier *Notifier, minDifferencePct float64, cooldown time.Duration, logger *slog.Logger) *SpreadAlerter {
	return &SpreadAlerter{
		notifier:         notifier,
		minDifferencePct: minDifferencePct,
		cooldown:         cooldown,
		lastSent:         make(map[string]time.Time),
		logger:           logger.With(slog.String("component", "spread_alerter")),
	}
}

// SpreadDetected notifies operators about one detected spread, subject to
// the difference threshold and cooldown.
func (a *SpreadAlerter) SpreadDetected(ctx context.Context, s domain.Spread) error {
	diff := s.Difference
	if diff == 0 {
		diff = s.DerivedDifference()
	}
	if diff < a.minDifferencePct {
		return nil
	}
	if !a.shouldSend(s) {
		return nil
	}

	title := fmt.Sprintf("Spread %.2f%% on %s", diff, s.Symbol)
	message := fmt.Sprintf("%s %s\n%s: %.6f vs %s: %.6f",
		s.Direction, s.Pair,
		s.Pair.First, s.PriceFor(s.Pair.First),
		s.Pair.Second, s.PriceFor(s.Pair.Second),
	)
	return a.notifier.Notify(ctx, EventSpread, title, message)
}

// shouldSend applies the per-signal cooldown.
func (a *SpreadAlerter) shouldSend(s domain.Spread) bool {
	key := s.Symbol + "|" + s.Pair.String() + "|" + string(s.Direction)
	now := time.Now()

	a.mu.Lock()
	defer a.mu.Unlock()
	if last, ok := a.lastSent[key]; ok && now.Sub(last) < a.cooldown {
		return false
	}
	a.lastSent[key] = now
	return true
}
