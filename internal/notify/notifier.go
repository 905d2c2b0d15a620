// Package notify pushes operator alerts to chat channels. A Notifier fans
// one message out to every configured channel and can restrict delivery to
// a set of event types.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Sender is one delivery channel, such as a Telegram chat or a Discord
// webhook.
type Sender interface {
	Send(ctx context.Context, title, message string) error
	Name() string
}

// Notifier fans messages out to its senders. When an allow list of event
// types is configured, Notify drops messages for any other event; an empty
// list lets everything through.
type Notifier struct {
	senders []Sender
	allow   map[string]struct{}
	logger  *slog.Logger
}

func NewNotifier(senders []Sender, events []string, logger *slog.Logger) *Notifier {
	allow := make(map[string]struct{}, len(events))
	for _, e := range events {
		allow[strings.TrimSpace(e)] = struct{}{}
	}
	return &Notifier{
		senders: senders,
		allow:   allow,
		logger:  logger.With(slog.String("component", "notifier")),
	}
}

// Notify delivers title and message to every sender, subject to the event
// allow list. A failing channel does not stop delivery to the others; all
// channel errors are joined into the returned error.
func (n *Notifier) Notify(ctx context.Context, event, title, message string) error {
	if len(n.allow) > 0 {
		if _, ok := n.allow[event]; !ok {
			n.logger.DebugContext(ctx, "event not in allow list", slog.String("event", event))
			return nil
		}
	}

	var errs []error
	for _, s := range n.senders {
		if err := s.Send(ctx, title, message); err != nil {
			n.logger.ErrorContext(ctx, "delivery failed",
				slog.String("channel", s.Name()),
				slog.String("error", err.Error()),
			)
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
			continue
		}
		n.logger.DebugContext(ctx, "delivered",
			slog.String("channel", s.Name()),
			slog.String("title", title),
		)
	}
	return errors.Join(errs...)
}
