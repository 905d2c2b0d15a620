package notify

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flakySender struct {
	name string
	err  error
	sent int
}

func (f *flakySender) Send(_ context.Context, _, _ string) error {
	f.sent++
	return f.err
}

func (f *flakySender) Name() string { return f.name }

func TestNotifyAllowListFilters(t *testing.T) {
	s := &flakySender{name: "a"}
	n := NewNotifier([]Sender{s}, []string{EventSpread}, slog.New(slog.DiscardHandler))

	require.NoError(t, n.Notify(context.Background(), "heartbeat", "t", "m"))
	assert.Zero(t, s.sent)

	require.NoError(t, n.Notify(context.Background(), EventSpread, "t", "m"))
	assert.Equal(t, 1, s.sent)
}

func TestNotifyFailingChannelDoesNotBlockOthers(t *testing.T) {
	boom := errors.New("boom")
	bad := &flakySender{name: "bad", err: boom}
	good := &flakySender{name: "good"}
	n := NewNotifier([]Sender{bad, good}, nil, slog.New(slog.DiscardHandler))

	err := n.Notify(context.Background(), EventSpread, "t", "m")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, good.sent, "remaining channels must still be tried")
}
