package s3blob

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/spreadwatch/internal/domain"
)

type memWriter struct {
	objects map[string][]byte
	failPut bool
}

func newMemWriter() *memWriter {
	return &memWriter{objects: make(map[string][]byte)}
}

func (w *memWriter) Put(_ context.Context, path string, data io.Reader, _ string) error {
	if w.failPut {
		return assert.AnError
	}
	buf, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	w.objects[path] = buf
	return nil
}

type memStore struct {
	spreads []domain.Spread
	deleted int64
}

func (s *memStore) ListBefore(_ context.Context, before time.Time) ([]domain.Spread, error) {
	var out []domain.Spread
	for _, sp := range s.spreads {
		if sp.CreatedAt < before.Unix() {
			out = append(out, sp)
		}
	}
	return out, nil
}

func (s *memStore) DeleteBefore(_ context.Context, before time.Time) (int64, error) {
	var kept []domain.Spread
	for _, sp := range s.spreads {
		if sp.CreatedAt >= before.Unix() {
			kept = append(kept, sp)
		}
	}
	s.deleted = int64(len(s.spreads) - len(kept))
	s.spreads = kept
	return s.deleted, nil
}

func oldSpread(id string, age time.Duration) domain.Spread {
	return domain.Spread{
		ID:            id,
		Symbol:        "BTC_USDC_PERP",
		Direction:     domain.DirectionBuy,
		Pair:          domain.PairParadexBackpack,
		ParadexPrice:  100,
		BackpackPrice: 103,
		Difference:    3,
		CreatedAt:     time.Now().UTC().Add(-age).Unix(),
	}
}

func TestArchiverRoundTrip(t *testing.T) {
	writer := newMemWriter()
	store := &memStore{spreads: []domain.Spread{
		oldSpread("old-1", 40*24*time.Hour),
		oldSpread("old-2", 35*24*time.Hour),
		oldSpread("fresh", time.Hour),
	}}

	a := NewArchiver(writer, store, 30, slog.New(slog.DiscardHandler))
	moved, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), moved)

	// The fresh row survives in the store.
	require.Len(t, store.spreads, 1)
	assert.Equal(t, "fresh", store.spreads[0].ID)

	// The uploaded object decodes back line by line.
	require.Len(t, writer.objects, 1)
	for _, data := range writer.objects {
		var restored []domain.Spread
		scanner := bufio.NewScanner(bytes.NewReader(data))
		for scanner.Scan() {
			var sp domain.Spread
			require.NoError(t, json.Unmarshal(scanner.Bytes(), &sp))
			restored = append(restored, sp)
		}
		require.Len(t, restored, 2)
		assert.Equal(t, "old-1", restored[0].ID)
		assert.Equal(t, domain.PairParadexBackpack, restored[0].Pair)
		assert.Equal(t, 3.0, restored[0].Difference)
	}
}

func TestArchivePathDistinctPerPass(t *testing.T) {
	// Two passes within the same month must land on different objects so
	// the second pass cannot overwrite rows the first one already deleted.
	first := time.Date(2026, 9, 1, 6, 0, 0, 0, time.UTC)
	second := first.Add(6 * time.Hour)

	assert.Equal(t, "archive/spreads/2026-09/20260901T060000Z.jsonl", archivePath(first))
	assert.NotEqual(t, archivePath(first), archivePath(second))
}

func TestArchiverSameMonthPassesDoNotOverwrite(t *testing.T) {
	writer := newMemWriter()
	store := &memStore{spreads: []domain.Spread{oldSpread("old-1", 40*24*time.Hour)}}
	a := NewArchiver(writer, store, 30, slog.New(slog.DiscardHandler))

	clock := time.Now()
	a.now = func() time.Time { return clock }

	moved, err := a.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(1), moved)

	// Six hours later, within the same calendar month.
	store.spreads = []domain.Spread{oldSpread("old-2", 35*24*time.Hour)}
	clock = clock.Add(6 * time.Hour)

	moved, err = a.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(1), moved)

	assert.Len(t, writer.objects, 2, "each pass must write its own object")
}

func TestArchiverNothingToArchive(t *testing.T) {
	writer := newMemWriter()
	store := &memStore{spreads: []domain.Spread{oldSpread("fresh", time.Hour)}}

	a := NewArchiver(writer, store, 30, slog.New(slog.DiscardHandler))
	moved, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, moved)
	assert.Empty(t, writer.objects)
	assert.Len(t, store.spreads, 1)
}

func TestArchiverKeepsRowsOnUploadFailure(t *testing.T) {
	writer := newMemWriter()
	writer.failPut = true
	store := &memStore{spreads: []domain.Spread{oldSpread("old", 40*24*time.Hour)}}

	a := NewArchiver(writer, store, 30, slog.New(slog.DiscardHandler))
	_, err := a.Run(context.Background())
	require.Error(t, err)
	assert.Len(t, store.spreads, 1, "rows must not be deleted when the upload failed")
}
