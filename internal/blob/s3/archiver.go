package s3blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/alanyoungcy/spreadwatch/internal/domain"
)

// multipartThreshold is the payload size above which an archive upload
// switches to the concurrent multipart path.
const multipartThreshold = 8 * 1024 * 1024

// SpreadArchiveStore is the slice of the spread store the archiver needs:
// drain old rows out and delete them once the upload is confirmed.
type SpreadArchiveStore interface {
	ListBefore(ctx context.Context, before time.Time) ([]domain.Spread, error)
	DeleteBefore(ctx context.Context, before time.Time) (int64, error)
}

// MultipartWriter is implemented by blob writers that support multipart
// uploads for large payloads.
type MultipartWriter interface {
	PutMultipart(ctx context.Context, path string, data io.Reader, partSize int64) error
}

// Archiver moves spreads older than the retention window from PostgreSQL to
// JSONL objects in cold storage, then deletes the archived rows. Rows are
// only deleted after the upload succeeds; a failed upload leaves them in
// place for the next run.
type Archiver struct {
	writer        domain.BlobWriter
	store         SpreadArchiveStore
	retentionDays int
	now           func() time.Time
	logger        *slog.Logger
}

// NewArchiver creates an Archiver.
func NewArchiver(writer domain.BlobWriter, store SpreadArchiveStore, retentionDays int, logger *slog.Logger) *Archiver {
	return &Archiver{
		writer:        writer,
		store:         store,
		retentionDays: retentionDays,
		now:           time.Now,
		logger:        logger.With(slog.String("component", "archiver")),
	}
}

// Run executes one archive pass and returns the number of rows moved.
func (a *Archiver) Run(ctx context.Context) (int64, error) {
	cutoff := a.now().UTC().Add(-time.Duration(a.retentionDays) * 24 * time.Hour)

	spreads, err := a.store.ListBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("s3blob: archive query: %w", err)
	}
	if len(spreads) == 0 {
		return 0, nil
	}

	buf, err := marshalJSONL(spreads)
	if err != nil {
		return 0, fmt.Errorf("s3blob: archive marshal: %w", err)
	}

	path := archivePath(cutoff)
	if err := a.upload(ctx, path, buf); err != nil {
		return 0, fmt.Errorf("s3blob: archive upload: %w", err)
	}

	deleted, err := a.store.DeleteBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("s3blob: archive delete: %w", err)
	}

	a.logger.Info("archived spreads",
		slog.String("path", path),
		slog.Int("archived", len(spreads)),
		slog.Int64("deleted", deleted),
	)
	return deleted, nil
}

// RunLoop runs archive passes on the given interval until ctx is cancelled.
// Failed passes are logged and retried on the next tick.
func (a *Archiver) RunLoop(ctx context.Context, interval time.Duration) error {
	a.logger.Info("archiver starting",
		slog.Duration("interval", interval),
		slog.Int("retention_days", a.retentionDays),
	)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.logger.Info("archiver stopped")
			return ctx.Err()
		case <-ticker.C:
			if _, err := a.Run(ctx); err != nil {
				a.logger.Error("archive run failed", slog.String("error", err.Error()))
			}
		}
	}
}

func (a *Archiver) upload(ctx context.Context, path string, buf []byte) error {
	if mw, ok := a.writer.(MultipartWriter); ok && len(buf) > multipartThreshold {
		return mw.PutMultipart(ctx, path, bytes.NewReader(buf), int64(len(buf)/4))
	}
	return a.writer.Put(ctx, path, bytes.NewReader(buf), "application/x-ndjson")
}

// archivePath builds the object key for an archive file. Keys are
// partitioned by the year-month of the cutoff and carry the cutoff instant
// so successive passes in the same month never overwrite each other, e.g.
// archive/spreads/2026-09/20260901T060000Z.jsonl.
func archivePath(cutoff time.Time) string {
	return fmt.Sprintf("archive/spreads/%s/%s.jsonl",
		cutoff.Format("2006-01"), cutoff.Format("20060102T150405Z"))
}

// marshalJSONL serialises records as newline-delimited JSON.
func marshalJSONL(spreads []domain.Spread) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for i := range spreads {
		if err := enc.Encode(&spreads[i]); err != nil {
			return nil, fmt.Errorf("encode spread %s: %w", spreads[i].ID, err)
		}
	}
	return buf.Bytes(), nil
}
