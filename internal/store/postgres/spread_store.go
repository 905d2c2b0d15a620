package postgres

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alanyoungcy/spreadwatch/internal/domain"
)

// SpreadStore implements domain.SpreadStore using PostgreSQL.
type SpreadStore struct {
	pool *pgxpool.Pool
}

// NewSpreadStore creates a SpreadStore backed by the given connection pool.
func NewSpreadStore(pool *pgxpool.Pool) *SpreadStore {
	return &SpreadStore{pool: pool}
}

const spreadSelectCols = `id, symbol, signal, exchange_pair,
	paradex_price, backpack_price, hyperliquid_price, difference,
	paradex_raw_bid, paradex_raw_ask, paradex_contract_size, created`

const spreadInsert = `
	INSERT INTO spreads (
		id, symbol, signal, exchange_pair, exchange1, exchange2,
		paradex_price, backpack_price, hyperliquid_price, difference,
		paradex_raw_bid, paradex_raw_ask, paradex_contract_size, created
	) VALUES (
		$1, $2, $3, $4, $5, $6,
		$7, $8, $9, $10,
		$11, $12, $13, $14
	)`

// InsertBatch persists one polling cycle's spreads in a single batched
// round trip. An empty batch is a no-op success. Each spread is assigned
// its ID and presentation difference in place, so the caller's slice
// carries the persisted values afterwards.
func (s *SpreadStore) InsertBatch(ctx context.Context, spreads []domain.Spread) error {
	if len(spreads) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for i := range spreads {
		sp := &spreads[i]
		if sp.ID == "" {
			sp.ID = uuid.NewString()
		}
		sp.Difference = sp.DerivedDifference()

		var rawBid, rawAsk, contractSize *float64
		if sp.Raw != nil {
			rawBid, rawAsk, contractSize = &sp.Raw.Bid, &sp.Raw.Ask, &sp.Raw.ContractSize
		}

		batch.Queue(spreadInsert,
			sp.ID, sp.Symbol, string(sp.Direction), sp.Pair.String(),
			string(sp.Pair.First), string(sp.Pair.Second),
			sp.ParadexPrice, sp.BackpackPrice, sp.HyperliquidPrice, sp.Difference,
			rawBid, rawAsk, contractSize, sp.CreatedAt,
		)
	}

	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()

	for i := range spreads {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("postgres: insert spread %s: %w", spreads[i].ID, err)
		}
	}
	return nil
}

// List returns spreads matching the filter, newest first.
func (s *SpreadStore) List(ctx context.Context, filter domain.SpreadFilter) ([]domain.Spread, error) {
	query := `SELECT ` + spreadSelectCols + ` FROM spreads WHERE 1=1`
	var args []any

	if filter.Symbol != "" {
		args = append(args, filter.Symbol)
		query += ` AND symbol = $` + strconv.Itoa(len(args))
	}
	if filter.Pair != "" {
		args = append(args, filter.Pair)
		query += ` AND exchange_pair = $` + strconv.Itoa(len(args))
	}
	if filter.Since != nil {
		args = append(args, filter.Since.Unix())
		query += ` AND created > $` + strconv.Itoa(len(args))
	}
	if filter.Until != nil {
		args = append(args, filter.Until.Unix())
		query += ` AND created <= $` + strconv.Itoa(len(args))
	}

	query += ` ORDER BY created DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += ` LIMIT $` + strconv.Itoa(len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += ` OFFSET $` + strconv.Itoa(len(args))
	}

	return s.query(ctx, query, args...)
}

// ListRecent returns the newest spreads.
func (s *SpreadStore) ListRecent(ctx context.Context, limit int) ([]domain.Spread, error) {
	query := `SELECT ` + spreadSelectCols + ` FROM spreads ORDER BY created DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}
	return s.query(ctx, query, args...)
}

// ListLargest returns the spreads with the biggest percentage difference
// since the given time.
func (s *SpreadStore) ListLargest(ctx context.Context, since time.Time, limit int) ([]domain.Spread, error) {
	query := `SELECT ` + spreadSelectCols + ` FROM spreads
		WHERE created > $1 ORDER BY difference DESC`
	args := []any{since.Unix()}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}
	return s.query(ctx, query, args...)
}

// ListBefore returns every spread created before the given time, oldest
// first. The archiver drains these into cold storage.
func (s *SpreadStore) ListBefore(ctx context.Context, before time.Time) ([]domain.Spread, error) {
	query := `SELECT ` + spreadSelectCols + ` FROM spreads
		WHERE created < $1 ORDER BY created ASC`
	return s.query(ctx, query, before.Unix())
}

// DeleteBefore removes every spread created before the given time and
// returns the number of deleted rows.
func (s *SpreadStore) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM spreads WHERE created < $1`, before.Unix())
	if err != nil {
		return 0, fmt.Errorf("postgres: delete spreads before %d: %w", before.Unix(), err)
	}
	return tag.RowsAffected(), nil
}

func (s *SpreadStore) query(ctx context.Context, query string, args ...any) ([]domain.Spread, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: query spreads: %w", err)
	}
	defer rows.Close()

	var spreads []domain.Spread
	for rows.Next() {
		sp, err := scanSpread(rows)
		if err != nil {
			return nil, err
		}
		spreads = append(spreads, sp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate spreads: %w", err)
	}
	return spreads, nil
}

func scanSpread(rows pgx.Rows) (domain.Spread, error) {
	var (
		sp                       domain.Spread
		direction, pair          string
		rawBid, rawAsk, contract *float64
	)
	if err := rows.Scan(
		&sp.ID, &sp.Symbol, &direction, &pair,
		&sp.ParadexPrice, &sp.BackpackPrice, &sp.HyperliquidPrice, &sp.Difference,
		&rawBid, &rawAsk, &contract, &sp.CreatedAt,
	); err != nil {
		return domain.Spread{}, fmt.Errorf("postgres: scan spread: %w", err)
	}

	sp.Direction = domain.Direction(direction)
	if p, ok := domain.ParseVenuePair(pair); ok {
		sp.Pair = p
	}
	if rawBid != nil && rawAsk != nil {
		raw := domain.RawPricing{Bid: *rawBid, Ask: *rawAsk}
		if contract != nil {
			raw.ContractSize = *contract
		}
		sp.Raw = &raw
	}
	return sp, nil
}
