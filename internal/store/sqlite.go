package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"CupSentinel/internal/model"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// SQLiteStore persists samples to a SQLite database.
type SQLiteStore struct {
	db  *sql.DB
	mu  sync.Mutex
	log zerolog.Logger
}

// NewSQLiteStore opens (or creates) the database and runs migrations.
func NewSQLiteStore(dbPath string, log zerolog.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets the API read while the scheduler writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db, log: log.With().Str("component", "sqlite_store").Logger()}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	s.log.Info().Str("path", dbPath).Msg("sqlite store opened")
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS prices (
			symbol    TEXT    NOT NULL,
			ts        INTEGER NOT NULL,
			price     REAL    NOT NULL,
			PRIMARY KEY (symbol, ts)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_prices_ts ON prices(ts)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:30], err)
		}
	}
	return nil
}

func (s *SQLiteStore) Append(ctx context.Context, points ...model.PricePoint) error {
	if len(points) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO prices (symbol, ts, price) VALUES (?,?,?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range points {
		if _, err := stmt.ExecContext(ctx, p.Symbol, p.Time.UnixMilli(), p.Price); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert %s: %w", p.Symbol, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) Range(ctx context.Context, symbol string, from, to time.Time) ([]model.PricePoint, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT ts, price FROM prices WHERE symbol = ? AND ts >= ? AND ts <= ? ORDER BY ts ASC`,
		symbol, from.UnixMilli(), to.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("query prices: %w", err)
	}
	defer rows.Close()

	var out []model.PricePoint
	for rows.Next() {
		var ts int64
		var price float64
		if err := rows.Scan(&ts, &price); err != nil {
			return nil, fmt.Errorf("scan price: %w", err)
		}
		out = append(out, model.PricePoint{Symbol: symbol, Time: time.UnixMilli(ts).UTC(), Price: price})
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Trim(ctx context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM prices WHERE ts < ?`, before.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("trim prices: %w", err)
	}
	return res.RowsAffected()
}

func (s *SQLiteStore) Close() error {
	s.log.Info().Msg("closing sqlite store")
	return s.db.Close()
}
