// Package store caches price series in a sqlite database.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/etnz/dca"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Open opens, or creates, the sqlite database at path.
//
// The database only holds cached data, so it trades durability for speed.
func Open(path string) (*sql.DB, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve database path to absolute: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	connStr := absPath + "?_pragma=journal_mode(WAL)"
	connStr += "&_pragma=synchronous(OFF)"
	connStr += "&_pragma=temp_store(MEMORY)"
	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// a single writer avoids SQLITE_BUSY
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func migrate(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS prices (
		ticker TEXT NOT NULL,
		date TEXT NOT NULL,
		close REAL NOT NULL,
		prev_close REAL NOT NULL,
		fee REAL NOT NULL,
		PRIMARY KEY (ticker, date)
	);

	CREATE TABLE IF NOT EXISTS coverage (
		ticker TEXT PRIMARY KEY,
		from_date TEXT NOT NULL,
		to_date TEXT NOT NULL,
		fetched_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("migrate sqlite: %w", err)
	}
	return nil
}

// Cache is a dca.MarketData serving prices from sqlite, and fetching from
// Upstream the ranges it does not cover yet.
type Cache struct {
	Upstream dca.MarketData

	db  *sql.DB
	log zerolog.Logger
}

// NewCache returns a cache of upstream stored in db.
func NewCache(db *sql.DB, upstream dca.MarketData, log zerolog.Logger) *Cache {
	return &Cache{
		Upstream: upstream,
		db:       db,
		log:      log.With().Str("component", "store").Logger(),
	}
}

// Prices implements dca.MarketData.
func (c *Cache) Prices(ctx context.Context, ticker string, r dca.Range) (dca.PriceSeries, error) {
	covered, ok, err := c.coverage(ctx, ticker)
	if err != nil {
		return nil, err
	}
	if ok && covered.Contains(r.From) && covered.Contains(r.To) {
		c.log.Debug().Str("ticker", ticker).Stringer("range", r).Msg("cache hit")
		return c.load(ctx, ticker, r)
	}

	// fetch the union so that the coverage stays one range
	want := r
	if ok {
		want = dca.NewRange(minDate(r.From, covered.From), maxDate(r.To, covered.To))
	}
	c.log.Debug().Str("ticker", ticker).Stringer("range", want).Msg("cache miss")
	s, err := c.Upstream.Prices(ctx, ticker, want)
	if err != nil {
		return nil, err
	}
	// the future is not covered yet
	if today := dca.Today(); want.To.After(today) {
		want.To = today
	}
	if err := c.save(ctx, ticker, want, s); err != nil {
		c.log.Warn().Err(err).Str("ticker", ticker).Msg("cache write error (ignored)")
	}
	return s.Between(r), nil
}

func (c *Cache) coverage(ctx context.Context, ticker string) (dca.Range, bool, error) {
	var from, to string
	err := c.db.QueryRowContext(ctx, `SELECT from_date, to_date FROM coverage WHERE ticker = ?`, ticker).Scan(&from, &to)
	if err == sql.ErrNoRows {
		return dca.Range{}, false, nil
	}
	if err != nil {
		return dca.Range{}, false, fmt.Errorf("query coverage: %w", err)
	}
	f, err := dca.ParseDate(from)
	if err != nil {
		return dca.Range{}, false, err
	}
	t, err := dca.ParseDate(to)
	if err != nil {
		return dca.Range{}, false, err
	}
	return dca.Range{From: f, To: t}, true, nil
}

func (c *Cache) load(ctx context.Context, ticker string, r dca.Range) (dca.PriceSeries, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT date, close, prev_close, fee
		FROM prices WHERE ticker = ? AND date >= ? AND date <= ?
		ORDER BY date ASC`, ticker, r.From.String(), r.To.String())
	if err != nil {
		return nil, fmt.Errorf("query prices: %w", err)
	}
	defer rows.Close()

	var s dca.PriceSeries
	for rows.Next() {
		var day string
		var p dca.PriceRecord
		if err := rows.Scan(&day, &p.Close, &p.PrevClose, &p.Fee); err != nil {
			return nil, fmt.Errorf("scan price: %w", err)
		}
		if p.Date, err = dca.ParseDate(day); err != nil {
			return nil, err
		}
		s = append(s, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate prices: %w", err)
	}
	return s, nil
}

// save replaces the stored series of ticker.
func (c *Cache) save(ctx context.Context, ticker string, covered dca.Range, s dca.PriceSeries) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM prices WHERE ticker = ?`, ticker); err != nil {
		return fmt.Errorf("delete prices: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO prices(ticker, date, close, prev_close, fee) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, p := range s {
		if _, err := stmt.ExecContext(ctx, ticker, p.Date.String(), p.Close, p.PrevClose, p.Fee); err != nil {
			return fmt.Errorf("insert price: %w", err)
		}
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO coverage(ticker, from_date, to_date, fetched_at) VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(ticker) DO UPDATE SET from_date = excluded.from_date, to_date = excluded.to_date, fetched_at = excluded.fetched_at`,
		ticker, covered.From.String(), covered.To.String()); err != nil {
		return fmt.Errorf("update coverage: %w", err)
	}
	return tx.Commit()
}

func minDate(a, b dca.Date) dca.Date {
	if a.Before(b) {
		return a
	}
	return b
}

func maxDate(a, b dca.Date) dca.Date {
	if a.After(b) {
		return a
	}
	return b
}
