// Package sqlite persists simulated trades and scan rankings so past runs
// can be inspected after the fact.
package sqlite

import (
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	"stocksignalsv1/internal/model"

	_ "github.com/mattn/go-sqlite3"
)

// WriterConfig configures the SQLite writer.
type WriterConfig struct {
	DBPath string // path to SQLite database file, e.g. "data/signals.db"
}

// Writer is a single-connection SQLite writer with transaction batching.
type Writer struct {
	db *sql.DB
}

// DB returns the underlying sql.DB for health checks.
func (w *Writer) DB() *sql.DB { return w.db }

// New creates a new SQLite Writer, initializes the database with WAL mode and schema.
func New(cfg WriterConfig) (*Writer, error) {
	db, err := sql.Open("sqlite3", cfg.DBPath+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}

	// Set connection pool for single-writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := createSchema(db); err != nil {
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}

	log.Printf("[sqlite] opened database at %s", cfg.DBPath)
	return &Writer{db: db}, nil
}

func createSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS trades (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			ticker      TEXT    NOT NULL,
			direction   TEXT    NOT NULL,
			entry_price REAL    NOT NULL,
			exit_price  REAL    NOT NULL,
			entry_ts    INTEGER NOT NULL,
			exit_ts     INTEGER NOT NULL,
			exit_reason TEXT    NOT NULL,
			return_pct  REAL    NOT NULL,
			run_ts      INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_trades_ticker ON trades (ticker, run_ts);

		CREATE TABLE IF NOT EXISTS rankings (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			run_ts      INTEGER NOT NULL,
			rank        INTEGER NOT NULL,
			ticker      TEXT    NOT NULL,
			operation   TEXT    NOT NULL,
			price       REAL    NOT NULL,
			agg_score   REAL    NOT NULL,
			confidence  REAL    NOT NULL,
			rsi         REAL    NOT NULL,
			win_rate    REAL    NOT NULL,
			avg_return  REAL    NOT NULL,
			stop_loss   REAL    NOT NULL,
			stop_gain   REAL    NOT NULL,
			messages    TEXT    NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_rankings_run ON rankings (run_ts);
	`)
	return err
}

// SaveTrades inserts a backtest run's trade ledger in a single transaction.
func (w *Writer) SaveTrades(ticker string, trades []model.Trade, runTS time.Time) error {
	if len(trades) == 0 {
		return nil
	}

	tx, err := w.db.Begin()
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
		INSERT INTO trades (ticker, direction, entry_price, exit_price, entry_ts, exit_ts, exit_reason, return_pct, run_ts)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, t := range trades {
		_, err := stmt.Exec(ticker, string(t.Direction), t.EntryPrice, t.ExitPrice,
			t.EntryTime.Unix(), t.ExitTime.Unix(), string(t.ExitReason), t.ReturnPct, runTS.Unix())
		if err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}

// SaveRankings inserts a full scan ranking in a single transaction. Rank is
// the 1-based position in the sorted opportunity list.
func (w *Writer) SaveRankings(opps []model.Opportunity, runTS time.Time) error {
	if len(opps) == 0 {
		return nil
	}

	tx, err := w.db.Begin()
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
		INSERT INTO rankings (run_ts, rank, ticker, operation, price, agg_score, confidence, rsi, win_rate, avg_return, stop_loss, stop_gain, messages)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for i, o := range opps {
		_, err := stmt.Exec(runTS.Unix(), i+1, o.Ticker, string(o.Operation), o.Price,
			o.AggregateScore, o.Confidence, o.RSI, o.WinRate, o.AvgReturn,
			o.StopLoss, o.StopGain, strings.Join(o.Messages, "\n"))
		if err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}

// LastRunTS returns the timestamp of the most recent scan run stored, or zero
// time if none exist.
func (w *Writer) LastRunTS() (time.Time, error) {
	var ts sql.NullInt64
	err := w.db.QueryRow(`SELECT MAX(run_ts) FROM rankings`).Scan(&ts)
	if err != nil {
		return time.Time{}, err
	}
	if !ts.Valid {
		return time.Time{}, nil
	}
	return time.Unix(ts.Int64, 0), nil
}

// Close closes the database.
func (w *Writer) Close() error {
	return w.db.Close()
}
