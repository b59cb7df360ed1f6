package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/annalisadamore06-jpg/es-trading-dashboard/src/logger"
	"github.com/annalisadamore06-jpg/es-trading-dashboard/src/models"

	_ "modernc.org/sqlite"
)

// -----------------------------------------------------------------------------
// AsyncSQLiteDB mirrors the CSV logs into a queryable store. Unlike the CSV
// files it supports retention cleanup, so the database can be kept small while
// the flat files grow forever.
// -----------------------------------------------------------------------------

type AsyncSQLiteDB struct {
	Config *models.MConfig
	DB     *sql.DB
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewAsyncSQLiteDB(cfg *models.MConfig, log *logger.Logger) (*AsyncSQLiteDB, error) {
	return &AsyncSQLiteDB{
		Config: cfg,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) Initialize() error {
	dsn := d.Config.Storage.DBPath

	// Open DB
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return err
	}

	if err := db.Ping(); err != nil {
		return err
	}

	d.DB = db

	// PRAGMA optimizations
	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		d.Logger.Warning("Failed to set WAL mode: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL;"); err != nil {
		d.Logger.Warning("Failed to set synchronous mode: %v", err)
	}

	return d.createTables()
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) createTables() error {
	// Append-only history, so tables survive restarts.
	// SQLite types: REAL for float64, TEXT for string
	query := `
		CREATE TABLE IF NOT EXISTS ticks (
			timestamp TEXT,
			mode TEXT,
			future_last REAL,
			future_vwap REAL,
			index_last REAL,
			index_open REAL,
			spread REAL,
			iv_daily_pct REAL,
			iv_straddle_pct REAL,
			straddle_bid REAL,
			straddle_mid REAL,
			straddle_ask REAL,
			straddle_spread REAL,
			dvs_pct REAL,
			put_call_ratio REAL
		);
	`
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create ticks: %w", err)
	}

	query = `
		CREATE TABLE IF NOT EXISTS snapshots (
			timestamp TEXT,
			event_label TEXT,
			date TEXT,
			anchor_label TEXT,
			anchor_value REAL,
			index_open REAL,
			spread REAL,
			iv_daily_pct REAL,
			iv_straddle_pct REAL,
			fib_r1_up REAL,
			fib_r2_up REAL,
			r1_up REAL,
			r2_up REAL,
			center REAL,
			r2_dn REAL,
			r1_dn REAL,
			fib_r2_dn REAL,
			fib_r1_dn REAL,
			PRIMARY KEY (date, event_label)
		);
	`
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create snapshots: %w", err)
	}

	return nil
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) SaveTicks(ticks []models.MTickRecord) error {
	if len(ticks) == 0 {
		return nil
	}

	tx, err := d.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO ticks (timestamp, mode, future_last, future_vwap, index_last, index_open, spread,
			iv_daily_pct, iv_straddle_pct, straddle_bid, straddle_mid, straddle_ask, straddle_spread,
			dvs_pct, put_call_ratio)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, t := range ticks {
		_, err := stmt.Exec(t.Timestamp, string(t.Mode), t.FutureLast, t.FutureVWAP, t.IndexLast,
			t.IndexOpen, t.Spread, t.IVDailyPct, t.IVStraddlePct, t.StraddleBid, t.StraddleMid,
			t.StraddleAsk, t.StraddleSprd, t.DVSPct, t.PutCallRatio)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) SaveSnapshot(snap models.MSnapshotRecord) error {
	tx, err := d.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO snapshots (timestamp, event_label, date, anchor_label, anchor_value, index_open,
			spread, iv_daily_pct, iv_straddle_pct,
			fib_r1_up, fib_r2_up, r1_up, r2_up, center, r2_dn, r1_dn, fib_r2_dn, fib_r1_dn)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (date, event_label) DO NOTHING
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	args := []interface{}{snap.Timestamp, snap.EventLabel, snap.Date, string(snap.AnchorLabel),
		snap.AnchorValue, snap.IndexOpen, snap.Spread, snap.IVDailyPct, snap.IVStraddlePct}
	for i := 0; i < models.NumLevels; i++ {
		args = append(args, snap.Ladder.Level(i))
	}

	if _, err := stmt.Exec(args...); err != nil {
		return err
	}

	return tx.Commit()
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) CleanupOldData() error {
	retentionDays := d.Config.Storage.RetentionDays
	if retentionDays <= 0 {
		return nil
	}

	// Timestamps are stored as "YYYY-MM-DD HH:MM:SS" so lexicographic
	// comparison matches chronological order.
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays).Format("2006-01-02 15:04:05")
	d.Logger.Info("Cleaning up data older than %d days (timestamp < %s)...", retentionDays, cutoff)

	if _, err := d.DB.Exec("DELETE FROM ticks WHERE timestamp < ?", cutoff); err != nil {
		d.Logger.Error("Cleanup ticks error: %v", err)
	}
	if _, err := d.DB.Exec("DELETE FROM snapshots WHERE timestamp < ?", cutoff); err != nil {
		d.Logger.Error("Cleanup snapshots error: %v", err)
	}

	d.Logger.Info("Cleanup completed")
	return nil
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
