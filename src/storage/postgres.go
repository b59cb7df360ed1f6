package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/annalisadamore06-jpg/es-trading-dashboard/src/logger"
	"github.com/annalisadamore06-jpg/es-trading-dashboard/src/models"

	_ "github.com/lib/pq"
)

// -----------------------------------------------------------------------------
// PostgresDB variant of the tick/snapshot mirror. Each deployment writes into
// a schema named after its executable so several dashboards can share one
// database server.
// -----------------------------------------------------------------------------

type PostgresDB struct {
	Config *models.MConfig
	DB     *sql.DB
	Schema string
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewPostgresDB(cfg *models.MConfig, log *logger.Logger) (*PostgresDB, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable name: %w", err)
	}
	name := filepath.Base(exe)
	name = strings.TrimSuffix(name, filepath.Ext(name))

	return &PostgresDB{
		Config: cfg,
		Schema: name,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) Initialize() error {
	dsn := d.Config.Storage.DBConnectionString
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return err
	}

	if err := db.Ping(); err != nil {
		return err
	}

	d.DB = db

	if _, err := d.DB.Exec(fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS "%s"`, d.Schema)); err != nil {
		return fmt.Errorf("failed to create schema %s: %w", d.Schema, err)
	}

	if err := d.createTables(); err != nil {
		return err
	}

	d.Logger.Info("PostgresDB initialized successfully (Schema: %s)", d.Schema)
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) createTables() error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS "%s"."ticks" (
			timestamp TEXT,
			mode TEXT,
			future_last DOUBLE PRECISION,
			future_vwap DOUBLE PRECISION,
			index_last DOUBLE PRECISION,
			index_open DOUBLE PRECISION,
			spread DOUBLE PRECISION,
			iv_daily_pct DOUBLE PRECISION,
			iv_straddle_pct DOUBLE PRECISION,
			straddle_bid DOUBLE PRECISION,
			straddle_mid DOUBLE PRECISION,
			straddle_ask DOUBLE PRECISION,
			straddle_spread DOUBLE PRECISION,
			dvs_pct DOUBLE PRECISION,
			put_call_ratio DOUBLE PRECISION
		);
	`, d.Schema)
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create ticks: %w", err)
	}

	query = fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS "%s"."snapshots" (
			timestamp TEXT,
			event_label TEXT,
			date TEXT,
			anchor_label TEXT,
			anchor_value DOUBLE PRECISION,
			index_open DOUBLE PRECISION,
			spread DOUBLE PRECISION,
			iv_daily_pct DOUBLE PRECISION,
			iv_straddle_pct DOUBLE PRECISION,
			fib_r1_up DOUBLE PRECISION,
			fib_r2_up DOUBLE PRECISION,
			r1_up DOUBLE PRECISION,
			r2_up DOUBLE PRECISION,
			center DOUBLE PRECISION,
			r2_dn DOUBLE PRECISION,
			r1_dn DOUBLE PRECISION,
			fib_r2_dn DOUBLE PRECISION,
			fib_r1_dn DOUBLE PRECISION,
			PRIMARY KEY (date, event_label)
		);
	`, d.Schema)
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create snapshots: %w", err)
	}

	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) SaveTicks(ticks []models.MTickRecord) error {
	if len(ticks) == 0 {
		return nil
	}

	tx, err := d.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := fmt.Sprintf(`
		INSERT INTO "%s"."ticks" (timestamp, mode, future_last, future_vwap, index_last, index_open,
			spread, iv_daily_pct, iv_straddle_pct, straddle_bid, straddle_mid, straddle_ask,
			straddle_spread, dvs_pct, put_call_ratio)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`, d.Schema)
	stmt, err := tx.Prepare(query)
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

func (d *PostgresDB) SaveSnapshot(snap models.MSnapshotRecord) error {
	tx, err := d.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := fmt.Sprintf(`
		INSERT INTO "%s"."snapshots" (timestamp, event_label, date, anchor_label, anchor_value,
			index_open, spread, iv_daily_pct, iv_straddle_pct,
			fib_r1_up, fib_r2_up, r1_up, r2_up, center, r2_dn, r1_dn, fib_r2_dn, fib_r1_dn)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		ON CONFLICT (date, event_label) DO NOTHING
	`, d.Schema)
	stmt, err := tx.Prepare(query)
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

func (d *PostgresDB) CleanupOldData() error {
	retentionDays := d.Config.Storage.RetentionDays
	if retentionDays <= 0 {
		return nil
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays).Format("2006-01-02 15:04:05")
	d.Logger.Info("Cleaning up data older than %d days (timestamp < %s)...", retentionDays, cutoff)

	if _, err := d.DB.Exec(fmt.Sprintf(`DELETE FROM "%s"."ticks" WHERE timestamp < $1`, d.Schema), cutoff); err != nil {
		d.Logger.Error("Cleanup ticks error: %v", err)
	}
	if _, err := d.DB.Exec(fmt.Sprintf(`DELETE FROM "%s"."snapshots" WHERE timestamp < $1`, d.Schema), cutoff); err != nil {
		d.Logger.Error("Cleanup snapshots error: %v", err)
	}

	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
