package storage

import (
	"path/filepath"
	"testing"

	"github.com/annalisadamore06-jpg/es-trading-dashboard/src/logger"
	"github.com/annalisadamore06-jpg/es-trading-dashboard/src/models"
)

// -----------------------------------------------------------------------------

func openTestDB(t *testing.T) *AsyncSQLiteDB {
	t.Helper()

	cfg := &models.MConfig{}
	cfg.Storage.DBPath = filepath.Join(t.TempDir(), "test.db")
	cfg.Storage.RetentionDays = 30

	db, err := NewAsyncSQLiteDB(cfg, logger.NewLogger("TEST"))
	if err != nil {
		t.Fatalf("NewAsyncSQLiteDB: %v", err)
	}
	if err := db.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testSnapshot() models.MSnapshotRecord {
	ladder := models.MRangeLadder{Valid: true}
	for i := 0; i < models.NumLevels; i++ {
		ladder.Levels[i] = 4100.0 - float64(i)
	}
	return models.MSnapshotRecord{
		Timestamp:     "2026-01-05 15:30:00",
		EventLabel:    "SPX_15:30",
		Date:          "20260105",
		AnchorLabel:   models.AnchorOpen,
		AnchorValue:   models.F(4030),
		IndexOpen:     models.F(4030),
		Spread:        models.F(25),
		IVDailyPct:    models.F(0.95),
		IVStraddlePct: models.F(1.1),
		Ladder:        ladder,
	}
}

// -----------------------------------------------------------------------------

func TestSQLiteSnapshotLadderColumns(t *testing.T) {
	db := openTestDB(t)

	snap := testSnapshot()
	if err := db.SaveSnapshot(snap); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}

	// The stored ladder columns carry the same names and order as the CSV
	// header, so the two mirrors stay queryable with one vocabulary.
	row := db.DB.QueryRow(`
		SELECT fib_r1_up, r1_up, center, r2_dn, fib_r1_dn
		FROM snapshots WHERE event_label = ?`, snap.EventLabel)

	var fibR1Up, r1Up, center, r2Dn, fibR1Dn float64
	if err := row.Scan(&fibR1Up, &r1Up, &center, &r2Dn, &fibR1Dn); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if fibR1Up != snap.Ladder.Levels[models.LvlFiboR1Up] {
		t.Fatalf("fib_r1_up = %v, want %v", fibR1Up, snap.Ladder.Levels[models.LvlFiboR1Up])
	}
	if r1Up != snap.Ladder.Levels[models.LvlR1Up] {
		t.Fatalf("r1_up = %v, want %v", r1Up, snap.Ladder.Levels[models.LvlR1Up])
	}
	if center != snap.Ladder.Levels[models.LvlCenter] {
		t.Fatalf("center = %v, want %v", center, snap.Ladder.Levels[models.LvlCenter])
	}
	if r2Dn != snap.Ladder.Levels[models.LvlR2Down] {
		t.Fatalf("r2_dn = %v, want %v", r2Dn, snap.Ladder.Levels[models.LvlR2Down])
	}
	if fibR1Dn != snap.Ladder.Levels[models.LvlFiboR1Down] {
		t.Fatalf("fib_r1_dn = %v, want %v", fibR1Dn, snap.Ladder.Levels[models.LvlFiboR1Down])
	}
}

func TestSQLiteSnapshotDuplicateIgnored(t *testing.T) {
	db := openTestDB(t)

	snap := testSnapshot()
	if err := db.SaveSnapshot(snap); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	// Same (date, event_label) again: the first row wins.
	snap.AnchorValue = models.F(9999)
	if err := db.SaveSnapshot(snap); err != nil {
		t.Fatalf("SaveSnapshot duplicate: %v", err)
	}

	var count int
	var anchor float64
	row := db.DB.QueryRow(`SELECT COUNT(*), MAX(anchor_value) FROM snapshots`)
	if err := row.Scan(&count, &anchor); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if count != 1 {
		t.Fatalf("snapshot rows = %d, want 1", count)
	}
	if anchor != 4030 {
		t.Fatalf("anchor_value = %v, want the original 4030", anchor)
	}
}

func TestSQLiteSaveTicks(t *testing.T) {
	db := openTestDB(t)

	ticks := []models.MTickRecord{
		{Timestamp: "2026-01-05 10:00:00", Mode: models.ModeMorning, FutureLast: models.F(4052)},
		{Timestamp: "2026-01-05 10:00:10", Mode: models.ModeMorning, FutureLast: models.F(4053)},
	}
	if err := db.SaveTicks(ticks); err != nil {
		t.Fatalf("SaveTicks: %v", err)
	}

	var count int
	if err := db.DB.QueryRow(`SELECT COUNT(*) FROM ticks`).Scan(&count); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if count != 2 {
		t.Fatalf("tick rows = %d, want 2", count)
	}
}
