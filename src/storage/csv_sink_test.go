package storage

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/annalisadamore06-jpg/es-trading-dashboard/src/logger"
	"github.com/annalisadamore06-jpg/es-trading-dashboard/src/models"
)

func testSinkConfig(dir string) *models.MConfig {
	cfg := &models.MConfig{}
	cfg.Storage.TickCSVPath = filepath.Join(dir, "ticks.csv")
	cfg.Storage.SnapshotCSVPath = filepath.Join(dir, "snaps.csv")
	return cfg
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return rows
}

func TestCSVSinkHeaderOnCreate(t *testing.T) {
	cfg := testSinkConfig(t.TempDir())
	log := logger.NewLogger("test")

	sink, err := NewCSVSink(cfg, log)
	if err != nil {
		t.Fatalf("new sink: %v", err)
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	rows := readCSV(t, cfg.Storage.TickCSVPath)
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want header only", len(rows))
	}
	if len(rows[0]) != len(models.TickCSVHeader) || rows[0][0] != "timestamp" {
		t.Fatalf("unexpected header %v", rows[0])
	}

	snapRows := readCSV(t, cfg.Storage.SnapshotCSVPath)
	if len(snapRows[0]) != len(models.SnapshotCSVHeader) {
		t.Fatalf("snapshot header width = %d, want %d", len(snapRows[0]), len(models.SnapshotCSVHeader))
	}
}

func TestCSVSinkAppendAcrossReopen(t *testing.T) {
	cfg := testSinkConfig(t.TempDir())
	log := logger.NewLogger("test")

	sink, err := NewCSVSink(cfg, log)
	if err != nil {
		t.Fatalf("new sink: %v", err)
	}
	rec := models.MTickRecord{
		Timestamp:  "2026-01-05 10:00:00",
		Mode:       models.ModeMorning,
		FutureLast: models.F(5025.25),
	}
	if err := sink.AppendTick(rec); err != nil {
		t.Fatalf("append: %v", err)
	}
	sink.Close()

	// Reopening must append without a second header.
	sink, err = NewCSVSink(cfg, log)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	rec.Timestamp = "2026-01-05 10:00:10"
	if err := sink.AppendTick(rec); err != nil {
		t.Fatalf("append after reopen: %v", err)
	}
	sink.Close()

	rows := readCSV(t, cfg.Storage.TickCSVPath)
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want header + 2 ticks", len(rows))
	}
	if rows[1][0] != "2026-01-05 10:00:00" || rows[2][0] != "2026-01-05 10:00:10" {
		t.Fatalf("unexpected order: %v %v", rows[1][0], rows[2][0])
	}
	// Absent metrics render as empty cells.
	if rows[1][4] != "" {
		t.Fatalf("absent index_last = %q, want empty", rows[1][4])
	}
	if rows[1][2] != "5025.25" {
		t.Fatalf("future_last = %q, want 5025.25", rows[1][2])
	}
}

func TestCSVSinkSnapshotRow(t *testing.T) {
	cfg := testSinkConfig(t.TempDir())
	sink, err := NewCSVSink(cfg, logger.NewLogger("test"))
	if err != nil {
		t.Fatalf("new sink: %v", err)
	}

	ladder := models.MRangeLadder{Valid: true}
	for i := 0; i < models.NumLevels; i++ {
		ladder.Levels[i] = 5000 + float64(i)
	}
	snap := models.MSnapshotRecord{
		Timestamp:   "2026-01-05 15:30:00",
		EventLabel:  "SPX_15:30",
		Date:        "20260105",
		AnchorLabel: models.AnchorOpen,
		AnchorValue: models.F(5000),
		Ladder:      ladder,
	}
	if err := sink.AppendSnapshot(snap); err != nil {
		t.Fatalf("append snapshot: %v", err)
	}
	sink.Close()

	rows := readCSV(t, cfg.Storage.SnapshotCSVPath)
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want header + 1", len(rows))
	}
	row := rows[1]
	if row[1] != "SPX_15:30" || row[3] != "OPEN" {
		t.Fatalf("unexpected row %v", row)
	}
	// Ladder values follow the fixed columns in header order.
	if row[9] != "5000" || row[17] != "5008" {
		t.Fatalf("ladder cells = %q..%q, want 5000..5008", row[9], row[17])
	}
}
