package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/annalisadamore06-jpg/es-trading-dashboard/src/logger"
	"github.com/annalisadamore06-jpg/es-trading-dashboard/src/models"
)

// -----------------------------------------------------------------------------
// CSVSink keeps the two append-only tabular files of the dashboard: the
// per-tick time-series log and the snapshot log. Files get a header row when
// first created and are appended to (never rewritten) afterwards. Appends are
// flushed immediately; only the single engine goroutine writes here.
// -----------------------------------------------------------------------------

type CSVSink struct {
	Config *models.MConfig
	Logger *logger.Logger

	tickFile *os.File
	tickW    *csv.Writer
	snapFile *os.File
	snapW    *csv.Writer
}

// -----------------------------------------------------------------------------

func NewCSVSink(cfg *models.MConfig, log *logger.Logger) (*CSVSink, error) {
	s := &CSVSink{Config: cfg, Logger: log}

	var err error
	s.tickFile, s.tickW, err = openAppendCSV(cfg.Storage.TickCSVPath, models.TickCSVHeader)
	if err != nil {
		return nil, fmt.Errorf("failed to open tick log: %w", err)
	}

	s.snapFile, s.snapW, err = openAppendCSV(cfg.Storage.SnapshotCSVPath, models.SnapshotCSVHeader)
	if err != nil {
		s.tickFile.Close()
		return nil, fmt.Errorf("failed to open snapshot log: %w", err)
	}

	return s, nil
}

// -----------------------------------------------------------------------------

// openAppendCSV opens path for appending, writing the header first if the
// file did not exist yet.
func openAppendCSV(path string, header []string) (*os.File, *csv.Writer, error) {
	_, statErr := os.Stat(path)
	needHeader := os.IsNotExist(statErr)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, err
	}

	w := csv.NewWriter(f)
	if needHeader {
		if err := w.Write(header); err != nil {
			f.Close()
			return nil, nil, err
		}
		w.Flush()
		if err := w.Error(); err != nil {
			f.Close()
			return nil, nil, err
		}
	}

	return f, w, nil
}

// -----------------------------------------------------------------------------

// AppendTick appends one row to the time-series log.
func (s *CSVSink) AppendTick(rec models.MTickRecord) error {
	row := []string{
		rec.Timestamp,
		string(rec.Mode),
		cell(rec.FutureLast),
		cell(rec.FutureVWAP),
		cell(rec.IndexLast),
		cell(rec.IndexOpen),
		cell(rec.Spread),
		cell(rec.IVDailyPct),
		cell(rec.IVStraddlePct),
		cell(rec.StraddleBid),
		cell(rec.StraddleMid),
		cell(rec.StraddleAsk),
		cell(rec.StraddleSprd),
		cell(rec.DVSPct),
		cell(rec.PutCallRatio),
	}
	return s.write(s.tickW, row)
}

// -----------------------------------------------------------------------------

// AppendSnapshot appends one row to the snapshot log, ladder levels in the
// fixed label order.
func (s *CSVSink) AppendSnapshot(rec models.MSnapshotRecord) error {
	row := []string{
		rec.Timestamp,
		rec.EventLabel,
		rec.Date,
		string(rec.AnchorLabel),
		cell(rec.AnchorValue),
		cell(rec.IndexOpen),
		cell(rec.Spread),
		cell(rec.IVDailyPct),
		cell(rec.IVStraddlePct),
	}
	for i := 0; i < models.NumLevels; i++ {
		row = append(row, cell(rec.Ladder.Level(i)))
	}
	return s.write(s.snapW, row)
}

// -----------------------------------------------------------------------------

func (s *CSVSink) write(w *csv.Writer, row []string) error {
	if err := w.Write(row); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

// -----------------------------------------------------------------------------

// Close flushes and closes both files.
func (s *CSVSink) Close() error {
	s.tickW.Flush()
	s.snapW.Flush()
	err1 := s.tickFile.Close()
	err2 := s.snapFile.Close()
	if err1 != nil {
		return err1
	}
	return err2
}

// -----------------------------------------------------------------------------

// cell renders a nullable metric; absence becomes an empty column.
func cell(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
