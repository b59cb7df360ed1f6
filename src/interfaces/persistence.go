package interfaces

import "github.com/annalisadamore06-jpg/es-trading-dashboard/src/models"

// -----------------------------------------------------------------------------
// ITickSink is an append-only tabular record of ticks and snapshot events.
// Append calls come from the single engine goroutine only.
// -----------------------------------------------------------------------------

type ITickSink interface {

	// AppendTick appends one row to the time-series log.
	AppendTick(rec models.MTickRecord) error

	// -----------------------------------------------------------------------------

	// AppendSnapshot appends one row to the snapshot log.
	AppendSnapshot(rec models.MSnapshotRecord) error

	// -----------------------------------------------------------------------------

	// Close flushes and releases the sink.
	Close() error
}
