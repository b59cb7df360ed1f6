package interfaces

import "github.com/annalisadamore06-jpg/es-trading-dashboard/src/models"

// -----------------------------------------------------------------------------
// IDatabase defines the contract for the tick/snapshot mirror store.
// -----------------------------------------------------------------------------

type IDatabase interface {

	// -----------------------------------------------------------------------------

	// Initialize sets up the database schema and tables.
	Initialize() error

	// -----------------------------------------------------------------------------

	// SaveTicks inserts a batch of tick records.
	SaveTicks(ticks []models.MTickRecord) error

	// -----------------------------------------------------------------------------

	// SaveSnapshot inserts one snapshot record.
	SaveSnapshot(snap models.MSnapshotRecord) error

	// -----------------------------------------------------------------------------

	// CleanupOldData removes data older than the retention policy.
	CleanupOldData() error

	// -----------------------------------------------------------------------------

	// Close the database connection
	Close() error
}
