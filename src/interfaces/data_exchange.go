package interfaces

import "github.com/annalisadamore06-jpg/es-trading-dashboard/src/models"

// -----------------------------------------------------------------------------
// IDataExchanger defines the interface for sharing state with UI consumers.
// -----------------------------------------------------------------------------

type IDataExchanger interface {
	// -----------------------------------------------------------------------------
	// Broadcast pushes a fresh state copy to connected listeners.
	Broadcast(state models.MDashboardState)

	// -----------------------------------------------------------------------------
	// Start the server
	Start() error

	// -----------------------------------------------------------------------------
	// Stop the server gracefully
	Stop() error
}
