package helpers

import (
	"errors"
	"fmt"
)

// -----------------------------------------------------------------------------
// Error taxonomy for the engine's connection cycle. Connectivity and
// contract-resolution failures abort the cycle and trigger the retry backoff;
// anything else is re-raised unwrapped so unexpected faults stay visible.
// -----------------------------------------------------------------------------

type DashboardError struct {
	Message string
	Cause   error
}

func (e *DashboardError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *DashboardError) Unwrap() error {
	return e.Cause
}

// Distinct categories for errors.As checks.
type ConnectionError struct{ DashboardError }
type ContractError struct{ DashboardError }
type MarketDataError struct{ DashboardError }
type DatabaseError struct{ DashboardError }

// -----------------------------------------------------------------------------

func NewConnectionError(msg string, cause error) error {
	return &ConnectionError{DashboardError{Message: msg, Cause: cause}}
}

func NewContractError(msg string, cause error) error {
	return &ContractError{DashboardError{Message: msg, Cause: cause}}
}

func NewMarketDataError(msg string, cause error) error {
	return &MarketDataError{DashboardError{Message: msg, Cause: cause}}
}

// -----------------------------------------------------------------------------

// IsRecoverable reports whether an error belongs to the categories the engine
// recovers from by tearing down and reconnecting after the backoff.
// Contract-resolution errors are recoverable on purpose: a chain missing now
// may become available later in the session.
func IsRecoverable(err error) bool {
	var connErr *ConnectionError
	var contractErr *ContractError
	var dataErr *MarketDataError
	return errors.As(err, &connErr) || errors.As(err, &contractErr) || errors.As(err, &dataErr)
}
