package interfaces

import (
	"context"

	"github.com/annalisadamore06-jpg/es-trading-dashboard/src/models"
)

// -----------------------------------------------------------------------------
// IQuoteSource is the seam between the aggregation engine and the brokerage
// gateway. The engine samples quote handles on its own cadence; how updates
// actually arrive behind the handle (push, poll, callback) is the adapter's
// business.
// -----------------------------------------------------------------------------

type IQuoteSource interface {

	// Connect establishes the gateway session.
	Connect(ctx context.Context) error

	// -----------------------------------------------------------------------------

	// IsConnected reports whether the gateway session is still alive.
	// The engine's streaming loop runs only while this holds.
	IsConnected() bool

	// -----------------------------------------------------------------------------

	// QualifyFrontFuture resolves the nearest-expiry future for symbol/exchange.
	QualifyFrontFuture(ctx context.Context, symbol, exchange string) (models.MContract, error)

	// -----------------------------------------------------------------------------

	// QualifyIndex resolves the cash index contract.
	QualifyIndex(ctx context.Context, symbol, exchange string) (models.MContract, error)

	// -----------------------------------------------------------------------------

	// OptionChain returns the strike list for a trading class, filtered to
	// expirations containing the given date (same-day-expiry filtering).
	OptionChain(ctx context.Context, underlying models.MContract, tradingClass, expiry string) (models.MOptionChain, error)

	// -----------------------------------------------------------------------------

	// Subscribe opens a live quote stream and returns a sampling handle.
	// Unsubscribe must be called before re-subscribing a different contract.
	Subscribe(ctx context.Context, contract models.MContract) (IQuoteHandle, error)

	// -----------------------------------------------------------------------------

	// Unsubscribe tears down a live quote stream.
	Unsubscribe(handle IQuoteHandle) error

	// -----------------------------------------------------------------------------

	// HistoricalDailyBar returns the most recent 1-day bar for a contract.
	HistoricalDailyBar(ctx context.Context, contract models.MContract) (models.MDailyBar, error)

	// -----------------------------------------------------------------------------

	// Close tears down the gateway session and all subscriptions.
	Close() error
}

// -----------------------------------------------------------------------------

// IQuoteHandle exposes the latest known quote fields for one subscription.
type IQuoteHandle interface {
	Contract() models.MContract
	Latest() models.MQuoteSnapshot
}
