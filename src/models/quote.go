package models

import "math"

// -----------------------------------------------------------------------------
// Contract and quote structures sampled from the gateway.
// All quote fields use pointers: nil means "no quote yet / stale feed".
// -----------------------------------------------------------------------------

type MContract struct {
	ConID        int64   `json:"con_id"`
	Symbol       string  `json:"symbol"`
	SecType      string  `json:"sec_type"` // FUT, IND, FOP
	Exchange     string  `json:"exchange"`
	Currency     string  `json:"currency"`
	LocalSymbol  string  `json:"local_symbol"`
	TradingClass string  `json:"trading_class"`
	Expiry       string  `json:"expiry"` // YYYYMMDD
	Strike       float64 `json:"strike"`
	Right        string  `json:"right"` // C or P
}

// -----------------------------------------------------------------------------

// MOptionChain is a strike list for one trading class / expiry.
type MOptionChain struct {
	TradingClass string    `json:"trading_class"`
	Exchange     string    `json:"exchange"`
	Expiry       string    `json:"expiry"`
	Strikes      []float64 `json:"strikes"` // sorted ascending
}

// -----------------------------------------------------------------------------

// MQuoteSnapshot is one sample of a live quote handle.
type MQuoteSnapshot struct {
	Last       *float64 `json:"last"`
	Close      *float64 `json:"close"`
	Open       *float64 `json:"open"`
	VWAP       *float64 `json:"vwap"`
	Bid        *float64 `json:"bid"`
	Ask        *float64 `json:"ask"`
	ImpliedVol *float64 `json:"implied_vol"`
}

// -----------------------------------------------------------------------------

// MDailyBar is a single historical daily bar.
type MDailyBar struct {
	Date  string   `json:"date"`
	Open  *float64 `json:"open"`
	High  *float64 `json:"high"`
	Low   *float64 `json:"low"`
	Close *float64 `json:"close"`
}

// -----------------------------------------------------------------------------
// Nullable float helpers
// -----------------------------------------------------------------------------

// F boxes a float64.
func F(v float64) *float64 { return &v }

// Num returns the value if it is a finite number, else nil.
// Mirrors the feed contract: NaN/Inf readings count as absent.
func Num(v *float64) *float64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return nil
	}
	return v
}

// FirstOf returns the first non-nil finite value.
func FirstOf(vals ...*float64) *float64 {
	for _, v := range vals {
		if n := Num(v); n != nil {
			return n
		}
	}
	return nil
}
