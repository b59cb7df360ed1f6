package indicator

import "math"

// -----------------------------------------------------------------------------
// Selector picks the at-the-money strike and re-picks only when the
// underlying has drifted past a threshold from the price at the last
// selection. The hysteresis band keeps option re-subscriptions from churning
// on noise around strike boundaries.
// -----------------------------------------------------------------------------

type Selector struct {
	Strike      float64
	AnchorPrice float64
	selected    bool
}

// -----------------------------------------------------------------------------

// NearestStrike returns the chain strike closest to the underlying price.
// The strikes slice must be sorted ascending; ties resolve to the lower
// strike, so the result never depends on map iteration order.
func NearestStrike(strikes []float64, underlying float64) (float64, bool) {
	if len(strikes) == 0 {
		return 0, false
	}
	best := strikes[0]
	bestDist := math.Abs(strikes[0] - underlying)
	for _, s := range strikes[1:] {
		if d := math.Abs(s - underlying); d < bestDist {
			best = s
			bestDist = d
		}
	}
	return best, true
}

// -----------------------------------------------------------------------------

// SelectInitial anchors the selector on the strike nearest the underlying.
func (sel *Selector) SelectInitial(strikes []float64, underlying float64) (float64, bool) {
	strike, ok := NearestStrike(strikes, underlying)
	if !ok {
		return 0, false
	}
	sel.Strike = strike
	sel.AnchorPrice = underlying
	sel.selected = true
	return strike, true
}

// -----------------------------------------------------------------------------

// MaybeReselect re-picks the nearest strike once the underlying has drifted
// at least threshold points from the anchor price of the last selection.
// Returns the current strike and whether it changed (the caller must then
// swap the option pair subscription).
func (sel *Selector) MaybeReselect(strikes []float64, underlying *float64, threshold float64) (float64, bool) {
	if underlying == nil || !sel.selected {
		return sel.Strike, false
	}
	if math.Abs(*underlying-sel.AnchorPrice) < threshold {
		return sel.Strike, false
	}

	strike, ok := NearestStrike(strikes, *underlying)
	if !ok || strike == sel.Strike {
		return sel.Strike, false
	}

	sel.Strike = strike
	sel.AnchorPrice = *underlying
	return strike, true
}

// -----------------------------------------------------------------------------

// Selected reports whether an initial selection has been made.
func (sel *Selector) Selected() bool {
	return sel.selected
}
