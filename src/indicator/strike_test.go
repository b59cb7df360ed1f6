package indicator

import "testing"

func chain() []float64 {
	strikes := make([]float64, 0, 21)
	for s := 4000.0; s <= 4200.0; s += 10 {
		strikes = append(strikes, s)
	}
	return strikes
}

func TestNearestStrike(t *testing.T) {
	if got, ok := NearestStrike(chain(), 4052.0); !ok || got != 4050 {
		t.Fatalf("nearest = %v (%v), want 4050", got, ok)
	}
	// Exact midpoint resolves to the lower strike.
	if got, _ := NearestStrike(chain(), 4055.0); got != 4050 {
		t.Fatalf("midpoint tie = %v, want 4050", got)
	}
	if _, ok := NearestStrike(nil, 4050); ok {
		t.Fatalf("expected no strike from empty chain")
	}
}

func TestSelectInitial(t *testing.T) {
	var sel Selector
	strike, ok := sel.SelectInitial(chain(), 4052.0)
	if !ok || strike != 4050 {
		t.Fatalf("initial = %v (%v), want 4050", strike, ok)
	}
	if !sel.Selected() {
		t.Fatalf("expected selector to be anchored")
	}
	if sel.AnchorPrice != 4052.0 {
		t.Fatalf("anchor price = %v, want 4052", sel.AnchorPrice)
	}
}

func TestMaybeReselectHysteresis(t *testing.T) {
	var sel Selector
	sel.SelectInitial(chain(), 4050.0)

	// Drift below the threshold never reselects, even across a strike boundary.
	v := 4059.0
	if strike, changed := sel.MaybeReselect(chain(), &v, 10); changed || strike != 4050 {
		t.Fatalf("drift 9pts: strike=%v changed=%v, want 4050 unchanged", strike, changed)
	}

	// Crossing the threshold re-picks the nearest strike and re-anchors.
	v = 4061.0
	strike, changed := sel.MaybeReselect(chain(), &v, 10)
	if !changed || strike != 4060 {
		t.Fatalf("drift 11pts: strike=%v changed=%v, want 4060 changed", strike, changed)
	}
	if sel.AnchorPrice != 4061.0 {
		t.Fatalf("anchor price = %v, want 4061", sel.AnchorPrice)
	}
}

func TestMaybeReselectSameStrikeKeepsAnchor(t *testing.T) {
	var sel Selector
	sel.SelectInitial(chain(), 4050.0)

	// Past the threshold but the nearest strike is unchanged: the anchor must
	// not move, otherwise oscillation around one strike disables reselection.
	v := 4061.0
	if _, changed := sel.MaybeReselect(chain(), &v, 15); changed {
		t.Fatalf("expected no change while nearest strike is stable")
	}
	if sel.AnchorPrice != 4050.0 {
		t.Fatalf("anchor price = %v, want 4050 (unchanged)", sel.AnchorPrice)
	}
}

func TestMaybeReselectAbsentPrice(t *testing.T) {
	var sel Selector
	sel.SelectInitial(chain(), 4050.0)

	if strike, changed := sel.MaybeReselect(chain(), nil, 10); changed || strike != 4050 {
		t.Fatalf("absent price must keep the current strike")
	}
}
