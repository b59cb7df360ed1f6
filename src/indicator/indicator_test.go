package indicator

import (
	"math"
	"testing"

	"github.com/annalisadamore06-jpg/es-trading-dashboard/src/models"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestComputeRangeLadderOrdering(t *testing.T) {
	ladder := ComputeRangeLadder(models.F(5000), models.F(0.00945), models.F(0.008))
	if !ladder.Valid {
		t.Fatalf("expected valid ladder")
	}

	// Top-to-bottom levels must be strictly descending for positive vols.
	order := []int{
		models.LvlFiboR1Up, models.LvlFiboR2Up, models.LvlR1Up, models.LvlR2Up,
		models.LvlCenter, models.LvlR2Down, models.LvlR1Down,
		models.LvlFiboR2Down, models.LvlFiboR1Down,
	}
	for i := 1; i < len(order); i++ {
		hi := ladder.Levels[order[i-1]]
		lo := ladder.Levels[order[i]]
		if hi <= lo {
			t.Fatalf("level %d (%f) not above level %d (%f)", order[i-1], hi, order[i], lo)
		}
	}
}

func TestComputeRangeLadderValues(t *testing.T) {
	anchor, r1frac, r2frac := 5000.0, 0.01, 0.008
	ladder := ComputeRangeLadder(models.F(anchor), models.F(r1frac), models.F(r2frac))
	if !ladder.Valid {
		t.Fatalf("expected valid ladder")
	}

	r1 := anchor * r1frac // 50
	r2 := anchor * r2frac // 40

	if got := ladder.Levels[models.LvlCenter]; !almostEqual(got, anchor) {
		t.Fatalf("center = %f, want %f", got, anchor)
	}
	if got := ladder.Levels[models.LvlR1Up]; !almostEqual(got, anchor+r1) {
		t.Fatalf("r1 up = %f, want %f", got, anchor+r1)
	}
	if got := ladder.Levels[models.LvlR2Down]; !almostEqual(got, anchor-r2) {
		t.Fatalf("r2 down = %f, want %f", got, anchor-r2)
	}
	// Upside extensions expand by 1.618, downside contracts by 0.618.
	if got := ladder.Levels[models.LvlFiboR1Up]; !almostEqual(got, anchor+r1*1.618) {
		t.Fatalf("fibo r1 up = %f, want %f", got, anchor+r1*1.618)
	}
	if got := ladder.Levels[models.LvlFiboR1Down]; !almostEqual(got, anchor-r1*0.618) {
		t.Fatalf("fibo r1 down = %f, want %f", got, anchor-r1*0.618)
	}
	if got := ladder.Levels[models.LvlFiboR2Down]; !almostEqual(got, anchor-r2*0.618) {
		t.Fatalf("fibo r2 down = %f, want %f", got, anchor-r2*0.618)
	}
}

func TestComputeRangeLadderAbsentInput(t *testing.T) {
	if ladder := ComputeRangeLadder(nil, models.F(0.01), models.F(0.01)); ladder.Valid {
		t.Fatalf("expected empty ladder without anchor")
	}
	if ladder := ComputeRangeLadder(models.F(5000), nil, models.F(0.01)); ladder.Valid {
		t.Fatalf("expected empty ladder without daily vol")
	}
	if ladder := ComputeRangeLadder(models.F(5000), models.F(0.01), nil); ladder.Valid {
		t.Fatalf("expected empty ladder without straddle vol")
	}
}

func TestConvertLadder(t *testing.T) {
	ladder := ComputeRangeLadder(models.F(5000), models.F(0.01), models.F(0.008))
	shifted := ConvertLadder(ladder, models.F(25.5))
	if !shifted.Valid {
		t.Fatalf("expected valid converted ladder")
	}
	for i := 0; i < models.NumLevels; i++ {
		if !almostEqual(shifted.Levels[i], ladder.Levels[i]+25.5) {
			t.Fatalf("level %d = %f, want %f", i, shifted.Levels[i], ladder.Levels[i]+25.5)
		}
	}

	if out := ConvertLadder(ladder, nil); out.Valid {
		t.Fatalf("expected empty ladder without spread")
	}
	if out := ConvertLadder(models.MRangeLadder{}, models.F(25.5)); out.Valid {
		t.Fatalf("expected empty ladder from empty input")
	}
}

func TestConvert(t *testing.T) {
	if got := Convert(models.F(5000), models.F(25)); got == nil || *got != 5025 {
		t.Fatalf("convert = %v, want 5025", got)
	}
	if got := Convert(nil, models.F(25)); got != nil {
		t.Fatalf("expected nil for absent level")
	}
	// Converting back with the negated spread restores the original level.
	back := Convert(Convert(models.F(5000), models.F(25)), models.F(-25))
	if back == nil || *back != 5000 {
		t.Fatalf("round trip = %v, want 5000", back)
	}
}

func TestNormalizeIVFraction(t *testing.T) {
	annual, daily, frac := NormalizeIV(models.F(0.15))
	if annual == nil || !almostEqual(*annual, 15.0) {
		t.Fatalf("annual = %v, want 15.0", annual)
	}
	wantDaily := 15.0 / math.Sqrt(252)
	if daily == nil || !almostEqual(*daily, wantDaily) {
		t.Fatalf("daily = %v, want %f", daily, wantDaily)
	}
	if frac == nil || !almostEqual(*frac, wantDaily/100.0) {
		t.Fatalf("frac = %v, want %f", frac, wantDaily/100.0)
	}
}

func TestNormalizeIVPercent(t *testing.T) {
	// Already-scaled readings pass through unchanged.
	annual, _, _ := NormalizeIV(models.F(15.0))
	if annual == nil || !almostEqual(*annual, 15.0) {
		t.Fatalf("annual = %v, want 15.0", annual)
	}
}

func TestNormalizeIVAbsent(t *testing.T) {
	if a, d, f := NormalizeIV(nil); a != nil || d != nil || f != nil {
		t.Fatalf("expected all nil for absent input")
	}
	nan := math.NaN()
	if a, d, f := NormalizeIV(&nan); a != nil || d != nil || f != nil {
		t.Fatalf("expected all nil for NaN input")
	}
}

func TestComputeStraddle(t *testing.T) {
	call := models.MQuoteSnapshot{Bid: models.F(20), Ask: models.F(22)}
	put := models.MQuoteSnapshot{Bid: models.F(18), Ask: models.F(19)}

	q := ComputeStraddle(call, put)
	if q.Bid == nil || *q.Bid != 38 {
		t.Fatalf("bid = %v, want 38", q.Bid)
	}
	if q.Ask == nil || *q.Ask != 41 {
		t.Fatalf("ask = %v, want 41", q.Ask)
	}
	if q.Mid == nil || *q.Mid != 39.5 {
		t.Fatalf("mid = %v, want 39.5", q.Mid)
	}
	if q.Spread == nil || *q.Spread != 3 {
		t.Fatalf("spread = %v, want 3", q.Spread)
	}
	// PCR = putMid / callMid = 18.5 / 21
	if q.PCR == nil || !almostEqual(*q.PCR, 18.5/21.0) {
		t.Fatalf("pcr = %v, want %f", q.PCR, 18.5/21.0)
	}
}

func TestComputeStraddlePartialQuotes(t *testing.T) {
	call := models.MQuoteSnapshot{Bid: models.F(20)}
	put := models.MQuoteSnapshot{Bid: models.F(18), Ask: models.F(19)}

	q := ComputeStraddle(call, put)
	if q.Bid == nil || *q.Bid != 38 {
		t.Fatalf("bid = %v, want 38", q.Bid)
	}
	if q.Ask != nil || q.Mid != nil || q.Spread != nil || q.PCR != nil {
		t.Fatalf("expected ask/mid/spread/pcr absent with a one-sided call quote")
	}
}

func TestPutCallRatioZeroCall(t *testing.T) {
	if got := PutCallRatio(models.F(5), models.F(0)); got != nil {
		t.Fatalf("expected nil for zero call mid, got %v", got)
	}
	if got := PutCallRatio(nil, models.F(2)); got != nil {
		t.Fatalf("expected nil for absent put mid")
	}
}

func TestStraddleIVPct(t *testing.T) {
	if got := StraddleIVPct(models.F(40), models.F(5000)); got == nil || !almostEqual(*got, 0.8) {
		t.Fatalf("straddle iv = %v, want 0.8", got)
	}
	if got := StraddleIVPct(models.F(40), models.F(0)); got != nil {
		t.Fatalf("expected nil for zero anchor")
	}
}

func TestDVS(t *testing.T) {
	// mid=39.5, anchor=5000, frac=0.01 -> r1=50 -> 79%
	got := DVS(models.F(39.5), models.F(5000), models.F(0.01))
	if got == nil || !almostEqual(*got, 79.0) {
		t.Fatalf("dvs = %v, want 79", got)
	}
	if got := DVS(models.F(39.5), models.F(5000), models.F(0)); got != nil {
		t.Fatalf("expected nil for zero daily range")
	}
}

func TestCrossSpread(t *testing.T) {
	if got := CrossSpread(models.F(5025.25), models.F(5000)); got == nil || !almostEqual(*got, 25.25) {
		t.Fatalf("spread = %v, want 25.25", got)
	}
	if got := CrossSpread(models.F(5025.25), nil); got != nil {
		t.Fatalf("expected nil with absent index price")
	}
}
