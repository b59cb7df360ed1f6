package indicator

import (
	"math"

	"github.com/annalisadamore06-jpg/es-trading-dashboard/src/models"
)

// -----------------------------------------------------------------------------

const (
	// FibUp expands both R1 and R2 on the upside; FibDown contracts R2 and R1
	// on the downside. The asymmetry is intentional, do not "fix" it.
	FibUp   = 1.618
	FibDown = 0.618
)

// Sqrt252 annualization constant (trading days per year).
var Sqrt252 = math.Sqrt(252)

// -----------------------------------------------------------------------------

// ComputeRangeLadder derives the nine-level ladder from an anchor price and
// two fractional volatilities. Any absent input yields an empty ladder;
// absence is the normal quiescent state before enough quotes have arrived.
func ComputeRangeLadder(anchor, ivDailyFrac, ivStraddleFrac *float64) models.MRangeLadder {
	if anchor == nil || ivDailyFrac == nil || ivStraddleFrac == nil {
		return models.MRangeLadder{}
	}

	base := *anchor
	r1 := base * *ivDailyFrac
	r2 := base * *ivStraddleFrac

	return models.MRangeLadder{
		Valid: true,
		Levels: [models.NumLevels]float64{
			models.LvlFiboR1Up:   base + r1*FibUp,
			models.LvlFiboR2Up:   base + r2*FibUp,
			models.LvlR1Up:       base + r1,
			models.LvlR2Up:       base + r2,
			models.LvlCenter:     base,
			models.LvlR2Down:     base - r2,
			models.LvlR1Down:     base - r1,
			models.LvlFiboR2Down: base - r2*FibDown,
			models.LvlFiboR1Down: base - r1*FibDown,
		},
	}
}

// -----------------------------------------------------------------------------

// Convert expresses a level quoted in one market in the other market's units
// via the additive cross-market spread.
func Convert(level, spread *float64) *float64 {
	if level == nil || spread == nil {
		return nil
	}
	return models.F(*level + *spread)
}

// -----------------------------------------------------------------------------

// ConvertLadder shifts every level of a ladder by the spread. An empty ladder
// or absent spread stays empty.
func ConvertLadder(ladder models.MRangeLadder, spread *float64) models.MRangeLadder {
	if !ladder.Valid || spread == nil {
		return models.MRangeLadder{}
	}
	out := models.MRangeLadder{Valid: true}
	for i, v := range ladder.Levels {
		out.Levels[i] = v + *spread
	}
	return out
}

// -----------------------------------------------------------------------------

// NormalizeIV converts a raw implied-volatility reading into annual and daily
// percentages plus the daily fraction. Feeds quote IV either as a fraction
// (0.15) or as a percentage (15.0); fractions below 1 are scaled to percent.
func NormalizeIV(raw *float64) (annualPct, dailyPct, dailyFrac *float64) {
	r := models.Num(raw)
	if r == nil {
		return nil, nil, nil
	}

	annual := *r
	if annual != 0 && annual < 1.0 {
		annual *= 100.0
	}
	if annual == 0 {
		return models.F(annual), nil, nil
	}

	daily := annual / Sqrt252
	return models.F(annual), models.F(daily), models.F(daily / 100.0)
}

// -----------------------------------------------------------------------------

// MStraddleQuote is the combined call+put quote at the selected strike.
type MStraddleQuote struct {
	Bid    *float64
	Mid    *float64
	Ask    *float64
	Spread *float64
	PCR    *float64
}

// -----------------------------------------------------------------------------

// ComputeStraddle combines call and put quotes into straddle bid/mid/ask,
// bid-ask spread and put/call ratio. Every output propagates absence.
func ComputeStraddle(call, put models.MQuoteSnapshot) MStraddleQuote {
	callBid, callAsk := models.Num(call.Bid), models.Num(call.Ask)
	putBid, putAsk := models.Num(put.Bid), models.Num(put.Ask)

	var q MStraddleQuote
	if callBid != nil && putBid != nil {
		q.Bid = models.F(*callBid + *putBid)
	}
	if callAsk != nil && putAsk != nil {
		q.Ask = models.F(*callAsk + *putAsk)
	}
	if q.Bid != nil && q.Ask != nil {
		q.Mid = models.F((*q.Bid + *q.Ask) / 2.0)
		q.Spread = models.F(*q.Ask - *q.Bid)
	}

	callMid := midOf(callBid, callAsk)
	putMid := midOf(putBid, putAsk)
	q.PCR = PutCallRatio(putMid, callMid)
	return q
}

// -----------------------------------------------------------------------------

// PutCallRatio guards both absence and a zero call mid.
func PutCallRatio(putMid, callMid *float64) *float64 {
	if putMid == nil || callMid == nil || *callMid == 0 {
		return nil
	}
	return models.F(*putMid / *callMid)
}

// -----------------------------------------------------------------------------

// StraddleIVPct expresses the straddle ask as a percentage of the anchor.
func StraddleIVPct(straddleAsk, anchor *float64) *float64 {
	if straddleAsk == nil || anchor == nil || *anchor == 0 {
		return nil
	}
	return models.F(*straddleAsk / *anchor * 100.0)
}

// -----------------------------------------------------------------------------

// DVS is the dealer volatility spread: straddle mid as a percentage of the
// daily expected-move points. Zero daily range yields absence, not infinity.
func DVS(straddleMid, anchor, ivDailyFrac *float64) *float64 {
	if straddleMid == nil || anchor == nil || ivDailyFrac == nil {
		return nil
	}
	r1 := *anchor * *ivDailyFrac
	if r1 == 0 {
		return nil
	}
	return models.F(*straddleMid / r1 * 100.0)
}

// -----------------------------------------------------------------------------

// CrossSpread is future minus index, nil-propagating.
func CrossSpread(futureLast, indexLast *float64) *float64 {
	if futureLast == nil || indexLast == nil {
		return nil
	}
	return models.F(*futureLast - *indexLast)
}

// -----------------------------------------------------------------------------

func midOf(bid, ask *float64) *float64 {
	if bid == nil || ask == nil {
		return nil
	}
	return models.F((*bid + *ask) / 2.0)
}
