package models

// -----------------------------------------------------------------------------
// Range ladder: nine fixed levels, rendered top-to-bottom.
// The label set and order are closed, so the ladder is an enum-indexed array
// rather than a map.
// -----------------------------------------------------------------------------

const (
	LvlFiboR1Up = iota
	LvlFiboR2Up
	LvlR1Up
	LvlR2Up
	LvlCenter
	LvlR2Down
	LvlR1Down
	LvlFiboR2Down
	LvlFiboR1Down
	NumLevels
)

// LadderLabels is the display/CSV order of the nine levels.
var LadderLabels = [NumLevels]string{
	"FIBO EST R1 UP",
	"FIBO EST R2 UP",
	"R1 UP",
	"R2 UP",
	"CENTER",
	"R2 DOWN",
	"R1 DOWN",
	"FIBO EST R2 DOWN",
	"FIBO EST R1 DOWN",
}

// LadderColumns is the header-safe variant used for the snapshot CSV.
var LadderColumns = [NumLevels]string{
	"FIB_R1_UP",
	"FIB_R2_UP",
	"R1_UP",
	"R2_UP",
	"CENTER",
	"R2_DN",
	"R1_DN",
	"FIB_R2_DN",
	"FIB_R1_DN",
}

// -----------------------------------------------------------------------------

// MRangeLadder holds the nine derived price levels.
// Valid is false while any of the inputs were absent; Levels are then zero
// and must not be rendered or persisted.
type MRangeLadder struct {
	Valid  bool               `json:"valid"`
	Levels [NumLevels]float64 `json:"levels"`
}

// -----------------------------------------------------------------------------

// Level returns a boxed level value, nil when the ladder is empty.
func (l MRangeLadder) Level(idx int) *float64 {
	if !l.Valid || idx < 0 || idx >= NumLevels {
		return nil
	}
	v := l.Levels[idx]
	return &v
}

// -----------------------------------------------------------------------------

// AnchorLabel identifies which source produced the authoritative price.
type AnchorLabel string

const (
	AnchorVWAP       AnchorLabel = "VWAP"
	AnchorOpen       AnchorLabel = "OPEN"
	AnchorOpenSpread AnchorLabel = "OPEN+SPR"
)

// MAnchor is the currently authoritative reference price.
type MAnchor struct {
	Value *float64    `json:"value"`
	Label AnchorLabel `json:"label"`
}
