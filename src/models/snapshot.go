package models

// -----------------------------------------------------------------------------
// Snapshot records: immutable point-in-time captures taken when a schedule
// gate first fires. Once written they never change for the rest of the day.
// -----------------------------------------------------------------------------

// Snapshot slot keys inside the state store.
const (
	SlotMorningFut   = "morning_fut"
	SlotAfternoonIdx = "afternoon_idx"
	SlotAfternoonFut = "afternoon_fut"
	SlotLateIdx      = "late_idx"
	SlotLateFut      = "late_fut"
)

// -----------------------------------------------------------------------------

type MSnapshotRecord struct {
	Timestamp     string       `json:"timestamp"`
	EventLabel    string       `json:"event_label"` // e.g. "ES_10:00", "SPX_15:30"
	Date          string       `json:"date"`        // YYYYMMDD
	AnchorLabel   AnchorLabel  `json:"anchor_label"`
	AnchorValue   *float64     `json:"anchor_value"`
	IndexOpen     *float64     `json:"index_open"`
	Spread        *float64     `json:"spread"`
	IVDailyPct    *float64     `json:"iv_daily_pct"`
	IVStraddlePct *float64     `json:"iv_straddle_pct"`
	Ladder        MRangeLadder `json:"ladder"`
}

// SnapshotCSVHeader: fixed columns followed by the nine ladder levels in
// LadderColumns order.
var SnapshotCSVHeader = append([]string{
	"timestamp", "event_label", "date", "anchor_label", "anchor_value",
	"index_open", "spread", "iv_daily_pct", "iv_straddle_pct",
}, LadderColumns[:]...)
