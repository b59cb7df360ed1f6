package models

// -----------------------------------------------------------------------------
// Mode of the session state machine.
// -----------------------------------------------------------------------------

type Mode string

const (
	ModeMorning   Mode = "MORNING_FUT_VWAP"
	ModeAfternoon Mode = "AFTERNOON_IDX_OPEN"
)

// -----------------------------------------------------------------------------

// MTickRecord is the full metric set of one engine tick, appended to the
// time-series log and kept in the in-memory ring.
type MTickRecord struct {
	Timestamp     string   `json:"timestamp"` // "2006-01-02 15:04:05" in the schedule timezone
	Mode          Mode     `json:"mode"`
	FutureLast    *float64 `json:"future_last"`
	FutureVWAP    *float64 `json:"future_vwap"`
	IndexLast     *float64 `json:"index_last"`
	IndexOpen     *float64 `json:"index_open"`
	Spread        *float64 `json:"spread"`
	IVDailyPct    *float64 `json:"iv_daily_pct"`
	IVStraddlePct *float64 `json:"iv_straddle_pct"`
	StraddleBid   *float64 `json:"straddle_bid"`
	StraddleMid   *float64 `json:"straddle_mid"`
	StraddleAsk   *float64 `json:"straddle_ask"`
	StraddleSprd  *float64 `json:"straddle_spread"`
	DVSPct        *float64 `json:"dvs_pct"`
	PutCallRatio  *float64 `json:"put_call_ratio"`
}

// TickCSVHeader is the column order of the time-series log.
var TickCSVHeader = []string{
	"timestamp", "mode", "future_last", "future_vwap", "index_last",
	"index_open", "spread", "iv_daily_pct", "iv_straddle_pct",
	"straddle_bid", "straddle_mid", "straddle_ask", "straddle_spread",
	"dvs_pct", "put_call_ratio",
}
