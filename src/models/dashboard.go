package models

// -----------------------------------------------------------------------------
// Dashboard State Structure (served to UI consumers)
// -----------------------------------------------------------------------------

// MDashboardState is the full "latest known everything" view. The state store
// hands out deep copies, so readers never observe a half-written tick.
type MDashboardState struct {
	Connected  bool   `json:"connected"`
	LastUpdate string `json:"last_update"`

	// Live market
	FutureLast *float64 `json:"future_last"`
	IndexLast  *float64 `json:"index_last"`
	FutureVWAP *float64 `json:"future_vwap"`
	IndexOpen  *float64 `json:"index_open"`
	Spread     *float64 `json:"spread"`

	// Volatility / straddle
	IVDailyPct    *float64 `json:"iv_daily_pct"`
	IVStraddlePct *float64 `json:"iv_straddle_pct"`
	StraddleBid   *float64 `json:"straddle_bid"`
	StraddleMid   *float64 `json:"straddle_mid"`
	StraddleAsk   *float64 `json:"straddle_ask"`
	StraddleSprd  *float64 `json:"straddle_spread"`
	DVSPct        *float64 `json:"dvs_pct"`
	PutCallRatio  *float64 `json:"put_call_ratio"`

	// Mode & anchor
	Mode   Mode    `json:"mode"`
	Anchor MAnchor `json:"anchor"`

	// Option pair selection
	Strike       *float64 `json:"strike"`
	Exchange     string   `json:"exchange"`
	Expiry       string   `json:"expiry"`
	TradingClass string   `json:"trading_class"`
	CallSymbol   string   `json:"call_symbol"`
	PutSymbol    string   `json:"put_symbol"`

	// Derived ladder for the current anchor
	LiveLadder MRangeLadder `json:"live_ladder"`

	// Captured snapshots for the day, keyed by slot
	Snapshots map[string]MSnapshotRecord `json:"snapshots"`
}

// -----------------------------------------------------------------------------

// Clone returns a deep copy safe to hand to a reader.
func (s MDashboardState) Clone() MDashboardState {
	out := s
	out.FutureLast = copyF(s.FutureLast)
	out.IndexLast = copyF(s.IndexLast)
	out.FutureVWAP = copyF(s.FutureVWAP)
	out.IndexOpen = copyF(s.IndexOpen)
	out.Spread = copyF(s.Spread)
	out.IVDailyPct = copyF(s.IVDailyPct)
	out.IVStraddlePct = copyF(s.IVStraddlePct)
	out.StraddleBid = copyF(s.StraddleBid)
	out.StraddleMid = copyF(s.StraddleMid)
	out.StraddleAsk = copyF(s.StraddleAsk)
	out.StraddleSprd = copyF(s.StraddleSprd)
	out.DVSPct = copyF(s.DVSPct)
	out.PutCallRatio = copyF(s.PutCallRatio)
	out.Anchor.Value = copyF(s.Anchor.Value)
	out.Strike = copyF(s.Strike)
	out.Snapshots = make(map[string]MSnapshotRecord, len(s.Snapshots))
	for k, v := range s.Snapshots {
		v.AnchorValue = copyF(v.AnchorValue)
		v.IndexOpen = copyF(v.IndexOpen)
		v.Spread = copyF(v.Spread)
		v.IVDailyPct = copyF(v.IVDailyPct)
		v.IVStraddlePct = copyF(v.IVStraddlePct)
		out.Snapshots[k] = v
	}
	return out
}

func copyF(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
