package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/annalisadamore06-jpg/es-trading-dashboard/src/config"
	"github.com/annalisadamore06-jpg/es-trading-dashboard/src/helpers"
	"github.com/annalisadamore06-jpg/es-trading-dashboard/src/indicator"
	"github.com/annalisadamore06-jpg/es-trading-dashboard/src/interfaces"
	"github.com/annalisadamore06-jpg/es-trading-dashboard/src/logger"
	"github.com/annalisadamore06-jpg/es-trading-dashboard/src/models"
	"github.com/annalisadamore06-jpg/es-trading-dashboard/src/schedule"
	"github.com/annalisadamore06-jpg/es-trading-dashboard/src/state"
	"github.com/annalisadamore06-jpg/es-trading-dashboard/src/utils"
)

// -----------------------------------------------------------------------------
// Engine runs the aggregation loop: sample quotes on a fixed cadence, derive
// the indicator set, advance the session state machine, fire due snapshot
// gates and publish the result to the state store, the sinks and the
// broadcast hub. One connect/qualify/subscribe cycle covers one trading day;
// any recoverable fault tears the cycle down and reconnects after a fixed
// backoff.
// -----------------------------------------------------------------------------

const priceWaitAttempts = 30

type Engine struct {
	Config   *config.Config
	Logger   *logger.Logger
	Source   interfaces.IQuoteSource
	Sink     interfaces.ITickSink
	DB       interfaces.IDatabase
	Store    *state.Store
	Exchange interfaces.IDataExchanger
	Calendar *utils.TradingCalendar

	// NowFunc supplies the wall clock in the schedule timezone.
	NowFunc func() time.Time

	loc      *time.Location
	session  *schedule.Session
	selector indicator.Selector

	future models.MContract
	index  models.MContract
	chain  models.MOptionChain

	futHandle  interfaces.IQuoteHandle
	idxHandle  interfaces.IQuoteHandle
	callHandle interfaces.IQuoteHandle
	putHandle  interfaces.IQuoteHandle

	optionExchange string
	callContract   models.MContract
	putContract    models.MContract
}

// -----------------------------------------------------------------------------

func NewEngine(cfg *config.Config, src interfaces.IQuoteSource, sink interfaces.ITickSink,
	db interfaces.IDatabase, store *state.Store, exchange interfaces.IDataExchanger) *Engine {

	loc := cfg.Location()
	e := &Engine{
		Config:   cfg,
		Logger:   logger.NewLogger("Engine"),
		Source:   src,
		Sink:     sink,
		DB:       db,
		Store:    store,
		Exchange: exchange,
		Calendar: utils.GetCalendar(cfg.Market.FutureExchange),
		loc:      loc,
	}
	e.NowFunc = func() time.Time { return time.Now().In(loc) }
	return e
}

// -----------------------------------------------------------------------------

// Run drives connect cycles until the context is cancelled. Recoverable
// faults (connectivity, contract resolution, market data) trigger a teardown
// and a fixed-backoff reconnect; anything else is returned to the caller.
func (e *Engine) Run(ctx context.Context) error {
	backoff := time.Duration(e.Config.Engine.ReconnectBackoffSec) * time.Second

	for {
		if ctx.Err() != nil {
			return nil
		}

		err := e.cycle(ctx)
		e.teardown()
		e.Store.SetConnected(false)

		if err == nil || ctx.Err() != nil {
			return nil
		}
		if !helpers.IsRecoverable(err) {
			e.Logger.Error("Unrecoverable engine fault: %v", err)
			return err
		}

		e.Logger.Warning("Cycle ended: %v. Reconnecting in %s", err, backoff)
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff):
		}
	}
}

// -----------------------------------------------------------------------------

// cycle performs one full connect/qualify/subscribe/stream pass. It returns
// nil only on context cancellation.
func (e *Engine) cycle(ctx context.Context) error {
	if err := e.prepare(ctx); err != nil {
		return err
	}

	e.Store.SetConnected(true)
	e.Logger.Info("Streaming: %s fut=%s idx=%s strike=%g@%s",
		e.chain.Expiry, e.future.LocalSymbol, e.index.LocalSymbol, e.selector.Strike, e.optionExchange)

	interval := time.Duration(e.Config.Engine.UpdateIntervalSeconds) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		now := e.NowFunc()

		if err := e.checkRollover(now); err != nil {
			return err
		}
		if e.Config.Engine.PauseWhenClosed && !e.Calendar.IsTradingDay(now) {
			continue
		}
		if !e.Source.IsConnected() {
			return helpers.NewConnectionError("gateway session lost", nil)
		}

		if err := e.step(ctx, now); err != nil {
			return err
		}
	}
}

// -----------------------------------------------------------------------------

// prepare connects the gateway, qualifies the contract set, waits for a first
// future price and subscribes the initial option pair.
func (e *Engine) prepare(ctx context.Context) error {
	now := e.NowFunc()
	date := now.Format("20060102")

	if e.session == nil {
		e.session = schedule.NewSession(e.clock(e.Config.Schedule.MorningSnap),
			e.clock(e.Config.Schedule.AfternoonSnap),
			e.clock(e.Config.Schedule.LateSnap), date)
	} else if e.session.Date() != date {
		e.rollDay(date)
	}

	if err := e.Source.Connect(ctx); err != nil {
		return err
	}

	var err error
	mkt := e.Config.Market
	if e.future, err = e.Source.QualifyFrontFuture(ctx, mkt.FutureSymbol, mkt.FutureExchange); err != nil {
		return err
	}
	if e.index, err = e.Source.QualifyIndex(ctx, mkt.IndexSymbol, mkt.IndexExchange); err != nil {
		return err
	}

	// Same-day expiry: the engine trades the chain expiring today.
	if e.chain, err = e.Source.OptionChain(ctx, e.future, mkt.TradingClass, date); err != nil {
		return err
	}
	if len(e.chain.Strikes) == 0 {
		return helpers.NewContractError(
			fmt.Sprintf("empty strike list for %s %s", mkt.TradingClass, date), nil)
	}

	if e.futHandle, err = e.Source.Subscribe(ctx, e.future); err != nil {
		return err
	}
	if e.idxHandle, err = e.Source.Subscribe(ctx, e.index); err != nil {
		return err
	}

	price, err := e.waitForFuturePrice(ctx)
	if err != nil {
		return err
	}

	strike, ok := e.selector.SelectInitial(e.chain.Strikes, *price)
	if !ok {
		return helpers.NewContractError("strike selection failed", nil)
	}

	return e.subscribeOptions(ctx, strike)
}

// -----------------------------------------------------------------------------

// waitForFuturePrice samples the future handle until a usable price (last,
// falling back to close) appears.
func (e *Engine) waitForFuturePrice(ctx context.Context) (*float64, error) {
	interval := time.Duration(e.Config.Engine.UpdateIntervalSeconds) * time.Second

	for i := 0; i < priceWaitAttempts; i++ {
		q := e.futHandle.Latest()
		if price := models.FirstOf(q.Last, q.Close); price != nil {
			return price, nil
		}
		select {
		case <-ctx.Done():
			return nil, helpers.NewMarketDataError("cancelled while waiting for future price", ctx.Err())
		case <-time.After(interval):
		}
	}
	return nil, helpers.NewMarketDataError("no future price received", nil)
}

// -----------------------------------------------------------------------------

// subscribeOptions opens the call/put pair at the given strike, trying the
// configured option exchanges in order.
func (e *Engine) subscribeOptions(ctx context.Context, strike float64) error {
	mkt := e.Config.Market
	var lastErr error

	for _, exch := range mkt.OptionExchanges {
		call := e.optionContract(exch, strike, "C")
		put := e.optionContract(exch, strike, "P")

		callHandle, err := e.Source.Subscribe(ctx, call)
		if err != nil {
			lastErr = err
			continue
		}
		putHandle, err := e.Source.Subscribe(ctx, put)
		if err != nil {
			lastErr = err
			e.Source.Unsubscribe(callHandle)
			continue
		}

		e.callHandle, e.putHandle = callHandle, putHandle
		e.callContract, e.putContract = call, put
		e.optionExchange = exch
		e.Logger.Info("Option pair subscribed: %s %g C/P on %s", mkt.TradingClass, strike, exch)
		return nil
	}

	return helpers.NewMarketDataError(
		fmt.Sprintf("option pair subscription failed on all exchanges for strike %g", strike), lastErr)
}

// -----------------------------------------------------------------------------

func (e *Engine) optionContract(exchange string, strike float64, right string) models.MContract {
	mkt := e.Config.Market
	return models.MContract{
		Symbol:       mkt.FutureSymbol,
		SecType:      "FOP",
		Exchange:     exchange,
		Currency:     "USD",
		TradingClass: mkt.TradingClass,
		Expiry:       e.chain.Expiry,
		Strike:       strike,
		Right:        right,
	}
}

// -----------------------------------------------------------------------------

// checkRollover tears the cycle down when the trading date changes, so the
// next cycle qualifies a fresh same-day chain.
func (e *Engine) checkRollover(now time.Time) error {
	date := now.Format("20060102")
	if date == e.session.Date() || !e.Calendar.IsTradingDay(now) {
		return nil
	}

	e.rollDay(date)
	return helpers.NewMarketDataError("trading day rolled over", nil)
}

// -----------------------------------------------------------------------------

func (e *Engine) rollDay(date string) {
	e.Logger.Info("New trading day %s: gates re-armed, captures cleared", date)
	e.session.RollDay(date)
	e.selector = indicator.Selector{}
	e.Store.ResetDay()

	if e.DB != nil {
		if err := e.DB.CleanupOldData(); err != nil {
			e.Logger.Error("Retention cleanup failed: %v", err)
		}
	}
}

// -----------------------------------------------------------------------------

// step computes one tick: sample, derive, advance, capture, publish.
func (e *Engine) step(ctx context.Context, now time.Time) error {
	fut := e.futHandle.Latest()
	idx := e.idxHandle.Latest()
	call := e.callHandle.Latest()
	put := e.putHandle.Latest()

	futLast := models.FirstOf(fut.Last, fut.Close)
	idxLast := models.FirstOf(idx.Last, idx.Close)
	futVWAP := models.Num(fut.VWAP)
	spread := indicator.CrossSpread(futLast, idxLast)

	_, ivDailyPct, ivDailyFrac := indicator.NormalizeIV(models.FirstOf(call.ImpliedVol, put.ImpliedVol))
	straddle := indicator.ComputeStraddle(call, put)

	e.latchIndexOpen(ctx, now, idx)
	anchor, mode := e.session.Advance(now, spread)
	if mode == models.ModeMorning {
		anchor.Value = futVWAP
	}

	ivStraddlePct := indicator.StraddleIVPct(straddle.Ask, anchor.Value)
	var ivStraddleFrac *float64
	if ivStraddlePct != nil {
		ivStraddleFrac = models.F(*ivStraddlePct / 100.0)
	}

	dvs := indicator.DVS(straddle.Mid, anchor.Value, ivDailyFrac)
	ladder := indicator.ComputeRangeLadder(anchor.Value, ivDailyFrac, ivStraddleFrac)

	if err := e.maybeReselect(ctx, futLast); err != nil {
		return err
	}

	rec := models.MTickRecord{
		Timestamp:     now.Format("2006-01-02 15:04:05"),
		Mode:          mode,
		FutureLast:    futLast,
		FutureVWAP:    futVWAP,
		IndexLast:     idxLast,
		IndexOpen:     e.session.IndexOpen(),
		Spread:        spread,
		IVDailyPct:    ivDailyPct,
		IVStraddlePct: ivStraddlePct,
		StraddleBid:   straddle.Bid,
		StraddleMid:   straddle.Mid,
		StraddleAsk:   straddle.Ask,
		StraddleSprd:  straddle.Spread,
		DVSPct:        dvs,
		PutCallRatio:  straddle.PCR,
	}

	e.Store.Publish(e.buildState(rec, anchor, ladder))
	e.fireGates(now, rec, anchor, ladder, ivDailyFrac, ivStraddleFrac)
	e.persistTick(rec)

	if e.Exchange != nil {
		e.Exchange.Broadcast(e.Store.Snapshot())
	}
	return nil
}

// -----------------------------------------------------------------------------

// latchIndexOpen tries the live open first, then the daily-bar fallback once
// the capture window has opened.
func (e *Engine) latchIndexOpen(ctx context.Context, now time.Time, idx models.MQuoteSnapshot) {
	if e.session.LatchIndexOpen(now, idx.Open) {
		e.Logger.Info("Official index open latched: %.2f (live)", *e.session.IndexOpen())
		return
	}
	if e.session.IndexOpen() != nil || !e.session.Afternoon.Reached(now) {
		return
	}

	bar, err := e.Source.HistoricalDailyBar(ctx, e.index)
	if err != nil {
		e.Logger.Warning("Daily bar fallback for index open failed: %v", err)
		return
	}
	if e.session.LatchIndexOpen(now, bar.Open) {
		e.Logger.Info("Official index open latched: %.2f (daily bar)", *e.session.IndexOpen())
	}
}

// -----------------------------------------------------------------------------

// maybeReselect swaps the option pair when the future has drifted past the
// hysteresis threshold onto a different nearest strike.
func (e *Engine) maybeReselect(ctx context.Context, futLast *float64) error {
	strike, changed := e.selector.MaybeReselect(e.chain.Strikes, futLast, e.Config.Engine.ReselectPoints)
	if !changed {
		return nil
	}

	e.Logger.Info("ATM strike moved to %g, swapping option pair", strike)
	if e.callHandle != nil {
		e.Source.Unsubscribe(e.callHandle)
		e.callHandle = nil
	}
	if e.putHandle != nil {
		e.Source.Unsubscribe(e.putHandle)
		e.putHandle = nil
	}
	return e.subscribeOptions(ctx, strike)
}

// -----------------------------------------------------------------------------

func (e *Engine) buildState(rec models.MTickRecord, anchor models.MAnchor, ladder models.MRangeLadder) models.MDashboardState {
	st := models.MDashboardState{
		Connected:     true,
		LastUpdate:    rec.Timestamp,
		FutureLast:    rec.FutureLast,
		IndexLast:     rec.IndexLast,
		FutureVWAP:    rec.FutureVWAP,
		IndexOpen:     rec.IndexOpen,
		Spread:        rec.Spread,
		IVDailyPct:    rec.IVDailyPct,
		IVStraddlePct: rec.IVStraddlePct,
		StraddleBid:   rec.StraddleBid,
		StraddleMid:   rec.StraddleMid,
		StraddleAsk:   rec.StraddleAsk,
		StraddleSprd:  rec.StraddleSprd,
		DVSPct:        rec.DVSPct,
		PutCallRatio:  rec.PutCallRatio,
		Mode:          rec.Mode,
		Anchor:        anchor,
		Exchange:      e.optionExchange,
		Expiry:        e.chain.Expiry,
		TradingClass:  e.chain.TradingClass,
		CallSymbol:    optionLabel(e.callContract),
		PutSymbol:     optionLabel(e.putContract),
		LiveLadder:    ladder,
	}
	if e.selector.Selected() {
		st.Strike = models.F(e.selector.Strike)
	}
	return st
}

func optionLabel(c models.MContract) string {
	if c.TradingClass == "" {
		return ""
	}
	return fmt.Sprintf("%s %s %s%g", c.TradingClass, c.Expiry, c.Right, c.Strike)
}

// -----------------------------------------------------------------------------

// fireGates evaluates the three one-shot capture gates. A due gate with
// missing inputs stays armed and is retried on the next tick.
func (e *Engine) fireGates(now time.Time, rec models.MTickRecord, anchor models.MAnchor,
	ladder models.MRangeLadder, ivDailyFrac, ivStraddleFrac *float64) {

	mkt := e.Config.Market

	// Morning capture: the live futures ladder as of the gate time.
	if e.session.GateDue(schedule.GateMorning, now) && ladder.Valid && anchor.Value != nil {
		snap := models.MSnapshotRecord{
			Timestamp:     rec.Timestamp,
			EventLabel:    fmt.Sprintf("%s_%s", mkt.FutureSymbol, e.session.Morning),
			Date:          e.session.Date(),
			AnchorLabel:   anchor.Label,
			AnchorValue:   anchor.Value,
			IndexOpen:     rec.IndexOpen,
			Spread:        rec.Spread,
			IVDailyPct:    rec.IVDailyPct,
			IVStraddlePct: rec.IVStraddlePct,
			Ladder:        ladder,
		}
		if e.writeSnapshot(models.SlotMorningFut, snap) {
			e.session.MarkFired(schedule.GateMorning)
		}
	}

	e.fireOpenGate(schedule.GateAfternoon, models.SlotAfternoonIdx, models.SlotAfternoonFut,
		now, rec, ivDailyFrac, ivStraddleFrac)
	e.fireOpenGate(schedule.GateLate, models.SlotLateIdx, models.SlotLateFut,
		now, rec, ivDailyFrac, ivStraddleFrac)
}

// -----------------------------------------------------------------------------

// fireOpenGate captures the index ladder anchored on the official open plus
// its futures-space conversion. Each record persists at most once: a retry
// after a partial failure writes only the missing half, and the gate latches
// once both slots hold a capture.
func (e *Engine) fireOpenGate(gate, idxSlot, futSlot string, now time.Time,
	rec models.MTickRecord, ivDailyFrac, ivStraddleFrac *float64) {

	if !e.session.GateDue(gate, now) {
		return
	}

	open := e.session.IndexOpen()
	if open == nil || rec.Spread == nil || ivDailyFrac == nil || ivStraddleFrac == nil {
		return
	}

	mkt := e.Config.Market
	clock := e.session.GateClock(gate)

	idxLadder := indicator.ComputeRangeLadder(open, ivDailyFrac, ivStraddleFrac)
	if !idxLadder.Valid {
		return
	}
	futLadder := indicator.ConvertLadder(idxLadder, rec.Spread)

	idxSnap := models.MSnapshotRecord{
		Timestamp:     rec.Timestamp,
		EventLabel:    fmt.Sprintf("%s_%s", mkt.IndexSymbol, clock),
		Date:          e.session.Date(),
		AnchorLabel:   models.AnchorOpen,
		AnchorValue:   open,
		IndexOpen:     open,
		Spread:        rec.Spread,
		IVDailyPct:    rec.IVDailyPct,
		IVStraddlePct: rec.IVStraddlePct,
		Ladder:        idxLadder,
	}
	futSnap := idxSnap
	futSnap.EventLabel = fmt.Sprintf("%s_%s", mkt.FutureSymbol, clock)
	futSnap.AnchorLabel = models.AnchorOpenSpread
	futSnap.AnchorValue = indicator.Convert(open, rec.Spread)
	futSnap.Ladder = futLadder

	idxOK := e.Store.HasSnapshot(idxSlot) || e.writeSnapshot(idxSlot, idxSnap)
	futOK := e.Store.HasSnapshot(futSlot) || e.writeSnapshot(futSlot, futSnap)
	if idxOK && futOK {
		e.session.MarkFired(gate)
	}
}

// -----------------------------------------------------------------------------

// writeSnapshot persists one capture. The CSV append is authoritative; the
// database mirror is best-effort.
func (e *Engine) writeSnapshot(slot string, snap models.MSnapshotRecord) bool {
	if e.Sink != nil {
		if err := e.Sink.AppendSnapshot(snap); err != nil {
			e.Logger.Error("Snapshot append failed for %s: %v", snap.EventLabel, err)
			return false
		}
	}
	if e.DB != nil {
		if err := e.DB.SaveSnapshot(snap); err != nil {
			e.Logger.Error("Snapshot DB mirror failed for %s: %v", snap.EventLabel, err)
		}
	}
	e.Store.PutSnapshot(slot, snap)
	e.Logger.Info("Snapshot captured: %s", snap.EventLabel)
	return true
}

// -----------------------------------------------------------------------------

func (e *Engine) persistTick(rec models.MTickRecord) {
	e.Store.AppendTick(rec)

	if e.Sink != nil {
		if err := e.Sink.AppendTick(rec); err != nil {
			e.Logger.Error("Tick append failed: %v", err)
		}
	}
	if e.DB != nil {
		if err := e.DB.SaveTicks([]models.MTickRecord{rec}); err != nil {
			e.Logger.Error("Tick DB mirror failed: %v", err)
		}
	}
}

// -----------------------------------------------------------------------------

// teardown releases subscriptions and the gateway session. Safe to call on a
// partially prepared cycle.
func (e *Engine) teardown() {
	for _, h := range []interfaces.IQuoteHandle{e.callHandle, e.putHandle, e.futHandle, e.idxHandle} {
		if h != nil {
			e.Source.Unsubscribe(h)
		}
	}
	e.callHandle, e.putHandle, e.futHandle, e.idxHandle = nil, nil, nil, nil

	if err := e.Source.Close(); err != nil {
		e.Logger.Warning("Source close: %v", err)
	}
}

// -----------------------------------------------------------------------------

func (e *Engine) clock(s string) schedule.Clock {
	h, m, _ := config.ParseClock(s)
	return schedule.Clock{Hour: h, Minute: m}
}
