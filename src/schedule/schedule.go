package schedule

import (
	"time"

	"github.com/annalisadamore06-jpg/es-trading-dashboard/src/models"
)

// -----------------------------------------------------------------------------
// Session tracks which anchor is authoritative (morning VWAP vs afternoon
// official index open) and which one-shot snapshot gates have already fired
// for the trading day. All decisions take the wall clock as an argument so
// the machine is testable without real time.
// -----------------------------------------------------------------------------

// Clock is an "HH:MM" wall-clock threshold.
type Clock struct {
	Hour   int
	Minute int
}

// Reached reports whether t is at or past the threshold.
func (c Clock) Reached(t time.Time) bool {
	return t.Hour() > c.Hour || (t.Hour() == c.Hour && t.Minute() >= c.Minute)
}

// String renders the threshold as "HH:MM".
func (c Clock) String() string {
	return time.Date(0, 1, 1, c.Hour, c.Minute, 0, 0, time.UTC).Format("15:04")
}

// -----------------------------------------------------------------------------

// Gate names inside the session.
const (
	GateMorning   = "morning"
	GateAfternoon = "afternoon"
	GateLate      = "late"
)

// -----------------------------------------------------------------------------

type Session struct {
	Morning   Clock
	Afternoon Clock
	Late      Clock

	mode      models.Mode
	indexOpen *float64
	fired     map[string]bool
	date      string // YYYYMMDD of the current trading day
}

// -----------------------------------------------------------------------------

// NewSession starts a session in MORNING mode for the given trading date.
func NewSession(morning, afternoon, late Clock, date string) *Session {
	return &Session{
		Morning:   morning,
		Afternoon: afternoon,
		Late:      late,
		mode:      models.ModeMorning,
		fired:     make(map[string]bool),
		date:      date,
	}
}

// -----------------------------------------------------------------------------

// Date returns the session's trading date (YYYYMMDD).
func (s *Session) Date() string { return s.date }

// Mode returns the current session mode.
func (s *Session) Mode() models.Mode { return s.mode }

// IndexOpen returns the latched official index open, nil until captured.
func (s *Session) IndexOpen() *float64 { return s.indexOpen }

// -----------------------------------------------------------------------------

// RollDay resets the session for a new trading date: mode back to MORNING,
// official open unlatched, all gates re-armed.
func (s *Session) RollDay(date string) {
	s.mode = models.ModeMorning
	s.indexOpen = nil
	s.fired = make(map[string]bool)
	s.date = date
}

// -----------------------------------------------------------------------------

// LatchIndexOpen captures the official index opening price once wall-clock
// time has reached the afternoon threshold. The first valid (> 0) candidate
// wins; later readings never overwrite it.
func (s *Session) LatchIndexOpen(now time.Time, candidates ...*float64) bool {
	if s.indexOpen != nil || !s.Afternoon.Reached(now) {
		return false
	}
	for _, c := range candidates {
		if v := models.Num(c); v != nil && *v > 0 {
			s.indexOpen = models.F(*v)
			return true
		}
	}
	return false
}

// -----------------------------------------------------------------------------

// Advance evaluates the mode transition. MORNING switches to AFTERNOON only
// once the threshold time has passed AND the official open is latched AND a
// cross-market spread is available; until then captures degrade to the
// morning anchor rather than switching to one that does not exist yet.
// There is no reverse transition within a session.
func (s *Session) Advance(now time.Time, spread *float64) (models.MAnchor, models.Mode) {
	if s.mode == models.ModeMorning &&
		s.Afternoon.Reached(now) &&
		s.indexOpen != nil && *s.indexOpen != 0 &&
		spread != nil {
		s.mode = models.ModeAfternoon
	}

	if s.mode == models.ModeAfternoon {
		return models.MAnchor{Value: models.F(*s.indexOpen), Label: models.AnchorOpen}, s.mode
	}
	return models.MAnchor{Label: models.AnchorVWAP}, s.mode
}

// -----------------------------------------------------------------------------

// GateDue reports whether a gate's threshold has been reached and it has not
// fired yet. A due gate whose inputs are missing is simply retried on the
// next tick; it never expires within the day.
func (s *Session) GateDue(name string, now time.Time) bool {
	if s.fired[name] {
		return false
	}
	switch name {
	case GateMorning:
		return s.Morning.Reached(now)
	case GateAfternoon:
		return s.Afternoon.Reached(now)
	case GateLate:
		return s.Late.Reached(now)
	}
	return false
}

// -----------------------------------------------------------------------------

// MarkFired latches a gate for the rest of the day. Idempotent.
func (s *Session) MarkFired(name string) {
	s.fired[name] = true
}

// Fired reports whether a gate has already produced its record today.
func (s *Session) Fired(name string) bool {
	return s.fired[name]
}

// -----------------------------------------------------------------------------

// GateClock returns the wall-clock threshold of a named gate.
func (s *Session) GateClock(name string) Clock {
	switch name {
	case GateAfternoon:
		return s.Afternoon
	case GateLate:
		return s.Late
	default:
		return s.Morning
	}
}
