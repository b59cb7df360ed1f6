package state

import (
	"sync"

	"github.com/annalisadamore06-jpg/es-trading-dashboard/src/models"
	"github.com/annalisadamore06-jpg/es-trading-dashboard/src/utils"
)

// -----------------------------------------------------------------------------
// Store is the single shared mutable object of the process: written once per
// tick by the aggregation engine, read by any number of concurrent consumers.
// Readers receive deep copies, so a half-written tick is never observable and
// readers never block the writer beyond the lock hold of one copy.
// -----------------------------------------------------------------------------

type Store struct {
	mu      sync.RWMutex
	current models.MDashboardState
	ring    *utils.TickRing
}

// -----------------------------------------------------------------------------

// NewStore creates the store once at process start, all fields empty.
func NewStore(ringCapacity int) *Store {
	return &Store{
		current: models.MDashboardState{
			Mode:      models.ModeMorning,
			Anchor:    models.MAnchor{Label: models.AnchorVWAP},
			Snapshots: make(map[string]models.MSnapshotRecord),
		},
		ring: utils.NewTickRing(ringCapacity),
	}
}

// -----------------------------------------------------------------------------

// Publish replaces the whole state in one critical section. The engine is the
// only caller.
func (s *Store) Publish(st models.MDashboardState) {
	s.mu.Lock()
	// Captured snapshots outlive the tick that produced them.
	if st.Snapshots == nil {
		st.Snapshots = s.current.Snapshots
	}
	s.current = st
	s.mu.Unlock()
}

// -----------------------------------------------------------------------------

// PutSnapshot stores a newly fired snapshot record under its slot key.
func (s *Store) PutSnapshot(slot string, rec models.MSnapshotRecord) {
	s.mu.Lock()
	s.current.Snapshots[slot] = rec
	s.mu.Unlock()
}

// -----------------------------------------------------------------------------

// HasSnapshot reports whether a slot already holds a persisted capture for
// the current day.
func (s *Store) HasSnapshot(slot string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.current.Snapshots[slot]
	return ok
}

// -----------------------------------------------------------------------------

// SetConnected flips the connectivity flag without touching the metrics.
func (s *Store) SetConnected(connected bool) {
	s.mu.Lock()
	s.current.Connected = connected
	s.mu.Unlock()
}

// -----------------------------------------------------------------------------

// ResetDay clears the day-scoped captures (snapshots) while keeping the rest
// of the state. Called by the engine on a trading-day rollover.
func (s *Store) ResetDay() {
	s.mu.Lock()
	s.current.Snapshots = make(map[string]models.MSnapshotRecord)
	s.current.Mode = models.ModeMorning
	s.current.Anchor = models.MAnchor{Label: models.AnchorVWAP}
	s.current.IndexOpen = nil
	s.mu.Unlock()
}

// -----------------------------------------------------------------------------

// AppendTick records one tick in the bounded ring.
func (s *Store) AppendTick(rec models.MTickRecord) {
	s.mu.Lock()
	s.ring.Append(rec)
	s.mu.Unlock()
}

// -----------------------------------------------------------------------------

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() models.MDashboardState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Clone()
}

// -----------------------------------------------------------------------------

// RecentTicks returns the n most recent tick records, oldest first.
func (s *Store) RecentTicks(n int) []models.MTickRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ring.GetLatest(n)
}

// -----------------------------------------------------------------------------

// TickCount reports how many ticks the ring currently holds.
func (s *Store) TickCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ring.Size()
}
