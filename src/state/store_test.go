package state

import (
	"sync"
	"testing"

	"github.com/annalisadamore06-jpg/es-trading-dashboard/src/models"
)

func TestSnapshotIsDeepCopy(t *testing.T) {
	store := NewStore(10)
	store.Publish(models.MDashboardState{
		Connected:  true,
		FutureLast: models.F(5025.25),
		Anchor:     models.MAnchor{Value: models.F(5020), Label: models.AnchorVWAP},
	})

	snap := store.Snapshot()
	*snap.FutureLast = 0
	*snap.Anchor.Value = 0
	snap.Snapshots["x"] = models.MSnapshotRecord{}

	again := store.Snapshot()
	if *again.FutureLast != 5025.25 {
		t.Fatalf("reader mutation leaked into the store: %v", *again.FutureLast)
	}
	if *again.Anchor.Value != 5020 {
		t.Fatalf("anchor mutation leaked into the store")
	}
	if len(again.Snapshots) != 0 {
		t.Fatalf("snapshot map mutation leaked into the store")
	}
}

func TestPublishKeepsSnapshots(t *testing.T) {
	store := NewStore(10)
	store.PutSnapshot(models.SlotMorningFut, models.MSnapshotRecord{EventLabel: "ES_10:00"})

	// A tick publish with a nil map must not wipe the day's captures.
	store.Publish(models.MDashboardState{Connected: true})

	snap := store.Snapshot()
	if rec, ok := snap.Snapshots[models.SlotMorningFut]; !ok || rec.EventLabel != "ES_10:00" {
		t.Fatalf("capture lost across publish: %+v", snap.Snapshots)
	}
}

func TestResetDay(t *testing.T) {
	store := NewStore(10)
	store.PutSnapshot(models.SlotLateIdx, models.MSnapshotRecord{EventLabel: "SPX_15:45"})
	store.Publish(models.MDashboardState{
		Mode:      models.ModeAfternoon,
		IndexOpen: models.F(5000),
		Anchor:    models.MAnchor{Value: models.F(5000), Label: models.AnchorOpen},
		Snapshots: map[string]models.MSnapshotRecord{models.SlotLateIdx: {EventLabel: "SPX_15:45"}},
	})

	store.ResetDay()

	snap := store.Snapshot()
	if len(snap.Snapshots) != 0 {
		t.Fatalf("captures survived rollover")
	}
	if snap.Mode != models.ModeMorning || snap.Anchor.Label != models.AnchorVWAP {
		t.Fatalf("mode/anchor not reset: %v %v", snap.Mode, snap.Anchor.Label)
	}
	if snap.IndexOpen != nil {
		t.Fatalf("index open survived rollover")
	}
}

func TestRingBound(t *testing.T) {
	store := NewStore(5)
	for i := 0; i < 20; i++ {
		store.AppendTick(models.MTickRecord{})
	}
	if store.TickCount() != 5 {
		t.Fatalf("tick count = %d, want 5", store.TickCount())
	}
	if got := store.RecentTicks(100); len(got) != 5 {
		t.Fatalf("recent = %d, want 5", len(got))
	}
}

func TestConcurrentReaders(t *testing.T) {
	store := NewStore(50)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			store.Publish(models.MDashboardState{Connected: true, FutureLast: models.F(float64(i))})
			store.AppendTick(models.MTickRecord{})
		}
	}()

	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				_ = store.Snapshot()
				_ = store.RecentTicks(10)
			}
		}()
	}

	wg.Wait()
}
