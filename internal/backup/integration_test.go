package backup

import (
	"testing"

	"github.com/Chabota512/forge-drift/internal/models"
	"github.com/Chabota512/forge-drift/internal/storage/sqlite"
)

// Snapshots must round-trip the whole drift domain: a restore rewinds both
// the schedule and the resolution state of its events.
func TestBackupRestoreWorkflow(t *testing.T) {
	dbPath := setupTestDB(t)

	store := sqlite.NewStore(dbPath)
	if err := store.Load(); err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	event, err := store.CreateDriftEvent(models.DriftEvent{
		ScheduleDate:           "2025-06-01",
		BlockTitle:             "Study Math",
		BlockStartTime:         "09:00",
		PlannedDurationMinutes: 60,
		ActualDurationMinutes:  85,
		CumulativeDriftMinutes: 25,
		AffectedBlocksCount:    1,
	})
	if err != nil {
		t.Fatalf("failed to create drift event: %v", err)
	}
	store.Close()

	mgr := NewManager(dbPath)
	info, err := mgr.Create()
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// After the snapshot: resolve the event and shorten the day
	store = sqlite.NewStore(dbPath)
	if err := store.Load(); err != nil {
		t.Fatalf("failed to reopen database: %v", err)
	}
	if err := store.ResolveDriftEvent(event.ID, models.ChoiceDismissed, ""); err != nil {
		t.Fatalf("failed to resolve event: %v", err)
	}
	if err := store.SaveSchedule("2025-06-01", seedBlocks()[:1]); err != nil {
		t.Fatalf("failed to revise schedule: %v", err)
	}
	store.Close()

	if err := mgr.Restore(info.Path); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}

	store = sqlite.NewStore(dbPath)
	if err := store.Load(); err != nil {
		t.Fatalf("failed to open restored database: %v", err)
	}
	defer store.Close()

	restored, err := store.GetDriftEvent(event.ID)
	if err != nil {
		t.Fatalf("failed to read restored event: %v", err)
	}
	if restored.Resolved {
		t.Error("event is resolved after restore, want the pre-snapshot unresolved state")
	}

	day, err := store.GetSchedule("2025-06-01")
	if err != nil {
		t.Fatalf("failed to read restored schedule: %v", err)
	}
	if len(day.Blocks) != 2 {
		t.Errorf("restored schedule has %d blocks, want 2", len(day.Blocks))
	}

	unresolved, err := store.ListUnresolvedDriftEvents("2025-06-01")
	if err != nil {
		t.Fatalf("failed to list unresolved events: %v", err)
	}
	if len(unresolved) != 1 {
		t.Errorf("restored database has %d unresolved events, want 1", len(unresolved))
	}
}
