package sqlite

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/Chabota512/forge-drift/internal/models"
	"github.com/Chabota512/forge-drift/internal/storage"
)

// setupTestStore creates a fully migrated store backed by a temp file.
func setupTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store := NewStore(dbPath)
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init test store: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

func testBlocks() []models.TimeBlock {
	return []models.TimeBlock{
		{StartTime: "09:00", EndTime: "10:30", Type: models.BlockTypeStudy, Title: "Study Math", Priority: 2},
		{StartTime: "10:30", EndTime: "11:00", Type: models.BlockTypeBreak, Title: "Break", Priority: 0},
		{
			StartTime: "11:00",
			EndTime:   "12:00",
			Type:      models.BlockTypeMission,
			Title:     "Chemistry Lab",
			Priority:  1,
			Adjustment: &models.BlockAdjustment{
				WasRescheduled:        true,
				OriginalStartTime:     "10:45",
				DurationChangeMinutes: -15,
			},
		},
	}
}

func TestSaveAndGetSchedule(t *testing.T) {
	store := setupTestStore(t)
	blocks := testBlocks()

	if err := store.SaveSchedule("2025-06-01", blocks); err != nil {
		t.Fatalf("SaveSchedule() error = %v", err)
	}

	got, err := store.GetSchedule("2025-06-01")
	if err != nil {
		t.Fatalf("GetSchedule() error = %v", err)
	}

	if got.Date != "2025-06-01" {
		t.Errorf("GetSchedule() date = %q, want %q", got.Date, "2025-06-01")
	}
	if got.GeneratedAt.IsZero() {
		t.Error("GetSchedule() generatedAt is zero, want save timestamp")
	}
	if len(got.Blocks) != len(blocks) {
		t.Fatalf("GetSchedule() returned %d blocks, want %d", len(got.Blocks), len(blocks))
	}
	for i, block := range got.Blocks {
		if block.Title != blocks[i].Title {
			t.Errorf("block %d title = %q, want %q (order must follow save order)", i, block.Title, blocks[i].Title)
		}
		if block.StartTime != blocks[i].StartTime || block.EndTime != blocks[i].EndTime {
			t.Errorf("block %d times = %s-%s, want %s-%s", i, block.StartTime, block.EndTime, blocks[i].StartTime, blocks[i].EndTime)
		}
		if block.Type != blocks[i].Type || block.Priority != blocks[i].Priority {
			t.Errorf("block %d type/priority = %s/%d, want %s/%d", i, block.Type, block.Priority, blocks[i].Type, blocks[i].Priority)
		}
	}

	adj := got.Blocks[2].Adjustment
	if adj == nil {
		t.Fatal("block 2 adjustment = nil, want preserved metadata")
	}
	if !adj.WasRescheduled || adj.OriginalStartTime != "10:45" || adj.DurationChangeMinutes != -15 {
		t.Errorf("block 2 adjustment = %+v, want {true 10:45 -15}", *adj)
	}
	if got.Blocks[0].Adjustment != nil {
		t.Errorf("block 0 adjustment = %+v, want nil", *got.Blocks[0].Adjustment)
	}
}

func TestSaveScheduleReplacesExisting(t *testing.T) {
	store := setupTestStore(t)

	if err := store.SaveSchedule("2025-06-01", testBlocks()); err != nil {
		t.Fatalf("SaveSchedule() error = %v", err)
	}

	revised := []models.TimeBlock{
		{StartTime: "13:00", EndTime: "14:00", Type: models.BlockTypeStudy, Title: "Revised Study", Priority: 1},
	}
	if err := store.SaveSchedule("2025-06-01", revised); err != nil {
		t.Fatalf("SaveSchedule() second call error = %v", err)
	}

	got, err := store.GetSchedule("2025-06-01")
	if err != nil {
		t.Fatalf("GetSchedule() error = %v", err)
	}
	if len(got.Blocks) != 1 {
		t.Fatalf("GetSchedule() after replace returned %d blocks, want 1", len(got.Blocks))
	}
	if got.Blocks[0].Title != "Revised Study" {
		t.Errorf("GetSchedule() block title = %q, want %q", got.Blocks[0].Title, "Revised Study")
	}
}

func TestGetScheduleMissingDate(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.GetSchedule("2025-06-02")
	if !errors.Is(err, storage.ErrNoSchedule) {
		t.Errorf("GetSchedule() error = %v, want ErrNoSchedule", err)
	}
}

func TestCreateAndGetDriftEvent(t *testing.T) {
	store := setupTestStore(t)

	created, err := store.CreateDriftEvent(models.DriftEvent{
		ScheduleDate:           "2025-06-01",
		BlockTitle:             "Study Math",
		BlockStartTime:         "09:00",
		PlannedDurationMinutes: 90,
		ActualDurationMinutes:  115,
		CumulativeDriftMinutes: 25,
		AffectedBlocksCount:    3,
	})
	if err != nil {
		t.Fatalf("CreateDriftEvent() error = %v", err)
	}
	if created.ID == 0 {
		t.Error("CreateDriftEvent() did not assign an id")
	}
	if created.Resolved {
		t.Error("CreateDriftEvent() returned resolved = true, want false")
	}

	got, err := store.GetDriftEvent(created.ID)
	if err != nil {
		t.Fatalf("GetDriftEvent() error = %v", err)
	}
	if got.BlockTitle != "Study Math" || got.CumulativeDriftMinutes != 25 || got.AffectedBlocksCount != 3 {
		t.Errorf("GetDriftEvent() = %+v, want created event fields", got)
	}
	if got.UserChoice != "" {
		t.Errorf("GetDriftEvent() userChoice = %q, want empty before resolution", got.UserChoice)
	}
}

func TestGetDriftEventNotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.GetDriftEvent(999)
	if !errors.Is(err, storage.ErrEventNotFound) {
		t.Errorf("GetDriftEvent() error = %v, want ErrEventNotFound", err)
	}
}

func TestListUnresolvedDriftEvents(t *testing.T) {
	store := setupTestStore(t)

	var ids []int64
	for _, title := range []string{"Study Math", "Break", "Chemistry Lab"} {
		event, err := store.CreateDriftEvent(models.DriftEvent{
			ScheduleDate:           "2025-06-01",
			BlockTitle:             title,
			BlockStartTime:         "09:00",
			PlannedDurationMinutes: 60,
			ActualDurationMinutes:  75,
			CumulativeDriftMinutes: 15,
		})
		if err != nil {
			t.Fatalf("CreateDriftEvent(%q) error = %v", title, err)
		}
		ids = append(ids, event.ID)
	}

	// Event on a different date must not leak into the listing
	if _, err := store.CreateDriftEvent(models.DriftEvent{
		ScheduleDate:           "2025-06-02",
		BlockTitle:             "Other Day",
		BlockStartTime:         "09:00",
		PlannedDurationMinutes: 60,
		ActualDurationMinutes:  80,
		CumulativeDriftMinutes: 20,
	}); err != nil {
		t.Fatalf("CreateDriftEvent() error = %v", err)
	}

	if err := store.ResolveDriftEvent(ids[1], models.ChoiceDismissed, ""); err != nil {
		t.Fatalf("ResolveDriftEvent() error = %v", err)
	}

	events, err := store.ListUnresolvedDriftEvents("2025-06-01")
	if err != nil {
		t.Fatalf("ListUnresolvedDriftEvents() error = %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("ListUnresolvedDriftEvents() returned %d events, want 2", len(events))
	}
	if events[0].ID != ids[0] || events[1].ID != ids[2] {
		t.Errorf("ListUnresolvedDriftEvents() order = [%d %d], want oldest first [%d %d]", events[0].ID, events[1].ID, ids[0], ids[2])
	}

	all, err := store.ListDriftEvents("2025-06-01")
	if err != nil {
		t.Fatalf("ListDriftEvents() error = %v", err)
	}
	if len(all) != 3 {
		t.Errorf("ListDriftEvents() returned %d events, want 3", len(all))
	}
}

func TestResolveDriftEventOnce(t *testing.T) {
	store := setupTestStore(t)

	event, err := store.CreateDriftEvent(models.DriftEvent{
		ScheduleDate:           "2025-06-01",
		BlockTitle:             "Study Math",
		BlockStartTime:         "09:00",
		PlannedDurationMinutes: 90,
		ActualDurationMinutes:  115,
		CumulativeDriftMinutes: 25,
	})
	if err != nil {
		t.Fatalf("CreateDriftEvent() error = %v", err)
	}

	if err := store.ResolveDriftEvent(event.ID, models.ChoiceAI, `{"blocks":[]}`); err != nil {
		t.Fatalf("ResolveDriftEvent() error = %v", err)
	}

	got, err := store.GetDriftEvent(event.ID)
	if err != nil {
		t.Fatalf("GetDriftEvent() error = %v", err)
	}
	if !got.Resolved {
		t.Error("GetDriftEvent() resolved = false after resolution, want true")
	}
	if got.UserChoice != models.ChoiceAI {
		t.Errorf("GetDriftEvent() userChoice = %q, want %q", got.UserChoice, models.ChoiceAI)
	}
	if got.NewScheduleData != `{"blocks":[]}` {
		t.Errorf("GetDriftEvent() newScheduleData = %q, want recorded payload", got.NewScheduleData)
	}

	// Second attempt must not overwrite the first choice
	err = store.ResolveDriftEvent(event.ID, models.ChoiceManual, "")
	if !errors.Is(err, storage.ErrEventResolved) {
		t.Errorf("ResolveDriftEvent() second call error = %v, want ErrEventResolved", err)
	}

	got, err = store.GetDriftEvent(event.ID)
	if err != nil {
		t.Fatalf("GetDriftEvent() error = %v", err)
	}
	if got.UserChoice != models.ChoiceAI {
		t.Errorf("GetDriftEvent() userChoice after rejected resolve = %q, want %q", got.UserChoice, models.ChoiceAI)
	}
}

func TestResolveDriftEventErrors(t *testing.T) {
	store := setupTestStore(t)

	if err := store.ResolveDriftEvent(42, models.ChoiceManual, ""); !errors.Is(err, storage.ErrEventNotFound) {
		t.Errorf("ResolveDriftEvent() unknown id error = %v, want ErrEventNotFound", err)
	}

	event, err := store.CreateDriftEvent(models.DriftEvent{
		ScheduleDate:           "2025-06-01",
		BlockTitle:             "Study Math",
		BlockStartTime:         "09:00",
		PlannedDurationMinutes: 60,
		ActualDurationMinutes:  90,
		CumulativeDriftMinutes: 30,
	})
	if err != nil {
		t.Fatalf("CreateDriftEvent() error = %v", err)
	}
	if err := store.ResolveDriftEvent(event.ID, models.ResolutionChoice("later"), ""); err == nil {
		t.Error("ResolveDriftEvent() with invalid choice succeeded, want error")
	}
}

func TestLoadRequiresInit(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "missing.db")
	store := NewStore(dbPath)

	if err := store.Load(); err == nil {
		t.Error("Load() on uninitialized path succeeded, want error")
	}
}
