package remote

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Chabota512/forge-drift/internal/backend"
	"github.com/Chabota512/forge-drift/internal/models"
	"github.com/Chabota512/forge-drift/internal/storage"
)

// newTestStore points a store at an httptest server, skipping lockfile
// discovery.
func newTestStore(t *testing.T, handler http.Handler) (*Store, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	port := strings.TrimPrefix(server.URL, "http://127.0.0.1:")
	store := NewStore("")
	store.endpoint = backend.Endpoint{Port: port, Secret: "s3cret"}
	return store, server
}

func TestGetSchedule(t *testing.T) {
	store, _ := newTestStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method = %s, want GET", r.Method)
		}
		if r.URL.Path != "/api/schedules/2025-06-01" {
			t.Errorf("path = %s, want /api/schedules/2025-06-01", r.URL.Path)
		}
		if r.Header.Get("X-Forge-Secret") != "s3cret" {
			t.Errorf("secret header = %q, want s3cret", r.Header.Get("X-Forge-Secret"))
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Error("request id header is empty")
		}
		json.NewEncoder(w).Encode(models.DailySchedule{
			Date: "2025-06-01",
			Blocks: []models.TimeBlock{
				{StartTime: "09:00", EndTime: "10:30", Type: models.BlockTypeStudy, Title: "Study Math"},
			},
		})
	}))

	schedule, err := store.GetSchedule("2025-06-01")
	if err != nil {
		t.Fatalf("GetSchedule() error = %v", err)
	}
	if schedule.Date != "2025-06-01" || len(schedule.Blocks) != 1 {
		t.Errorf("GetSchedule() = %+v, want one block for 2025-06-01", schedule)
	}
	if schedule.Blocks[0].Title != "Study Math" {
		t.Errorf("GetSchedule() block title = %q, want Study Math", schedule.Blocks[0].Title)
	}
}

func TestGetScheduleNotFound(t *testing.T) {
	store, _ := newTestStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	_, err := store.GetSchedule("2025-06-02")
	if !errors.Is(err, storage.ErrNoSchedule) {
		t.Errorf("GetSchedule() error = %v, want ErrNoSchedule", err)
	}
}

func TestSaveSchedule(t *testing.T) {
	var gotPayload struct {
		Date       string             `json:"date"`
		TimeBlocks []models.TimeBlock `json:"timeBlocks"`
	}
	store, _ := newTestStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("method = %s, want PUT", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotPayload); err != nil {
			t.Errorf("failed to decode payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))

	blocks := []models.TimeBlock{
		{StartTime: "09:00", EndTime: "10:00", Type: models.BlockTypeStudy, Title: "Study Math"},
		{StartTime: "10:00", EndTime: "10:30", Type: models.BlockTypeBreak, Title: "Break"},
	}
	if err := store.SaveSchedule("2025-06-01", blocks); err != nil {
		t.Fatalf("SaveSchedule() error = %v", err)
	}
	if gotPayload.Date != "2025-06-01" {
		t.Errorf("payload date = %q, want 2025-06-01", gotPayload.Date)
	}
	if len(gotPayload.TimeBlocks) != 2 {
		t.Errorf("payload carried %d blocks, want 2", len(gotPayload.TimeBlocks))
	}
}

func TestListUnresolvedDriftEvents(t *testing.T) {
	store, _ := newTestStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/drift-events/unresolved" {
			t.Errorf("path = %s, want /api/drift-events/unresolved", r.URL.Path)
		}
		if r.URL.Query().Get("date") != "2025-06-01" {
			t.Errorf("date query = %q, want 2025-06-01", r.URL.Query().Get("date"))
		}
		json.NewEncoder(w).Encode(map[string][]models.DriftEvent{
			"driftEvents": {
				{ID: 1, ScheduleDate: "2025-06-01", BlockTitle: "Study Math", CumulativeDriftMinutes: 25},
				{ID: 3, ScheduleDate: "2025-06-01", BlockTitle: "Chemistry Lab", CumulativeDriftMinutes: 40},
			},
		})
	}))

	events, err := store.ListUnresolvedDriftEvents("2025-06-01")
	if err != nil {
		t.Fatalf("ListUnresolvedDriftEvents() error = %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("ListUnresolvedDriftEvents() returned %d events, want 2", len(events))
	}
	if events[0].ID != 1 || events[1].ID != 3 {
		t.Errorf("ListUnresolvedDriftEvents() ids = [%d %d], want [1 3]", events[0].ID, events[1].ID)
	}
}

func TestCreateDriftEvent(t *testing.T) {
	store, _ := newTestStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var event models.DriftEvent
		if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
			t.Errorf("failed to decode payload: %v", err)
		}
		event.ID = 42
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(event)
	}))

	created, err := store.CreateDriftEvent(models.DriftEvent{
		ScheduleDate:           "2025-06-01",
		BlockTitle:             "Study Math",
		PlannedDurationMinutes: 90,
		ActualDurationMinutes:  115,
	})
	if err != nil {
		t.Fatalf("CreateDriftEvent() error = %v", err)
	}
	if created.ID != 42 {
		t.Errorf("CreateDriftEvent() id = %d, want 42", created.ID)
	}
}

func TestResolveDriftEvent(t *testing.T) {
	var gotPayload struct {
		UserChoice      string `json:"userChoice"`
		NewScheduleData string `json:"newScheduleData"`
	}
	store, _ := newTestStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/drift-events/7/resolve" {
			t.Errorf("path = %s, want /api/drift-events/7/resolve", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotPayload); err != nil {
			t.Errorf("failed to decode payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))

	if err := store.ResolveDriftEvent(7, models.ChoiceAI, `{"blocks":[]}`); err != nil {
		t.Fatalf("ResolveDriftEvent() error = %v", err)
	}
	if gotPayload.UserChoice != "ai" {
		t.Errorf("payload userChoice = %q, want ai", gotPayload.UserChoice)
	}
	if gotPayload.NewScheduleData != `{"blocks":[]}` {
		t.Errorf("payload newScheduleData = %q, want recorded payload", gotPayload.NewScheduleData)
	}
}

func TestResolveDriftEventConflict(t *testing.T) {
	store, _ := newTestStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))

	err := store.ResolveDriftEvent(7, models.ChoiceManual, "")
	if !errors.Is(err, storage.ErrEventResolved) {
		t.Errorf("ResolveDriftEvent() error = %v, want ErrEventResolved", err)
	}
}

func TestResolveDriftEventNotFound(t *testing.T) {
	store, _ := newTestStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	err := store.ResolveDriftEvent(7, models.ChoiceManual, "")
	if !errors.Is(err, storage.ErrEventNotFound) {
		t.Errorf("ResolveDriftEvent() error = %v, want ErrEventNotFound", err)
	}
}

func TestMutationsAreSentOnce(t *testing.T) {
	attempts := 0
	store, _ := newTestStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusInternalServerError)
	}))

	err := store.SaveSchedule("2025-06-01", nil)
	if err == nil || !strings.Contains(err.Error(), "status 500") {
		t.Errorf("SaveSchedule() error = %v, want status 500", err)
	}
	if attempts != 1 {
		t.Errorf("server saw %d attempts, want exactly 1", attempts)
	}
}
