// Package resolution drives a single drift event from first presentation to
// its recorded outcome. One Machine instance is one flow: it pins the wall
// clock and the day's schedule at construction so every partition inside the
// flow sees the same split.
package resolution

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/Chabota512/forge-drift/internal/logger"
	"github.com/Chabota512/forge-drift/internal/models"
	"github.com/Chabota512/forge-drift/internal/replan"
	"github.com/Chabota512/forge-drift/internal/schedule"
	"github.com/Chabota512/forge-drift/internal/storage"
	"github.com/Chabota512/forge-drift/internal/utils"
)

// State is where a resolution flow currently stands.
type State int

const (
	// StateChoice presents the three ways out: AI, manual, dismiss.
	StateChoice State = iota
	// StatePreview shows the AI suggestion pending apply or back.
	StatePreview
	// StateSuccess is terminal; the surface auto-closes from here.
	StateSuccess
	// StateClosed means the flow has handed control back to the host.
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateChoice:
		return "choice"
	case StatePreview:
		return "preview"
	case StateSuccess:
		return "success"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// Outcome records how the flow ended.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeApplied
	OutcomeManual
	OutcomeDismissed
)

var (
	// ErrInvalidTransition means the requested action does not exist in the
	// current state.
	ErrInvalidTransition = errors.New("action not available in current state")
	// ErrRequestInFlight rejects re-entrant triggering while a boundary call
	// is outstanding.
	ErrRequestInFlight = errors.New("a request is already in flight")
)

// Machine is the resolution state machine for one drift event.
type Machine struct {
	store     storage.Provider
	requester replan.Requester

	event      models.DriftEvent
	day        models.DailySchedule
	now        string
	nowMinutes int
	flowID     string

	mu         sync.Mutex
	state      State
	inFlight   bool
	suggestion []models.TimeBlock
	applied    []models.TimeBlock
	outcome    Outcome
}

// NewMachine starts a resolution flow for event against the day's schedule
// snapshot. now is the flow's single wall-clock sample in HH:MM form; both
// the AI request and the later apply partition with it.
func NewMachine(store storage.Provider, requester replan.Requester, event models.DriftEvent, day models.DailySchedule, now string) (*Machine, error) {
	nowMinutes, err := utils.ParseTimeToMinutes(now)
	if err != nil {
		return nil, fmt.Errorf("invalid current time %q: %w", now, err)
	}

	return &Machine{
		store:      store,
		requester:  requester,
		event:      event,
		day:        day,
		now:        now,
		nowMinutes: nowMinutes,
		flowID:     uuid.NewString(),
		state:      StateChoice,
	}, nil
}

func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Machine) Outcome() Outcome {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.outcome
}

// Suggestion returns the AI proposal held for preview, nil outside preview.
func (m *Machine) Suggestion() []models.TimeBlock {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.suggestion
}

// Applied returns the full merged schedule written on apply, nil before.
func (m *Machine) Applied() []models.TimeBlock {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.applied
}

func (m *Machine) Event() models.DriftEvent {
	return m.event
}

func (m *Machine) Now() string {
	return m.now
}

func (m *Machine) FlowID() string {
	return m.flowID
}

// Remaining returns the not-yet-passed part of the day at the flow's pinned
// clock.
func (m *Machine) Remaining() []models.TimeBlock {
	return schedule.Split(m.day.Blocks, m.nowMinutes).Remaining
}

// RequestAI asks the re-planner for a revised remainder and moves to
// preview. With nothing left to reschedule it refuses without calling out
// and stays in choice; on any failure it also stays in choice so the user
// can retry.
func (m *Machine) RequestAI(ctx context.Context) error {
	m.mu.Lock()
	if m.state != StateChoice {
		m.mu.Unlock()
		return ErrInvalidTransition
	}
	if m.inFlight {
		m.mu.Unlock()
		return ErrRequestInFlight
	}

	remaining := schedule.Split(m.day.Blocks, m.nowMinutes).Remaining
	if len(remaining) == 0 {
		m.mu.Unlock()
		return replan.ErrNoRemainingBlocks
	}

	m.inFlight = true
	m.mu.Unlock()

	revised, err := m.requester.RequestReschedule(ctx, replan.Request{
		DriftEventID:    m.event.ID,
		ScheduleDate:    m.event.ScheduleDate,
		CurrentTime:     m.now,
		RemainingBlocks: remaining,
	})

	m.mu.Lock()
	defer m.mu.Unlock()
	m.inFlight = false
	if err != nil {
		return err
	}

	m.suggestion = revised
	m.state = StatePreview
	return nil
}

// Back returns from preview to choice. No external calls are made.
func (m *Machine) Back() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StatePreview {
		return ErrInvalidTransition
	}
	if m.inFlight {
		return ErrRequestInFlight
	}
	m.suggestion = nil
	m.state = StateChoice
	return nil
}

// Apply persists the merged day and resolves the event with choice "ai".
// The schedule replace and the resolve are two writes; only when both
// succeed does the machine reach success. A failure in either leaves it in
// preview for a retry. A resolve failure after a successful replace leaves
// the schedule updated and the event unresolved, which a retried apply
// repairs.
func (m *Machine) Apply() error {
	m.mu.Lock()
	if m.state != StatePreview {
		m.mu.Unlock()
		return ErrInvalidTransition
	}
	if m.inFlight {
		m.mu.Unlock()
		return ErrRequestInFlight
	}

	past := schedule.Split(m.day.Blocks, m.nowMinutes).Past
	newBlocks := schedule.Merge(past, m.suggestion)
	m.inFlight = true
	m.mu.Unlock()

	err := m.applyWrites(newBlocks)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.inFlight = false
	if err != nil {
		return err
	}

	m.applied = newBlocks
	m.state = StateSuccess
	m.outcome = OutcomeApplied
	return nil
}

func (m *Machine) applyWrites(newBlocks []models.TimeBlock) error {
	if err := m.store.SaveSchedule(m.event.ScheduleDate, newBlocks); err != nil {
		return fmt.Errorf("failed to save revised schedule: %w", err)
	}

	serialized, err := json.Marshal(newBlocks)
	if err != nil {
		return fmt.Errorf("failed to serialize revised schedule: %w", err)
	}

	if err := m.store.ResolveDriftEvent(m.event.ID, models.ChoiceAI, string(serialized)); err != nil {
		// A previous apply may have resolved the event already; the schedule
		// write above is then a repeat of the same content and the flow is done.
		if errors.Is(err, storage.ErrEventResolved) {
			return nil
		}
		return fmt.Errorf("schedule saved but event not resolved: %w", err)
	}
	return nil
}

// Manual resolves the event with choice "manual" and exits so the host can
// open its editing surface. The flow exits even when the write fails; the
// error is returned for display only.
func (m *Machine) Manual() error {
	m.mu.Lock()
	if m.state != StateChoice {
		m.mu.Unlock()
		return ErrInvalidTransition
	}
	if m.inFlight {
		m.mu.Unlock()
		return ErrRequestInFlight
	}
	m.inFlight = true
	m.mu.Unlock()

	err := m.store.ResolveDriftEvent(m.event.ID, models.ChoiceManual, "")

	m.mu.Lock()
	defer m.mu.Unlock()
	m.inFlight = false
	m.suggestion = nil
	m.state = StateClosed
	m.outcome = OutcomeManual
	if err != nil {
		return fmt.Errorf("failed to record manual resolution: %w", err)
	}
	return nil
}

// Dismiss resolves the event with choice "dismissed" and exits. The write
// is best effort: a failure is logged and swallowed so the user is never
// trapped in the flow, at the cost of the event staying unresolved in the
// store.
func (m *Machine) Dismiss() {
	m.mu.Lock()
	if m.state != StateChoice || m.inFlight {
		m.mu.Unlock()
		return
	}
	m.inFlight = true
	m.mu.Unlock()

	err := m.store.ResolveDriftEvent(m.event.ID, models.ChoiceDismissed, "")
	if err != nil {
		logger.Warn("Failed to record dismissal", "event_id", m.event.ID, "flow_id", m.flowID, "error", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.inFlight = false
	m.suggestion = nil
	m.state = StateClosed
	m.outcome = OutcomeDismissed
}

// CloseSuccess moves from success to closed and clears the held suggestion.
// The host calls this after the success surface has lingered.
func (m *Machine) CloseSuccess() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateSuccess {
		return ErrInvalidTransition
	}
	m.suggestion = nil
	m.state = StateClosed
	return nil
}
