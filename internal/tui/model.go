// Package tui is the watch surface: it polls the drift tracker, surfaces
// pending events into the resolution flow, and hosts the manual day editor.
package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/Chabota512/forge-drift/internal/constants"
	"github.com/Chabota512/forge-drift/internal/drift"
	"github.com/Chabota512/forge-drift/internal/models"
	"github.com/Chabota512/forge-drift/internal/replan"
	"github.com/Chabota512/forge-drift/internal/resolution"
	"github.com/Chabota512/forge-drift/internal/storage"
	"github.com/Chabota512/forge-drift/internal/tui/components/dayview"
	"github.com/Chabota512/forge-drift/internal/tui/components/editor"
	"github.com/Chabota512/forge-drift/internal/tui/components/events"
	"github.com/Chabota512/forge-drift/internal/tui/components/flow"
	"github.com/Chabota512/forge-drift/internal/tui/handlers"
	"github.com/Chabota512/forge-drift/internal/utils"
)

type Model struct {
	store     storage.Provider
	tracker   *drift.Tracker
	requester replan.Requester

	state   constants.SessionState
	keys    KeyMap
	help    help.Model
	date    string
	machine *resolution.Machine

	eventList events.Model
	dayView   dayview.Model
	flowPanel flow.Model
	dayEditor editor.Model

	form      *huh.Form
	blockForm *handlers.BlockFormModel
	editIndex int

	// pendingSurface is the event id armed to open after the surface delay,
	// so one poll cycle cannot arm the same event twice.
	pendingSurface int64

	statusMsg string
	quitting  bool
	width     int
	height    int
}

func NewModel(store storage.Provider, tracker *drift.Tracker, requester replan.Requester) Model {
	date := utils.Today()

	m := Model{
		store:     store,
		tracker:   tracker,
		requester: requester,
		state:     constants.StateEvents,
		keys:      DefaultKeyMap(),
		help:      help.New(),
		date:      date,
		eventList: events.New(nil, 0, 0),
		dayView:   dayview.New(0, 0),
		flowPanel: flow.New(0, 0),
		dayEditor: editor.New(0, 0),
	}

	if day, err := store.GetSchedule(date); err == nil {
		m.dayView.SetSchedule(day)
	}
	if all, err := store.ListDriftEvents(date); err == nil {
		m.eventList.SetEvents(all)
	}

	return m
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Tab, m.keys.Quit, m.keys.Help}
	if m.state == constants.StateEvents {
		keys = append(keys, m.keys.Enter, m.keys.Refresh)
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Tab, m.keys.ShiftTab, m.keys.Quit, m.keys.Help}
	navigation := []key.Binding{m.keys.Up, m.keys.Down, m.keys.Enter, m.keys.Refresh}
	return [][]key.Binding{global, navigation}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.dayView.Init(),
		pollTick(),
		func() tea.Msg { return m.loadEvents() },
	)
}

// Messages private to the watch loop.
type (
	pollMsg    time.Time
	aiResult   struct{ err error }
	applyDone  struct{ err error }
	surfaceMsg struct{ id int64 }

	successTimeout  struct{}
	eventsLoadedMsg struct {
		events  []models.DriftEvent
		next    models.DriftEvent
		hasNext bool
		err     error
	}
)

func pollTick() tea.Cmd {
	return tea.Tick(constants.TrackerPollInterval, func(t time.Time) tea.Msg {
		return pollMsg(t)
	})
}

func surfaceAfterDelay(id int64) tea.Cmd {
	return tea.Tick(constants.DriftSurfaceDelay, func(time.Time) tea.Msg {
		return surfaceMsg{id: id}
	})
}

func successCloseAfterDelay() tea.Cmd {
	return tea.Tick(constants.SuccessCloseDelay, func(time.Time) tea.Msg {
		return successTimeout{}
	})
}

// loadEvents reads today's events and the tracker's pick for the next
// surfaced one. Runs inside a tea.Cmd.
func (m Model) loadEvents() tea.Msg {
	all, err := m.store.ListDriftEvents(m.date)
	if err != nil {
		return eventsLoadedMsg{err: err}
	}
	next, ok, err := m.tracker.Next(m.date)
	if err != nil {
		return eventsLoadedMsg{events: all, err: err}
	}
	return eventsLoadedMsg{events: all, next: next, hasNext: ok}
}

func (m Model) refreshCmd() tea.Cmd {
	return func() tea.Msg { return m.loadEvents() }
}

// openFlow loads the event's day and starts a resolution machine over it.
func (m *Model) openFlow(event models.DriftEvent) {
	day, err := m.store.GetSchedule(event.ScheduleDate)
	if err != nil {
		m.statusMsg = "Cannot open event: " + err.Error()
		return
	}
	machine, err := resolution.NewMachine(m.store, m.requester, event, day, utils.FormatClock(time.Now()))
	if err != nil {
		m.statusMsg = "Cannot open event: " + err.Error()
		return
	}
	m.machine = machine
	m.flowPanel.SetMachine(machine)
	m.statusMsg = ""
	m.state = constants.StateResolution
}

func (m *Model) closeFlow() {
	m.machine = nil
	m.flowPanel.SetMachine(nil)
	m.pendingSurface = 0
	m.state = constants.StateEvents
}

// openEditor loads the flow's day into the manual editor. The resolution
// machine has already recorded the manual choice by the time this runs.
func (m *Model) openEditor(date string) {
	day, err := m.store.GetSchedule(date)
	if err != nil {
		m.statusMsg = "Cannot edit schedule: " + err.Error()
		m.state = constants.StateEvents
		return
	}
	m.dayEditor.SetDay(date, day.Blocks)
	m.state = constants.StateEditor
}

func (m *Model) reloadDayView() {
	if day, err := m.store.GetSchedule(m.date); err == nil {
		m.dayView.SetSchedule(day)
	}
}
