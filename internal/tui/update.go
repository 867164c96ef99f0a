package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/Chabota512/forge-drift/internal/constants"
	"github.com/Chabota512/forge-drift/internal/models"
	"github.com/Chabota512/forge-drift/internal/replan"
	"github.com/Chabota512/forge-drift/internal/resolution"
	"github.com/Chabota512/forge-drift/internal/tui/components/dayview"
	"github.com/Chabota512/forge-drift/internal/tui/components/editor"
	"github.com/Chabota512/forge-drift/internal/tui/components/events"
	"github.com/Chabota512/forge-drift/internal/tui/handlers"
	"github.com/Chabota512/forge-drift/internal/validation"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	// The clock tick drives the day view in every state and must keep its
	// chain alive even while a modal surface is open.
	if tick, ok := msg.(dayview.TickMsg); ok {
		var cmd tea.Cmd
		m.dayView, cmd = m.dayView.Update(tick)
		return m, cmd
	}

	// Handle Resolution State
	if m.state == constants.StateResolution && m.machine != nil {
		if msg, ok := msg.(tea.KeyMsg); ok {
			if msg.String() == "ctrl+c" {
				m.quitting = true
				return m, tea.Quit
			}
			if m.flowPanel.Requesting {
				return m, nil
			}
			return m.updateResolutionKeys(msg)
		}
		// Async results fall through to the shared switch below.
	}

	// Handle Editor Form State
	if m.state == constants.StateEditorForm {
		if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
			m.state = constants.StateEditor
			return m, nil
		}

		form, cmd := m.form.Update(msg)
		if f, ok := form.(*huh.Form); ok {
			m.form = f
		}
		cmds = append(cmds, cmd)

		switch m.form.State {
		case huh.StateCompleted:
			base := models.TimeBlock{}
			if m.editIndex >= 0 {
				base = m.dayEditor.Blocks()[m.editIndex]
			}
			m.dayEditor.SetBlock(m.editIndex, m.blockForm.Block(base))
			m.state = constants.StateEditor
		case huh.StateAborted:
			m.state = constants.StateEditor
		}
		return m, tea.Batch(cmds...)
	}

	// Handle Confirmation State
	if m.state == constants.StateConfirmation {
		if msg, ok := msg.(tea.KeyMsg); ok {
			switch msg.String() {
			case "y", "Y":
				return m.saveEditedDay()
			case "n", "N", "esc":
				m.state = constants.StateEditor
			case "ctrl+c":
				m.quitting = true
				return m, tea.Quit
			}
		}
		return m, nil
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		listHeight := msg.Height - 4 // Approximate height for tabs + help

		h, v := docStyle.GetFrameSize()
		m.eventList.SetSize(msg.Width-h, listHeight-v)
		m.dayView.SetSize(msg.Width-h, listHeight-v)
		m.flowPanel.SetSize(msg.Width, listHeight)
		m.dayEditor.SetSize(msg.Width-h, listHeight-v)

	case pollMsg:
		return m, tea.Batch(m.refreshCmd(), pollTick())

	case eventsLoadedMsg:
		if msg.err != nil {
			m.statusMsg = "Event refresh failed: " + msg.err.Error()
			return m, nil
		}
		m.eventList.SetEvents(msg.events)
		// Arm auto-surfacing only while the user is idle on a list surface.
		idle := m.state == constants.StateEvents || m.state == constants.StateSchedule
		if idle && m.machine == nil && msg.hasNext && m.pendingSurface != msg.next.ID {
			m.pendingSurface = msg.next.ID
			return m, surfaceAfterDelay(msg.next.ID)
		}
		return m, nil

	case surfaceMsg:
		// The delay has passed; re-check that the event is still the one to
		// show before interrupting.
		idle := m.state == constants.StateEvents || m.state == constants.StateSchedule
		if !idle || m.machine != nil {
			m.pendingSurface = 0
			return m, nil
		}
		next, ok, err := m.tracker.Next(m.date)
		if err != nil || !ok || next.ID != msg.id {
			m.pendingSurface = 0
			return m, nil
		}
		m.openFlow(next)
		return m, nil

	case events.OpenEventMsg:
		// A deliberate open from the list works even for session-dismissed
		// events; only auto-surfacing skips those.
		m.openFlow(msg.Event)
		return m, nil

	case events.RefreshMsg:
		m.statusMsg = ""
		return m, m.refreshCmd()

	case aiResult:
		if m.machine == nil {
			return m, nil
		}
		if msg.err != nil {
			if errors.Is(msg.err, replan.ErrNoRemainingBlocks) {
				m.flowPanel.SetError("Nothing left today to reschedule")
			} else {
				m.flowPanel.SetError(fmt.Sprintf("Reschedule request failed: %v", msg.err))
			}
			return m, nil
		}
		m.flowPanel.SetError("")
		return m, nil

	case applyDone:
		if m.machine == nil {
			return m, nil
		}
		if msg.err != nil {
			m.flowPanel.SetError(fmt.Sprintf("Apply failed: %v", msg.err))
			return m, nil
		}
		m.reloadDayView()
		return m, tea.Batch(m.refreshCmd(), successCloseAfterDelay())

	case successTimeout:
		if m.machine != nil && m.machine.State() == resolution.StateSuccess {
			if err := m.machine.CloseSuccess(); err == nil {
				m.closeFlow()
			}
		}
		return m, m.refreshCmd()

	case editor.EditBlockMsg:
		m.editIndex = msg.Index
		m.blockForm = handlers.NewBlockFormModel(msg.Block)
		m.form = handlers.NewBlockForm(m.blockForm)
		m.state = constants.StateEditorForm
		return m, m.form.Init()

	case editor.AddBlockMsg:
		m.editIndex = -1
		m.blockForm = handlers.NewBlockFormModel(models.TimeBlock{
			Type:     models.BlockTypeStudy,
			Priority: 3,
		})
		m.form = handlers.NewBlockForm(m.blockForm)
		m.state = constants.StateEditorForm
		return m, m.form.Init()

	case editor.SaveMsg:
		m.state = constants.StateConfirmation
		return m, nil

	case editor.CancelMsg:
		m.state = constants.StateEvents
		return m, m.refreshCmd()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Tab), key.Matches(msg, m.keys.ShiftTab):
			if m.state == constants.StateEvents {
				m.state = constants.StateSchedule
			} else if m.state == constants.StateSchedule {
				m.state = constants.StateEvents
			}
			return m, nil
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}
	}

	var cmd tea.Cmd
	switch m.state {
	case constants.StateEvents:
		m.eventList, cmd = m.eventList.Update(msg)
		cmds = append(cmds, cmd)
	case constants.StateSchedule:
		m.dayView, cmd = m.dayView.Update(msg)
		cmds = append(cmds, cmd)
	case constants.StateEditor:
		m.dayEditor, cmd = m.dayEditor.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// updateResolutionKeys drives the machine from key presses while the flow
// panel is open.
func (m Model) updateResolutionKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	machine := m.machine
	switch machine.State() {
	case resolution.StateChoice:
		switch msg.String() {
		case "a":
			m.flowPanel.Requesting = true
			m.flowPanel.Err = ""
			return m, func() tea.Msg {
				return aiResult{err: machine.RequestAI(context.Background())}
			}
		case "m":
			event := machine.Event()
			if err := machine.Manual(); err != nil {
				m.statusMsg = err.Error()
			}
			m.closeFlow()
			m.openEditor(event.ScheduleDate)
			return m, m.refreshCmd()
		case "d":
			machine.Dismiss()
			m.closeFlow()
			return m, m.refreshCmd()
		case "esc":
			// Not now: hide for this session without resolving.
			m.tracker.DismissForSession(machine.Event().ID)
			m.closeFlow()
			return m, m.refreshCmd()
		}

	case resolution.StatePreview:
		switch msg.String() {
		case "enter", "y":
			return m, func() tea.Msg {
				return applyDone{err: machine.Apply()}
			}
		case "b", "esc":
			if err := machine.Back(); err == nil {
				m.flowPanel.SetError("")
			}
			return m, nil
		}

	case resolution.StateSuccess:
		// The success banner closes on its own timer.
	}

	return m, nil
}

// saveEditedDay validates and persists the manual editor's replacement
// schedule.
func (m Model) saveEditedDay() (tea.Model, tea.Cmd) {
	date := m.dayEditor.Date()
	blocks := m.dayEditor.Blocks()

	result := validation.New().ValidateSchedule(models.DailySchedule{Date: date, Blocks: blocks})
	if result.HasConflicts() {
		m.statusMsg = result.Conflicts[0].Description
		m.state = constants.StateEditor
		return m, nil
	}

	if err := m.store.SaveSchedule(date, blocks); err != nil {
		m.statusMsg = "Save failed: " + err.Error()
		m.state = constants.StateEditor
		return m, nil
	}

	m.statusMsg = "Schedule replaced"
	m.reloadDayView()
	m.state = constants.StateEvents
	return m, m.refreshCmd()
}
