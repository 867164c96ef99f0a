package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/Chabota512/forge-drift/internal/constants"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case constants.StateEvents:
		content = docStyle.Render(m.eventList.View())
	case constants.StateSchedule:
		content = docStyle.Render(m.dayView.View())
	case constants.StateResolution:
		content = m.flowPanel.View()
	case constants.StateEditor:
		content = docStyle.Render(m.dayEditor.View())
	case constants.StateEditorForm:
		content = m.form.View()
	case constants.StateConfirmation:
		content = m.viewConfirmReplace()
	}

	var status string
	if m.statusMsg != "" {
		status = statusStyle.Render(m.statusMsg)
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewTabs(),
		status,
		content,
		m.help.View(m),
	)
}

func (m Model) viewTabs() string {
	var tabs []string
	tabTitles := []string{"Events", "Schedule"}
	states := []constants.SessionState{constants.StateEvents, constants.StateSchedule}
	for i, title := range tabTitles {
		if m.state == states[i] {
			tabs = append(tabs, activeTabStyle.Render(title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewConfirmReplace() string {
	return lipgloss.Place(m.width, m.height-4,
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center,
			dangerStyle.Render(fmt.Sprintf("Replace the schedule for %s with %d blocks?",
				m.dayEditor.Date(), len(m.dayEditor.Blocks()))),
			"This overwrites the stored day.",
			"",
			"[y] Yes",
			"[n] No",
		),
	)
}
