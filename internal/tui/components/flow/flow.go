// Package flow renders the drift resolution surface around a single
// resolution.Machine: the choice card, the revised-schedule preview, and
// the success banner. All transitions happen in the host model; this
// component only draws.
package flow

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Chabota512/forge-drift/internal/models"
	"github.com/Chabota512/forge-drift/internal/resolution"
	"github.com/Chabota512/forge-drift/internal/utils"
)

var (
	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("205")).
			Padding(1, 2).
			Width(56)

	headlineStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	menuStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Padding(1, 0, 0, 0)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	successStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("42")).
			Foreground(lipgloss.Color("42")).
			Bold(true).
			Padding(1, 4)

	previewTimeStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("241")).
				Width(14)

	previewTitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("252"))

	previewAdjStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))
)

type Model struct {
	Machine    *resolution.Machine
	Err        string
	Requesting bool
	width      int
	height     int
}

func New(width, height int) Model {
	return Model{width: width, height: height}
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// SetMachine binds the panel to a flow and clears transient display state.
func (m *Model) SetMachine(machine *resolution.Machine) {
	m.Machine = machine
	m.Err = ""
	m.Requesting = false
}

func (m *Model) SetError(message string) {
	m.Err = message
	m.Requesting = false
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	return m, nil
}

func (m Model) View() string {
	if m.Machine == nil {
		return ""
	}

	var content string
	switch m.Machine.State() {
	case resolution.StateChoice:
		content = m.viewChoice()
	case resolution.StatePreview:
		content = m.viewPreview()
	case resolution.StateSuccess:
		content = successStyle.Render("Schedule updated ✓")
	default:
		return ""
	}

	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	return content
}

func (m Model) viewChoice() string {
	event := m.Machine.Event()

	rows := []string{
		headlineStyle.Render(fmt.Sprintf("Schedule drift: %s", event.BlockTitle)),
		"",
		detailRow("Planned", utils.FormatDriftDuration(event.PlannedDurationMinutes)),
		detailRow("Actual", utils.FormatDriftDuration(event.ActualDurationMinutes)),
		detailRow("Overrun", "+"+utils.FormatDriftDuration(event.DriftMinutes())),
		detailRow("Total drift today", utils.FormatDriftDuration(event.CumulativeDriftMinutes)),
		detailRow("Blocks affected", fmt.Sprintf("%d", event.AffectedBlocksCount)),
	}

	var footer string
	switch {
	case m.Requesting:
		footer = infoStyle.Render("Requesting revised schedule...")
	case m.Err != "":
		footer = errorStyle.Render(m.Err)
	}
	if footer != "" {
		rows = append(rows, "", footer)
	}

	menu := menuStyle.Render(strings.Join([]string{
		"[a] AI reschedule",
		"[m] adjust manually",
		"[d] dismiss",
		"[esc] not now",
	}, "   "))

	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, append(rows, menu)...))
}

func (m Model) viewPreview() string {
	rows := []string{
		headlineStyle.Render("Revised schedule from " + m.Machine.Now()),
		"",
	}
	for _, block := range m.Machine.Suggestion() {
		rows = append(rows, previewLine(block))
	}
	if m.Err != "" {
		rows = append(rows, "", errorStyle.Render(m.Err))
	}
	rows = append(rows, menuStyle.Render("[enter] apply   [b] back"))

	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func previewLine(block models.TimeBlock) string {
	line := fmt.Sprintf("%s %s",
		previewTimeStyle.Render(block.StartTime+" - "+block.EndTime),
		previewTitleStyle.Render(block.Title),
	)
	if adj := block.Adjustment; adj != nil && adj.WasRescheduled {
		note := "↻"
		if adj.OriginalStartTime != "" {
			note += " was " + adj.OriginalStartTime
		}
		if adj.DurationChangeMinutes != 0 {
			note += fmt.Sprintf(" %+dm", adj.DurationChangeMinutes)
		}
		line += " " + previewAdjStyle.Render(note)
	}
	return line
}

func detailRow(label, value string) string {
	return labelStyle.Width(20).Render(label) + valueStyle.Render(value)
}
