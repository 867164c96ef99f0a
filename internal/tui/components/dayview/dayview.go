package dayview

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Chabota512/forge-drift/internal/models"
	"github.com/Chabota512/forge-drift/internal/utils"
)

var (
	timeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Width(14)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true)

	pastStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	currentMarkerStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("205")).
				Bold(true)

	adjustmentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Italic(true)

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Padding(0, 1)
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

type Model struct {
	viewport viewport.Model
	Day      *models.DailySchedule
	Time     time.Time
	width    int
	height   int
}

func New(width, height int) Model {
	return Model{
		viewport: viewport.New(width, height),
		Time:     time.Now(),
	}
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TickMsg:
		m.Time = time.Time(msg)
		m.render()
		return m, tick()
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.Day == nil {
		return "\n  No schedule for today.\n  Seed one with 'forge-drift schedule set'."
	}
	return m.viewport.View()
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
	m.render()
}

func (m *Model) SetSchedule(day models.DailySchedule) {
	m.Day = &day
	m.render()
}

func (m *Model) render() {
	if m.Day == nil {
		m.viewport.SetContent("No schedule loaded.")
		return
	}

	nowMinutes := utils.MinutesSinceMidnight(m.Time)

	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%s · now %s", m.Day.Date, utils.FormatClock(m.Time))))
	b.WriteString("\n\n")

	for _, block := range m.Day.Blocks {
		marker := "  "
		timeStr := fmt.Sprintf("%s - %s", block.StartTime, block.EndTime)
		name := titleStyle.Render(block.Title)

		endMin, err := utils.ParseTimeToMinutes(block.EndTime)
		startMin, err2 := utils.ParseTimeToMinutes(block.StartTime)
		if err == nil && err2 == nil {
			switch {
			case endMin < nowMinutes:
				name = pastStyle.Render(block.Title)
			case startMin <= nowMinutes && nowMinutes < endMin:
				marker = currentMarkerStyle.Render("▶ ")
			}
		}

		line := fmt.Sprintf("%s%s %s %s",
			marker,
			timeStyle.Render(timeStr),
			name,
			pastStyle.Render(string(block.Type)),
		)
		if note := adjustmentNote(block.Adjustment); note != "" {
			line += " " + adjustmentStyle.Render(note)
		}
		b.WriteString(line + "\n")
	}

	m.viewport.SetContent(b.String())
}

// adjustmentNote renders a block's re-plan history, e.g. "↻ was 10:00, -15m".
func adjustmentNote(adj *models.BlockAdjustment) string {
	if adj == nil || !adj.WasRescheduled {
		return ""
	}
	parts := []string{"↻"}
	if adj.OriginalStartTime != "" {
		parts = append(parts, "was "+adj.OriginalStartTime)
	}
	if adj.DurationChangeMinutes != 0 {
		parts = append(parts, fmt.Sprintf("%+dm", adj.DurationChangeMinutes))
	}
	return strings.Join(parts, " ")
}
