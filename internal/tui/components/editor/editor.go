// Package editor is the manual resolution surface: a block-by-block day
// editor whose save emits the full replacement schedule for the host to
// validate and persist.
package editor

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Chabota512/forge-drift/internal/models"
)

// EditBlockMsg asks the host to open the form for one block.
type EditBlockMsg struct {
	Index int
	Block models.TimeBlock
}

// AddBlockMsg asks the host to open the form for a new block.
type AddBlockMsg struct{}

// SaveMsg asks the host to persist the edited day as a full replacement.
type SaveMsg struct{}

// CancelMsg abandons the edit without saving.
type CancelMsg struct{}

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Padding(0, 1)

	cursorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	timeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Width(14)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Padding(1, 1, 0, 1)
)

type KeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Edit   key.Binding
	Add    key.Binding
	Delete key.Binding
	Save   key.Binding
	Cancel key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Edit: key.NewBinding(
			key.WithKeys("enter", "e"),
			key.WithHelp("enter", "edit block"),
		),
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add block"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete block"),
		),
		Save: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "save day"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

type Model struct {
	date   string
	blocks []models.TimeBlock
	cursor int
	keys   KeyMap
	width  int
	height int
}

func New(width, height int) Model {
	return Model{keys: DefaultKeyMap(), width: width, height: height}
}

// SetDay loads the day being edited. The slice is copied so edits never
// alias the caller's schedule.
func (m *Model) SetDay(date string, blocks []models.TimeBlock) {
	m.date = date
	m.blocks = append([]models.TimeBlock(nil), blocks...)
	m.cursor = 0
}

// Blocks returns the current edited sequence.
func (m Model) Blocks() []models.TimeBlock {
	return m.blocks
}

func (m Model) Date() string {
	return m.date
}

// SetBlock writes one edited block back, or appends when index is past the
// end.
func (m *Model) SetBlock(index int, block models.TimeBlock) {
	if index >= 0 && index < len(m.blocks) {
		m.blocks[index] = block
		return
	}
	m.blocks = append(m.blocks, block)
	m.cursor = len(m.blocks) - 1
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.blocks)-1 {
				m.cursor++
			}
		case key.Matches(msg, m.keys.Edit):
			if m.cursor >= 0 && m.cursor < len(m.blocks) {
				index, block := m.cursor, m.blocks[m.cursor]
				return m, func() tea.Msg { return EditBlockMsg{Index: index, Block: block} }
			}
		case key.Matches(msg, m.keys.Add):
			return m, func() tea.Msg { return AddBlockMsg{} }
		case key.Matches(msg, m.keys.Delete):
			if m.cursor >= 0 && m.cursor < len(m.blocks) {
				m.blocks = append(m.blocks[:m.cursor], m.blocks[m.cursor+1:]...)
				if m.cursor >= len(m.blocks) && m.cursor > 0 {
					m.cursor--
				}
			}
		case key.Matches(msg, m.keys.Save):
			return m, func() tea.Msg { return SaveMsg{} }
		case key.Matches(msg, m.keys.Cancel):
			return m, func() tea.Msg { return CancelMsg{} }
		}
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("Editing %s (%d blocks)", m.date, len(m.blocks))))
	b.WriteString("\n\n")

	if len(m.blocks) == 0 {
		b.WriteString("  Day is empty. Press 'a' to add a block.\n")
	}
	for i, block := range m.blocks {
		cursor := "  "
		if i == m.cursor {
			cursor = cursorStyle.Render("> ")
		}
		b.WriteString(fmt.Sprintf("%s%s %s %s\n",
			cursor,
			timeStyle.Render(block.StartTime+" - "+block.EndTime),
			titleStyle.Render(block.Title),
			typeStyle.Render(string(block.Type)),
		))
	}

	b.WriteString(hintStyle.Render("[enter] edit  [a] add  [d] delete  [s] save day  [esc] cancel"))
	return b.String()
}
