package events

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Chabota512/forge-drift/internal/models"
	"github.com/Chabota512/forge-drift/internal/utils"
)

// OpenEventMsg asks the host to open the resolution flow for an event.
type OpenEventMsg struct {
	Event models.DriftEvent
}

// RefreshMsg asks the host to reload the event set from the store.
type RefreshMsg struct{}

type Item struct {
	Event models.DriftEvent
}

func (i Item) Title() string {
	title := fmt.Sprintf("%s +%s", i.Event.BlockTitle, utils.FormatDriftDuration(i.Event.DriftMinutes()))
	if i.Event.Resolved {
		return "✓ " + title
	}
	return title
}

func (i Item) Description() string {
	if i.Event.Resolved {
		return fmt.Sprintf("%s | resolved: %s", i.Event.BlockStartTime, i.Event.UserChoice)
	}
	return fmt.Sprintf("%s | planned %dm, actual %dm | %s total | %d blocks affected",
		i.Event.BlockStartTime,
		i.Event.PlannedDurationMinutes,
		i.Event.ActualDurationMinutes,
		utils.FormatDriftDuration(i.Event.CumulativeDriftMinutes),
		i.Event.AffectedBlocksCount,
	)
}

func (i Item) FilterValue() string { return i.Event.BlockTitle }

type KeyMap struct {
	Open    key.Binding
	Refresh key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "resolve"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
	}
}

type Model struct {
	list list.Model
	keys KeyMap
}

func New(driftEvents []models.DriftEvent, width, height int) Model {
	l := list.New(toItems(driftEvents), list.NewDefaultDelegate(), width, height)
	l.Title = "Drift Events"
	l.SetShowTitle(false)
	l.SetShowHelp(false) // We handle help globally in the main model

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Open, keys.Refresh}
	}
	l.AdditionalFullHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Open, keys.Refresh}
	}

	return Model{list: l, keys: keys}
}

func toItems(driftEvents []models.DriftEvent) []list.Item {
	items := make([]list.Item, len(driftEvents))
	for i, e := range driftEvents {
		items[i] = Item{Event: e}
	}
	return items
}

func (m *Model) SetEvents(driftEvents []models.DriftEvent) {
	m.list.SetItems(toItems(driftEvents))
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch {
		case key.Matches(msg, m.keys.Open):
			if i, ok := m.list.SelectedItem().(Item); ok {
				if !i.Event.Resolved {
					return m, func() tea.Msg { return OpenEventMsg{Event: i.Event} }
				}
			}
		case key.Matches(msg, m.keys.Refresh):
			return m, func() tea.Msg { return RefreshMsg{} }
		}
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 && m.list.FilterState() != list.Filtering {
		return "\n  No drift today. Schedule is on track."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
