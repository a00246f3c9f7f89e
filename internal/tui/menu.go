package tui

import (
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Menu actions, matched against the selected item title.
const (
	menuResume     = "resume"
	menuSpeech     = "toggle speech"
	menuTyped      = "toggle typed answers"
	menuIntervals  = "show intervals"
	menuEndSession = "end session"
)

type item struct {
	title, desc string
}

func (i item) Title() string       { return i.title }
func (i item) Description() string { return i.desc }
func (i item) FilterValue() string { return i.title }

type MenuModel struct {
	list   list.Model
	active bool
}

func NewMenuModel() MenuModel {
	items := []list.Item{
		item{title: menuResume, desc: "Back to the session"},
		item{title: menuSpeech, desc: "Vocalize cards with the configured command"},
		item{title: menuTyped, desc: "Type answers and diff them against the card"},
		item{title: menuIntervals, desc: "Show the interval table in hours"},
		item{title: menuEndSession, desc: "Stop reviewing and save"},
	}

	d := list.NewDefaultDelegate()
	d.Styles.SelectedTitle = lipgloss.NewStyle().Foreground(Green).Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(Green).PaddingLeft(1)
	d.Styles.SelectedDesc = d.Styles.SelectedTitle.Copy().Foreground(DimGreen)

	l := list.New(items, d, 44, 14) // Fixed size for menu popup
	l.Title = "Session menu"
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = lipgloss.NewStyle().Foreground(Green).Bold(true).MarginLeft(2)

	return MenuModel{
		list:   l,
		active: false,
	}
}

func (m MenuModel) Init() tea.Cmd {
	return nil
}

func (m MenuModel) Update(msg tea.Msg) (MenuModel, tea.Cmd) {
	if !m.active {
		return m, nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "esc" {
			m.active = false
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// Selected returns the highlighted action title, empty when nothing is
// selected.
func (m MenuModel) Selected() string {
	it := m.list.SelectedItem()
	if it == nil {
		return ""
	}
	return it.(item).Title()
}

func (m MenuModel) View() string {
	if !m.active {
		return ""
	}
	return MenuBoxStyle.Render(m.list.View())
}
