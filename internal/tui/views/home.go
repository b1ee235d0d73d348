package views

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rendis/openinghours/internal/tui/styles"
)

type menuItem struct {
	key    string
	label  string
	desc   string
	target tea.Msg
}

type HomeModel struct {
	items  []menuItem
	cursor int
}

func NewHomeModel() HomeModel {
	return HomeModel{
		items: []menuItem{
			{key: "n", label: "New Run", desc: "Poll every shop in a config file", target: NavigateToSetup{}},
			{key: "o", label: "Open Store", desc: "Pick a state .db to explore", target: NavigateToLoad{}},
			{key: "r", label: "Recent Stores", desc: "Browse state from earlier runs", target: NavigateToRecent{}},
			{key: "q", label: "Quit", desc: "Exit openinghours"},
		},
	}
}

func (m HomeModel) Init() tea.Cmd {
	return nil
}

func (m HomeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case "down", "j":
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
		return m, nil
	case "enter":
		return m, m.selected()
	}
	for i, item := range m.items {
		if key.String() == item.key {
			m.cursor = i
			return m, m.selected()
		}
	}
	return m, nil
}

func (m HomeModel) selected() tea.Cmd {
	target := m.items[m.cursor].target
	if target == nil {
		return tea.Quit
	}
	return func() tea.Msg { return target }
}

func (m HomeModel) View() string {
	var b strings.Builder

	logo := lipgloss.NewStyle().Foreground(styles.Primary).Bold(true).Render("  openinghours")
	tagline := styles.Hint.Render("  Shop opening hours from Google Places")

	b.WriteString(logo + "\n")
	b.WriteString(tagline + "\n\n")

	for i, item := range m.items {
		cursor := "  "
		style := styles.InactiveItem
		if i == m.cursor {
			cursor = "> "
			style = styles.ActiveItem
		}

		key := lipgloss.NewStyle().
			Foreground(styles.Secondary).
			Bold(true).
			Render(fmt.Sprintf("[%s]", item.key))
		desc := lipgloss.NewStyle().Foreground(styles.Muted).Render(" - " + item.desc)

		b.WriteString(fmt.Sprintf("%s%s %s%s\n", cursor, key, style.Render(item.label), desc))
	}

	b.WriteString("\n")
	b.WriteString(styles.StatusBar.Render("↑↓ navigate • enter select • q quit"))

	return styles.Border.Render(b.String())
}

// Navigation messages
type NavigateToSetup struct{}
type NavigateToHome struct{}
type NavigateToLoad struct{}
type NavigateToRecent struct{}

// NavigateToExplorer opens the explorer on a state database.
type NavigateToExplorer struct {
	DBPath     string
	ConfigPath string
}
