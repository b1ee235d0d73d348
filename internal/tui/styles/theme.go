package styles

import "github.com/charmbracelet/lipgloss"

// Palette
var (
	Primary   = lipgloss.Color("#D97706") // amber, shop awning
	Secondary = lipgloss.Color("#0EA5E9") // sky
	Success   = lipgloss.Color("#16A34A")
	Warning   = lipgloss.Color("#EAB308")
	Error     = lipgloss.Color("#DC2626")
	Muted     = lipgloss.Color("#71717A")
	Text      = lipgloss.Color("#F4F4F5")
)

var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary).
		MarginBottom(1)

	Subtitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Secondary)

	Label = lipgloss.NewStyle().
		Foreground(Muted).
		Width(16)

	Value = lipgloss.NewStyle().
		Foreground(Text)

	ActiveItem = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	InactiveItem = lipgloss.NewStyle().
			Foreground(Muted)

	Hint = lipgloss.NewStyle().
		Foreground(Muted).
		Italic(true)

	StatusBar = lipgloss.NewStyle().
			Foreground(Muted).
			MarginTop(1)

	Border = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Muted).
		Padding(1, 2)

	FocusedBorder = Border.
			BorderForeground(Primary)

	ErrorText = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	SuccessText = lipgloss.NewStyle().
			Foreground(Success).
			Bold(true)
)

// Schedule cells in the explorer card.
var (
	OpenDay = lipgloss.NewStyle().
		Foreground(Success)

	ClosedDay = lipgloss.NewStyle().
			Foreground(Muted).
			Italic(true)
)
