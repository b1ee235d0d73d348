package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rendis/openinghours/internal/tui/views"
)

type viewID int

const (
	viewHome viewID = iota
	viewSetup
	viewProgress
	viewExplorer
	viewRecent
	viewFilePicker
)

// App is the root bubbletea model.
type App struct {
	currentView viewID
	width       int
	height      int
	home        views.HomeModel
	setup       views.SetupModel
	progress    views.ProgressModel
	explorer    views.ExplorerModel
	recent      views.RecentModel
	filePicker  views.FilePickerModel
}

func NewApp() App {
	return App{
		currentView: viewHome,
		home:        views.NewHomeModel(),
	}
}

// newExplorerApp starts directly in the explorer.
func newExplorerApp(dbPath string) App {
	a := NewApp()
	a.currentView = viewExplorer
	a.explorer = views.NewExplorerModel(dbPath)
	return a
}

func (a App) Init() tea.Cmd {
	if a.currentView == viewExplorer {
		return a.explorer.Init()
	}
	return a.home.Init()
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" && a.currentView != viewProgress {
			return a, tea.Quit
		}
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
	case views.NavigateToHome:
		a.currentView = viewHome
		return a, nil
	case views.NavigateToSetup:
		a.currentView = viewSetup
		a.setup = views.NewSetupModel()
		return a, a.setup.Init()
	case views.StartRunMsg:
		a.currentView = viewProgress
		a.progress = views.NewProgressModel(msg)
		return a, tea.Batch(a.progress.Init(), a.sizeCmd())
	case views.NavigateToExplorer:
		a.currentView = viewExplorer
		a.explorer = views.NewExplorerModel(msg.DBPath)
		SaveRecent(msg.DBPath, msg.ConfigPath)
		return a, tea.Batch(a.explorer.Init(), a.sizeCmd())
	case views.NavigateToLoad:
		a.currentView = viewFilePicker
		a.filePicker = views.NewStorePicker("")
		return a, a.filePicker.Init()
	case views.NavigateToRecent:
		a.currentView = viewRecent
		var entries []views.RecentEntry
		for _, e := range LoadRecent() {
			entries = append(entries, views.RecentEntry{
				DBPath:     e.DBPath,
				ConfigPath: e.ConfigPath,
				OpenedAt:   e.OpenedAt,
			})
		}
		a.recent = views.NewRecentModel(entries)
		return a, a.recent.Init()
	}

	var m tea.Model
	var cmd tea.Cmd
	switch a.currentView {
	case viewHome:
		m, cmd = a.home.Update(msg)
		a.home = m.(views.HomeModel)
	case viewSetup:
		m, cmd = a.setup.Update(msg)
		a.setup = m.(views.SetupModel)
	case viewProgress:
		m, cmd = a.progress.Update(msg)
		a.progress = m.(views.ProgressModel)
	case viewExplorer:
		m, cmd = a.explorer.Update(msg)
		a.explorer = m.(views.ExplorerModel)
	case viewRecent:
		m, cmd = a.recent.Update(msg)
		a.recent = m.(views.RecentModel)
	case viewFilePicker:
		m, cmd = a.filePicker.Update(msg)
		a.filePicker = m.(views.FilePickerModel)
	}
	return a, cmd
}

func (a App) View() string {
	var content string
	switch a.currentView {
	case viewHome:
		content = a.home.View()
	case viewSetup:
		content = a.setup.View()
	case viewProgress:
		content = a.progress.View()
	case viewExplorer:
		content = a.explorer.View()
	case viewRecent:
		content = a.recent.View()
	case viewFilePicker:
		content = a.filePicker.View()
	}

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Top, content)
}

// sizeCmd sends a WindowSizeMsg so newly created views get the current terminal size.
func (a App) sizeCmd() tea.Cmd {
	w, h := a.width, a.height
	return func() tea.Msg {
		return tea.WindowSizeMsg{Width: w, Height: h}
	}
}

// Run starts the TUI on the home menu.
func Run() error {
	_, err := tea.NewProgram(NewApp(), tea.WithAltScreen()).Run()
	return err
}

// RunExplorer opens the TUI straight on a state database.
func RunExplorer(dbPath string) error {
	SaveRecent(dbPath, "")
	_, err := tea.NewProgram(newExplorerApp(dbPath), tea.WithAltScreen()).Run()
	return err
}
