package views

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rendis/openinghours/internal/tui/styles"
)

const pickerRows = 15

// FilePickerModel browses directories and lists files with one suffix.
type FilePickerModel struct {
	title  string
	suffix string
	pick   func(path string) tea.Msg
	dir    string
	files  []os.DirEntry
	cursor int
	err    error
}

// NewStorePicker lists state databases and opens the selected one in the
// explorer.
func NewStorePicker(dir string) FilePickerModel {
	return newFilePicker("Open Store", ".db", dir, func(path string) tea.Msg {
		return NavigateToExplorer{DBPath: path}
	})
}

func newFilePicker(title, suffix, dir string, pick func(string) tea.Msg) FilePickerModel {
	if dir == "" {
		dir, _ = os.Getwd()
	}
	m := FilePickerModel{title: title, suffix: suffix, pick: pick, dir: dir}
	m.loadDir()
	return m
}

func (m *FilePickerModel) loadDir() {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		m.err = err
		return
	}
	m.err = nil
	m.files = nil
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		if e.IsDir() || strings.HasSuffix(name, m.suffix) {
			m.files = append(m.files, e)
		}
	}
	m.cursor = 0
}

func (m FilePickerModel) Init() tea.Cmd {
	return nil
}

func (m FilePickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.files)-1 {
			m.cursor++
		}
	case "enter":
		if m.cursor >= len(m.files) {
			return m, nil
		}
		entry := m.files[m.cursor]
		path := filepath.Join(m.dir, entry.Name())
		if entry.IsDir() {
			m.dir = path
			m.loadDir()
			return m, nil
		}
		pick := m.pick
		return m, func() tea.Msg { return pick(path) }
	case "backspace":
		if parent := filepath.Dir(m.dir); parent != m.dir {
			m.dir = parent
			m.loadDir()
		}
	case "esc":
		return m, func() tea.Msg { return NavigateToHome{} }
	}
	return m, nil
}

func (m FilePickerModel) View() string {
	var b strings.Builder

	b.WriteString(styles.Title.Render(m.title))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(styles.Muted).Render(m.dir))
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(styles.ErrorText.Render(fmt.Sprintf("Error: %v", m.err)))
		return styles.Border.Render(b.String())
	}
	if len(m.files) == 0 {
		b.WriteString(styles.Hint.Render(fmt.Sprintf("No %s files or directories here", m.suffix)))
	}

	start := max(m.cursor-(pickerRows-3), 0)
	end := min(start+pickerRows, len(m.files))
	for i := start; i < end; i++ {
		entry := m.files[i]
		cursor, style := "  ", styles.InactiveItem
		if i == m.cursor {
			cursor, style = "> ", styles.ActiveItem
		}
		name := entry.Name()
		if entry.IsDir() {
			name += "/"
		}
		b.WriteString(cursor + style.Render(name) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(styles.StatusBar.Render("enter open • backspace parent dir • esc back"))

	return styles.Border.Render(b.String())
}
