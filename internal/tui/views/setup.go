package views

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rendis/openinghours/internal/config"
	"github.com/rendis/openinghours/internal/engine/hours"
	"github.com/rendis/openinghours/internal/model"
	"github.com/rendis/openinghours/internal/tui/styles"
)

// Field indices. fieldNumbering is a toggle, not a textinput.
const (
	fieldConfig = iota
	fieldOutput
	fieldLanguage
	fieldConcurrency
	fieldNumbering
	fieldCount
)

type SetupModel struct {
	inputs    []textinput.Model
	numbering hours.Numbering
	focused   int
	err       string
	loading   bool
}

type setupFailedMsg struct{ err error }

// StartRunMsg carries a validated configuration to the progress view.
type StartRunMsg struct {
	Params     model.RunParams
	ConfigPath string
	Output     string
}

func NewSetupModel() SetupModel {
	inputs := make([]textinput.Model, fieldCount)
	inputs[fieldConfig] = newInput("openinghours.json", "openinghours.json", 50)
	inputs[fieldOutput] = newInput("./state", "./state", 50)
	inputs[fieldLanguage] = newInput("from config (de)", "", 8)
	inputs[fieldConcurrency] = newInput("from config (4)", "", 8)
	inputs[fieldNumbering] = textinput.New() // placeholder, never rendered

	m := SetupModel{inputs: inputs, numbering: hours.LegacyNumbering}
	m.inputs[fieldConfig].Focus()
	return m
}

func newInput(placeholder, value string, width int) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 200
	if width > 0 {
		ti.Width = width
	}
	if value != "" {
		ti.SetValue(value)
	}
	return ti
}

func (m SetupModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m SetupModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case setupFailedMsg:
		m.loading = false
		m.err = msg.err.Error()
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, func() tea.Msg { return NavigateToHome{} }
		case "down", "tab":
			m.err = ""
			return m, m.focusStep(1)
		case "up", "shift+tab":
			m.err = ""
			return m, m.focusStep(-1)
		case "left", "right":
			if m.focused == fieldNumbering {
				if m.numbering == hours.LegacyNumbering {
					m.numbering = hours.SequentialNumbering
				} else {
					m.numbering = hours.LegacyNumbering
				}
				return m, nil
			}
		case "enter":
			if m.loading {
				return m, nil
			}
			return m, m.submit()
		}
	}

	var cmd tea.Cmd
	if m.focused != fieldNumbering {
		m.inputs[m.focused], cmd = m.inputs[m.focused].Update(msg)
	}
	return m, cmd
}

func (m *SetupModel) focusStep(dir int) tea.Cmd {
	if m.focused != fieldNumbering {
		m.inputs[m.focused].Blur()
	}
	m.focused = (m.focused + dir + fieldCount) % fieldCount
	if m.focused == fieldNumbering {
		return nil
	}
	m.inputs[m.focused].Focus()
	return textinput.Blink
}

func (m *SetupModel) submit() tea.Cmd {
	path := strings.TrimSpace(m.inputs[fieldConfig].Value())
	if path == "" {
		m.err = "Config file is required"
		return nil
	}
	output := strings.TrimSpace(m.inputs[fieldOutput].Value())
	if output == "" {
		m.err = "Output directory is required"
		return nil
	}

	var concurrency int
	if s := strings.TrimSpace(m.inputs[fieldConcurrency].Value()); s != "" {
		c, err := strconv.Atoi(s)
		if err != nil || c < 1 {
			m.err = "Concurrency must be a positive number"
			return nil
		}
		concurrency = c
	}
	lang := strings.TrimSpace(m.inputs[fieldLanguage].Value())
	numbering := m.numbering.String()

	m.loading = true
	return func() tea.Msg {
		cfg, err := config.Load(path)
		if err != nil {
			return setupFailedMsg{err: err}
		}
		if lang != "" {
			cfg.Language = lang
		}
		if concurrency > 0 {
			cfg.Concurrency = concurrency
		}
		cfg.SlotNumbering = numbering
		if err := cfg.Validate(); err != nil {
			return setupFailedMsg{err: err}
		}
		return StartRunMsg{Params: cfg.RunParams(), ConfigPath: path, Output: output}
	}
}

func (m SetupModel) View() string {
	var b strings.Builder

	b.WriteString(styles.Title.Render("New Run") + "\n\n")

	b.WriteString(m.renderField("Config:", fieldConfig))
	b.WriteString(m.renderField("Output dir:", fieldOutput))
	b.WriteString("\n")
	b.WriteString(m.renderField("Language:", fieldLanguage))
	b.WriteString(m.renderField("Concurrency:", fieldConcurrency))
	b.WriteString(m.renderNumbering())
	if m.focused == fieldNumbering {
		b.WriteString(styles.Hint.Render("  legacy: a day's second period reuses slot 0 | sequential: 0,1,2..."))
		b.WriteString("\n")
	}

	if m.loading {
		b.WriteString("\n")
		b.WriteString(styles.Hint.Render("  Loading config..."))
	}
	if m.err != "" {
		b.WriteString("\n")
		b.WriteString(styles.ErrorText.Render("  " + m.err))
	}

	b.WriteString("\n\n")
	b.WriteString(styles.StatusBar.Render("enter start • tab next • esc back"))

	return styles.Border.Render(b.String())
}

func (m SetupModel) renderNumbering() string {
	label := styles.Label.Render("Slots:")
	active := lipgloss.NewStyle().Foreground(styles.Primary).Bold(true)
	inactive := lipgloss.NewStyle().Foreground(styles.Muted)

	legacy, sequential := inactive.Render("legacy"), inactive.Render("sequential")
	if m.numbering == hours.LegacyNumbering {
		legacy = active.Render("< legacy >")
	} else {
		sequential = active.Render("< sequential >")
	}

	line := fmt.Sprintf("%s %s   %s", label, legacy, sequential)
	if m.focused == fieldNumbering {
		line += lipgloss.NewStyle().Foreground(styles.Secondary).Render(" ←→")
	}
	return line + "\n"
}

func (m SetupModel) renderField(label string, idx int) string {
	return fmt.Sprintf("%s %s\n", styles.Label.Render(label), m.inputs[idx].View())
}
