package views

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rendis/openinghours/internal/engine/adapter"
	"github.com/rendis/openinghours/internal/model"
	"github.com/rendis/openinghours/internal/session"
	"github.com/rendis/openinghours/internal/tui/styles"
)

const maxFeed = 8

// sharedState holds data shared between the run goroutine and the view.
// Lives behind a pointer so it survives bubbletea's value copies.
type sharedState struct {
	mu     sync.Mutex
	stats  *adapter.Stats
	cancel context.CancelFunc
	feed   []adapter.ShopResult
	runID  string
}

// ProgressModel shows a running poll.
type ProgressModel struct {
	params      model.RunParams
	configPath  string
	progress    progress.Model
	startTime   time.Time
	done        bool
	confirmQuit bool
	err         error
	dbPath      string
	logPath     string
	width       int
	height      int
	shared      *sharedState
}

type progressTickMsg time.Time

type runCompleteMsg struct {
	Err error
}

func NewProgressModel(msg StartRunMsg) ProgressModel {
	now := time.Now()
	dbPath, logPath := session.Paths(msg.Output, now)
	msg.Params.DBPath = dbPath

	return ProgressModel{
		params:     msg.Params,
		configPath: msg.ConfigPath,
		progress:   progress.New(progress.WithDefaultGradient(), progress.WithWidth(50)),
		startTime:  now,
		dbPath:     dbPath,
		logPath:    logPath,
		shared:     &sharedState{},
	}
}

func (m ProgressModel) Init() tea.Cmd {
	return tea.Batch(m.startRun(), tickCmd())
}

func tickCmd() tea.Cmd {
	return tea.Tick(300*time.Millisecond, func(t time.Time) tea.Msg {
		return progressTickMsg(t)
	})
}

func (m ProgressModel) startRun() tea.Cmd {
	shared := m.shared
	params := m.params
	dbPath, logPath := m.dbPath, m.logPath

	return func() tea.Msg {
		sess, err := session.Open(session.Options{DBPath: dbPath, LogPath: logPath, Debug: params.Debug})
		if err != nil {
			return runCompleteMsg{Err: err}
		}
		defer sess.Close()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		stats := &adapter.Stats{}
		stats.ShopsTotal.Store(int64(len(params.Shops)))

		shared.mu.Lock()
		shared.stats = stats
		shared.cancel = cancel
		shared.runID = sess.ID
		shared.mu.Unlock()

		_, err = sess.Run(ctx, params, &adapter.RunOptions{
			Stats:  stats,
			OnShop: shared.push,
		})
		return runCompleteMsg{Err: err}
	}
}

func (m ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			if cancel := m.shared.getCancel(); cancel != nil {
				cancel()
			}
			return m, tea.Quit
		case "esc":
			if m.done && m.failed() {
				return m, func() tea.Msg { return NavigateToHome{} }
			}
			if m.done {
				return m, m.toExplorer()
			}
			if m.confirmQuit {
				if cancel := m.shared.getCancel(); cancel != nil {
					cancel()
				}
				return m, func() tea.Msg { return NavigateToHome{} }
			}
			m.confirmQuit = true
			return m, nil
		case "enter":
			if m.done && !m.failed() {
				return m, m.toExplorer()
			}
		}
		m.confirmQuit = false
	case progressTickMsg:
		if m.done {
			return m, nil
		}
		return m, tickCmd()
	case runCompleteMsg:
		m.done = true
		m.err = msg.Err
		return m, nil
	}

	pModel, cmd := m.progress.Update(msg)
	m.progress = pModel.(progress.Model)
	return m, cmd
}

func (m ProgressModel) failed() bool {
	return m.err != nil && !errors.Is(m.err, context.Canceled)
}

func (m ProgressModel) toExplorer() tea.Cmd {
	db, cfg := m.dbPath, m.configPath
	return func() tea.Msg {
		return NavigateToExplorer{DBPath: db, ConfigPath: cfg}
	}
}

func (m ProgressModel) View() string {
	var b strings.Builder

	b.WriteString(styles.Title.Render(fmt.Sprintf("Polling %d shops", len(m.params.Shops))))
	b.WriteString("\n\n")

	statsBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.Muted).
		Padding(0, 1).
		Width(30).
		Render(m.renderStats())
	feedBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.Muted).
		Padding(0, 1).
		Width(46).
		Render(m.renderFeed())
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, statsBox, " ", feedBox))
	b.WriteString("\n\n")

	stats := m.shared.getStats()
	var pct float64
	if stats != nil {
		if total := stats.ShopsTotal.Load(); total > 0 {
			pct = float64(stats.ShopsDone.Load()) / float64(total)
		}
	}
	b.WriteString(m.progress.ViewAs(pct))
	b.WriteString("\n\n")

	switch {
	case m.done && m.failed():
		b.WriteString(styles.ErrorText.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n\n")
		b.WriteString(styles.StatusBar.Render("esc back"))
	case m.done:
		var stored int64
		if stats != nil {
			stored = stats.DetailsStored.Load()
		}
		b.WriteString(styles.SuccessText.Render(fmt.Sprintf("Complete! %d shops stored", stored)))
		b.WriteString("\n")
		b.WriteString(styles.Hint.Render(fmt.Sprintf("Database: %s", m.dbPath)))
		b.WriteString("\n\n")
		b.WriteString(styles.StatusBar.Render("enter explore state • ctrl+c quit"))
	case m.confirmQuit:
		b.WriteString(styles.ErrorText.Render("Press ESC again to stop the run and go back"))
		b.WriteString("\n")
		b.WriteString(styles.StatusBar.Render("esc confirm stop • any key continue"))
	default:
		b.WriteString(styles.StatusBar.Render("esc cancel • ctrl+c quit"))
	}

	return b.String()
}

func (m ProgressModel) renderStats() string {
	var sb strings.Builder
	elapsed := time.Since(m.startTime).Truncate(time.Second)

	var done, total, cached, resolved, noMatch, stored, errs int64
	if stats := m.shared.getStats(); stats != nil {
		done = stats.ShopsDone.Load()
		total = stats.ShopsTotal.Load()
		cached = stats.Cached.Load()
		resolved = stats.Resolved.Load()
		noMatch = stats.NoMatch.Load()
		stored = stats.DetailsStored.Load()
		errs = stats.Errors.Load()
	}

	statLabel := lipgloss.NewStyle().Foreground(styles.Muted).Width(12)
	statVal := lipgloss.NewStyle().Foreground(styles.Text).Bold(true)
	row := func(label, value string, style lipgloss.Style) {
		sb.WriteString(statLabel.Render(label))
		sb.WriteString(style.Render(value))
		sb.WriteString("\n")
	}

	row("Shops:", fmt.Sprintf("%d/%d", done, total), statVal)
	row("Cached id:", fmt.Sprintf("%d", cached), statVal)
	row("Resolved:", fmt.Sprintf("%d", resolved), statVal)
	noMatchStyle := statVal
	if noMatch > 0 {
		noMatchStyle = lipgloss.NewStyle().Foreground(styles.Warning).Bold(true)
	}
	row("No match:", fmt.Sprintf("%d", noMatch), noMatchStyle)
	row("Stored:", fmt.Sprintf("%d", stored), statVal)
	errStyle := statVal
	if errs > 0 {
		errStyle = lipgloss.NewStyle().Foreground(styles.Error).Bold(true)
	}
	row("Errors:", fmt.Sprintf("%d", errs), errStyle)
	row("Elapsed:", elapsed.String(), statVal)
	if id := m.shared.getRunID(); id != "" {
		row("Run:", id[:8], lipgloss.NewStyle().Foreground(styles.Muted))
	}

	return sb.String()
}

func (m ProgressModel) renderFeed() string {
	feed := m.shared.getFeed()
	if len(feed) == 0 {
		return styles.Hint.Render("waiting for first shop...")
	}

	var sb strings.Builder
	for _, r := range feed {
		name := truncate(r.Shop.Name, 26)
		var status string
		switch r.Outcome {
		case adapter.OutcomeStored:
			status = lipgloss.NewStyle().Foreground(styles.Success).Render("stored")
			if r.Cached {
				status += styles.Hint.Render(" (cached)")
			}
		case adapter.OutcomeNoMatch:
			status = lipgloss.NewStyle().Foreground(styles.Warning).Render("no match")
		default:
			status = lipgloss.NewStyle().Foreground(styles.Error).Render("failed")
		}
		sb.WriteString(fmt.Sprintf("%-3d %-26s %s\n", r.Shop.Index, name, status))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func (s *sharedState) push(r adapter.ShopResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.feed = append(s.feed, r)
	if len(s.feed) > maxFeed {
		s.feed = s.feed[len(s.feed)-maxFeed:]
	}
}

func (s *sharedState) getFeed() []adapter.ShopResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]adapter.ShopResult(nil), s.feed...)
}

func (s *sharedState) getCancel() context.CancelFunc {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel
}

func (s *sharedState) getStats() *adapter.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

func (s *sharedState) getRunID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runID
}
