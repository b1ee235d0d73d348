package views

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/rendis/openinghours/internal/engine/hours"
	"github.com/rendis/openinghours/internal/engine/state"
	"github.com/rendis/openinghours/internal/tui/styles"
)

type focusArea int

const (
	focusTable focusArea = iota
	focusFilter
	focusCard
	focusJSON
)

type lineKind int

const (
	linePlain lineKind = iota
	lineTitle
	lineOpen
	lineClosed
)

type cardLine struct {
	text string
	kind lineKind
}

// ExplorerModel browses a state database: a table of ids with the shop card
// and raw JSON of the selected entry below it.
type ExplorerModel struct {
	dbPath    string
	entries   []state.Entry
	filtered  []state.Entry
	table     table.Model
	filter    textinput.Model
	focus     focusArea
	selected  int
	width     int
	height    int
	err       error
	exportMsg string

	cardScrollY int
	cardLines   []cardLine
	jsonScrollY int
	jsonScrollX int
	jsonLines   []string
}

type entriesLoadedMsg struct {
	Entries []state.Entry
	Err     error
}

func NewExplorerModel(dbPath string) ExplorerModel {
	filter := textinput.New()
	filter.Placeholder = "Type to filter ids and values..."
	filter.CharLimit = 50

	return ExplorerModel{
		dbPath:   dbPath,
		filter:   filter,
		selected: -1,
	}
}

func (m ExplorerModel) Init() tea.Cmd {
	path := m.dbPath
	return func() tea.Msg {
		entries, err := loadEntries(path)
		return entriesLoadedMsg{Entries: entries, Err: err}
	}
}

func loadEntries(dbPath string) ([]state.Entry, error) {
	if _, err := os.Stat(dbPath); err != nil {
		return nil, err
	}
	store, err := state.NewSQLiteStore(dbPath)
	if err != nil {
		return nil, err
	}
	defer store.Close()
	return store.List(context.Background(), "")
}

func (m ExplorerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
	case entriesLoadedMsg:
		if msg.Err != nil {
			m.err = msg.Err
			return m, nil
		}
		m.entries = msg.Entries
		m.filtered = msg.Entries
		m.buildTable()
		m.updateLayout()
		if len(m.filtered) > 0 {
			m.selected = 0
			m.cacheDetailContent()
		}
		return m, nil
	case tea.KeyMsg:
		key := msg.String()
		if key == "ctrl+c" {
			return m, tea.Quit
		}

		switch m.focus {
		case focusTable:
			switch key {
			case "esc", "q":
				return m, func() tea.Msg { return NavigateToHome{} }
			case "/", "tab":
				m.focus = focusFilter
				m.filter.Focus()
				return m, textinput.Blink
			case "1":
				m.focus = focusCard
				m.table.SetStyles(tableStyles(false))
				return m, nil
			case "2":
				m.focus = focusJSON
				m.table.SetStyles(tableStyles(false))
				return m, nil
			case "e":
				m.exportCSV()
				return m, nil
			}

		case focusFilter:
			switch key {
			case "esc", "enter", "tab":
				m.focus = focusTable
				m.filter.Blur()
				return m, nil
			}

		case focusCard, focusJSON:
			return m.scrollPanel(key), nil
		}
	}

	var cmd tea.Cmd
	switch m.focus {
	case focusTable:
		m.table, cmd = m.table.Update(msg)
		if cursor := m.table.Cursor(); cursor != m.selected && cursor < len(m.filtered) {
			m.selected = cursor
			m.cardScrollY, m.jsonScrollY, m.jsonScrollX = 0, 0, 0
			m.cacheDetailContent()
		}
	case focusFilter:
		m.filter, cmd = m.filter.Update(msg)
		m.applyFilter()
	}
	return m, cmd
}

func (m ExplorerModel) scrollPanel(key string) ExplorerModel {
	lines := len(m.cardLines)
	scroll := &m.cardScrollY
	if m.focus == focusJSON {
		lines = len(m.jsonLines)
		scroll = &m.jsonScrollY
	}
	maxScroll := lines - m.panelHeight()
	if maxScroll < 0 {
		maxScroll = 0
	}

	switch key {
	case "esc":
		m.focus = focusTable
		m.table.SetStyles(tableStyles(true))
	case "up", "k":
		if *scroll > 0 {
			*scroll--
		}
	case "down", "j":
		if *scroll < maxScroll {
			*scroll++
		}
	case "left", "h":
		if m.focus == focusJSON {
			m.jsonScrollX = max(m.jsonScrollX-4, 0)
		}
	case "right", "l":
		if m.focus == focusJSON {
			m.jsonScrollX += 4
		}
	}
	return m
}

func (m *ExplorerModel) cacheDetailContent() {
	if m.selected < 0 || m.selected >= len(m.filtered) {
		m.cardLines = nil
		m.jsonLines = nil
		return
	}

	e := m.filtered[m.selected]
	m.cardLines = shopCard(m.entries, shopIndex(e.ID))

	data, err := json.MarshalIndent(struct {
		ID     string       `json:"id"`
		Object state.Object `json:"object"`
		State  *state.State `json:"state,omitempty"`
	}{e.ID, e.Object, e.State}, "", "  ")
	if err != nil {
		m.jsonLines = []string{"JSON error"}
		return
	}
	m.jsonLines = strings.Split(string(data), "\n")
}

func shopIndex(id string) string {
	idx, _, _ := strings.Cut(id, ".")
	return idx
}

// shopCard summarizes one shop's states: scalar details followed by the
// week, Monday first.
func shopCard(entries []state.Entry, index string) []cardLine {
	prefix := index + "."
	vals := map[string]string{}
	type daySlots struct {
		name  string
		open  bool
		slots map[int]string
	}
	days := map[int]*daySlots{}

	for _, e := range entries {
		if !strings.HasPrefix(e.ID, prefix) {
			continue
		}
		rest := strings.TrimPrefix(e.ID, prefix)
		parts := strings.Split(rest, ".")
		if len(parts) < 2 || parts[0] != "periods" {
			if e.State != nil {
				vals[rest] = state.FormatValue(e.State.Val)
			}
			continue
		}
		d, ok := hours.DayIndex(parts[1])
		if !ok {
			continue
		}
		ds := days[d]
		if ds == nil {
			ds = &daySlots{name: parts[1], slots: map[int]string{}}
			days[d] = ds
		}
		if len(parts) != 3 || e.State == nil {
			continue
		}
		if parts[2] == "open" {
			ds.open, _ = e.State.Val.(bool)
		} else if n, err := strconv.Atoi(parts[2]); err == nil {
			ds.slots[n] = state.FormatValue(e.State.Val)
		}
	}

	title := vals["name"]
	if title == "" {
		title = "Shop " + index
	}
	lines := []cardLine{{text: title, kind: lineTitle}}

	add := func(label, key string) {
		if v := vals[key]; v != "" {
			lines = append(lines, cardLine{text: fmt.Sprintf("%-10s %s", label, v)})
		}
	}
	add("Place:", "place_id")
	add("Address:", "formatted_address")
	add("Phone:", "international_phone_number")
	add("Website:", "website")
	add("Rating:", "rating")
	add("Types:", "types")
	add("Closed:", "permanently_closed")
	add("Open now:", "open_now")

	if len(days) == 0 {
		return lines
	}
	lines = append(lines, cardLine{}, cardLine{text: "Hours:"})
	for i := 1; i <= hours.DaysPerWeek; i++ {
		ds := days[i%hours.DaysPerWeek]
		if ds == nil {
			continue
		}
		if !ds.open || len(ds.slots) == 0 {
			lines = append(lines, cardLine{text: fmt.Sprintf("  %-12s closed", ds.name), kind: lineClosed})
			continue
		}
		keys := make([]int, 0, len(ds.slots))
		for k := range ds.slots {
			keys = append(keys, k)
		}
		sort.Ints(keys)
		ranges := make([]string, len(keys))
		for j, k := range keys {
			ranges[j] = ds.slots[k]
		}
		lines = append(lines, cardLine{text: fmt.Sprintf("  %-12s %s", ds.name, strings.Join(ranges, ", ")), kind: lineOpen})
	}
	return lines
}

func (m *ExplorerModel) buildTable() {
	idW, valW, ackW, tsW := 36, 34, 5, 20
	if m.width > 100 {
		extra := m.width - 100
		idW += extra * 4 / 10
		valW += extra * 6 / 10
	}

	columns := []table.Column{
		{Title: "ID", Width: idW},
		{Title: "Value", Width: valW},
		{Title: "Ack", Width: ackW},
		{Title: "Updated", Width: tsW},
	}

	rows := make([]table.Row, len(m.filtered))
	for i, e := range m.filtered {
		r := e.Row()
		val, ack, ts := r[3], r[4], r[5]
		if e.Object.Type == state.TypeChannel {
			val = "(" + e.Object.Common.Name + ")"
		}
		rows[i] = table.Row{truncate(e.ID, idW), truncate(val, valW), ack, ts}
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(m.tableHeight()),
	)
	t.SetStyles(tableStyles(m.focus == focusTable || m.focus == focusFilter))
	m.table = t
}

func tableStyles(focused bool) table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(styles.Muted).
		BorderBottom(true).
		Bold(true)
	if focused {
		s.Header = s.Header.Foreground(styles.Secondary)
		s.Selected = s.Selected.
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(styles.Primary).
			Bold(true)
		return s
	}
	s.Header = s.Header.Foreground(styles.Muted)
	s.Selected = s.Selected.
		Foreground(styles.Text).
		Background(lipgloss.Color("#333333")).
		Bold(false)
	return s
}

func (m ExplorerModel) tableHeight() int {
	return max(m.height/2-4, 5)
}

func (m ExplorerModel) panelHeight() int {
	return max(m.height/2-6, 6)
}

func (m *ExplorerModel) updateLayout() {
	if m.width <= 0 {
		return
	}
	m.buildTable()
}

// normalize strips diacritics and lowercases, so "muller" finds "Müller".
func normalize(s string) string {
	t := transform.Chain(norm.NFD, transform.RemoveFunc(func(r rune) bool {
		return unicode.Is(unicode.Mn, r)
	}), norm.NFC)
	result, _, _ := transform.String(t, strings.ToLower(s))
	return result
}

// filterEntries keeps entries whose id, name or value contain every word of
// the query.
func filterEntries(entries []state.Entry, query string) []state.Entry {
	words := strings.Fields(normalize(query))
	if len(words) == 0 {
		return entries
	}

	var out []state.Entry
	for _, e := range entries {
		hay := e.ID + " " + e.Object.Common.Name
		if e.State != nil {
			hay += " " + state.FormatValue(e.State.Val)
		}
		hay = normalize(hay)

		match := true
		for _, w := range words {
			if !strings.Contains(hay, w) {
				match = false
				break
			}
		}
		if match {
			out = append(out, e)
		}
	}
	return out
}

func (m *ExplorerModel) applyFilter() {
	m.filtered = filterEntries(m.entries, m.filter.Value())
	m.buildTable()
	m.selected = -1
	if len(m.filtered) > 0 {
		m.selected = 0
	}
	m.cacheDetailContent()
}

func (m ExplorerModel) View() string {
	if m.err != nil {
		return styles.ErrorText.Render(fmt.Sprintf("Error loading DB: %v", m.err))
	}

	var b strings.Builder

	b.WriteString(styles.Title.Render(fmt.Sprintf("State: %s (%d ids)", filepath.Base(m.dbPath), len(m.entries))))
	if len(m.filtered) != len(m.entries) {
		b.WriteString(styles.Hint.Render(fmt.Sprintf(" showing %d", len(m.filtered))))
	}
	b.WriteString("\n\n")

	filterStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	if m.focus == focusFilter {
		filterStyle = lipgloss.NewStyle().Foreground(styles.Primary)
	}
	b.WriteString(filterStyle.Render("Filter: "))
	b.WriteString(m.filter.View())
	b.WriteString("\n")

	b.WriteString(m.table.View())
	b.WriteString("\n\n")

	detailW := max(m.width-2, 40)
	panelH := m.panelHeight()
	cardOuterW := detailW / 2
	jsonOuterW := detailW - cardOuterW - 1

	cardBox := m.panel("[1] Shop", m.focus == focusCard, cardOuterW, panelH, m.viewCardPanel(max(cardOuterW-4, 20), panelH))
	jsonBox := m.panel("[2] JSON", m.focus == focusJSON, jsonOuterW, panelH, m.viewJSONPanel(max(jsonOuterW-4, 20), panelH))
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cardBox, " ", jsonBox))
	b.WriteString("\n\n")

	if m.exportMsg != "" {
		b.WriteString(lipgloss.NewStyle().Foreground(styles.Success).Render(m.exportMsg))
		b.WriteString("\n")
	}

	var statusText string
	switch m.focus {
	case focusTable:
		statusText = "↑↓ navigate • 1 shop • 2 json • / filter • e export csv • esc back"
	case focusFilter:
		statusText = "type to filter • esc back"
	case focusCard:
		statusText = "↑↓ scroll • esc back to table"
	case focusJSON:
		statusText = "↑↓ scroll • ←→ pan • esc back to table"
	}
	b.WriteString(styles.StatusBar.Render(statusText))

	return b.String()
}

func (m ExplorerModel) panel(title string, focused bool, outerW, h int, content string) string {
	color := styles.Muted
	if focused {
		color = styles.Primary
	}
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color).
		Padding(0, 1).
		Width(outerW - 2).
		Height(h).
		Render(content)
	return lipgloss.NewStyle().Bold(true).Foreground(color).Render(title) + "\n" + box
}

// window returns the visible [start, end) of n lines scrolled to y.
func window(n, y, h int) (int, int) {
	if y > n-h {
		y = n - h
	}
	if y < 0 {
		y = 0
	}
	return y, min(y+h, n)
}

func (m ExplorerModel) viewCardPanel(w, h int) string {
	if len(m.cardLines) == 0 {
		return styles.Hint.Render("Select an id\nto view its shop")
	}

	start, end := window(len(m.cardLines), m.cardScrollY, h)
	var sb strings.Builder
	for i, line := range m.cardLines[start:end] {
		text := truncate(line.text, w)
		switch line.kind {
		case lineTitle:
			sb.WriteString(lipgloss.NewStyle().Bold(true).Foreground(styles.Text).Render(text))
		case lineOpen:
			sb.WriteString(styles.OpenDay.Render(text))
		case lineClosed:
			sb.WriteString(styles.ClosedDay.Render(text))
		default:
			sb.WriteString(styles.Value.Render(text))
		}
		if i < end-start-1 {
			sb.WriteString("\n")
		}
	}
	if start > 0 {
		sb.WriteString("\n" + styles.Hint.Render("  ▲ more above"))
	}
	if end < len(m.cardLines) {
		sb.WriteString("\n" + styles.Hint.Render("  ▼ more below"))
	}
	return sb.String()
}

func (m ExplorerModel) viewJSONPanel(w, h int) string {
	if len(m.jsonLines) == 0 {
		return styles.Hint.Render("Select an id\nto view JSON")
	}

	keyStyle := lipgloss.NewStyle().Foreground(styles.Secondary)
	valStyle := lipgloss.NewStyle().Foreground(styles.Success)
	plain := lipgloss.NewStyle().Foreground(styles.Muted)

	start, end := window(len(m.jsonLines), m.jsonScrollY, h)
	var sb strings.Builder
	for i, line := range m.jsonLines[start:end] {
		display := line
		if m.jsonScrollX > 0 {
			if m.jsonScrollX < len(display) {
				display = display[m.jsonScrollX:]
			} else {
				display = ""
			}
		}
		display = truncate(display, w)

		if k := strings.Index(display, "\":"); k > 0 && strings.HasPrefix(strings.TrimSpace(display), "\"") {
			sb.WriteString(keyStyle.Render(display[:k+1]))
			sb.WriteString(valStyle.Render(display[k+1:]))
		} else {
			sb.WriteString(plain.Render(display))
		}
		if i < end-start-1 {
			sb.WriteString("\n")
		}
	}
	if start > 0 || end < len(m.jsonLines) {
		indicator := fmt.Sprintf("  [%d/%d]", start+1, len(m.jsonLines))
		if m.jsonScrollX > 0 {
			indicator += fmt.Sprintf(" ←%d", m.jsonScrollX)
		}
		sb.WriteString("\n" + plain.Render(indicator))
	}
	return sb.String()
}

func (m *ExplorerModel) exportCSV() {
	dir := filepath.Dir(m.dbPath)
	base := strings.TrimSuffix(filepath.Base(m.dbPath), ".db")
	csvPath := filepath.Join(dir, base+".csv")

	data := m.filtered
	if len(data) == 0 {
		data = m.entries
	}

	f, err := os.Create(csvPath)
	if err != nil {
		m.exportMsg = fmt.Sprintf("Export error: %v", err)
		return
	}
	defer f.Close()

	if err := state.WriteCSV(f, data); err != nil {
		m.exportMsg = fmt.Sprintf("Export error: %v", err)
		return
	}
	m.exportMsg = fmt.Sprintf("Exported %d rows to %s", len(data), csvPath)
}
