package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tui-rts/internal/storage"
)

// History layout constants
const (
	maxHistory = 100 // Max rows to load per tab
)

// HistoryTab selects which records the table shows.
type HistoryTab int

const (
	TabOnline HistoryTab = iota
	TabSkirmish
)

func (t HistoryTab) String() string {
	if t == TabSkirmish {
		return "Skirmish"
	}
	return "Online"
}

// HistoryKeyMap defines the key bindings for the history screen.
type HistoryKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	NextTab key.Binding
	Back    key.Binding
	Quit    key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k HistoryKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.NextTab, k.Back, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k HistoryKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Up, k.Down, k.NextTab}, {k.Back, k.Quit}}
}

// DefaultHistoryKeyMap returns default key bindings.
func DefaultHistoryKeyMap() HistoryKeyMap {
	return HistoryKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "scroll down"),
		),
		NextTab: key.NewBinding(
			key.WithKeys("tab", "left", "right"),
			key.WithHelp("tab", "online/skirmish"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "b"),
			key.WithHelp("esc/b", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// HistoryModel shows stored online matches and skirmishes.
type HistoryModel struct {
	store     *storage.Store
	tab       HistoryTab
	table     table.Model
	help      help.Model
	keys      HistoryKeyMap
	rows      []table.Row
	stats     string
	loadErr   error
	width     int
	height    int
	quitting  bool
	goingBack bool
}

// NewHistoryModel creates a history model.
func NewHistoryModel(store *storage.Store, width, height int) HistoryModel {
	m := HistoryModel{
		store:  store,
		keys:   DefaultHistoryKeyMap(),
		help:   help.New(),
		width:  width,
		height: height,
	}
	m.load()
	return m
}

func (m *HistoryModel) columns() []table.Column {
	if m.tab == TabSkirmish {
		return []table.Column{
			{Title: "Date", Width: 13},
			{Title: "Level", Width: 12},
			{Title: "Team", Width: 6},
			{Title: "Result", Width: 7},
			{Title: "Ticks", Width: 7},
		}
	}
	return []table.Column{
		{Title: "Date", Width: 13},
		{Title: "Match", Width: 16},
		{Title: "Level", Width: 10},
		{Title: "Winner", Width: 7},
		{Title: "Reason", Width: 10},
		{Title: "Ticks", Width: 7},
	}
}

// createTable builds the table for the current tab.
func (m *HistoryModel) createTable() table.Model {
	t := table.New(
		table.WithColumns(m.columns()),
		table.WithRows(m.rows),
		table.WithFocused(true),
		table.WithHeight(max(3, m.height-9)), // Leave room for header, stats and help
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)
	return t
}

// load reads the rows of the current tab.
func (m *HistoryModel) load() {
	m.rows, m.stats, m.loadErr = nil, "", nil
	if m.store != nil {
		if m.tab == TabSkirmish {
			m.rows, m.loadErr = skirmishRows(m.store)
		} else {
			m.rows, m.stats, m.loadErr = matchRows(m.store)
		}
	}
	m.table = m.createTable()
	m.table.GotoTop()
}

func matchRows(store *storage.Store) ([]table.Row, string, error) {
	matches, err := store.RecentMatches(maxHistory)
	if err != nil {
		return nil, "", err
	}
	rows := make([]table.Row, len(matches))
	for i, r := range matches {
		winner := r.Winner
		if winner == "" {
			winner = "-"
		}
		rows[i] = table.Row{
			r.CreatedAt.Format("Jan 02 15:04"),
			r.MatchID,
			r.LevelID,
			winner,
			r.EndReason,
			fmt.Sprintf("%d", r.Ticks),
		}
	}

	stats, err := store.TeamStats()
	if err != nil {
		return rows, "", err
	}
	parts := make([]string, 0, len(stats))
	for _, s := range stats {
		parts = append(parts, fmt.Sprintf("%s %d/%d", s.Team, s.Wins, s.Played))
	}
	return rows, strings.Join(parts, "  "), nil
}

func skirmishRows(store *storage.Store) ([]table.Row, error) {
	games, err := store.RecentSkirmishes(maxHistory)
	if err != nil {
		return nil, err
	}
	rows := make([]table.Row, len(games))
	for i, g := range games {
		result := "lost"
		if g.Won {
			result = "won"
		}
		rows[i] = table.Row{
			g.CreatedAt.Format("Jan 02 15:04"),
			g.LevelID,
			g.Team,
			result,
			fmt.Sprintf("%d", g.Ticks),
		}
	}
	return rows, nil
}

// Init initializes the history model.
func (m HistoryModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the history screen.
func (m HistoryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Back):
			m.goingBack = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.NextTab):
			m.tab = (m.tab + 1) % 2
			m.load()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table = m.createTable()
		m.help.Width = msg.Width
		return m, nil
	}

	// Pass other messages to table
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the history screen.
func (m HistoryModel) View() string {
	if m.quitting || m.goingBack {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(centerText("MATCH HISTORY - "+m.tab.String(), m.width)))
	b.WriteString("\n\n")

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)
	b.WriteString(box.Render(m.content()))
	b.WriteString("\n")

	if m.stats != "" {
		b.WriteString(helpStyle.Render("wins/played: " + m.stats))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))
	return b.String()
}

// content renders the table or an empty message.
func (m HistoryModel) content() string {
	empty := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		Italic(true).
		Padding(2, 4)
	switch {
	case m.loadErr != nil:
		return empty.Render("Could not read history: " + m.loadErr.Error())
	case len(m.rows) == 0:
		return empty.Render("No games recorded yet.")
	}
	return m.table.View()
}

// Rows returns the rows of the current tab.
func (m HistoryModel) Rows() []table.Row { return m.rows }

// IsGoingBack returns true if user wants to go back to menu.
func (m HistoryModel) IsGoingBack() bool {
	return m.goingBack
}

// IsQuitting returns true if user wants to quit entirely.
func (m HistoryModel) IsQuitting() bool {
	return m.quitting
}

// RunHistory runs the history screen.
// Returns true if user wants to go back to menu, false if quitting.
func RunHistory(store *storage.Store, width, height int) (goBack bool, err error) {
	p := tea.NewProgram(NewHistoryModel(store, width, height), tea.WithAltScreen())

	finalModel, err := p.Run()
	if err != nil {
		return false, err
	}
	m, ok := finalModel.(HistoryModel)
	if !ok {
		return false, nil
	}
	return m.IsGoingBack(), nil
}
