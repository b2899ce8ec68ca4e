package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tui-rts/internal/bot"
	"github.com/vovakirdan/tui-rts/internal/config"
	"github.com/vovakirdan/tui-rts/internal/core"
	"github.com/vovakirdan/tui-rts/internal/level"
	"github.com/vovakirdan/tui-rts/internal/sim"
	"github.com/vovakirdan/tui-rts/internal/storage"
)

// statusLines is the number of screen rows below the map.
const statusLines = 2

var helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

// Outcome is how a game ended for the local team.
type Outcome struct {
	Over    bool
	Won     bool
	Message string
}

// judge decides whether the game is over for team. rivals are the other
// teams that had forces when the game started.
func judge(w *sim.World, team string, rivals []string) Outcome {
	if ended, msg := w.Ended(); ended {
		return Outcome{Over: true, Won: !w.Defeated(team), Message: msg}
	}
	if w.Defeated(team) {
		return Outcome{Over: true, Message: fmt.Sprintf("The %s team has been defeated.", team)}
	}
	if len(rivals) == 0 {
		return Outcome{}
	}
	for _, r := range rivals {
		if !w.Defeated(r) {
			return Outcome{}
		}
	}
	return Outcome{Over: true, Won: true, Message: "All enemy forces destroyed."}
}

// rivalsOf lists the teams other than team that still have forces.
func rivalsOf(w *sim.World, team string) []string {
	var out []string
	for _, t := range w.Teams() {
		if t != team && !w.Defeated(t) {
			out = append(out, t)
		}
	}
	return out
}

// Model is the Bubble Tea model for a single-player skirmish.
type Model struct {
	level     level.Level
	world     *sim.World
	store     *storage.Store
	config    core.RuntimeConfig
	screen    *core.Screen
	view      *MapView
	commander *Commander
	clock     *sim.Clock
	keyMapper *KeyMapper
	help      help.Model

	inputFrame core.InputFrame
	rivals     []string
	bots       []*bot.Script
	advisory   string
	outcome    Outcome
	paused     bool
	saved      bool
	quitting   bool
	backToMenu bool
}

// NewModel builds the world of lvl and a model driving it.
func NewModel(lvl level.Level, store *storage.Store, cfg core.RuntimeConfig, simCfg *config.SimConfig) (Model, error) {
	w, err := lvl.NewWorld(sim.Options{Team: cfg.Team, Config: simCfg})
	if err != nil {
		return Model{}, err
	}
	team := w.Team()
	if team == "" {
		team = cfg.Team
	}
	cfg.Team = team

	glyphs, err := preloadGlyphs(context.Background(), w)
	if err != nil {
		return Model{}, err
	}
	period := cfg.TickPeriod
	if period <= 0 {
		period = w.Config().TickPeriod()
	}
	cfg.TickPeriod = period

	camX, camY := lvl.Camera(nil, team)
	m := Model{
		level:      lvl,
		world:      w,
		store:      store,
		config:     cfg,
		screen:     core.NewScreen(cfg.ScreenW, max(1, cfg.ScreenH-1)),
		view:       &MapView{Team: team, CamX: camX, CamY: camY, CursorX: camX, CursorY: camY, Glyphs: glyphs},
		commander:  NewCommander(team, w.Catalog()),
		clock:      sim.NewClock(period),
		keyMapper:  NewKeyMapper(),
		help:       help.New(),
		inputFrame: core.NewInputFrame(),
		rivals:     rivalsOf(w, team),
	}
	m = m.WithBots(config.DefaultBotConfig())
	vw, vh := m.viewport()
	m.view.Follow(w, vw, vh)
	return m, nil
}

// WithBots replaces the scripts driving the rival teams.
func (m Model) WithBots(cfg config.BotConfig) Model {
	m.bots = make([]*bot.Script, 0, len(m.rivals))
	for _, r := range m.rivals {
		m.bots = append(m.bots, bot.New(r, cfg))
	}
	return m
}

// viewport returns the map area size in cells.
func (m Model) viewport() (int, int) {
	return m.screen.Width(), max(1, m.screen.Height()-statusLines)
}

// World returns the simulated world.
func (m Model) World() *sim.World { return m.world }

// Outcome returns how the game ended, if it has.
func (m Model) Outcome() Outcome { return m.outcome }

// Init starts the tick loop.
func (m Model) Init() tea.Cmd {
	return tickCmd(m.config.TickPeriod)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.config.ScreenW = msg.Width
		m.config.ScreenH = msg.Height
		m.screen.Resize(msg.Width, max(1, msg.Height-1))
		m.help.Width = msg.Width
		vw, vh := m.viewport()
		m.view.Follow(m.world, vw, vh)
		return m, nil

	case TickMsg:
		return m.handleTick(time.Time(msg))
	}
	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	keys := m.keyMapper.Keys
	switch msg.String() {
	case "ctrl+s":
		m.saveScreenshot()
		return m, nil
	}
	switch {
	case key.Matches(msg, keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, keys.Cycle):
		m.commander.CycleBuild()
		return m, nil
	case key.Matches(msg, keys.Back) && m.outcome.Over:
		m.backToMenu = true
		return m, tea.Quit
	}

	if m.keyMapper.MapKeyToFrame(msg, &m.inputFrame) {
		m.quitting = true
		return m, tea.Quit
	}
	// cursor and selection respond at once; orders wait for the tick
	m.applyLocal()
	return m, nil
}

// applyLocal handles cursor, selection and pause actions immediately.
func (m *Model) applyLocal() {
	vw, vh := m.viewport()
	rest := core.NewInputFrame()
	for _, a := range m.inputFrame.Actions() {
		switch a {
		case core.ActionCursorUp:
			m.view.MoveCursor(m.world, 0, -1, vw, vh)
		case core.ActionCursorDown:
			m.view.MoveCursor(m.world, 0, 1, vw, vh)
		case core.ActionCursorLeft:
			m.view.MoveCursor(m.world, -1, 0, vw, vh)
		case core.ActionCursorRight:
			m.view.MoveCursor(m.world, 1, 0, vw, vh)
		case core.ActionPause:
			m.paused = !m.paused
		case core.ActionSelect, core.ActionClear:
			m.commander.Handle(m.world, a, m.view.Cursor())
		case core.ActionSelectNext:
			m.commander.Handle(m.world, a, m.view.Cursor())
			if p, ok := Focus(m.world); ok {
				x, y := p.Floor()
				m.view.MoveCursor(m.world, x-m.view.CursorX, y-m.view.CursorY, vw, vh)
			}
		default:
			rest.Set(a)
		}
	}
	m.inputFrame = rest
}

// handleTick applies queued orders and steps the world.
func (m Model) handleTick(now time.Time) (tea.Model, tea.Cmd) {
	if m.outcome.Over || m.paused {
		m.inputFrame.Clear()
		return m, tickCmd(m.config.TickPeriod)
	}

	for _, a := range m.inputFrame.Actions() {
		if cmd, ok := m.commander.Handle(m.world, a, m.view.Cursor()); ok {
			cmd.Apply(m.world)
		}
	}
	m.inputFrame.Clear()
	for _, b := range m.bots {
		for _, cmd := range b.Orders(m.world) {
			cmd.Apply(m.world)
		}
	}

	m.world.Step()
	m.clock.Stepped(now)
	m.collectAdvisories()

	m.outcome = judge(m.world, m.config.Team, m.rivals)
	if m.outcome.Over && !m.saved {
		if m.store != nil {
			//nolint:errcheck // Best-effort save, game continues regardless
			m.store.SaveSkirmish(storage.SkirmishRecord{
				LevelID: m.level.ID,
				Team:    m.config.Team,
				Won:     m.outcome.Won,
				Message: m.outcome.Message,
				Ticks:   m.world.Tick(),
			})
		}
		m.saved = true
	}
	return m, tickCmd(m.config.TickPeriod)
}

func (m *Model) collectAdvisories() {
	for _, a := range m.world.DrainAdvisories() {
		if a.Team == "" || a.Team == m.config.Team {
			m.advisory = a.Text
		}
	}
}

// saveScreenshot saves the current screen to a file.
func (m *Model) saveScreenshot() {
	m.render(time.Now())

	dir := config.ExpandHome("~/.rts/screenshots")
	//nolint:errcheck // Best-effort directory creation
	os.MkdirAll(dir, 0o755)

	timestamp := time.Now().Format("20060102_150405")
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.txt", m.level.ID, timestamp))
	//nolint:errcheck // Best-effort save, game continues regardless
	os.WriteFile(path, []byte(m.screen.String()), 0o600)
}

func (m *Model) render(now time.Time) {
	vw, vh := m.viewport()
	m.screen.Clear()
	m.view.Draw(m.screen, m.world, core.NewRect(0, 0, vw, vh), m.clock.Interpolation(now))
	drawStatus(m.screen, vh, m.world, m.config.Team, m.commander, m.statusLine())
}

func (m Model) statusLine() string {
	switch {
	case m.outcome.Over && m.outcome.Won:
		return "VICTORY: " + m.outcome.Message + "  (b: back, q: quit)"
	case m.outcome.Over:
		return "DEFEAT: " + m.outcome.Message + "  (b: back, q: quit)"
	case m.paused:
		return "PAUSED"
	}
	return m.advisory
}

// drawStatus writes the two status rows below the map.
func drawStatus(s *core.Screen, y int, w *sim.World, team string, c *Commander, line string) {
	info := fmt.Sprintf("%s  tick %d  $%d  selected %d  build %s",
		strings.ToUpper(team), w.Tick(), w.Cash(team), len(w.Selected()), c.BuildChoice())
	s.DrawText(0, y, info, core.TeamColor(team))
	s.DrawText(0, y+1, line, core.ColorBrightYellow)
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	m.render(time.Now())
	return RenderScreen(m.screen) + "\n" + helpStyle.Render(m.help.View(m.keyMapper.Keys))
}

// IsQuitting returns true if user requested to quit entirely.
func (m Model) IsQuitting() bool { return m.quitting }

// BackToMenu returns true if user requested to go back to menu.
func (m Model) BackToMenu() bool { return m.backToMenu }

// Run starts the Bubble Tea program for a skirmish. botCfg tunes the rival
// teams; nil keeps the defaults. It reports whether the player asked to go
// back to the menu.
func Run(lvl level.Level, store *storage.Store, cfg core.RuntimeConfig, simCfg *config.SimConfig, botCfg *config.BotConfig) (bool, error) {
	model, err := NewModel(lvl, store, cfg, simCfg)
	if err != nil {
		return false, err
	}
	if botCfg != nil {
		model = model.WithBots(*botCfg)
	}
	p := tea.NewProgram(model, tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return false, err
	}
	m, ok := final.(Model)
	return ok && m.BackToMenu(), nil
}
