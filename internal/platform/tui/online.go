package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-rts/internal/config"
	"github.com/vovakirdan/tui-rts/internal/core"
	"github.com/vovakirdan/tui-rts/internal/level"
	"github.com/vovakirdan/tui-rts/internal/lockstep"
	"github.com/vovakirdan/tui-rts/internal/protocol"
	"github.com/vovakirdan/tui-rts/internal/sim"
)

// OnlineState represents where the player is in the online flow.
type OnlineState int

const (
	OnlineStateLobby   OnlineState = iota // Browsing rooms
	OnlineStateWaiting                    // Seated, waiting for an opponent
	OnlineStateLoading                    // Level loaded, waiting for play-game
	OnlineStatePlaying                    // Running the lockstep client
	OnlineStateEnded                      // Game over, showing the result
)

// maxChatLines is how many chat lines the online view keeps.
const maxChatLines = 4

// Conn is the server connection the online model talks through.
type Conn interface {
	Send(msg protocol.Message) error
	Messages() <-chan protocol.Message
	Err() error
	Close() error
}

// connClosedMsg is delivered when the server connection ends.
type connClosedMsg struct{ err error }

// serverMsg wraps a protocol message read from the connection.
type serverMsg struct{ msg protocol.Message }

// OnlineModel is the Bubble Tea model for a lockstep game against another
// player.
type OnlineModel struct {
	conn   Conn
	levels func(id string) (level.Level, error)
	simCfg *config.SimConfig
	config core.RuntimeConfig

	state  OnlineState
	rooms  []string
	cursor int
	roomID int
	color  string
	status string
	chat   []string
	input  textinput.Model

	client    *lockstep.Client
	screen    *core.Screen
	view      *MapView
	commander *Commander
	clock     *sim.Clock
	keyMapper *KeyMapper
	help      help.Model

	quitting bool
}

// NewOnlineModel creates an online model over conn. levels resolves the
// level id sent by the server; nil uses the embedded levels.
func NewOnlineModel(conn Conn, levels func(string) (level.Level, error), cfg core.RuntimeConfig, simCfg *config.SimConfig) OnlineModel {
	if levels == nil {
		levels = level.ByID
	}
	if cfg.TickPeriod <= 0 {
		cfg.TickPeriod = config.DefaultSimConfig().TickPeriod()
	}
	in := textinput.New()
	in.Placeholder = "say something"
	in.CharLimit = 200
	in.Prompt = "chat> "

	return OnlineModel{
		conn:      conn,
		levels:    levels,
		simCfg:    simCfg,
		config:    cfg,
		input:     in,
		screen:    core.NewScreen(cfg.ScreenW, max(1, cfg.ScreenH-maxChatLines-2)),
		keyMapper: NewKeyMapper(),
		help:      help.New(),
		clock:     sim.NewClock(cfg.TickPeriod),
	}
}

// State returns the current state.
func (m OnlineModel) State() OnlineState { return m.state }

// Color returns the team assigned by the server.
func (m OnlineModel) Color() string { return m.color }

// Client returns the lockstep client once a level is loaded.
func (m OnlineModel) Client() *lockstep.Client { return m.client }

// Init starts reading from the connection.
func (m OnlineModel) Init() tea.Cmd {
	return m.waitForMessage()
}

// waitForMessage returns a command that waits for the next server message.
func (m OnlineModel) waitForMessage() tea.Cmd {
	ch := m.conn.Messages()
	conn := m.conn
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return connClosedMsg{err: conn.Err()}
		}
		return serverMsg{msg: msg}
	}
}

// Update handles messages.
func (m OnlineModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.config.ScreenW = msg.Width
		m.config.ScreenH = msg.Height
		m.screen.Resize(msg.Width, max(1, msg.Height-maxChatLines-2))
		m.help.Width = msg.Width
		return m, nil

	case serverMsg:
		return m.handleServer(msg.msg)

	case connClosedMsg:
		m.status = "connection closed"
		if msg.err != nil {
			m.status += ": " + msg.err.Error()
		}
		if m.state != OnlineStateEnded {
			m.state = OnlineStateEnded
		}
		return m, nil

	case TickMsg:
		return m.handleTick(time.Time(msg))
	}
	return m, nil
}

func (m OnlineModel) handleServer(msg protocol.Message) (tea.Model, tea.Cmd) {
	next := m.waitForMessage()

	switch msg := msg.(type) {
	case protocol.RoomList:
		m.rooms = msg.RoomList
		if m.cursor >= len(m.rooms) {
			m.cursor = max(0, len(m.rooms)-1)
		}

	case protocol.JoinedRoom:
		m.roomID = msg.RoomID
		m.color = msg.Color
		m.state = OnlineStateWaiting
		m.status = fmt.Sprintf("joined room %d as %s", msg.RoomID, msg.Color)

	case protocol.InitializeLevel:
		if err := m.loadLevel(msg); err != nil {
			m.status = err.Error()
			return m, next
		}
		m.state = OnlineStateLoading
		m.status = "waiting for the other player"
		m.send(protocol.InitializedLevel{})

	case protocol.PlayGame:
		if m.client == nil {
			return m, next
		}
		m.state = OnlineStatePlaying
		m.status = ""
		return m, tea.Batch(next, tickCmd(m.config.TickPeriod))

	case protocol.GameTick:
		if m.client != nil {
			m.client.Receive(msg)
		}

	case protocol.Chat:
		from := msg.From
		if from == "" {
			from = "server"
		}
		m.addChat(fmt.Sprintf("%s: %s", from, msg.Message))

	case protocol.EndGame:
		m.state = OnlineStateEnded
		m.status = msg.Message

	case protocol.Error:
		m.status = "error: " + msg.Code
		if msg.Message != "" {
			m.status += " (" + msg.Message + ")"
		}
	}
	return m, next
}

// loadLevel builds the shared world for the assigned spawns.
func (m *OnlineModel) loadLevel(msg protocol.InitializeLevel) error {
	lvl, err := m.levels(msg.LevelID)
	if err != nil {
		return fmt.Errorf("cannot load level %s: %w", msg.LevelID, err)
	}
	w, err := lvl.NewMultiplayerWorld(msg.SpawnLocations, sim.Options{Team: m.color, Config: m.simCfg})
	if err != nil {
		return err
	}
	glyphs, err := preloadGlyphs(context.Background(), w)
	if err != nil {
		return err
	}
	m.client = lockstep.NewClient(w, m.color, m.conn)
	camX, camY := lvl.Camera(msg.SpawnLocations, m.color)
	m.view = &MapView{Team: m.color, CamX: camX, CamY: camY, CursorX: camX, CursorY: camY, Glyphs: glyphs}
	m.commander = NewCommander(m.color, w.Catalog())
	vw, vh := m.viewport()
	m.view.Follow(w, vw, vh)
	return nil
}

func (m OnlineModel) viewport() (int, int) {
	return m.screen.Width(), max(1, m.screen.Height()-statusLines)
}

func (m *OnlineModel) send(msg protocol.Message) {
	if err := m.conn.Send(msg); err != nil {
		m.status = err.Error()
	}
}

func (m *OnlineModel) addChat(line string) {
	m.chat = append(m.chat, line)
	if len(m.chat) > maxChatLines {
		m.chat = m.chat[len(m.chat)-maxChatLines:]
	}
}

// handleTick advances the lockstep client one tick when it can.
func (m OnlineModel) handleTick(now time.Time) (tea.Model, tea.Cmd) {
	if m.state != OnlineStatePlaying || m.client == nil {
		return m, nil
	}
	err := m.client.Advance()
	switch {
	case err == nil:
		m.clock.Stepped(now)
		if m.status == "waiting for server" {
			m.status = ""
		}
	case errors.Is(err, lockstep.ErrStalled):
		m.status = "waiting for server"
	default:
		m.status = err.Error()
	}
	w := m.client.World()
	for _, a := range w.DrainAdvisories() {
		if a.Team == "" || a.Team == m.color {
			m.status = a.Text
		}
	}
	return m, tickCmd(m.config.TickPeriod)
}

// handleKey processes keyboard input for the current state.
func (m OnlineModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.input.Focused() {
		switch msg.String() {
		case "enter":
			if text := strings.TrimSpace(m.input.Value()); text != "" {
				m.send(protocol.Chat{Message: text})
			}
			m.input.Reset()
			m.input.Blur()
			return m, nil
		case "esc":
			m.input.Reset()
			m.input.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "ctrl+c", "q":
		m.quitting = true
		_ = m.conn.Close()
		return m, tea.Quit
	case "t":
		if m.state != OnlineStateLobby {
			return m, m.input.Focus()
		}
	}

	switch m.state {
	case OnlineStateLobby:
		switch m.keyMapper.MapKeyToMenuAction(msg) {
		case MenuActionUp:
			if m.cursor > 0 {
				m.cursor--
			}
		case MenuActionDown:
			if m.cursor < len(m.rooms)-1 {
				m.cursor++
			}
		case MenuActionSelect:
			if len(m.rooms) > 0 {
				m.send(protocol.JoinRoom{RoomID: m.cursor + 1})
			}
		}

	case OnlineStateWaiting, OnlineStateLoading:
		if m.keyMapper.MapKeyToMenuAction(msg) == MenuActionBack {
			m.leave()
		}

	case OnlineStatePlaying:
		m.handleGameKey(msg)

	case OnlineStateEnded:
		if m.keyMapper.MapKeyToMenuAction(msg) == MenuActionBack {
			m.state = OnlineStateLobby
			m.client = nil
			m.status = ""
		}
	}
	return m, nil
}

func (m *OnlineModel) leave() {
	m.send(protocol.LeaveRoom{RoomID: m.roomID})
	m.state = OnlineStateLobby
	m.client = nil
	m.status = "left the room"
}

// handleGameKey maps viewer keys; orders go to the server stamped with the
// current tick and run when the server releases them.
func (m *OnlineModel) handleGameKey(msg tea.KeyMsg) {
	keys := m.keyMapper.Keys
	switch {
	case key.Matches(msg, keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return
	case key.Matches(msg, keys.Cycle):
		m.commander.CycleBuild()
		return
	case key.Matches(msg, keys.Back):
		m.leave()
		return
	}

	a, _ := m.keyMapper.MapKey(msg)
	w := m.client.World()
	vw, vh := m.viewport()
	switch a {
	case core.ActionNone, core.ActionPause:
	case core.ActionCursorUp:
		m.view.MoveCursor(w, 0, -1, vw, vh)
	case core.ActionCursorDown:
		m.view.MoveCursor(w, 0, 1, vw, vh)
	case core.ActionCursorLeft:
		m.view.MoveCursor(w, -1, 0, vw, vh)
	case core.ActionCursorRight:
		m.view.MoveCursor(w, 1, 0, vw, vh)
	default:
		cmd, ok := m.commander.Handle(w, a, m.view.Cursor())
		if a == core.ActionSelectNext {
			if p, ok := Focus(w); ok {
				x, y := p.Floor()
				m.view.MoveCursor(w, x-m.view.CursorX, y-m.view.CursorY, vw, vh)
			}
		}
		if ok {
			if err := m.client.SendCommand(cmd.UIDs, cmd.Details); err != nil {
				m.status = err.Error()
			}
		}
	}
}

// View renders the current state.
func (m OnlineModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	switch m.state {
	case OnlineStateLobby:
		b.WriteString(titleStyle.Render(centerText("ROOMS", m.config.ScreenW)))
		b.WriteString("\n\n")
		for i, r := range m.rooms {
			cursor := "  "
			if i == m.cursor {
				cursor = "> "
			}
			b.WriteString(fmt.Sprintf("%sRoom %d  %s\n", cursor, i+1, r))
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("Up/Down: choose  |  Enter: join  |  Q: quit"))

	case OnlineStateWaiting, OnlineStateLoading:
		b.WriteString(fmt.Sprintf("Room %d, playing %s\n\n", m.roomID, m.color))
		b.WriteString(helpStyle.Render("t: chat  |  Esc: leave  |  Q: quit"))

	case OnlineStatePlaying, OnlineStateEnded:
		if m.client != nil {
			w := m.client.World()
			vw, vh := m.viewport()
			m.screen.Clear()
			m.view.Draw(m.screen, w, core.NewRect(0, 0, vw, vh), m.clock.Interpolation(time.Now()))
			line := m.status
			if m.state == OnlineStateEnded {
				line = "GAME OVER: " + m.status + "  (b: lobby, q: quit)"
			}
			drawStatus(m.screen, vh, w, m.color, m.commander, line)
			b.WriteString(RenderScreen(m.screen))
			b.WriteString("\n")
			b.WriteString(helpStyle.Render(m.help.View(m.keyMapper.Keys) + "  t chat"))
		}
	}

	b.WriteString("\n")
	if m.client == nil && m.status != "" {
		b.WriteString(m.status)
		b.WriteString("\n")
	}
	for _, line := range m.chat {
		b.WriteString(line)
		b.WriteString("\n")
	}
	if m.input.Focused() {
		b.WriteString(m.input.View())
	}
	return b.String()
}

// RunOnline runs the online client over conn until the player quits.
func RunOnline(conn Conn, cfg core.RuntimeConfig, simCfg *config.SimConfig) error {
	p := tea.NewProgram(NewOnlineModel(conn, nil, cfg, simCfg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
