package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"

	"github.com/vovakirdan/tui-rts/internal/config"
	"github.com/vovakirdan/tui-rts/internal/core"
	"github.com/vovakirdan/tui-rts/internal/level"
	"github.com/vovakirdan/tui-rts/internal/storage"
)

// SSHServerConfig holds configuration for the SSH server.
type SSHServerConfig struct {
	// Address is the host:port to listen on (e.g., ":23234").
	Address string

	// HostKeyPath is the path to the host key file.
	// If empty, a key will be auto-generated at ~/.rts/host_key.
	HostKeyPath string

	// IdleTimeout is how long to wait before closing idle connections.
	IdleTimeout time.Duration

	// Levels offered in the menu.
	Levels []level.Level

	// Sim tunes every skirmish; nil uses the defaults.
	Sim *config.SimConfig
}

// DefaultSSHServerConfig returns a config with sensible defaults.
func DefaultSSHServerConfig() SSHServerConfig {
	return SSHServerConfig{
		Address:     ":23234",
		IdleTimeout: 30 * time.Minute,
	}
}

// SSHServer wraps a Wish SSH server for the skirmish menu.
type SSHServer struct {
	config SSHServerConfig
	server *ssh.Server
	store  *storage.Store
	logger *log.Logger
}

// NewSSHServer creates a new SSH server. store may be nil, in which case
// results are not saved.
func NewSSHServer(cfg SSHServerConfig, store *storage.Store, logger *log.Logger) (*SSHServer, error) {
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Prefix:          "rts-ssh",
		})
	}
	srv := &SSHServer{
		config: cfg,
		store:  store,
		logger: logger,
	}

	hostKeyPath := cfg.HostKeyPath
	if hostKeyPath == "" {
		hostKeyPath = "~/.rts/host_key"
	}
	hostKeyPath = config.ExpandHome(hostKeyPath)
	if err := os.MkdirAll(filepath.Dir(hostKeyPath), 0o700); err != nil {
		return nil, fmt.Errorf("cannot create host key directory: %w", err)
	}

	server, err := wish.NewServer(
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(hostKeyPath),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(
			bubbletea.Middleware(srv.teaHandler),
			srv.loggingMiddleware,
		),
	)
	if err != nil {
		return nil, fmt.Errorf("cannot create SSH server: %w", err)
	}
	srv.server = server
	return srv, nil
}

// teaHandler creates a Bubble Tea program for each SSH session.
func (s *SSHServer) teaHandler(sshSession ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, ok := sshSession.Pty()
	if !ok {
		s.logger.Warn("no PTY requested", "user", sshSession.User())
		return nil, nil
	}

	cfg := core.DefaultConfig()
	cfg.ScreenW = pty.Window.Width
	cfg.ScreenH = pty.Window.Height
	if s.config.Sim != nil {
		cfg.TickPeriod = s.config.Sim.TickPeriod()
	}

	model := NewSessionModel(s.config.Levels, s.store, cfg, s.config.Sim, sshSession.User())
	model.logger = s.logger
	return model, []tea.ProgramOption{tea.WithAltScreen()}
}

// loggingMiddleware logs SSH session events.
func (s *SSHServer) loggingMiddleware(next ssh.Handler) ssh.Handler {
	return func(sshSession ssh.Session) {
		s.logger.Info("session started",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
		next(sshSession)
		s.logger.Info("session ended",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
	}
}

// ListenAndServe serves until ctx is cancelled, then shuts down.
func (s *SSHServer) ListenAndServe(ctx context.Context) error {
	s.logger.Info("starting SSH server", "address", s.config.Address)

	errc := make(chan error, 1)
	go func() {
		err := s.server.ListenAndServe()
		if errors.Is(err, ssh.ErrServerClosed) {
			err = nil
		}
		errc <- err
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	s.logger.Info("shutting down SSH server")
	return s.Shutdown()
}

// Shutdown gracefully stops the server.
func (s *SSHServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// Addr returns the server's listen address string.
func (s *SSHServer) Addr() string {
	return s.config.Address
}

// SessionModel manages the full session flow: menu -> skirmish or history
// -> menu. This is the top-level model used for SSH sessions.
type SessionModel struct {
	levels   []level.Level
	store    *storage.Store
	config   core.RuntimeConfig
	simCfg   *config.SimConfig
	username string
	logger   *log.Logger

	menu    MenuModel
	game    *Model
	history *HistoryModel
	err     string

	quitting bool
}

// NewSessionModel creates a new session model.
func NewSessionModel(levels []level.Level, store *storage.Store, cfg core.RuntimeConfig, simCfg *config.SimConfig, username string) SessionModel {
	return SessionModel{
		levels:   levels,
		store:    store,
		config:   cfg,
		simCfg:   simCfg,
		username: username,
		menu:     NewMenuModel(levels, cfg),
	}
}

// Init initializes the session.
func (m SessionModel) Init() tea.Cmd {
	return m.menu.Init()
}

// Update handles messages for the session.
func (m SessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		m.config.ScreenW = wsm.Width
		m.config.ScreenH = wsm.Height
	}

	switch {
	case m.game != nil:
		return m.updateGame(msg)
	case m.history != nil:
		return m.updateHistory(msg)
	}
	return m.updateMenu(msg)
}

// updateMenu handles updates when in menu mode.
func (m SessionModel) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	newMenu, cmd := m.menu.Update(msg)
	if menuModel, ok := newMenu.(MenuModel); ok {
		m.menu = menuModel
	}

	if m.menu.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}

	// The menu quits its own program when used standalone; inside a
	// session the choice switches screens instead.
	if m.menu.WantsHistory() {
		h := NewHistoryModel(m.store, m.config.ScreenW, m.config.ScreenH)
		m.history = &h
		m.menu = NewMenuModel(m.levels, m.config)
		return m, nil
	}

	if selected := m.menu.Selected(); selected != nil {
		m.menu = NewMenuModel(m.levels, m.config)
		lvl, ok := m.find(selected.LevelID)
		if !ok {
			return m, nil
		}
		cfg := m.config
		cfg.Seed = cfg.ResolveSeed()
		game, err := NewModel(lvl, m.store, cfg, m.simCfg)
		if err != nil {
			m.err = err.Error()
			if m.logger != nil {
				m.logger.Warn("cannot start skirmish", "user", m.username, "level", lvl.ID, "error", err)
			}
			return m, nil
		}
		m.err = ""
		m.game = &game
		if m.logger != nil {
			m.logger.Info("skirmish started", "user", m.username, "level", lvl.ID)
		}
		return m, m.game.Init()
	}

	return m, filterQuit(cmd)
}

func (m SessionModel) find(id string) (level.Level, bool) {
	for _, l := range m.levels {
		if l.ID == id {
			return l, true
		}
	}
	return level.Level{}, false
}

// updateGame handles updates when in game mode.
func (m SessionModel) updateGame(msg tea.Msg) (tea.Model, tea.Cmd) {
	newModel, cmd := m.game.Update(msg)
	if gameModel, ok := newModel.(Model); ok {
		m.game = &gameModel
	}

	if m.game.BackToMenu() {
		m.game = nil
		m.menu = NewMenuModel(m.levels, m.config)
		return m, m.menu.Init()
	}
	if m.game.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}
	return m, cmd
}

// updateHistory handles updates when showing the match history.
func (m SessionModel) updateHistory(msg tea.Msg) (tea.Model, tea.Cmd) {
	newModel, cmd := m.history.Update(msg)
	if h, ok := newModel.(HistoryModel); ok {
		m.history = &h
	}
	if m.history.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}
	if m.history.IsGoingBack() {
		m.history = nil
		return m, nil
	}
	return m, cmd
}

// filterQuit drops the tea.Quit a child model returns on selection.
func filterQuit(cmd tea.Cmd) tea.Cmd {
	if cmd == nil {
		return nil
	}
	return func() tea.Msg {
		msg := cmd()
		if _, ok := msg.(tea.QuitMsg); ok {
			return nil
		}
		return msg
	}
}

// View renders the current view.
func (m SessionModel) View() string {
	if m.quitting {
		return ""
	}
	switch {
	case m.game != nil:
		return m.game.View()
	case m.history != nil:
		return m.history.View()
	}
	if m.err != "" {
		return m.menu.View() + "\n" + m.err
	}
	return m.menu.View()
}
