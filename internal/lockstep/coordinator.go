package lockstep

import (
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-rts/internal/config"
	"github.com/vovakirdan/tui-rts/internal/protocol"
)

// Coordinator owns the rooms and every connected player. All room and
// player state is touched only by the processMessages goroutine.
type Coordinator struct {
	cfg         config.ServerConfig
	sessions    *SessionRegistry
	logger      *log.Logger
	resultSaver MatchResultSaver // Optional, can be nil
	recorder    Recorder         // Optional, can be nil
	rng         *rand.Rand
	now         func() time.Time

	rooms   []*Room
	players map[SessionID]*Player

	// Message channel for async processing
	msgChan chan CoordinatorMessage
	done    chan struct{}
	stopped chan struct{}
	started bool
}

// NewCoordinator creates a coordinator with cfg.Rooms empty rooms.
func NewCoordinator(cfg config.ServerConfig, sessions *SessionRegistry, logger *log.Logger) *Coordinator {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if sessions == nil {
		sessions = NewSessionRegistry()
	}
	if len(cfg.PlayerColors) < 2 {
		cfg.PlayerColors = config.DefaultServerConfig().PlayerColors
	}
	if cfg.SpawnChoices < len(cfg.PlayerColors) {
		cfg.SpawnChoices = len(cfg.PlayerColors)
	}
	if cfg.TickPeriodMS <= 0 {
		cfg.TickPeriodMS = config.DefaultServerConfig().TickPeriodMS
	}
	c := &Coordinator{
		cfg:      cfg,
		sessions: sessions,
		logger:   logger,
		rng:      rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x5eed)),
		now:      time.Now,
		players:  make(map[SessionID]*Player),
		msgChan:  make(chan CoordinatorMessage, 256),
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	for i := 1; i <= max(cfg.Rooms, 1); i++ {
		c.rooms = append(c.rooms, NewRoom(i))
	}
	return c
}

// SetResultSaver sets the optional match result saver.
func (c *Coordinator) SetResultSaver(saver MatchResultSaver) {
	c.resultSaver = saver
}

// SetRecorder sets the optional replay recorder.
func (c *Coordinator) SetRecorder(rec Recorder) {
	c.recorder = rec
}

// SetSeed makes spawn selection reproducible.
func (c *Coordinator) SetSeed(seed uint64) {
	c.rng = rand.New(rand.NewPCG(seed, 0x5eed))
}

// Start begins the coordinator's background processing.
func (c *Coordinator) Start() {
	c.started = true
	go c.processMessages()
}

// Stop ends every running match and shuts the coordinator down.
func (c *Coordinator) Stop() {
	select {
	case <-c.done:
		return
	default:
	}
	close(c.done)
	if c.started {
		<-c.stopped
	}
}

// Send sends a message to the coordinator for async processing.
func (c *Coordinator) Send(msg CoordinatorMessage) {
	select {
	case c.msgChan <- msg:
	case <-c.done:
	}
}

// Sessions returns the registry of connected sessions.
func (c *Coordinator) Sessions() *SessionRegistry {
	return c.sessions
}

func (c *Coordinator) processMessages() {
	defer close(c.stopped)
	for {
		select {
		case msg := <-c.msgChan:
			c.handleMessage(msg)
		case <-c.done:
			for _, r := range c.rooms {
				if r.state == RoomRunning || r.state == RoomStarting {
					c.endGame(r, "The server is shutting down.", "", EndShutdown)
				}
			}
			return
		}
	}
}

func (c *Coordinator) handleMessage(msg CoordinatorMessage) {
	switch m := msg.(type) {
	case ConnectedMsg:
		c.handleConnected(m)
	case JoinRoomMsg:
		c.handleJoinRoom(m)
	case LeaveRoomMsg:
		c.handleLeaveRoom(m)
	case InitializedLevelMsg:
		c.handleInitializedLevel(m)
	case LatencyPongMsg:
		c.handleLatencyPong(m)
	case CommandMsg:
		c.handleCommand(m)
	case LoseGameMsg:
		c.handleLoseGame(m)
	case ChatMsg:
		c.handleChat(m)
	case DisconnectedMsg:
		c.handleDisconnected(m)
	}
}

// RoomList returns the status string of every room.
func (c *Coordinator) RoomList() protocol.RoomList {
	list := make([]string, len(c.rooms))
	for i, r := range c.rooms {
		list[i] = r.state.String()
	}
	return protocol.RoomList{RoomList: list}
}

func (c *Coordinator) broadcastRoomList() {
	c.sessions.Broadcast(c.RoomList())
}

func (c *Coordinator) handleConnected(msg ConnectedMsg) {
	p := newPlayer(msg.Session)
	c.players[msg.Session.ID()] = p
	c.sessions.Register(msg.Session)
	c.logger.Info("player connected", "session", msg.Session.ID(), "players", c.sessions.Count())

	msg.Session.Send(c.RoomList())
	c.ping(p)
}

func (c *Coordinator) ping(p *Player) {
	p.pingAt = c.now()
	p.Session.Send(protocol.LatencyPing{})
}

func (c *Coordinator) handleLatencyPong(msg LatencyPongMsg) {
	p, ok := c.players[msg.SessionID]
	if !ok || p.pingAt.IsZero() {
		return
	}
	p.recordTrip(c.now().Sub(p.pingAt), c.cfg.TickPeriod())
	p.pingAt = time.Time{}
	c.logger.Debug("latency measured",
		"session", msg.SessionID, "trips", len(p.trips),
		"avg", p.AverageRoundTrip(), "lag", p.TickLag)

	if len(p.trips) < c.cfg.LatencyTrips {
		c.ping(p)
	}
}

func (c *Coordinator) room(id int) (*Room, bool) {
	if id < 1 || id > len(c.rooms) {
		return nil, false
	}
	return c.rooms[id-1], true
}

func (c *Coordinator) handleJoinRoom(msg JoinRoomMsg) {
	p, ok := c.players[msg.SessionID]
	if !ok {
		return
	}
	r, ok := c.room(msg.RoomID)
	if !ok {
		p.Session.Send(protocol.Error{Code: protocol.CodeBadRequest, Message: fmt.Sprintf("no room %d", msg.RoomID)})
		return
	}
	if err := r.seat(p, c.cfg.PlayerColors); err != nil {
		code := protocol.CodeRoomFull
		if errors.Is(err, ErrAlreadyInRoom) {
			code = protocol.CodeBadRequest
		}
		p.Session.Send(protocol.Error{Code: code, Message: err.Error()})
		return
	}

	c.logger.Info("player joined room", "session", msg.SessionID, "room", r.ID, "color", p.Color)
	p.Session.Send(protocol.JoinedRoom{RoomID: r.ID, Color: p.Color})
	c.broadcastRoomList()

	if r.state == RoomStarting {
		c.initializeLevel(r)
	}
}

// initializeLevel picks distinct random spawn locations and tells both
// players to load the level.
func (c *Coordinator) initializeLevel(r *Room) {
	choices := make([]int, c.cfg.SpawnChoices)
	for i := range choices {
		choices[i] = i
	}
	r.spawns = make(map[string]int, len(r.players))
	for _, color := range c.cfg.PlayerColors {
		i := c.rng.IntN(len(choices))
		r.spawns[color] = choices[i]
		choices = append(choices[:i], choices[i+1:]...)
	}
	r.levelID = c.cfg.LevelID

	c.logger.Info("initializing level", "room", r.ID, "level", r.levelID, "spawns", r.spawns)
	spawns := make(map[string]int, len(r.spawns))
	for k, v := range r.spawns {
		spawns[k] = v
	}
	r.broadcast(protocol.InitializeLevel{SpawnLocations: spawns, LevelID: r.levelID})
}

func (c *Coordinator) handleLeaveRoom(msg LeaveRoomMsg) {
	p, ok := c.players[msg.SessionID]
	if !ok || p.room == nil || p.room.ID != msg.RoomID {
		if ok {
			p.Session.Send(protocol.Error{Code: protocol.CodeNotInRoom, Message: fmt.Sprintf("not in room %d", msg.RoomID)})
		}
		return
	}
	c.leave(p, "The "+p.Color+" player has left.")
}

// leave takes p out of its room. Leaving a game that is loading or running
// ends it for the other player.
func (c *Coordinator) leave(p *Player, endMessage string) {
	r := p.room
	if r == nil {
		return
	}
	switch r.state {
	case RoomStarting, RoomRunning:
		c.endGame(r, endMessage, c.opponentColor(r, p), EndDisconnect)
	default:
		r.unseat(p)
		c.logger.Info("player left room", "session", p.Session.ID(), "room", r.ID)
	}
	c.broadcastRoomList()
}

func (c *Coordinator) opponentColor(r *Room, p *Player) string {
	for _, o := range r.players {
		if o != p {
			return o.Color
		}
	}
	return ""
}

func (c *Coordinator) handleInitializedLevel(msg InitializedLevelMsg) {
	p, ok := c.players[msg.SessionID]
	if !ok || p.room == nil || p.room.state != RoomStarting {
		return
	}
	p.Ready = true
	r := p.room
	if r.allReady(len(c.cfg.PlayerColors)) {
		c.startGame(r)
	}
}

// startGame moves the room to running, tells both players to begin and
// starts the release loop.
func (c *Coordinator) startGame(r *Room) {
	var lag uint64 = 1
	for _, p := range r.players {
		lag = max(lag, p.TickLag)
	}
	r.state = RoomRunning
	r.Start(colorsOf(r.players), lag)

	id := MatchID(fmt.Sprintf("room%d-%d", r.ID, c.now().UnixNano()))
	var rec TickRecorder
	if c.recorder != nil {
		var err error
		rec, err = c.recorder.Open(MatchInfo{
			MatchID: id,
			RoomID:  r.ID,
			LevelID: r.levelID,
			Spawns:  r.spawns,
			Lag:     lag,
			Started: c.now(),
		})
		if err != nil {
			c.logger.Warn("replay not recorded", "room", r.ID, "err", err)
			rec = nil
		}
	}
	r.match = NewMatch(id, r, c.cfg.TickPeriod(), rec, c.logger)

	c.logger.Info("room started", "room", r.ID, "match", id, "lag", lag)
	c.broadcastRoomList()
	r.broadcast(protocol.PlayGame{})

	go r.match.Run(func(sid SessionID) {
		c.Send(DisconnectedMsg{SessionID: sid})
	})
}

func (c *Coordinator) handleCommand(msg CommandMsg) {
	p, ok := c.players[msg.SessionID]
	if !ok {
		return
	}
	if p.room == nil {
		p.Session.Send(protocol.Error{Code: protocol.CodeNotInRoom, Message: "command outside a room"})
		return
	}
	if p.room.state != RoomRunning {
		return
	}
	p.room.AddCommand(p.Color, msg.Command, p.TickLag)
}

func (c *Coordinator) handleLoseGame(msg LoseGameMsg) {
	p, ok := c.players[msg.SessionID]
	if !ok || p.room == nil || p.room.state != RoomRunning {
		return
	}
	r := p.room
	c.endGame(r, "The "+p.Color+" team has been defeated.", c.opponentColor(r, p), EndDefeat)
	c.broadcastRoomList()
}

func (c *Coordinator) handleChat(msg ChatMsg) {
	p, ok := c.players[msg.SessionID]
	if !ok {
		return
	}
	if p.room == nil {
		p.Session.Send(protocol.Error{Code: protocol.CodeNotInRoom, Message: "chat outside a room"})
		return
	}
	p.room.broadcast(protocol.Chat{From: p.Color, Message: protocol.SanitizeChat(msg.Text)})
}

func (c *Coordinator) handleDisconnected(msg DisconnectedMsg) {
	p, ok := c.players[msg.SessionID]
	if !ok {
		return
	}
	delete(c.players, msg.SessionID)
	c.sessions.Unregister(msg.SessionID)
	c.logger.Info("player disconnected", "session", msg.SessionID, "players", c.sessions.Count())

	if p.room != nil {
		c.leave(p, "The "+p.Color+" player has been disconnected.")
	}
}

// endGame stops the room's match, tells the players why and empties the
// room. The result is saved in the background.
func (c *Coordinator) endGame(r *Room, message, winner string, reason EndReason) {
	var ticks uint64
	var elapsed time.Duration
	var matchID MatchID
	if r.match != nil {
		r.match.Stop()
		matchID = r.match.ID()
		elapsed = r.match.Elapsed()
		ticks = r.CurrentTick()
	}

	c.logger.Info("game ended", "room", r.ID, "reason", reason, "winner", winner, "ticks", ticks)
	r.broadcast(protocol.EndGame{Message: message})

	if c.resultSaver != nil && matchID != "" {
		data := MatchResultData{
			MatchID:      string(matchID),
			RoomID:       r.ID,
			LevelID:      r.levelID,
			Winner:       winner,
			EndReason:    reason.String(),
			Message:      message,
			Ticks:        ticks,
			DurationSecs: int(elapsed / time.Second),
			EndedAt:      c.now(),
		}
		for _, p := range r.players {
			switch p.Color {
			case c.cfg.PlayerColors[0]:
				data.BlueSession = string(p.Session.ID())
			case c.cfg.PlayerColors[1]:
				data.GreenSession = string(p.Session.ID())
			}
		}
		// Best effort save, don't block on error
		go func() {
			if err := c.resultSaver.SaveMatchResult(data); err != nil {
				c.logger.Warn("saving match result", "match", data.MatchID, "err", err)
			}
		}()
	}

	r.reset()
}

// RoomState returns the state of room id (for tests and status pages).
func (c *Coordinator) RoomState(id int) (RoomState, bool) {
	r, ok := c.room(id)
	if !ok {
		return RoomEmpty, false
	}
	return r.state, true
}
