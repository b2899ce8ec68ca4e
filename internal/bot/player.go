package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-rts/internal/config"
	"github.com/vovakirdan/tui-rts/internal/level"
	"github.com/vovakirdan/tui-rts/internal/lockstep"
	"github.com/vovakirdan/tui-rts/internal/protocol"
	"github.com/vovakirdan/tui-rts/internal/sim"
)

// ErrDisconnected is returned by Run when the server closes the connection
// before the game ends.
var ErrDisconnected = errors.New("bot: disconnected")

// Conn is the server connection a headless player talks through.
type Conn interface {
	Send(msg protocol.Message) error
	Messages() <-chan protocol.Message
}

// Player is a headless lockstep client: it joins a room, loads the level
// the server picks and plays the team it is given with a Script.
type Player struct {
	conn   Conn
	room   int
	cfg    config.BotConfig
	logger *log.Logger

	// Levels resolves level ids; nil uses the embedded levels.
	Levels func(id string) (level.Level, error)
	// Sim tunes the world; nil uses the defaults.
	Sim *config.SimConfig

	color   string
	client  *lockstep.Client
	script  *Script
	playing bool
}

// NewPlayer returns a player that will join room.
func NewPlayer(conn Conn, room int, cfg config.BotConfig, logger *log.Logger) *Player {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Player{conn: conn, room: room, cfg: cfg, logger: logger}
}

// Color returns the team the server assigned.
func (p *Player) Color() string { return p.color }

// Client returns the lockstep client once the level is loaded.
func (p *Player) Client() *lockstep.Client { return p.client }

// Run joins the room and plays until the server ends the game, the
// connection closes or ctx is done. It returns the end-game message.
func (p *Player) Run(ctx context.Context) (string, error) {
	if err := p.conn.Send(protocol.JoinRoom{RoomID: p.room}); err != nil {
		return "", err
	}
	period := config.DefaultSimConfig().TickPeriod()
	if p.Sim != nil {
		period = p.Sim.TickPeriod()
	}

	var ticks <-chan time.Time
	msgs := p.conn.Messages()
	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()

		case msg, ok := <-msgs:
			if !ok {
				return "", ErrDisconnected
			}
			done, result, err := p.handle(msg)
			if err != nil || done {
				return result, err
			}
			if p.playing && ticks == nil {
				ticker := time.NewTicker(period)
				defer ticker.Stop()
				ticks = ticker.C
			}

		case <-ticks:
			if err := p.advance(); err != nil {
				return "", err
			}
		}
	}
}

// handle applies one server message. done is set when the game is over.
func (p *Player) handle(msg protocol.Message) (done bool, result string, err error) {
	switch msg := msg.(type) {
	case protocol.RoomList:
		p.logger.Debug("rooms", "list", msg.RoomList)

	case protocol.JoinedRoom:
		p.color = msg.Color
		p.logger.Info("joined room", "room", msg.RoomID, "color", msg.Color)

	case protocol.InitializeLevel:
		if err := p.load(msg); err != nil {
			return true, "", err
		}
		p.logger.Info("level loaded", "level", msg.LevelID, "spawns", msg.SpawnLocations)
		return false, "", p.conn.Send(protocol.InitializedLevel{})

	case protocol.PlayGame:
		if p.client == nil {
			return true, "", errors.New("bot: play-game before initialize-level")
		}
		p.playing = true
		p.logger.Info("game started")

	case protocol.GameTick:
		if p.client != nil {
			p.client.Receive(msg)
		}

	case protocol.Chat:
		p.logger.Info("chat", "from", msg.From, "message", msg.Message)

	case protocol.EndGame:
		p.logger.Info("game ended", "message", msg.Message)
		return true, msg.Message, nil

	case protocol.Error:
		return true, "", fmt.Errorf("bot: server error %s: %s", msg.Code, msg.Message)
	}
	return false, "", nil
}

func (p *Player) load(msg protocol.InitializeLevel) error {
	levels := p.Levels
	if levels == nil {
		levels = level.ByID
	}
	lvl, err := levels(msg.LevelID)
	if err != nil {
		return fmt.Errorf("bot: cannot load level %s: %w", msg.LevelID, err)
	}
	w, err := lvl.NewMultiplayerWorld(msg.SpawnLocations, sim.Options{Team: p.color, Config: p.Sim})
	if err != nil {
		return err
	}
	p.client = lockstep.NewClient(w, p.color, p.conn)
	p.script = New(p.color, p.cfg)
	return nil
}

// advance executes the next released tick, then sends whatever the script
// orders for the new state. A stalled client waits for the next period.
func (p *Player) advance() error {
	err := p.client.Advance()
	switch {
	case errors.Is(err, lockstep.ErrStalled):
		return nil
	case err != nil:
		return err
	}
	for _, cmd := range p.script.Orders(p.client.World()) {
		if err := p.client.SendCommand(cmd.UIDs, cmd.Details); err != nil {
			return err
		}
	}
	return nil
}
