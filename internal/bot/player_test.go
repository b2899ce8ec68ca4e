package bot

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/vovakirdan/tui-rts/internal/config"
	"github.com/vovakirdan/tui-rts/internal/protocol"
	"github.com/vovakirdan/tui-rts/internal/sim"
)

type fakeConn struct {
	mu   sync.Mutex
	sent []protocol.Message
	msgs chan protocol.Message
}

func newFakeConn() *fakeConn {
	return &fakeConn{msgs: make(chan protocol.Message, 16)}
}

func (c *fakeConn) Send(msg protocol.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, msg)
	return nil
}

func (c *fakeConn) Messages() <-chan protocol.Message { return c.msgs }

func (c *fakeConn) commands() []protocol.Command {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []protocol.Command
	for _, m := range c.sent {
		if cmd, ok := m.(protocol.Command); ok {
			out = append(out, cmd)
		}
	}
	return out
}

var crossing = protocol.InitializeLevel{LevelID: "crossing", SpawnLocations: map[string]int{"blue": 0, "green": 1}}

func TestPlayerLoadsAndConfirms(t *testing.T) {
	conn := newFakeConn()
	p := NewPlayer(conn, 1, config.BotConfig{CommandEvery: 1, HuntAfter: 0}, nil)

	for _, m := range []protocol.Message{protocol.JoinedRoom{RoomID: 1, Color: "green"}, crossing, protocol.PlayGame{}} {
		if done, _, err := p.handle(m); done || err != nil {
			t.Fatalf("handle(%s) = done %v, err %v", m.MessageType(), done, err)
		}
	}
	if p.Color() != "green" || p.Client() == nil {
		t.Fatalf("expected a green client, got %q", p.Color())
	}
	if _, ok := conn.sent[len(conn.sent)-1].(protocol.InitializedLevel); !ok {
		t.Errorf("expected initialized-level, got %#v", conn.sent[len(conn.sent)-1])
	}

	// nothing released yet
	if err := p.advance(); err != nil {
		t.Fatalf("advance failed: %v", err)
	}
	if p.Client().World().Tick() != 0 {
		t.Fatalf("expected a stall, got tick %d", p.Client().World().Tick())
	}

	p.handle(protocol.GameTick{Tick: 1})
	if err := p.advance(); err != nil {
		t.Fatalf("advance failed: %v", err)
	}
	cmds := conn.commands()
	if len(cmds) < 2 {
		t.Fatalf("expected a confirmation and scripted orders, got %+v", cmds)
	}
	if cmds[0].CurrentTick != 0 || cmds[0].Details.Type != sim.OrderStand {
		t.Errorf("expected empty confirmation of tick 0, got %+v", cmds[0])
	}
	hunted := false
	for _, c := range cmds[1:] {
		if c.CurrentTick != 1 {
			t.Errorf("expected orders stamped with tick 1, got %d", c.CurrentTick)
		}
		if c.Details.Type == sim.OrderHunt {
			hunted = true
		}
	}
	if !hunted {
		t.Errorf("expected a hunt order, got %+v", cmds)
	}
}

func TestPlayerRunEndsWithGame(t *testing.T) {
	conn := newFakeConn()
	p := NewPlayer(conn, 2, config.DefaultBotConfig(), nil)
	conn.msgs <- protocol.JoinedRoom{RoomID: 2, Color: "blue"}
	conn.msgs <- crossing
	conn.msgs <- protocol.PlayGame{}
	conn.msgs <- protocol.EndGame{Message: "The green team has been defeated."}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	msg, err := p.Run(ctx)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if msg != "The green team has been defeated." {
		t.Errorf("unexpected result %q", msg)
	}
	if join, ok := conn.sent[0].(protocol.JoinRoom); !ok || join.RoomID != 2 {
		t.Errorf("expected join-room 2 first, got %#v", conn.sent[0])
	}
}

func TestPlayerRunDisconnected(t *testing.T) {
	conn := newFakeConn()
	close(conn.msgs)
	_, err := NewPlayer(conn, 1, config.DefaultBotConfig(), nil).Run(context.Background())
	if !errors.Is(err, ErrDisconnected) {
		t.Errorf("expected ErrDisconnected, got %v", err)
	}
}

func TestPlayerServerError(t *testing.T) {
	conn := newFakeConn()
	conn.msgs <- protocol.Error{Code: protocol.CodeRoomFull}
	_, err := NewPlayer(conn, 1, config.DefaultBotConfig(), nil).Run(context.Background())
	if err == nil {
		t.Error("expected server error to end the run")
	}
}

func TestPlayerPlayBeforeLevel(t *testing.T) {
	p := NewPlayer(newFakeConn(), 1, config.DefaultBotConfig(), nil)
	if done, _, err := p.handle(protocol.PlayGame{}); !done || err == nil {
		t.Error("expected play-game without a level to fail")
	}
}
