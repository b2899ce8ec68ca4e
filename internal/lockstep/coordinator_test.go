package lockstep

import (
	"testing"
	"time"

	"github.com/vovakirdan/tui-rts/internal/config"
	"github.com/vovakirdan/tui-rts/internal/protocol"
	"github.com/vovakirdan/tui-rts/internal/sim"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time { return f.t }

type savedResults chan MatchResultData

func (s savedResults) SaveMatchResult(r MatchResultData) error {
	s <- r
	return nil
}

func testCoordinator(t *testing.T) (*Coordinator, *fakeClock) {
	t.Helper()
	cfg := config.DefaultServerConfig()
	cfg.Rooms = 3
	cfg.TickPeriodMS = 5
	c := NewCoordinator(cfg, nil, nil)
	c.SetSeed(7)
	clk := &fakeClock{t: time.Unix(1000, 0)}
	c.now = clk.now
	return c, clk
}

func drain(s *ChannelSession) []protocol.Message {
	var out []protocol.Message
	for {
		select {
		case m := <-s.Messages():
			out = append(out, m)
		default:
			return out
		}
	}
}

func lastOf[T protocol.Message](msgs []protocol.Message) (T, bool) {
	var zero T
	for i := len(msgs) - 1; i >= 0; i-- {
		if m, ok := msgs[i].(T); ok {
			return m, true
		}
	}
	return zero, false
}

func connect(c *Coordinator, id SessionID) *ChannelSession {
	s := NewChannelSession(id, 64)
	c.handleMessage(ConnectedMsg{Session: s})
	return s
}

// seatPair puts two players in room 1 and returns them with their spawns.
func seatPair(t *testing.T, c *Coordinator) (*ChannelSession, *ChannelSession) {
	t.Helper()
	a := connect(c, "a")
	b := connect(c, "b")
	c.handleMessage(JoinRoomMsg{SessionID: "a", RoomID: 1})
	c.handleMessage(JoinRoomMsg{SessionID: "b", RoomID: 1})
	return a, b
}

func TestConnectSendsRoomListAndPing(t *testing.T) {
	c, _ := testCoordinator(t)
	s := connect(c, "a")
	msgs := drain(s)
	if len(msgs) != 2 {
		t.Fatalf("got %v, expected room-list and latency-ping", msgs)
	}
	rl, ok := msgs[0].(protocol.RoomList)
	if !ok || len(rl.RoomList) != 3 || rl.RoomList[0] != "empty" {
		t.Errorf("room list = %+v", msgs[0])
	}
	if msgs[1].MessageType() != protocol.TypeLatencyPing {
		t.Errorf("second message = %s, expected latency-ping", msgs[1].MessageType())
	}
}

func TestLatencyMeasuredThreeTimes(t *testing.T) {
	c, clk := testCoordinator(t)
	c.cfg.TickPeriodMS = 100
	s := connect(c, "a")
	drain(s)

	for i := 0; i < 3; i++ {
		clk.t = clk.t.Add(150 * time.Millisecond)
		c.handleMessage(LatencyPongMsg{SessionID: "a"})
	}
	p := c.players["a"]
	if p.Trips() != 3 {
		t.Fatalf("trips = %d, expected 3", p.Trips())
	}
	if p.TickLag != 3 {
		t.Errorf("tick lag = %d, expected 3 for a 150ms round trip", p.TickLag)
	}
	pings := 0
	for _, m := range drain(s) {
		if m.MessageType() == protocol.TypeLatencyPing {
			pings++
		}
	}
	if pings != 2 {
		t.Errorf("re-pinged %d times, expected 2", pings)
	}

	// unsolicited pongs are ignored
	c.handleMessage(LatencyPongMsg{SessionID: "a"})
	if p.Trips() != 3 {
		t.Errorf("trips = %d after a stray pong", p.Trips())
	}
}

func TestRoomLifecycle(t *testing.T) {
	c, _ := testCoordinator(t)
	saved := make(savedResults, 1)
	c.SetResultSaver(saved)

	a, b := seatPair(t, c)
	am, bm := drain(a), drain(b)

	if j, ok := lastOf[protocol.JoinedRoom](am); !ok || j.Color != "blue" || j.RoomID != 1 {
		t.Errorf("a joined as %+v, expected blue in room 1", j)
	}
	if j, ok := lastOf[protocol.JoinedRoom](bm); !ok || j.Color != "green" {
		t.Errorf("b joined as %+v, expected green", j)
	}
	init, ok := lastOf[protocol.InitializeLevel](am)
	if !ok {
		t.Fatal("no initialize-level sent")
	}
	if init.LevelID != "crossing" || len(init.SpawnLocations) != 2 {
		t.Errorf("initialize-level = %+v", init)
	}
	if init.SpawnLocations["blue"] == init.SpawnLocations["green"] {
		t.Errorf("spawns collide: %v", init.SpawnLocations)
	}
	for _, idx := range init.SpawnLocations {
		if idx < 0 || idx > 3 {
			t.Errorf("spawn index %d out of range", idx)
		}
	}
	if st, _ := c.RoomState(1); st != RoomStarting {
		t.Fatalf("room state = %s, expected starting", st)
	}

	c.handleMessage(InitializedLevelMsg{SessionID: "a"})
	if st, _ := c.RoomState(1); st != RoomStarting {
		t.Fatalf("started with one player ready")
	}
	c.handleMessage(InitializedLevelMsg{SessionID: "b"})
	if st, _ := c.RoomState(1); st != RoomRunning {
		t.Fatalf("room state = %s, expected running", st)
	}
	if _, ok := lastOf[protocol.PlayGame](drain(b)); !ok {
		t.Error("play-game not sent")
	}
	if rl := c.RoomList(); rl.RoomList[0] != "running" {
		t.Errorf("room list = %v", rl.RoomList)
	}

	c.handleMessage(LoseGameMsg{SessionID: "a"})
	end, ok := lastOf[protocol.EndGame](drain(b))
	if !ok || end.Message != "The blue team has been defeated." {
		t.Errorf("end-game = %+v", end)
	}
	if st, _ := c.RoomState(1); st != RoomEmpty {
		t.Errorf("room state after the game = %s, expected empty", st)
	}

	select {
	case r := <-saved:
		if r.Winner != "green" || r.EndReason != "defeat" || r.BlueSession != "a" || r.GreenSession != "b" {
			t.Errorf("saved result = %+v", r)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("match result not saved")
	}
}

func TestJoinErrors(t *testing.T) {
	c, _ := testCoordinator(t)
	seatPair(t, c)
	x := connect(c, "x")
	drain(x)

	c.handleMessage(JoinRoomMsg{SessionID: "x", RoomID: 1})
	if e, ok := lastOf[protocol.Error](drain(x)); !ok || e.Code != protocol.CodeRoomFull {
		t.Errorf("join full room = %+v, expected ROOM_FULL", e)
	}
	c.handleMessage(JoinRoomMsg{SessionID: "x", RoomID: 9})
	if e, ok := lastOf[protocol.Error](drain(x)); !ok || e.Code != protocol.CodeBadRequest {
		t.Errorf("join missing room = %+v, expected BAD_REQUEST", e)
	}
	c.handleMessage(ChatMsg{SessionID: "x", Text: "hello?"})
	if e, ok := lastOf[protocol.Error](drain(x)); !ok || e.Code != protocol.CodeNotInRoom {
		t.Errorf("chat outside a room = %+v, expected NOT_IN_ROOM", e)
	}
}

func TestLeaveWaitingRoom(t *testing.T) {
	c, _ := testCoordinator(t)
	a := connect(c, "a")
	c.handleMessage(JoinRoomMsg{SessionID: "a", RoomID: 2})
	if st, _ := c.RoomState(2); st != RoomWaiting {
		t.Fatalf("room state = %s, expected waiting", st)
	}
	c.handleMessage(LeaveRoomMsg{SessionID: "a", RoomID: 2})
	if st, _ := c.RoomState(2); st != RoomEmpty {
		t.Errorf("room state = %s, expected empty", st)
	}
	rl, _ := lastOf[protocol.RoomList](drain(a))
	if rl.RoomList[1] != "empty" {
		t.Errorf("last room list = %v", rl.RoomList)
	}
}

func TestChatIsSanitisedAndRelayed(t *testing.T) {
	c, _ := testCoordinator(t)
	a, b := seatPair(t, c)
	drain(a)
	drain(b)
	c.handleMessage(ChatMsg{SessionID: "b", Text: "<script>gg</script>"})
	for _, s := range []*ChannelSession{a, b} {
		chat, ok := lastOf[protocol.Chat](drain(s))
		if !ok || chat.From != "green" || chat.Message != "scriptgg/script" {
			t.Errorf("%s got %+v", s.ID(), chat)
		}
	}
}

func TestDisconnectEndsRunningGame(t *testing.T) {
	c, _ := testCoordinator(t)
	a, b := seatPair(t, c)
	c.handleMessage(InitializedLevelMsg{SessionID: "a"})
	c.handleMessage(InitializedLevelMsg{SessionID: "b"})
	drain(a)

	b.Close()
	c.handleMessage(DisconnectedMsg{SessionID: "b"})
	end, ok := lastOf[protocol.EndGame](drain(a))
	if !ok || end.Message != "The green player has been disconnected." {
		t.Errorf("end-game = %+v", end)
	}
	if st, _ := c.RoomState(1); st != RoomEmpty {
		t.Errorf("room state = %s, expected empty", st)
	}
	if c.Sessions().Count() != 1 {
		t.Errorf("%d sessions registered, expected 1", c.Sessions().Count())
	}
}

func TestRunningMatchReleasesTicks(t *testing.T) {
	c, _ := testCoordinator(t)
	a, b := seatPair(t, c)
	c.handleMessage(InitializedLevelMsg{SessionID: "a"})
	c.handleMessage(InitializedLevelMsg{SessionID: "b"})
	drain(a)
	drain(b)

	next := func() protocol.GameTick {
		t.Helper()
		deadline := time.After(2 * time.Second)
		for {
			select {
			case m := <-b.Messages():
				if gt, ok := m.(protocol.GameTick); ok {
					return gt
				}
			case <-deadline:
				t.Fatal("no game-tick before the deadline")
			}
		}
	}

	// tick zero is confirmed by both colours from the start
	if gt := next(); gt.Tick != 1 || len(gt.Commands) != 0 {
		t.Fatalf("first release = %+v, expected empty tick 1", gt)
	}

	c.handleMessage(CommandMsg{SessionID: "a", Command: protocol.Command{UIDs: []sim.EntityID{5}, Details: sim.Stand(), CurrentTick: 0}})
	c.handleMessage(CommandMsg{SessionID: "b", Command: protocol.EmptyCommand(0)})

	gt := next()
	if gt.Tick != 2 || len(gt.Commands) != 1 || gt.Commands[0].UIDs[0] != 5 {
		t.Errorf("second release = %+v, expected tick 2 with the blue command", gt)
	}

	c.handleMessage(LoseGameMsg{SessionID: "b"})
}
