package lockstep

import (
	"errors"
	"testing"
	"time"

	"github.com/vovakirdan/tui-rts/internal/protocol"
	"github.com/vovakirdan/tui-rts/internal/sim"
)

var colors = []string{"blue", "green"}

func TestBarrierReleasesOnLaterConfirmation(t *testing.T) {
	for _, order := range [][]string{{"blue", "green"}, {"green", "blue"}} {
		r := NewRoom(1)
		r.Start(colors, 1)

		// every colour starts confirmed through tick zero
		gt, ok := r.TryRelease()
		if !ok || gt.Tick != 1 {
			t.Fatalf("bootstrap release = %+v %v, expected tick 1", gt, ok)
		}

		r.Confirm(order[0], 1)
		if _, ok := r.TryRelease(); ok {
			t.Fatalf("released tick 1 with only %s confirmed", order[0])
		}
		lag := r.Lagging()
		if len(lag) != 1 || lag[order[1]] != 1 {
			t.Errorf("lagging = %v, expected %s by 1", lag, order[1])
		}

		r.Confirm(order[1], 1)
		gt, ok = r.TryRelease()
		if !ok || gt.Tick != 2 {
			t.Errorf("after %s confirmed: %+v %v, expected tick 2", order[1], gt, ok)
		}
		if _, ok := r.TryRelease(); ok {
			t.Error("released tick 2 without confirmations")
		}
	}
}

func TestBarrierNeverRunsAhead(t *testing.T) {
	r := NewRoom(1)
	r.Start(colors, 2)
	r.Confirm("blue", 10)
	r.Confirm("green", 3)

	var ticks []uint64
	for {
		gt, ok := r.TryRelease()
		if !ok {
			break
		}
		ticks = append(ticks, gt.Tick)
	}
	want := []uint64{2, 3, 4, 5}
	if len(ticks) != len(want) {
		t.Fatalf("released %v, expected %v", ticks, want)
	}
	for i := range want {
		if ticks[i] != want[i] {
			t.Errorf("release %d = %d, expected %d", i, ticks[i], want[i])
		}
	}
	if r.CurrentTick() != 4 {
		t.Errorf("current tick = %d, expected 4", r.CurrentTick())
	}
}

func TestConfirmNeverMovesBack(t *testing.T) {
	r := NewRoom(1)
	r.Start(colors, 1)
	r.Confirm("blue", 5)
	r.Confirm("blue", 2)
	r.Confirm("green", 5)
	n := 0
	for {
		if _, ok := r.TryRelease(); !ok {
			break
		}
		n++
	}
	if n != 6 {
		t.Errorf("released %d ticks, expected 6", n)
	}
}

func TestAddCommandSkipsEmpty(t *testing.T) {
	r := NewRoom(1)
	r.Start(colors, 1)
	r.TryRelease()

	r.AddCommand("blue", protocol.EmptyCommand(0), 2)
	r.AddCommand("green", protocol.Command{UIDs: []sim.EntityID{7}, Details: sim.Stand(), CurrentTick: 0}, 1)

	gt, ok := r.TryRelease()
	if !ok {
		t.Fatal("both colours confirmed tick 1 but nothing was released")
	}
	if len(gt.Commands) != 1 || gt.Commands[0].UIDs[0] != 7 {
		t.Errorf("commands = %+v, expected only the green one", gt.Commands)
	}
	if len(r.Lagging()) != 1 {
		t.Errorf("lagging = %v, expected green behind at tick 2", r.Lagging())
	}
}

func TestTickLag(t *testing.T) {
	tests := []struct {
		rtt  time.Duration
		want uint64
	}{
		{0, 1},
		{20 * time.Millisecond, 1},
		{50 * time.Millisecond, 2},
		{149 * time.Millisecond, 2},
		{150 * time.Millisecond, 3},
		{420 * time.Millisecond, 5},
	}
	for _, tt := range tests {
		if got := TickLag(tt.rtt, 100*time.Millisecond); got != tt.want {
			t.Errorf("TickLag(%v) = %d, expected %d", tt.rtt, got, tt.want)
		}
	}
}

func TestSeatAssignsColours(t *testing.T) {
	r := NewRoom(1)
	a := newPlayer(NewChannelSession("a", 8))
	b := newPlayer(NewChannelSession("b", 8))
	c := newPlayer(NewChannelSession("c", 8))

	if err := r.seat(a, colors); err != nil || a.Color != "blue" || r.State() != RoomWaiting {
		t.Fatalf("first seat: %v %s %s", err, a.Color, r.State())
	}
	if err := r.seat(a, colors); !errors.Is(err, ErrAlreadyInRoom) {
		t.Errorf("second seat for the same player = %v", err)
	}
	if err := r.seat(b, colors); err != nil || b.Color != "green" || r.State() != RoomStarting {
		t.Fatalf("second seat: %v %s %s", err, b.Color, r.State())
	}
	if err := r.seat(c, colors); !errors.Is(err, ErrRoomFull) {
		t.Errorf("third seat = %v, expected ErrRoomFull", err)
	}

	r.state = RoomWaiting
	r.unseat(a)
	if r.State() != RoomWaiting || len(r.Players()) != 1 {
		t.Errorf("after blue left: %s with %d players", r.State(), len(r.Players()))
	}
	if err := r.seat(c, colors); err != nil || c.Color != "blue" {
		t.Errorf("rejoin took %q, expected the free blue seat", c.Color)
	}
}
