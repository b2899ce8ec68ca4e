package replay

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/vovakirdan/tui-rts/internal/core"
	"github.com/vovakirdan/tui-rts/internal/lockstep"
	"github.com/vovakirdan/tui-rts/internal/protocol"
	"github.com/vovakirdan/tui-rts/internal/registry"
	"github.com/vovakirdan/tui-rts/internal/sim"
)

func arena() *sim.World {
	w := sim.NewWorld(sim.Options{Width: 16, Height: 10})
	for _, s := range []sim.Spawn{
		{Category: registry.CategoryVehicle, Name: "scout-tank", Team: "blue", X: 2.5, Y: 2.5},
		{Category: registry.CategoryVehicle, Name: "heavy-tank", Team: "green", X: 13.5, Y: 7.5},
	} {
		if _, err := w.Add(s); err != nil {
			panic(err)
		}
	}
	return w
}

func ticks() []protocol.GameTick {
	return []protocol.GameTick{
		{Tick: 2},
		{Tick: 3, Commands: []sim.Command{{UIDs: []sim.EntityID{1}, Details: sim.MoveTo(core.Pt(9.5, 4.5))}}},
		{Tick: 4},
		{Tick: 5, Commands: []sim.Command{{UIDs: []sim.EntityID{2}, Details: sim.MoveTo(core.Pt(6.5, 7.5))}}},
		{Tick: 6},
	}
}

func TestRecorderRoundTrip(t *testing.T) {
	rec := NewRecorder(t.TempDir())
	info := lockstep.MatchInfo{MatchID: "room1-42", RoomID: 1, LevelID: "crossing", Spawns: map[string]int{"blue": 0, "green": 2}, Lag: 2}

	tr, err := rec.Open(info)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	for _, gt := range ticks() {
		if err := tr.Record(gt); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}
	if err := tr.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := tr.Record(protocol.GameTick{Tick: 9}); err == nil {
		t.Error("Record after Close succeeded")
	}

	header, recs, err := ReadFile(rec.Path(info.MatchID))
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if header.LevelID != "crossing" || header.Spawns["green"] != 2 || header.Lag != 2 {
		t.Errorf("header = %+v", header)
	}
	if len(recs) != len(ticks()) {
		t.Fatalf("read %d records, expected %d", len(recs), len(ticks()))
	}
	if recs[1].RoomID != 1 || recs[1].Tick != 3 || len(recs[1].Commands) != 1 {
		t.Errorf("record 1 = %+v", recs[1])
	}
	if recs[1].Commands[0].Details.To.X != 9.5 {
		t.Errorf("order lost: %+v", recs[1].Commands[0].Details)
	}
}

func TestApplyMatchesLockstepClient(t *testing.T) {
	nop := lockstep.SenderFunc(func(protocol.Message) error { return nil })
	c := lockstep.NewClient(arena(), "blue", nop)
	var recs []Record
	for _, gt := range ticks() {
		c.Receive(gt)
		recs = append(recs, Record{RoomID: 1, Tick: gt.Tick, Commands: gt.Commands})
	}
	for c.Advance() == nil {
	}

	w := arena()
	if err := Apply(w, recs); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if w.Tick() != c.World().Tick() {
		t.Fatalf("replayed to tick %d, client at %d", w.Tick(), c.World().Tick())
	}
	for i, e := range w.Entities() {
		o := c.World().Entities()[i]
		if e.X != o.X || e.Y != o.Y || e.Direction != o.Direction {
			t.Errorf("entity %d at (%v,%v), client has (%v,%v)", e.ID, e.X, e.Y, o.X, o.Y)
		}
	}
	if e, _ := w.Get(1); e.Order.Type != sim.OrderMove {
		t.Errorf("entity 1 order = %s, expected move", e.Order.Type)
	}
}

func TestApplyRejectsOutOfOrder(t *testing.T) {
	w := arena()
	err := Apply(w, []Record{{Tick: 4}, {Tick: 2}})
	if err == nil {
		t.Error("Apply accepted a record behind the world")
	}
}

func TestOpenRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad"+Ext)
	if err := os.WriteFile(path, []byte("not zstd"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(path); err == nil {
		t.Error("Open accepted a file that is not a replay")
	}
}
