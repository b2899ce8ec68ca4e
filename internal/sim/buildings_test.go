package sim

import (
	"fmt"
	"testing"

	"github.com/vovakirdan/tui-rts/internal/registry"
)

func constructUnitOrder(name string) Order {
	return Order{Type: OrderConstructUnit, Details: &Spawn{Category: registry.CategoryVehicle, Name: name}}
}

func TestStarportRefusesWithoutFunds(t *testing.T) {
	w := NewWorld(Options{Width: 10, Height: 10, Team: "blue", Cash: map[string]int{"blue": 100}})
	rec := &recorder{}
	w.SetObserver(rec)
	port := mustAdd(t, w, building("starport", "blue", 2, 2))

	w.ProcessCommand([]EntityID{port.ID}, constructUnitOrder("scout-tank"))
	w.Step()

	want := fmt.Sprintf(MsgInsufficientFunds, 500)
	if len(rec.advisories) != 1 || rec.advisories[0].Text != want {
		t.Fatalf("advisories = %+v, expected %q", rec.advisories, want)
	}
	if w.Cash("blue") != 100 {
		t.Errorf("cash = %d, expected it unchanged at 100", w.Cash("blue"))
	}
	if port.Order.Type != OrderStand || port.Action != ActionStand {
		t.Errorf("starport %s/%s, expected stand/stand", port.Order.Type, port.Action)
	}
	if len(w.ByCategory(registry.CategoryVehicle)) != 0 {
		t.Error("a unit appeared without payment")
	}
}

func TestStarportTeleportsUnit(t *testing.T) {
	w, rec := newTestWorld(10, 10)
	w.SetCash("blue", 1000)
	port := mustAdd(t, w, building("starport", "blue", 2, 2))

	w.ProcessCommand([]EntityID{port.ID}, constructUnitOrder("scout-tank"))
	w.Step()
	if w.Cash("blue") != 500 {
		t.Errorf("cash = %d, expected 500 after paying", w.Cash("blue"))
	}
	if port.Action != ActionOpen {
		t.Fatalf("starport action = %s, expected open", port.Action)
	}

	// the doors open over the length of the closing animation
	for i := 1; i < 18; i++ {
		w.Step()
	}
	units := w.ByCategory(registry.CategoryVehicle)
	if len(units) != 1 {
		t.Fatalf("expected the unit after the doors opened, have %d", len(units))
	}
	u := units[0]
	if u.X != 3 || u.Y != 3.5 || u.Team != "blue" || u.Action != ActionTeleport {
		t.Errorf("unit at (%v,%v) team %q action %s", u.X, u.Y, u.Team, u.Action)
	}
	if port.Action != ActionClose {
		t.Errorf("starport action = %s, expected close", port.Action)
	}
	if len(rec.advisories) != 0 {
		t.Errorf("unexpected advisories %+v", rec.advisories)
	}

	// a second order is refused while the new unit is on the pad
	w.ProcessCommand([]EntityID{port.ID}, constructUnitOrder("scout-tank"))
	w.Step()
	if len(rec.advisories) != 1 || rec.advisories[0].Text != MsgLandingBayOccupied {
		t.Errorf("advisories = %+v, expected the landing bay warning", rec.advisories)
	}
	if w.Cash("blue") != 500 {
		t.Errorf("cash = %d, expected 500", w.Cash("blue"))
	}
}

func TestAdvisoriesOnlySurfaceForLocalTeam(t *testing.T) {
	w := NewWorld(Options{Width: 10, Height: 10, Team: "red"})
	rec := &recorder{}
	w.SetObserver(rec)
	port := mustAdd(t, w, building("starport", "blue", 2, 2))

	w.ProcessCommand([]EntityID{port.ID}, constructUnitOrder("heavy-tank"))
	w.Step()

	if len(rec.advisories) != 0 {
		t.Errorf("red saw blue's advisory %+v", rec.advisories)
	}
	all := w.DrainAdvisories()
	if len(all) != 1 || all[0].Team != "blue" || all[0].Tick != 0 {
		t.Errorf("recorded advisories = %+v", all)
	}
	if len(w.Advisories()) != 0 {
		t.Error("drain did not clear")
	}
}

func TestDamagedStarportCannotBuild(t *testing.T) {
	w, _ := newTestWorld(10, 10)
	w.SetCash("blue", 5000)
	port := mustAdd(t, w, Spawn{Category: registry.CategoryBuilding, Name: "starport", Team: "blue", X: 2, Y: 2, Life: 50})

	w.ProcessCommand([]EntityID{port.ID}, constructUnitOrder("transport"))
	w.Step()
	if w.Cash("blue") != 5000 || port.Action == ActionOpen {
		t.Error("a damaged starport built a unit")
	}
}

func TestBaseConstructsBuilding(t *testing.T) {
	w, rec := newTestWorld(12, 12)
	w.SetCash("blue", 4000)
	base := mustAdd(t, w, building("base", "blue", 1, 1))

	order := Order{Type: OrderConstructBuilding, Details: &Spawn{Category: registry.CategoryBuilding, Name: "ground-turret", X: 6, Y: 6}}
	w.ProcessCommand([]EntityID{base.ID}, order)
	w.Step()

	if w.Cash("blue") != 2500 {
		t.Errorf("cash = %d, expected 2500", w.Cash("blue"))
	}
	var turret *Entity
	for _, e := range w.ByCategory(registry.CategoryBuilding) {
		if e.Name == "ground-turret" {
			turret = e
		}
	}
	if turret == nil {
		t.Fatal("turret was not placed")
	}
	if turret.Team != "blue" || turret.X != 6 || turret.Y != 6 {
		t.Errorf("turret %q at (%v,%v)", turret.Team, turret.X, turret.Y)
	}
	if base.Action != ActionConstruct || base.Order.Type != OrderStand {
		t.Errorf("base %s/%s, expected construct/stand", base.Action, base.Order.Type)
	}
	if len(rec.sounds) != 1 {
		t.Errorf("sounds = %v", rec.sounds)
	}

	// the spot is taken now
	w.ProcessCommand([]EntityID{base.ID}, order)
	w.Step()
	if len(rec.advisories) != 1 || rec.advisories[0].Text != MsgCannotPlace {
		t.Errorf("advisories = %+v, expected the placement warning", rec.advisories)
	}
	if w.Cash("blue") != 2500 {
		t.Errorf("cash = %d, expected 2500", w.Cash("blue"))
	}

	for i := 0; i < 3; i++ {
		w.Step()
	}
	if base.Action != ActionStand {
		t.Errorf("base action = %s after the construct animation", base.Action)
	}
}

func TestBuildingDiesAtZeroLife(t *testing.T) {
	w, _ := newTestWorld(10, 10)
	b := mustAdd(t, w, building("base", "blue", 1, 1))
	if w.Map().IsPassable(1, 1) {
		t.Fatal("base should block")
	}
	b.Life = 0
	w.Step()
	if !b.Removed() {
		t.Fatal("dead building still in the world")
	}
	if !w.Map().IsPassable(1, 1) {
		t.Error("passable layer not rebuilt after the base died")
	}
}
