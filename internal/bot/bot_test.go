package bot

import (
	"testing"

	"github.com/vovakirdan/tui-rts/internal/config"
	"github.com/vovakirdan/tui-rts/internal/core"
	"github.com/vovakirdan/tui-rts/internal/registry"
	"github.com/vovakirdan/tui-rts/internal/sim"
)

// camp holds a green starport (1), harvester (2) and scout tank (3), two
// oilfields (4 near, 5 far) and a distant blue tank (6).
func camp(t *testing.T, cash int) *sim.World {
	t.Helper()
	w := sim.NewWorld(sim.Options{Width: 24, Height: 14, Cash: map[string]int{"green": cash}})
	for _, s := range []sim.Spawn{
		{Category: registry.CategoryBuilding, Name: "starport", Team: "green", X: 2, Y: 2},
		{Category: registry.CategoryVehicle, Name: "harvester", Team: "green", X: 8.5, Y: 8.5},
		{Category: registry.CategoryVehicle, Name: "scout-tank", Team: "green", X: 5.5, Y: 5.5},
		{Category: registry.CategoryTerrain, Name: "oilfield", X: 11, Y: 9},
		{Category: registry.CategoryTerrain, Name: "oilfield", X: 2, Y: 12},
		{Category: registry.CategoryVehicle, Name: "scout-tank", Team: "blue", X: 22.5, Y: 1.5},
	} {
		if _, err := w.Add(s); err != nil {
			t.Fatalf("Add(%s) failed: %v", s.Name, err)
		}
	}
	return w
}

func stepTo(w *sim.World, tick uint64) {
	for w.Tick() < tick {
		w.Step()
	}
}

func find(cmds []sim.Command, typ sim.OrderType) (sim.Command, bool) {
	for _, c := range cmds {
		if c.Details.Type == typ {
			return c, true
		}
	}
	return sim.Command{}, false
}

func TestOrdersOnlyEveryPeriod(t *testing.T) {
	w := camp(t, 1000)
	s := New("green", config.BotConfig{CommandEvery: 5, HuntAfter: 100, Patrol: true})
	if cmds := s.Orders(w); cmds != nil {
		t.Errorf("expected nothing at tick 0, got %+v", cmds)
	}
	stepTo(w, 3)
	if cmds := s.Orders(w); cmds != nil {
		t.Errorf("expected nothing at tick 3, got %+v", cmds)
	}
}

func TestOrdersBuildDeployPatrol(t *testing.T) {
	w := camp(t, 1000)
	s := New("green", config.BotConfig{CommandEvery: 5, HuntAfter: 100, Patrol: true})
	stepTo(w, 5)
	cmds := s.Orders(w)

	build, ok := find(cmds, sim.OrderConstructUnit)
	if !ok {
		t.Fatalf("expected a construct order, got %+v", cmds)
	}
	if len(build.UIDs) != 1 || build.UIDs[0] != 1 || build.Details.Details.Name != "scout-tank" {
		t.Errorf("unexpected construct %+v", build)
	}

	dep, ok := find(cmds, sim.OrderDeploy)
	if !ok {
		t.Fatalf("expected a deploy order, got %+v", cmds)
	}
	if dep.UIDs[0] != 2 || dep.Details.ToUID != 4 {
		t.Errorf("expected harvester 2 to deploy onto the near oilfield 4, got %+v", dep)
	}

	patrol, ok := find(cmds, sim.OrderPatrol)
	if !ok {
		t.Fatalf("expected a patrol order, got %+v", cmds)
	}
	if len(patrol.UIDs) != 1 || patrol.UIDs[0] != 3 || *patrol.Details.To != core.Pt(12, 7) {
		t.Errorf("unexpected patrol %+v", patrol)
	}
	for _, c := range cmds {
		for _, id := range c.UIDs {
			if id == 6 {
				t.Error("expected the script to leave the other team alone")
			}
		}
	}
}

func TestOrdersHuntAfterThreshold(t *testing.T) {
	w := camp(t, 0)
	s := New("green", config.BotConfig{CommandEvery: 5, HuntAfter: 5})
	stepTo(w, 5)
	cmds := s.Orders(w)

	if _, ok := find(cmds, sim.OrderConstructUnit); ok {
		t.Error("expected no construct order without funds")
	}
	hunt, ok := find(cmds, sim.OrderHunt)
	if !ok || len(hunt.UIDs) != 1 || hunt.UIDs[0] != 3 {
		t.Errorf("expected tank 3 to hunt, got %+v", cmds)
	}
}

func TestOrdersSkipBusyUnits(t *testing.T) {
	w := camp(t, 0)
	w.ProcessCommand([]sim.EntityID{3}, sim.MoveTo(core.Pt(20.5, 12.5)))
	s := New("green", config.BotConfig{CommandEvery: 5, HuntAfter: 5})
	stepTo(w, 5)
	if _, ok := find(s.Orders(w), sim.OrderHunt); ok {
		t.Error("expected a moving unit to keep its order")
	}
}

func TestNewFillsPeriod(t *testing.T) {
	s := New("blue", config.BotConfig{})
	if s.Config().CommandEvery != config.DefaultBotConfig().CommandEvery {
		t.Errorf("expected default period, got %d", s.Config().CommandEvery)
	}
}
