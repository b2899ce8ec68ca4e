// Package bot scripts a computer opponent. It reads a world and produces the
// commands a player would send, so the same script drives a rival team in
// a local skirmish and a headless lockstep client.
package bot

import (
	"math"

	"github.com/vovakirdan/tui-rts/internal/config"
	"github.com/vovakirdan/tui-rts/internal/core"
	"github.com/vovakirdan/tui-rts/internal/registry"
	"github.com/vovakirdan/tui-rts/internal/sim"
)

// builds is the rotation of units a starport asks for.
var builds = []string{"scout-tank", "heavy-tank", "scout-tank", "harvester"}

// Script issues orders for one team.
type Script struct {
	Team string
	cfg  config.BotConfig
	next int
}

// New returns a script for team. A zero CommandEvery falls back to the
// default bot config.
func New(team string, cfg config.BotConfig) *Script {
	if cfg.CommandEvery <= 0 {
		cfg.CommandEvery = config.DefaultBotConfig().CommandEvery
	}
	return &Script{Team: team, cfg: cfg}
}

// Config returns the tuning in use.
func (s *Script) Config() config.BotConfig { return s.cfg }

// Orders returns the commands for the world's current tick. The script only
// acts every CommandEvery ticks; in between it returns nil.
func (s *Script) Orders(w *sim.World) []sim.Command {
	tick := w.Tick()
	if tick == 0 || tick%uint64(s.cfg.CommandEvery) != 0 {
		return nil
	}

	var cmds []sim.Command
	var idle []sim.EntityID
	for _, e := range w.Entities() {
		if e.Team != s.Team || !e.Alive() {
			continue
		}
		switch {
		case e.Category == registry.CategoryBuilding && e.Template.CanConstruct:
			if c, ok := s.construct(w, e); ok {
				cmds = append(cmds, c)
			}
		case e.Category == registry.CategoryVehicle && e.Name == "harvester":
			if e.Order.Type != sim.OrderStand {
				continue
			}
			if c, ok := deploy(w, e); ok {
				cmds = append(cmds, c)
			}
		case e.Category.Mobile() && e.Selectable:
			if e.Order.Type == sim.OrderStand {
				idle = append(idle, e.ID)
			}
		}
	}

	if len(idle) > 0 {
		switch {
		case s.cfg.HuntAfter >= 0 && tick >= uint64(s.cfg.HuntAfter):
			cmds = append(cmds, sim.Command{UIDs: idle, Details: sim.Order{Type: sim.OrderHunt}})
		case s.cfg.Patrol:
			m := w.Map()
			centre := core.Pt(float64(m.Width())/2, float64(m.Height())/2)
			cmds = append(cmds, sim.Command{UIDs: idle, Details: sim.Order{Type: sim.OrderPatrol, To: &centre}})
		}
	}
	return cmds
}

// construct asks an idle starport for the next unit in the rotation when
// the team can pay for it.
func (s *Script) construct(w *sim.World, port *sim.Entity) (sim.Command, bool) {
	if port.Order.Type != sim.OrderStand || port.Action != sim.ActionStand {
		return sim.Command{}, false
	}
	name := builds[s.next%len(builds)]
	t, err := w.Catalog().Lookup(registry.CategoryVehicle, name)
	if err != nil || w.Cash(s.Team) < t.Cost {
		return sim.Command{}, false
	}
	s.next++
	return sim.Command{
		UIDs:    []sim.EntityID{port.ID},
		Details: sim.Order{Type: sim.OrderConstructUnit, Details: &sim.Spawn{Category: registry.CategoryVehicle, Name: name}},
	}, true
}

// deploy sends a harvester to the nearest oilfield.
func deploy(w *sim.World, h *sim.Entity) (sim.Command, bool) {
	var best *sim.Entity
	bestDist := math.Inf(1)
	for _, t := range w.ByCategory(registry.CategoryTerrain) {
		if t.Name != "oilfield" || !t.Alive() {
			continue
		}
		if d := math.Hypot(t.X-h.X, t.Y-h.Y); d < bestDist {
			best, bestDist = t, d
		}
	}
	if best == nil {
		return sim.Command{}, false
	}
	return sim.Command{UIDs: []sim.EntityID{h.ID}, Details: sim.Order{Type: sim.OrderDeploy, ToUID: best.ID}}, true
}
