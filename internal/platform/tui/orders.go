package tui

import (
	"github.com/vovakirdan/tui-rts/internal/core"
	"github.com/vovakirdan/tui-rts/internal/registry"
	"github.com/vovakirdan/tui-rts/internal/sim"
)

// constructible lists the unit templates a starport can build: every
// vehicle and aircraft in the catalog.
func constructible(cat *registry.Catalog) []registry.Info {
	out := cat.List(registry.CategoryVehicle)
	return append(out, cat.List(registry.CategoryAircraft)...)
}

// Commander turns viewer actions into selection changes and commands for
// the local team. Selection is local state; only commands reach the
// simulation, through whatever issues them (the world directly, or a
// lockstep client).
type Commander struct {
	Team  string
	units []registry.Info
	build int
}

// NewCommander returns a commander for team.
func NewCommander(team string, cat *registry.Catalog) *Commander {
	return &Commander{Team: team, units: constructible(cat)}
}

// BuildChoice returns the unit the construct order will request.
func (c *Commander) BuildChoice() string {
	if len(c.units) == 0 {
		return ""
	}
	return c.units[c.build].Name
}

// CycleBuild picks the next constructible unit.
func (c *Commander) CycleBuild() {
	if len(c.units) > 0 {
		c.build = (c.build + 1) % len(c.units)
	}
}

// Handle applies a selection action to w, or builds the command for an
// order action. ok is false when there is nothing to send.
func (c *Commander) Handle(w *sim.World, a core.Action, cursor core.Point) (cmd sim.Command, ok bool) {
	switch a {
	case core.ActionSelect:
		c.toggle(w, cursor)
		return cmd, false
	case core.ActionSelectNext:
		c.selectNext(w)
		return cmd, false
	case core.ActionClear:
		w.ClearSelection()
		return cmd, false
	}

	sel := w.Selected()
	if len(sel) == 0 {
		return cmd, false
	}
	target, hit := w.EntityAt(cursor.X, cursor.Y)
	if hit {
		// nothing under fog can be targeted
		x, y := cursor.Floor()
		hit = !w.Fog().IsHidden(c.Team, x, y)
	}

	var o sim.Order
	switch a {
	case core.ActionMove:
		o = sim.MoveTo(cursor)
	case core.ActionAttack:
		if !hit || target.Team == "" || target.Team == c.Team {
			return cmd, false
		}
		o = sim.AttackUID(target.ID)
	case core.ActionPatrol:
		o = sim.Order{Type: sim.OrderPatrol, To: &cursor}
	case core.ActionGuard:
		if !hit || target.Team != c.Team {
			return cmd, false
		}
		o = sim.Order{Type: sim.OrderGuard, ToUID: target.ID}
	case core.ActionDeploy:
		if !hit || target.Category != registry.CategoryTerrain {
			return cmd, false
		}
		o = sim.Order{Type: sim.OrderDeploy, ToUID: target.ID}
	case core.ActionHunt:
		o = sim.Order{Type: sim.OrderHunt}
	case core.ActionSentry:
		o = sim.Order{Type: sim.OrderSentry}
	case core.ActionConstruct:
		if len(c.units) == 0 {
			return cmd, false
		}
		u := c.units[c.build]
		var ports []sim.EntityID
		for _, id := range sel {
			if e, ok := w.Get(id); ok && e.Category == registry.CategoryBuilding && e.Template.CanConstruct {
				ports = append(ports, id)
			}
		}
		if len(ports) == 0 {
			return cmd, false
		}
		sel = ports
		o = sim.Order{Type: sim.OrderConstructUnit, Details: &sim.Spawn{Category: u.Category, Name: u.Name}}
	default:
		return cmd, false
	}
	return sim.Command{UIDs: sel, Details: o}, true
}

// toggle adds or removes the own entity under the cursor from the selection.
func (c *Commander) toggle(w *sim.World, p core.Point) {
	e, ok := w.EntityAt(p.X, p.Y)
	if !ok || e.Team != c.Team {
		return
	}
	ids := w.Selected()
	kept := ids[:0]
	found := false
	for _, id := range ids {
		if id == e.ID {
			found = true
			continue
		}
		kept = append(kept, id)
	}
	if !found {
		kept = append(kept, e.ID)
	}
	w.Select(c.Team, kept...)
}

// selectNext selects the own mobile unit after the current selection.
func (c *Commander) selectNext(w *sim.World) {
	var units []*sim.Entity
	for _, e := range w.Entities() {
		if e.Team == c.Team && e.Selectable && e.Alive() && e.Category.Mobile() {
			units = append(units, e)
		}
	}
	if len(units) == 0 {
		return
	}
	next := 0
	if sel := w.Selected(); len(sel) > 0 {
		last := sel[len(sel)-1]
		for i, e := range units {
			if e.ID == last {
				next = (i + 1) % len(units)
				break
			}
		}
	}
	w.Select(c.Team, units[next].ID)
}

// Focus returns the position of the single selected entity, for centring
// the cursor after tab.
func Focus(w *sim.World) (core.Point, bool) {
	sel := w.Selected()
	if len(sel) != 1 {
		return core.Point{}, false
	}
	e, ok := w.Get(sel[0])
	if !ok {
		return core.Point{}, false
	}
	return e.Pos(), true
}
