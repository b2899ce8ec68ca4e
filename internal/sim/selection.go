package sim

import "github.com/vovakirdan/tui-rts/internal/registry"

// Select marks the given entities of team as selected and clears the rest.
// Entities of other teams and unselectable ones are ignored.
func (w *World) Select(team string, ids ...EntityID) []EntityID {
	want := make(map[EntityID]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []EntityID
	for _, e := range w.entities {
		e.Selected = want[e.ID] && e.Selectable && e.Team == team && e.Alive()
		if e.Selected {
			out = append(out, e.ID)
		}
	}
	return out
}

// Selected returns the ids of selected entities in insertion order.
func (w *World) Selected() []EntityID {
	var out []EntityID
	for _, e := range w.entities {
		if e.Selected && e.Alive() {
			out = append(out, e.ID)
		}
	}
	return out
}

// ClearSelection deselects everything.
func (w *World) ClearSelection() {
	for _, e := range w.entities {
		e.Selected = false
	}
}

// EntityAt returns the topmost live entity covering the point (x, y) in
// cells. Movers are hit within their radius, buildings and terrain within
// their base.
func (w *World) EntityAt(x, y float64) (*Entity, bool) {
	gs := float64(w.cfg.GridSize)
	order := w.sortedForRender()
	for i := len(order) - 1; i >= 0; i-- {
		e := order[i]
		if !e.Alive() || e.Category == registry.CategoryProjectile {
			continue
		}
		switch e.Category {
		case registry.CategoryBuilding, registry.CategoryTerrain:
			bw := float64(e.Template.BaseWidth) / gs
			bh := float64(e.Template.BaseHeight) / gs
			if x >= e.X && x < e.X+bw && y >= e.Y && y < e.Y+bh {
				return e, true
			}
		default:
			r := e.Radius() / gs
			if sq(x-e.X)+sq(y-e.Y) <= sq(r) {
				return e, true
			}
		}
	}
	return nil, false
}
