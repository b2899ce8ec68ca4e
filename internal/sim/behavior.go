package sim

import "github.com/vovakirdan/tui-rts/internal/registry"

// behavior is the per-category dispatch table.
type behavior struct {
	processOrders func(w *World, e *Entity)
	// processActions advances the animation state after orders ran.
	processActions func(w *World, e *Entity)
	// checksHealth makes animate derive the life code and remove the dead.
	checksHealth bool
}

var behaviors = [...]behavior{
	registry.CategoryUnknown:    {processOrders: noop, processActions: noop},
	registry.CategoryBuilding:   {processOrders: buildingOrders, processActions: buildingActions, checksHealth: true},
	registry.CategoryVehicle:    {processOrders: unitOrders, processActions: unitActions, checksHealth: true},
	registry.CategoryAircraft:   {processOrders: unitOrders, processActions: unitActions, checksHealth: true},
	registry.CategoryTerrain:    {processOrders: noop, processActions: noop},
	registry.CategoryProjectile: {processOrders: projectileOrders, processActions: projectileActions},
}

func behaviorFor(c registry.Category) behavior {
	if int(c) < 0 || int(c) >= len(behaviors) {
		return behaviors[registry.CategoryUnknown]
	}
	return behaviors[c]
}

func noop(*World, *Entity) {}

// animate updates the life code, removes dead entities and advances the
// current action.
func (w *World) animate(e *Entity) {
	b := behaviorFor(e.Category)
	if b.checksHealth {
		e.updateLifeCode()
		if e.LifeCode == LifeDead {
			w.Remove(e)
			return
		}
	}
	b.processActions(w, e)
}

// cycle advances the animation index through n frames and reports whether
// it wrapped.
func (e *Entity) cycle(n int) bool {
	e.AnimationIndex++
	if e.AnimationIndex >= n {
		e.AnimationIndex = 0
		return true
	}
	return false
}

func unitActions(w *World, e *Entity) {
	switch e.Action {
	case ActionStand:
		e.cycle(e.Template.Frame("stand"))
	case ActionTeleport:
		e.cycle(e.Template.Frame("stand"))
		if e.Brightness == 0 {
			e.Brightness = 0.6
		}
		e.Brightness -= 0.05
		if e.Brightness <= 1e-9 {
			e.Brightness = 0
			e.Action = ActionStand
		}
	}
}
