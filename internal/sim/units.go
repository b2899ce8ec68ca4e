package sim

import (
	"github.com/vovakirdan/tui-rts/internal/core"
	"github.com/vovakirdan/tui-rts/internal/registry"
)

// Search range bonuses in cells beyond sight.
const (
	sentryBonus = 2
	huntBonus   = 100
	patrolBonus = 1
	guardBonus  = 1
)

// deployFacing is the direction a harvester turns to before deploying.
const deployFacing = 6

// destination resolves where an order points: the target entity's position
// when ToUID is set, otherwise To.
func (w *World) destination(o Order) (core.Point, *Entity, bool) {
	if o.ToUID != 0 {
		t, ok := w.byID[o.ToUID]
		if !ok {
			return core.Point{}, nil, false
		}
		return t.Pos(), t, true
	}
	if o.To != nil {
		return *o.To, nil, true
	}
	return core.Point{}, nil, false
}

// unitOrders runs one tick of a vehicle or aircraft order.
func unitOrders(w *World, e *Entity) {
	e.LastMoveX, e.LastMoveY = 0, 0
	if e.reloadTimeLeft > 0 {
		e.reloadTimeLeft--
	}

	dest, target, ok := w.destination(e.Order)
	dist := e.Pos().Dist(dest)
	radius := e.Radius() / float64(w.cfg.GridSize)
	vehicle := e.Category == registry.CategoryVehicle

	switch e.Order.Type {
	case OrderMove:
		switch {
		case !ok:
			e.SetOrder(Stand())
		case dist < radius:
			e.SetOrder(Stand())
		case vehicle && e.colliding && dist < 3*radius:
			e.SetOrder(Stand())
		default:
			if vehicle && e.colliding && dist < 5*radius {
				e.Order.collisions++
				if e.Order.collisions > w.cfg.RetryThreshold {
					e.SetOrder(Stand())
					return
				}
			}
			if !w.moveTo(e, dest, target, dist) {
				e.SetOrder(Stand())
			}
		}

	case OrderDeploy:
		if !vehicle || e.Name != nameHarvester || target == nil || target.Name != nameOilfield || !target.Alive() {
			e.SetOrder(Stand())
			return
		}
		if dist < radius+1 {
			w.turnTo(e, deployFacing)
			if !e.turning {
				w.deploy(e, target)
			}
			return
		}
		if !w.moveTo(e, dest, target, dist) {
			e.SetOrder(Stand())
		}

	case OrderStand:
		if ts := w.findTargetsInSight(e, 0); len(ts) > 0 {
			e.SetOrder(AttackUID(ts[0].ID))
		}

	case OrderSentry:
		w.engage(e, sentryBonus)

	case OrderHunt:
		w.engage(e, huntBonus)

	case OrderAttack:
		if !w.isValidTarget(e, target) {
			w.cancelCurrentOrder(e)
			return
		}
		if w.isTargetInSight(e, target, 0) {
			w.aimAndFire(e, target)
			return
		}
		w.moveTo(e, dest, target, dist)

	case OrderPatrol:
		if w.engage(e, patrolBonus) {
			return
		}
		if !ok {
			e.SetOrder(Stand())
			return
		}
		if dist < float64(e.Sight()) {
			e.Order.To, e.Order.From = e.Order.From, e.Order.To
			return
		}
		w.moveTo(e, dest, target, dist)

	case OrderGuard:
		if target == nil || !target.Alive() {
			w.cancelCurrentOrder(e)
			return
		}
		if dist < float64(e.Sight()) {
			w.engage(e, guardBonus)
			return
		}
		w.moveTo(e, dest, target, dist)

	default:
		e.SetOrder(Stand())
	}
}

// engage switches to attacking the nearest target within sight+bonus,
// keeping the current order to resume afterwards.
func (w *World) engage(e *Entity, bonus int) bool {
	ts := w.findTargetsInSight(e, bonus)
	if len(ts) == 0 {
		return false
	}
	e.SetOrder(AttackUID(ts[0].ID).withPrevious(e.Order))
	return true
}

// cancelCurrentOrder resumes the saved order, or stands.
func (w *World) cancelCurrentOrder(e *Entity) {
	if e.Order.Previous != nil {
		e.SetOrder(*e.Order.Previous)
		return
	}
	e.SetOrder(Stand())
}

// deploy replaces a harvester vehicle and its oilfield with a harvester
// building.
func (w *World) deploy(e *Entity, oilfield *Entity) {
	x, y := oilfield.X, oilfield.Y
	w.Remove(oilfield)
	w.Remove(e)
	_, _ = w.Add(Spawn{
		Category: registry.CategoryBuilding,
		Name:     nameHarvester,
		Team:     e.Team,
		X:        x,
		Y:        y,
		Action:   ActionDeploy,
	})
}
