package sim

import (
	"sort"

	"github.com/vovakirdan/tui-rts/internal/core"
	"github.com/vovakirdan/tui-rts/internal/registry"
)

// center returns the middle of a building or terrain base, or the
// position of anything else.
func (w *World) center(t *Entity) core.Point {
	if t.Category == registry.CategoryBuilding || t.Category == registry.CategoryTerrain {
		gs := float64(w.cfg.GridSize)
		return core.Point{
			X: t.X + float64(t.Template.BaseWidth)/gs/2,
			Y: t.Y + float64(t.Template.BaseHeight)/gs/2,
		}
	}
	return t.Pos()
}

// aimPoint is where a projectile should fly to hit t. Aircraft are drawn
// above their shadow.
func (w *World) aimPoint(t *Entity) core.Point {
	p := w.center(t)
	if t.Category == registry.CategoryAircraft {
		p.Y -= float64(t.Template.PixelShadowHeight) / float64(w.cfg.GridSize)
	}
	return p
}

// muzzle is the point projectiles leave e from, before the radius offset.
func (w *World) muzzle(e *Entity) core.Point {
	p := w.center(e)
	if e.Category == registry.CategoryAircraft {
		p.Y -= float64(e.Template.PixelShadowHeight) / float64(w.cfg.GridSize)
	}
	return p
}

// findAngleForFiring returns the direction from e's muzzle to t's aim point.
func (w *World) findAngleForFiring(e *Entity, t *Entity) float64 {
	from, to := w.muzzle(e), w.aimPoint(t)
	return angleTo(from.X, from.Y, to.X, to.Y, e.Directions())
}

// isValidTarget reports whether e may attack t: t exists, is alive, is on
// another team and e's weapon can reach its layer.
func (w *World) isValidTarget(e *Entity, t *Entity) bool {
	if t == nil || !t.Alive() || t == e {
		return false
	}
	if t.Team == "" || t.Team == e.Team {
		return false
	}
	switch {
	case t.IsLand():
		return e.Template.CanAttackLand
	case t.IsAir():
		return e.Template.CanAttackAir
	}
	return false
}

// isTargetInSight reports whether t lies within sight+bonus of e.
func (w *World) isTargetInSight(e *Entity, t *Entity, bonus int) bool {
	return w.center(e).Dist(w.center(t)) < float64(e.Sight()+bonus)
}

// findTargetsInSight lists valid targets within sight+bonus, nearest first.
// Ties keep the lower id first.
func (w *World) findTargetsInSight(e *Entity, bonus int) []*Entity {
	if !e.Template.CanAttack() {
		return nil
	}
	type cand struct {
		t *Entity
		d float64
	}
	from := w.center(e)
	limit := float64(e.Sight() + bonus)

	var cs []cand
	for _, t := range w.entities {
		if !w.isValidTarget(e, t) {
			continue
		}
		d := from.Dist(w.center(t))
		if d < limit {
			cs = append(cs, cand{t, d})
		}
	}
	sort.SliceStable(cs, func(i, j int) bool {
		if cs[i].d != cs[j].d {
			return cs[i].d < cs[j].d
		}
		return cs[i].t.ID < cs[j].t.ID
	})

	out := make([]*Entity, len(cs))
	for i, c := range cs {
		out[i] = c.t
	}
	return out
}

// aimAndFire turns toward t and fires once the turn is complete and the
// weapon has reloaded.
func (w *World) aimAndFire(e *Entity, t *Entity) {
	dir := w.findAngleForFiring(e, t)
	w.turnTo(e, dir)
	if e.turning || e.reloadTimeLeft > 0 {
		return
	}
	w.fire(e, t, dir)
}

func (w *World) fire(e *Entity, t *Entity, dir float64) {
	pt, err := w.catalog.Lookup(registry.CategoryProjectile, e.Template.Weapon)
	if err != nil {
		return
	}
	e.reloadTimeLeft = pt.ReloadTime

	gs := float64(w.cfg.GridSize)
	hx, hy := heading(dir, e.Directions())
	origin := w.muzzle(e)
	x := origin.X + e.Radius()*hx/gs
	y := origin.Y + e.Radius()*hy/gs

	p, err := w.Add(Spawn{
		Category:  registry.CategoryProjectile,
		Name:      pt.Name,
		Team:      e.Team,
		X:         x,
		Y:         y,
		Direction: dir * float64(pt.Directions) / e.Directions(),
	})
	if err != nil {
		return
	}
	p.target = t.ID
	w.observer.Sound(pt.Name)
}

// reachedTarget reports whether projectile p is over its target.
func (w *World) reachedTarget(p *Entity, t *Entity) bool {
	gs := float64(w.cfg.GridSize)
	switch t.Category {
	case registry.CategoryBuilding:
		bw := float64(t.Template.BaseWidth) / gs
		bh := float64(t.Template.BaseHeight) / gs
		return p.X >= t.X && p.X <= t.X+bw && p.Y >= t.Y && p.Y <= t.Y+bh
	case registry.CategoryAircraft:
		shadow := float64(t.Template.PixelShadowHeight) / gs
		return sq(t.X-p.X)+sq(t.Y-(p.Y+shadow)) < sq(t.Radius()/gs)
	default:
		return sq(t.X-p.X)+sq(t.Y-p.Y) < sq(t.Radius()/gs)
	}
}

func projectileOrders(w *World, p *Entity) {
	p.LastMoveX, p.LastMoveY = 0, 0
	if p.Order.Type != OrderFire {
		return
	}

	t, alive := w.byID[p.target]
	if alive && t.removed {
		alive = false
	}

	if p.distanceTravelled > p.Template.Range {
		w.Remove(p)
		return
	}
	if alive && w.reachedTarget(p, t) {
		t.Life -= p.Template.Damage
		p.Order = Order{Type: OrderExplode}
		p.Action = ActionExplode
		p.AnimationIndex = 0
		return
	}

	if alive && p.Template.TurnSpeed > 0 {
		aim := w.aimPoint(t)
		w.turnTo(p, findAngle(p, aim))
	}
	m := w.maxStep(p)
	advance(p, m)
	p.distanceTravelled += m
}

func projectileActions(w *World, p *Entity) {
	switch p.Action {
	case ActionExplode:
		p.AnimationIndex++
		if p.AnimationIndex >= p.Template.Frame("explode") {
			w.Remove(p)
		}
	}
}
