package sim

import (
	"math"

	"github.com/vovakirdan/tui-rts/internal/core"
	"github.com/vovakirdan/tui-rts/internal/grid"
	"github.com/vovakirdan/tui-rts/internal/pathfind"
	"github.com/vovakirdan/tui-rts/internal/registry"
)

// Directions are continuous in [0, D): 0 faces up (negative y) and values
// grow clockwise, so D/4 faces right.

func floorInt(v float64) int { return int(math.Floor(v)) }

func wrapDir(d, dirs float64) float64 {
	d = math.Mod(d, dirs)
	if d < 0 {
		d += dirs
	}
	return d
}

// angleTo returns the direction from (fx, fy) toward (tx, ty).
func angleTo(fx, fy, tx, ty, dirs float64) float64 {
	dx, dy := tx-fx, ty-fy
	a := dirs/2 - math.Atan2(dx, dy)*dirs/(2*math.Pi)
	return wrapDir(a, dirs)
}

// findAngle returns the direction from e toward p.
func findAngle(e *Entity, p core.Point) float64 {
	return angleTo(e.X, e.Y, p.X, p.Y, e.Directions())
}

// angleDiff returns the shortest signed turn from cur to next, in
// [-D/2, D/2].
func angleDiff(cur, next, dirs float64) float64 {
	if cur >= dirs/2 {
		cur -= dirs
	}
	if next >= dirs/2 {
		next -= dirs
	}
	d := next - cur
	if d < -dirs/2 {
		d += dirs
	}
	if d > dirs/2 {
		d -= dirs
	}
	return d
}

// turnTo turns e toward dir by at most TurnSpeed*TurnAdjustment.
func (w *World) turnTo(e *Entity, dir float64) {
	dirs := e.Directions()
	diff := angleDiff(e.Direction, dir, dirs)
	amount := e.Template.TurnSpeed * w.cfg.TurnAdjustment

	if math.Abs(diff) > amount {
		if diff < 0 {
			amount = -amount
		}
		e.Direction = wrapDir(e.Direction+amount, dirs)
		e.turning = true
		return
	}
	e.Direction = wrapDir(dir, dirs)
	e.turning = false
}

// heading returns the unit vector of a direction.
func heading(dir, dirs float64) (float64, float64) {
	a := -(dir / dirs) * 2 * math.Pi
	return -math.Sin(a), -math.Cos(a)
}

// advance moves e by m cells along its facing and records the step for
// render interpolation.
func advance(e *Entity, m float64) {
	hx, hy := heading(e.Direction, e.Directions())
	e.LastMoveX = m * hx
	e.LastMoveY = m * hy
	e.X += e.LastMoveX
	e.Y += e.LastMoveY
}

func (w *World) maxStep(e *Entity) float64 {
	return e.Template.Speed * w.cfg.SpeedAdjustment
}

// moveTo advances e one tick toward dest. It reports false when no path
// exists.
func (w *World) moveTo(e *Entity, dest core.Point, target *Entity, dist float64) bool {
	if e.Category == registry.CategoryAircraft {
		w.fly(e, dest, dist)
		return true
	}
	return w.drive(e, dest, target, dist)
}

// fly turns toward the destination and moves. Aircraft ignore the grid and
// other units.
func (w *World) fly(e *Entity, dest core.Point, dist float64) {
	w.turnTo(e, findAngle(e, dest))
	m := w.maxStep(e)
	if e.turning {
		m *= w.cfg.TurningFactor.Aircraft
	}
	advance(e, math.Min(m, dist))
}

// drive follows an A* path and steers around nearby obstructions.
func (w *World) drive(e *Entity, dest core.Point, target *Entity, dist float64) bool {
	sx, sy := e.Pos().Floor()
	ex, ey := dest.Floor()
	gm := w.grid

	outside := sx < 0 || sy < 0 || sx > gm.Width()-1 || sy > gm.Height()-1
	var next core.Point

	if outside || (sx == ex && sy == ey) {
		next = dest
	} else {
		layer := gm.Passable()
		if target != nil && (target.Category == registry.CategoryBuilding || target.Category == registry.CategoryTerrain) {
			layer = gm.PassableWith(grid.Cell{X: ex, Y: ey})
		}
		path := pathfind.Find(layer, grid.Cell{X: sx, Y: sy}, grid.Cell{X: ex, Y: ey}, pathfind.Euclidean)
		if !path.Found() {
			return false
		}
		next = core.Point{X: float64(path[1].X) + 0.5, Y: float64(path[1].Y) + 0.5}
	}
	dir := findAngle(e, next)

	collisions := w.checkForCollisions(e)
	if e.colliding {
		dir = steer(e, collisions, next)
	}

	w.turnTo(e, dir)

	m := w.maxStep(e)
	if e.turning {
		m *= w.cfg.TurningFactor.Vehicle
	}
	m = math.Min(m, dist)
	if e.hardCollision {
		m = -m * 0.5
	}
	m = w.clearStep(e, m)
	advance(e, m)
	return true
}

type collision struct {
	at   core.Point
	hard bool
}

// checkForCollisions projects e one full step along its current facing and
// lists the blocked cells and vehicles it would touch.
func (w *World) checkForCollisions(e *Entity) []collision {
	gs := float64(w.cfg.GridSize)
	cc := w.cfg.Collision
	n := cc.Neighbourhood

	hx, hy := heading(e.Direction, e.Directions())
	m := w.maxStep(e)
	nx, ny := e.X+m*hx, e.Y+m*hy

	e.colliding = false
	e.hardCollision = false
	var out []collision

	layer := w.grid.Passable()
	x1 := max(0, floorInt(nx)-n)
	x2 := min(layer.Width()-1, floorInt(nx)+n)
	y1 := max(0, floorInt(ny)-n)
	y2 := min(layer.Height()-1, floorInt(ny)+n)

	r := e.Radius()
	hardT := sq(r * cc.HardGrid / gs)
	softT := sq(r * cc.SoftGrid / gs)

	for x := x1; x <= x2; x++ {
		for y := y1; y <= y2; y++ {
			if !layer.Blocked(x, y) {
				continue
			}
			cx, cy := float64(x)+0.5, float64(y)+0.5
			d2 := sq(cx-nx) + sq(cy-ny)
			switch {
			case d2 < hardT:
				out = append(out, collision{at: core.Point{X: cx, Y: cy}, hard: true})
				e.colliding = true
				e.hardCollision = true
			case d2 < softT:
				out = append(out, collision{at: core.Point{X: cx, Y: cy}})
				e.colliding = true
			}
		}
	}

	reach := float64(n)
	for _, v := range w.byCategory[registry.CategoryVehicle] {
		if v == e || v.removed {
			continue
		}
		if math.Abs(v.X-e.X) >= reach || math.Abs(v.Y-e.Y) >= reach {
			continue
		}
		d2 := sq(v.X-nx) + sq(v.Y-ny)
		switch {
		case d2 < sq((r+v.Radius())/gs):
			out = append(out, collision{at: v.Pos(), hard: true})
			e.colliding = true
			e.hardCollision = true
		case d2 < sq((r*cc.SoftVehicle+v.Radius())/gs):
			out = append(out, collision{at: v.Pos()})
			e.colliding = true
		}
	}
	return out
}

// steer sums a repulsion from every collision (2 hard, 1 soft) and a mild
// attraction toward the next waypoint, and returns the resulting direction.
func steer(e *Entity, collisions []collision, next core.Point) float64 {
	dirs := e.Directions()
	var fx, fy float64
	push := func(p core.Point, weight float64) {
		a := -(findAngle(e, p) / dirs) * 2 * math.Pi
		fx += weight * math.Sin(a)
		fy += weight * math.Cos(a)
	}

	push(next, -0.25)
	for _, c := range collisions {
		if c.hard {
			push(c.at, 2)
		} else {
			push(c.at, 1)
		}
	}
	return angleTo(0, 0, fx, fy, dirs)
}

// clearStep shrinks a step that would bring e closer than the hard
// threshold to another vehicle. Steps that open the gap always pass.
func (w *World) clearStep(e *Entity, m float64) float64 {
	if m == 0 {
		return 0
	}
	if w.stepClear(e, m) {
		return m
	}
	if back := -math.Abs(m) * 0.5; w.stepClear(e, back) {
		return back
	}
	return 0
}

func (w *World) stepClear(e *Entity, m float64) bool {
	gs := float64(w.cfg.GridSize)
	hx, hy := heading(e.Direction, e.Directions())
	nx, ny := e.X+m*hx, e.Y+m*hy
	for _, v := range w.byCategory[registry.CategoryVehicle] {
		if v == e || v.removed {
			continue
		}
		t := sq((e.Radius() + v.Radius()) / gs)
		after := sq(v.X-nx) + sq(v.Y-ny)
		before := sq(v.X-e.X) + sq(v.Y-e.Y)
		if after < t && after < before {
			return false
		}
	}
	return true
}

func sq(v float64) float64 { return v * v }
