package sim

import (
	"math"
	"sort"
	"time"

	"github.com/vovakirdan/tui-rts/internal/registry"
)

// Drawable is the render snapshot of one entity.
type Drawable struct {
	ID         EntityID
	Category   registry.Category
	Name       string
	Team       string
	Action     Action
	Frame      int
	Direction  int
	Selected   bool
	Health     float64
	LifeCode   LifeCode
	Brightness float64

	// X, Y are the interpolated position in cells.
	X, Y float64
	// PixelX, PixelY are the interpolated screen position relative to the
	// camera, before the sprite offset.
	PixelX, PixelY float64
	// OffsetX, OffsetY are the sprite offsets from the template.
	OffsetX, OffsetY int
}

// sortedForRender orders entities by y, then by x descending, so sprites
// further down the screen overlap those above.
func (w *World) sortedForRender() []*Entity {
	out := append([]*Entity(nil), w.entities...)
	sort.SliceStable(out, func(i, j int) bool { return renderLess(out[i], out[j]) })
	return out
}

func renderLess(a, b *Entity) bool {
	if a.Y != b.Y {
		return a.Y < b.Y
	}
	return a.X > b.X
}

// Drawables returns the render snapshot with the camera at the origin.
func (w *World) Drawables(interp float64) []Drawable {
	return w.DrawablesAt(interp, 0, 0)
}

// DrawablesAt returns one Drawable per entity in render order. interp is
// the factor from Clock.Interpolation; it moves vehicles, aircraft and
// projectiles back along their last step. It never mutates the world.
func (w *World) DrawablesAt(interp, camX, camY float64) []Drawable {
	order := w.renderOrder
	if w.renderDirty || order == nil {
		order = w.sortedForRender()
	}
	gs := float64(w.cfg.GridSize)

	out := make([]Drawable, 0, len(order))
	for _, e := range order {
		if e.removed {
			continue
		}
		x, y := e.X, e.Y
		switch e.Category {
		case registry.CategoryVehicle, registry.CategoryAircraft, registry.CategoryProjectile:
			x += e.LastMoveX * interp
			y += e.LastMoveY * interp
		}
		dirs := e.Template.Directions
		dir := 0
		if dirs > 0 {
			dir = int(math.Round(e.Direction)) % dirs
		}
		out = append(out, Drawable{
			ID:         e.ID,
			Category:   e.Category,
			Name:       e.Name,
			Team:       e.Team,
			Action:     e.Action,
			Frame:      e.AnimationIndex,
			Direction:  dir,
			Selected:   e.Selected,
			Health:     e.Health(),
			LifeCode:   e.LifeCode,
			Brightness: e.Brightness,
			X:          x,
			Y:          y,
			PixelX:     (x - camX) * gs,
			PixelY:     (y - camY) * gs,
			OffsetX:    e.Template.PixelOffsetX,
			OffsetY:    e.Template.PixelOffsetY,
		})
	}
	return out
}

// Clock tracks when the last step ran so renders between steps can
// interpolate.
type Clock struct {
	period  time.Duration
	last    time.Time
	started bool
}

// NewClock returns a clock for a fixed step period.
func NewClock(period time.Duration) *Clock {
	return &Clock{period: period}
}

// Stepped records that a step ran at now.
func (c *Clock) Stepped(now time.Time) {
	c.last = now
	c.started = true
}

// Interpolation returns (now-last)/period - 1 clamped to [-1, 0], or -1
// before the first step.
func (c *Clock) Interpolation(now time.Time) float64 {
	if !c.started || c.period <= 0 {
		return -1
	}
	f := float64(now.Sub(c.last))/float64(c.period) - 1
	return math.Max(-1, math.Min(0, f))
}
