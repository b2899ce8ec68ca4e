package sim

import (
	"math"
	"testing"
	"time"

	"github.com/vovakirdan/tui-rts/internal/core"
	"github.com/vovakirdan/tui-rts/internal/registry"
)

func TestDrawablesInterpolateMovers(t *testing.T) {
	w, _ := newTestWorld(10, 10)
	tank := mustAdd(t, w, Spawn{Category: registry.CategoryVehicle, Name: "scout-tank", Team: "blue", X: 1.5, Y: 1.5, Direction: 2})
	mustAdd(t, w, building("base", "blue", 6, 6))
	w.ProcessCommand([]EntityID{tank.ID}, MoveTo(core.Pt(8.5, 1.5)))
	w.Step()

	if tank.LastMoveX <= 0 {
		t.Fatalf("tank did not move, last move %v", tank.LastMoveX)
	}
	now := w.Drawables(0)
	prev := w.Drawables(-1)
	var tankNow, tankPrev, baseNow, basePrev Drawable
	for i := range now {
		switch now[i].ID {
		case tank.ID:
			tankNow, tankPrev = now[i], prev[i]
		default:
			baseNow, basePrev = now[i], prev[i]
		}
	}
	if tankNow.X != tank.X {
		t.Errorf("interp 0 x = %v, expected %v", tankNow.X, tank.X)
	}
	if math.Abs(tankPrev.X-(tank.X-tank.LastMoveX)) > 1e-12 {
		t.Errorf("interp -1 x = %v, expected the previous position", tankPrev.X)
	}
	if baseNow != basePrev {
		t.Error("buildings must not be interpolated")
	}
	if tankNow.Direction != 2 || tankNow.Health != 1 || tankNow.Team != "blue" {
		t.Errorf("drawable %+v", tankNow)
	}
}

func TestDrawablesAtCamera(t *testing.T) {
	w, _ := newTestWorld(10, 10)
	b := mustAdd(t, w, building("base", "blue", 6, 5))
	d := w.DrawablesAt(0, 2, 1)
	if len(d) != 1 || d[0].ID != b.ID {
		t.Fatalf("drawables = %+v", d)
	}
	if d[0].PixelX != 80 || d[0].PixelY != 80 {
		t.Errorf("pixel position = (%v,%v), expected (80,80)", d[0].PixelX, d[0].PixelY)
	}
	if d[0].OffsetY != b.Template.PixelOffsetY {
		t.Errorf("offset y = %d, expected %d", d[0].OffsetY, b.Template.PixelOffsetY)
	}
}

func TestDrawableDirectionRounds(t *testing.T) {
	w, _ := newTestWorld(10, 10)
	mustAdd(t, w, Spawn{Category: registry.CategoryVehicle, Name: "transport", X: 1, Y: 1, Direction: 7.6})
	if got := w.Drawables(0)[0].Direction; got != 0 {
		t.Errorf("direction 7.6 drawn as %d, expected 0", got)
	}
}

func TestClockInterpolation(t *testing.T) {
	c := NewClock(100 * time.Millisecond)
	start := time.Unix(100, 0)
	if got := c.Interpolation(start); got != -1 {
		t.Errorf("before the first step = %v, expected -1", got)
	}

	c.Stepped(start)
	tests := []struct {
		after time.Duration
		want  float64
	}{
		{0, -1},
		{25 * time.Millisecond, -0.75},
		{100 * time.Millisecond, 0},
		{250 * time.Millisecond, 0},
		{-time.Second, -1},
	}
	for _, tt := range tests {
		if got := c.Interpolation(start.Add(tt.after)); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("Interpolation(+%v) = %v, expected %v", tt.after, got, tt.want)
		}
	}
}

func TestSelection(t *testing.T) {
	w, _ := newTestWorld(10, 10)
	a := mustAdd(t, w, vehicle("scout-tank", "blue", 2.5, 2.5))
	enemy := mustAdd(t, w, vehicle("scout-tank", "red", 6.5, 6.5))
	rocks := mustAdd(t, w, Spawn{Category: registry.CategoryTerrain, Name: "smallrocks", X: 4, Y: 4})

	got := w.Select("blue", a.ID, enemy.ID, rocks.ID)
	if len(got) != 1 || got[0] != a.ID {
		t.Errorf("Select = %v, expected only %d", got, a.ID)
	}
	if e, ok := w.EntityAt(2.7, 2.6); !ok || e != a {
		t.Error("EntityAt missed the tank")
	}
	if e, ok := w.EntityAt(4.5, 4.5); !ok || e != rocks {
		t.Error("EntityAt missed the rocks")
	}
	if _, ok := w.EntityAt(8.5, 1.5); ok {
		t.Error("EntityAt hit empty ground")
	}
	w.ClearSelection()
	if len(w.Selected()) != 0 {
		t.Error("selection not cleared")
	}
}
