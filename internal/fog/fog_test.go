package fog

import (
	"math/rand"
	"testing"
)

func TestNewGridIsHidden(t *testing.T) {
	g := NewGrid(5, 4)
	if g.VisibleCount() != 0 {
		t.Errorf("fresh grid has %d visible cells, expected 0", g.VisibleCount())
	}
}

func TestRecomputeClearsInclusiveRect(t *testing.T) {
	g := NewGrid(10, 10)
	g.Recompute([]Sighting{{X: 5.5, Y: 5.2, Sight: 2}})

	// floor(5.5)=5: 4..6 on both axes
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			inside := x >= 4 && x <= 6 && y >= 4 && y <= 6
			if g.IsHidden(x, y) == inside {
				t.Errorf("(%d,%d) hidden=%v, expected %v", x, y, g.IsHidden(x, y), !inside)
			}
		}
	}
}

func TestBuildingFootprintExtendsRect(t *testing.T) {
	g := NewGrid(20, 20)
	s := Sighting{X: 5, Y: 5, Sight: 3, FootprintW: 2, FootprintH: 3}
	x0, y0, x1, y1 := g.Rect(s)
	if x0 != 3 || y0 != 3 || x1 != 9 || y1 != 10 {
		t.Errorf("Rect() = %d,%d..%d,%d, expected 3,3..9,10", x0, y0, x1, y1)
	}
}

func TestRecomputeClampsAtEdges(t *testing.T) {
	g := NewGrid(4, 4)
	g.Recompute([]Sighting{{X: 0, Y: 0, Sight: 10}})
	if g.VisibleCount() != 16 {
		t.Errorf("expected whole map visible, got %d cells", g.VisibleCount())
	}
	if !g.IsHidden(-1, 0) || !g.IsHidden(0, 4) {
		t.Error("out of bounds should stay hidden")
	}
}

func TestSkipsDeadAndKeepFogged(t *testing.T) {
	g := NewGrid(6, 6)
	g.Recompute([]Sighting{
		{X: 1, Y: 1, Sight: 2, Dead: true},
		{X: 4, Y: 4, Sight: 2, KeepFogged: true},
	})
	if g.VisibleCount() != 0 {
		t.Errorf("expected no visible cells, got %d", g.VisibleCount())
	}
}

func TestRecomputeForgetsPreviousTick(t *testing.T) {
	g := NewGrid(10, 10)
	g.Recompute([]Sighting{{X: 1, Y: 1, Sight: 1}})
	g.Recompute([]Sighting{{X: 8, Y: 8, Sight: 1}})
	if !g.IsHidden(1, 1) {
		t.Error("cell seen last tick should be hidden again")
	}
	if g.IsHidden(8, 8) {
		t.Error("current sighting should be visible")
	}
}

// Every cell inside any sighting's rectangle is visible after recompute.
func TestFogMonotonicity(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	g := NewGrid(30, 20)

	for round := 0; round < 50; round++ {
		var ss []Sighting
		for i := 0; i < 1+rng.Intn(6); i++ {
			ss = append(ss, Sighting{
				X:          rng.Float64() * 30,
				Y:          rng.Float64() * 20,
				Sight:      1 + rng.Intn(6),
				FootprintW: rng.Intn(3),
				FootprintH: rng.Intn(3),
			})
		}
		g.Recompute(ss)

		for _, s := range ss {
			x0, y0, x1, y1 := g.Rect(s)
			for y := y0; y <= y1; y++ {
				for x := x0; x <= x1; x++ {
					if g.IsHidden(x, y) {
						t.Fatalf("round %d: (%d,%d) hidden inside sighting %+v", round, x, y, s)
					}
				}
			}
		}
	}
}

func TestIsPointOverFog(t *testing.T) {
	g := NewGrid(4, 4)
	g.Recompute([]Sighting{{X: 0, Y: 0, Sight: 1}})
	if g.IsPointOverFog(10, 10, 20) {
		t.Error("pixel (10,10) lies in visible cell (0,0)")
	}
	if !g.IsPointOverFog(30, 10, 20) {
		t.Error("pixel (30,10) lies in hidden cell (1,0)")
	}
}

func TestAccumulatorSeparatesTeams(t *testing.T) {
	a := NewAccumulator(8, 8)
	a.Recompute("blue", []Sighting{{X: 1, Y: 1, Sight: 1}})
	if a.IsHidden("blue", 1, 1) {
		t.Error("blue should see its own unit")
	}
	if !a.IsHidden("green", 1, 1) {
		t.Error("green has no sightings and should see nothing")
	}
}
