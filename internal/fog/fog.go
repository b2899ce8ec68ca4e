// Package fog computes live fog-of-war per team.
//
// Fog is rebuilt from scratch on every recompute: a cell is visible exactly
// when some sighting of that team covers it this tick. Nothing is
// remembered between ticks.
package fog

import "math"

// Sighting is one entity's contribution to a team's visibility.
type Sighting struct {
	X, Y       float64 // position in cells; top-left for buildings
	Sight      int     // sight radius in cells
	FootprintW int     // extra columns covered by a building base
	FootprintH int     // extra rows covered by a building base
	KeepFogged bool
	Dead       bool
}

// Grid is one team's fog layer; true means hidden.
type Grid struct {
	w, h   int
	hidden []bool
}

// NewGrid returns a fully hidden w×h grid.
func NewGrid(w, h int) *Grid {
	g := &Grid{w: w, h: h, hidden: make([]bool, w*h)}
	g.reset()
	return g
}

func (g *Grid) reset() {
	for i := range g.hidden {
		g.hidden[i] = true
	}
}

// Width returns the grid width in cells.
func (g *Grid) Width() int { return g.w }

// Height returns the grid height in cells.
func (g *Grid) Height() int { return g.h }

// Recompute resets the grid to hidden and clears the inclusive sight
// rectangle of every live sighting that is not kept fogged.
func (g *Grid) Recompute(sightings []Sighting) {
	g.reset()
	for _, s := range sightings {
		if s.Dead || s.KeepFogged {
			continue
		}
		x0, y0, x1, y1 := g.Rect(s)
		for y := y0; y <= y1; y++ {
			row := y * g.w
			for x := x0; x <= x1; x++ {
				g.hidden[row+x] = false
			}
		}
	}
}

// Rect returns the inclusive cell rectangle a sighting clears, clamped to
// the grid. An empty rectangle has x1 < x0 or y1 < y0.
func (g *Grid) Rect(s Sighting) (x0, y0, x1, y1 int) {
	cx := int(math.Floor(s.X))
	cy := int(math.Floor(s.Y))
	x0 = max(0, cx-s.Sight+1)
	y0 = max(0, cy-s.Sight+1)
	x1 = min(g.w-1, cx+s.Sight-1+s.FootprintW)
	y1 = min(g.h-1, cy+s.Sight-1+s.FootprintH)
	return x0, y0, x1, y1
}

// IsHidden reports whether (x, y) is fogged. Out of bounds is hidden.
func (g *Grid) IsHidden(x, y int) bool {
	if x < 0 || y < 0 || x >= g.w || y >= g.h {
		return true
	}
	return g.hidden[y*g.w+x]
}

// IsPointOverFog reports whether a pixel position lies over a hidden cell.
func (g *Grid) IsPointOverFog(px, py float64, gridSize int) bool {
	if gridSize <= 0 {
		return true
	}
	x := int(math.Floor(px / float64(gridSize)))
	y := int(math.Floor(py / float64(gridSize)))
	return g.IsHidden(x, y)
}

// VisibleCount returns the number of cleared cells.
func (g *Grid) VisibleCount() int {
	n := 0
	for _, h := range g.hidden {
		if !h {
			n++
		}
	}
	return n
}

// Accumulator holds one fog grid per team.
type Accumulator struct {
	w, h  int
	teams map[string]*Grid
}

// NewAccumulator returns an accumulator for a w×h map.
func NewAccumulator(w, h int) *Accumulator {
	return &Accumulator{w: w, h: h, teams: make(map[string]*Grid)}
}

// Recompute rebuilds the fog of one team.
func (a *Accumulator) Recompute(team string, sightings []Sighting) {
	a.Team(team).Recompute(sightings)
}

// Team returns the grid of a team, creating a fully hidden one on first use.
func (a *Accumulator) Team(team string) *Grid {
	g, ok := a.teams[team]
	if !ok {
		g = NewGrid(a.w, a.h)
		a.teams[team] = g
	}
	return g
}

// IsHidden reports whether (x, y) is fogged for team.
func (a *Accumulator) IsHidden(team string, x, y int) bool {
	return a.Team(team).IsHidden(x, y)
}
