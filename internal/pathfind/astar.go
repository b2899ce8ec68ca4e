// Package pathfind implements A* over an 8-connected obstruction grid.
//
// Search order is fully deterministic: the open set is ordered by f-score and
// then by insertion sequence, and neighbours are always expanded in the same
// order. Two peers running the same query get the same path.
package pathfind

import (
	"container/heap"
	"math"

	"github.com/vovakirdan/tui-rts/internal/grid"
)

// Grid is the obstruction view A* searches. *grid.Layer satisfies it.
type Grid interface {
	Width() int
	Height() int
	Blocked(x, y int) bool
}

// Heuristic estimates the remaining cost between two cells.
type Heuristic func(a, b grid.Cell) float64

// Euclidean is the straight-line distance between cell centres.
func Euclidean(a, b grid.Cell) float64 {
	return math.Hypot(float64(b.X-a.X), float64(b.Y-a.Y))
}

// Manhattan is the 4-connected distance. It overestimates on diagonal
// moves, so paths are not guaranteed shortest.
func Manhattan(a, b grid.Cell) float64 {
	return math.Abs(float64(b.X-a.X)) + math.Abs(float64(b.Y-a.Y))
}

// Chebyshev is the king-move distance.
func Chebyshev(a, b grid.Cell) float64 {
	return math.Max(math.Abs(float64(b.X-a.X)), math.Abs(float64(b.Y-a.Y)))
}

// Path is a sequence of cells from start to goal inclusive.
type Path []grid.Cell

// Found reports whether the path leads anywhere. A path of length 0 or 1
// means there is no route (or start == goal).
func (p Path) Found() bool {
	return len(p) > 1
}

type node struct {
	cell   grid.Cell
	g, f   float64
	seq    int
	parent *node
	index  int
}

type openSet []*node

func (o openSet) Len() int { return len(o) }
func (o openSet) Less(i, j int) bool {
	if o[i].f != o[j].f {
		return o[i].f < o[j].f
	}
	return o[i].seq < o[j].seq
}
func (o openSet) Swap(i, j int) { o[i], o[j] = o[j], o[i]; o[i].index = i; o[j].index = j }
func (o *openSet) Push(x any)   { n := x.(*node); n.index = len(*o); *o = append(*o, n) }
func (o *openSet) Pop() any {
	old := *o
	n := old[len(old)-1]
	old[len(old)-1] = nil
	*o = old[:len(old)-1]
	return n
}

// Orthogonal moves first, then diagonals.
var dirs = [8]grid.Cell{
	{X: 0, Y: -1}, {X: 1, Y: 0}, {X: 0, Y: 1}, {X: -1, Y: 0},
	{X: 1, Y: -1}, {X: 1, Y: 1}, {X: -1, Y: 1}, {X: -1, Y: -1},
}

func inBounds(g Grid, c grid.Cell) bool {
	return c.X >= 0 && c.Y >= 0 && c.X < g.Width() && c.Y < g.Height()
}

// Find searches for the cheapest route from start to goal. Orthogonal steps
// cost 1 and diagonal steps cost √2; diagonals may not cut past a blocked
// orthogonal neighbour. The start cell itself may be blocked.
//
// When start == goal the result is the single cell [start]. When the goal is
// blocked, out of bounds or unreachable the result is empty.
func Find(g Grid, start, goal grid.Cell, h Heuristic) Path {
	if h == nil {
		h = Euclidean
	}
	if !inBounds(g, start) || !inBounds(g, goal) || g.Blocked(goal.X, goal.Y) {
		return nil
	}
	if start == goal {
		return Path{start}
	}

	w := g.Width()
	key := func(c grid.Cell) int { return c.Y*w + c.X }

	seq := 0
	first := &node{cell: start, f: h(start, goal)}
	open := &openSet{first}
	heap.Init(open)

	closed := make(map[int]bool)
	best := map[int]*node{key(start): first}

	for open.Len() > 0 {
		cur := heap.Pop(open).(*node)
		if cur.cell == goal {
			return trace(cur)
		}
		k := key(cur.cell)
		if closed[k] {
			continue
		}
		closed[k] = true

		for _, d := range dirs {
			next := grid.Cell{X: cur.cell.X + d.X, Y: cur.cell.Y + d.Y}
			if g.Blocked(next.X, next.Y) {
				continue
			}
			diagonal := d.X != 0 && d.Y != 0
			if diagonal && (g.Blocked(cur.cell.X+d.X, cur.cell.Y) || g.Blocked(cur.cell.X, cur.cell.Y+d.Y)) {
				continue
			}
			nk := key(next)
			if closed[nk] {
				continue
			}
			cost := 1.0
			if diagonal {
				cost = math.Sqrt2
			}
			ng := cur.g + cost
			if prev, ok := best[nk]; ok && ng >= prev.g {
				continue
			}
			seq++
			n := &node{cell: next, g: ng, f: ng + h(next, goal), seq: seq, parent: cur}
			best[nk] = n
			heap.Push(open, n)
		}
	}
	return nil
}

func trace(end *node) Path {
	var p Path
	for n := end; n != nil; n = n.parent {
		p = append(p, n.cell)
	}
	for i, j := 0, len(p)-1; i < j; i, j = i+1, j-1 {
		p[i], p[j] = p[j], p[i]
	}
	return p
}
