// Package grid holds the boolean obstruction layers the simulation derives
// from terrain and entity placement: terrain, buildable and passable.
//
// All layers use true for "blocked". Anything outside the map counts as
// blocked.
package grid

// Cell is an integer grid coordinate.
type Cell struct {
	X, Y int
}

// Mask is an entity-local footprint indexed as mask[y][x].
type Mask [][]bool

// MaskFromInts converts a 0/1 matrix into a Mask.
func MaskFromInts(rows [][]int) Mask {
	m := make(Mask, len(rows))
	for y, row := range rows {
		m[y] = make([]bool, len(row))
		for x, v := range row {
			m[y][x] = v != 0
		}
	}
	return m
}

// Full returns a w×h mask with every cell set.
func Full(w, h int) Mask {
	m := make(Mask, h)
	for y := range m {
		m[y] = make([]bool, w)
		for x := range m[y] {
			m[y][x] = true
		}
	}
	return m
}

// Size returns the mask width and height.
func (m Mask) Size() (int, int) {
	if len(m) == 0 {
		return 0, 0
	}
	return len(m[0]), len(m)
}

// Layer is a W×H obstruction layer.
type Layer struct {
	w, h  int
	cells []bool
}

// NewLayer returns an all-clear layer.
func NewLayer(w, h int) *Layer {
	return &Layer{w: w, h: h, cells: make([]bool, w*h)}
}

// Width returns the number of columns.
func (l *Layer) Width() int { return l.w }

// Height returns the number of rows.
func (l *Layer) Height() int { return l.h }

// In reports whether (x, y) lies on the layer.
func (l *Layer) In(x, y int) bool {
	return x >= 0 && y >= 0 && x < l.w && y < l.h
}

// Blocked reports whether (x, y) is obstructed. Out of bounds is blocked.
func (l *Layer) Blocked(x, y int) bool {
	if !l.In(x, y) {
		return true
	}
	return l.cells[y*l.w+x]
}

// Set marks (x, y). Out-of-bounds writes are dropped.
func (l *Layer) Set(x, y int, blocked bool) {
	if !l.In(x, y) {
		return
	}
	l.cells[y*l.w+x] = blocked
}

// Clone returns an independent copy.
func (l *Layer) Clone() *Layer {
	c := &Layer{w: l.w, h: l.h, cells: make([]bool, len(l.cells))}
	copy(c.cells, l.cells)
	return c
}

// Stamp marks every set cell of m with its top-left corner at (x, y).
func (l *Layer) Stamp(m Mask, x, y int) {
	for dy, row := range m {
		for dx, set := range row {
			if set {
				l.Set(x+dx, y+dy, true)
			}
		}
	}
}

// Count returns the number of blocked cells on the layer.
func (l *Layer) Count() int {
	n := 0
	for _, b := range l.cells {
		if b {
			n++
		}
	}
	return n
}
