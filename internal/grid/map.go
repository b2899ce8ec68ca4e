package grid

// Stamp places a mask on the map with its top-left corner at (X, Y).
type Stamp struct {
	X, Y int
	Mask Mask
}

// Source lists the footprints currently on the map. The simulation world
// implements it; the map pulls from it whenever a layer is stale.
type Source interface {
	// PassableStamps returns building and terrain passable masks.
	PassableStamps() []Stamp
	// BuildableStamps returns building and terrain buildable masks plus
	// vehicle bounding boxes.
	BuildableStamps() []Stamp
}

// Map owns the terrain layer and lazily derives the passable and buildable
// layers from a Source.
type Map struct {
	terrain   *Layer
	passable  *Layer
	buildable *Layer
	source    Source

	passableStale  bool
	buildableStale bool
}

// NewMap creates a map of the given size with obstructed terrain cells.
func NewMap(w, h int, obstructed []Cell, src Source) *Map {
	terrain := NewLayer(w, h)
	for _, c := range obstructed {
		terrain.Set(c.X, c.Y, true)
	}
	return &Map{
		terrain:        terrain,
		source:         src,
		passableStale:  true,
		buildableStale: true,
	}
}

// Width returns the map width in cells.
func (m *Map) Width() int { return m.terrain.w }

// Height returns the map height in cells.
func (m *Map) Height() int { return m.terrain.h }

// In reports whether (x, y) lies on the map.
func (m *Map) In(x, y int) bool { return m.terrain.In(x, y) }

// IsObstructed reports whether the static terrain blocks (x, y).
func (m *Map) IsObstructed(x, y int) bool {
	return m.terrain.Blocked(x, y)
}

// IsPassable reports whether a ground unit may path through (x, y).
func (m *Map) IsPassable(x, y int) bool {
	return !m.Passable().Blocked(x, y)
}

// IsBuildable reports whether a building may be placed on (x, y).
func (m *Map) IsBuildable(x, y int) bool {
	return !m.Buildable().Blocked(x, y)
}

// Invalidate marks both derived layers stale.
func (m *Map) Invalidate() {
	m.passableStale = true
	m.buildableStale = true
}

// InvalidateBuildable marks only the buildable layer stale. Vehicle
// movement changes the buildable layer but not the passable one.
func (m *Map) InvalidateBuildable() {
	m.buildableStale = true
}

// Passable returns the current passable layer, rebuilding it if stale.
// Callers must not modify it.
func (m *Map) Passable() *Layer {
	if m.passableStale || m.passable == nil {
		m.RebuildPassable()
	}
	return m.passable
}

// Buildable returns the current buildable layer, rebuilding it if stale.
func (m *Map) Buildable() *Layer {
	if m.buildableStale || m.buildable == nil {
		m.RebuildBuildable()
	}
	return m.buildable
}

// PassableWith returns a copy of the passable layer with c opened up.
// Used to path onto the footprint of a building or terrain target.
func (m *Map) PassableWith(c Cell) *Layer {
	l := m.Passable().Clone()
	l.Set(c.X, c.Y, false)
	return l
}

// RebuildPassable copies the terrain and stamps every passable footprint.
func (m *Map) RebuildPassable() {
	m.passable = m.rebuild(func(s Source) []Stamp { return s.PassableStamps() })
	m.passableStale = false
}

// RebuildBuildable copies the terrain and stamps every buildable footprint.
func (m *Map) RebuildBuildable() {
	m.buildable = m.rebuild(func(s Source) []Stamp { return s.BuildableStamps() })
	m.buildableStale = false
}

func (m *Map) rebuild(stamps func(Source) []Stamp) *Layer {
	l := m.terrain.Clone()
	if m.source == nil {
		return l
	}
	for _, st := range stamps(m.source) {
		l.Stamp(st.Mask, st.X, st.Y)
	}
	return l
}

// Box returns a full mask stamp covering the inclusive cell range
// [x0, x1] × [y0, y1], clamped to the map.
func (m *Map) Box(x0, y0, x1, y1 int) Stamp {
	x0 = max(x0, 0)
	y0 = max(y0, 0)
	x1 = min(x1, m.Width()-1)
	y1 = min(y1, m.Height()-1)
	if x1 < x0 || y1 < y0 {
		return Stamp{X: x0, Y: y0}
	}
	return Stamp{X: x0, Y: y0, Mask: Full(x1-x0+1, y1-y0+1)}
}
