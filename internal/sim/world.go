// Package sim is the deterministic real-time-strategy simulation: entities,
// orders, movement with A* and local steering, combat, buildings and fog.
//
// A World is advanced one fixed tick at a time with Step. All state lives in
// the World value; nothing is global, so tests and peers can run many worlds
// side by side. The simulation never logs and never blocks. It reports
// through return values, Advisories and the Observer.
package sim

import (
	"fmt"
	"sort"

	"github.com/vovakirdan/tui-rts/internal/config"
	"github.com/vovakirdan/tui-rts/internal/fog"
	"github.com/vovakirdan/tui-rts/internal/grid"
	"github.com/vovakirdan/tui-rts/internal/registry"
)

// Options configures a new World.
type Options struct {
	Width, Height int
	Obstructed    []grid.Cell
	Catalog       *registry.Catalog // nil uses registry.Default()
	Config        *config.SimConfig // nil uses config.DefaultSimConfig()
	Team          string            // local team; advisories for other teams are not surfaced
	Observer      Observer
	Cash          map[string]int
	Triggers      []TriggerSpec
}

// World owns every entity, the grid layers, fog, treasury and tick counter.
type World struct {
	cfg      config.SimConfig
	catalog  *registry.Catalog
	grid     *grid.Map
	fog      *fog.Accumulator
	observer Observer

	entities   []*Entity
	byID       map[EntityID]*Entity
	byCategory map[registry.Category][]*Entity
	counter    EntityID

	cash map[string]int
	team string
	tick uint64

	renderOrder []*Entity
	renderDirty bool

	advisories []Advisory
	triggers   *triggerSet

	ended      bool
	endMessage string
}

// NewWorld creates an empty world.
func NewWorld(opts Options) *World {
	cfg := config.DefaultSimConfig()
	if opts.Config != nil {
		cfg = *opts.Config
	}
	cat := opts.Catalog
	if cat == nil {
		cat = registry.Default()
	}
	obs := opts.Observer
	if obs == nil {
		obs = NopObserver{}
	}

	w := &World{
		cfg:        cfg,
		catalog:    cat,
		fog:        fog.NewAccumulator(opts.Width, opts.Height),
		observer:   obs,
		byID:       make(map[EntityID]*Entity),
		byCategory: make(map[registry.Category][]*Entity),
		cash:       make(map[string]int),
		team:       opts.Team,
	}
	w.grid = grid.NewMap(opts.Width, opts.Height, opts.Obstructed, w)
	for team, amount := range opts.Cash {
		w.cash[team] = amount
	}
	w.triggers = newTriggerSet(opts.Triggers)
	return w
}

// Config returns the simulation tuning.
func (w *World) Config() config.SimConfig { return w.cfg }

// Catalog returns the template catalog.
func (w *World) Catalog() *registry.Catalog { return w.catalog }

// Map returns the grid layers.
func (w *World) Map() *grid.Map { return w.grid }

// Fog returns the fog accumulator.
func (w *World) Fog() *fog.Accumulator { return w.fog }

// Tick returns the number of completed steps.
func (w *World) Tick() uint64 { return w.tick }

// Team returns the local team.
func (w *World) Team() string { return w.team }

// SetObserver replaces the observer. nil installs a no-op.
func (w *World) SetObserver(o Observer) {
	if o == nil {
		o = NopObserver{}
	}
	w.observer = o
}

// Cash returns the treasury of a team.
func (w *World) Cash(team string) int { return w.cash[team] }

// SetCash sets the treasury of a team.
func (w *World) SetCash(team string, amount int) { w.cash[team] = amount }

// Teams returns every team that holds cash or owns an entity, sorted.
func (w *World) Teams() []string {
	seen := make(map[string]bool)
	for t := range w.cash {
		seen[t] = true
	}
	for _, e := range w.entities {
		if e.Team != "" {
			seen[e.Team] = true
		}
	}
	teams := make([]string, 0, len(seen))
	for t := range seen {
		teams = append(teams, t)
	}
	sort.Strings(teams)
	return teams
}

// Ended reports whether a trigger ended the game, with its message.
func (w *World) Ended() (bool, string) { return w.ended, w.endMessage }

// Add creates an entity from its template merged with the spawn overrides.
func (w *World) Add(s Spawn) (*Entity, error) {
	t, err := w.catalog.Lookup(s.Category, s.Name)
	if err != nil {
		return nil, fmt.Errorf("sim: cannot add entity: %w", err)
	}

	w.counter++
	e := &Entity{
		ID:         w.counter,
		Category:   s.Category,
		Name:       s.Name,
		Team:       s.Team,
		Template:   t,
		X:          s.X,
		Y:          s.Y,
		Direction:  s.Direction,
		Life:       t.HitPoints,
		Action:     ActionStand,
		Order:      Stand(),
		Selectable: true,
		KeepFogged: s.KeepFogged || t.KeepFogged,
	}
	if s.Life > 0 {
		e.Life = s.Life
	}
	switch s.Category {
	case registry.CategoryProjectile:
		e.Action = ActionFly
		e.Order = Order{Type: OrderFire}
		e.Selectable = false
	case registry.CategoryTerrain:
		e.Selectable = false
	}
	if t.DefaultOrder != "" {
		e.Order = Order{Type: OrderType(t.DefaultOrder)}
	}
	if s.Action != "" {
		e.Action = s.Action
	}
	if s.Order != nil {
		e.Order = s.Order.Clone()
	}
	if s.Selectable != nil {
		e.Selectable = *s.Selectable
	}
	if e.Order.Type == OrderPatrol && e.Order.From == nil {
		p := e.Pos()
		e.Order.From = &p
	}
	e.updateLifeCode()

	w.entities = append(w.entities, e)
	w.byID[e.ID] = e
	w.byCategory[e.Category] = append(w.byCategory[e.Category], e)
	w.renderDirty = true
	w.invalidateFor(e)
	return e, nil
}

// Remove drops an entity. Removing twice is a no-op.
func (w *World) Remove(e *Entity) {
	if e == nil || e.removed {
		return
	}
	e.removed = true
	delete(w.byID, e.ID)
	w.entities = without(w.entities, e)
	w.byCategory[e.Category] = without(w.byCategory[e.Category], e)
	w.renderDirty = true
	w.invalidateFor(e)
}

func without(list []*Entity, e *Entity) []*Entity {
	for i, x := range list {
		if x == e {
			return append(list[:i:i], list[i+1:]...)
		}
	}
	return list
}

func (w *World) invalidateFor(e *Entity) {
	switch e.Category {
	case registry.CategoryBuilding, registry.CategoryTerrain:
		w.grid.Invalidate()
	case registry.CategoryVehicle:
		w.grid.InvalidateBuildable()
	}
}

// Get returns the entity with the given id.
func (w *World) Get(id EntityID) (*Entity, bool) {
	e, ok := w.byID[id]
	return e, ok
}

// Entities returns every entity in insertion order. The slice must not be
// modified.
func (w *World) Entities() []*Entity { return w.entities }

// ByCategory returns the entities of one category in insertion order.
func (w *World) ByCategory(c registry.Category) []*Entity { return w.byCategory[c] }

// Step advances the world by exactly one tick: orders, then animation,
// then render order, then fog, then triggers.
func (w *World) Step() {
	snapshot := append([]*Entity(nil), w.entities...)
	for _, e := range snapshot {
		if e.removed {
			continue
		}
		behaviorFor(e.Category).processOrders(w, e)
	}
	if len(w.byCategory[registry.CategoryVehicle]) > 0 {
		w.grid.InvalidateBuildable()
	}

	snapshot = append(snapshot[:0], w.entities...)
	for _, e := range snapshot {
		if e.removed {
			continue
		}
		w.animate(e)
	}

	w.renderOrder = w.sortedForRender()
	w.renderDirty = false

	w.updateFog()

	w.triggers.run(w)
	w.tick++
}

func (w *World) updateFog() {
	gs := w.cfg.GridSize
	sightings := make(map[string][]fog.Sighting)
	for _, e := range w.entities {
		if e.Team == "" || e.Category == registry.CategoryProjectile || e.Category == registry.CategoryTerrain {
			continue
		}
		s := fog.Sighting{
			X:          e.X,
			Y:          e.Y,
			Sight:      e.Sight(),
			KeepFogged: e.KeepFogged,
			Dead:       !e.Alive(),
		}
		if e.Category == registry.CategoryBuilding {
			s.FootprintW, s.FootprintH = e.footprintCells(gs)
		}
		sightings[e.Team] = append(sightings[e.Team], s)
	}
	for _, team := range w.Teams() {
		w.fog.Recompute(team, sightings[team])
	}
}

// Defeated reports whether a team has no buildings, vehicles or aircraft left.
func (w *World) Defeated(team string) bool {
	for _, c := range []registry.Category{registry.CategoryBuilding, registry.CategoryVehicle, registry.CategoryAircraft} {
		for _, e := range w.byCategory[c] {
			if e.Team == team && e.Alive() {
				return false
			}
		}
	}
	return true
}

// PassableStamps implements grid.Source: building and terrain passable masks.
func (w *World) PassableStamps() []grid.Stamp {
	var out []grid.Stamp
	for _, c := range []registry.Category{registry.CategoryBuilding, registry.CategoryTerrain} {
		for _, e := range w.byCategory[c] {
			x, y := e.Pos().Floor()
			out = append(out, grid.Stamp{X: x, Y: y, Mask: e.Template.PassableMask()})
		}
	}
	return out
}

// BuildableStamps implements grid.Source: building and terrain buildable
// masks plus the bounding box of every vehicle.
func (w *World) BuildableStamps() []grid.Stamp {
	var out []grid.Stamp
	for _, c := range []registry.Category{registry.CategoryBuilding, registry.CategoryTerrain} {
		for _, e := range w.byCategory[c] {
			x, y := e.Pos().Floor()
			out = append(out, grid.Stamp{X: x, Y: y, Mask: e.Template.BuildableMask()})
		}
	}
	gs := float64(w.cfg.GridSize)
	for _, v := range w.byCategory[registry.CategoryVehicle] {
		r := v.Radius() / gs
		x0, y0 := floorInt(v.X-r), floorInt(v.Y-r)
		x1, y1 := floorInt(v.X+r), floorInt(v.Y+r)
		out = append(out, w.grid.Box(x0, y0, x1, y1))
	}
	return out
}

// CanPlace reports whether a building or terrain template fits at (x, y)
// on the buildable layer.
func (w *World) CanPlace(t *registry.Template, x, y int) bool {
	for dy, row := range t.BuildableMask() {
		for dx, set := range row {
			if set && !w.grid.IsBuildable(x+dx, y+dy) {
				return false
			}
		}
	}
	return true
}
