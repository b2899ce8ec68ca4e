package sim

import (
	"github.com/vovakirdan/tui-rts/internal/core"
	"github.com/vovakirdan/tui-rts/internal/registry"
)

// EntityID is the world-unique, monotonically assigned entity identifier.
type EntityID uint64

// Action is the animation state an entity is in.
type Action string

const (
	ActionStand     Action = "stand"
	ActionTeleport  Action = "teleport"
	ActionConstruct Action = "construct"
	ActionOpen      Action = "open"
	ActionClose     Action = "close"
	ActionDeploy    Action = "deploy"
	ActionHarvest   Action = "harvest"
	ActionFly       Action = "fly"
	ActionExplode   Action = "explode"
)

// LifeCode is the health bracket derived from Life and HitPoints.
type LifeCode string

const (
	LifeHealthy LifeCode = "healthy"
	LifeDamaged LifeCode = "damaged"
	LifeDead    LifeCode = "dead"
)

// Spawn describes an entity to create. Zero fields take template defaults.
type Spawn struct {
	Category   registry.Category `json:"type" yaml:"type"`
	Name       string            `json:"name" yaml:"name"`
	Team       string            `json:"team,omitempty" yaml:"team,omitempty"`
	X          float64           `json:"x" yaml:"x"`
	Y          float64           `json:"y" yaml:"y"`
	Direction  float64           `json:"direction,omitempty" yaml:"direction,omitempty"`
	Action     Action            `json:"action,omitempty" yaml:"action,omitempty"`
	Order      *Order            `json:"orders,omitempty" yaml:"orders,omitempty"`
	Life       int               `json:"life,omitempty" yaml:"life,omitempty"`
	KeepFogged bool              `json:"keepFogged,omitempty" yaml:"keep_fogged,omitempty"`
	Selectable *bool             `json:"selectable,omitempty" yaml:"selectable,omitempty"`
}

// Entity is the common record for everything on the map. Category selects
// the behaviour; Template carries the static attributes.
type Entity struct {
	ID       EntityID
	Category registry.Category
	Name     string
	Team     string
	Template *registry.Template

	X, Y      float64 // cells; centre for movers, top-left for buildings and terrain
	Direction float64 // 0 <= Direction < Directions, 0 faces up

	Life     int
	LifeCode LifeCode

	Action         Action
	AnimationIndex int
	Order          Order

	Selected   bool
	Selectable bool
	KeepFogged bool
	Brightness float64

	LastMoveX, LastMoveY float64

	turning        bool
	colliding      bool
	hardCollision  bool
	reloadTimeLeft int

	// projectiles
	target            EntityID
	distanceTravelled float64

	// starport unit waiting for the landing bay doors
	pendingUnit *Spawn

	removed bool
}

// Pos returns the entity position.
func (e *Entity) Pos() core.Point { return core.Point{X: e.X, Y: e.Y} }

// Alive reports whether the entity is still in play.
func (e *Entity) Alive() bool { return !e.removed && e.LifeCode != LifeDead }

// Removed reports whether the world has dropped the entity.
func (e *Entity) Removed() bool { return e.removed }

// Directions returns the number of discrete facings.
func (e *Entity) Directions() float64 { return float64(e.Template.Directions) }

// Radius returns the collision radius in pixels.
func (e *Entity) Radius() float64 { return e.Template.Radius }

// Sight returns the sight radius in cells.
func (e *Entity) Sight() int { return e.Template.Sight }

// HitPoints returns the maximum life.
func (e *Entity) HitPoints() int { return e.Template.HitPoints }

// Cost returns the construction cost.
func (e *Entity) Cost() int { return e.Template.Cost }

// Turning reports whether the entity did not finish its last turn.
func (e *Entity) Turning() bool { return e.turning }

// Colliding reports whether the last move detected a collision.
func (e *Entity) Colliding() bool { return e.colliding }

// ReloadTimeLeft returns the ticks until the weapon can fire again.
func (e *Entity) ReloadTimeLeft() int { return e.reloadTimeLeft }

// Health returns Life / HitPoints clamped to [0, 1].
func (e *Entity) Health() float64 {
	if e.Template.HitPoints <= 0 {
		return 1
	}
	return core.ClampF(float64(e.Life)/float64(e.Template.HitPoints), 0, 1)
}

// IsLand reports whether ground weapons can hit the entity.
func (e *Entity) IsLand() bool {
	return e.Category == registry.CategoryBuilding || e.Category == registry.CategoryVehicle
}

// IsAir reports whether anti-air weapons can hit the entity.
func (e *Entity) IsAir() bool { return e.Category == registry.CategoryAircraft }

// SetOrder replaces the active order. Any in-progress path state and
// collision counting go with the old order.
func (e *Entity) SetOrder(o Order) {
	e.Order = o
}

// updateLifeCode derives the health bracket: healthy above 40%, damaged
// above zero, dead otherwise.
func (e *Entity) updateLifeCode() {
	hp := e.Template.HitPoints
	switch {
	case hp <= 0:
		e.LifeCode = LifeHealthy
	case float64(e.Life) > float64(hp)*0.4:
		e.LifeCode = LifeHealthy
	case e.Life > 0:
		e.LifeCode = LifeDamaged
	default:
		e.LifeCode = LifeDead
	}
}

// footprintCells returns the base size in cells (buildings and terrain).
func (e *Entity) footprintCells(gridSize int) (int, int) {
	if gridSize <= 0 {
		return 0, 0
	}
	return e.Template.BaseWidth / gridSize, e.Template.BaseHeight / gridSize
}
