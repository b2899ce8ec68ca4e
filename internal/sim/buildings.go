package sim

import (
	"fmt"

	"github.com/vovakirdan/tui-rts/internal/registry"
)

const (
	nameBase      = "base"
	nameStarport  = "starport"
	nameHarvester = "harvester"
	nameOilfield  = "oilfield"
)

// Advisory texts shown to the player.
const (
	MsgLandingBayOccupied = "Warning! Cannot teleport unit while landing bay is occupied."
	MsgInsufficientFunds  = "Warning! Insufficient Funds. Need %d credits."
	MsgCannotPlace        = "Warning! Cannot deploy building here."
)

// harvestIncome is the cash a healthy harvester adds per animation cycle.
const harvestIncome = 2

func buildingOrders(w *World, e *Entity) {
	e.LastMoveX, e.LastMoveY = 0, 0
	if e.reloadTimeLeft > 0 {
		e.reloadTimeLeft--
	}

	switch e.Order.Type {
	case OrderConstructUnit:
		if e.Name == nameStarport {
			w.constructUnit(e)
		}
		e.SetOrder(Stand())
	case OrderConstructBuilding:
		if e.Name == nameBase {
			w.constructBuilding(e)
		}
		e.SetOrder(Stand())
	default:
		if e.Template.CanAttack() {
			turretOrders(w, e)
		}
	}
}

// turretOrders is the targeting loop of armed buildings. They never move,
// so a target leaving sight cancels the attack.
func turretOrders(w *World, e *Entity) {
	switch e.Order.Type {
	case OrderStand:
		if ts := w.findTargetsInSight(e, 0); len(ts) > 0 {
			e.SetOrder(AttackUID(ts[0].ID))
		}
	case OrderGuard:
		w.engage(e, 0)
	case OrderSentry:
		w.engage(e, sentryBonus)
	case OrderHunt:
		w.engage(e, huntBonus)
	case OrderAttack:
		_, target, _ := w.destination(e.Order)
		if !w.isValidTarget(e, target) || !w.isTargetInSight(e, target, 0) {
			w.cancelCurrentOrder(e)
			return
		}
		w.aimAndFire(e, target)
	default:
		e.SetOrder(Stand())
	}
}

// unitOnTop reports whether a vehicle or aircraft sits on the landing bay.
func (w *World) unitOnTop(e *Entity) bool {
	for _, c := range []registry.Category{registry.CategoryVehicle, registry.CategoryAircraft} {
		for _, u := range w.byCategory[c] {
			if u.removed {
				continue
			}
			if u.X > e.X && u.X < e.X+2 && u.Y > e.Y && u.Y < e.Y+3 {
				return true
			}
		}
	}
	return false
}

// constructUnit starts teleporting a unit onto the landing bay. Occupied
// bay or missing funds produce an advisory and leave everything unchanged.
func (w *World) constructUnit(e *Entity) {
	d := e.Order.Details
	if d == nil || e.LifeCode != LifeHealthy || e.pendingUnit != nil {
		return
	}
	if !d.Category.Mobile() {
		return
	}
	t, err := w.catalog.Lookup(d.Category, d.Name)
	if err != nil {
		return
	}

	switch {
	case w.unitOnTop(e):
		w.advise(e.Team, MsgLandingBayOccupied)
	case w.cash[e.Team] < t.Cost:
		w.advise(e.Team, fmt.Sprintf(MsgInsufficientFunds, t.Cost))
	default:
		gs := float64(w.cfg.GridSize)
		u := *d
		u.Order = nil
		u.X = e.X + 0.5*float64(e.Template.PixelWidth)/gs
		u.Y = e.Y + 0.5*float64(e.Template.PixelHeight)/gs
		u.Team = e.Team
		u.Action = ActionTeleport
		w.cash[e.Team] -= t.Cost
		e.pendingUnit = &u
		e.Action = ActionOpen
		e.AnimationIndex = 0
	}
}

// constructBuilding places a building next to the base.
func (w *World) constructBuilding(e *Entity) {
	d := e.Order.Details
	if d == nil || d.Category != registry.CategoryBuilding {
		return
	}
	t, err := w.catalog.Lookup(d.Category, d.Name)
	if err != nil {
		return
	}
	x, y := floorInt(d.X), floorInt(d.Y)

	switch {
	case w.cash[e.Team] < t.Cost:
		w.advise(e.Team, fmt.Sprintf(MsgInsufficientFunds, t.Cost))
	case !w.CanPlace(t, x, y):
		w.advise(e.Team, MsgCannotPlace)
	default:
		b := *d
		b.Order = nil
		b.X, b.Y = float64(x), float64(y)
		b.Team = e.Team
		b.Action = ActionTeleport
		if _, err := w.Add(b); err != nil {
			return
		}
		w.cash[e.Team] -= t.Cost
		e.Action = ActionConstruct
		e.AnimationIndex = 0
		w.observer.Sound("construct")
	}
}

func buildingActions(w *World, e *Entity) {
	t := e.Template
	switch e.Action {
	case ActionStand:
		e.cycle(t.Frame(string(e.LifeCode)))
	case ActionConstruct:
		if e.cycle(t.Frame("constructing")) {
			e.Action = ActionStand
		}
	case ActionTeleport:
		if e.cycle(t.Frame("teleport")) {
			e.Action = ActionStand
		}
	case ActionClose:
		if e.cycle(t.Frame("closing")) {
			e.Action = ActionStand
		}
	case ActionOpen:
		// the closing sequence played backwards
		if e.cycle(t.Frame("closing")) {
			e.Action = ActionClose
			if u := e.pendingUnit; u != nil {
				e.pendingUnit = nil
				_, _ = w.Add(*u)
			}
		}
	case ActionDeploy:
		if e.cycle(t.Frame("deploy")) {
			e.Action = ActionHarvest
		}
	case ActionHarvest:
		if e.cycle(t.Frame(string(e.LifeCode))) && e.LifeCode == LifeHealthy {
			w.cash[e.Team] += harvestIncome
		}
	}
}
