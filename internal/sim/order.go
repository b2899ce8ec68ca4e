package sim

import "github.com/vovakirdan/tui-rts/internal/core"

// OrderType discriminates the Order variant.
type OrderType string

const (
	OrderStand             OrderType = "stand"
	OrderMove              OrderType = "move"
	OrderAttack            OrderType = "attack"
	OrderPatrol            OrderType = "patrol"
	OrderGuard             OrderType = "guard"
	OrderHunt              OrderType = "hunt"
	OrderSentry            OrderType = "sentry"
	OrderDeploy            OrderType = "deploy"
	OrderConstructUnit     OrderType = "construct-unit"
	OrderConstructBuilding OrderType = "construct-building"

	// projectile-only orders
	OrderFire    OrderType = "fire"
	OrderExplode OrderType = "explode"
)

// Order is the single active instruction of an entity. Which fields are
// meaningful depends on Type:
//
//	move                 To
//	attack               ToUID, Previous
//	patrol               To, From
//	guard, deploy        ToUID
//	construct-*          Details
//
// The same struct is the wire form of a command's order details.
type Order struct {
	Type     OrderType   `json:"type" yaml:"type"`
	To       *core.Point `json:"to,omitempty" yaml:"to,omitempty"`
	From     *core.Point `json:"from,omitempty" yaml:"from,omitempty"`
	ToUID    EntityID    `json:"toUid,omitempty" yaml:"to_uid,omitempty"`
	Details  *Spawn      `json:"details,omitempty" yaml:"details,omitempty"`
	Previous *Order      `json:"previousOrder,omitempty" yaml:"previous,omitempty"`

	// ticks spent colliding near the destination
	collisions int
}

// Stand returns the idle order.
func Stand() Order { return Order{Type: OrderStand} }

// MoveTo returns a move order.
func MoveTo(p core.Point) Order { return Order{Type: OrderMove, To: &p} }

// AttackUID returns an attack order on an entity.
func AttackUID(id EntityID) Order { return Order{Type: OrderAttack, ToUID: id} }

// Clone returns a deep copy, so no two entities share pointers into one
// order.
func (o Order) Clone() Order {
	c := o
	if o.To != nil {
		p := *o.To
		c.To = &p
	}
	if o.From != nil {
		p := *o.From
		c.From = &p
	}
	if o.Details != nil {
		d := *o.Details
		if d.Order != nil {
			inner := d.Order.Clone()
			d.Order = &inner
		}
		c.Details = &d
	}
	if o.Previous != nil {
		p := o.Previous.Clone()
		c.Previous = &p
	}
	return c
}

// withPrevious returns o with prev saved to resume later.
func (o Order) withPrevious(prev Order) Order {
	p := prev
	o.Previous = &p
	return o
}
