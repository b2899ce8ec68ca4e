package sim

import (
	"testing"

	"github.com/vovakirdan/tui-rts/internal/registry"
)

func TestIsValidTarget(t *testing.T) {
	w, _ := newTestWorld(20, 20)
	scout := mustAdd(t, w, vehicle("scout-tank", "blue", 2.5, 2.5))
	wraith := mustAdd(t, w, Spawn{Category: registry.CategoryAircraft, Name: "wraith", Team: "blue", X: 3.5, Y: 3.5})
	friend := mustAdd(t, w, vehicle("transport", "blue", 4.5, 2.5))
	tank := mustAdd(t, w, vehicle("transport", "red", 5.5, 2.5))
	chopper := mustAdd(t, w, Spawn{Category: registry.CategoryAircraft, Name: "chopper", Team: "red", X: 6.5, Y: 2.5})
	rocks := mustAdd(t, w, Spawn{Category: registry.CategoryTerrain, Name: "smallrocks", X: 8, Y: 8})
	base := mustAdd(t, w, building("base", "red", 10, 10))

	tests := []struct {
		name     string
		attacker *Entity
		target   *Entity
		want     bool
	}{
		{"ground on ground", scout, tank, true},
		{"ground on building", scout, base, true},
		{"ground on air", scout, chopper, false},
		{"same team", scout, friend, false},
		{"terrain", scout, rocks, false},
		{"self", scout, scout, false},
		{"nil", scout, nil, false},
		{"air only on air", wraith, chopper, true},
		{"air only on ground", wraith, tank, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := w.isValidTarget(tt.attacker, tt.target); got != tt.want {
				t.Errorf("isValidTarget = %v, expected %v", got, tt.want)
			}
		})
	}
}

func TestFindTargetsInSightNearestFirst(t *testing.T) {
	w, _ := newTestWorld(20, 20)
	scout := mustAdd(t, w, vehicle("scout-tank", "blue", 5.5, 5.5))
	far := mustAdd(t, w, vehicle("transport", "red", 8.5, 5.5))
	nearA := mustAdd(t, w, vehicle("transport", "red", 5.5, 3.5))
	nearB := mustAdd(t, w, vehicle("transport", "red", 5.5, 7.5))
	mustAdd(t, w, vehicle("transport", "red", 15.5, 5.5))

	got := w.findTargetsInSight(scout, 0)
	want := []*Entity{nearA, nearB, far}
	if len(got) != len(want) {
		t.Fatalf("found %d targets, expected %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("target %d = %d, expected %d", i, got[i].ID, want[i].ID)
		}
	}
	if n := len(w.findTargetsInSight(scout, huntBonus)); n != 4 {
		t.Errorf("hunt range found %d targets, expected 4", n)
	}
}

func TestStandingUnitAttacksAndKills(t *testing.T) {
	w, rec := newTestWorld(12, 12)
	scout := mustAdd(t, w, vehicle("scout-tank", "blue", 2.5, 2.5))
	victim := mustAdd(t, w, vehicle("transport", "red", 4.5, 2.5))

	w.Step()
	if scout.Order.Type != OrderAttack || scout.Order.ToUID != victim.ID {
		t.Fatalf("scout order = %s -> %d, expected attack on %d", scout.Order.Type, scout.Order.ToUID, victim.ID)
	}

	sawExplosion := false
	for i := 0; i < 600 && !victim.Removed(); i++ {
		w.Step()
		for _, p := range w.ByCategory(registry.CategoryProjectile) {
			if p.Action == ActionExplode {
				sawExplosion = true
			}
		}
	}
	if !victim.Removed() {
		t.Fatalf("victim survived with %d life", victim.Life)
	}
	if !sawExplosion {
		t.Error("no projectile exploded")
	}
	if len(rec.sounds) == 0 || rec.sounds[0] != "bullet" {
		t.Errorf("sounds = %v, expected bullet shots", rec.sounds)
	}
	if scout.X != 2.5 || scout.Y != 2.5 {
		t.Errorf("scout moved to (%v, %v) while the target was in sight", scout.X, scout.Y)
	}

	w.Step()
	if scout.Order.Type != OrderStand {
		t.Errorf("scout order = %s after the kill, expected stand", scout.Order.Type)
	}
}

func TestSentryResumesAfterKill(t *testing.T) {
	w, _ := newTestWorld(12, 12)
	tank := mustAdd(t, w, vehicle("heavy-tank", "blue", 2.5, 2.5))
	victim := mustAdd(t, w, vehicle("transport", "red", 7.5, 2.5))
	victim.Life = 10
	w.ProcessCommand([]EntityID{tank.ID}, Order{Type: OrderSentry})

	w.Step()
	if tank.Order.Type != OrderAttack || tank.Order.Previous == nil || tank.Order.Previous.Type != OrderSentry {
		t.Fatalf("order = %+v, expected attack remembering sentry", tank.Order)
	}
	for i := 0; i < 300 && !victim.Removed(); i++ {
		w.Step()
	}
	w.Step()
	if tank.Order.Type != OrderSentry {
		t.Errorf("order = %s after the kill, expected sentry again", tank.Order.Type)
	}
}

func TestProjectileHitsWithinBareRadius(t *testing.T) {
	w, _ := newTestWorld(20, 10)
	target := mustAdd(t, w, vehicle("scout-tank", "green", 10.5, 5.5))
	p := mustAdd(t, w, Spawn{Category: registry.CategoryProjectile, Name: "cannon-ball", X: 9, Y: 5.5, Direction: 2})

	r := target.Radius() / float64(w.Config().GridSize)
	step := p.Template.Speed * w.Config().SpeedAdjustment
	if step <= 0 {
		t.Fatalf("cannon-ball step = %v", step)
	}

	p.X = target.X - r - step/2
	if w.reachedTarget(p, target) {
		t.Errorf("hit at %.3f cells, outside the %.3f radius", target.X-p.X, r)
	}
	p.X = target.X - r*0.9
	if !w.reachedTarget(p, target) {
		t.Errorf("missed at %.3f cells, inside the %.3f radius", target.X-p.X, r)
	}
}

func TestProjectileFizzlesAtRange(t *testing.T) {
	w, _ := newTestWorld(40, 10)
	p := mustAdd(t, w, Spawn{Category: registry.CategoryProjectile, Name: "bullet", X: 1, Y: 5, Direction: 2})

	speed := p.Template.Speed * w.Config().SpeedAdjustment
	limit := int(p.Template.Range/speed) + 3
	for i := 0; i < limit && !p.Removed(); i++ {
		w.Step()
		if p.Action == ActionExplode {
			t.Fatal("bullet without a target exploded")
		}
	}
	if !p.Removed() {
		t.Fatalf("bullet still flying after %d ticks at x=%.2f", limit, p.X)
	}
	if p.X < 1+p.Template.Range {
		t.Errorf("bullet fizzled at x=%.2f, before its range", p.X)
	}
}

func TestExplosionDamagesOnce(t *testing.T) {
	w, _ := newTestWorld(10, 10)
	target := mustAdd(t, w, vehicle("transport", "red", 5.5, 5.5))
	p := mustAdd(t, w, Spawn{Category: registry.CategoryProjectile, Name: "bullet", Team: "blue", X: 5.4, Y: 5.5, Direction: 2})
	p.target = target.ID

	w.Step()
	if p.Action != ActionExplode {
		t.Fatalf("projectile action = %s, expected explode", p.Action)
	}
	for i := 0; i < 5; i++ {
		w.Step()
	}
	if want := target.HitPoints() - p.Template.Damage; target.Life != want {
		t.Errorf("target life = %d, expected %d", target.Life, want)
	}
	if !p.Removed() {
		t.Error("explosion did not end")
	}
}

func TestTurretGuardsItsArea(t *testing.T) {
	w, _ := newTestWorld(14, 14)
	turret := mustAdd(t, w, building("ground-turret", "red", 5, 5))
	scout := mustAdd(t, w, vehicle("scout-tank", "blue", 7.5, 5.5))
	w.ProcessCommand([]EntityID{scout.ID}, Order{Type: OrderStand})

	w.Step()
	if turret.Order.Type != OrderAttack || turret.Order.ToUID != scout.ID {
		t.Fatalf("turret order = %s, expected attack on the scout", turret.Order.Type)
	}
	for i := 0; i < 100; i++ {
		w.Step()
	}
	if scout.Life >= scout.HitPoints() {
		t.Error("turret never hit the scout")
	}
	if turret.X != 5 || turret.Y != 5 {
		t.Error("turret moved")
	}
}

func TestTurretDropsTargetOutOfSight(t *testing.T) {
	w, _ := newTestWorld(30, 14)
	turret := mustAdd(t, w, building("ground-turret", "red", 5, 5))
	scout := mustAdd(t, w, vehicle("transport", "blue", 20.5, 5.5))
	w.ProcessCommand([]EntityID{turret.ID}, AttackUID(scout.ID).withPrevious(Order{Type: OrderGuard}))

	w.Step()
	if turret.Order.Type != OrderGuard {
		t.Errorf("turret order = %s, expected guard after losing the target", turret.Order.Type)
	}
}
