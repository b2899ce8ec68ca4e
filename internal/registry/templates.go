package registry

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed templates.yaml
var defaultTemplatesYAML []byte

// templateFile is the on-disk layout: one list per category.
type templateFile struct {
	Buildings   []Template `yaml:"buildings"`
	Vehicles    []Template `yaml:"vehicles"`
	Aircraft    []Template `yaml:"aircraft"`
	Terrain     []Template `yaml:"terrain"`
	Projectiles []Template `yaml:"projectiles"`
}

func (f *templateFile) all() []Template {
	var out []Template
	add := func(c Category, ts []Template) {
		for _, t := range ts {
			t.Category = c
			out = append(out, t)
		}
	}
	add(CategoryBuilding, f.Buildings)
	add(CategoryVehicle, f.Vehicles)
	add(CategoryAircraft, f.Aircraft)
	add(CategoryTerrain, f.Terrain)
	add(CategoryProjectile, f.Projectiles)
	return out
}

// Parse decodes a templates YAML document into a new catalog.
func Parse(data []byte) (*Catalog, error) {
	var f templateFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("registry: cannot parse templates: %w", err)
	}
	ts := f.all()
	if len(ts) == 0 {
		return nil, fmt.Errorf("registry: templates document is empty")
	}

	c := NewCatalog()
	seen := make(map[key]bool, len(ts))
	for _, t := range ts {
		if t.Name == "" {
			return nil, fmt.Errorf("registry: %s template without a name", t.Category)
		}
		k := key{t.Category, t.Name}
		if seen[k] {
			return nil, fmt.Errorf("registry: duplicate template %s/%s", t.Category, t.Name)
		}
		seen[k] = true
		c.Register(t)
	}
	return c, nil
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the shared catalog decoded from the embedded templates.
// If the embedded document cannot be decoded it falls back to the
// compiled-in table.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Parse(defaultTemplatesYAML)
		if err != nil {
			c = Builtin()
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// Builtin returns a catalog built from the compiled-in table.
func Builtin() *Catalog {
	c := NewCatalog()
	for _, t := range builtinTemplates() {
		c.Register(t)
	}
	return c
}

func builtinTemplates() []Template {
	b, v, a, tr, p := CategoryBuilding, CategoryVehicle, CategoryAircraft, CategoryTerrain, CategoryProjectile
	return []Template{
		{
			Name: "base", Category: b,
			PixelWidth: 60, PixelHeight: 60, BaseWidth: 40, BaseHeight: 40, PixelOffsetY: 20,
			BuildableGrid: [][]int{{1, 1}, {1, 1}},
			PassableGrid:  [][]int{{1, 1}, {1, 1}},
			Sight:         3, HitPoints: 500, Cost: 5000,
			Frames: map[string]int{"healthy": 4, "damaged": 1, "constructing": 3},
		},
		{
			Name: "starport", Category: b,
			PixelWidth: 40, PixelHeight: 60, BaseWidth: 40, BaseHeight: 55, PixelOffsetX: 1, PixelOffsetY: 5,
			BuildableGrid: [][]int{{1, 1}, {1, 1}, {1, 1}},
			PassableGrid:  [][]int{{1, 1}, {0, 0}, {0, 0}},
			Sight:         3, HitPoints: 300, Cost: 2000, CanConstruct: true,
			Frames: map[string]int{"teleport": 9, "closing": 18, "healthy": 4, "damaged": 1},
		},
		{
			Name: "harvester", Category: b,
			PixelWidth: 40, PixelHeight: 60, BaseWidth: 40, BaseHeight: 20, PixelOffsetX: -2, PixelOffsetY: 40,
			BuildableGrid: [][]int{{1, 1}},
			PassableGrid:  [][]int{{1, 1}},
			Sight:         3, HitPoints: 300, Cost: 5000,
			Frames: map[string]int{"deploy": 17, "healthy": 3, "damaged": 1},
		},
		{
			Name: "ground-turret", Category: b,
			PixelWidth: 38, PixelHeight: 32, BaseWidth: 20, BaseHeight: 18, PixelOffsetX: 9, PixelOffsetY: 12,
			BuildableGrid: [][]int{{1}},
			PassableGrid:  [][]int{{1}},
			Sight:         5, HitPoints: 200, Cost: 1500, CanConstruct: true,
			Weapon: "cannon-ball", CanAttackLand: true, DefaultOrder: "guard", Directions: 8, TurnSpeed: 2,
			Frames: map[string]int{"teleport": 9, "healthy": 1, "damaged": 1},
		},

		{Name: "transport", Category: v, PixelWidth: 31, PixelHeight: 30, PixelOffsetX: 15, PixelOffsetY: 15,
			Radius: 15, Speed: 15, Sight: 3, Cost: 400, HitPoints: 100, TurnSpeed: 3},
		{Name: "harvester", Category: v, PixelWidth: 21, PixelHeight: 20, PixelOffsetX: 10, PixelOffsetY: 10,
			Radius: 10, Speed: 10, Sight: 3, Cost: 1600, CanConstruct: true, HitPoints: 50, TurnSpeed: 3},
		{Name: "scout-tank", Category: v, PixelWidth: 21, PixelHeight: 21, PixelOffsetX: 10, PixelOffsetY: 10,
			Radius: 11, Speed: 20, Sight: 4, Cost: 500, CanConstruct: true, HitPoints: 50, TurnSpeed: 5,
			Weapon: "bullet", CanAttackLand: true},
		{Name: "heavy-tank", Category: v, PixelWidth: 30, PixelHeight: 30, PixelOffsetX: 15, PixelOffsetY: 15,
			Radius: 13, Speed: 15, Sight: 5, Cost: 1200, CanConstruct: true, HitPoints: 50, TurnSpeed: 4,
			Weapon: "cannon-ball", CanAttackLand: true},

		{Name: "chopper", Category: a, PixelWidth: 40, PixelHeight: 40, PixelOffsetX: 20, PixelOffsetY: 20, PixelShadowHeight: 40,
			Radius: 18, Speed: 25, Sight: 6, Cost: 900, CanConstruct: true, HitPoints: 50, TurnSpeed: 4,
			Weapon: "heatseeker", CanAttackLand: true, CanAttackAir: true,
			Frames: map[string]int{"stand": 4}},
		{Name: "wraith", Category: a, PixelWidth: 30, PixelHeight: 30, PixelOffsetX: 15, PixelOffsetY: 15, PixelShadowHeight: 40,
			Radius: 15, Speed: 40, Sight: 8, Cost: 600, CanConstruct: true, HitPoints: 50, TurnSpeed: 4,
			Weapon: "fireball", CanAttackAir: true},

		{Name: "oilfield", Category: tr, PixelWidth: 40, PixelHeight: 60, BaseWidth: 40, BaseHeight: 20, PixelOffsetY: 40,
			BuildableGrid: [][]int{{1, 1}}, PassableGrid: [][]int{{0, 0}}},
		{Name: "bigrocks", Category: tr, PixelWidth: 40, PixelHeight: 70, BaseWidth: 40, BaseHeight: 40, PixelOffsetY: 30,
			BuildableGrid: [][]int{{1, 1}, {0, 1}}, PassableGrid: [][]int{{1, 1}, {0, 1}}},
		{Name: "smallrocks", Category: tr, PixelWidth: 20, PixelHeight: 35, BaseWidth: 20, BaseHeight: 20, PixelOffsetY: 15,
			BuildableGrid: [][]int{{1}}, PassableGrid: [][]int{{1}}},

		{Name: "fireball", Category: p, PixelWidth: 10, PixelHeight: 11, Radius: 6,
			Speed: 60, ReloadTime: 30, Range: 8, Damage: 10, Frames: map[string]int{"explode": 7}},
		{Name: "heatseeker", Category: p, PixelWidth: 10, PixelHeight: 11, Radius: 6,
			Speed: 25, ReloadTime: 40, Range: 9, Damage: 20, TurnSpeed: 2, Frames: map[string]int{"explode": 7}},
		{Name: "cannon-ball", Category: p, PixelWidth: 10, PixelHeight: 11, Radius: 6,
			Speed: 25, ReloadTime: 40, Range: 6, Damage: 10, Frames: map[string]int{"explode": 7}},
		{Name: "bullet", Category: p, PixelWidth: 10, PixelHeight: 11, Radius: 6,
			Speed: 50, ReloadTime: 20, Range: 5, Damage: 5, Frames: map[string]int{"explode": 3}},
	}
}
