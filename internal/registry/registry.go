// Package registry provides the catalog of entity templates.
// Every entity the simulation creates is resolved here by (category, name),
// so the simulation never looks types up by string at runtime beyond this
// one table.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/vovakirdan/tui-rts/internal/grid"
)

// ErrUnknownTemplate is returned when a (category, name) pair is not registered.
var ErrUnknownTemplate = errors.New("registry: unknown template")

// Category is the entity kind. It selects the behaviour table in the
// simulation.
type Category int

const (
	CategoryUnknown Category = iota
	CategoryBuilding
	CategoryVehicle
	CategoryAircraft
	CategoryTerrain
	CategoryProjectile
)

var categoryNames = map[Category]string{
	CategoryBuilding:   "buildings",
	CategoryVehicle:    "vehicles",
	CategoryAircraft:   "aircraft",
	CategoryTerrain:    "terrain",
	CategoryProjectile: "projectiles",
}

// Categories lists every real category in a fixed order.
func Categories() []Category {
	return []Category{CategoryBuilding, CategoryVehicle, CategoryAircraft, CategoryTerrain, CategoryProjectile}
}

func (c Category) String() string {
	if s, ok := categoryNames[c]; ok {
		return s
	}
	return "unknown"
}

// ParseCategory accepts the plural names used on the wire and in level files
// as well as their singular forms.
func ParseCategory(s string) (Category, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "buildings", "building":
		return CategoryBuilding, nil
	case "vehicles", "vehicle":
		return CategoryVehicle, nil
	case "aircraft":
		return CategoryAircraft, nil
	case "terrain":
		return CategoryTerrain, nil
	case "projectiles", "projectile", "bullets", "bullet":
		return CategoryProjectile, nil
	}
	return CategoryUnknown, fmt.Errorf("registry: unknown category %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Category) UnmarshalText(b []byte) error {
	v, err := ParseCategory(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// Mobile reports whether entities of this category move under their own
// orders.
func (c Category) Mobile() bool {
	return c == CategoryVehicle || c == CategoryAircraft
}

// Template holds every static attribute of an entity type.
// Sizes in pixels are relative to a 20px grid cell.
type Template struct {
	Name     string   `yaml:"name"`
	Category Category `yaml:"-"`

	PixelWidth        int `yaml:"pixel_width"`
	PixelHeight       int `yaml:"pixel_height"`
	PixelOffsetX      int `yaml:"pixel_offset_x"`
	PixelOffsetY      int `yaml:"pixel_offset_y"`
	BaseWidth         int `yaml:"base_width"`
	BaseHeight        int `yaml:"base_height"`
	PixelShadowHeight int `yaml:"pixel_shadow_height"`

	BuildableGrid [][]int `yaml:"buildable_grid"`
	PassableGrid  [][]int `yaml:"passable_grid"`

	Radius     float64 `yaml:"radius"`
	Speed      float64 `yaml:"speed"`
	TurnSpeed  float64 `yaml:"turn_speed"`
	Sight      int     `yaml:"sight"`
	HitPoints  int     `yaml:"hit_points"`
	Cost       int     `yaml:"cost"`
	Directions int     `yaml:"directions"`

	CanConstruct  bool   `yaml:"can_construct"`
	Weapon        string `yaml:"weapon"`
	CanAttackLand bool   `yaml:"can_attack_land"`
	CanAttackAir  bool   `yaml:"can_attack_air"`
	DefaultOrder  string `yaml:"default_order"`
	KeepFogged    bool   `yaml:"keep_fogged"`

	// Projectiles only.
	Range      float64 `yaml:"range"`
	Damage     int     `yaml:"damage"`
	ReloadTime int     `yaml:"reload_time"`

	// Frames is the frame count per sprite sequence (healthy, teleport,
	// closing, explode, ...). Missing sequences count as one frame.
	Frames map[string]int `yaml:"frames"`
}

// CanAttack reports whether the template carries a weapon.
func (t *Template) CanAttack() bool { return t.Weapon != "" }

// Frame returns the frame count of the named sprite sequence.
func (t *Template) Frame(seq string) int {
	if n, ok := t.Frames[seq]; ok && n > 0 {
		return n
	}
	return 1
}

// BuildableMask returns the buildable footprint.
func (t *Template) BuildableMask() grid.Mask { return grid.MaskFromInts(t.BuildableGrid) }

// PassableMask returns the passable footprint.
func (t *Template) PassableMask() grid.Mask { return grid.MaskFromInts(t.PassableGrid) }

func (t *Template) normalize() {
	if t.Directions == 0 {
		t.Directions = 8
	}
}

// Info is a short description of a registered template.
type Info struct {
	Category Category
	Name     string
	Cost     int
}

type key struct {
	category Category
	name     string
}

// Catalog is a set of templates keyed by (category, name). It is safe for
// concurrent use; worlds only read from it.
type Catalog struct {
	mu        sync.RWMutex
	templates map[key]*Template
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{templates: make(map[key]*Template)}
}

// Register adds a template.
// Panics if the same (category, name) is registered twice.
func (c *Catalog) Register(t Template) {
	c.mu.Lock()
	defer c.mu.Unlock()

	k := key{t.Category, t.Name}
	if _, exists := c.templates[k]; exists {
		panic(fmt.Sprintf("registry: template %s/%s already registered", t.Category, t.Name))
	}
	t.normalize()
	c.templates[k] = &t
}

// Lookup returns the template for (category, name).
func (c *Catalog) Lookup(category Category, name string) (*Template, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	t, ok := c.templates[key{category, name}]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrUnknownTemplate, category, name)
	}
	return t, nil
}

// Exists checks if a template is registered.
func (c *Catalog) Exists(category Category, name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	_, ok := c.templates[key{category, name}]
	return ok
}

// List returns the templates of one category, sorted by name.
func (c *Catalog) List(category Category) []Info {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var result []Info
	for k, t := range c.templates {
		if k.category == category {
			result = append(result, Info{Category: k.category, Name: k.name, Cost: t.Cost})
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})

	return result
}

// Names returns "category/name" for every template, sorted.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.templates))
	for k := range c.templates {
		names = append(names, k.category.String()+"/"+k.name)
	}
	sort.Strings(names)
	return names
}
