// Package level defines maps: their size, terrain, starting entities,
// treasury and triggers. Levels are YAML documents; a set of them is
// embedded in the binary and more can be loaded from a directory.
package level

import (
	"errors"
	"fmt"
	"sort"

	"github.com/vovakirdan/tui-rts/internal/grid"
	"github.com/vovakirdan/tui-rts/internal/registry"
	"github.com/vovakirdan/tui-rts/internal/sim"
)

// ErrLevelNotFound is returned when no level has the requested id.
var ErrLevelNotFound = errors.New("level not found")

// Mode says who a level is played by.
type Mode string

const (
	ModeSingleplayer Mode = "singleplayer"
	ModeMultiplayer  Mode = "multiplayer"
)

// Wall is a rectangle of obstructed cells.
type Wall struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
	W int `yaml:"w"`
	H int `yaml:"h"`
}

// SpawnLocation is one multiplayer start: team items are offset by X, Y and
// the camera starts at StartX, StartY.
type SpawnLocation struct {
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	StartX float64 `yaml:"start_x"`
	StartY float64 `yaml:"start_y"`
}

// Level is a complete map definition.
type Level struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Briefing string `yaml:"briefing,omitempty"`
	Mode     Mode   `yaml:"mode"`
	Width    int    `yaml:"width"`
	Height   int    `yaml:"height"`

	// singleplayer: the player team and initial camera
	Team   string `yaml:"team,omitempty"`
	StartX int    `yaml:"start_x,omitempty"`
	StartY int    `yaml:"start_y,omitempty"`

	Obstructed []grid.Cell       `yaml:"obstructed,omitempty"`
	Walls      []Wall            `yaml:"walls,omitempty"`
	Cash       map[string]int    `yaml:"cash,omitempty"`
	Items      []sim.Spawn       `yaml:"items,omitempty"`
	Triggers   []sim.TriggerSpec `yaml:"triggers,omitempty"`

	// Requirements lists extra templates to preload per category, beyond
	// those placed by Items.
	Requirements map[string][]string `yaml:"requirements,omitempty"`

	SpawnLocations    []SpawnLocation `yaml:"spawn_locations,omitempty"`
	TeamStartingItems []sim.Spawn     `yaml:"team_starting_items,omitempty"`
	StartingCash      int             `yaml:"starting_cash,omitempty"`

	FilePath string `yaml:"-"`
}

// Cells returns every obstructed cell, walls expanded, without duplicates
// and in row-major order.
func (l *Level) Cells() []grid.Cell {
	seen := make(map[grid.Cell]bool)
	var out []grid.Cell
	add := func(c grid.Cell) {
		if c.X < 0 || c.Y < 0 || c.X >= l.Width || c.Y >= l.Height || seen[c] {
			return
		}
		seen[c] = true
		out = append(out, c)
	}
	for _, c := range l.Obstructed {
		add(c)
	}
	for _, w := range l.Walls {
		for y := w.Y; y < w.Y+w.H; y++ {
			for x := w.X; x < w.X+w.W; x++ {
				add(grid.Cell{X: x, Y: y})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Y != out[j].Y {
			return out[i].Y < out[j].Y
		}
		return out[i].X < out[j].X
	})
	return out
}

// Validate checks the level against a template catalog.
func (l *Level) Validate(cat *registry.Catalog) error {
	if l.ID == "" {
		return errors.New("level: missing id")
	}
	if l.Width <= 0 || l.Height <= 0 {
		return fmt.Errorf("level %s: bad size %dx%d", l.ID, l.Width, l.Height)
	}
	switch l.Mode {
	case ModeSingleplayer:
	case ModeMultiplayer:
		if len(l.SpawnLocations) < 2 {
			return fmt.Errorf("level %s: multiplayer needs at least 2 spawn locations", l.ID)
		}
	default:
		return fmt.Errorf("level %s: unknown mode %q", l.ID, l.Mode)
	}
	for _, group := range [][]sim.Spawn{l.Items, l.TeamStartingItems} {
		for _, s := range group {
			if !cat.Exists(s.Category, s.Name) {
				return fmt.Errorf("level %s: %w: %s/%s", l.ID, registry.ErrUnknownTemplate, s.Category, s.Name)
			}
		}
	}
	for name, names := range l.Requirements {
		c, err := registry.ParseCategory(name)
		if err != nil {
			return fmt.Errorf("level %s: %w", l.ID, err)
		}
		for _, n := range names {
			if !cat.Exists(c, n) {
				return fmt.Errorf("level %s: %w: %s/%s", l.ID, registry.ErrUnknownTemplate, c, n)
			}
		}
	}
	return nil
}

// NewWorld builds a world holding the level terrain, items, treasury and
// triggers. Width, Height, Obstructed, Cash and Triggers in opts are
// replaced by the level's.
func (l *Level) NewWorld(opts sim.Options) (*sim.World, error) {
	opts.Width, opts.Height = l.Width, l.Height
	opts.Obstructed = l.Cells()
	opts.Triggers = l.Triggers
	opts.Cash = make(map[string]int, len(l.Cash))
	for team, c := range l.Cash {
		opts.Cash[team] = c
	}
	if opts.Team == "" {
		opts.Team = l.Team
	}

	w := sim.NewWorld(opts)
	for _, s := range l.Items {
		if _, err := w.Add(s); err != nil {
			return nil, fmt.Errorf("level %s: %w", l.ID, err)
		}
	}
	return w, nil
}

// NewMultiplayerWorld builds the world and places every team's starting
// items at its spawn location. Teams are placed in name order so peers
// assign identical entity ids.
func (l *Level) NewMultiplayerWorld(spawns map[string]int, opts sim.Options) (*sim.World, error) {
	w, err := l.NewWorld(opts)
	if err != nil {
		return nil, err
	}

	teams := make([]string, 0, len(spawns))
	for team := range spawns {
		teams = append(teams, team)
	}
	sort.Strings(teams)

	for _, team := range teams {
		idx := spawns[team]
		if idx < 0 || idx >= len(l.SpawnLocations) {
			return nil, fmt.Errorf("level %s: spawn index %d out of range", l.ID, idx)
		}
		loc := l.SpawnLocations[idx]
		for _, s := range l.TeamStartingItems {
			s.X += loc.X
			s.Y += loc.Y
			s.Team = team
			if _, err := w.Add(s); err != nil {
				return nil, fmt.Errorf("level %s: %w", l.ID, err)
			}
		}
		if l.StartingCash > 0 {
			w.SetCash(team, l.StartingCash)
		}
	}
	return w, nil
}

// Camera returns where the view starts for a team, in cells.
func (l *Level) Camera(spawns map[string]int, team string) (int, int) {
	if idx, ok := spawns[team]; ok && idx >= 0 && idx < len(l.SpawnLocations) {
		loc := l.SpawnLocations[idx]
		return int(loc.StartX), int(loc.StartY)
	}
	return l.StartX, l.StartY
}

// AssetRequests lists every template the level needs before play.
func (l *Level) AssetRequests(cat *registry.Catalog) []sim.AssetRequest {
	var reqs []sim.AssetRequest
	for _, group := range [][]sim.Spawn{l.Items, l.TeamStartingItems} {
		for _, s := range group {
			reqs = append(reqs, sim.AssetRequest{Category: s.Category, Name: s.Name})
		}
	}
	for c, names := range l.Requirements {
		cc, err := registry.ParseCategory(c)
		if err != nil {
			continue
		}
		for _, n := range names {
			reqs = append(reqs, sim.AssetRequest{Category: cc, Name: n})
		}
	}
	return sim.ExpandRequirements(cat, reqs)
}
