package tui

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/vovakirdan/tui-rts/internal/core"
	"github.com/vovakirdan/tui-rts/internal/registry"
	"github.com/vovakirdan/tui-rts/internal/sim"
)

// Terminal glyphs, one per template. Unknown templates fall back to the
// first letter of their name.
var glyphs = map[string]rune{
	"buildings/base":          'B',
	"buildings/starport":      'S',
	"buildings/harvester":     'H',
	"buildings/ground-turret": 'T',
	"vehicles/transport":      't',
	"vehicles/harvester":      'h',
	"vehicles/scout-tank":     's',
	"vehicles/heavy-tank":     'k',
	"aircraft/chopper":        'c',
	"aircraft/wraith":         'w',
	"terrain/oilfield":        'o',
	"terrain/bigrocks":        '^',
	"terrain/smallrocks":      '^',
}

const (
	runeFog      = '·'
	runeWall     = '#'
	runeCursor   = '+'
	runeMissile  = '*'
	runeExplodes = '%'
)

// GlyphSet resolves templates to terminal runes. It is the asset loader of
// the terminal renderer: sim.Preload fills it before the first tick.
type GlyphSet struct {
	mu     sync.RWMutex
	runes  map[string]rune
	loaded int
}

// NewGlyphSet returns an empty set.
func NewGlyphSet() *GlyphSet {
	return &GlyphSet{runes: make(map[string]rune)}
}

// Load implements sim.AssetLoader.
func (g *GlyphSet) Load(ctx context.Context, req sim.AssetRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if req.Name == "" {
		return fmt.Errorf("tui: empty template name for %s", req.Category)
	}
	r, ok := glyphs[req.String()]
	if !ok {
		r = []rune(req.Name)[0]
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.runes[req.String()] = r
	g.loaded++
	return nil
}

// Len returns how many templates are loaded.
func (g *GlyphSet) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.loaded
}

// Rune returns the glyph for a template.
func (g *GlyphSet) Rune(c registry.Category, name string) rune {
	if c == registry.CategoryProjectile {
		return runeMissile
	}
	k := c.String() + "/" + name
	g.mu.RLock()
	r, ok := g.runes[k]
	g.mu.RUnlock()
	if ok {
		return r
	}
	if r, ok := glyphs[k]; ok {
		return r
	}
	if name == "" {
		return '?'
	}
	return []rune(name)[0]
}

// preloadGlyphs loads every template the world holds plus every unit a
// starport can construct.
func preloadGlyphs(ctx context.Context, w *sim.World) (*GlyphSet, error) {
	g := NewGlyphSet()
	reqs := w.Requirements()
	for _, info := range constructible(w.Catalog()) {
		reqs = append(reqs, sim.AssetRequest{Category: info.Category, Name: info.Name})
	}
	reqs = sim.ExpandRequirements(w.Catalog(), reqs)
	if err := sim.Preload(ctx, g, reqs, nil); err != nil {
		return nil, err
	}
	return g, nil
}

// MapView draws a world one cell per character through a camera.
type MapView struct {
	Team    string
	CamX    int
	CamY    int
	CursorX int
	CursorY int
	Glyphs  *GlyphSet
}

// Cursor returns the centre of the cell under the cursor.
func (v *MapView) Cursor() core.Point {
	return core.Pt(float64(v.CursorX)+0.5, float64(v.CursorY)+0.5)
}

// MoveCursor moves the cursor inside the map and scrolls the camera so the
// cursor stays within a viewport of vw x vh cells.
func (v *MapView) MoveCursor(w *sim.World, dx, dy, vw, vh int) {
	m := w.Map()
	v.CursorX = clamp(v.CursorX+dx, 0, m.Width()-1)
	v.CursorY = clamp(v.CursorY+dy, 0, m.Height()-1)
	v.Follow(w, vw, vh)
}

// Follow scrolls the camera to contain the cursor.
func (v *MapView) Follow(w *sim.World, vw, vh int) {
	m := w.Map()
	if v.CursorX < v.CamX {
		v.CamX = v.CursorX
	}
	if v.CursorX >= v.CamX+vw {
		v.CamX = v.CursorX - vw + 1
	}
	if v.CursorY < v.CamY {
		v.CamY = v.CursorY
	}
	if v.CursorY >= v.CamY+vh {
		v.CamY = v.CursorY - vh + 1
	}
	v.CamX = clamp(v.CamX, 0, max(0, m.Width()-vw))
	v.CamY = clamp(v.CamY, 0, max(0, m.Height()-vh))
}

// hidden reports whether cell (x, y) is fogged for the viewing team.
func (v *MapView) hidden(w *sim.World, x, y int) bool {
	if v.Team == "" {
		return false
	}
	return w.Fog().IsHidden(v.Team, x, y)
}

// Draw renders the visible part of w into area of s.
func (v *MapView) Draw(s *core.Screen, w *sim.World, area core.Rect, interp float64) {
	m := w.Map()
	for sy := 0; sy < area.H; sy++ {
		for sx := 0; sx < area.W; sx++ {
			x, y := v.CamX+sx, v.CamY+sy
			switch {
			case x >= m.Width() || y >= m.Height():
				s.SetColored(area.X+sx, area.Y+sy, ' ', core.ColorDefault)
			case v.hidden(w, x, y):
				s.SetColored(area.X+sx, area.Y+sy, runeFog, core.ColorDarkGray)
			case m.IsObstructed(x, y):
				s.SetColored(area.X+sx, area.Y+sy, runeWall, core.ColorGray)
			default:
				s.SetColored(area.X+sx, area.Y+sy, ' ', core.ColorDefault)
			}
		}
	}

	gs := w.Config().GridSize
	glyphs := v.Glyphs
	if glyphs == nil {
		glyphs = NewGlyphSet()
	}
	for _, d := range w.Drawables(interp) {
		e, ok := w.Get(d.ID)
		if !ok {
			continue
		}
		r := glyphs.Rune(d.Category, d.Name)
		color := core.TeamColor(d.Team)
		switch {
		case d.Action == sim.ActionExplode || d.LifeCode == sim.LifeDead:
			r, color = runeExplodes, core.ColorOrange
		case d.Category == registry.CategoryProjectile:
			color = core.ColorOrange
		case d.Category == registry.CategoryTerrain && d.Name == "oilfield":
			color = core.ColorYellow
		case d.Selected:
			color = core.ColorBrightWhite
		case d.LifeCode == sim.LifeDamaged:
			color = core.ColorRed
		}

		cells := [][2]int{{int(math.Floor(d.X)), int(math.Floor(d.Y))}}
		if (d.Category == registry.CategoryBuilding || d.Category == registry.CategoryTerrain) && gs > 0 {
			bw, bh := e.Template.BaseWidth/gs, e.Template.BaseHeight/gs
			cells = cells[:0]
			for dy := 0; dy < max(1, bh); dy++ {
				for dx := 0; dx < max(1, bw); dx++ {
					cells = append(cells, [2]int{int(d.X) + dx, int(d.Y) + dy})
				}
			}
		}
		for _, c := range cells {
			// enemy units are only drawn where the team can see
			if d.Team != v.Team && v.hidden(w, c[0], c[1]) {
				continue
			}
			sx, sy := c[0]-v.CamX, c[1]-v.CamY
			if sx < 0 || sy < 0 || sx >= area.W || sy >= area.H {
				continue
			}
			s.SetColored(area.X+sx, area.Y+sy, r, color)
		}
	}

	if sx, sy := v.CursorX-v.CamX, v.CursorY-v.CamY; sx >= 0 && sy >= 0 && sx < area.W && sy < area.H {
		under := s.GetCell(area.X+sx, area.Y+sy)
		if under.Rune == ' ' || under.Rune == runeFog {
			s.SetColored(area.X+sx, area.Y+sy, runeCursor, core.ColorBrightYellow)
		} else {
			s.SetColored(area.X+sx, area.Y+sy, under.Rune, core.ColorMagenta)
		}
	}
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return max(lo, min(v, hi))
}
