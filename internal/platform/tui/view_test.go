package tui

import (
	"context"
	"testing"

	"github.com/vovakirdan/tui-rts/internal/core"
	"github.com/vovakirdan/tui-rts/internal/grid"
	"github.com/vovakirdan/tui-rts/internal/registry"
	"github.com/vovakirdan/tui-rts/internal/sim"
)

func drawWorld(t *testing.T, team string, w *sim.World, cursorX, cursorY int) *core.Screen {
	t.Helper()
	g, err := preloadGlyphs(context.Background(), w)
	if err != nil {
		t.Fatalf("preloadGlyphs failed: %v", err)
	}
	s := core.NewScreen(w.Map().Width(), w.Map().Height())
	v := &MapView{Team: team, CursorX: cursorX, CursorY: cursorY, Glyphs: g}
	v.Draw(s, w, s.Bounds(), 0)
	return s
}

func TestMapViewDrawsEntitiesAndWalls(t *testing.T) {
	w := sim.NewWorld(sim.Options{Width: 20, Height: 12, Obstructed: []grid.Cell{{X: 5, Y: 5}}})
	for _, sp := range []sim.Spawn{
		{Category: registry.CategoryVehicle, Name: "scout-tank", Team: "blue", X: 2.5, Y: 2.5},
		{Category: registry.CategoryBuilding, Name: "starport", Team: "blue", X: 6, Y: 2},
		{Category: registry.CategoryVehicle, Name: "heavy-tank", Team: "green", X: 10.5, Y: 5.5},
		{Category: registry.CategoryTerrain, Name: "oilfield", X: 12, Y: 8},
	} {
		if _, err := w.Add(sp); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}

	s := drawWorld(t, "", w, 0, 0)

	tests := []struct {
		x, y int
		want rune
	}{
		{5, 5, '#'},
		{2, 2, 's'},
		{6, 2, 'S'},
		{7, 3, 'S'},
		{10, 5, 'k'},
		{12, 8, 'o'},
		{13, 8, 'o'},
		{0, 0, '+'},
		{15, 1, ' '},
	}
	for _, tt := range tests {
		if got := s.Get(tt.x, tt.y); got != tt.want {
			t.Errorf("cell (%d,%d): expected %q, got %q", tt.x, tt.y, tt.want, got)
		}
	}
	if c := s.GetCell(2, 2); c.Color != core.TeamColor("blue") {
		t.Errorf("expected team color for blue tank, got %v", c.Color)
	}
	if c := s.GetCell(12, 8); c.Color != core.ColorYellow {
		t.Errorf("expected yellow oilfield, got %v", c.Color)
	}
}

func TestMapViewCursorOverEntity(t *testing.T) {
	w := sim.NewWorld(sim.Options{Width: 8, Height: 8})
	if _, err := w.Add(sim.Spawn{Category: registry.CategoryVehicle, Name: "scout-tank", Team: "blue", X: 2.5, Y: 2.5}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	s := drawWorld(t, "", w, 2, 2)
	c := s.GetCell(2, 2)
	if c.Rune != 's' || c.Color != core.ColorMagenta {
		t.Errorf("expected magenta 's' under cursor, got %q %v", c.Rune, c.Color)
	}
}

func TestMapViewFog(t *testing.T) {
	w := sim.NewWorld(sim.Options{Width: 20, Height: 12, Team: "blue"})
	for _, sp := range []sim.Spawn{
		{Category: registry.CategoryVehicle, Name: "scout-tank", Team: "blue", X: 2.5, Y: 2.5},
		{Category: registry.CategoryVehicle, Name: "heavy-tank", Team: "green", X: 16.5, Y: 9.5},
	} {
		if _, err := w.Add(sp); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}

	// nothing has been seen before the first step
	s := drawWorld(t, "blue", w, 0, 0)
	if got := s.Get(10, 6); got != runeFog {
		t.Errorf("expected fog before first step, got %q", got)
	}
	if got := s.Get(2, 2); got != 's' {
		t.Errorf("expected own tank drawn through fog, got %q", got)
	}

	w.Step()
	s = drawWorld(t, "blue", w, 0, 0)
	if got := s.Get(3, 3); got != ' ' {
		t.Errorf("expected cleared cell near the tank, got %q", got)
	}
	if got := s.Get(16, 9); got != runeFog {
		t.Errorf("expected enemy hidden by fog, got %q", got)
	}
}

func TestGlyphSet(t *testing.T) {
	w := sim.NewWorld(sim.Options{Width: 8, Height: 8})
	if _, err := w.Add(sim.Spawn{Category: registry.CategoryBuilding, Name: "base", Team: "blue", X: 1, Y: 1}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	g, err := preloadGlyphs(context.Background(), w)
	if err != nil {
		t.Fatalf("preloadGlyphs failed: %v", err)
	}
	if g.Len() < len(constructible(w.Catalog())) {
		t.Errorf("expected at least every constructible unit loaded, got %d", g.Len())
	}
	if r := g.Rune(registry.CategoryBuilding, "base"); r != 'B' {
		t.Errorf("expected 'B' for base, got %q", r)
	}
	if r := g.Rune(registry.CategoryProjectile, "bullet"); r != runeMissile {
		t.Errorf("expected missile glyph, got %q", r)
	}
	if r := NewGlyphSet().Rune(registry.CategoryVehicle, "zeppelin"); r != 'z' {
		t.Errorf("expected first-letter fallback, got %q", r)
	}

	err = NewGlyphSet().Load(context.Background(), sim.AssetRequest{Category: registry.CategoryVehicle})
	if err == nil {
		t.Error("expected error for empty template name")
	}
}

func TestMapViewFollowClampsCamera(t *testing.T) {
	w := sim.NewWorld(sim.Options{Width: 40, Height: 30})
	v := &MapView{}
	v.MoveCursor(w, 35, 0, 20, 10)
	if v.CursorX != 35 || v.CamX != 16 {
		t.Errorf("expected cursor 35 cam 16, got cursor %d cam %d", v.CursorX, v.CamX)
	}
	v.MoveCursor(w, 100, 100, 20, 10)
	if v.CursorX != 39 || v.CursorY != 29 || v.CamX != 20 || v.CamY != 20 {
		t.Errorf("expected clamp to map edge, got %+v", *v)
	}
	v.MoveCursor(w, -100, -100, 20, 10)
	if v.CamX != 0 || v.CamY != 0 {
		t.Errorf("expected camera at origin, got %d,%d", v.CamX, v.CamY)
	}
}
