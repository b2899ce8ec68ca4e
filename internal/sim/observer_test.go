package sim

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/vovakirdan/tui-rts/internal/registry"
)

func TestExpandRequirementsAddsWeapons(t *testing.T) {
	cat := registry.Default()
	got := ExpandRequirements(cat, []AssetRequest{
		{registry.CategoryVehicle, "scout-tank"},
		{registry.CategoryVehicle, "scout-tank"},
		{registry.CategoryBuilding, "base"},
		{registry.CategoryAircraft, "chopper"},
	})
	want := []AssetRequest{
		{registry.CategoryBuilding, "base"},
		{registry.CategoryVehicle, "scout-tank"},
		{registry.CategoryAircraft, "chopper"},
		{registry.CategoryProjectile, "bullet"},
		{registry.CategoryProjectile, "heatseeker"},
	}
	if len(got) != len(want) {
		t.Fatalf("got %v, expected %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("request %d = %s, expected %s", i, got[i], want[i])
		}
	}
}

func TestPreloadLoadsEverything(t *testing.T) {
	w, _ := newTestWorld(10, 10)
	mustAdd(t, w, vehicle("heavy-tank", "blue", 1, 1))
	mustAdd(t, w, building("starport", "blue", 4, 4))
	reqs := w.Requirements()

	var (
		mu     sync.Mutex
		loaded = make(map[string]bool)
		calls  []int
	)
	loader := AssetLoaderFunc(func(_ context.Context, r AssetRequest) error {
		mu.Lock()
		loaded[r.String()] = true
		mu.Unlock()
		return nil
	})
	err := Preload(context.Background(), loader, reqs, func(done, total int) {
		if total != len(reqs) {
			t.Errorf("total = %d, expected %d", total, len(reqs))
		}
		calls = append(calls, done)
	})
	if err != nil {
		t.Fatalf("Preload failed: %v", err)
	}
	for _, name := range []string{"vehicles/heavy-tank", "buildings/starport", "projectiles/cannon-ball"} {
		if !loaded[name] {
			t.Errorf("%s was not loaded", name)
		}
	}
	if len(calls) != len(reqs) || calls[len(calls)-1] != len(reqs) {
		t.Errorf("progress calls = %v", calls)
	}
}

func TestPreloadStopsOnError(t *testing.T) {
	boom := errors.New("missing sprite")
	var seen atomic.Int32
	loader := AssetLoaderFunc(func(ctx context.Context, r AssetRequest) error {
		seen.Add(1)
		if r.Name == "wraith" {
			return boom
		}
		return ctx.Err()
	})
	reqs := []AssetRequest{
		{registry.CategoryAircraft, "wraith"},
		{registry.CategoryVehicle, "transport"},
	}
	err := Preload(context.Background(), loader, reqs, nil)
	if !errors.Is(err, boom) {
		t.Errorf("Preload error = %v, expected %v", err, boom)
	}
	if seen.Load() == 0 {
		t.Error("loader never called")
	}
}
