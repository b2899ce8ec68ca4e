package sim

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/vovakirdan/tui-rts/internal/registry"
)

// Advisory is a message for a player, usually a warning about a refused
// order.
type Advisory struct {
	Tick uint64 `json:"tick"`
	Team string `json:"team,omitempty"`
	From string `json:"from"`
	Text string `json:"text"`
}

// Observer receives the side effects the simulation cannot express as
// state. Calls happen synchronously inside Step and must not block.
type Observer interface {
	Advisory(a Advisory)
	Sound(name string)
}

// NopObserver discards everything.
type NopObserver struct{}

func (NopObserver) Advisory(Advisory) {}
func (NopObserver) Sound(string)      {}

// advise records an advisory and surfaces it when it concerns the local
// team. An empty team addresses everyone.
func (w *World) advise(team, text string) {
	a := Advisory{Tick: w.tick, Team: team, From: "system", Text: text}
	w.advisories = append(w.advisories, a)
	if team == "" || w.team == "" || w.team == team {
		w.observer.Advisory(a)
	}
}

// Advisories returns every advisory recorded since the last drain.
func (w *World) Advisories() []Advisory { return w.advisories }

// DrainAdvisories returns and clears the recorded advisories.
func (w *World) DrainAdvisories() []Advisory {
	out := w.advisories
	w.advisories = nil
	return out
}

// AssetRequest names one template whose presentation assets must be ready
// before the first tick.
type AssetRequest struct {
	Category registry.Category
	Name     string
}

func (r AssetRequest) String() string { return r.Category.String() + "/" + r.Name }

// AssetLoader prepares the presentation of one template. Loaders are called
// concurrently.
type AssetLoader interface {
	Load(ctx context.Context, req AssetRequest) error
}

// AssetLoaderFunc adapts a function to AssetLoader.
type AssetLoaderFunc func(ctx context.Context, req AssetRequest) error

func (f AssetLoaderFunc) Load(ctx context.Context, req AssetRequest) error { return f(ctx, req) }

const preloadWorkers = 4

// Preload loads every request, at most preloadWorkers at a time, and calls
// progress after each completion with the number done so far. Progress calls
// are serialized. The first failure cancels the rest.
func Preload(ctx context.Context, loader AssetLoader, reqs []AssetRequest, progress func(done, total int)) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(preloadWorkers)

	var (
		mu   sync.Mutex
		done int
	)
	for _, r := range reqs {
		g.Go(func() error {
			if err := loader.Load(ctx, r); err != nil {
				return fmt.Errorf("sim: preload %s: %w", r, err)
			}
			mu.Lock()
			defer mu.Unlock()
			done++
			if progress != nil {
				progress(done, len(reqs))
			}
			return nil
		})
	}
	return g.Wait()
}

// ExpandRequirements deduplicates the requests and adds the projectile of
// every armed template. The result is sorted.
func ExpandRequirements(cat *registry.Catalog, reqs []AssetRequest) []AssetRequest {
	seen := make(map[AssetRequest]bool)
	var out []AssetRequest
	add := func(r AssetRequest) {
		if !seen[r] {
			seen[r] = true
			out = append(out, r)
		}
	}
	for _, r := range reqs {
		add(r)
		t, err := cat.Lookup(r.Category, r.Name)
		if err != nil || t.Weapon == "" {
			continue
		}
		add(AssetRequest{Category: registry.CategoryProjectile, Name: t.Weapon})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Requirements lists the templates present in the world.
func (w *World) Requirements() []AssetRequest {
	reqs := make([]AssetRequest, 0, len(w.entities))
	for _, e := range w.entities {
		reqs = append(reqs, AssetRequest{Category: e.Category, Name: e.Name})
	}
	return ExpandRequirements(w.catalog, reqs)
}
