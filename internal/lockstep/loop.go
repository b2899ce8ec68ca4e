package lockstep

import (
	"context"
	"time"

	"github.com/vovakirdan/tui-rts/internal/sim"
)

// Loop steps a single-player world on a fixed period. Rendering reads the
// clock for its interpolation factor and never steps the world.
type Loop struct {
	world  *sim.World
	period time.Duration
	clock  *sim.Clock
}

// NewLoop returns a loop for w.
func NewLoop(w *sim.World, period time.Duration) *Loop {
	return &Loop{world: w, period: period, clock: sim.NewClock(period)}
}

// Clock returns the interpolation clock.
func (l *Loop) Clock() *sim.Clock { return l.clock }

// Step runs one tick at now.
func (l *Loop) Step(now time.Time) {
	l.world.Step()
	l.clock.Stepped(now)
}

// Run steps until ctx is done or the world has ended. onStep is called
// after every tick on the loop goroutine.
func (l *Loop) Run(ctx context.Context, onStep func(*sim.World)) error {
	ticker := time.NewTicker(l.period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			l.Step(now)
			if onStep != nil {
				onStep(l.world)
			}
			if ended, _ := l.world.Ended(); ended {
				return nil
			}
		}
	}
}
