package core

import "time"

// RuntimeConfig is passed from the CLI to whatever drives a simulation:
// the terminal viewer, the headless bot or the replay checker.
type RuntimeConfig struct {
	ScreenW    int           // Screen width in characters
	ScreenH    int           // Screen height in characters
	TickPeriod time.Duration // Simulation step period
	Seed       int64         // RNG seed; 0 means derive one from the clock
	Team       string        // Team controlled by the local player
}

// DefaultConfig returns a RuntimeConfig for an 80x24 terminal at 10 ticks per second.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		ScreenW:    80,
		ScreenH:    24,
		TickPeriod: 100 * time.Millisecond,
		Team:       "blue",
	}
}

// ResolveSeed returns the configured seed, or a clock-derived one when unset.
func (c RuntimeConfig) ResolveSeed() int64 {
	if c.Seed != 0 {
		return c.Seed
	}
	return time.Now().UnixNano()
}
