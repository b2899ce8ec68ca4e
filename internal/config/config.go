// Package config provides YAML-based configuration loading for the
// simulation, the lockstep server and the headless bot.
package config

import "time"

// SimConfig contains the simulation tuning. Every multiplier and threshold
// the movement and combat code uses lives here.
type SimConfig struct {
	TickPeriodMS    int             `yaml:"tick_period_ms"`
	GridSize        int             `yaml:"grid_size"`
	SpeedAdjustment float64         `yaml:"speed_adjustment"`
	TurnAdjustment  float64         `yaml:"turn_adjustment"`
	TurningFactor   TurningFactor   `yaml:"turning_factor"`
	Collision       CollisionConfig `yaml:"collision"`
	RetryThreshold  int             `yaml:"retry_threshold"`
	Triggers        TriggerConfig   `yaml:"triggers"`
}

// TurningFactor is the speed multiplier applied while a unit is turning.
type TurningFactor struct {
	Vehicle  float64 `yaml:"vehicle"`
	Aircraft float64 `yaml:"aircraft"`
}

// CollisionConfig defines the collision classification thresholds.
type CollisionConfig struct {
	HardGrid      float64 `yaml:"hard_grid"`     // fraction of radius against grid cells
	SoftGrid      float64 `yaml:"soft_grid"`     // fraction of radius against grid cells
	SoftVehicle   float64 `yaml:"soft_vehicle"`  // own radius multiplier against vehicles
	Neighbourhood int     `yaml:"neighbourhood"` // cells scanned around the mover
}

// TriggerConfig defines level trigger scheduling.
type TriggerConfig struct {
	ConditionIntervalTicks int `yaml:"condition_interval_ticks"`
}

// TickPeriod returns the simulation period.
func (c SimConfig) TickPeriod() time.Duration {
	return time.Duration(c.TickPeriodMS) * time.Millisecond
}

// ServerConfig contains all configuration for the lockstep server.
type ServerConfig struct {
	Address           string   `yaml:"address"`
	Rooms             int      `yaml:"rooms"`
	TickPeriodMS      int      `yaml:"tick_period_ms"`
	LatencyTrips      int      `yaml:"latency_trips"`
	PlayerColors      []string `yaml:"player_colors"`
	SpawnChoices      int      `yaml:"spawn_choices"`
	ChatRatePerSec    float64  `yaml:"chat_rate_per_sec"`
	ChatBurst         int      `yaml:"chat_burst"`
	CommandRatePerSec float64  `yaml:"command_rate_per_sec"`
	ReplayDir         string   `yaml:"replay_dir"`
	DBPath            string   `yaml:"db_path"`
	LevelID           string   `yaml:"level_id"`
}

// TickPeriod returns the barrier release period.
func (c ServerConfig) TickPeriod() time.Duration {
	return time.Duration(c.TickPeriodMS) * time.Millisecond
}

// BotConfig defines how the headless bot plays.
type BotConfig struct {
	Preset       DifficultyPreset `yaml:"preset"`
	CommandEvery int              `yaml:"command_every"` // ticks between scripted commands
	HuntAfter    int              `yaml:"hunt_after"`    // tick at which idle units start hunting
	Patrol       bool             `yaml:"patrol"`
}

// DifficultyPreset represents a named bot difficulty level.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
)

// ApplyBotPreset modifies the bot config based on a difficulty preset.
// Unknown presets leave the config untouched.
func ApplyBotPreset(cfg *BotConfig, preset DifficultyPreset) {
	switch preset {
	case DifficultyEasy:
		cfg.CommandEvery = 50
		cfg.HuntAfter = 1200
		cfg.Patrol = false
	case DifficultyNormal:
		cfg.CommandEvery = 20
		cfg.HuntAfter = 600
		cfg.Patrol = true
	case DifficultyHard:
		cfg.CommandEvery = 5
		cfg.HuntAfter = 150
		cfg.Patrol = true
	default:
		return
	}
	cfg.Preset = preset
}
