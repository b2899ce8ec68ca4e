package config

import (
	_ "embed"
)

//go:embed defaults/sim.yaml
var defaultSimYAML []byte

//go:embed defaults/server.yaml
var defaultServerYAML []byte

//go:embed defaults/bot.yaml
var defaultBotYAML []byte

// DefaultSimConfig returns the default simulation tuning.
func DefaultSimConfig() SimConfig {
	return SimConfig{
		TickPeriodMS:    100,
		GridSize:        20,
		SpeedAdjustment: 1.0 / 64,
		TurnAdjustment:  1.0 / 8,
		TurningFactor: TurningFactor{
			Vehicle:  0.5,
			Aircraft: 0.4,
		},
		Collision: CollisionConfig{
			HardGrid:      0.9,
			SoftGrid:      1.1,
			SoftVehicle:   1.5,
			Neighbourhood: 3,
		},
		RetryThreshold: 30,
		Triggers: TriggerConfig{
			ConditionIntervalTicks: 10, // one second at the default period
		},
	}
}

// DefaultServerConfig returns the default lockstep server configuration.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Address:           ":8080",
		Rooms:             10,
		TickPeriodMS:      100,
		LatencyTrips:      3,
		PlayerColors:      []string{"blue", "green"},
		SpawnChoices:      4,
		ChatRatePerSec:    2,
		ChatBurst:         5,
		CommandRatePerSec: 50,
		ReplayDir:         "~/.rts/replays",
		DBPath:            "~/.rts/matches.db",
		LevelID:           "crossing",
	}
}

// DefaultBotConfig returns the default bot configuration.
func DefaultBotConfig() BotConfig {
	cfg := BotConfig{}
	ApplyBotPreset(&cfg, DifficultyNormal)
	return cfg
}

// GetDefaultYAML returns the embedded default YAML for a config name.
func GetDefaultYAML(name string) []byte {
	switch name {
	case "sim":
		return defaultSimYAML
	case "server":
		return defaultServerYAML
	case "bot":
		return defaultBotYAML
	default:
		return nil
	}
}
