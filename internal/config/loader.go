package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadSim loads the simulation tuning.
// Search order: customPath -> ~/.rts/configs/sim.yaml -> ./configs/sim.yaml -> embedded default
func LoadSim(customPath string) (SimConfig, error) {
	cfg, err := load("sim", customPath, defaultSimYAML, DefaultSimConfig)
	if err != nil {
		return cfg, err
	}
	fillSim(&cfg)
	return cfg, nil
}

// LoadServer loads the lockstep server configuration.
// Search order: customPath -> ~/.rts/configs/server.yaml -> ./configs/server.yaml -> embedded default
func LoadServer(customPath string) (ServerConfig, error) {
	cfg, err := load("server", customPath, defaultServerYAML, DefaultServerConfig)
	if err != nil {
		return cfg, err
	}
	fillServer(&cfg)
	return cfg, nil
}

// LoadBot loads the bot configuration.
// Search order: customPath -> ~/.rts/configs/bot.yaml -> ./configs/bot.yaml -> embedded default
func LoadBot(customPath string) (BotConfig, error) {
	return load("bot", customPath, defaultBotYAML, DefaultBotConfig)
}

func load[T any](name, customPath string, embedded []byte, fallback func() T) (T, error) {
	var cfg T

	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return cfg, nil
	}

	filename := name + ".yaml"

	// Try user config directory
	if userCfgPath := userConfigPath(filename); userCfgPath != "" {
		if data, err := os.ReadFile(userCfgPath); err == nil {
			if err := yaml.Unmarshal(data, &cfg); err == nil {
				return cfg, nil
			}
		}
	}

	// Try local configs directory
	if data, err := os.ReadFile(filepath.Join("configs", filename)); err == nil {
		var local T
		if err := yaml.Unmarshal(data, &local); err == nil {
			return local, nil
		}
	}

	// Use embedded default YAML
	var def T
	if err := yaml.Unmarshal(embedded, &def); err != nil {
		return fallback(), nil // Fallback to hardcoded if embed fails
	}
	return def, nil
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".rts", "configs", filename)
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// fillSim replaces zero values left by a partial file with defaults.
func fillSim(c *SimConfig) {
	d := DefaultSimConfig()
	setInt(&c.TickPeriodMS, d.TickPeriodMS)
	setInt(&c.GridSize, d.GridSize)
	setFloat(&c.SpeedAdjustment, d.SpeedAdjustment)
	setFloat(&c.TurnAdjustment, d.TurnAdjustment)
	setFloat(&c.TurningFactor.Vehicle, d.TurningFactor.Vehicle)
	setFloat(&c.TurningFactor.Aircraft, d.TurningFactor.Aircraft)
	setFloat(&c.Collision.HardGrid, d.Collision.HardGrid)
	setFloat(&c.Collision.SoftGrid, d.Collision.SoftGrid)
	setFloat(&c.Collision.SoftVehicle, d.Collision.SoftVehicle)
	setInt(&c.Collision.Neighbourhood, d.Collision.Neighbourhood)
	setInt(&c.RetryThreshold, d.RetryThreshold)
	setInt(&c.Triggers.ConditionIntervalTicks, d.Triggers.ConditionIntervalTicks)
}

func fillServer(c *ServerConfig) {
	d := DefaultServerConfig()
	if c.Address == "" {
		c.Address = d.Address
	}
	setInt(&c.Rooms, d.Rooms)
	setInt(&c.TickPeriodMS, d.TickPeriodMS)
	setInt(&c.LatencyTrips, d.LatencyTrips)
	if len(c.PlayerColors) != 2 {
		c.PlayerColors = d.PlayerColors
	}
	setInt(&c.SpawnChoices, d.SpawnChoices)
	setFloat(&c.ChatRatePerSec, d.ChatRatePerSec)
	setInt(&c.ChatBurst, d.ChatBurst)
	setFloat(&c.CommandRatePerSec, d.CommandRatePerSec)
	if c.LevelID == "" {
		c.LevelID = d.LevelID
	}
}

func setInt(v *int, def int) {
	if *v <= 0 {
		*v = def
	}
}

func setFloat(v *float64, def float64) {
	if *v <= 0 {
		*v = def
	}
}
