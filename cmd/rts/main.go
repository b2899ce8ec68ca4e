// rts is a terminal real-time strategy game with lockstep multiplayer.
//
// Usage:
//
//	rts list                  - List available levels
//	rts play [level]          - Play a skirmish (menu when no level given)
//	rts serve                 - Start the lockstep server
//	rts join <url>            - Join a lockstep server
//	rts bot <url> --room N    - Run a headless scripted player
//	rts simulate <level>      - Run a skirmish headless and report the outcome
//	rts history               - Show match history
//	rts replay <file>         - Print and re-simulate a replay
//
// Global flags:
//
//	--config <path>     - Simulation config YAML
//	--seed <value>      - RNG seed for reproducible spawns
//	--db <path>         - Database path (default: ~/.rts/matches.db)
//	--log-level <lvl>   - debug, info, warn or error
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/tui-rts/internal/config"
	"github.com/vovakirdan/tui-rts/internal/core"
)

var (
	// Global flags
	flagConfig   string
	flagSeed     int64
	flagDBPath   string
	flagLogLevel string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "rts",
	Short: "TUI RTS - real-time strategy in your terminal",
	Long: `TUI RTS is a terminal real-time strategy game. Skirmishes run locally;
multiplayer games run over a lockstep websocket server so both players
simulate the same world tick by tick.

Available commands:
  list      - Show all levels
  play      - Play a skirmish
  serve     - Start the lockstep server (and optionally SSH)
  join      - Join a lockstep server
  bot       - Headless scripted player
  simulate  - Headless skirmish
  history   - Match history
  replay    - Re-simulate a recorded match

Examples:
  rts list
  rts play plains
  rts serve --ssh :23234
  rts join ws://localhost:8080/ws
  rts bot ws://localhost:8080/ws --room 1`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to simulation config YAML")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.rts/matches.db", "Path to match database")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(joinCmd)
	rootCmd.AddCommand(botCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(replayCmd)
}

// newLogger returns a stderr logger at the --log-level.
func newLogger(prefix string) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
	})
	if lvl, err := log.ParseLevel(flagLogLevel); err == nil {
		logger.SetLevel(lvl)
	}
	return logger
}

// loadSim reads the --config simulation tuning.
func loadSim() (*config.SimConfig, error) {
	cfg, err := config.LoadSim(flagConfig)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// runtimeConfig sizes the screen from the terminal.
func runtimeConfig(sim *config.SimConfig) core.RuntimeConfig {
	cfg := core.DefaultConfig()
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		cfg.ScreenW = w
		cfg.ScreenH = h
	}
	cfg.Seed = flagSeed
	if sim != nil {
		cfg.TickPeriod = sim.TickPeriod()
	}
	return cfg
}

// fail prints an error and exits.
func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
