package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-rts/internal/config"
	"github.com/vovakirdan/tui-rts/internal/level"
	"github.com/vovakirdan/tui-rts/internal/platform/tui"
	"github.com/vovakirdan/tui-rts/internal/storage"
)

var (
	flagLevelsDir  string
	flagBotConfig  string
	flagDifficulty string
)

var playCmd = &cobra.Command{
	Use:   "play [level]",
	Short: "Play a skirmish",
	Long: `Start a skirmish against scripted rivals. Without a level id the level
menu opens, and finished games return to it.

Controls:
  Arrows/k/j/l   - Move cursor
  Space/Enter    - Select unit under cursor
  Tab            - Next unit
  m a p g d h s  - Move, attack, patrol, guard, deploy, hunt, sentry
  u / c          - Construct unit / choose unit type
  P              - Pause
  Ctrl+S         - Screenshot
  Q/Ctrl+C       - Quit

Difficulty options:
  easy   - Rivals act rarely and hunt late
  normal - Rivals patrol and hunt after a minute
  hard   - Rivals act every few ticks and hunt early

Examples:
  rts play
  rts play plains
  rts play outpost --difficulty hard
  rts play --levels ./my-levels`,
	Args: cobra.MaximumNArgs(1),
	Run:  runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagLevelsDir, "levels", "", "Directory of level YAML files (default: embedded levels)")
	playCmd.Flags().StringVar(&flagBotConfig, "bot-config", "", "Path to rival bot config YAML")
	playCmd.Flags().StringVar(&flagDifficulty, "difficulty", "", "Rival preset: easy, normal, hard")
}

// levelLoader returns the loader for --levels.
func levelLoader() *level.Loader {
	if flagLevelsDir == "" {
		return level.Embedded()
	}
	return level.NewLoader(config.ExpandHome(flagLevelsDir))
}

// loadBot reads the bot config and applies --difficulty.
func loadBot() (config.BotConfig, error) {
	cfg, err := config.LoadBot(flagBotConfig)
	if err != nil {
		return cfg, err
	}
	config.ApplyBotPreset(&cfg, config.DifficultyPreset(flagDifficulty))
	return cfg, nil
}

func runPlay(_ *cobra.Command, args []string) {
	simCfg, err := loadSim()
	if err != nil {
		fail("cannot load config: %v", err)
	}
	botCfg, err := loadBot()
	if err != nil {
		fail("cannot load bot config: %v", err)
	}
	loader := levelLoader()

	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open match database: %v\n", err)
		store = nil
	}
	if store != nil {
		defer store.Close()
	}

	cfg := runtimeConfig(simCfg)

	if len(args) == 1 {
		lvl, err := loader.LoadByID(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			fmt.Fprintln(os.Stderr, "Run 'rts list' to see available levels.")
			os.Exit(1)
		}
		cfg.Seed = cfg.ResolveSeed()
		if _, err := tui.Run(lvl, store, cfg, simCfg, &botCfg); err != nil {
			fail("running skirmish: %v", err)
		}
		return
	}

	levels, err := loader.LoadAll()
	if err != nil {
		fail("cannot load levels: %v", err)
	}

	// Menu loop
	for {
		res, err := tui.RunMenu(levels, cfg)
		if err != nil {
			fail("%v", err)
		}
		cfg = res.Config
		if res.Quit {
			return
		}

		if res.WantsHistory {
			goBack, err := tui.RunHistory(store, cfg.ScreenW, cfg.ScreenH)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}
			if goBack {
				continue
			}
			return
		}

		lvl, err := loader.LoadByID(res.LevelID)
		if err != nil {
			fail("%v", err)
		}
		cfg.Seed = cfg.ResolveSeed()
		back, err := tui.Run(lvl, store, cfg, simCfg, &botCfg)
		if err != nil {
			fail("running skirmish: %v", err)
		}
		if !back {
			return
		}
	}
}
