package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-rts/internal/bot"
	"github.com/vovakirdan/tui-rts/internal/lockstep"
	"github.com/vovakirdan/tui-rts/internal/sim"
)

var (
	flagSimTicks  int
	flagSimPeriod time.Duration
)

var simulateCmd = &cobra.Command{
	Use:   "simulate <level>",
	Short: "Run a skirmish headless",
	Long: `Run a level with every team scripted and report who is left. Useful for
checking levels and bot presets without a terminal.

Examples:
  rts simulate plains
  rts simulate outpost --ticks 5000 --period 1ms --difficulty hard`,
	Args: cobra.ExactArgs(1),
	Run:  runSimulate,
}

func init() {
	simulateCmd.Flags().IntVar(&flagSimTicks, "ticks", 3000, "Maximum ticks to run")
	simulateCmd.Flags().DurationVar(&flagSimPeriod, "period", time.Millisecond, "Wall time per tick")
	simulateCmd.Flags().StringVar(&flagLevelsDir, "levels", "", "Directory of level YAML files (default: embedded levels)")
	simulateCmd.Flags().StringVar(&flagBotConfig, "bot-config", "", "Path to bot config YAML")
	simulateCmd.Flags().StringVar(&flagDifficulty, "difficulty", "", "Preset: easy, normal, hard")
}

func runSimulate(_ *cobra.Command, args []string) {
	simCfg, err := loadSim()
	if err != nil {
		fail("cannot load config: %v", err)
	}
	botCfg, err := loadBot()
	if err != nil {
		fail("cannot load bot config: %v", err)
	}
	lvl, err := levelLoader().LoadByID(args[0])
	if err != nil {
		fail("%v", err)
	}
	w, err := lvl.NewWorld(sim.Options{Config: simCfg})
	if err != nil {
		fail("%v", err)
	}

	var scripts []*bot.Script
	for _, team := range w.Teams() {
		scripts = append(scripts, bot.New(team, botCfg))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	loop := lockstep.NewLoop(w, flagSimPeriod)
	start := time.Now()
	err = loop.Run(ctx, func(w *sim.World) {
		for _, s := range scripts {
			for _, cmd := range s.Orders(w) {
				cmd.Apply(w)
			}
		}
		alive := 0
		for _, team := range w.Teams() {
			if !w.Defeated(team) {
				alive++
			}
		}
		if alive <= 1 || w.Tick() >= uint64(flagSimTicks) {
			cancel()
		}
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		fail("%v", err)
	}

	fmt.Printf("Level %s after %d ticks (%s)\n", lvl.ID, w.Tick(), time.Since(start).Round(time.Millisecond))
	if ended, msg := w.Ended(); ended {
		fmt.Printf("  ended: %s\n", msg)
	}
	for _, team := range w.Teams() {
		state := "standing"
		if w.Defeated(team) {
			state = "defeated"
		}
		fmt.Printf("  %-8s %-9s $%d\n", team, state, w.Cash(team))
	}
}
