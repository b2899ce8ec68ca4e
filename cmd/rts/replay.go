package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-rts/internal/level"
	"github.com/vovakirdan/tui-rts/internal/replay"
	"github.com/vovakirdan/tui-rts/internal/sim"
)

var flagReplayQuiet bool

var replayCmd = &cobra.Command{
	Use:   "replay <file>",
	Short: "Print a replay and re-simulate it",
	Long: `Read a compressed replay written by 'rts serve', print the released
ticks that carried commands, and re-run them against a fresh world built
from the recorded level and spawns.

Examples:
  rts replay ~/.rts/replays/room1-1718000000.jsonl.zst
  rts replay match.jsonl.zst --quiet`,
	Args: cobra.ExactArgs(1),
	Run:  runReplay,
}

func init() {
	replayCmd.Flags().BoolVar(&flagReplayQuiet, "quiet", false, "Only print the summary")
}

func runReplay(_ *cobra.Command, args []string) {
	header, recs, err := replay.ReadFile(args[0])
	if err != nil {
		fail("%v", err)
	}

	fmt.Printf("Match %s  room %d  level %s  lag %d\n", header.MatchID, header.RoomID, header.LevelID, header.Lag)
	if !header.Started.IsZero() {
		fmt.Printf("Started %s\n", header.Started.Format("2006-01-02 15:04:05"))
	}
	fmt.Println()

	commands := 0
	for _, rec := range recs {
		commands += len(rec.Commands)
		if flagReplayQuiet || len(rec.Commands) == 0 {
			continue
		}
		parts := make([]string, 0, len(rec.Commands))
		for _, c := range rec.Commands {
			parts = append(parts, fmt.Sprintf("%s%v", c.Details.Type, c.UIDs))
		}
		fmt.Printf("  tick %-6d %s\n", rec.Tick, strings.Join(parts, "  "))
	}

	simCfg, err := loadSim()
	if err != nil {
		fail("cannot load config: %v", err)
	}
	lvl, err := level.ByID(header.LevelID)
	if err != nil {
		fail("%v", err)
	}
	w, err := lvl.NewMultiplayerWorld(header.Spawns, sim.Options{Config: simCfg})
	if err != nil {
		fail("%v", err)
	}
	if err := replay.Apply(w, recs); err != nil {
		fail("%v", err)
	}

	fmt.Println()
	fmt.Printf("%d ticks, %d commands; world at tick %d\n", len(recs), commands, w.Tick())
	for _, team := range w.Teams() {
		state := "standing"
		if w.Defeated(team) {
			state = "defeated"
		}
		fmt.Printf("  %-8s %-9s $%d\n", team, state, w.Cash(team))
	}
}
