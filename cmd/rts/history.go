package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-rts/internal/storage"
)

var flagHistoryLimit int

var historyCmd = &cobra.Command{
	Use:   "history [match-id]",
	Short: "Show match history",
	Long: `Display recent online matches with per-colour win counts, followed by
recent skirmishes. With a match id, show that match in full.

Examples:
  rts history
  rts history --limit 5
  rts history room1-1718000000`,
	Args: cobra.MaximumNArgs(1),
	Run:  runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&flagHistoryLimit, "limit", 10, "Rows per section")
}

func runHistory(_ *cobra.Command, args []string) {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fail("opening match database: %v", err)
	}
	defer store.Close()

	if len(args) == 1 {
		showMatch(store, args[0])
		return
	}

	matches, err := store.RecentMatches(flagHistoryLimit)
	if err != nil {
		fail("retrieving matches: %v", err)
	}

	fmt.Println("Online matches")
	fmt.Println()
	if len(matches) == 0 {
		fmt.Println("No matches recorded yet.")
	} else {
		fmt.Printf("  %-16s  %-24s  %-10s  %-7s  %-10s  %s\n", "Date", "Match", "Level", "Winner", "Reason", "Ticks")
		fmt.Printf("  %-16s  %-24s  %-10s  %-7s  %-10s  %s\n", "----", "-----", "-----", "------", "------", "-----")
		for _, m := range matches {
			winner := m.Winner
			if winner == "" {
				winner = "-"
			}
			fmt.Printf("  %-16s  %-24s  %-10s  %-7s  %-10s  %d\n",
				m.CreatedAt.Format("2006-01-02 15:04"), m.MatchID, m.LevelID, winner, m.EndReason, m.Ticks)
		}

		stats, err := store.TeamStats()
		if err == nil && len(stats) > 0 {
			fmt.Println()
			for _, s := range stats {
				fmt.Printf("  %-6s won %d of %d\n", s.Team, s.Wins, s.Played)
			}
		}
	}

	games, err := store.RecentSkirmishes(flagHistoryLimit)
	if err != nil {
		fail("retrieving skirmishes: %v", err)
	}
	fmt.Println()
	fmt.Println("Skirmishes")
	fmt.Println()
	if len(games) == 0 {
		fmt.Println("No skirmishes recorded yet.")
		fmt.Println()
		fmt.Println("Play 'rts play' to record the first one!")
		return
	}
	fmt.Printf("  %-16s  %-10s  %-6s  %-6s  %s\n", "Date", "Level", "Team", "Result", "Ticks")
	fmt.Printf("  %-16s  %-10s  %-6s  %-6s  %s\n", "----", "-----", "----", "------", "-----")
	for _, g := range games {
		result := "lost"
		if g.Won {
			result = "won"
		}
		fmt.Printf("  %-16s  %-10s  %-6s  %-6s  %d\n",
			g.CreatedAt.Format("2006-01-02 15:04"), g.LevelID, g.Team, result, g.Ticks)
	}
}

func showMatch(store *storage.Store, id string) {
	m, err := store.MatchByID(id)
	if err != nil {
		fail("retrieving match: %v", err)
	}
	if m == nil {
		fail("no match %q", id)
	}
	winner := m.Winner
	if winner == "" {
		winner = "none"
	}
	fmt.Printf("Match %s\n\n", m.MatchID)
	fmt.Printf("  Room      %d\n", m.RoomID)
	fmt.Printf("  Level     %s\n", m.LevelID)
	fmt.Printf("  Blue      %s\n", m.BlueSession)
	fmt.Printf("  Green     %s\n", m.GreenSession)
	fmt.Printf("  Winner    %s\n", winner)
	fmt.Printf("  Reason    %s\n", m.EndReason)
	if m.Message != "" {
		fmt.Printf("  Message   %s\n", m.Message)
	}
	fmt.Printf("  Ticks     %d\n", m.Ticks)
	fmt.Printf("  Duration  %ds\n", m.Duration)
	fmt.Printf("  Date      %s\n", m.CreatedAt.Format("2006-01-02 15:04:05"))
}
