package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-rts/internal/level"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all available levels",
	Long:  `Shows every embedded level with its mode and size.`,
	Run:   runList,
}

func runList(_ *cobra.Command, _ []string) {
	levels, err := level.Embedded().LoadAll()
	if err != nil {
		fail("cannot load levels: %v", err)
	}
	if len(levels) == 0 {
		fmt.Println("No levels available.")
		return
	}

	fmt.Println("Available levels:")
	fmt.Println()

	maxIDLen := 2 // "ID" header
	for _, l := range levels {
		maxIDLen = max(maxIDLen, len(l.ID))
	}

	fmt.Printf("  %-*s  %-12s  %-7s  %s\n", maxIDLen, "ID", "Mode", "Size", "Name")
	fmt.Printf("  %-*s  %-12s  %-7s  %s\n", maxIDLen, "--", "----", "----", "----")
	for _, l := range levels {
		size := fmt.Sprintf("%dx%d", l.Width, l.Height)
		fmt.Printf("  %-*s  %-12s  %-7s  %s\n", maxIDLen, l.ID, l.Mode, size, l.Name)
	}

	fmt.Println()
	fmt.Println("Run 'rts play <id>' to start a single-player level.")
}
