package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-rts/internal/platform/tui"
	"github.com/vovakirdan/tui-rts/internal/transport/ws"
)

var joinCmd = &cobra.Command{
	Use:   "join <url>",
	Short: "Join a lockstep server",
	Long: `Connect to an 'rts serve' instance, pick a room and play against
another player.

Lobby:
  Up/Down  - Choose room
  Enter    - Join
In game the skirmish keys apply; t opens chat and b leaves the room.

Examples:
  rts join ws://localhost:8080/ws`,
	Args: cobra.ExactArgs(1),
	Run:  runJoin,
}

func runJoin(_ *cobra.Command, args []string) {
	simCfg, err := loadSim()
	if err != nil {
		fail("cannot load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	conn, err := ws.Dial(ctx, args[0])
	cancel()
	if err != nil {
		fail("%v", err)
	}
	defer conn.Close()

	if err := tui.RunOnline(conn, runtimeConfig(simCfg), simCfg); err != nil {
		fail("%v", err)
	}
}
