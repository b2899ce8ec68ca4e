package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-rts/internal/bot"
	"github.com/vovakirdan/tui-rts/internal/transport/ws"
)

var flagBotRoom int

var botCmd = &cobra.Command{
	Use:   "bot <url>",
	Short: "Run a headless scripted player",
	Long: `Connect to an 'rts serve' instance as a scripted player. The bot joins
the room, loads the level, builds units, deploys harvesters, patrols and
finally hunts.

Examples:
  rts bot ws://localhost:8080/ws --room 1
  rts bot ws://localhost:8080/ws --room 2 --difficulty hard`,
	Args: cobra.ExactArgs(1),
	Run:  runBot,
}

func init() {
	botCmd.Flags().IntVar(&flagBotRoom, "room", 1, "Room to join")
	botCmd.Flags().StringVar(&flagBotConfig, "bot-config", "", "Path to bot config YAML")
	botCmd.Flags().StringVar(&flagDifficulty, "difficulty", "", "Preset: easy, normal, hard")
}

func runBot(_ *cobra.Command, args []string) {
	logger := newLogger("rts-bot")

	simCfg, err := loadSim()
	if err != nil {
		fail("cannot load config: %v", err)
	}
	botCfg, err := loadBot()
	if err != nil {
		fail("cannot load bot config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	conn, err := ws.Dial(dialCtx, args[0])
	cancel()
	if err != nil {
		fail("%v", err)
	}
	defer conn.Close()

	p := bot.NewPlayer(conn, flagBotRoom, botCfg, logger)
	p.Sim = simCfg
	logger.Info("bot connecting", "url", args[0], "room", flagBotRoom, "preset", botCfg.Preset)

	result, err := p.Run(ctx)
	switch {
	case errors.Is(err, context.Canceled):
		logger.Info("bot stopped")
	case err != nil:
		if conn.Err() != nil {
			logger.Error("connection", "err", conn.Err())
		}
		fail("%v", err)
	default:
		fmt.Println(result)
	}
}
