package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vovakirdan/tui-rts/internal/config"
	"github.com/vovakirdan/tui-rts/internal/level"
	"github.com/vovakirdan/tui-rts/internal/lockstep"
	"github.com/vovakirdan/tui-rts/internal/platform/tui"
	"github.com/vovakirdan/tui-rts/internal/replay"
	"github.com/vovakirdan/tui-rts/internal/storage"
	"github.com/vovakirdan/tui-rts/internal/transport/ws"
)

var (
	flagServerConfig string
	flagAddr         string
	flagRooms        int
	flagSSHAddr      string
	flagHostKey      string
	flagIdleTimeout  int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the lockstep server",
	Long: `Start the websocket lockstep server. Players connect with 'rts join'
and are paired two per room; the server releases each tick once both
players have confirmed it.

With --ssh, an SSH front door is started as well. Each SSH session gets
the level menu and a private skirmish.

Match results go to the --db database and every released tick is
appended to a compressed replay under the configured replay_dir.

Examples:
  rts serve                          # Listen on :8080 (ws path /ws)
  rts serve --addr :9000 --rooms 4
  rts serve --ssh :23234             # Also serve skirmishes over SSH
  rts serve --server-config ./server.yaml

Players connect with:
  rts join ws://localhost:8080/ws
  ssh localhost -p 23234`,
	Run: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagServerConfig, "server-config", "", "Path to server config YAML")
	serveCmd.Flags().StringVar(&flagAddr, "addr", "", "Websocket listen address (overrides config)")
	serveCmd.Flags().IntVar(&flagRooms, "rooms", 0, "Number of rooms (overrides config)")
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", "", "SSH server address (host:port); empty disables SSH")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to SSH host key file (auto-generated if not specified)")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", 30, "SSH idle timeout in minutes")
	serveCmd.Flags().StringVar(&flagLevelsDir, "levels", "", "Directory of level YAML files for SSH skirmishes")
}

func runServe(cmd *cobra.Command, _ []string) {
	logger := newLogger("rts")

	srvCfg, err := config.LoadServer(flagServerConfig)
	if err != nil {
		fail("cannot load server config: %v", err)
	}
	if flagAddr != "" {
		srvCfg.Address = flagAddr
	}
	if flagRooms > 0 {
		srvCfg.Rooms = flagRooms
	}
	if _, err := level.ByID(srvCfg.LevelID); err != nil {
		fail("server level: %v", err)
	}

	dbPath := flagDBPath
	if !cmd.Flags().Changed("db") && srvCfg.DBPath != "" {
		dbPath = srvCfg.DBPath
	}
	store, err := storage.Open(dbPath)
	if err != nil {
		fail("cannot open match database: %v", err)
	}
	defer store.Close()

	coord := lockstep.NewCoordinator(srvCfg, nil, logger.WithPrefix("coordinator"))
	coord.SetResultSaver(store)
	coord.SetRecorder(replay.NewRecorder(srvCfg.ReplayDir))
	if flagSeed != 0 {
		coord.SetSeed(uint64(flagSeed))
	}
	coord.Start()
	defer coord.Stop()

	mux := http.NewServeMux()
	mux.Handle("/ws", ws.NewServer(coord, srvCfg, logger.WithPrefix("ws")).Handler())
	httpSrv := &http.Server{
		Addr:              srvCfg.Address,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("lockstep server listening",
			"address", srvCfg.Address, "rooms", srvCfg.Rooms, "level", srvCfg.LevelID, "db", dbPath)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("websocket server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logger.Info("shutting down lockstep server")
		return httpSrv.Shutdown(shutdownCtx)
	})

	if flagSSHAddr != "" {
		simCfg, err := loadSim()
		if err != nil {
			fail("cannot load config: %v", err)
		}
		levels, err := levelLoader().LoadAll()
		if err != nil {
			fail("cannot load levels: %v", err)
		}
		sshCfg := tui.DefaultSSHServerConfig()
		sshCfg.Address = flagSSHAddr
		sshCfg.HostKeyPath = flagHostKey
		sshCfg.IdleTimeout = time.Duration(flagIdleTimeout) * time.Minute
		sshCfg.Levels = levels
		sshCfg.Sim = simCfg

		sshSrv, err := tui.NewSSHServer(sshCfg, store, logger.WithPrefix("ssh"))
		if err != nil {
			fail("creating SSH server: %v", err)
		}
		g.Go(func() error { return sshSrv.ListenAndServe(gctx) })
	}

	if err := g.Wait(); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}
