package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"relocator/internal/control"
	"relocator/internal/infra/inventory"
	redisclient "relocator/internal/infra/redis"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the relocation engine against the inventory backend",
	Long: `Run loads the registry for the configured site, keeps it in sync with
the backend, and serves as the host process for a presentation layer driving
the drag gesture API.`,
	Run: runEngine,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runEngine(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	ctx := context.Background()

	var queue *redisclient.Client
	if cfg.Redis.URL != "" {
		q, err := redisclient.NewClient(cfg.Redis)
		if err != nil {
			slog.Error("Failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer func() { _ = q.Close() }()
		queue = q
		slog.Info("Using shared redis refresh queue")
	}

	engine, err := control.NewEngine(control.Config{
		Site:               cfg.Engine.Site,
		SentinelRoom:       cfg.Engine.SentinelRoom,
		ActivationDistance: cfg.Engine.ActivationDistance,
		RefreshDelay:       cfg.Engine.RefreshDelay,
		PollInterval:       cfg.Engine.PollInterval,
		API:                inventory.NewClient(cfg.API),
		Queue:              queue,
	})
	if err != nil {
		slog.Error("Failed to build engine", "error", err)
		os.Exit(1)
	}

	if err := engine.Start(ctx); err != nil {
		slog.Error("Failed to start engine", "error", err)
		os.Exit(1)
	}

	reg := engine.Snapshot()
	for _, name := range engine.DisplayRooms() {
		slog.Info("Room loaded", "room", name, "items", reg[name].ItemCount)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	slog.Info("Received signal, shutting down...", "signal", sig)

	if err := engine.Stop(ctx); err != nil {
		slog.Error("Error during shutdown", "error", err)
		os.Exit(1)
	}
}
