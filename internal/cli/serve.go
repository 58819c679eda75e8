package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"

	"relocator/internal/core/domain"
	"relocator/internal/infra/storage"
	"relocator/internal/infra/storage/memory"
	"relocator/internal/infra/storage/postgres"
	"relocator/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the inventory backend API server",
	Run:   runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var siteRepo storage.SiteRepository
	var roomRepo storage.RoomRepository
	var itemRepo storage.ItemRepository
	var health func(context.Context) error

	if cfg.Database.URL != "" {
		db, err := postgres.NewDB(ctx, cfg.Database)
		if err != nil {
			slog.Error("Failed to init db", "error", err)
			os.Exit(1)
		}
		defer func() { _ = db.Close() }()

		// Goose needs the raw *sql.DB that sqlx wraps
		if err := goose.SetDialect("postgres"); err != nil {
			slog.Error("Failed to set goose dialect", "error", err)
			os.Exit(1)
		}
		if err := goose.Up(db.DB.DB, "migrations"); err != nil {
			slog.Error("Failed to migrate db", "error", err)
			os.Exit(1)
		}

		siteRepo = postgres.NewSiteRepo(db)
		roomRepo = postgres.NewRoomRepo(db)
		itemRepo = postgres.NewItemRepo(db)
		health = db.Health
		db.StartMetricsCollector(ctx)

		slog.Info("Using PostgreSQL storage")
	} else {
		store := memory.NewMemoryStorage()
		store.AddSite(domain.Site{ID: "default", Name: "Default Site"})
		siteRepo = memory.NewSiteRepo(store)
		roomRepo = memory.NewRoomRepo(store)
		itemRepo = memory.NewItemRepo(store)

		slog.Info("Using Memory storage")
	}

	srv := server.New(server.Config{
		Port:   cfg.Server.Port,
		Sites:  siteRepo,
		Rooms:  roomRepo,
		Items:  itemRepo,
		Health: health,
	})

	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("Server failed", "error", err)
		}
	}()
	slog.Info("Inventory API listening", "port", cfg.Server.Port)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	slog.Info("Received signal, shutting down...", "signal", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		slog.Error("Error during shutdown", "error", err)
		os.Exit(1)
	}
}
