package cli

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"relocator/internal/infra/inventory"
)

var moveSite string

var moveCmd = &cobra.Command{
	Use:   "move <sku> <destination-room>",
	Short: "Move a single item to a room (one-shot, no optimistic state)",
	Args:  cobra.ExactArgs(2),
	Run:   runMove,
}

func init() {
	moveCmd.Flags().StringVar(&moveSite, "site", "", "site to operate on (defaults to the first listed)")
	rootCmd.AddCommand(moveCmd)
}

func runMove(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	sku, dest := args[0], args[1]

	ctx := context.Background()
	client := inventory.NewClient(cfg.API)

	site := moveSite
	if site == "" {
		sites, err := client.ListSites(ctx)
		if err != nil {
			slog.Error("Failed to list sites", "error", err)
			os.Exit(1)
		}
		if len(sites) == 0 {
			slog.Error("Backend has no sites")
			os.Exit(1)
		}
		site = sites[0].ID
	}

	if err := client.MoveItem(ctx, site, sku, dest); err != nil {
		slog.Error("Move failed", "site", site, "sku", sku, "dest", dest, "error", err)
		os.Exit(1)
	}
	slog.Info("Item moved", "site", site, "sku", sku, "dest", dest)
}
