package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"relocator/internal/infra/inventory"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show rooms and item counts for every site",
	Run:   runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) {
	cfg := loadConfig()

	ctx := context.Background()
	client := inventory.NewClient(cfg.API)

	sites, err := client.ListSites(ctx)
	if err != nil {
		slog.Error("Failed to list sites", "error", err)
		os.Exit(1)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "SITE\tROOM\tITEMS")

	for _, site := range sites {
		reg, err := client.ListRoomsWithItems(ctx, site.ID)
		if err != nil {
			slog.Warn("Failed to fetch rooms", "site", site.ID, "error", err)
			continue
		}
		for _, name := range reg.RoomNames() {
			_, _ = fmt.Fprintf(w, "%s\t%s\t%d\n", site.ID, name, reg[name].ItemCount)
		}
	}
	_ = w.Flush()
}
