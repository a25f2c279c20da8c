package cmd

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/opencivicdata/ocd-sync/internal/boundaries"
	"github.com/opencivicdata/ocd-sync/internal/config"
	"github.com/opencivicdata/ocd-sync/internal/db"
)

var boundariesCmd = &cobra.Command{
	Use:   "load-boundaries",
	Short: "Attach geographic shapes to district posts",
	Long: `Load-boundaries enumerates the configured boundary sets, fetches each
member's shape, and attaches it to the posts whose division matches. A
no-op when no boundary sets are configured.`,
	Run: runBoundaries,
}

func init() {
	rootCmd.AddCommand(boundariesCmd)
}

func runBoundaries(cmd *cobra.Command, args []string) {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if cfg.BoundaryAPIBase == "" {
		log.Fatal("BOUNDARY_API_BASE is required for load-boundaries")
	}

	gdb, err := db.Connect(cfg)
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := signalContext()
	defer cancel()

	loader := &boundaries.Loader{
		Client: boundaries.NewClient(cfg.BoundaryAPIBase),
		DB:     gdb,
		Sets:   cfg.BoundarySets,
	}
	if err := loader.Run(ctx); err != nil {
		log.Fatal(err)
	}
}
