package cmd

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/opencivicdata/ocd-sync/internal/cache"
	"github.com/opencivicdata/ocd-sync/internal/config"
	"github.com/opencivicdata/ocd-sync/internal/db"
	"github.com/opencivicdata/ocd-sync/internal/engine"
	"github.com/opencivicdata/ocd-sync/internal/notify"
	"github.com/opencivicdata/ocd-sync/internal/ocd"
	"github.com/opencivicdata/ocd-sync/internal/search"
)

var (
	syncEndpoints    string
	syncDelete       bool
	syncUpdateSince  string
	syncImportOnly   bool
	syncDownloadOnly bool
	syncNoIndex      bool
	syncNoNotify     bool
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run the fetch, stage, and reconcile pipeline",
	Long: `Sync downloads every changed record from the remote API into the JSON
cache, stages the cache into raw mirror tables, and reconciles changed and
new rows into the canonical tables in dependency order.

Examples:
  # Incremental sync of everything
  ./ocdsync sync

  # Bills only, since a fixed time
  ./ocdsync sync --endpoints bills --update-since 2026-01-01T00:00:00

  # Full rebuild from cache, no fetching
  ./ocdsync sync --delete --import-only`,
	Run: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)
	syncCmd.Flags().SetNormalizeFunc(normalizeFlags)

	syncCmd.Flags().StringVar(&syncEndpoints, "endpoints", "",
		"comma-separated subset of {organizations,people,bills,events}")
	syncCmd.Flags().BoolVar(&syncDelete, "delete", false,
		"truncate canonical tables and rebuild in full")
	syncCmd.Flags().StringVar(&syncUpdateSince, "update-since", "",
		"override the per-type watermark (ISO-8601)")
	syncCmd.Flags().BoolVar(&syncImportOnly, "import-only", false,
		"skip fetching; stage and reconcile the existing cache")
	syncCmd.Flags().BoolVar(&syncDownloadOnly, "download-only", false,
		"fetch into the cache only")
	syncCmd.Flags().BoolVar(&syncNoIndex, "no-index", false,
		"suppress the post-run search-index refresh")
	syncCmd.Flags().BoolVar(&syncNoNotify, "no-notify", false,
		"suppress the post-run notification dispatch")
}

func runSync(cmd *cobra.Command, args []string) {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	opts := engine.RunOptions{
		Delete:       syncDelete,
		ImportOnly:   syncImportOnly,
		DownloadOnly: syncDownloadOnly,
	}
	if syncEndpoints != "" {
		for _, ep := range strings.Split(syncEndpoints, ",") {
			opts.Endpoints = append(opts.Endpoints, strings.TrimSpace(ep))
		}
	}
	if syncUpdateSince != "" {
		t, err := parseSince(syncUpdateSince)
		if err != nil {
			log.Fatalf("invalid --update-since: %v", err)
		}
		opts.UpdateSince = &t
	}

	gdb, err := db.Connect(cfg)
	if err != nil {
		log.Fatal(err)
	}
	if err := engine.Migrate(gdb); err != nil {
		log.Fatal(err)
	}
	if err := search.EnsureIndex(gdb); err != nil {
		log.Fatal(err)
	}

	ctx, cancel := signalContext()
	defer cancel()

	client := ocd.NewClient(cfg.APIBase, cfg.APIKey)
	eng, err := engine.New(gdb, client, cache.New(cfg.DownloadDir), cfg)
	if err != nil {
		log.Fatal(err)
	}

	report, err := eng.Run(ctx, opts)
	if err != nil {
		log.Fatal(err)
	}

	if !opts.DownloadOnly {
		if !syncNoIndex {
			if err := search.Refresh(gdb); err != nil {
				config.LogError("sync", "search refresh", err)
			}
		}
		if !syncNoNotify {
			if err := notify.New(cfg.NotifyURL).Send(ctx, report.Changed); err != nil {
				config.LogError("sync", "notify", err)
			}
		}
	}

	if len(report.Failed) > 0 {
		os.Exit(1)
	}
}

var sinceLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseSince(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range sinceLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
