package cmd

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var rootCmd = &cobra.Command{
	Use:   "ocdsync",
	Short: "Synchronize an Open Civic Data jurisdiction into PostgreSQL",
	Long: `ocdsync keeps a relational mirror of an Open Civic Data jurisdiction:
organizations, people, bills, and events, with their dependent records.

Each sync is a three-phase pipeline per entity type: fetch JSON into a
local cache, stage it into a raw mirror table, then reconcile changed and
new rows into the canonical tables.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		_ = godotenv.Load(".env.local")
	},
}

// normalizeFlags folds underscore flag spellings onto the hyphenated forms,
// so --update_since and --update-since name the same flag.
func normalizeFlags(f *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}

// Execute runs the CLI. Exit code is non-zero on any uncaught error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// signalContext returns a context cancelled by SIGINT/SIGTERM so a kill
// between statements rolls back cleanly.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}
