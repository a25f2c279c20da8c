package cmd

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/opencivicdata/ocd-sync/internal/config"
	"github.com/opencivicdata/ocd-sync/internal/db"
	"github.com/opencivicdata/ocd-sync/internal/textextract"
)

var extractUpdateAll bool

var extractCmd = &cobra.Command{
	Use:   "extract-text",
	Short: "Extract plain text from binary bill attachments",
	Long: `Extract-text scans bill attachments whose URL names a pdf, doc, or docx
file and whose text has not been extracted, downloads each, runs the
per-format extractor, and writes the text back in small batches.`,
	Run: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)
	extractCmd.Flags().SetNormalizeFunc(normalizeFlags)

	extractCmd.Flags().BoolVar(&extractUpdateAll, "update-all", false,
		"re-extract attachments that already have text")
}

func runExtract(cmd *cobra.Command, args []string) {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	gdb, err := db.Connect(cfg)
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := signalContext()
	defer cancel()

	opts := textextract.AttachmentOptions{UpdateAll: extractUpdateAll}
	if err := textextract.ExtractAttachments(ctx, gdb, opts); err != nil {
		log.Fatal(err)
	}
}
