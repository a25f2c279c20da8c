package cmd

import (
	"log"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/opencivicdata/ocd-sync/internal/config"
	"github.com/opencivicdata/ocd-sync/internal/db"
	"github.com/opencivicdata/ocd-sync/internal/textextract"
)

var (
	convertUpdateAll bool
	convertTimeout   time.Duration
	convertCommand   string
)

var convertCmd = &cobra.Command{
	Use:   "convert-rtf",
	Short: "Convert stored bill RTF full text to HTML",
	Long: `Convert-rtf scans bills whose full_text is present and pipes each through
an external RTF converter, writing the HTML back in small batches. Run it
after a sync; it shares rows with the sync pipeline and must not race it.`,
	Run: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)
	convertCmd.Flags().SetNormalizeFunc(normalizeFlags)

	convertCmd.Flags().BoolVar(&convertUpdateAll, "update-all", false,
		"drop the watermark filter and reconvert everything")
	convertCmd.Flags().DurationVar(&convertTimeout, "timeout", textextract.DefaultRTFTimeout,
		"per-document converter timeout")
	convertCmd.Flags().StringVar(&convertCommand, "converter", "unrtf --html",
		"external converter command; the RTF path is appended")
}

func runConvert(cmd *cobra.Command, args []string) {
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

	opts := textextract.RTFOptions{
		UpdateAll: convertUpdateAll,
		Timeout:   convertTimeout,
		Converter: strings.Fields(convertCommand),
	}
	if err := textextract.ConvertRTF(ctx, gdb, opts); err != nil {
		log.Fatal(err)
	}
}
