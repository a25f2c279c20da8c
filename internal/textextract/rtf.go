// Package textextract enriches synchronized rows with converted document
// text. Both jobs shell out to external converters, so they run only when
// the main sync is idle; operators schedule them after the sync run.
package textextract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"time"

	"gorm.io/gorm"

	"github.com/opencivicdata/ocd-sync/internal/config"
)

// writeBatchSize is the number of converted rows written per transaction.
const writeBatchSize = 20

// DefaultRTFTimeout bounds each document conversion.
const DefaultRTFTimeout = 15 * time.Second

// RTFOptions configures the RTF→HTML job.
type RTFOptions struct {
	// UpdateAll drops the watermark filter and reconverts everything with
	// full text.
	UpdateAll bool
	// Timeout per document; DefaultRTFTimeout when zero.
	Timeout time.Duration
	// Converter is the argv of the external converter; the RTF file path is
	// appended and HTML is read from stdout.
	Converter []string
}

type rtfCandidate struct {
	OCDID    string
	FullText string
}

// ConvertRTF selects bills whose full_text is present and, by default, whose
// updated_at is at or past the conversion watermark, pipes each through the
// converter, and writes html_text back in batches. A timeout or converter
// failure logs and continues; the row stays eligible for the next run.
func ConvertRTF(ctx context.Context, db *gorm.DB, opts RTFOptions) error {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultRTFTimeout
	}
	if len(opts.Converter) == 0 {
		opts.Converter = []string{"unrtf", "--html"}
	}

	query := `
		SELECT ocd_id, full_text
		FROM bill
		WHERE full_text IS NOT NULL`
	if !opts.UpdateAll {
		// The watermark is the newest row already converted; anything staged
		// since then is eligible, as is anything never converted.
		query += `
		AND (html_text IS NULL
		     OR updated_at >= COALESCE(
		            (SELECT max(updated_at) FROM bill WHERE html_text IS NOT NULL),
		            DATE '1900-01-01'))`
	}
	query += `
		ORDER BY ocd_id`

	var candidates []rtfCandidate
	if err := db.Raw(query).Scan(&candidates).Error; err != nil {
		return fmt.Errorf("select conversion candidates: %w", err)
	}
	log.Printf("[convert-rtf] %d bills to convert", len(candidates))

	type converted struct {
		ocdID string
		html  string
	}
	var pending []converted

	flush := func() error {
		if len(pending) == 0 {
			return nil
		}
		err := db.Transaction(func(tx *gorm.DB) error {
			for _, c := range pending {
				err := tx.Exec(
					"UPDATE bill SET html_text = ? WHERE ocd_id = ?",
					c.html, c.ocdID,
				).Error
				if err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("write html batch: %w", err)
		}
		pending = pending[:0]
		return nil
	}

	for _, cand := range candidates {
		if err := ctx.Err(); err != nil {
			return err
		}
		html, err := runConverter(ctx, opts.Converter, []byte(cand.FullText), ".rtf", opts.Timeout)
		if err != nil {
			config.LogError("convert-rtf", cand.OCDID, err)
			continue
		}
		pending = append(pending, converted{ocdID: cand.OCDID, html: html})
		if len(pending) >= writeBatchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}

	return flush()
}

// runConverter writes content to a temp file with the given suffix, invokes
// argv with the path appended, and returns stdout. The context deadline is
// the per-document timeout.
func runConverter(ctx context.Context, argv []string, content []byte, suffix string, timeout time.Duration) (string, error) {
	tmp, err := os.CreateTemp("", "extract-*"+suffix)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}

	return runConverterFile(ctx, argv, tmp.Name(), timeout)
}

func runConverterFile(ctx context.Context, argv []string, path string, timeout time.Duration) (string, error) {
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := append(append([]string{}, argv[1:]...), path)
	cmd := exec.CommandContext(cctx, argv[0], args...)

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = nil

	if err := cmd.Run(); err != nil {
		if errors.Is(cctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("converter timed out after %s", timeout)
		}
		return "", fmt.Errorf("converter %s: %w", argv[0], err)
	}

	return out.String(), nil
}
