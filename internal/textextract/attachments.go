package textextract

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/opencivicdata/ocd-sync/internal/config"
)

// AttachmentOptions configures the attachment→plain-text job.
type AttachmentOptions struct {
	// UpdateAll re-extracts attachments that already have text.
	UpdateAll bool
	// Timeout per document; DefaultRTFTimeout when zero.
	Timeout time.Duration
	// Extractors maps a lowercase url suffix to the external extractor argv;
	// the downloaded file path is appended and text read from stdout.
	Extractors map[string][]string
	// HTTPClient downloads attachment bodies; http.DefaultClient when nil.
	HTTPClient *http.Client
}

// defaultExtractors are the converters for the supported binary formats.
var defaultExtractors = map[string][]string{
	".pdf":  {"pdftotext", "-layout", "-nopgbrk"},
	".doc":  {"antiword"},
	".docx": {"docx2txt"},
}

type attachmentCandidate struct {
	ID  uint
	URL string
}

// ExtractAttachments selects bill attachments whose URL names a supported
// binary format and whose text has not been extracted, downloads each to a
// temp file, runs the per-format extractor, and writes full_text back in
// batches. Failures log and continue.
func ExtractAttachments(ctx context.Context, db *gorm.DB, opts AttachmentOptions) error {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultRTFTimeout
	}
	if opts.Extractors == nil {
		opts.Extractors = defaultExtractors
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}

	query := `
		SELECT id, url
		FROM bill_document
		WHERE document_type = 'A'
		AND url ~* '\.(doc|docx|pdf)$'`
	if !opts.UpdateAll {
		query += `
		AND full_text IS NULL`
	}
	query += `
		ORDER BY id`

	var candidates []attachmentCandidate
	if err := db.Raw(query).Scan(&candidates).Error; err != nil {
		return fmt.Errorf("select extraction candidates: %w", err)
	}
	log.Printf("[extract-text] %d attachments to extract", len(candidates))

	type extracted struct {
		id   uint
		text string
	}
	var pending []extracted

	flush := func() error {
		if len(pending) == 0 {
			return nil
		}
		err := db.Transaction(func(tx *gorm.DB) error {
			for _, e := range pending {
				err := tx.Exec(
					"UPDATE bill_document SET full_text = ? WHERE id = ?",
					e.text, e.id,
				).Error
				if err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("write text batch: %w", err)
		}
		pending = pending[:0]
		return nil
	}

	for _, cand := range candidates {
		if err := ctx.Err(); err != nil {
			return err
		}

		suffix := attachmentExt(cand.URL)
		argv, ok := opts.Extractors[suffix]
		if !ok {
			continue
		}

		text, err := extractOne(ctx, client, cand.URL, suffix, argv, opts.Timeout)
		if err != nil {
			config.LogError("extract-text", cand.URL, err)
			continue
		}

		pending = append(pending, extracted{id: cand.ID, text: text})
		if len(pending) >= writeBatchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}

	return flush()
}

// attachmentExt is the lowercase file extension of an attachment URL with any
// query string or fragment stripped.
func attachmentExt(url string) string {
	if i := strings.IndexAny(url, "?#"); i >= 0 {
		url = url[:i]
	}
	return strings.ToLower(path.Ext(url))
}

// extractOne downloads the attachment to a temp file and runs the extractor
// over it.
func extractOne(ctx context.Context, client *http.Client, url, suffix string, argv []string, timeout time.Duration) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("download attachment: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("attachment status %d", resp.StatusCode)
	}

	tmp, err := os.CreateTemp("", "attachment-*"+suffix)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write attachment: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}

	return runConverterFile(ctx, argv, tmp.Name(), timeout)
}
