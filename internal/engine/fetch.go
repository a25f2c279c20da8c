package engine

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gorm.io/gorm"

	"github.com/opencivicdata/ocd-sync/internal/cache"
	"github.com/opencivicdata/ocd-sync/internal/config"
	"github.com/opencivicdata/ocd-sync/internal/ocd"
)

// Fetcher pages through the remote index for a type and caches every detail
// body on disk. Partial failure of one detail fetch never aborts the batch:
// the id is logged and skipped, so the next run retries it.
type Fetcher struct {
	Client *ocd.Client
	Cache  *cache.Store
	DB     *gorm.DB
	Cfg    config.Config
}

// watermarkTables maps an endpoint to the canonical table whose
// max(ocd_updated_at) bounds the incremental fetch. Organizations, posts and
// people are small enough to list in full every run.
var watermarkTables = map[string]string{
	"bills":  "bill",
	"events": "event",
}

// FetchEndpoint downloads every entity of a remote endpoint changed since the
// watermark. updateSince overrides the derived watermark when non-nil.
func (f *Fetcher) FetchEndpoint(ctx context.Context, endpoint string, updateSince *time.Time) (int, error) {
	params := url.Values{}
	params.Set("jurisdiction_id", f.Cfg.JurisdictionID)
	params.Set("sort", "updated_at")

	since := updateSince
	if since == nil {
		if table, ok := watermarkTables[endpoint]; ok {
			wm, err := f.watermark(table)
			if err != nil {
				return 0, err
			}
			since = wm
		}
	}
	if since != nil {
		params.Set("updated_at__gte", since.UTC().Format("2006-01-02T15:04:05"))
	}

	fetched := 0
	page := 1
	maxPage := 1

	for page <= maxPage {
		lp, err := f.Client.ListPage(ctx, endpoint, params, page)
		if err != nil {
			// A listing failure loses the whole slice; fail the type.
			return fetched, fmt.Errorf("list %s page %d: %w", endpoint, page, err)
		}
		maxPage = lp.Meta.MaxPage

		for _, result := range lp.Results {
			if err := ctx.Err(); err != nil {
				return fetched, err
			}
			if err := f.fetchOne(ctx, endpoint, result.ID); err != nil {
				config.LogError("fetch", result.ID, err)
				continue
			}
			fetched++
		}

		page++
	}

	log.Printf("[fetch] %s: cached %d records", endpoint, fetched)
	return fetched, nil
}

// fetchOne downloads one detail body into the cache, plus the headshot for
// people with an image.
func (f *Fetcher) fetchOne(ctx context.Context, endpoint, ocdID string) error {
	body, err := f.Client.Detail(ctx, ocdID)
	if err != nil {
		return err
	}
	if err := f.Cache.Put(endpoint, ocdID, body); err != nil {
		return err
	}

	if endpoint == "people" {
		if err := f.saveHeadshot(ctx, ocdID, body); err != nil {
			// A missing image is not worth re-fetching the person for.
			config.LogError("fetch", "headshot "+ocdID, err)
		}
	}
	return nil
}

func (f *Fetcher) saveHeadshot(ctx context.Context, ocdID string, body []byte) error {
	var probe struct {
		Image string `json:"image"`
	}
	if err := json.Unmarshal(body, &probe); err != nil || probe.Image == "" {
		return nil
	}
	if err := os.MkdirAll(f.Cfg.HeadshotDir, 0o755); err != nil {
		return err
	}
	dest := filepath.Join(f.Cfg.HeadshotDir, HeadshotName(ocdID))
	return f.Client.SaveImage(ctx, probe.Image, dest)
}

// watermark reads max(ocd_updated_at) from a canonical table; nil when the
// table is empty and the first run should fetch everything.
func (f *Fetcher) watermark(table string) (*time.Time, error) {
	var wm sql.NullTime
	err := f.DB.Raw("SELECT max(ocd_updated_at) FROM " + table).Scan(&wm).Error
	if err != nil {
		return nil, fmt.Errorf("read %s watermark: %w", table, err)
	}
	if !wm.Valid {
		return nil, nil
	}
	return &wm.Time, nil
}
