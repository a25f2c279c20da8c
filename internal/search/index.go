// Package search maintains the bill full-text index consumed by the read
// side. The engine only refreshes it; query ranking lives elsewhere.
package search

import (
	"fmt"
	"log"

	"gorm.io/gorm"
)

// EnsureIndex creates the full-text materialized view and its indexes if
// they do not exist. Idempotent; run at migration time.
func EnsureIndex(db *gorm.DB) error {
	stmts := []string{
		`CREATE MATERIALIZED VIEW IF NOT EXISTS bill_search AS
		 SELECT b.id,
		        b.ocd_id,
		        b.slug,
		        to_tsvector('english',
		            coalesce(b.identifier, '') || ' ' ||
		            coalesce(b.description, '') || ' ' ||
		            coalesce(b.abstract, '') || ' ' ||
		            coalesce(b.ocr_full_text, '')) AS document
		 FROM bill b`,
		`CREATE UNIQUE INDEX IF NOT EXISTS bill_search_id ON bill_search (id)`,
		`CREATE INDEX IF NOT EXISTS bill_search_document ON bill_search USING gin (document)`,
	}
	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("ensure search index: %w", err)
		}
	}
	return nil
}

// Refresh rebuilds the full-text index after a sync run. The concurrent
// refresh keeps readers unblocked; it falls back to a plain refresh on the
// first run, before the view has been populated.
func Refresh(db *gorm.DB) error {
	err := db.Exec("REFRESH MATERIALIZED VIEW CONCURRENTLY bill_search").Error
	if err != nil {
		if err2 := db.Exec("REFRESH MATERIALIZED VIEW bill_search").Error; err2 != nil {
			return fmt.Errorf("refresh search index: %w", err2)
		}
	}
	log.Println("[search] index refreshed")
	return nil
}
