package engine

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/opencivicdata/ocd-sync/internal/config"
)

// batchSize is the number of rows per staging insert transaction.
const batchSize = 10000

// RebuildRaw drops and recreates the raw staging table as a schema clone of
// the canonical table. DDL on transient tables is idempotent; a crashed run
// leaves orphans that the next run replaces.
func RebuildRaw(db *gorm.DB, spec TableSpec) error {
	for _, stmt := range spec.StageDDL() {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("stage %s: %w", spec.Table, err)
		}
	}
	return nil
}

// stagingTarget is where parsed rows land: the interim table for dedupe
// types, the raw table otherwise.
func stagingTarget(spec TableSpec) string {
	if spec.DedupeStaging {
		return spec.InterimTable()
	}
	return spec.RawTable()
}

// InsertRaw bulk-inserts parsed rows into the staging table in batches, one
// transaction per batch.
func InsertRaw[T any](db *gorm.DB, spec TableSpec, rows []T) (int64, error) {
	target := stagingTarget(spec)
	start := time.Now()

	var total int64
	for lo := 0; lo < len(rows); lo += batchSize {
		hi := lo + batchSize
		if hi > len(rows) {
			hi = len(rows)
		}
		chunk := rows[lo:hi]
		err := db.Transaction(func(tx *gorm.DB) error {
			return tx.Table(target).Create(&chunk).Error
		})
		if err != nil {
			return total, fmt.Errorf("insert into %s: %w", target, err)
		}
		total += int64(len(chunk))
	}

	if spec.DedupeStaging {
		err := db.Transaction(func(tx *gorm.DB) error {
			for _, stmt := range spec.DedupeSQL() {
				if err := tx.Exec(stmt).Error; err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return total, fmt.Errorf("dedupe %s: %w", spec.Table, err)
		}
	}

	config.LogUpsert("stage "+spec.Table, total, time.Since(start))
	return total, nil
}

// canonicalOrder lists every canonical table parents-first; reversal gives a
// safe truncate order.
var canonicalOrder = []string{
	"legislative_session",
	"organization",
	"post",
	"person",
	"membership",
	"bill",
	"action",
	"action_related_entity",
	"sponsorship",
	"bill_document",
	"event",
	"event_participant",
	"event_document",
	"event_agenda_item",
}

// TruncateAll empties every canonical table for an operator-invoked full
// rebuild from the cache.
func TruncateAll(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		for i := len(canonicalOrder) - 1; i >= 0; i-- {
			stmt := fmt.Sprintf("TRUNCATE %s CASCADE", canonicalOrder[i])
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("truncate %s: %w", canonicalOrder[i], err)
			}
		}
		return nil
	})
}
