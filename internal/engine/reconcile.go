package engine

import (
	"fmt"
	"log"

	"gorm.io/gorm"
)

// ReconcileResult reports what one reconciliation pass did.
type ReconcileResult struct {
	Changed  int64
	Inserted int64
}

// Reconcile applies the two-phase diff for one type: update rows whose
// tracked columns differ, then insert rows with no canonical counterpart.
// Phase A precedes phase B so a row re-emerging after deletion counts as
// new, not changed. Each phase is atomic; a rerun over unchanged inputs
// produces zero updates and zero inserts.
func Reconcile(db *gorm.DB, spec TableSpec) (ReconcileResult, error) {
	var res ReconcileResult

	// Phase A: update existing rows.
	err := db.Transaction(func(tx *gorm.DB) error {
		for _, stmt := range spec.ChangeSQL() {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("build %s: %w", spec.ChangeTable(), err)
			}
		}
		if err := tx.Raw(CountSQL(spec.ChangeTable())).Scan(&res.Changed).Error; err != nil {
			return err
		}
		if upd := spec.UpdateSQL(); upd != "" && res.Changed > 0 {
			if err := tx.Exec(upd).Error; err != nil {
				return fmt.Errorf("update %s: %w", spec.Table, err)
			}
		}
		return nil
	})
	if err != nil {
		return res, err
	}

	// Phase B: insert new rows.
	err = db.Transaction(func(tx *gorm.DB) error {
		for _, stmt := range spec.NewSQL() {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("build %s: %w", spec.NewTable(), err)
			}
		}
		if err := tx.Raw(CountSQL(spec.NewTable())).Scan(&res.Inserted).Error; err != nil {
			return err
		}
		if res.Inserted > 0 {
			if err := tx.Exec(spec.InsertSQL()).Error; err != nil {
				return fmt.Errorf("insert %s: %w", spec.Table, err)
			}
		}
		return nil
	})
	if err != nil {
		return res, err
	}

	log.Printf("[reconcile] %s: found %d changed, found %d new", spec.Table, res.Changed, res.Inserted)
	return res, nil
}

// CollectIDs returns the ocd ids keyed in a transient change/new table, in
// stable order. Only meaningful for types whose natural key is ocd_id.
func CollectIDs(db *gorm.DB, spec TableSpec, keyTable string) ([]string, error) {
	var ids []string
	if err := db.Raw(spec.IDCollectSQL(keyTable)).Scan(&ids).Error; err != nil {
		return nil, fmt.Errorf("collect ids from %s: %w", keyTable, err)
	}
	return ids, nil
}
