package engine

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Migrate creates the canonical schema: every table of the data model plus
// the natural-key uniqueness that AutoMigrate cannot express (coalesced
// expression indexes over nullable key columns).
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&LegislativeSession{},
		&Organization{},
		&Post{},
		&Person{},
		&Membership{},
		&Bill{},
		&Action{},
		&ActionRelatedEntity{},
		&Sponsorship{},
		&BillDocument{},
		&Event{},
		&EventParticipant{},
		&EventDocument{},
		&EventAgendaItem{},
	)
	if err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}

	for table, spec := range Specs {
		// ocd_id-keyed tables already carry a uniqueIndex tag.
		if len(spec.NaturalKeys) == 1 && spec.NaturalKeys[0].Name == "ocd_id" {
			continue
		}
		if len(spec.NaturalKeys) == 1 && spec.NaturalKeys[0].Name == "identifier" {
			continue
		}
		exprs := make([]string, len(spec.NaturalKeys))
		for i, k := range spec.NaturalKeys {
			if k.Nullable {
				exprs[i] = "(" + k.indexExpr() + ")"
			} else {
				exprs[i] = quoteIdent(k.Name)
			}
		}
		stmt := fmt.Sprintf(
			"CREATE UNIQUE INDEX IF NOT EXISTS %s_natural_key ON %s (%s)",
			table, table, strings.Join(exprs, ", "))
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("natural key index on %s: %w", table, err)
		}
	}

	return nil
}
