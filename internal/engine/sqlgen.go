package engine

import (
	"fmt"
	"strings"
)

// SQL generation from table specs. Ten near-identical hand-written statement
// sets collapse into one generator; every type gets the same coalescing and
// join rules, which is what makes reruns idempotent.

func quoteIdent(name string) string {
	return `"` + name + `"`
}

// RawTable is the transient schema-mirroring staging table for a type.
func (s TableSpec) RawTable() string {
	return "raw_" + s.Table
}

// InterimTable holds pre-dedupe staging rows for DedupeStaging types.
func (s TableSpec) InterimTable() string {
	return s.RawTable() + "_interim"
}

// ChangeTable holds natural keys of rows whose tracked columns differ.
func (s TableSpec) ChangeTable() string {
	return "change_" + s.Table
}

// NewTable holds natural keys of rows absent from the canonical table.
func (s TableSpec) NewTable() string {
	return "new_" + s.Table
}

// coalesced renders the column with its kind's sentinel applied and the
// result cast to text, qualified by a table alias.
func (c Column) coalesced(alias string) string {
	qual := alias + "." + quoteIdent(c.Name)
	switch c.Kind {
	case KindDate:
		return fmt.Sprintf("COALESCE(%s, DATE '1900-01-01')::text", qual)
	case KindEndDate:
		return fmt.Sprintf("COALESCE(%s, now())::text", qual)
	case KindTimestamp:
		return fmt.Sprintf("COALESCE(%s, TIMESTAMP '1900-01-01')::text", qual)
	default:
		return fmt.Sprintf("COALESCE(%s::text, '')", qual)
	}
}

// keyJoin renders the natural-key equality between two aliases, coalescing
// nullable columns so NULL keys compare by sentinel rather than SQL NULL.
func (s TableSpec) keyJoin(left, right string) string {
	terms := make([]string, len(s.NaturalKeys))
	for i, k := range s.NaturalKeys {
		if k.Nullable {
			terms[i] = fmt.Sprintf("%s = %s", k.coalesced(left), k.coalesced(right))
		} else {
			terms[i] = fmt.Sprintf("%s.%s = %s.%s", left, quoteIdent(k.Name), right, quoteIdent(k.Name))
		}
	}
	return strings.Join(terms, " AND ")
}

// differsPredicate is true when any tracked data column differs between the
// raw and canonical aliases after coalescing.
func (s TableSpec) differsPredicate(raw, canonical string) string {
	terms := make([]string, len(s.DataColumns))
	for i, c := range s.DataColumns {
		terms[i] = fmt.Sprintf("%s <> %s", c.coalesced(raw), c.coalesced(canonical))
	}
	return strings.Join(terms, "\n    OR ")
}

func (s TableSpec) keyList(prefix string) string {
	names := make([]string, len(s.NaturalKeys))
	for i, k := range s.NaturalKeys {
		if prefix != "" {
			names[i] = prefix + "." + quoteIdent(k.Name)
		} else {
			names[i] = quoteIdent(k.Name)
		}
	}
	return strings.Join(names, ", ")
}

// stagedColumns is every column the stager writes: natural keys, data
// columns, and the staging timestamp.
func (s TableSpec) stagedColumns() []Column {
	cols := make([]Column, 0, len(s.NaturalKeys)+len(s.DataColumns)+1)
	cols = append(cols, s.NaturalKeys...)
	cols = append(cols, s.DataColumns...)
	cols = append(cols, col("updated_at", KindTimestamp))
	return cols
}

// StageDDL returns the statements that rebuild the raw staging table: drop,
// schema clone, natural-key uniqueness, updated_at default. A wholly
// non-nullable key becomes the primary key; keys with nullable columns get a
// unique expression index instead, since PK columns must be NOT NULL.
func (s TableSpec) StageDDL() []string {
	raw := s.RawTable()
	stmts := []string{
		fmt.Sprintf("DROP TABLE IF EXISTS %s", raw),
		fmt.Sprintf("CREATE TABLE %s AS SELECT * FROM %s WITH NO DATA", raw, s.Table),
	}

	nullable := false
	for _, k := range s.NaturalKeys {
		if k.Nullable {
			nullable = true
		}
	}
	if nullable {
		exprs := make([]string, len(s.NaturalKeys))
		for i, k := range s.NaturalKeys {
			if k.Nullable {
				exprs[i] = "(" + k.indexExpr() + ")"
			} else {
				exprs[i] = quoteIdent(k.Name)
			}
		}
		stmts = append(stmts, fmt.Sprintf(
			"CREATE UNIQUE INDEX %s_natural_key ON %s (%s)",
			raw, raw, strings.Join(exprs, ", ")))
	} else {
		stmts = append(stmts, fmt.Sprintf(
			"ALTER TABLE %s ADD PRIMARY KEY (%s)", raw, s.keyList("")))
	}

	stmts = append(stmts, fmt.Sprintf(
		"ALTER TABLE %s ALTER COLUMN updated_at SET DEFAULT now()", raw))

	if s.DedupeStaging {
		interim := s.InterimTable()
		stmts = append(stmts,
			fmt.Sprintf("DROP TABLE IF EXISTS %s", interim),
			fmt.Sprintf("CREATE TABLE %s AS SELECT * FROM %s WITH NO DATA", interim, s.Table),
			fmt.Sprintf("ALTER TABLE %s ALTER COLUMN updated_at SET DEFAULT now()", interim),
		)
	}

	return stmts
}

// indexExpr is the column expression used inside unique indexes; now() is
// not immutable, so open end dates index against a far-future sentinel.
func (c Column) indexExpr() string {
	qual := quoteIdent(c.Name)
	switch c.Kind {
	case KindDate:
		return fmt.Sprintf("COALESCE(%s, DATE '1900-01-01')", qual)
	case KindEndDate:
		return fmt.Sprintf("COALESCE(%s, DATE '9999-12-31')", qual)
	default:
		return fmt.Sprintf("COALESCE(%s, '')", qual)
	}
}

// DedupeSQL collapses duplicate natural keys from the interim table into the
// raw table, then drops the interim.
func (s TableSpec) DedupeSQL() []string {
	return []string{
		fmt.Sprintf(
			"INSERT INTO %s SELECT DISTINCT ON (%s) * FROM %s",
			s.RawTable(), s.keyList(""), s.InterimTable()),
		fmt.Sprintf("DROP TABLE %s", s.InterimTable()),
	}
}

// ChangeSQL rebuilds change_<type> with the natural keys of rows present on
// both sides whose tracked columns differ.
func (s TableSpec) ChangeSQL() []string {
	drop := fmt.Sprintf("DROP TABLE IF EXISTS %s", s.ChangeTable())
	if len(s.DataColumns) == 0 {
		// Every column is part of the key; nothing can change in place.
		return []string{drop, fmt.Sprintf(
			"CREATE TABLE %s AS SELECT %s FROM %s r WHERE false",
			s.ChangeTable(), s.keyList("r"), s.RawTable())}
	}
	create := fmt.Sprintf(
		"CREATE TABLE %s AS\nSELECT %s\nFROM %s r\nJOIN %s c ON %s\nWHERE %s",
		s.ChangeTable(), s.keyList("r"), s.RawTable(), s.Table,
		s.keyJoin("r", "c"), s.differsPredicate("r", "c"))
	return []string{drop, create}
}

// NewSQL rebuilds new_<type> with the natural keys of raw rows that have no
// canonical counterpart. Absence is detected by a null canonical id after the left join.
func (s TableSpec) NewSQL() []string {
	drop := fmt.Sprintf("DROP TABLE IF EXISTS %s", s.NewTable())
	create := fmt.Sprintf(
		"CREATE TABLE %s AS\nSELECT %s\nFROM %s r\nLEFT JOIN %s c ON %s\nWHERE c.id IS NULL",
		s.NewTable(), s.keyList("r"), s.RawTable(), s.Table, s.keyJoin("r", "c"))
	return []string{drop, create}
}

// UpdateSQL copies tracked columns from raw to canonical for every changed
// natural key. Returns "" when the type has no data columns.
func (s TableSpec) UpdateSQL() string {
	if len(s.DataColumns) == 0 {
		return ""
	}
	sets := make([]string, 0, len(s.DataColumns)+1)
	for _, c := range s.DataColumns {
		sets = append(sets, fmt.Sprintf("%s = r.%s", quoteIdent(c.Name), quoteIdent(c.Name)))
	}
	sets = append(sets, "updated_at = r.updated_at")

	return fmt.Sprintf(
		"UPDATE %s c\nSET %s\nFROM %s r\nJOIN %s ch ON %s\nWHERE %s",
		s.Table, strings.Join(sets, ",\n    "), s.RawTable(),
		s.ChangeTable(), s.keyJoin("r", "ch"), s.keyJoin("c", "r"))
}

// InsertSQL inserts every raw row keyed in new_<type> into the canonical
// table, leaving the synthetic id to its sequence default.
func (s TableSpec) InsertSQL() string {
	cols := s.stagedColumns()
	names := make([]string, len(cols))
	sel := make([]string, len(cols))
	for i, c := range cols {
		names[i] = quoteIdent(c.Name)
		sel[i] = "r." + quoteIdent(c.Name)
	}
	return fmt.Sprintf(
		"INSERT INTO %s (%s)\nSELECT %s\nFROM %s r\nJOIN %s n ON %s",
		s.Table, strings.Join(names, ", "), strings.Join(sel, ", "),
		s.RawTable(), s.NewTable(), s.keyJoin("r", "n"))
}

// CountSQL counts rows in a transient table.
func CountSQL(table string) string {
	return "SELECT COUNT(*) FROM " + table
}

// IDCollectSQL selects the ocd_id of every raw row keyed in the given
// transient table. Only valid for types whose natural key is ocd_id.
func (s TableSpec) IDCollectSQL(keyTable string) string {
	return fmt.Sprintf(
		"SELECT r.ocd_id FROM %s r JOIN %s k ON %s ORDER BY r.ocd_id",
		s.RawTable(), keyTable, s.keyJoin("r", "k"))
}
