package engine

import (
	"strings"
	"testing"
)

func TestStageDDL_SimpleKey(t *testing.T) {
	stmts := SpecFor("bill").StageDDL()
	want := []string{
		"DROP TABLE IF EXISTS raw_bill",
		"CREATE TABLE raw_bill AS SELECT * FROM bill WITH NO DATA",
		`ALTER TABLE raw_bill ADD PRIMARY KEY ("ocd_id")`,
		"ALTER TABLE raw_bill ALTER COLUMN updated_at SET DEFAULT now()",
	}
	if len(stmts) != len(want) {
		t.Fatalf("got %d statements, want %d: %v", len(stmts), len(want), stmts)
	}
	for i := range want {
		if stmts[i] != want[i] {
			t.Errorf("statement %d = %q, want %q", i, stmts[i], want[i])
		}
	}
}

func TestStageDDL_NullableKeyUsesUniqueIndex(t *testing.T) {
	stmts := SpecFor("membership").StageDDL()

	var index string
	for _, s := range stmts {
		if strings.HasPrefix(s, "CREATE UNIQUE INDEX") {
			index = s
		}
		if strings.Contains(s, "PRIMARY KEY") {
			t.Errorf("nullable key must not become a primary key: %q", s)
		}
	}
	if index == "" {
		t.Fatalf("no unique index emitted: %v", stmts)
	}
	for _, frag := range []string{
		`"organization_id"`,
		`COALESCE("post_id", '')`,
		`COALESCE("start_date", DATE '1900-01-01')`,
		`COALESCE("end_date", DATE '9999-12-31')`,
	} {
		if !strings.Contains(index, frag) {
			t.Errorf("index %q missing %q", index, frag)
		}
	}
	// now() cannot appear in an index expression.
	if strings.Contains(index, "now()") {
		t.Errorf("index must not use now(): %q", index)
	}
}

func TestStageDDL_DedupeInterim(t *testing.T) {
	stmts := SpecFor("sponsorship").StageDDL()
	joined := strings.Join(stmts, "\n")
	if !strings.Contains(joined, "raw_sponsorship_interim AS SELECT * FROM sponsorship WITH NO DATA") {
		t.Errorf("missing interim clone:\n%s", joined)
	}

	dedupe := SpecFor("sponsorship").DedupeSQL()
	if !strings.Contains(dedupe[0], "DISTINCT ON") {
		t.Errorf("dedupe insert = %q", dedupe[0])
	}
	if dedupe[1] != "DROP TABLE raw_sponsorship_interim" {
		t.Errorf("dedupe drop = %q", dedupe[1])
	}
}

// Each differs term is a symmetric inequality over identically coalesced
// sides, so swapping raw and canonical cannot change the truth value.
func TestDiffersPredicateSymmetry(t *testing.T) {
	for name, spec := range Specs {
		forward := spec.differsPredicate("r", "c")
		backward := spec.differsPredicate("c", "r")

		fTerms := strings.Split(forward, "\n    OR ")
		bTerms := strings.Split(backward, "\n    OR ")
		if len(fTerms) != len(bTerms) {
			t.Fatalf("%s: term count mismatch", name)
		}
		for i := range fTerms {
			fl, fr, ok := strings.Cut(fTerms[i], " <> ")
			if fTerms[i] != "" && !ok {
				t.Fatalf("%s: term %q is not an inequality", name, fTerms[i])
			}
			bl, br, _ := strings.Cut(bTerms[i], " <> ")
			if fl != br || fr != bl {
				t.Errorf("%s: term %d not mirrored: %q vs %q", name, i, fTerms[i], bTerms[i])
			}
		}
	}
}

func TestDiffersPredicateCoalescesBothSides(t *testing.T) {
	pred := SpecFor("bill").differsPredicate("r", "c")
	for _, frag := range []string{
		"COALESCE(r.\"description\"::text, '') <> COALESCE(c.\"description\"::text, '')",
		"COALESCE(r.\"last_action_date\", DATE '1900-01-01')::text <> COALESCE(c.\"last_action_date\", DATE '1900-01-01')::text",
		"COALESCE(r.\"ocd_updated_at\", TIMESTAMP '1900-01-01')::text <> COALESCE(c.\"ocd_updated_at\", TIMESTAMP '1900-01-01')::text",
	} {
		if !strings.Contains(pred, frag) {
			t.Errorf("predicate missing %q", frag)
		}
	}
	// Enrichment columns never enter the diff.
	if strings.Contains(pred, "html_text") || strings.Contains(pred, "ocr_full_text") {
		t.Errorf("enrichment column leaked into diff:\n%s", pred)
	}
}

func TestKeyJoinCoalescesNullableKeys(t *testing.T) {
	join := SpecFor("membership").keyJoin("r", "c")
	if !strings.Contains(join, `r."organization_id" = c."organization_id"`) {
		t.Errorf("non-nullable key should join directly: %q", join)
	}
	for _, frag := range []string{
		"COALESCE(r.\"post_id\"::text, '') = COALESCE(c.\"post_id\"::text, '')",
		"COALESCE(r.\"start_date\", DATE '1900-01-01')::text = COALESCE(c.\"start_date\", DATE '1900-01-01')::text",
		"COALESCE(r.\"end_date\", now())::text = COALESCE(c.\"end_date\", now())::text",
	} {
		if !strings.Contains(join, frag) {
			t.Errorf("join missing %q", frag)
		}
	}
}

func TestChangeSQL_AllKeyTypeIsAlwaysEmpty(t *testing.T) {
	stmts := SpecFor("sponsorship").ChangeSQL()
	if len(stmts) != 2 {
		t.Fatalf("got %d statements", len(stmts))
	}
	if !strings.Contains(stmts[1], "WHERE false") {
		t.Errorf("change table for an all-key type must be empty: %q", stmts[1])
	}
	if SpecFor("sponsorship").UpdateSQL() != "" {
		t.Error("UpdateSQL should be empty for an all-key type")
	}
}

func TestNewSQLUsesAntiJoin(t *testing.T) {
	stmts := SpecFor("person").NewSQL()
	create := stmts[1]
	if !strings.Contains(create, "LEFT JOIN person c") {
		t.Errorf("missing left join: %q", create)
	}
	if !strings.Contains(create, "WHERE c.id IS NULL") {
		t.Errorf("missing null check: %q", create)
	}
}

func TestInsertSQLExcludesSyntheticAndEnrichment(t *testing.T) {
	sql := SpecFor("bill").InsertSQL()

	head, _, _ := strings.Cut(sql, ")\n")
	if strings.Contains(head, `"id"`) {
		t.Errorf("insert must leave id to its sequence: %q", head)
	}
	for _, enriched := range []string{"html_text", "ocr_full_text"} {
		if strings.Contains(sql, enriched) {
			t.Errorf("insert must skip enrichment column %q:\n%s", enriched, sql)
		}
	}
	if !strings.Contains(sql, `"updated_at"`) {
		t.Errorf("insert should carry the staging timestamp:\n%s", sql)
	}
}

func TestQuotedReservedWordColumns(t *testing.T) {
	stmts := SpecFor("action").ChangeSQL()
	if !strings.Contains(stmts[1], `"order"`) {
		t.Errorf("order column must be quoted:\n%s", stmts[1])
	}
}

func TestUpdateSQLSetsTrackedColumnsOnly(t *testing.T) {
	sql := SpecFor("post").UpdateSQL()
	if !strings.Contains(sql, `"label" = r."label"`) {
		t.Errorf("missing label set:\n%s", sql)
	}
	if !strings.Contains(sql, "updated_at = r.updated_at") {
		t.Errorf("missing updated_at carry:\n%s", sql)
	}
	if strings.Contains(sql, "shape") {
		t.Errorf("boundary shape must survive updates:\n%s", sql)
	}
}

func TestSpecRegistryCoversCanonicalOrder(t *testing.T) {
	for _, table := range canonicalOrder {
		if _, ok := Specs[table]; !ok {
			t.Errorf("no spec for %s", table)
		}
	}
}
