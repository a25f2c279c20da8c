package engine

// ColumnKind selects the coalescing sentinel used when two sides of a diff
// are compared. Coalescing both sides to the same sentinel before the text
// cast makes NULL-vs-value comparisons total and reruns idempotent.
type ColumnKind int

const (
	KindText ColumnKind = iota
	KindTextArray
	KindInt
	KindBool
	KindDate
	KindTimestamp
	// KindEndDate coalesces to now(): an open-ended range compares equal to
	// another open-ended range within a single statement.
	KindEndDate
)

// Column describes one canonical column for SQL generation.
type Column struct {
	Name     string
	Kind     ColumnKind
	Nullable bool
}

// TableSpec drives DDL and reconciliation SQL for one entity type. Natural
// keys identify a row across runs; data columns are diffed and copied;
// enrichment columns are owned by downstream workers and never touched by
// the reconciler.
type TableSpec struct {
	Table             string
	NaturalKeys       []Column
	DataColumns       []Column
	EnrichmentColumns []string

	// DedupeStaging stages through an interim table and collapses duplicate
	// natural keys with DISTINCT ON before the raw table is filled.
	DedupeStaging bool
}

func col(name string, kind ColumnKind) Column {
	return Column{Name: name, Kind: kind}
}

func nullcol(name string, kind ColumnKind) Column {
	return Column{Name: name, Kind: kind, Nullable: true}
}

// Specs is the schema registry, keyed by canonical table name. Natural-key
// composition follows the dataset's stable identifiers: ocd_id where one
// exists, the defining tuple for link tables.
var Specs = map[string]TableSpec{
	"legislative_session": {
		Table:       "legislative_session",
		NaturalKeys: []Column{col("identifier", KindText)},
		DataColumns: []Column{
			col("jurisdiction_id", KindText),
			col("name", KindText),
		},
	},
	"organization": {
		Table:       "organization",
		NaturalKeys: []Column{col("ocd_id", KindText)},
		DataColumns: []Column{
			col("name", KindText),
			col("classification", KindText),
			nullcol("parent_id", KindText),
			col("slug", KindText),
			col("source_url", KindText),
		},
	},
	"post": {
		Table:       "post",
		NaturalKeys: []Column{col("ocd_id", KindText)},
		DataColumns: []Column{
			col("label", KindText),
			col("role", KindText),
			col("organization_id", KindText),
			nullcol("division_id", KindText),
		},
		// shape is attached by the boundary loader.
		EnrichmentColumns: []string{"shape"},
	},
	"person": {
		Table:       "person",
		NaturalKeys: []Column{col("ocd_id", KindText)},
		DataColumns: []Column{
			col("name", KindText),
			col("slug", KindText),
			col("headshot", KindText),
			col("email", KindText),
			col("website", KindText),
			col("phone", KindText),
			col("source_url", KindText),
			col("source_note", KindText),
		},
	},
	"membership": {
		Table: "membership",
		NaturalKeys: []Column{
			col("organization_id", KindText),
			col("person_id", KindText),
			nullcol("post_id", KindText),
			nullcol("start_date", KindDate),
			nullcol("end_date", KindEndDate),
		},
		DataColumns: []Column{
			col("label", KindText),
			col("role", KindText),
		},
	},
	"bill": {
		Table:       "bill",
		NaturalKeys: []Column{col("ocd_id", KindText)},
		DataColumns: []Column{
			col("ocd_created_at", KindTimestamp),
			col("ocd_updated_at", KindTimestamp),
			col("identifier", KindText),
			col("slug", KindText),
			col("description", KindText),
			col("bill_type", KindText),
			col("classification", KindTextArray),
			col("subject", KindTextArray),
			col("abstract", KindText),
			nullcol("full_text", KindText),
			nullcol("last_action_date", KindDate),
			col("legislative_session_id", KindText),
			nullcol("from_organization_id", KindText),
			col("source_url", KindText),
			col("source_note", KindText),
		},
		// html_text and ocr_full_text come from the text-extraction worker.
		EnrichmentColumns: []string{"html_text", "ocr_full_text"},
	},
	"action": {
		Table: "action",
		NaturalKeys: []Column{
			col("bill_id", KindText),
			col("order", KindInt),
		},
		DataColumns: []Column{
			col("description", KindText),
			col("classification", KindTextArray),
			col("date", KindTimestamp),
			nullcol("organization_id", KindText),
		},
	},
	"action_related_entity": {
		Table: "action_related_entity",
		NaturalKeys: []Column{
			col("bill_id", KindText),
			col("action_order", KindInt),
			nullcol("organization_id", KindText),
			nullcol("person_id", KindText),
		},
		DataColumns: []Column{
			col("entity_type", KindText),
			col("entity_name", KindText),
		},
	},
	"sponsorship": {
		Table: "sponsorship",
		NaturalKeys: []Column{
			col("bill_id", KindText),
			col("person_id", KindText),
			col("classification", KindText),
			col("is_primary", KindBool),
		},
		DedupeStaging: true,
	},
	"bill_document": {
		Table: "bill_document",
		NaturalKeys: []Column{
			col("bill_id", KindText),
			col("url", KindText),
			col("document_type", KindText),
		},
		DataColumns: []Column{
			col("note", KindText),
		},
		EnrichmentColumns: []string{"full_text"},
	},
	"event": {
		Table:       "event",
		NaturalKeys: []Column{col("ocd_id", KindText)},
		DataColumns: []Column{
			col("ocd_created_at", KindTimestamp),
			col("ocd_updated_at", KindTimestamp),
			col("name", KindText),
			col("slug", KindText),
			col("description", KindText),
			col("classification", KindText),
			col("start_time", KindTimestamp),
			nullcol("end_time", KindTimestamp),
			col("all_day", KindBool),
			col("status", KindText),
			col("location", KindText),
			col("source_url", KindText),
			col("source_note", KindText),
		},
	},
	"event_participant": {
		Table: "event_participant",
		NaturalKeys: []Column{
			col("event_id", KindText),
			col("entity_name", KindText),
			col("entity_type", KindText),
		},
		DataColumns: []Column{
			col("note", KindText),
		},
	},
	"event_document": {
		Table: "event_document",
		NaturalKeys: []Column{
			col("event_id", KindText),
			col("url", KindText),
		},
		DataColumns: []Column{
			col("note", KindText),
		},
		EnrichmentColumns: []string{"full_text"},
	},
	"event_agenda_item": {
		Table: "event_agenda_item",
		NaturalKeys: []Column{
			col("event_id", KindText),
			col("order", KindInt),
		},
		DataColumns: []Column{
			col("description", KindText),
			nullcol("bill_id", KindText),
			col("note", KindText),
		},
	},
}

// SpecFor returns the TableSpec for a canonical table.
func SpecFor(table string) TableSpec {
	spec, ok := Specs[table]
	if !ok {
		panic("no table spec for " + table)
	}
	return spec
}
