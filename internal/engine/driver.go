package engine

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/gorm"

	"github.com/opencivicdata/ocd-sync/internal/cache"
	"github.com/opencivicdata/ocd-sync/internal/config"
	"github.com/opencivicdata/ocd-sync/internal/ocd"
)

// endpointOrder is the remote endpoints in dependency order: each endpoint's
// types are fully reconciled before its dependents begin, which is what lets
// foreign keys resolve without deferred constraints.
var endpointOrder = []string{"organizations", "people", "bills", "events"}

// RunOptions is the operator surface of one sync run.
type RunOptions struct {
	// Endpoints restricts the run to a subset of the remote endpoints;
	// empty means all of them.
	Endpoints []string
	// Delete truncates every canonical table and rebuilds from the cache.
	Delete bool
	// UpdateSince overrides the per-type watermark.
	UpdateSince *time.Time
	// ImportOnly skips fetching; DownloadOnly skips staging and reconciling.
	ImportOnly   bool
	DownloadOnly bool
}

// TypeStats is the per-type outcome summary.
type TypeStats struct {
	Table    string
	Raw      int64
	Changed  int64
	Inserted int64
}

// ChangedSets carries identifier lists for the downstream search and
// notification hooks.
type ChangedSets struct {
	UpdatedOrgs   []string `json:"updated_orgs"`
	UpdatedPeople []string `json:"updated_people"`
	CreatedBills  []string `json:"created_bills"`
	UpdatedBills  []string `json:"updated_bills"`
	CreatedEvents []string `json:"created_events"`
	UpdatedEvents []string `json:"updated_events"`
}

// RunReport is the outcome of a full run.
type RunReport struct {
	Stats   []TypeStats
	Changed ChangedSets
	// Failed lists endpoints whose ETL raised; the run continues past them.
	Failed []string
}

// Engine wires the fetcher, cache, parsers, stager, and reconciler into the
// per-endpoint ETL sequence.
type Engine struct {
	DB       *gorm.DB
	Client   *ocd.Client
	Cache    *cache.Store
	Cfg      config.Config
	Location *time.Location
}

// New builds an Engine from its collaborators.
func New(db *gorm.DB, client *ocd.Client, store *cache.Store, cfg config.Config) (*Engine, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	return &Engine{DB: db, Client: client, Cache: store, Cfg: cfg, Location: loc}, nil
}

// Run executes the sync pipeline. A failing endpoint is logged and recorded;
// the remaining endpoints still run. The report is always returned.
func (e *Engine) Run(ctx context.Context, opts RunOptions) (*RunReport, error) {
	report := &RunReport{}

	if opts.Delete {
		log.Println("[sync] full rebuild: truncating canonical tables")
		if err := TruncateAll(e.DB); err != nil {
			return report, err
		}
	}

	if !opts.DownloadOnly {
		if err := e.syncSessions(ctx, report); err != nil {
			// Sessions gate everything: bills reference them.
			return report, fmt.Errorf("sync legislative sessions: %w", err)
		}
	}

	fetcher := &Fetcher{Client: e.Client, Cache: e.Cache, DB: e.DB, Cfg: e.Cfg}

	for _, endpoint := range e.selectedEndpoints(opts) {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if err := e.runEndpoint(ctx, fetcher, endpoint, opts, report); err != nil {
			config.LogError("sync", endpoint, err)
			report.Failed = append(report.Failed, endpoint)
		}
	}

	e.printSummary(report)
	return report, nil
}

func (e *Engine) selectedEndpoints(opts RunOptions) []string {
	if len(opts.Endpoints) == 0 {
		return endpointOrder
	}
	want := make(map[string]bool, len(opts.Endpoints))
	for _, ep := range opts.Endpoints {
		want[ep] = true
	}
	var out []string
	for _, ep := range endpointOrder {
		if want[ep] {
			out = append(out, ep)
		}
	}
	return out
}

// runEndpoint performs the Fetch → Stage → Reconcile sequence for one
// endpoint's types.
func (e *Engine) runEndpoint(ctx context.Context, fetcher *Fetcher, endpoint string, opts RunOptions, report *RunReport) error {
	if !opts.ImportOnly {
		if _, err := fetcher.FetchEndpoint(ctx, endpoint, opts.UpdateSince); err != nil {
			return err
		}
		// Posts ride along with their organizations.
		if endpoint == "organizations" {
			if _, err := fetcher.FetchEndpoint(ctx, "posts", opts.UpdateSince); err != nil {
				return err
			}
		}
	}
	if opts.DownloadOnly {
		return nil
	}

	switch endpoint {
	case "organizations":
		return e.importOrganizations(report)
	case "people":
		return e.importPeople(report)
	case "bills":
		return e.importBills(report)
	case "events":
		return e.importEvents(report)
	default:
		return fmt.Errorf("unknown endpoint %q", endpoint)
	}
}

// syncSessions stages the legislative-session list, from configuration when
// present, else discovered from the jurisdiction record.
func (e *Engine) syncSessions(ctx context.Context, report *RunReport) error {
	var rows []LegislativeSession

	if len(e.Cfg.Sessions) > 0 {
		for _, ident := range e.Cfg.Sessions {
			rows = append(rows, LegislativeSession{
				Identifier:     ident,
				JurisdictionID: e.Cfg.JurisdictionID,
				Name:           ident,
			})
		}
	} else {
		jur, err := e.Client.Jurisdiction(ctx, e.Cfg.JurisdictionID)
		if err != nil {
			return err
		}
		for _, s := range jur.LegislativeSessions {
			name := s.Name
			if name == "" {
				name = s.Identifier
			}
			rows = append(rows, LegislativeSession{
				Identifier:     s.Identifier,
				JurisdictionID: e.Cfg.JurisdictionID,
				Name:           name,
			})
		}
	}

	_, err := stageAndReconcile(e.DB, "legislative_session", rows, report)
	return err
}

func (e *Engine) importOrganizations(report *RunReport) error {
	var orgs []Organization
	if err := e.eachCached("organizations", func(body []byte) error {
		row, err := ParseOrganization(body)
		if err != nil {
			return err
		}
		orgs = append(orgs, *row)
		return nil
	}); err != nil {
		return err
	}

	res, err := stageAndReconcile(e.DB, "organization", orgs, report)
	if err != nil {
		return err
	}
	if res.Changed > 0 {
		ids, err := CollectIDs(e.DB, SpecFor("organization"), SpecFor("organization").ChangeTable())
		if err != nil {
			return err
		}
		report.Changed.UpdatedOrgs = ids
	}

	var posts []Post
	if err := e.eachCached("posts", func(body []byte) error {
		row, err := ParsePost(body)
		if err != nil {
			return err
		}
		posts = append(posts, *row)
		return nil
	}); err != nil {
		return err
	}
	_, err = stageAndReconcile(e.DB, "post", posts, report)
	return err
}

func (e *Engine) importPeople(report *RunReport) error {
	var people []Person
	var memberships []Membership
	if err := e.eachCached("people", func(body []byte) error {
		rows, err := ParsePerson(body)
		if err != nil {
			return err
		}
		people = append(people, rows.Person)
		memberships = append(memberships, rows.Memberships...)
		return nil
	}); err != nil {
		return err
	}

	res, err := stageAndReconcile(e.DB, "person", people, report)
	if err != nil {
		return err
	}
	if res.Changed > 0 {
		ids, err := CollectIDs(e.DB, SpecFor("person"), SpecFor("person").ChangeTable())
		if err != nil {
			return err
		}
		report.Changed.UpdatedPeople = ids
	}

	_, err = stageAndReconcile(e.DB, "membership", memberships, report)
	return err
}

func (e *Engine) importBills(report *RunReport) error {
	parser := &BillParser{Location: e.Location, Resolver: dbResolver{db: e.DB}}

	var bills []Bill
	var actions []Action
	var related []ActionRelatedEntity
	var sponsorships []Sponsorship
	var documents []BillDocument

	if err := e.eachCached("bills", func(body []byte) error {
		rows, err := parser.Parse(body)
		if err != nil {
			return err
		}
		bills = append(bills, rows.Bill)
		actions = append(actions, rows.Actions...)
		related = append(related, rows.RelatedEntities...)
		sponsorships = append(sponsorships, rows.Sponsorships...)
		documents = append(documents, rows.Documents...)
		return nil
	}); err != nil {
		return err
	}

	DedupeBillSlugs(bills)

	res, err := stageAndReconcile(e.DB, "bill", bills, report)
	if err != nil {
		return err
	}
	spec := SpecFor("bill")
	if res.Inserted > 0 {
		if report.Changed.CreatedBills, err = CollectIDs(e.DB, spec, spec.NewTable()); err != nil {
			return err
		}
	}
	if res.Changed > 0 {
		if report.Changed.UpdatedBills, err = CollectIDs(e.DB, spec, spec.ChangeTable()); err != nil {
			return err
		}
	}

	if _, err := stageAndReconcile(e.DB, "action", actions, report); err != nil {
		return err
	}
	if _, err := stageAndReconcile(e.DB, "action_related_entity", related, report); err != nil {
		return err
	}
	if _, err := stageAndReconcile(e.DB, "sponsorship", sponsorships, report); err != nil {
		return err
	}
	_, err = stageAndReconcile(e.DB, "bill_document", documents, report)
	return err
}

func (e *Engine) importEvents(report *RunReport) error {
	parser := &EventParser{Location: e.Location}

	var events []Event
	var participants []EventParticipant
	var documents []EventDocument
	var agendaItems []EventAgendaItem

	if err := e.eachCached("events", func(body []byte) error {
		rows, err := parser.Parse(body)
		if err != nil {
			return err
		}
		events = append(events, rows.Event)
		participants = append(participants, rows.Participants...)
		documents = append(documents, rows.Documents...)
		agendaItems = append(agendaItems, rows.AgendaItems...)
		return nil
	}); err != nil {
		return err
	}

	res, err := stageAndReconcile(e.DB, "event", events, report)
	if err != nil {
		return err
	}
	spec := SpecFor("event")
	if res.Inserted > 0 {
		if report.Changed.CreatedEvents, err = CollectIDs(e.DB, spec, spec.NewTable()); err != nil {
			return err
		}
	}
	if res.Changed > 0 {
		if report.Changed.UpdatedEvents, err = CollectIDs(e.DB, spec, spec.ChangeTable()); err != nil {
			return err
		}
	}

	if _, err := stageAndReconcile(e.DB, "event_participant", participants, report); err != nil {
		return err
	}
	if _, err := stageAndReconcile(e.DB, "event_document", documents, report); err != nil {
		return err
	}
	_, err = stageAndReconcile(e.DB, "event_agenda_item", agendaItems, report)
	return err
}

// eachCached streams every cached body of a type through fn. A decode
// failure fails the whole type so drift never half-loads.
func (e *Engine) eachCached(entityType string, fn func(body []byte) error) error {
	paths, err := e.Cache.List(entityType)
	if err != nil {
		return err
	}
	for _, path := range paths {
		body, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if err := fn(body); err != nil {
			return err
		}
	}
	return nil
}

// stageAndReconcile runs the Stage and Reconcile phases for one type and
// appends its stats to the report.
func stageAndReconcile[T any](db *gorm.DB, table string, rows []T, report *RunReport) (ReconcileResult, error) {
	spec := SpecFor(table)

	if err := RebuildRaw(db, spec); err != nil {
		return ReconcileResult{}, err
	}
	raw, err := InsertRaw(db, spec, rows)
	if err != nil {
		return ReconcileResult{}, err
	}
	res, err := Reconcile(db, spec)
	if err != nil {
		return res, err
	}

	report.Stats = append(report.Stats, TypeStats{
		Table:    table,
		Raw:      raw,
		Changed:  res.Changed,
		Inserted: res.Inserted,
	})
	return res, nil
}

// dbResolver resolves related-entity names against the just-staged canonical
// tables. Ordering by ocd_id keeps "first match" deterministic across runs.
type dbResolver struct {
	db *gorm.DB
}

func (r dbResolver) ResolvePerson(name string) (string, bool) {
	return r.lookup("person", name)
}

func (r dbResolver) ResolveOrganization(name string) (string, bool) {
	return r.lookup("organization", name)
}

func (r dbResolver) lookup(table, name string) (string, bool) {
	var id string
	err := r.db.Raw(
		"SELECT ocd_id FROM "+table+" WHERE name = ? ORDER BY ocd_id LIMIT 1", name,
	).Scan(&id).Error
	if err != nil || id == "" {
		return "", false
	}
	return id, true
}

func (e *Engine) printSummary(report *RunReport) {
	for _, st := range report.Stats {
		fmt.Printf("%s: inserted %d raw, found %d changed, found %d new\n",
			st.Table, st.Raw, st.Changed, st.Inserted)
	}
	for _, ep := range report.Failed {
		fmt.Printf("%s: FAILED (see log)\n", ep)
	}
}
