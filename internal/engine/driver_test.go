package engine

import "testing"

// endpointTables records which canonical tables each import path writes,
// parents first; the coverage check below keeps it honest against
// canonicalOrder.
var endpointTables = map[string][]string{
	"organizations": {"organization", "post"},
	"people":        {"person", "membership"},
	"bills":         {"bill", "action", "action_related_entity", "sponsorship", "bill_document"},
	"events":        {"event", "event_participant", "event_document", "event_agenda_item"},
}

func TestSelectedEndpoints(t *testing.T) {
	e := &Engine{}

	got := e.selectedEndpoints(RunOptions{})
	if len(got) != len(endpointOrder) {
		t.Fatalf("default selection = %v, want all endpoints", got)
	}

	// The subset keeps dependency order regardless of flag order.
	got = e.selectedEndpoints(RunOptions{Endpoints: []string{"bills", "organizations"}})
	if len(got) != 2 || got[0] != "organizations" || got[1] != "bills" {
		t.Errorf("selection = %v, want [organizations bills]", got)
	}

	// Unknown names are silently ignored; runEndpoint never sees them.
	got = e.selectedEndpoints(RunOptions{Endpoints: []string{"nonsense"}})
	if len(got) != 0 {
		t.Errorf("selection = %v, want empty", got)
	}
}

func TestEndpointTablesCoverCanonicalOrder(t *testing.T) {
	covered := map[string]bool{"legislative_session": true}
	for _, ep := range endpointOrder {
		tables, ok := endpointTables[ep]
		if !ok {
			t.Fatalf("no tables for endpoint %s", ep)
		}
		for _, table := range tables {
			covered[table] = true
		}
	}
	for _, table := range canonicalOrder {
		if !covered[table] {
			t.Errorf("table %s belongs to no endpoint", table)
		}
	}
}
