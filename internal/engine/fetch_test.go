package engine

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/opencivicdata/ocd-sync/internal/cache"
	"github.com/opencivicdata/ocd-sync/internal/config"
	"github.com/opencivicdata/ocd-sync/internal/ocd"
)

const (
	goodOrgID = "ocd-organization/11111111-1111-4111-8111-111111111111"
	badOrgID  = "ocd-organization/22222222-2222-4222-8222-222222222222"
)

func orgTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/organizations/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{
			"meta": {"page": 1, "max_page": 1, "count": 2},
			"results": [
				{"id": %q, "updated_at": "2026-01-01T00:00:00"},
				{"id": %q, "updated_at": "2026-01-02T00:00:00"}
			]
		}`, goodOrgID, badOrgID)
	})
	mux.HandleFunc("/"+goodOrgID+"/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"id": %q, "name": "City Council", "classification": "legislature"}`, goodOrgID)
	})
	mux.HandleFunc("/"+badOrgID+"/", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	return httptest.NewServer(mux)
}

func TestFetchEndpointSkipsFailedDetails(t *testing.T) {
	server := orgTestServer(t)
	defer server.Close()

	store := cache.New(t.TempDir())
	f := &Fetcher{
		Client: ocd.NewClient(server.URL, ""),
		Cache:  store,
		Cfg:    config.Config{JurisdictionID: "ocd-jurisdiction/test"},
	}

	// One detail fetch fails; the other is cached and the run completes.
	fetched, err := f.FetchEndpoint(context.Background(), "organizations", nil)
	if err != nil {
		t.Fatalf("FetchEndpoint failed: %v", err)
	}
	if fetched != 1 {
		t.Errorf("fetched = %d, want 1", fetched)
	}

	body, err := store.Get("organizations", goodOrgID)
	if err != nil {
		t.Fatalf("cached body missing: %v", err)
	}
	if len(body) == 0 {
		t.Error("cached body is empty")
	}
	if _, err := store.Get("organizations", badOrgID); err == nil {
		t.Error("failed detail must not be cached")
	}
}

func TestFetchEndpointSendsUpdateSince(t *testing.T) {
	var gotSince string
	mux := http.NewServeMux()
	mux.HandleFunc("/bills/", func(w http.ResponseWriter, r *http.Request) {
		gotSince = r.URL.Query().Get("updated_at__gte")
		fmt.Fprint(w, `{"meta": {"page": 1, "max_page": 1}, "results": []}`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	f := &Fetcher{
		Client: ocd.NewClient(server.URL, ""),
		Cache:  cache.New(t.TempDir()),
		Cfg:    config.Config{JurisdictionID: "ocd-jurisdiction/test"},
	}

	since := time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)
	if _, err := f.FetchEndpoint(context.Background(), "bills", &since); err != nil {
		t.Fatalf("FetchEndpoint failed: %v", err)
	}
	if gotSince != "2026-03-01T12:30:00" {
		t.Errorf("updated_at__gte = %q", gotSince)
	}
}

func TestFetchEndpointFailsOnListError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad request", http.StatusBadRequest)
	}))
	defer server.Close()

	f := &Fetcher{
		Client: ocd.NewClient(server.URL, ""),
		Cache:  cache.New(t.TempDir()),
		Cfg:    config.Config{JurisdictionID: "ocd-jurisdiction/test"},
	}
	if _, err := f.FetchEndpoint(context.Background(), "organizations", nil); err == nil {
		t.Fatal("a listing failure must fail the whole type")
	}
}
