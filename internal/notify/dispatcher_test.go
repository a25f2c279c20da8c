package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/opencivicdata/ocd-sync/internal/engine"
)

func TestSendPostsChangedSets(t *testing.T) {
	var got engine.ChangedSets
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
	}))
	defer server.Close()

	sets := engine.ChangedSets{
		UpdatedBills:  []string{"ocd-bill/aaa"},
		CreatedEvents: []string{"ocd-event/bbb"},
	}
	if err := New(server.URL).Send(context.Background(), sets); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if !called {
		t.Fatal("dispatcher did not call the endpoint")
	}
	if len(got.UpdatedBills) != 1 || got.UpdatedBills[0] != "ocd-bill/aaa" {
		t.Errorf("updated_bills = %v", got.UpdatedBills)
	}
	if len(got.CreatedEvents) != 1 || got.CreatedEvents[0] != "ocd-event/bbb" {
		t.Errorf("created_events = %v", got.CreatedEvents)
	}
}

func TestSendSkipsWhenUnconfigured(t *testing.T) {
	if err := New("").Send(context.Background(), engine.ChangedSets{UpdatedBills: []string{"x"}}); err != nil {
		t.Errorf("Send with no URL should be a no-op, got %v", err)
	}
}

func TestSendSkipsWhenNothingChanged(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("empty change sets must not dispatch")
	}))
	defer server.Close()

	if err := New(server.URL).Send(context.Background(), engine.ChangedSets{}); err != nil {
		t.Errorf("Send failed: %v", err)
	}
}

func TestSendRejectsErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "busy", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	err := New(server.URL).Send(context.Background(), engine.ChangedSets{UpdatedOrgs: []string{"x"}})
	if err == nil {
		t.Fatal("expected error on 503")
	}
}
