// Package notify hands the run's changed-identifier sets to the downstream
// notification dispatcher.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/opencivicdata/ocd-sync/internal/engine"
)

// Dispatcher posts changed-id sets to a subscriber service.
type Dispatcher struct {
	URL        string
	HTTPClient *http.Client
}

// New creates a Dispatcher for the given endpoint. An empty URL disables
// dispatch.
func New(url string) *Dispatcher {
	return &Dispatcher{
		URL: url,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Send posts the changed sets as JSON. A no-op when unconfigured or when
// nothing changed.
func (d *Dispatcher) Send(ctx context.Context, sets engine.ChangedSets) error {
	if d.URL == "" {
		return nil
	}
	if empty(sets) {
		log.Println("[notify] nothing changed, skipping dispatch")
		return nil
	}

	body, err := json.Marshal(sets)
	if err != nil {
		return fmt.Errorf("marshal changed sets: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", d.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("notify request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("notify status %d", resp.StatusCode)
	}

	log.Println("[notify] dispatched changed sets")
	return nil
}

func empty(s engine.ChangedSets) bool {
	return len(s.UpdatedOrgs) == 0 && len(s.UpdatedPeople) == 0 &&
		len(s.CreatedBills) == 0 && len(s.UpdatedBills) == 0 &&
		len(s.CreatedEvents) == 0 && len(s.UpdatedEvents) == 0
}
