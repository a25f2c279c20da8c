// Package boundaries attaches geographic shapes to district posts. Shapes
// come from a boundary service exposing sets of named boundaries, each with
// a GeoJSON shape.
package boundaries

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/opencivicdata/ocd-sync/internal/config"
)

// Member is one boundary within a set.
type Member struct {
	URL        string `json:"url"`
	Name       string `json:"name"`
	ExternalID string `json:"external_id"`
}

type setPage struct {
	Objects []Member `json:"objects"`
	Meta    struct {
		Next string `json:"next"`
	} `json:"meta"`
}

// Client fetches boundary sets and shapes.
type Client struct {
	base       string
	httpClient *http.Client
}

// NewClient creates a boundary service client.
func NewClient(base string) *Client {
	return &Client{
		base: base,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// SetMembers enumerates every boundary of a set, following pagination.
func (c *Client) SetMembers(ctx context.Context, set string) ([]Member, error) {
	var all []Member
	next := fmt.Sprintf("/boundaries/%s/?limit=200", set)

	for next != "" {
		start := time.Now()
		config.LogRequest("boundaries", "GET", c.base+next, nil)

		body, err := c.get(ctx, c.base+next)
		if err != nil {
			return nil, err
		}

		var page setPage
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fmt.Errorf("decode set %s: %w", set, err)
		}

		all = append(all, page.Objects...)
		config.LogResponse("boundaries", http.StatusOK, time.Since(start), len(page.Objects))
		next = page.Meta.Next
	}

	return all, nil
}

// Shape fetches the GeoJSON shape of one member.
func (c *Client) Shape(ctx context.Context, member Member) (string, error) {
	body, err := c.get(ctx, c.base+member.URL+"shape")
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("boundary request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("boundary status %d for %s", resp.StatusCode, url)
	}

	return io.ReadAll(resp.Body)
}

// Loader walks the configured boundary sets and writes each shape onto the
// posts whose division matches. Runs only when sets are configured.
type Loader struct {
	Client *Client
	DB     *gorm.DB
	Sets   []string
}

// Run attaches shapes for every configured set.
func (l *Loader) Run(ctx context.Context) error {
	if len(l.Sets) == 0 {
		log.Println("[boundaries] no boundary sets configured, skipping")
		return nil
	}

	for _, set := range l.Sets {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := l.loadSet(ctx, set); err != nil {
			return fmt.Errorf("load boundary set %s: %w", set, err)
		}
	}
	return nil
}

func (l *Loader) loadSet(ctx context.Context, set string) error {
	members, err := l.Client.SetMembers(ctx, set)
	if err != nil {
		return err
	}

	attached := 0
	for _, m := range members {
		if err := ctx.Err(); err != nil {
			return err
		}
		shape, err := l.Client.Shape(ctx, m)
		if err != nil {
			config.LogError("boundaries", m.ExternalID, err)
			continue
		}

		n, err := l.attach(m.ExternalID, shape)
		if err != nil {
			return err
		}
		attached += int(n)
	}

	log.Printf("[boundaries] %s: attached %d shapes", set, attached)
	return nil
}

// attach matches the member's external id against post division ids: exact
// when the external id is itself an OCD division id, suffix otherwise.
func (l *Loader) attach(externalID, shape string) (int64, error) {
	var res *gorm.DB
	if isOCDDivision(externalID) {
		res = l.DB.Exec(
			"UPDATE post SET shape = ? WHERE division_id = ?",
			shape, externalID)
	} else {
		res = l.DB.Exec(
			"UPDATE post SET shape = ? WHERE division_id LIKE '%' || ?",
			shape, externalID)
	}
	if res.Error != nil {
		return 0, fmt.Errorf("attach shape for %s: %w", externalID, res.Error)
	}
	return res.RowsAffected, nil
}

func isOCDDivision(id string) bool {
	return len(id) > 13 && id[:13] == "ocd-division/"
}
