package ocd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/opencivicdata/ocd-sync/internal/config"
)

const (
	defaultTimeout = 60 * time.Second
	maxRetries     = 3
	initialBackoff = 2 * time.Second

	// imageChunkSize is the copy buffer used when streaming headshots to disk.
	imageChunkSize = 64 * 1024
)

// ErrMissingMeta is returned when an index response lacks its pagination
// envelope; the whole type fails rather than silently truncating.
var ErrMissingMeta = errors.New("index response missing meta")

// DataError is a dataset-level problem reported by the remote API via an
// `error` body field. It fails the current entity type.
type DataError struct {
	Endpoint string
	Body     string
}

func (e *DataError) Error() string {
	return fmt.Sprintf("remote data error on %s: %s", e.Endpoint, e.Body)
}

// Client is an HTTP client for the Open Civic Data API.
type Client struct {
	base       string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates an API client for the given base URL. An empty apiKey
// sends unauthenticated requests.
func NewClient(base, apiKey string) *Client {
	return &Client{
		base:   base,
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		// Stay friendly to the shared API: up to 5 req/s with small bursts.
		limiter: rate.NewLimiter(rate.Limit(5), 5),
	}
}

// ListPage fetches one page of the index endpoint for a type, e.g.
// GET /bills/?jurisdiction_id=...&sort=updated_at&page=2.
func (c *Client) ListPage(ctx context.Context, endpoint string, params url.Values, page int) (*ListPage, error) {
	q := url.Values{}
	for k, vs := range params {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	q.Set("page", strconv.Itoa(page))

	fullURL := fmt.Sprintf("%s/%s/?%s", c.base, endpoint, q.Encode())

	start := time.Now()
	config.LogRequest("ocd", "GET", c.base+"/"+endpoint+"/", map[string]interface{}{
		"page": page,
	})

	body, status, err := c.getWithRetry(ctx, fullURL)
	if err != nil {
		config.LogError("ocd", "list "+endpoint, err)
		return nil, err
	}

	var lp ListPage
	if err := json.Unmarshal(body, &lp); err != nil {
		config.LogError("ocd", "decode "+endpoint, err)
		return nil, fmt.Errorf("decode %s index: %w", endpoint, err)
	}

	if len(lp.Error) > 0 && string(lp.Error) != "null" {
		return nil, &DataError{Endpoint: endpoint, Body: string(lp.Error)}
	}
	if lp.Meta == nil {
		return nil, fmt.Errorf("%s: %w", endpoint, ErrMissingMeta)
	}

	config.LogResponse("ocd", status, time.Since(start), len(lp.Results))
	return &lp, nil
}

// Detail fetches the full record for an OCD id and returns the raw body so it
// can be cached byte-for-byte.
func (c *Client) Detail(ctx context.Context, ocdID string) ([]byte, error) {
	fullURL := fmt.Sprintf("%s/%s/", c.base, ocdID)

	body, _, err := c.get(ctx, fullURL)
	if err != nil {
		return nil, err
	}

	// Detail bodies can carry an error field too (withdrawn records).
	var probe struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		return nil, fmt.Errorf("decode %s: %w", ocdID, err)
	}
	if len(probe.Error) > 0 && string(probe.Error) != "null" {
		return nil, &DataError{Endpoint: ocdID, Body: string(probe.Error)}
	}

	return body, nil
}

// Jurisdiction fetches the jurisdiction record, used for session discovery.
func (c *Client) Jurisdiction(ctx context.Context, jurisdictionID string) (*Jurisdiction, error) {
	body, err := c.Detail(ctx, jurisdictionID)
	if err != nil {
		return nil, err
	}
	var j Jurisdiction
	if err := json.Unmarshal(body, &j); err != nil {
		return nil, fmt.Errorf("decode jurisdiction: %w", err)
	}
	return &j, nil
}

// SaveImage streams an image URL to disk in chunks. The write is atomic: a
// temp file is renamed into place only on success.
func (c *Client) SaveImage(ctx context.Context, imageURL, path string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, "GET", imageURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("image status %d", resp.StatusCode)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".headshot-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	buf := make([]byte, imageChunkSize)
	if _, err := io.CopyBuffer(tmp, resp.Body, buf); err != nil {
		tmp.Close()
		return fmt.Errorf("stream image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), path)
}

// get performs a single rate-limited GET with no retry; used for detail
// fetches where the caller skips failed ids and retries on the next run.
func (c *Client) get(ctx context.Context, fullURL string) ([]byte, int, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, 0, err
	}

	req, err := http.NewRequestWithContext(ctx, "GET", fullURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-KEY", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("ocd request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, resp.StatusCode, fmt.Errorf("ocd status %d for %s", resp.StatusCode, fullURL)
	}

	return body, resp.StatusCode, nil
}

// getWithRetry retries transient failures with exponential backoff; used for
// index pages, where a dropped page would lose a whole slice of the type.
func (c *Client) getWithRetry(ctx context.Context, fullURL string) ([]byte, int, error) {
	backoff := initialBackoff
	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, 0, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		body, status, err := c.get(ctx, fullURL)
		if err == nil {
			return body, status, nil
		}
		lastErr = err

		// Client errors will not heal with a retry.
		if status >= 400 && status < 500 {
			return nil, status, err
		}
	}

	return nil, 0, fmt.Errorf("after %d attempts: %w", maxRetries, lastErr)
}
