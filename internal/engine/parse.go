package engine

import (
	"strings"
	"time"

	"github.com/opencivicdata/ocd-sync/internal/ocd"
)

// Shared parsing helpers: source selection and date coercion. Parsers are
// pure projections from cached JSON to row values; anything they cannot
// resolve surfaces as a ParseError rather than a silent default.

// primarySource returns the source whose note is "web", else the first
// source. The dataset's web convention marks the human-facing page.
func primarySource(sources []ocd.Source) (url, note string) {
	if len(sources) == 0 {
		return "", ""
	}
	for _, s := range sources {
		if s.Note == "web" {
			return s.URL, s.Note
		}
	}
	return sources[0].URL, sources[0].Note
}

var dateLayouts = []string{"2006-01-02", "2006-01", "2006"}

// parseDate coerces an ISO-8601 date, returning nil for empty input. Partial
// dates resolve to the first day of their span.
func parseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	// Some records carry a full timestamp where a date is expected.
	if idx := strings.IndexAny(s, "T "); idx > 0 {
		s = s[:idx]
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.000000",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseTimestamp coerces an ISO-8601 timestamp. Naive values (no offset) are
// localized to loc, per the jurisdiction's configured zone.
func parseTimestamp(s string, loc *time.Location) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range timestampLayouts {
		if hasOffset(layout) {
			if t, err := time.Parse(layout, s); err == nil {
				return &t
			}
		} else if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return &t
		}
	}
	return nil
}

func hasOffset(layout string) bool {
	return strings.ContainsAny(layout, "Z") || strings.Contains(layout, "-07")
}

// firstLinkURL returns links[0].url, or "" when a document has no links.
func firstLinkURL(doc ocd.Document) string {
	if len(doc.Links) > 0 {
		return doc.Links[0].URL
	}
	return doc.URL
}

func optional(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}
