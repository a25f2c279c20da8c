package engine

import (
	"testing"
	"time"

	"github.com/opencivicdata/ocd-sync/internal/ocd"
)

func TestPrimarySource(t *testing.T) {
	web := ocd.Source{URL: "http://example.gov/page", Note: "web"}
	api := ocd.Source{URL: "http://api.example.gov/x", Note: "api"}

	url, note := primarySource([]ocd.Source{api, web})
	if url != web.URL || note != "web" {
		t.Errorf("got %q/%q, want web source", url, note)
	}

	url, note = primarySource([]ocd.Source{api})
	if url != api.URL || note != "api" {
		t.Errorf("got %q/%q, want first source", url, note)
	}

	url, note = primarySource(nil)
	if url != "" || note != "" {
		t.Errorf("got %q/%q, want empty", url, note)
	}
}

func TestParseDate(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"2026-03-15", "2026-03-15"},
		{"2026-03", "2026-03-01"},
		{"2026", "2026-01-01"},
		{"2026-03-15T10:30:00", "2026-03-15"},
		{"2026-03-15 10:30:00", "2026-03-15"},
	}
	for _, c := range cases {
		got := parseDate(c.in)
		if got == nil {
			t.Errorf("parseDate(%q) = nil", c.in)
			continue
		}
		if got.Format("2006-01-02") != c.want {
			t.Errorf("parseDate(%q) = %s, want %s", c.in, got.Format("2006-01-02"), c.want)
		}
	}

	for _, bad := range []string{"", "  ", "garbage"} {
		if got := parseDate(bad); got != nil {
			t.Errorf("parseDate(%q) = %v, want nil", bad, got)
		}
	}
}

func TestParseTimestamp(t *testing.T) {
	loc, err := time.LoadLocation("America/Chicago")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	// Naive timestamps take the configured zone.
	got := parseTimestamp("2026-06-01T09:00:00", loc)
	if got == nil {
		t.Fatal("naive timestamp did not parse")
	}
	if got.Location().String() != "America/Chicago" || got.Hour() != 9 {
		t.Errorf("got %v, want 09:00 in America/Chicago", got)
	}

	// Offset-carrying timestamps keep their own zone.
	got = parseTimestamp("2026-06-01T09:00:00Z", loc)
	if got == nil {
		t.Fatal("RFC3339 timestamp did not parse")
	}
	if !got.Equal(time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)) {
		t.Errorf("got %v, want 09:00 UTC", got)
	}

	if parseTimestamp("", loc) != nil {
		t.Error("empty input should be nil")
	}
	if parseTimestamp("nonsense", loc) != nil {
		t.Error("malformed input should be nil")
	}
}

func TestFirstLinkURL(t *testing.T) {
	doc := ocd.Document{
		URL:   "http://example.com/direct.pdf",
		Links: []ocd.Link{{URL: "http://example.com/a.pdf"}, {URL: "http://example.com/b.pdf"}},
	}
	if got := firstLinkURL(doc); got != "http://example.com/a.pdf" {
		t.Errorf("got %q, want first link", got)
	}

	doc.Links = nil
	if got := firstLinkURL(doc); got != "http://example.com/direct.pdf" {
		t.Errorf("got %q, want direct url fallback", got)
	}
}
