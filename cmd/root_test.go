package cmd

import "testing"

func TestNormalizeFlags(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"update_since", "update-since"},
		{"import_only", "import-only"},
		{"download_only", "download-only"},
		{"no_index", "no-index"},
		{"no_notify", "no-notify"},
		{"update-since", "update-since"},
		{"delete", "delete"},
	}
	for _, c := range cases {
		if got := string(normalizeFlags(nil, c.in)); got != c.want {
			t.Errorf("normalizeFlags(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

// Underscore spellings parse onto the hyphenated flags.
func TestSyncFlagAliases(t *testing.T) {
	fs := syncCmd.Flags()
	err := fs.Parse([]string{"--update_since=2026-01-01", "--no_index", "--import_only"})
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	if got := fs.Lookup("update-since").Value.String(); got != "2026-01-01" {
		t.Errorf("update-since = %q", got)
	}
	if got := fs.Lookup("no-index").Value.String(); got != "true" {
		t.Errorf("no-index = %q", got)
	}
	if got := fs.Lookup("import-only").Value.String(); got != "true" {
		t.Errorf("import-only = %q", got)
	}
}

func TestConvertFlagAliases(t *testing.T) {
	fs := convertCmd.Flags()
	if err := fs.Parse([]string{"--update_all"}); err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if got := fs.Lookup("update-all").Value.String(); got != "true" {
		t.Errorf("update-all = %q", got)
	}
}
