package textextract

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestRunConverter(t *testing.T) {
	out, err := runConverter(context.Background(), []string{"cat"}, []byte("{\\rtf1 hello}"), ".rtf", time.Second)
	if err != nil {
		t.Fatalf("runConverter failed: %v", err)
	}
	if out != "{\\rtf1 hello}" {
		t.Errorf("stdout = %q", out)
	}
}

func TestRunConverterAppendsPath(t *testing.T) {
	// echo prints its arguments, so stdout ends with the temp file path.
	out, err := runConverter(context.Background(), []string{"echo", "-n"}, []byte("x"), ".rtf", time.Second)
	if err != nil {
		t.Fatalf("runConverter failed: %v", err)
	}
	if !strings.HasSuffix(strings.TrimSpace(out), ".rtf") {
		t.Errorf("converter did not receive the file path: %q", out)
	}
}

func TestRunConverterTimeout(t *testing.T) {
	start := time.Now()
	_, err := runConverter(context.Background(), []string{"sleep", "5"}, nil, ".rtf", 100*time.Millisecond)
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if !strings.Contains(err.Error(), "timed out") {
		t.Errorf("err = %v, want timeout", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("timeout took %s, converter was not killed", elapsed)
	}
}

func TestRunConverterMissingBinary(t *testing.T) {
	_, err := runConverter(context.Background(), []string{"no-such-converter-binary"}, nil, ".rtf", time.Second)
	if err == nil {
		t.Fatal("expected error for a missing converter")
	}
}

func TestRunConverterFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.rtf")
	if err := os.WriteFile(path, []byte("body"), 0o644); err != nil {
		t.Fatal(err)
	}
	out, err := runConverterFile(context.Background(), []string{"cat"}, path, time.Second)
	if err != nil {
		t.Fatalf("runConverterFile failed: %v", err)
	}
	if out != "body" {
		t.Errorf("stdout = %q", out)
	}
}

func TestAttachmentExtractorSelection(t *testing.T) {
	cases := []struct {
		url  string
		want string
	}{
		{"http://example.com/report.pdf", ".pdf"},
		{"http://example.com/report.PDF?rev=2", ".pdf"},
		{"http://example.com/memo.doc", ".doc"},
		{"http://example.com/memo.docx", ".docx"},
		{"http://example.com/packet.pdf#page=3", ".pdf"},
		{"http://example.com/page", ""},
	}
	for _, c := range cases {
		if got := attachmentExt(c.url); got != c.want {
			t.Errorf("attachmentExt(%q) = %q, want %q", c.url, got, c.want)
		}
	}
}
