package cache

import (
	"os"
	"path/filepath"
	"testing"
)

const testID = "ocd-bill/0f84f478-2f44-4450-a8b7-82aa8f2b5b09"

func TestIDSegment(t *testing.T) {
	seg, err := IDSegment(testID)
	if err != nil {
		t.Fatalf("IDSegment failed: %v", err)
	}
	if seg != "0f84f478-2f44-4450-a8b7-82aa8f2b5b09" {
		t.Errorf("segment = %q", seg)
	}

	for _, bad := range []string{
		"",
		"ocd-bill",
		"ocd-bill/",
		"ocd-bill/not-a-uuid",
		"ocd-bill/0f84f478",
	} {
		if _, err := IDSegment(bad); err == nil {
			t.Errorf("IDSegment(%q) should fail", bad)
		}
	}
}

func TestPutGet(t *testing.T) {
	store := New(t.TempDir())

	body := []byte(`{"id": "` + testID + `"}`)
	if err := store.Put("bills", testID, body); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, err := store.Get("bills", testID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got) != string(body) {
		t.Errorf("Get = %q, want %q", got, body)
	}

	// Overwrite replaces the body in place.
	if err := store.Put("bills", testID, []byte(`{}`)); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}
	got, err = store.Get("bills", testID)
	if err != nil {
		t.Fatalf("Get after overwrite failed: %v", err)
	}
	if string(got) != `{}` {
		t.Errorf("Get after overwrite = %q", got)
	}
}

func TestPutRejectsMalformedID(t *testing.T) {
	store := New(t.TempDir())
	if err := store.Put("bills", "ocd-bill/nope", []byte(`{}`)); err == nil {
		t.Error("Put with malformed id should fail")
	}
}

func TestList(t *testing.T) {
	root := t.TempDir()
	store := New(root)

	// Missing type directory reads as an empty cache.
	paths, err := store.List("events")
	if err != nil {
		t.Fatalf("List on missing dir failed: %v", err)
	}
	if paths != nil {
		t.Errorf("List on missing dir = %v, want nil", paths)
	}

	ids := []string{
		"ocd-bill/0f84f478-2f44-4450-a8b7-82aa8f2b5b09",
		"ocd-bill/1b2c3d4e-5f60-4711-9822-a3b4c5d6e7f8",
	}
	for _, id := range ids {
		if err := store.Put("bills", id, []byte(`{}`)); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
	}
	// Stray non-JSON files are skipped.
	if err := os.WriteFile(filepath.Join(root, "bills", "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	paths, err = store.List("bills")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("List = %v, want 2 json paths", paths)
	}
	for _, p := range paths {
		if filepath.Ext(p) != ".json" {
			t.Errorf("unexpected path %q", p)
		}
	}
}
