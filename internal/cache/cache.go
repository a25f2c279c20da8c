// Package cache is the on-disk JSON store backing the fetch phase. Files live
// at <root>/<type>/<uuid>.json where uuid is the part of the record's OCD id
// after the final slash. Writes are atomic so a killed run never leaves a
// half-written body for the import phase to choke on.
package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Store is a per-type, per-id JSON cache rooted at a download directory.
type Store struct {
	root string
}

// New creates a Store rooted at dir.
func New(dir string) *Store {
	return &Store{root: dir}
}

// Root returns the download directory.
func (s *Store) Root() string {
	return s.root
}

// IDSegment extracts the part of an OCD id after the final slash, which is
// the record's UUID and the cache filename. The segment must parse as a UUID
// or the id is rejected.
func IDSegment(ocdID string) (string, error) {
	idx := strings.LastIndex(ocdID, "/")
	if idx < 0 || idx == len(ocdID)-1 {
		return "", fmt.Errorf("malformed ocd id %q", ocdID)
	}
	seg := ocdID[idx+1:]
	if _, err := uuid.Parse(seg); err != nil {
		return "", fmt.Errorf("ocd id %q: trailing segment is not a uuid: %w", ocdID, err)
	}
	return seg, nil
}

// Put writes the JSON body for an entity, overwriting atomically.
func (s *Store) Put(entityType, ocdID string, body []byte) error {
	seg, err := IDSegment(ocdID)
	if err != nil {
		return err
	}

	dir := filepath.Join(s.root, entityType)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".put-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		return fmt.Errorf("write cache body: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), filepath.Join(dir, seg+".json"))
}

// Get reads the cached body for an entity.
func (s *Store) Get(entityType, ocdID string) ([]byte, error) {
	seg, err := IDSegment(ocdID)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(filepath.Join(s.root, entityType, seg+".json"))
}

// List returns the paths of every cached body for a type, in directory order.
// A missing type directory is an empty cache, not an error.
func (s *Store) List(entityType string) ([]string, error) {
	dir := filepath.Join(s.root, entityType)
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read cache dir: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	return paths, nil
}
