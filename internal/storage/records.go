// Package storage persists per-table record documents as flat JSON files
// under a data directory. Each document holds the full ordered record set
// for one table and is rewritten wholesale on every mutation.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/flatdb/flatdb/internal/schema"
	"github.com/flatdb/flatdb/internal/value"
)

// Record is one row: a mapping from column name to typed value.
type Record map[string]value.Value

// ID returns the record's identifier, or 0 if it is absent or mistyped.
func (r Record) ID() int64 {
	v, ok := r[schema.IDColumn]
	if !ok || v.Kind() != value.KindInt {
		return 0
	}
	return v.IntValue()
}

// NextID returns the identifier for the next inserted record: one past the
// maximum existing ID, or 1 for an empty set. IDs are never reused after
// deletion.
func NextID(records []Record) int64 {
	var max int64
	for _, rec := range records {
		if id := rec.ID(); id > max {
			max = id
		}
	}
	return max + 1
}

// Store reads and writes record documents under a data directory.
type Store struct {
	dir string
}

// New returns a store rooted at the given data directory. The directory is
// created lazily on the first write.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the data directory.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the document path for a table.
func (s *Store) Path(table string) string {
	return filepath.Join(s.dir, table+".json")
}

// ReadTable loads a table's record set in on-disk order. A missing document
// is an empty set, not an error.
func (s *Store) ReadTable(table string) ([]Record, error) {
	data, err := os.ReadFile(s.Path(table))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading records for %q: %w", table, err)
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parsing records for %q: %w", table, err)
	}
	return records, nil
}

// WriteTable rewrites a table's record set wholesale. The document is
// written to a temp file and renamed into place so a crash mid-write never
// truncates existing data.
func (s *Store) WriteTable(table string, records []Record) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	if records == nil {
		records = []Record{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding records for %q: %w", table, err)
	}
	data = append(data, '\n')

	tmpFile, err := os.CreateTemp(s.dir, ".tmp-*.json")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("writing records for %q: %w", table, err)
	}
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.Path(table)); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}

	success = true
	return nil
}

// RemoveTable deletes a table's record document if present. Dropping a table
// does not call this; it exists for callers that want cascade deletion.
func (s *Store) RemoveTable(table string) error {
	if err := os.Remove(s.Path(table)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing records for %q: %w", table, err)
	}
	return nil
}
