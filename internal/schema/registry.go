package schema

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Load reads the registry document at path. A missing file yields an empty
// registry, not an error.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewRegistry(), nil
		}
		return nil, fmt.Errorf("reading schema registry: %w", err)
	}

	var tables map[string]Table
	if err := json.Unmarshal(data, &tables); err != nil {
		return nil, fmt.Errorf("parsing schema registry: %w", err)
	}
	if tables == nil {
		tables = make(map[string]Table)
	}

	return &Registry{tables: tables}, nil
}

// Save rewrites the registry document at path wholesale as indented JSON.
func (r *Registry) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating registry directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(r.tables, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding schema registry: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing schema registry: %w", err)
	}

	return nil
}
