// Package schema manages table definitions and the persisted registry that
// maps table names to them.
package schema

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/flatdb/flatdb/internal/value"
)

// IDColumn is the implicit auto-numbered identifier column present in every
// table. It is prepended at creation time and never supplied by the user.
const IDColumn = "ID"

var (
	// ErrDuplicateTable is returned when creating a table whose name is taken.
	ErrDuplicateTable = errors.New("table already exists")

	// ErrUnknownTable is returned when an operation names an absent table.
	ErrUnknownTable = errors.New("table does not exist")

	// ErrUnknownColumn is returned when an operation names an absent column.
	ErrUnknownColumn = errors.New("column does not exist")

	// ErrInvalidColumnType is returned for a column spec with an
	// unrecognized type token.
	ErrInvalidColumnType = errors.New("invalid column type")

	// ErrMalformedColumnSpec is returned for a column spec that does not
	// match the name:type form.
	ErrMalformedColumnSpec = errors.New("malformed column spec")

	// ErrDuplicateColumn is returned when a table is created with two
	// columns of the same name, or with a user-supplied ID column.
	ErrDuplicateColumn = errors.New("duplicate column name")
)

// Column is one column of a table definition.
type Column struct {
	Name string     `json:"name"`
	Type value.Type `json:"type"`
}

// Table is the ordered column schema for one table, including the implicit
// ID column in first position.
type Table struct {
	Columns []Column `json:"columns"`
}

// Column returns the named column's definition.
func (t Table) Column(name string) (Column, bool) {
	for _, col := range t.Columns {
		if col.Name == name {
			return col, true
		}
	}
	return Column{}, false
}

// UserColumns returns the columns whose values are supplied at insert time,
// that is, all columns except ID.
func (t Table) UserColumns() []Column {
	cols := make([]Column, 0, len(t.Columns)-1)
	for _, col := range t.Columns {
		if col.Name != IDColumn {
			cols = append(cols, col)
		}
	}
	return cols
}

// Signature returns the "name:type, name:type" display form of the table.
func (t Table) Signature() string {
	parts := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		parts[i] = col.Name + ":" + string(col.Type)
	}
	return strings.Join(parts, ", ")
}

// Registry maps table names (case-sensitive) to their definitions. The shell
// owns a single instance for the lifetime of the session.
type Registry struct {
	tables map[string]Table
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{tables: make(map[string]Table)}
}

// Create defines a new table from name:type column specs. An ID:int column
// is prepended; duplicate column names, including a user-supplied ID, are
// rejected.
func (r *Registry) Create(name string, specs []string) error {
	if _, ok := r.tables[name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateTable, name)
	}

	cols := []Column{{Name: IDColumn, Type: value.TypeInt}}
	seen := map[string]bool{IDColumn: true}

	for _, spec := range specs {
		colName, typeToken, ok := strings.Cut(spec, ":")
		colName = strings.TrimSpace(colName)
		typeToken = strings.TrimSpace(typeToken)
		if !ok || colName == "" || typeToken == "" {
			return fmt.Errorf("%w: %q (use name:type)", ErrMalformedColumnSpec, spec)
		}

		colType := value.Type(typeToken)
		if !colType.Valid() {
			return fmt.Errorf("%w: %q (valid types: %s)",
				ErrInvalidColumnType, typeToken, strings.Join(value.TypeNames(), ", "))
		}

		if seen[colName] {
			return fmt.Errorf("%w: %q", ErrDuplicateColumn, colName)
		}
		seen[colName] = true

		cols = append(cols, Column{Name: colName, Type: colType})
	}

	r.tables[name] = Table{Columns: cols}
	return nil
}

// Drop removes a table definition. The table's record document is left on
// disk, so recreating the table picks the old data back up.
func (r *Registry) Drop(name string) error {
	if _, ok := r.tables[name]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTable, name)
	}
	delete(r.tables, name)
	return nil
}

// Table returns the definition for name.
func (r *Registry) Table(name string) (Table, error) {
	t, ok := r.tables[name]
	if !ok {
		return Table{}, fmt.Errorf("%w: %q", ErrUnknownTable, name)
	}
	return t, nil
}

// Has reports whether a table with the given name exists.
func (r *Registry) Has(name string) bool {
	_, ok := r.tables[name]
	return ok
}

// Names returns all table names in sorted order, for display.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.tables))
	for name := range r.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of defined tables.
func (r *Registry) Len() int {
	return len(r.tables)
}
