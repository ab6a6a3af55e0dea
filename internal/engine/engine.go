// Package engine executes record operations (insert, select, update,
// delete) against persisted tables, consulting the schema registry for
// type-checked filtering and mutation.
package engine

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/flatdb/flatdb/internal/schema"
	"github.com/flatdb/flatdb/internal/storage"
	"github.com/flatdb/flatdb/internal/value"
)

// ErrArity is returned when an insert supplies the wrong number of values
// for the table's user columns.
var ErrArity = errors.New("wrong number of values")

// Predicate is a single column-equals-value filter. The value is the raw
// textual literal; it is coerced against the column's declared type before
// comparison.
type Predicate struct {
	Column string
	Value  string
}

// Engine ties the schema registry to the record store. It holds no state of
// its own across calls; every mutating operation is a full load, scan and
// rewrite of the table's record document.
type Engine struct {
	registry *schema.Registry
	store    *storage.Store
	log      *zap.Logger
}

// New returns an engine over the given registry and store. A nil logger
// disables logging.
func New(registry *schema.Registry, store *storage.Store, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{registry: registry, store: store, log: log}
}

// Insert coerces rawValues against the table's user columns in order,
// assigns the next ID, appends the record and persists the record set.
// It returns the new record's ID.
func (e *Engine) Insert(table string, rawValues []string) (int64, error) {
	tbl, err := e.registry.Table(table)
	if err != nil {
		return 0, err
	}

	userCols := tbl.UserColumns()
	if len(rawValues) != len(userCols) {
		return 0, fmt.Errorf("%w: table %q expects %d values, got %d",
			ErrArity, table, len(userCols), len(rawValues))
	}

	records, err := e.store.ReadTable(table)
	if err != nil {
		return 0, err
	}

	id := storage.NextID(records)
	rec := storage.Record{schema.IDColumn: value.Int(id)}
	for i, col := range userCols {
		v, err := value.Parse(rawValues[i], col.Type)
		if err != nil {
			return 0, fmt.Errorf("column %q: %w", col.Name, err)
		}
		rec[col.Name] = v
	}

	records = append(records, rec)
	if err := e.store.WriteTable(table, records); err != nil {
		return 0, err
	}

	e.log.Debug("record inserted", zap.String("table", table), zap.Int64("id", id))
	return id, nil
}

// Select returns the table's records in on-disk insertion order. With a
// predicate, only records whose value under the filter column equals the
// coerced filter value are returned; equality is typed, never textual.
// An empty result is a non-error outcome.
func (e *Engine) Select(table string, where *Predicate) ([]storage.Record, error) {
	tbl, err := e.registry.Table(table)
	if err != nil {
		return nil, err
	}

	records, err := e.store.ReadTable(table)
	if err != nil {
		return nil, err
	}

	if where == nil {
		return records, nil
	}

	col, ok := tbl.Column(where.Column)
	if !ok {
		return nil, fmt.Errorf("%w: %q", schema.ErrUnknownColumn, where.Column)
	}
	want, err := value.Parse(where.Value, col.Type)
	if err != nil {
		return nil, err
	}

	var matched []storage.Record
	for _, rec := range records {
		if v, ok := rec[col.Name]; ok && v.Equal(want) {
			matched = append(matched, rec)
		}
	}
	return matched, nil
}

// Update sets setColumn to setValue on every record matching the predicate
// and returns the updated IDs in scan order. Zero matches is a non-error
// outcome: it returns an empty slice and leaves the record document
// untouched.
func (e *Engine) Update(table, setColumn, setValue string, where Predicate) ([]int64, error) {
	tbl, err := e.registry.Table(table)
	if err != nil {
		return nil, err
	}

	setCol, ok := tbl.Column(setColumn)
	if !ok {
		return nil, fmt.Errorf("%w: %q", schema.ErrUnknownColumn, setColumn)
	}
	whereCol, ok := tbl.Column(where.Column)
	if !ok {
		return nil, fmt.Errorf("%w: %q", schema.ErrUnknownColumn, where.Column)
	}

	setVal, err := value.Parse(setValue, setCol.Type)
	if err != nil {
		return nil, fmt.Errorf("column %q: %w", setCol.Name, err)
	}
	whereVal, err := value.Parse(where.Value, whereCol.Type)
	if err != nil {
		return nil, fmt.Errorf("column %q: %w", whereCol.Name, err)
	}

	records, err := e.store.ReadTable(table)
	if err != nil {
		return nil, err
	}

	var updated []int64
	for _, rec := range records {
		if v, ok := rec[whereCol.Name]; ok && v.Equal(whereVal) {
			rec[setCol.Name] = setVal
			updated = append(updated, rec.ID())
		}
	}

	if len(updated) == 0 {
		return nil, nil
	}

	if err := e.store.WriteTable(table, records); err != nil {
		return nil, err
	}

	e.log.Debug("records updated",
		zap.String("table", table),
		zap.String("column", setCol.Name),
		zap.Int64s("ids", updated))
	return updated, nil
}

// Delete removes every record matching the predicate, persists the kept
// subset and returns the deleted IDs in scan order. Zero matches is a
// non-error outcome: it returns an empty slice and leaves the record
// document untouched.
func (e *Engine) Delete(table string, where Predicate) ([]int64, error) {
	tbl, err := e.registry.Table(table)
	if err != nil {
		return nil, err
	}

	whereCol, ok := tbl.Column(where.Column)
	if !ok {
		return nil, fmt.Errorf("%w: %q", schema.ErrUnknownColumn, where.Column)
	}
	whereVal, err := value.Parse(where.Value, whereCol.Type)
	if err != nil {
		return nil, fmt.Errorf("column %q: %w", whereCol.Name, err)
	}

	records, err := e.store.ReadTable(table)
	if err != nil {
		return nil, err
	}

	var deleted []int64
	kept := make([]storage.Record, 0, len(records))
	for _, rec := range records {
		if v, ok := rec[whereCol.Name]; ok && v.Equal(whereVal) {
			deleted = append(deleted, rec.ID())
			continue
		}
		kept = append(kept, rec)
	}

	if len(deleted) == 0 {
		return nil, nil
	}

	if err := e.store.WriteTable(table, kept); err != nil {
		return nil, err
	}

	e.log.Debug("records deleted", zap.String("table", table), zap.Int64s("ids", deleted))
	return deleted, nil
}

// Describe returns the table's column list for display.
func (e *Engine) Describe(table string) (schema.Table, error) {
	return e.registry.Table(table)
}
