// Package export materializes a table's record set into a SQLite database
// for downstream querying. The JSON documents stay the source of truth; the
// exported file is a one-shot snapshot.
package export

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/flatdb/flatdb/internal/schema"
	"github.com/flatdb/flatdb/internal/storage"
	"github.com/flatdb/flatdb/internal/value"
)

// Table writes all records of one table into a SQLite database at path and
// returns the number of exported rows. The table is created if needed and
// cleared before inserting, so re-exporting to the same file is idempotent.
func Table(name string, tbl schema.Table, records []storage.Record, path string) (int, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return 0, fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	// SQLite doesn't support concurrent writes
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(GenerateDDL(name, tbl)); err != nil {
		return 0, fmt.Errorf("creating table: %w", err)
	}
	if _, err := db.Exec(metaTableDDL); err != nil {
		return 0, fmt.Errorf("creating meta table: %w", err)
	}
	if _, err := db.Exec(fmt.Sprintf("DELETE FROM %s", name)); err != nil {
		return 0, fmt.Errorf("clearing table: %w", err)
	}

	for i, rec := range records {
		if err := insertRecord(db, name, tbl, rec); err != nil {
			return 0, fmt.Errorf("inserting record %d: %w", i+1, err)
		}
	}

	if err := setExportTime(db, time.Now()); err != nil {
		return 0, fmt.Errorf("stamping export time: %w", err)
	}

	return len(records), nil
}

// GenerateDDL generates a CREATE TABLE statement from a table definition.
// The ID column becomes the primary key.
func GenerateDDL(name string, tbl schema.Table) string {
	cols := make([]string, len(tbl.Columns))
	for i, col := range tbl.Columns {
		decl := fmt.Sprintf("%s %s", col.Name, sqliteType(col.Type))
		if col.Name == schema.IDColumn {
			decl += " PRIMARY KEY"
		}
		cols[i] = decl
	}

	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n  %s\n)",
		name, strings.Join(cols, ",\n  "))
}

const metaTableDDL = `CREATE TABLE IF NOT EXISTS _meta (
  key TEXT PRIMARY KEY,
  value TEXT
)`

// sqliteType maps a column type to a SQLite type.
func sqliteType(t value.Type) string {
	switch t {
	case value.TypeInt, value.TypeBool:
		return "INTEGER"
	default:
		return "TEXT"
	}
}

// insertRecord inserts a single record, with columns in schema order.
func insertRecord(db *sql.DB, name string, tbl schema.Table, rec storage.Record) error {
	cols := make([]string, len(tbl.Columns))
	placeholders := make([]string, len(tbl.Columns))
	args := make([]any, len(tbl.Columns))

	for i, col := range tbl.Columns {
		cols[i] = col.Name
		placeholders[i] = "?"
		if v, ok := rec[col.Name]; ok {
			args[i] = sqliteValue(v)
		}
	}

	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		name, strings.Join(cols, ", "), strings.Join(placeholders, ", "))

	_, err := db.Exec(stmt, args...)
	return err
}

// sqliteValue converts a typed value to a SQLite-compatible value. Booleans
// are stored as 0/1.
func sqliteValue(v value.Value) any {
	switch v.Kind() {
	case value.KindInt:
		return v.IntValue()
	case value.KindBool:
		if v.BoolValue() {
			return int64(1)
		}
		return int64(0)
	default:
		return v.TextValue()
	}
}

// setExportTime stamps the export time in the _meta table.
func setExportTime(db *sql.DB, t time.Time) error {
	_, err := db.Exec(`INSERT OR REPLACE INTO _meta (key, value) VALUES ('exported_at', ?)`,
		t.Format(time.RFC3339))
	return err
}
