package engine

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"

	"github.com/flatdb/flatdb/internal/schema"
	"github.com/flatdb/flatdb/internal/storage"
	"github.com/flatdb/flatdb/internal/value"
)

var valueComparer = cmp.Comparer(func(a, b value.Value) bool {
	return a.Equal(b)
})

// newTestEngine returns an engine over a users(name:str, age:int,
// active:bool) table backed by a temp directory.
func newTestEngine(t *testing.T) (*Engine, *storage.Store) {
	t.Helper()

	reg := schema.NewRegistry()
	if err := reg.Create("users", []string{"name:str", "age:int", "active:bool"}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	store := storage.New(filepath.Join(t.TempDir(), "data"))
	return New(reg, store, zap.NewNop()), store
}

func readDocument(t *testing.T, store *storage.Store, table string) []byte {
	t.Helper()
	data, err := os.ReadFile(store.Path(table))
	if err != nil {
		t.Fatalf("reading document: %v", err)
	}
	return data
}

func TestInsertAndSelectRoundTrip(t *testing.T) {
	e, _ := newTestEngine(t)

	id, err := e.Insert("users", []string{`"Ann"`, "30", "true"})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if id != 1 {
		t.Errorf("id = %d, want 1", id)
	}

	records, err := e.Select("users", nil)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}

	want := []storage.Record{{
		"ID":     value.Int(1),
		"name":   value.Text("Ann"),
		"age":    value.Int(30),
		"active": value.Bool(true),
	}}
	if diff := cmp.Diff(want, records, valueComparer); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestInsertAssignsStrictlyIncreasingIDs(t *testing.T) {
	e, _ := newTestEngine(t)

	for i, name := range []string{"Ann", "Bob", "Cid"} {
		id, err := e.Insert("users", []string{name, "30", "true"})
		if err != nil {
			t.Fatalf("Insert(%q): %v", name, err)
		}
		if id != int64(i+1) {
			t.Errorf("id = %d, want %d", id, i+1)
		}
	}

	// Deleting an earlier record must not cause its ID to be reused.
	if _, err := e.Delete("users", Predicate{Column: "name", Value: "Ann"}); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	id, err := e.Insert("users", []string{"Dee", "30", "true"})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if id != 4 {
		t.Errorf("id after delete = %d, want 4 (max+1, not reuse)", id)
	}
}

func TestInsertUnknownTable(t *testing.T) {
	e, _ := newTestEngine(t)
	if _, err := e.Insert("ghost", []string{"x"}); !errors.Is(err, schema.ErrUnknownTable) {
		t.Errorf("error = %v, want ErrUnknownTable", err)
	}
}

func TestInsertArityMismatch(t *testing.T) {
	e, _ := newTestEngine(t)
	if _, err := e.Insert("users", []string{"Ann", "30"}); !errors.Is(err, ErrArity) {
		t.Errorf("error = %v, want ErrArity", err)
	}
}

func TestInsertCoercionFailureNamesColumn(t *testing.T) {
	e, _ := newTestEngine(t)

	_, err := e.Insert("users", []string{"Ann", "notanint", "true"})
	if !errors.Is(err, value.ErrCoercion) {
		t.Fatalf("error = %v, want ErrCoercion", err)
	}
	if !strings.Contains(err.Error(), `"age"`) {
		t.Errorf("error %q should name the offending column", err)
	}
}

func TestSelectWithPredicate(t *testing.T) {
	e, _ := newTestEngine(t)

	mustInsert(t, e, "Ann", "30", "true")
	mustInsert(t, e, "Bob", "40", "false")
	mustInsert(t, e, "Cid", "30", "true")

	records, err := e.Select("users", &Predicate{Column: "active", Value: "yes"})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("len = %d, want 2", len(records))
	}
	if records[0].ID() != 1 || records[1].ID() != 3 {
		t.Errorf("ids = %d, %d; want 1, 3 (insertion order)", records[0].ID(), records[1].ID())
	}
}

func TestSelectEqualityIsTyped(t *testing.T) {
	e, _ := newTestEngine(t)

	// "30" in a str column would match textually but not as a typed int.
	mustInsert(t, e, "30", "99", "true")

	records, err := e.Select("users", &Predicate{Column: "age", Value: "30"})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("len = %d, want 0: age 99 should not match 30", len(records))
	}

	records, err = e.Select("users", &Predicate{Column: "name", Value: "30"})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("len = %d, want 1: name \"30\" should match as text", len(records))
	}
}

func TestSelectUnknownColumn(t *testing.T) {
	e, _ := newTestEngine(t)
	_, err := e.Select("users", &Predicate{Column: "ghost", Value: "1"})
	if !errors.Is(err, schema.ErrUnknownColumn) {
		t.Errorf("error = %v, want ErrUnknownColumn", err)
	}
}

func TestSelectEmptyResultIsNotAnError(t *testing.T) {
	e, _ := newTestEngine(t)
	mustInsert(t, e, "Ann", "30", "true")

	records, err := e.Select("users", &Predicate{Column: "age", Value: "99"})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("len = %d, want 0", len(records))
	}
}

func TestUpdate(t *testing.T) {
	e, _ := newTestEngine(t)

	mustInsert(t, e, "Ann", "30", "true")
	mustInsert(t, e, "Bob", "30", "false")

	ids, err := e.Update("users", "age", "31", Predicate{Column: "age", Value: "30"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if diff := cmp.Diff([]int64{1, 2}, ids); diff != "" {
		t.Errorf("ids mismatch (-want +got):\n%s", diff)
	}

	records, err := e.Select("users", &Predicate{Column: "age", Value: "31"})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("len = %d, want 2 after update", len(records))
	}
}

func TestUpdateNoMatchesLeavesDocumentUntouched(t *testing.T) {
	e, store := newTestEngine(t)
	mustInsert(t, e, "Ann", "30", "true")

	before := readDocument(t, store, "users")

	ids, err := e.Update("users", "age", "31", Predicate{Column: "age", Value: "99"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("ids = %v, want none", ids)
	}

	after := readDocument(t, store, "users")
	if string(before) != string(after) {
		t.Error("document changed despite zero matches")
	}
}

func TestUpdateUnknownColumnLeavesDocumentUntouched(t *testing.T) {
	e, store := newTestEngine(t)
	mustInsert(t, e, "Ann", "30", "true")

	before := readDocument(t, store, "users")

	_, err := e.Update("users", "ghost", "1", Predicate{Column: "age", Value: "30"})
	if !errors.Is(err, schema.ErrUnknownColumn) {
		t.Fatalf("error = %v, want ErrUnknownColumn", err)
	}
	_, err = e.Update("users", "age", "31", Predicate{Column: "ghost", Value: "1"})
	if !errors.Is(err, schema.ErrUnknownColumn) {
		t.Fatalf("error = %v, want ErrUnknownColumn", err)
	}

	after := readDocument(t, store, "users")
	if string(before) != string(after) {
		t.Error("document changed despite failed update")
	}
}

func TestDeleteThenSelectSamePredicate(t *testing.T) {
	e, _ := newTestEngine(t)

	mustInsert(t, e, "Ann", "30", "true")
	mustInsert(t, e, "Bob", "30", "false")
	mustInsert(t, e, "Cid", "40", "true")

	ids, err := e.Delete("users", Predicate{Column: "age", Value: "30"})
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if diff := cmp.Diff([]int64{1, 2}, ids); diff != "" {
		t.Errorf("ids mismatch (-want +got):\n%s", diff)
	}

	records, err := e.Select("users", &Predicate{Column: "age", Value: "30"})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("len = %d, want 0 after deleting all matches", len(records))
	}

	// The unmatched record survives.
	all, err := e.Select("users", nil)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if len(all) != 1 || all[0].ID() != 3 {
		t.Errorf("surviving records = %v, want just ID 3", all)
	}
}

func TestDeleteNoMatchesLeavesDocumentUntouched(t *testing.T) {
	e, store := newTestEngine(t)
	mustInsert(t, e, "Ann", "30", "true")

	before := readDocument(t, store, "users")

	ids, err := e.Delete("users", Predicate{Column: "age", Value: "99"})
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("ids = %v, want none", ids)
	}

	after := readDocument(t, store, "users")
	if string(before) != string(after) {
		t.Error("document changed despite zero matches")
	}
}

func TestDescribe(t *testing.T) {
	e, _ := newTestEngine(t)

	tbl, err := e.Describe("users")
	if err != nil {
		t.Fatalf("Describe: %v", err)
	}
	if tbl.Columns[0].Name != schema.IDColumn {
		t.Errorf("first column = %q, want ID", tbl.Columns[0].Name)
	}

	if _, err := e.Describe("ghost"); !errors.Is(err, schema.ErrUnknownTable) {
		t.Errorf("error = %v, want ErrUnknownTable", err)
	}
}

func mustInsert(t *testing.T, e *Engine, name, age, active string) {
	t.Helper()
	if _, err := e.Insert("users", []string{name, age, active}); err != nil {
		t.Fatalf("Insert(%q): %v", name, err)
	}
}
