package store

import (
	"testing"
)

type fakeCHRows struct {
	nexts  int
	closed bool
	err    error
}

func (f *fakeCHRows) Next() bool             { f.nexts++; return false }
func (f *fakeCHRows) Scan(dest ...any) error { return nil }
func (f *fakeCHRows) Err() error             { return f.err }
func (f *fakeCHRows) Close() error           { f.closed = true; return nil }
func (f *fakeCHRows) Columns() []string      { return []string{"alpha", "beta"} }

// TestRowsAdapter_Delegates confirms the adapter passes through to ch.Rows
func TestRowsAdapter_Delegates(t *testing.T) {
	t.Parallel()

	f := &fakeCHRows{}
	r := &rowsAdapter{r: f}

	if r.Next() {
		t.Fatalf("Next should be false on fake")
	}
	var v int
	if err := r.Scan(&v); err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if r.Err() != nil {
		t.Fatalf("Err should be nil")
	}
	if cols := r.Columns(); len(cols) != 2 || cols[0] != "alpha" {
		t.Fatalf("Columns mismatch: %#v", cols)
	}
	r.Close()
	if !f.closed {
		t.Fatalf("Close did not delegate")
	}
}
