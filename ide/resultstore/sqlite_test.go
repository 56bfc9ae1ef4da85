package resultstore

import (
	"context"
	"errors"
	"testing"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStoreSaveAndLoadRun(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	records := []FactRecord{
		{RunID: "r1", Node: "n1", Fact: "x", Value: "7"},
		{RunID: "r1", Node: "n2", Fact: "x", Value: "NAC"},
	}
	if err := s.SaveRun(ctx, "r1", records); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}

	loaded, err := s.LoadRun(ctx, "r1")
	if err != nil {
		t.Fatalf("LoadRun: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("loaded = %v, want 2 records", loaded)
	}
}

func TestSQLiteStoreLoadRunNotFound(t *testing.T) {
	s := newTestSQLiteStore(t)
	_, err := s.LoadRun(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("LoadRun(missing) err = %v, want ErrNotFound", err)
	}
}

func TestSQLiteStoreSaveRunReplacesPriorRun(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	_ = s.SaveRun(ctx, "r1", []FactRecord{{RunID: "r1", Node: "n1"}})
	_ = s.SaveRun(ctx, "r1", []FactRecord{{RunID: "r1", Node: "n2"}, {RunID: "r1", Node: "n3"}})

	loaded, err := s.LoadRun(ctx, "r1")
	if err != nil {
		t.Fatalf("LoadRun: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("SaveRun should replace the prior run's records, got %v", loaded)
	}
}

func TestSQLiteStoreDeleteRun(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()
	_ = s.SaveRun(ctx, "r1", []FactRecord{{RunID: "r1", Node: "n1"}})

	if err := s.DeleteRun(ctx, "r1"); err != nil {
		t.Fatalf("DeleteRun: %v", err)
	}
	if _, err := s.LoadRun(ctx, "r1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("LoadRun after DeleteRun err = %v, want ErrNotFound", err)
	}
}
