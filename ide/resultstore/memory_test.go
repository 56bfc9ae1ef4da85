package resultstore

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryStoreSaveAndLoadRun(t *testing.T) {
	s := NewMemoryStore()
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

func TestMemoryStoreLoadRunNotFound(t *testing.T) {
	s := NewMemoryStore()
	_, err := s.LoadRun(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("LoadRun(missing) err = %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreSaveRunOverwritesPriorRun(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	_ = s.SaveRun(ctx, "r1", []FactRecord{{RunID: "r1", Node: "n1"}})
	_ = s.SaveRun(ctx, "r1", []FactRecord{{RunID: "r1", Node: "n2"}, {RunID: "r1", Node: "n3"}})

	loaded, _ := s.LoadRun(ctx, "r1")
	if len(loaded) != 2 {
		t.Fatalf("SaveRun should overwrite, got %v", loaded)
	}
}

func TestMemoryStoreDeleteRun(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	_ = s.SaveRun(ctx, "r1", []FactRecord{{RunID: "r1", Node: "n1"}})

	if err := s.DeleteRun(ctx, "r1"); err != nil {
		t.Fatalf("DeleteRun: %v", err)
	}
	if _, err := s.LoadRun(ctx, "r1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("LoadRun after DeleteRun err = %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreLoadRunReturnsCopyNotAlias(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	_ = s.SaveRun(ctx, "r1", []FactRecord{{RunID: "r1", Node: "n1", Value: "orig"}})

	loaded, _ := s.LoadRun(ctx, "r1")
	loaded[0].Value = "mutated"

	loadedAgain, _ := s.LoadRun(ctx, "r1")
	if loadedAgain[0].Value != "orig" {
		t.Fatalf("mutating a loaded slice should not affect the store, got %q", loadedAgain[0].Value)
	}
}
