package storage

import (
	"context"
	"path/filepath"
	"testing"
)

func TestLevelDBStoreRunHistory(t *testing.T) {
	store := NewLevelDBStore(filepath.Join(t.TempDir(), "history"))
	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	exerciseStore(t, store)
}

func TestLevelDBStoreReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history")

	store := NewLevelDBStore(path)
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	for gen := range 12 {
		if err := store.AppendGeneration(ctx, sampleGeneration("run-1", gen, float64(12-gen))); err != nil {
			t.Fatalf("append generation %d: %v", gen, err)
		}
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened := NewLevelDBStore(path)
	if err := reopened.Init(ctx); err != nil {
		t.Fatalf("reopen: %v", err)
	}
	t.Cleanup(func() {
		_ = reopened.Close()
	})

	records, ok, err := reopened.GetGenerations(ctx, "run-1")
	if err != nil || !ok {
		t.Fatalf("get generations: ok=%t err=%v", ok, err)
	}
	if len(records) != 12 {
		t.Fatalf("expected 12 generations, got %d", len(records))
	}
	// generation 10 must sort after 9, not after 1
	if records[10].Diagnostics.Generation != 10 {
		t.Fatalf("unexpected order: %+v", records[10].Diagnostics)
	}
}

func TestLevelDBStoreRequiresPath(t *testing.T) {
	if err := NewLevelDBStore("").Init(context.Background()); err == nil {
		t.Fatal("expected missing path error")
	}
}
