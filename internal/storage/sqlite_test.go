//go:build sqlite

package storage

import (
	"context"
	"path/filepath"
	"testing"
)

func TestSQLiteStoreRunHistory(t *testing.T) {
	store := NewSQLiteStore(filepath.Join(t.TempDir(), "asyncga.db"))
	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	exerciseStore(t, store)
}

func TestSQLiteStoreAppendGenerationReplaces(t *testing.T) {
	ctx := context.Background()
	store := NewSQLiteStore(filepath.Join(t.TempDir(), "asyncga.db"))
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	if err := store.AppendGeneration(ctx, sampleGeneration("run-1", 0, 5)); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := store.AppendGeneration(ctx, sampleGeneration("run-1", 0, 2)); err != nil {
		t.Fatalf("append again: %v", err)
	}
	records, ok, err := store.GetGenerations(ctx, "run-1")
	if err != nil || !ok {
		t.Fatalf("get generations: ok=%t err=%v", ok, err)
	}
	if len(records) != 1 || records[0].Diagnostics.BestFitness != 2 {
		t.Fatalf("unexpected generations: %+v", records)
	}
}
