package storage

import (
	"path/filepath"
	"testing"
)

func TestNewStoreMemory(t *testing.T) {
	store, err := NewStore("memory", "")
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	if store == nil {
		t.Fatal("expected non-nil store")
	}
	if err := CloseIfSupported(store); err != nil {
		t.Fatalf("close memory store: %v", err)
	}
}

func TestNewStoreLevelDB(t *testing.T) {
	store, err := NewStore("leveldb", filepath.Join(t.TempDir(), "db"))
	if err != nil {
		t.Fatalf("new leveldb store: %v", err)
	}
	if _, ok := store.(*LevelDBStore); !ok {
		t.Fatalf("expected leveldb store, got %T", store)
	}
}

func TestNewStoreUnsupported(t *testing.T) {
	_, err := NewStore("unknown", "")
	if err == nil {
		t.Fatal("expected unsupported store error")
	}
}

func TestDefaultStoreKindIsBuildable(t *testing.T) {
	if _, err := NewStore(DefaultStoreKind(), filepath.Join(t.TempDir(), "db")); err != nil {
		t.Fatalf("default store kind: %v", err)
	}
}
