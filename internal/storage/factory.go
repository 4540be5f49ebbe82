package storage

import "fmt"

// NewStore builds an uninitialized store. path is the database file for
// sqlite and the directory for leveldb; memory ignores it.
func NewStore(kind, path string) (Store, error) {
	switch kind {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return newSQLiteStore(path)
	case "leveldb":
		return NewLevelDBStore(path), nil
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", kind)
	}
}

func CloseIfSupported(store Store) error {
	closer, ok := store.(interface{ Close() error })
	if !ok {
		return nil
	}
	return closer.Close()
}

// DefaultStoreKind is the backend used when none is named. It is the only
// persistent backend available in every build.
func DefaultStoreKind() string {
	return "leveldb"
}
