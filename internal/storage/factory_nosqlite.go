//go:build !sqlite

package storage

import "errors"

// ErrSQLiteUnavailable is returned by NewStore("sqlite", ...) in builds
// without the sqlite tag. Use leveldb or rebuild with -tags sqlite.
var ErrSQLiteUnavailable = errors.New("sqlite history backend not compiled in")

func newSQLiteStore(string) (Store, error) {
	return nil, ErrSQLiteUnavailable
}
