//go:build !sqlite

package storage

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestNewStoreSQLiteNeedsBuildTag(t *testing.T) {
	_, err := NewStore("sqlite", filepath.Join(t.TempDir(), "history.db"))
	if !errors.Is(err, ErrSQLiteUnavailable) {
		t.Fatalf("expected ErrSQLiteUnavailable, got %v", err)
	}
}
