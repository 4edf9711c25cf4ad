//go:build !sqlite

package storage

import (
	"errors"
	"testing"
)

func TestNewStoreSQLiteUnavailable(t *testing.T) {
	_, err := NewStore("sqlite", "genetica.db")
	if !errors.Is(err, ErrUnsupportedStore) {
		t.Fatalf("expected sqlite backend to be unsupported without the sqlite tag, got %v", err)
	}
}

func TestDefaultStoreKindWithoutSQLite(t *testing.T) {
	if got := DefaultStoreKind(); got != "memory" {
		t.Fatalf("expected memory default store, got %q", got)
	}
}
