package storage

import (
	"errors"
	"strings"
	"testing"
)

func TestNewStoreMemory(t *testing.T) {
	for _, kind := range []string{"", "memory"} {
		store, err := NewStore(kind, "")
		if err != nil {
			t.Fatalf("new memory store %q: %v", kind, err)
		}
		if _, ok := store.(*MemoryStore); !ok {
			t.Fatalf("expected memory store for %q, got %T", kind, store)
		}
		if err := CloseIfSupported(store); err != nil {
			t.Fatalf("close memory store: %v", err)
		}
	}
}

func TestNewStoreUnsupported(t *testing.T) {
	_, err := NewStore("unknown", "")
	if !errors.Is(err, ErrUnsupportedStore) {
		t.Fatalf("expected ErrUnsupportedStore, got %v", err)
	}
	if !strings.HasPrefix(err.Error(), "storage: ") || !strings.Contains(err.Error(), `"unknown"`) {
		t.Fatalf("unexpected error text: %v", err)
	}
}

func TestNewStoreNormalizesKind(t *testing.T) {
	store, err := NewStore(" Memory ", "")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if _, ok := store.(*MemoryStore); !ok {
		t.Fatalf("expected memory store, got %T", store)
	}
}

func TestNewStoreSQLiteNeedsPath(t *testing.T) {
	if _, err := NewStore("sqlite", ""); err == nil {
		t.Fatal("expected an error for an empty sqlite path")
	}
}

func TestCloseIfSupportedNilStore(t *testing.T) {
	if err := CloseIfSupported(nil); err != nil {
		t.Fatalf("close nil store: %v", err)
	}
}
