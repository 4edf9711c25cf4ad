package storage

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnsupportedStore = errors.New("storage: unsupported backend")

// NewStore opens the backend named by kind. The empty kind selects the
// in-memory store; sqlitePath is only read by the sqlite backend.
func NewStore(kind, sqlitePath string) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		if sqlitePath == "" {
			return nil, errors.New("storage: sqlite backend needs a database path")
		}
		return newSQLiteStore(sqlitePath)
	default:
		return nil, fmt.Errorf("%w %q (want memory or sqlite)", ErrUnsupportedStore, kind)
	}
}

// CloseIfSupported releases backends that hold resources.
func CloseIfSupported(store Store) error {
	if store == nil {
		return nil
	}
	closer, ok := store.(interface{ Close() error })
	if !ok {
		return nil
	}
	return closer.Close()
}
