// Package storage persists evolution run reports. Populations themselves are
// never stored.
package storage

import (
	"context"

	"genetica/internal/model"
)

// Store keeps run records keyed by run id.
type Store interface {
	Init(ctx context.Context) error
	SaveRun(ctx context.Context, run model.RunRecord) error
	GetRun(ctx context.Context, id string) (model.RunRecord, bool, error)
	// ListRuns returns the newest runs first. A limit <= 0 returns all.
	ListRuns(ctx context.Context, limit int) ([]model.RunRecord, error)
}
