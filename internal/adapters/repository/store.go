// Package repository defines the analysis store interface and errors.
package repository

import (
	"context"

	"github.com/okian/workpulse/internal/domain/model"
)

// Store keeps analyses by ID.
//
// Stored values are treated as immutable snapshots: callers replace an
// analysis by saving a new value and never modify one after Save or Get.
type Store interface {
	// Save inserts or replaces the analysis under a.ID.
	Save(ctx context.Context, a *model.Analysis) error

	// Get returns the analysis with id or ErrNotFound.
	Get(ctx context.Context, id string) (*model.Analysis, error)

	// List returns up to limit analyses, most recently saved first.
	List(ctx context.Context, limit int) ([]*model.Analysis, error)

	// Count returns the number of analyses held.
	Count(ctx context.Context) int
}
