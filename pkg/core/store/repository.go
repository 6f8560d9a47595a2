// Package store persists valuation runs. Postgres is the primary vault; a
// directory of JSON files serves local use and as a fallback.
package store

import (
	"context"
	"errors"
	"time"

	"aerospace_valuation/pkg/models"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no run matches the id.
var ErrNotFound = errors.New("run not found")

// Repository stores and retrieves valuation runs.
type Repository interface {
	Save(ctx context.Context, run *models.Run) error
	Load(ctx context.Context, id string) (*models.Run, error)
	// List returns up to limit runs, newest first. limit <= 0 means all.
	List(ctx context.Context, limit int) ([]models.Run, error)
}

// Prepare assigns an id and timestamp to a run that lacks them.
func Prepare(run *models.Run) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
}
