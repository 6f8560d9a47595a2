package store

import (
	"context"
	"errors"
	"log/slog"

	"aerospace_valuation/pkg/core/logging"
	"aerospace_valuation/pkg/models"
)

// HybridRepository writes to the primary vault and always mirrors to the
// fallback; reads try the primary first.
type HybridRepository struct {
	primary  Repository
	fallback Repository
}

// NewHybridRepository with a nil primary behaves like the fallback alone.
func NewHybridRepository(primary, fallback Repository) *HybridRepository {
	return &HybridRepository{primary: primary, fallback: fallback}
}

// Save fails only when every configured vault fails.
func (r *HybridRepository) Save(ctx context.Context, run *models.Run) error {
	Prepare(run)
	var primaryErr error
	if r.primary != nil {
		primaryErr = r.primary.Save(ctx, run)
		if primaryErr != nil {
			logging.LogError(logging.FromContext(ctx), "primary store failed", primaryErr,
				slog.String("run_id", run.ID))
		}
	}
	if r.fallback == nil {
		return primaryErr
	}
	if err := r.fallback.Save(ctx, run); err != nil {
		if r.primary == nil || primaryErr != nil {
			return errors.Join(primaryErr, err)
		}
		logging.LogError(logging.FromContext(ctx), "fallback store failed", err,
			slog.String("run_id", run.ID))
	}
	return nil
}

func (r *HybridRepository) Load(ctx context.Context, id string) (*models.Run, error) {
	var primaryErr error
	if r.primary != nil {
		run, err := r.primary.Load(ctx, id)
		if err == nil {
			return run, nil
		}
		primaryErr = err
	}
	if r.fallback == nil {
		return nil, primaryErr
	}
	return r.fallback.Load(ctx, id)
}

func (r *HybridRepository) List(ctx context.Context, limit int) ([]models.Run, error) {
	if r.primary != nil {
		runs, err := r.primary.List(ctx, limit)
		if err == nil {
			return runs, nil
		}
		if r.fallback == nil {
			return nil, err
		}
		logging.LogError(logging.FromContext(ctx), "primary store list failed", err)
	}
	if r.fallback == nil {
		return nil, nil
	}
	return r.fallback.List(ctx, limit)
}
