package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"aerospace_valuation/pkg/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository keeps runs in the valuation_runs table as JSONB.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository uses p, or the pool from InitDB when p is nil.
func NewPostgresRepository(p *pgxpool.Pool) *PostgresRepository {
	if p == nil {
		p = GetPool()
	}
	return &PostgresRepository{pool: p}
}

// Save upserts the run by id.
func (r *PostgresRepository) Save(ctx context.Context, run *models.Run) error {
	if r.pool == nil {
		return fmt.Errorf("database pool not initialized")
	}
	Prepare(run)
	id, err := uuid.Parse(run.ID)
	if err != nil {
		return fmt.Errorf("invalid run id %q: %w", run.ID, err)
	}
	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to marshal run: %w", err)
	}

	query := `
		INSERT INTO valuation_runs (id, kind, total, run_json, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id)
		DO UPDATE SET
			kind = EXCLUDED.kind,
			total = EXCLUDED.total,
			run_json = EXCLUDED.run_json;
	`
	if _, err := r.pool.Exec(ctx, query, id, run.Kind, run.Result.Total, data, run.CreatedAt); err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Load(ctx context.Context, id string) (*models.Run, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}
	key, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	var data []byte
	err = r.pool.QueryRow(ctx, `SELECT run_json FROM valuation_runs WHERE id = $1`, key).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to load run: %w", err)
	}
	var run models.Run
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run: %w", err)
	}
	return &run, nil
}

func (r *PostgresRepository) List(ctx context.Context, limit int) ([]models.Run, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}
	query := `SELECT run_json FROM valuation_runs ORDER BY created_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []models.Run
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		var run models.Run
		if err := json.Unmarshal(data, &run); err != nil {
			return nil, fmt.Errorf("failed to unmarshal run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
