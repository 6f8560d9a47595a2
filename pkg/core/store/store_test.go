package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"aerospace_valuation/pkg/core/scenario"
	"aerospace_valuation/pkg/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRun(kind string, total float64, at time.Time) *models.Run {
	return &models.Run{
		Kind:      kind,
		Scenario:  scenario.BaseCase(),
		Result:    models.ValuationResult{Earth: 124.5, Mars: 0.75, Total: total},
		CreatedAt: at,
	}
}

func TestPrepare(t *testing.T) {
	run := &models.Run{}
	Prepare(run)
	_, err := uuid.Parse(run.ID)
	assert.NoError(t, err)
	assert.False(t, run.CreatedAt.IsZero())

	id := run.ID
	Prepare(run)
	assert.Equal(t, id, run.ID)
}

func TestFileRepository(t *testing.T) {
	ctx := context.Background()
	repo, err := NewFileRepository(t.TempDir())
	require.NoError(t, err)

	t.Run("save and load", func(t *testing.T) {
		run := newRun("total", 2400.6, time.Time{})
		require.NoError(t, repo.Save(ctx, run))
		require.NotEmpty(t, run.ID)

		got, err := repo.Load(ctx, run.ID)
		require.NoError(t, err)
		assert.Equal(t, run.Kind, got.Kind)
		assert.Equal(t, run.Result, got.Result)
		assert.Equal(t, scenario.BaseCase(), got.Scenario)
	})

	t.Run("missing run", func(t *testing.T) {
		_, err := repo.Load(ctx, uuid.NewString())
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("list newest first", func(t *testing.T) {
		dir := t.TempDir()
		r, err := NewFileRepository(dir)
		require.NoError(t, err)

		now := time.Now().UTC()
		require.NoError(t, r.Save(ctx, newRun("earth", 1, now.Add(-2*time.Hour))))
		require.NoError(t, r.Save(ctx, newRun("mars", 2, now)))
		require.NoError(t, r.Save(ctx, newRun("total", 3, now.Add(-time.Hour))))
		require.NoError(t, os.WriteFile(dir+"/junk.json", []byte("{"), 0o644))

		runs, err := r.List(ctx, 0)
		require.NoError(t, err)
		require.Len(t, runs, 3)
		assert.Equal(t, []string{"mars", "total", "earth"}, []string{runs[0].Kind, runs[1].Kind, runs[2].Kind})

		runs, err = r.List(ctx, 2)
		require.NoError(t, err)
		assert.Len(t, runs, 2)
	})

	t.Run("ids cannot escape the directory", func(t *testing.T) {
		assert.Equal(t, repo.Dir(), filepath.Dir(repo.path("../../etc/passwd")))
	})
}

type brokenRepo struct{}

var errBroken = errors.New("connection refused")

func (brokenRepo) Save(context.Context, *models.Run) error { return errBroken }
func (brokenRepo) Load(context.Context, string) (*models.Run, error) {
	return nil, errBroken
}
func (brokenRepo) List(context.Context, int) ([]models.Run, error) { return nil, errBroken }

func TestHybridRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("falls back when primary fails", func(t *testing.T) {
		files, err := NewFileRepository(t.TempDir())
		require.NoError(t, err)
		repo := NewHybridRepository(brokenRepo{}, files)

		run := newRun("total", 10, time.Time{})
		require.NoError(t, repo.Save(ctx, run))

		got, err := repo.Load(ctx, run.ID)
		require.NoError(t, err)
		assert.Equal(t, run.ID, got.ID)

		runs, err := repo.List(ctx, 0)
		require.NoError(t, err)
		assert.Len(t, runs, 1)
	})

	t.Run("mirrors to both", func(t *testing.T) {
		primary, err := NewFileRepository(t.TempDir())
		require.NoError(t, err)
		mirror, err := NewFileRepository(t.TempDir())
		require.NoError(t, err)
		repo := NewHybridRepository(primary, mirror)

		run := newRun("mars", 0.7, time.Time{})
		require.NoError(t, repo.Save(ctx, run))
		_, err = primary.Load(ctx, run.ID)
		assert.NoError(t, err)
		_, err = mirror.Load(ctx, run.ID)
		assert.NoError(t, err)
	})

	t.Run("fails when every vault fails", func(t *testing.T) {
		repo := NewHybridRepository(brokenRepo{}, brokenRepo{})
		assert.ErrorIs(t, repo.Save(ctx, newRun("total", 1, time.Time{})), errBroken)

		repo = NewHybridRepository(brokenRepo{}, nil)
		_, err := repo.Load(ctx, "x")
		assert.ErrorIs(t, err, errBroken)
	})
}

func TestPostgresRepository(t *testing.T) {
	if os.Getenv("DATABASE_URL") == "" {
		t.Skip("DATABASE_URL not set")
	}
	ctx := context.Background()
	require.NoError(t, InitDB(ctx))
	defer Close()
	require.NoError(t, EnsureSchema(ctx, GetPool()))

	repo := NewPostgresRepository(nil)
	run := newRun("total", 2400.6, time.Time{})
	require.NoError(t, repo.Save(ctx, run))

	got, err := repo.Load(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.Result, got.Result)

	_, err = repo.Load(ctx, uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostgresRepositoryWithoutPool(t *testing.T) {
	repo := &PostgresRepository{}
	assert.Error(t, repo.Save(context.Background(), newRun("total", 1, time.Time{})))
	_, err := repo.Load(context.Background(), uuid.NewString())
	assert.Error(t, err)
}
