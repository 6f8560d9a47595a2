package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"aerospace_valuation/pkg/models"
)

// DefaultResultsDir is used when no directory is configured.
var DefaultResultsDir = filepath.Join(".cache", "valuation", "runs")

// FileRepository keeps one indented JSON file per run.
type FileRepository struct {
	dir string
}

// NewFileRepository creates dir if needed. An empty dir means
// DefaultResultsDir.
func NewFileRepository(dir string) (*FileRepository, error) {
	if dir == "" {
		dir = DefaultResultsDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create results dir: %w", err)
	}
	return &FileRepository{dir: dir}, nil
}

func (r *FileRepository) Dir() string { return r.dir }

func (r *FileRepository) Save(ctx context.Context, run *models.Run) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	Prepare(run)
	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run: %w", err)
	}
	path := r.path(run.ID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to save run file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to save run file: %w", err)
	}
	return nil
}

func (r *FileRepository) Load(ctx context.Context, id string) (*models.Run, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(r.path(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, err
	}
	var run models.Run
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run %s: %w", id, err)
	}
	return &run, nil
}

// List scans the directory; unreadable files are skipped.
func (r *FileRepository) List(ctx context.Context, limit int) ([]models.Run, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, err
	}
	var runs []models.Run
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		run, err := r.Load(ctx, strings.TrimSuffix(e.Name(), ".json"))
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}
		runs = append(runs, *run)
	}
	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].CreatedAt.After(runs[j].CreatedAt)
	})
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

func (r *FileRepository) path(id string) string {
	safe := strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(id)
	return filepath.Join(r.dir, safe+".json")
}
