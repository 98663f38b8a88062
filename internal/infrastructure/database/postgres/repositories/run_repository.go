// Package repositories implements the persistence ports on PostgreSQL.
package repositories

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rankforge/rankforge/internal/domain/research"
	apperrors "github.com/rankforge/rankforge/pkg/errors"
	"github.com/rankforge/rankforge/pkg/types/common"
)

// RunRepository persists research runs.
type RunRepository struct {
	pool *pgxpool.Pool
}

// NewRunRepository builds a RunRepository.
func NewRunRepository(pool *pgxpool.Pool) *RunRepository {
	return &RunRepository{pool: pool}
}

const runColumns = `id, project_id, status, domain, niche, competitors,
	seed_keywords, progress_log, total_found, error_message, created_at,
	started_at, finished_at`

// Create inserts a new run.
func (r *RunRepository) Create(ctx context.Context, run *research.Run) error {
	competitors, seeds, progress, err := marshalRunJSON(run)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO research_runs (`+runColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		run.ID.String(), run.ProjectID.String(), string(run.Status),
		run.Domain, run.Niche, competitors, seeds, progress,
		run.TotalFound, run.ErrorMessage, run.CreatedAt, run.StartedAt, run.FinishedAt)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "insert research run")
	}
	return nil
}

// GetByID fetches one run.
func (r *RunRepository) GetByID(ctx context.Context, id common.ID) (*research.Run, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+runColumns+`
		FROM research_runs
		WHERE id = $1`, id.String())
	return scanRun(row)
}

// Update rewrites the run's mutable fields.
func (r *RunRepository) Update(ctx context.Context, run *research.Run) error {
	_, seeds, progress, err := marshalRunJSON(run)
	if err != nil {
		return err
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE research_runs
		SET status = $2, seed_keywords = $3, progress_log = $4,
		    total_found = $5, error_message = $6, started_at = $7, finished_at = $8
		WHERE id = $1`,
		run.ID.String(), string(run.Status), seeds, progress,
		run.TotalFound, run.ErrorMessage, run.StartedAt, run.FinishedAt)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "update research run")
	}
	if tag.RowsAffected() == 0 {
		return apperrors.New(apperrors.ErrCodeRunNotFound, "research run not found")
	}
	return nil
}

// NextPending atomically claims the oldest pending run, moving it to
// processing so concurrent workers never pick the same run. Returns (nil,
// nil) when no run is waiting.
func (r *RunRepository) NextPending(ctx context.Context) (*research.Run, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE research_runs
		SET status = 'processing', started_at = now()
		WHERE id = (
			SELECT id FROM research_runs
			WHERE status = 'pending'
			ORDER BY created_at
			FOR UPDATE SKIP LOCKED
			LIMIT 1
		)
		RETURNING `+runColumns)

	run, err := scanRun(row)
	if err != nil {
		if apperrors.IsCode(err, apperrors.ErrCodeRunNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return run, nil
}

func marshalRunJSON(run *research.Run) (competitors, seeds, progress []byte, err error) {
	if competitors, err = json.Marshal(run.Competitors); err != nil {
		return nil, nil, nil, apperrors.Wrap(err, apperrors.ErrCodeSerialization, "marshal competitors")
	}
	if seeds, err = json.Marshal(run.SeedKeywords); err != nil {
		return nil, nil, nil, apperrors.Wrap(err, apperrors.ErrCodeSerialization, "marshal seed keywords")
	}
	if progress, err = json.Marshal(run.ProgressLog); err != nil {
		return nil, nil, nil, apperrors.Wrap(err, apperrors.ErrCodeSerialization, "marshal progress log")
	}
	return competitors, seeds, progress, nil
}

func scanRun(row pgx.Row) (*research.Run, error) {
	var (
		run         research.Run
		id          string
		projectID   string
		status      string
		competitors []byte
		seeds       []byte
		progress    []byte
	)
	err := row.Scan(&id, &projectID, &status, &run.Domain, &run.Niche,
		&competitors, &seeds, &progress, &run.TotalFound, &run.ErrorMessage,
		&run.CreatedAt, &run.StartedAt, &run.FinishedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.New(apperrors.ErrCodeRunNotFound, "research run not found")
		}
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "scan research run")
	}

	run.ID = common.ID(id)
	run.ProjectID = common.ID(projectID)
	run.Status = research.Status(status)
	if err := json.Unmarshal(competitors, &run.Competitors); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeSerialization, "unmarshal competitors")
	}
	if err := json.Unmarshal(seeds, &run.SeedKeywords); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeSerialization, "unmarshal seed keywords")
	}
	if err := json.Unmarshal(progress, &run.ProgressLog); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeSerialization, "unmarshal progress log")
	}
	return &run, nil
}
