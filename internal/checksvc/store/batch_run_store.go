package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/avvvet/cardcheck-services/internal/checksvc/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// BatchRunStore keeps run summaries only; no card data is written.
type BatchRunStore struct {
	db *pgxpool.Pool
}

func NewBatchRunStore(db *pgxpool.Pool) *BatchRunStore {
	return &BatchRunStore{db: db}
}

func (s *BatchRunStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS batch_runs (
			id           UUID PRIMARY KEY,
			total        INTEGER NOT NULL,
			valid        INTEGER NOT NULL,
			invalid      INTEGER NOT NULL,
			workers      INTEGER NOT NULL,
			started_at   TIMESTAMPTZ NOT NULL,
			completed_at TIMESTAMPTZ NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("create batch_runs: %w", err)
	}
	return nil
}

func (s *BatchRunStore) Create(ctx context.Context, run models.BatchRun) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO batch_runs (id, total, valid, invalid, workers, started_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, run.ID, run.Total, run.Valid, run.Invalid, run.Workers, run.StartedAt, run.CompletedAt)
	if err != nil {
		return fmt.Errorf("could not record batch run: %w", err)
	}
	return nil
}

// GetByID returns nil, nil when the run does not exist.
func (s *BatchRunStore) GetByID(ctx context.Context, id string) (*models.BatchRun, error) {
	var run models.BatchRun
	err := s.db.QueryRow(ctx, `
		SELECT id::text, total, valid, invalid, workers, started_at, completed_at
		FROM batch_runs
		WHERE id = $1
	`, id).Scan(
		&run.ID,
		&run.Total,
		&run.Valid,
		&run.Invalid,
		&run.Workers,
		&run.StartedAt,
		&run.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get batch run: %w", err)
	}
	return &run, nil
}
