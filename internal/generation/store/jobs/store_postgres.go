package jobs

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"datareplicator/internal/generation/models"
	dErrors "datareplicator/pkg/domain-errors"
)

// PostgresStore persists job results in PostgreSQL as JSONB documents. The
// result payload is written whole on every save; jobs are small and terminal
// results never change again.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed job store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the backing table when it does not exist yet.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS generation_jobs (
			job_id     TEXT PRIMARY KEY,
			status     TEXT NOT NULL,
			result     JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("migrate generation_jobs: %w", err)
	}
	return nil
}

func (s *PostgresStore) Save(ctx context.Context, result *models.GenerationJobResult) error {
	if result == nil || result.JobID == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "job result with an id is required")
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal job result: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO generation_jobs (job_id, status, result, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (job_id)
		DO UPDATE SET status = EXCLUDED.status, result = EXCLUDED.result, updated_at = now()`,
		result.JobID, string(result.Status), payload)
	if err != nil {
		return fmt.Errorf("save job %s: %w", result.JobID, err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, jobID string) (*models.GenerationJobResult, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT result FROM generation_jobs WHERE job_id = $1`, jobID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, dErrors.Newf(dErrors.CodeNotFound, "job %s not found", jobID)
	}
	if err != nil {
		return nil, fmt.Errorf("get job %s: %w", jobID, err)
	}

	var result models.GenerationJobResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, fmt.Errorf("decode job %s: %w", jobID, err)
	}
	return &result, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*models.GenerationJobResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT result FROM generation_jobs ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var out []*models.GenerationJobResult
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan job row: %w", err)
		}
		var result models.GenerationJobResult
		if err := json.Unmarshal(payload, &result); err != nil {
			return nil, fmt.Errorf("decode job row: %w", err)
		}
		out = append(out, &result)
	}
	return out, rows.Err()
}
