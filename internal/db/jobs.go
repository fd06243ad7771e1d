package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonathan/talent-matcher/internal/types"
)

const jobColumns = `id, title, raw_text, profile, embedding, vector_dims(embedding),
	embedding_status, embedding_error, embedding_model, embedding_updated_at, created_at, updated_at`

// CreateJob inserts a job and fills in its ID and timestamps.
func (db *DB) CreateJob(ctx context.Context, j *types.Job) error {
	profileJSON, err := marshalJSON(j.Profile, "job profile")
	if err != nil {
		return err
	}

	err = db.pool.QueryRow(ctx,
		`INSERT INTO jobs (title, raw_text, profile, embedding_status)
		 VALUES ($1, $2, $3, 'pending')
		 RETURNING id, embedding_status, created_at, updated_at`,
		j.Title, j.RawText, profileJSON,
	).Scan(&j.ID, &j.Embedding.Status, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}
	return nil
}

// GetJob retrieves a job with its profile and embedding.
// Returns nil, nil when no job has the ID.
func (db *DB) GetJob(ctx context.Context, id uuid.UUID) (*types.Job, error) {
	row := db.pool.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id)
	j, err := scanJob(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return j, nil
}

// ListJobs returns every job, newest first.
func (db *DB) ListJobs(ctx context.Context) ([]types.Job, error) {
	rows, err := db.pool.Query(ctx, `SELECT `+jobColumns+` FROM jobs ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	jobs := []types.Job{}
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, *j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	return jobs, nil
}

// ReplaceJobProfile overwrites the profile and resets the embedding to pending.
// Returns false when no job has the ID.
func (db *DB) ReplaceJobProfile(ctx context.Context, id uuid.UUID, profile *types.JobProfile) (bool, error) {
	profileJSON, err := marshalJSON(profile, "job profile")
	if err != nil {
		return false, err
	}

	tag, err := db.pool.Exec(ctx,
		`UPDATE jobs
		 SET profile = $2, embedding = NULL, embedding_status = 'pending', embedding_error = NULL,
		     embedding_model = NULL, embedding_updated_at = NOW(), updated_at = NOW()
		 WHERE id = $1`,
		id, profileJSON,
	)
	if err != nil {
		return false, fmt.Errorf("failed to replace job profile: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// DeleteJob removes a job and, by cascade, its matches.
func (db *DB) DeleteJob(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := db.pool.Exec(ctx, `DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete job: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanJob(row pgx.Row) (*types.Job, error) {
	var j types.Job
	var profileJSON []byte
	var emb embeddingColumns

	err := row.Scan(&j.ID, &j.Title, &j.RawText, &profileJSON,
		&emb.vector, &emb.dims, &emb.status, &emb.errMsg, &emb.model, &emb.updatedAt,
		&j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if len(profileJSON) > 0 {
		j.Profile = &types.JobProfile{}
		if err := unmarshalJSON(profileJSON, j.Profile, "job profile"); err != nil {
			return nil, err
		}
		j.Profile.Embedding = emb.slice()
	}
	j.Embedding = emb.state()
	return &j, nil
}
