package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonathan/talent-matcher/internal/types"
	"github.com/pgvector/pgvector-go"
)

const candidateColumns = `id, name, file_name, raw_text, profile, embedding, vector_dims(embedding),
	embedding_status, embedding_error, embedding_model, embedding_updated_at, created_at, updated_at`

// CreateCandidate inserts a candidate and fills in its ID and timestamps.
func (db *DB) CreateCandidate(ctx context.Context, c *types.Candidate) error {
	profileJSON, err := marshalJSON(c.Profile, "candidate profile")
	if err != nil {
		return err
	}

	err = db.pool.QueryRow(ctx,
		`INSERT INTO candidates (name, file_name, raw_text, profile, embedding_status)
		 VALUES ($1, $2, $3, $4, 'pending')
		 RETURNING id, embedding_status, created_at, updated_at`,
		c.Name, c.FileName, c.RawText, profileJSON,
	).Scan(&c.ID, &c.Embedding.Status, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create candidate: %w", err)
	}
	return nil
}

// GetCandidate retrieves a candidate with its profile and embedding.
// Returns nil, nil when no candidate has the ID.
func (db *DB) GetCandidate(ctx context.Context, id uuid.UUID) (*types.Candidate, error) {
	row := db.pool.QueryRow(ctx, `SELECT `+candidateColumns+` FROM candidates WHERE id = $1`, id)
	c, err := scanCandidate(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get candidate: %w", err)
	}
	return c, nil
}

// ListCandidates returns every candidate, newest first.
func (db *DB) ListCandidates(ctx context.Context) ([]types.Candidate, error) {
	rows, err := db.pool.Query(ctx, `SELECT `+candidateColumns+` FROM candidates ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}
	defer rows.Close()

	candidates := []types.Candidate{}
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		candidates = append(candidates, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}
	return candidates, nil
}

// ReplaceCandidateProfile overwrites the profile and resets the embedding to
// pending. Returns false when no candidate has the ID.
func (db *DB) ReplaceCandidateProfile(ctx context.Context, id uuid.UUID, profile *types.CandidateProfile) (bool, error) {
	profileJSON, err := marshalJSON(profile, "candidate profile")
	if err != nil {
		return false, err
	}

	tag, err := db.pool.Exec(ctx,
		`UPDATE candidates
		 SET profile = $2, embedding = NULL, embedding_status = 'pending', embedding_error = NULL,
		     embedding_model = NULL, embedding_updated_at = NOW(), updated_at = NOW()
		 WHERE id = $1`,
		id, profileJSON,
	)
	if err != nil {
		return false, fmt.Errorf("failed to replace candidate profile: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// DeleteCandidate removes a candidate and, by cascade, its matches.
func (db *DB) DeleteCandidate(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := db.pool.Exec(ctx, `DELETE FROM candidates WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete candidate: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanCandidate(row pgx.Row) (*types.Candidate, error) {
	var c types.Candidate
	var profileJSON []byte
	var emb embeddingColumns

	err := row.Scan(&c.ID, &c.Name, &c.FileName, &c.RawText, &profileJSON,
		&emb.vector, &emb.dims, &emb.status, &emb.errMsg, &emb.model, &emb.updatedAt,
		&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if len(profileJSON) > 0 {
		c.Profile = &types.CandidateProfile{}
		if err := unmarshalJSON(profileJSON, c.Profile, "candidate profile"); err != nil {
			return nil, err
		}
		c.Profile.Embedding = emb.slice()
	}
	c.Embedding = emb.state()
	return &c, nil
}

// embeddingColumns holds the nullable embedding columns shared by candidates and jobs.
type embeddingColumns struct {
	vector    *pgvector.Vector
	dims      *int
	status    string
	errMsg    *string
	model     *string
	updatedAt *time.Time
}

func (e embeddingColumns) slice() []float32 {
	if e.vector == nil {
		return nil
	}
	return e.vector.Slice()
}

func (e embeddingColumns) state() types.EmbeddingState {
	s := types.EmbeddingState{
		Status:    types.EmbeddingStatus(e.status),
		UpdatedAt: e.updatedAt,
	}
	if e.errMsg != nil {
		s.Error = *e.errMsg
	}
	if e.model != nil {
		s.Model = *e.model
	}
	if e.dims != nil {
		s.Dimensions = *e.dims
	}
	return s
}
