package db

import (
	"context"
	"fmt"

	"github.com/jonathan/talent-matcher/internal/types"
	"github.com/pgvector/pgvector-go"
)

func tableFor(kind types.ProfileKind) (string, error) {
	switch kind {
	case types.KindCandidate:
		return "candidates", nil
	case types.KindJob:
		return "jobs", nil
	default:
		return "", fmt.Errorf("unknown embedding target kind %q", kind)
	}
}

// replacesVector reports whether a status transition overwrites the stored
// vector. Pending and processing keep the previous vector so matching can
// still use it until the new one lands.
func replacesVector(status types.EmbeddingStatus) bool {
	return status == types.EmbeddingReady || status == types.EmbeddingFailed
}

// UpdateEmbedding records an embedding status transition. A ready update stores
// the vector and model, a failed update clears them, and pending or processing
// updates leave them in place.
func (db *DB) UpdateEmbedding(ctx context.Context, target types.EmbeddingTarget, update types.EmbeddingUpdate) error {
	table, err := tableFor(target.Kind)
	if err != nil {
		return err
	}

	if !replacesVector(update.Status) {
		_, err = db.pool.Exec(ctx,
			`UPDATE `+table+`
			 SET embedding_status = $2, embedding_error = NULL, embedding_updated_at = NOW()
			 WHERE id = $1`,
			target.ID, string(update.Status),
		)
		if err != nil {
			return fmt.Errorf("failed to update %s embedding status: %w", target.Kind, err)
		}
		return nil
	}

	var vector *pgvector.Vector
	var model, errMsg *string
	if update.Status == types.EmbeddingReady {
		v := pgvector.NewVector(update.Vector)
		vector = &v
		model = &update.Model
	} else {
		errMsg = &update.Error
	}

	_, err = db.pool.Exec(ctx,
		`UPDATE `+table+`
		 SET embedding = $2, embedding_status = $3, embedding_model = $4, embedding_error = $5,
		     embedding_updated_at = NOW()
		 WHERE id = $1`,
		target.ID, vector, string(update.Status), model, errMsg,
	)
	if err != nil {
		return fmt.Errorf("failed to update %s embedding: %w", target.Kind, err)
	}
	return nil
}
