package matching

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonathan/talent-matcher/internal/types"
)

// EmbeddingStatus returns the pollable embedding state of a candidate or job.
func (s *Service) EmbeddingStatus(ctx context.Context, target types.EmbeddingTarget) (types.EmbeddingState, error) {
	switch target.Kind {
	case types.KindCandidate:
		c, err := s.GetCandidate(ctx, target.ID)
		if err != nil {
			return types.EmbeddingState{}, err
		}
		return c.Embedding, nil
	case types.KindJob:
		j, err := s.GetJob(ctx, target.ID)
		if err != nil {
			return types.EmbeddingState{}, err
		}
		return j.Embedding, nil
	default:
		return types.EmbeddingState{}, &ValidationError{Field: "kind", Message: fmt.Sprintf("unknown kind %q", target.Kind)}
	}
}

// GenerateEmbedding schedules (re)generation of one embedding and returns the
// pending state. Failed embeddings are retried this way.
func (s *Service) GenerateEmbedding(ctx context.Context, target types.EmbeddingTarget) (types.EmbeddingState, error) {
	if _, err := s.EmbeddingStatus(ctx, target); err != nil {
		return types.EmbeddingState{}, err
	}
	if s.embedder == nil {
		return types.EmbeddingState{}, ErrEmbeddingDisabled
	}
	if err := s.embedder.Submit(ctx, target); err != nil {
		return types.EmbeddingState{}, fmt.Errorf("failed to schedule embedding: %w", err)
	}
	return types.EmbeddingState{Status: types.EmbeddingPending}, nil
}

// BatchEmbeddingResult reports a batch embedding request.
type BatchEmbeddingResult struct {
	Submitted int `json:"submitted"`
	Skipped   int `json:"skipped"`
}

// GenerateMissingEmbeddings schedules every candidate or job whose embedding
// is not ready. One failure to schedule does not stop the rest.
func (s *Service) GenerateMissingEmbeddings(ctx context.Context, kind types.ProfileKind) (BatchEmbeddingResult, error) {
	if !kind.IsValid() {
		return BatchEmbeddingResult{}, &ValidationError{Field: "kind", Message: fmt.Sprintf("unknown kind %q", kind)}
	}
	if s.embedder == nil {
		return BatchEmbeddingResult{}, ErrEmbeddingDisabled
	}

	type entry struct {
		id     uuid.UUID
		status types.EmbeddingStatus
	}
	var entries []entry
	if kind == types.KindCandidate {
		candidates, err := s.store.ListCandidates(ctx)
		if err != nil {
			return BatchEmbeddingResult{}, err
		}
		for _, c := range candidates {
			entries = append(entries, entry{c.ID, c.Embedding.Status})
		}
	} else {
		jobs, err := s.store.ListJobs(ctx)
		if err != nil {
			return BatchEmbeddingResult{}, err
		}
		for _, j := range jobs {
			entries = append(entries, entry{j.ID, j.Embedding.Status})
		}
	}

	var result BatchEmbeddingResult
	var targets []types.EmbeddingTarget
	for _, e := range entries {
		if e.status == types.EmbeddingReady || e.status == types.EmbeddingProcessing {
			result.Skipped++
			continue
		}
		targets = append(targets, types.EmbeddingTarget{Kind: kind, ID: e.id})
	}

	submitted, err := s.embedder.SubmitAll(ctx, targets)
	result.Submitted = submitted
	result.Skipped += len(targets) - submitted
	return result, err
}
