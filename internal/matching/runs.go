package matching

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/talent-matcher/internal/metrics"
	"github.com/jonathan/talent-matcher/internal/ranking"
	"github.com/jonathan/talent-matcher/internal/types"
	"go.uber.org/zap"
)

// RunMatching scores every stored candidate against a job, upserts the
// results and returns them ranked. Recruiter statuses survive re-runs.
// Missing embeddings score zero semantically; the run never waits for them.
func (s *Service) RunMatching(ctx context.Context, jobID uuid.UUID) (*types.RunSummary, error) {
	start := time.Now()
	summary, err := s.runMatching(ctx, jobID)
	metrics.MatchRunDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.MatchRunsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.MatchRunsTotal.WithLabelValues("success").Inc()
	return summary, nil
}

func (s *Service) runMatching(ctx context.Context, jobID uuid.UUID) (*types.RunSummary, error) {
	job, err := s.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	candidates, err := s.store.ListCandidates(ctx)
	if err != nil {
		return nil, err
	}

	summary := &types.RunSummary{JobID: job.ID, JobTitle: job.Title, Matches: []types.MatchResult{}}
	if len(candidates) == 0 {
		return summary, nil
	}

	results, err := ranking.RankCandidates(ctx, job, candidates, s.opts.Rank)
	if err != nil {
		return nil, err
	}
	now := s.now()
	for i := range results {
		results[i].CalculatedAt = now
	}

	created, updated, err := s.store.UpsertMatches(ctx, results)
	if err != nil {
		return nil, err
	}
	metrics.CandidatesScored.Add(float64(len(results)))

	summary.Matches = results
	summary.Count = len(results)
	summary.Created = created
	summary.Updated = updated
	summary.AverageScore = ranking.AverageScore(results)

	s.log.Info("matching run complete",
		zap.String("job_id", job.ID.String()),
		zap.String("job_title", job.Title),
		zap.Int("count", summary.Count),
		zap.Int("created", created),
		zap.Int("updated", updated),
		zap.Float64("average_score", summary.AverageScore))
	return summary, nil
}

// Results returns the stored results for a job, ranked, without recomputing.
func (s *Service) Results(ctx context.Context, jobID uuid.UUID) ([]types.MatchResult, error) {
	if _, err := s.GetJob(ctx, jobID); err != nil {
		return nil, err
	}
	results, err := s.store.ListMatchesForJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	ranking.AssignRanks(results)
	return results, nil
}

// MatchDetail returns one stored match with its detailed interpretation and
// per-category coverage.
func (s *Service) MatchDetail(ctx context.Context, matchID uuid.UUID) (*types.MatchDetail, error) {
	r, err := s.getMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	r.Interpretation = ranking.InterpretDetailed(r)
	return &types.MatchDetail{
		MatchResult: *r,
		Coverage:    ranking.CategoryCoverage(r),
	}, nil
}

// UpdateStatus records a recruiter decision. Scores are untouched.
func (s *Service) UpdateStatus(ctx context.Context, matchID uuid.UUID, status string) (*types.MatchResult, error) {
	st := types.MatchStatus(status)
	if !st.IsValid() {
		return nil, invalidStatus(status)
	}

	found, err := s.store.UpdateMatchStatus(ctx, matchID, st)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, &NotFoundError{Resource: "match", ID: matchID.String()}
	}
	s.log.Info("match status updated", zap.String("match_id", matchID.String()), zap.String("status", status))
	return s.getMatch(ctx, matchID)
}

func (s *Service) getMatch(ctx context.Context, id uuid.UUID) (*types.MatchResult, error) {
	r, err := s.store.GetMatch(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, &NotFoundError{Resource: "match", ID: id.String()}
	}
	return r, nil
}
