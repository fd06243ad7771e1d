package ranking

import (
	"context"
	"runtime"
	"sort"

	"github.com/jonathan/talent-matcher/internal/types"
	"golang.org/x/sync/errgroup"
)

// RankOptions tunes batch ranking.
type RankOptions struct {
	// Parallelism bounds concurrent scoring. Zero means GOMAXPROCS.
	Parallelism int
	// SequentialBelow scores batches smaller than this on the calling goroutine.
	SequentialBelow int
}

// DefaultRankOptions returns options suited to interactive matching runs.
func DefaultRankOptions() RankOptions {
	return RankOptions{SequentialBelow: 16}
}

// RankCandidates scores every candidate against the job, then orders the
// results by final score (ties keep input order) and assigns 1-based ranks.
func RankCandidates(ctx context.Context, job *types.Job, candidates []types.Candidate, opts RankOptions) ([]types.MatchResult, error) {
	results := make([]types.MatchResult, len(candidates))
	if len(candidates) == 0 {
		return results, nil
	}

	var jobProfile *types.JobProfile
	if job != nil {
		jobProfile = job.Profile
	}

	score := func(i int) {
		c := &candidates[i]
		r := MatchOne(c.Profile, jobProfile)
		r.CandidateID = c.ID
		r.CandidateName = c.Name
		if job != nil {
			r.JobID = job.ID
			r.JobTitle = job.Title
		}
		results[i] = r
	}

	if len(candidates) < opts.SequentialBelow {
		for i := range candidates {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			score(i)
		}
	} else {
		limit := opts.Parallelism
		if limit <= 0 {
			limit = runtime.GOMAXPROCS(0)
		}
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(limit)
		for i := range candidates {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				score(i)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	AssignRanks(results)
	return results, nil
}

// AssignRanks orders stored results by final score and numbers them from 1.
func AssignRanks(results []types.MatchResult) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Scores.Final > results[j].Scores.Final
	})
	for i := range results {
		results[i].Rank = i + 1
	}
}

// AverageScore returns the mean final score to one decimal, or 0 when empty.
func AverageScore(results []types.MatchResult) float64 {
	if len(results) == 0 {
		return 0
	}
	var total float64
	for _, r := range results {
		total += r.Scores.Final
	}
	return round1(total / float64(len(results)))
}
