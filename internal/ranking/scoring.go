package ranking

import (
	"math"

	"github.com/jonathan/talent-matcher/internal/types"
)

// Component weights of the final score.
const (
	semanticWeight   = 0.4
	skillWeight      = 0.4
	experienceWeight = 0.2
)

// MatchOne scores a candidate profile against a job profile. It is pure: the
// same profiles always produce the same result. IDs, names, status and
// timestamps are left for the caller to fill in.
func MatchOne(candidate *types.CandidateProfile, job *types.JobProfile) types.MatchResult {
	var (
		candidateSkills []types.Skill
		candidateYears  int
		candidateVector []float32
		required        []types.Skill
		preferred       []types.Skill
		requiredYears   int
		jobVector       []float32
	)
	if candidate != nil {
		candidateSkills = candidate.Skills
		candidateYears = candidate.TotalYearsExperience
		candidateVector = candidate.Embedding
	}
	if job != nil {
		required = job.RequiredSkills
		preferred = job.PreferredSkills
		requiredYears = job.TotalYearsRequired
		jobVector = job.Embedding
	}

	overlap := CalculateSkillOverlap(candidateSkills, required, preferred)
	experience := ExperienceFit(candidateYears, requiredYears)
	semantic := SemanticSimilarity(candidateVector, jobVector)

	final := 100 * (semanticWeight*semantic +
		skillWeight*overlap.Score +
		experienceWeight*math.Min(experience, 1.0))

	result := types.MatchResult{
		Scores: types.Scores{
			Semantic:   round2(semantic),
			SkillMatch: round2(overlap.Score),
			Experience: round2(experience),
			Final:      round1(clamp(final, 0, 100)),
		},
		MatchedSkills:        overlap.Matched,
		MissingSkills:        overlap.Missing,
		BonusSkills:          overlap.Bonus,
		MatchedRequiredCount: overlap.MatchedRequired,
		TotalRequired:        overlap.TotalRequired,
		Status:               types.StatusPending,
	}
	result.Interpretation = Interpret(&result)
	return result
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func roundInt(v float64) int {
	return int(math.Round(v))
}
