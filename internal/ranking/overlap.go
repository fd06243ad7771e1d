// Package ranking scores candidate profiles against job profiles and ranks
// the results with an explanation for each match.
package ranking

import (
	"sort"

	"github.com/jonathan/talent-matcher/internal/skills"
	"github.com/jonathan/talent-matcher/internal/types"
)

// Similarity weights for exact matches.
const (
	requiredMatchWeight  = 1.0
	preferredMatchWeight = 0.8
	// noRequirementScore applies when a job lists no required skills but at
	// least one preferred skill matched.
	noRequirementScore = 0.5
)

// Overlap is the skill comparison between a candidate and a job.
type Overlap struct {
	Score           float64
	Matched         []types.MatchedSkill
	Missing         []types.MatchedSkill
	Bonus           []types.MatchedSkill
	MatchedRequired int
	TotalRequired   int
}

// CalculateSkillOverlap compares candidate skills with a job's required and
// preferred skills. Only required skills form the denominator of the score;
// preferred matches are reported but never enlarge it.
func CalculateSkillOverlap(candidate, required, preferred []types.Skill) Overlap {
	have := make(map[string]bool, len(candidate))
	for _, s := range candidate {
		have[skills.CompareKey(s.Name)] = true
	}

	result := Overlap{
		Matched:       make([]types.MatchedSkill, 0),
		Missing:       make([]types.MatchedSkill, 0),
		Bonus:         make([]types.MatchedSkill, 0),
		TotalRequired: len(required),
	}
	consumed := make(map[string]bool)

	for _, s := range required {
		key := skills.CompareKey(s.Name)
		if have[key] {
			result.Matched = append(result.Matched, matchedEntry(s, requiredMatchWeight))
			result.MatchedRequired++
			consumed[key] = true
			continue
		}
		result.Missing = append(result.Missing, types.MatchedSkill{
			Name:     s.Name,
			Category: s.Category,
			Type:     types.MatchExact,
		})
	}

	for _, s := range preferred {
		key := skills.CompareKey(s.Name)
		if consumed[key] || !have[key] {
			continue
		}
		result.Matched = append(result.Matched, matchedEntry(s, preferredMatchWeight))
		consumed[key] = true
	}

	for _, s := range candidate {
		key := skills.CompareKey(s.Name)
		if consumed[key] {
			continue
		}
		consumed[key] = true
		result.Bonus = append(result.Bonus, types.MatchedSkill{
			Name:       s.Name,
			Category:   s.Category,
			Type:       types.MatchExact,
			Similarity: 1.0,
		})
	}

	switch {
	case result.TotalRequired > 0:
		result.Score = clamp(float64(result.MatchedRequired)/float64(result.TotalRequired), 0, 1)
	case len(result.Matched) > 0:
		result.Score = noRequirementScore
	default:
		result.Score = 0
	}

	return result
}

func matchedEntry(s types.Skill, weight float64) types.MatchedSkill {
	return types.MatchedSkill{
		Name:       s.Name,
		Category:   s.Category,
		Type:       types.MatchExact,
		Similarity: weight,
	}
}

// GroupByCategory counts matched, missing and bonus skills per category.
// Categories without any skills are omitted.
func GroupByCategory(matched, missing, bonus []types.MatchedSkill) map[types.SkillCategory]*types.CategoryCoverage {
	groups := make(map[types.SkillCategory]*types.CategoryCoverage)
	get := func(c types.SkillCategory) *types.CategoryCoverage {
		if c == "" {
			c = types.CategoryOther
		}
		g, ok := groups[c]
		if !ok {
			g = &types.CategoryCoverage{Category: c}
			groups[c] = g
		}
		return g
	}
	for _, s := range matched {
		get(s.Category).Matched++
	}
	for _, s := range missing {
		get(s.Category).Missing++
	}
	for _, s := range bonus {
		get(s.Category).Bonus++
	}
	return groups
}

// CategoryCoverage reports per-category coverage of a match, largest
// categories first. Coverage is matched/(matched+missing) as a percentage,
// or 100 when the category has no job skills.
func CategoryCoverage(result *types.MatchResult) []types.CategoryCoverage {
	groups := GroupByCategory(result.MatchedSkills, result.MissingSkills, result.BonusSkills)

	out := make([]types.CategoryCoverage, 0, len(groups))
	for _, category := range types.Categories {
		g, ok := groups[category]
		if !ok {
			continue
		}
		g.Total = g.Matched + g.Missing + g.Bonus
		g.Coverage = 100
		if denom := g.Matched + g.Missing; denom > 0 {
			g.Coverage = roundInt(float64(g.Matched) / float64(denom) * 100)
		}
		out = append(out, *g)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Total > out[j].Total
	})
	return out
}
