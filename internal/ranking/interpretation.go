package ranking

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jonathan/talent-matcher/internal/types"
)

// Tier thresholds on the final score. Each boundary belongs to the upper tier.
const (
	excellentThreshold = 85.0
	goodThreshold      = 70.0
	partialThreshold   = 50.0
)

var tierLabels = map[types.Tier]string{
	types.TierExcellent: "Excellent Match",
	types.TierGood:      "Good Match",
	types.TierPartial:   "Partial Match",
	types.TierWeak:      "Weak Match",
}

var tierRecommendations = map[types.Tier]string{
	types.TierExcellent: "Strongly recommended for interview",
	types.TierGood:      "Recommended for further review",
	types.TierPartial:   "Consider if other candidates are limited",
	types.TierWeak:      "May not be a strong fit for this role",
}

const noClausesSummary = "See score breakdown for details."

// TierFor buckets a final score, evaluated at one decimal place.
func TierFor(final float64) types.Tier {
	score := round1(final)
	switch {
	case score >= excellentThreshold:
		return types.TierExcellent
	case score >= goodThreshold:
		return types.TierGood
	case score >= partialThreshold:
		return types.TierPartial
	default:
		return types.TierWeak
	}
}

// Interpret builds the tier, label and one-line summary of a match.
func Interpret(result *types.MatchResult) types.Interpretation {
	tier := TierFor(result.Scores.Final)

	var clauses []string
	if result.TotalRequired > 0 {
		pct := roundInt(float64(result.MatchedRequiredCount) / float64(result.TotalRequired) * 100)
		switch {
		case pct >= 90:
			clauses = append(clauses, "Strong skill alignment")
		case pct >= 60:
			clauses = append(clauses, fmt.Sprintf("Covers %d%% of required skills", pct))
		default:
			clauses = append(clauses, fmt.Sprintf("Only %d%% skill coverage", pct))
		}
	}

	if n := len(result.MissingSkills); n > 0 && n <= 3 {
		clauses = append(clauses, "missing "+strings.Join(skillNames(result.MissingSkills), ", "))
	} else if n > 3 {
		clauses = append(clauses, fmt.Sprintf("missing %d required skills", n))
	}

	if n := len(result.BonusSkills); n > 2 {
		clauses = append(clauses, fmt.Sprintf("%d bonus skills", n))
	}

	switch exp := result.Scores.Experience; {
	case exp >= 1.0:
		clauses = append(clauses, "meets experience requirement")
	case exp >= 0.7:
		clauses = append(clauses, "slightly under experience requirement")
	case exp < 0.5:
		clauses = append(clauses, "limited experience")
	}

	summary := noClausesSummary
	if len(clauses) > 0 {
		summary = capitalize(strings.Join(clauses, ". ")) + "."
	}

	return types.Interpretation{
		Tier:    tier,
		Label:   tierLabels[tier],
		Summary: summary,
	}
}

// InterpretDetailed extends Interpret with strengths, concerns and a
// recommendation for the match detail view.
func InterpretDetailed(result *types.MatchResult) types.Interpretation {
	interp := Interpret(result)
	scores := result.Scores

	strengths := make([]string, 0)
	switch {
	case scores.Semantic >= 0.8:
		strengths = append(strengths, "Strong semantic alignment with job description")
	case scores.Semantic >= 0.6:
		strengths = append(strengths, "Good overall profile alignment")
	}
	if result.MatchedRequiredCount > 0 && result.TotalRequired > 0 {
		pct := roundInt(float64(result.MatchedRequiredCount) / float64(result.TotalRequired) * 100)
		if pct >= 70 {
			strengths = append(strengths, fmt.Sprintf("Covers %d%% of required skills", pct))
		}
	}
	if scores.Experience >= 1.0 {
		strengths = append(strengths, "Meets or exceeds experience requirements")
	}
	if n := len(result.BonusSkills); n >= 3 {
		strengths = append(strengths, fmt.Sprintf("Brings %d additional skills", n))
	}

	concerns := make([]string, 0)
	if scores.Semantic < 0.5 {
		concerns = append(concerns, "Low semantic alignment, profile may focus on a different domain")
	}
	if len(result.MissingSkills) > 0 {
		missing := result.MissingSkills
		if len(missing) > 3 {
			missing = missing[:3]
		}
		concerns = append(concerns, "Missing key skills: "+strings.Join(skillNames(missing), ", "))
	}
	switch {
	case scores.Experience < 0.5:
		concerns = append(concerns, "Significantly below experience requirement")
	case scores.Experience < 0.7:
		concerns = append(concerns, "Slightly under experience requirement")
	}

	interp.Strengths = strengths
	interp.Concerns = concerns
	interp.Recommendation = tierRecommendations[interp.Tier]
	return interp
}

func skillNames(list []types.MatchedSkill) []string {
	names := make([]string, 0, len(list))
	for _, s := range list {
		names = append(names, s.Name)
	}
	return names
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
