package parsing

import (
	"unicode/utf8"

	"github.com/jonathan/talent-matcher/internal/types"
)

// Completeness scores how well a candidate record is filled in for matching
// and suggests what to add.
func Completeness(c *types.Candidate) types.Completeness {
	score := 0
	suggestions := make([]string, 0)

	var profile *types.CandidateProfile
	if c != nil {
		profile = c.Profile
	}

	if profile != nil && len(profile.Skills) > 0 {
		score += 25
	} else {
		suggestions = append(suggestions, "Add technical skills to improve matching")
	}

	if profile != nil && len(profile.Experience) > 0 {
		score += 25
	} else {
		suggestions = append(suggestions, "Include work experience details")
	}

	if profile != nil && len(profile.Education) > 0 {
		score += 20
	} else {
		suggestions = append(suggestions, "Add education background")
	}

	if profile != nil && utf8.RuneCountInString(profile.Summary) > 50 {
		score += 15
	} else {
		suggestions = append(suggestions, "Include a professional summary")
	}

	if c != nil && c.Embedding.Status == types.EmbeddingReady {
		score += 15
	} else {
		suggestions = append(suggestions, "Generate AI embedding for semantic matching")
	}

	label := "Incomplete"
	switch {
	case score >= 80:
		label = "Complete"
	case score >= 50:
		label = "Partial"
	}

	return types.Completeness{Score: score, Label: label, Suggestions: suggestions}
}
