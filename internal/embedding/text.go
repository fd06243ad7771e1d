package embedding

import (
	"fmt"
	"strings"

	"github.com/jonathan/talent-matcher/internal/types"
)

const (
	candidateExcerptChars = 400
	jobExcerptChars       = 500
	minPreparedChars      = 10
)

// InsufficientContentError is returned when too little text remains to embed.
type InsufficientContentError struct {
	Kind types.ProfileKind
}

func (e *InsufficientContentError) Error() string {
	return fmt.Sprintf("insufficient %s content for embedding generation", e.Kind)
}

// PrepareCandidateText assembles the labeled text embedded for a candidate.
func PrepareCandidateText(c *types.Candidate) (string, error) {
	var parts []string
	if c.Name != "" {
		parts = append(parts, "Candidate Profile")
	}

	if p := c.Profile; p != nil {
		if len(p.Skills) > 0 {
			parts = append(parts, "Skills: "+strings.Join(types.SkillNames(p.Skills), ", "))
		}

		var roles []string
		for _, e := range p.Experience {
			s := e.Title
			if e.Company != "" {
				s += " at " + e.Company
			}
			if e.Years > 0 {
				s += fmt.Sprintf(" (%d years)", e.Years)
			}
			if s != "" {
				roles = append(roles, s)
			}
		}
		if len(roles) > 0 {
			parts = append(parts, "Experience: "+strings.Join(roles, ", "))
		}

		if p.TotalYearsExperience > 0 {
			parts = append(parts, fmt.Sprintf("Total Experience: %d+ years", p.TotalYearsExperience))
		}

		var degrees []string
		for _, e := range p.Education {
			s := string(e.Level)
			if e.Field != "" {
				s += " in " + e.Field
			}
			if e.Institution != "" {
				s += " from " + e.Institution
			}
			if s != "" {
				degrees = append(degrees, s)
			}
		}
		if len(degrees) > 0 {
			parts = append(parts, "Education: "+strings.Join(degrees, ", "))
		}

		if p.Summary != "" {
			parts = append(parts, "Summary: "+p.Summary)
		}
	}

	if c.RawText != "" {
		parts = append(parts, "Details: "+strings.TrimSpace(Truncate(c.RawText, candidateExcerptChars)))
	}

	return finish(parts, types.KindCandidate)
}

// PrepareJobText assembles the labeled text embedded for a job.
func PrepareJobText(j *types.Job) (string, error) {
	var parts []string
	if j.Title != "" {
		parts = append(parts, "Job Title: "+j.Title)
	}

	if p := j.Profile; p != nil {
		if len(p.RequiredSkills) > 0 {
			parts = append(parts, "Required Skills: "+strings.Join(types.SkillNames(p.RequiredSkills), ", "))
		}
		if len(p.PreferredSkills) > 0 {
			parts = append(parts, "Preferred Skills: "+strings.Join(types.SkillNames(p.PreferredSkills), ", "))
		}
		if p.TotalYearsRequired > 0 {
			parts = append(parts, fmt.Sprintf("Experience Required: %d+ years", p.TotalYearsRequired))
		}
	}

	if j.RawText != "" {
		parts = append(parts, "Description: "+strings.TrimSpace(Truncate(j.RawText, jobExcerptChars)))
	}

	return finish(parts, types.KindJob)
}

func finish(parts []string, kind types.ProfileKind) (string, error) {
	text := strings.Join(parts, "\n")
	if len([]rune(text)) < minPreparedChars {
		return "", &InsufficientContentError{Kind: kind}
	}
	return text, nil
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if n <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
