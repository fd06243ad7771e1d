// Package parsing turns resume and job description text into structured profiles.
package parsing

import (
	"time"

	"github.com/jonathan/talent-matcher/internal/skills"
	"github.com/jonathan/talent-matcher/internal/types"
)

// Confidence thresholds splitting job skills into required and preferred.
const (
	RequiredConfidence  = 0.7
	PreferredConfidence = 0.5
)

// Profiler extracts structured profiles from free text. It holds no mutable
// state and is safe for concurrent use.
type Profiler struct {
	vocab    *skills.Vocabulary
	patterns []string
	now      func() time.Time
}

// NewProfiler creates a profiler backed by the given vocabulary.
func NewProfiler(vocab *skills.Vocabulary) *Profiler {
	return &Profiler{
		vocab:    vocab,
		patterns: vocab.Patterns(),
		now:      time.Now,
	}
}

// Vocabulary returns the vocabulary the profiler normalizes against.
func (p *Profiler) Vocabulary() *skills.Vocabulary {
	return p.vocab
}

func (p *Profiler) base(text string) (types.Profile, int) {
	roles, years := p.ExtractExperience(text)
	return types.Profile{
		Skills:     p.ExtractSkills(text),
		Experience: roles,
		Education:  p.ExtractEducation(text),
		Summary:    p.ExtractSummary(text),
		ProfiledAt: p.now().UTC(),
	}, years
}

// GenerateCandidateProfile builds a fresh candidate profile from resume text.
func (p *Profiler) GenerateCandidateProfile(text string) *types.CandidateProfile {
	base, years := p.base(text)
	return &types.CandidateProfile{
		Profile:              base,
		TotalYearsExperience: years,
	}
}

// GenerateJobProfile builds a fresh job profile from a job description.
// Skills below the preferred threshold stay in Skills but are neither
// required nor preferred.
func (p *Profiler) GenerateJobProfile(text string) *types.JobProfile {
	base, years := p.base(text)
	required, preferred := SplitJobSkills(base.Skills)
	return &types.JobProfile{
		Profile:            base,
		RequiredSkills:     required,
		PreferredSkills:    preferred,
		TotalYearsRequired: years,
	}
}

// SplitJobSkills partitions skills by confidence into required and preferred.
func SplitJobSkills(all []types.Skill) (required, preferred []types.Skill) {
	required = make([]types.Skill, 0)
	preferred = make([]types.Skill, 0)
	for _, s := range all {
		switch {
		case s.Confidence >= RequiredConfidence:
			required = append(required, s)
		case s.Confidence >= PreferredConfidence:
			preferred = append(preferred, s)
		}
	}
	return required, preferred
}
