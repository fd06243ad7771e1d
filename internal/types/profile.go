// Package types defines the shared data structures for candidate and job profiles,
// match results and their supporting records.
package types

import "time"

// SkillCategory groups canonical skills for reporting.
type SkillCategory string

// Skill categories known to the vocabulary.
const (
	CategoryProgramming SkillCategory = "programming"
	CategoryFrontend    SkillCategory = "frontend"
	CategoryBackend     SkillCategory = "backend"
	CategoryDatabase    SkillCategory = "database"
	CategoryCloud       SkillCategory = "cloud"
	CategoryAIML        SkillCategory = "ai_ml"
	CategoryTools       SkillCategory = "tools"
	CategoryOther       SkillCategory = "other"
)

// Categories lists every category in reporting order.
var Categories = []SkillCategory{
	CategoryProgramming,
	CategoryFrontend,
	CategoryBackend,
	CategoryDatabase,
	CategoryCloud,
	CategoryAIML,
	CategoryTools,
	CategoryOther,
}

// Skill is a canonical skill detected in free text.
type Skill struct {
	Name       string        `json:"name"`
	Category   SkillCategory `json:"category"`
	Confidence float64       `json:"confidence"`
	MatchCount int           `json:"match_count"`
}

// ExperienceRole is a role title, optionally tied to a company.
type ExperienceRole struct {
	Title   string `json:"title"`
	Company string `json:"company,omitempty"`
	Years   int    `json:"years,omitempty"`
}

// EducationLevel is the degree tier of an education entry.
type EducationLevel string

// Education levels, highest first.
const (
	LevelDoctorate EducationLevel = "doctorate"
	LevelMasters   EducationLevel = "masters"
	LevelBachelors EducationLevel = "bachelors"
)

// Education is a degree mention extracted from text.
type Education struct {
	Level       EducationLevel `json:"level"`
	Field       string         `json:"field"`
	Institution string         `json:"institution,omitempty"`
}

// ProfileKind distinguishes candidate and job profiles.
type ProfileKind string

// Profile kinds.
const (
	KindCandidate ProfileKind = "candidate"
	KindJob       ProfileKind = "job"
)

// IsValid reports whether k names a known profile kind.
func (k ProfileKind) IsValid() bool {
	return k == KindCandidate || k == KindJob
}

// Profile holds the fields shared by candidate and job profiles.
// Embedding is owned by the profile; a regenerated profile starts without one.
type Profile struct {
	Skills     []Skill          `json:"skills"`
	Experience []ExperienceRole `json:"experience"`
	Education  []Education      `json:"education"`
	Summary    string           `json:"summary"`
	ProfiledAt time.Time        `json:"profiled_at"`
	Embedding  []float32        `json:"-"`
}

// CandidateProfile is the structured view of a resume.
type CandidateProfile struct {
	Profile
	TotalYearsExperience int `json:"total_years_experience"`
}

// JobProfile is the structured view of a job description.
type JobProfile struct {
	Profile
	RequiredSkills     []Skill `json:"required_skills"`
	PreferredSkills    []Skill `json:"preferred_skills"`
	TotalYearsRequired int     `json:"total_years_required"`
}

// SkillNames returns the canonical names of skills in order.
func SkillNames(skills []Skill) []string {
	names := make([]string, 0, len(skills))
	for _, s := range skills {
		names = append(names, s.Name)
	}
	return names
}
