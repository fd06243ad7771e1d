package types

import (
	"time"

	"github.com/google/uuid"
)

// MatchStatus is the recruiter decision on a match.
type MatchStatus string

// Match statuses. New matches start as pending.
const (
	StatusPending     MatchStatus = "pending"
	StatusShortlisted MatchStatus = "shortlisted"
	StatusRejected    MatchStatus = "rejected"
)

// MatchStatuses lists the allowed statuses in display order.
var MatchStatuses = []MatchStatus{StatusPending, StatusShortlisted, StatusRejected}

// IsValid reports whether s is one of the allowed statuses.
func (s MatchStatus) IsValid() bool {
	for _, allowed := range MatchStatuses {
		if s == allowed {
			return true
		}
	}
	return false
}

// MatchType records how a skill was matched.
type MatchType string

// Match types. Only exact matching is produced today; semantic is reserved
// for alias-free similarity matching.
const (
	MatchExact    MatchType = "exact"
	MatchSemantic MatchType = "semantic"
)

// MatchedSkill is one entry of a matched, missing or bonus skill list.
type MatchedSkill struct {
	Name       string        `json:"name"`
	Category   SkillCategory `json:"category"`
	Type       MatchType     `json:"type,omitempty"`
	Similarity float64       `json:"similarity"`
}

// Scores are the component and final scores of a match.
// Experience is the uncapped fit in [0, 1.2]; the final score caps it at 1.0.
type Scores struct {
	Semantic   float64 `json:"semantic"`
	SkillMatch float64 `json:"skill_match"`
	Experience float64 `json:"experience"`
	Final      float64 `json:"final"`
}

// Tier buckets the final score.
type Tier string

// Tiers, best first.
const (
	TierExcellent Tier = "excellent"
	TierGood      Tier = "good"
	TierPartial   Tier = "partial"
	TierWeak      Tier = "weak"
)

// Interpretation is the human-readable explanation of a match.
// Strengths, Concerns and Recommendation are only set by the detailed variant.
type Interpretation struct {
	Tier           Tier     `json:"tier"`
	Label          string   `json:"label"`
	Summary        string   `json:"summary"`
	Strengths      []string `json:"strengths,omitempty"`
	Concerns       []string `json:"concerns,omitempty"`
	Recommendation string   `json:"recommendation,omitempty"`
}

// MatchResult is the scored pairing of one candidate with one job.
type MatchResult struct {
	ID                   uuid.UUID      `json:"id"`
	JobID                uuid.UUID      `json:"job_id"`
	CandidateID          uuid.UUID      `json:"candidate_id"`
	CandidateName        string         `json:"candidate_name"`
	JobTitle             string         `json:"job_title"`
	Scores               Scores         `json:"scores"`
	MatchedSkills        []MatchedSkill `json:"matched_skills"`
	MissingSkills        []MatchedSkill `json:"missing_skills"`
	BonusSkills          []MatchedSkill `json:"bonus_skills"`
	MatchedRequiredCount int            `json:"matched_required_count"`
	TotalRequired        int            `json:"total_required"`
	Interpretation       Interpretation `json:"interpretation"`
	Status               MatchStatus    `json:"status"`
	Rank                 int            `json:"rank,omitempty"`
	CalculatedAt         time.Time      `json:"calculated_at"`
}

// CategoryCoverage summarizes skill overlap for one category.
type CategoryCoverage struct {
	Category SkillCategory `json:"category"`
	Matched  int           `json:"matched"`
	Missing  int           `json:"missing"`
	Bonus    int           `json:"bonus"`
	Total    int           `json:"total"`
	Coverage int           `json:"coverage"`
}

// MatchDetail is a stored match with its detailed explanation.
type MatchDetail struct {
	MatchResult
	Coverage []CategoryCoverage `json:"category_coverage"`
}

// RunSummary reports the outcome of a matching run for one job.
type RunSummary struct {
	JobID        uuid.UUID     `json:"job_id"`
	JobTitle     string        `json:"job_title"`
	Matches      []MatchResult `json:"matches"`
	Count        int           `json:"count"`
	Created      int           `json:"created"`
	Updated      int           `json:"updated"`
	AverageScore float64       `json:"average_score"`
}
