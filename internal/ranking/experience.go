package ranking

import "math"

// Experience fit constants.
const (
	maxExperienceFit      = 1.2
	noRequirementWithExp  = 0.8
	noRequirementNoExp    = 0.5
	noCandidateExperience = 0.1
)

// ExperienceFit compares demonstrated years with required years. Exceeding
// the requirement is rewarded up to 1.2; the final score caps it at 1.0.
func ExperienceFit(candidateYears, requiredYears int) float64 {
	switch {
	case requiredYears <= 0 && candidateYears > 0:
		return noRequirementWithExp
	case requiredYears <= 0:
		return noRequirementNoExp
	case candidateYears <= 0:
		return noCandidateExperience
	}
	return math.Min(float64(candidateYears)/float64(requiredYears), maxExperienceFit)
}
