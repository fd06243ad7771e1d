package parsing

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/talent-matcher/internal/types"
)

// target names the profile field a rule populates.
type target string

const (
	targetTitle     target = "title"
	targetYears     target = "years"
	targetCompany   target = "company"
	targetEducation target = "education"
	targetSummary   target = "summary"
)

// rule is one extraction pattern. Capture selects the submatch used as the
// value (0 is the whole match). Fixed, when set, replaces the captured value.
type rule struct {
	name     string
	target   target
	pattern  *regexp.Regexp
	capture  int
	fixed    string
	level    types.EducationLevel
	validate func(string) bool
}

// ruleMatch is a validated hit of a rule.
type ruleMatch struct {
	value  string
	groups []string
}

// find returns every validated match of the rule in text, in text order.
func (r rule) find(text string) []ruleMatch {
	var out []ruleMatch
	for _, groups := range r.pattern.FindAllStringSubmatch(text, -1) {
		value := r.fixed
		if value == "" && r.capture < len(groups) {
			value = groups[r.capture]
		}
		value = collapseWhitespace(value)
		if r.validate != nil && !r.validate(value) {
			continue
		}
		out = append(out, ruleMatch{value: value, groups: groups})
	}
	return out
}

// first returns the first validated match of the rule.
func (r rule) first(text string) (ruleMatch, bool) {
	for _, groups := range r.pattern.FindAllStringSubmatch(text, -1) {
		value := r.fixed
		if value == "" && r.capture < len(groups) {
			value = groups[r.capture]
		}
		value = collapseWhitespace(value)
		if r.validate != nil && !r.validate(value) {
			continue
		}
		return ruleMatch{value: value, groups: groups}, true
	}
	return ruleMatch{}, false
}

const (
	minPlausibleYears = 1
	maxPlausibleYears = 49
	maxRoles          = 10
	maxEducation      = 5
	maxFieldLength    = 50
	maxInstitution    = 60
	maxSummaryLength  = 500
	fallbackSummary   = 200
)

var titleRules = []rule{
	{
		name:   "seniority-discipline-role",
		target: targetTitle,
		pattern: regexp.MustCompile(`(?i)\b(?:(?:senior|junior|lead|principal|staff|chief|head)\s+)?` +
			`(?:(?:software|web|frontend|backend|full[- ]?stack|mobile|devops|data|ml|ai)\s+)?` +
			`(?:engineer|developer|architect|scientist|analyst|manager|director|consultant)\b`),
		validate: minLength(4),
	},
	{
		name:     "leadership",
		target:   targetTitle,
		pattern:  regexp.MustCompile(`\b(?:CTO|CEO|VP|(?i:vice president|technical lead|team lead|tech lead))\b`),
		validate: minLength(2),
	},
}

var yearsRules = []rule{
	{
		name:     "n-years-of-experience",
		target:   targetYears,
		pattern:  regexp.MustCompile(`(?i)\b(\d{1,3})\+?\s*(?:years?|yrs?)(?:\s+of)?\s+(?:experience|exp)\b`),
		capture:  1,
		validate: plausibleYears,
	},
	{
		name:     "experience-colon-n-years",
		target:   targetYears,
		pattern:  regexp.MustCompile(`(?i)\b(?:experience|exp)(?:\s*:)?\s*(\d{1,3})\+?\s*(?:years?|yrs?)\b`),
		capture:  1,
		validate: plausibleYears,
	},
	{
		name:     "n-years-in-as-of",
		target:   targetYears,
		pattern:  regexp.MustCompile(`(?i)\b(\d{1,3})\+?\s*(?:years?|yrs?)\s+(?:in|as|of)\b`),
		capture:  1,
		validate: plausibleYears,
	},
}

var companyRule = rule{
	name:     "at-company",
	target:   targetCompany,
	pattern:  regexp.MustCompile(`(?:\bat|\bwith|@)[ \t]+([A-Z][A-Za-z0-9&.,\- ]*?)(?:[ \t]+(?:as|from|for)\b|[.,\n]|$)`),
	capture:  1,
	validate: lengthBetween(3, 49),
}

// degreeTail captures the field of study and an optional institution
// introduced by "from" or "at", ending at punctuation, a line break or the end.
const degreeTail = `(?:[ \t]+(?i:in|of))?[ \t]+([A-Za-z][A-Za-z ]*?)` +
	`(?:[ \t]+(?i:from|at)[ \t]+([A-Za-z][A-Za-z&' ]*?))?[ \t]*(?:[^A-Za-z ]|$)`

var degreeRules = []rule{
	{
		name:    "doctorate",
		target:  targetEducation,
		level:   types.LevelDoctorate,
		pattern: regexp.MustCompile(`\b(?i:ph\.?d\.?|doctor(?:ate)?)` + degreeTail),
		capture: 1,
	},
	{
		name:    "masters",
		target:  targetEducation,
		level:   types.LevelMasters,
		pattern: regexp.MustCompile(`\b(?i:m\.?sc\.?|m\.?s\.?|master'?s?)` + degreeTail),
		capture: 1,
	},
	{
		name:    "mba",
		target:  targetEducation,
		level:   types.LevelMasters,
		pattern: regexp.MustCompile(`(?i)\b(?:mba\b|m\.b\.a\.?)`),
		fixed:   "Business Administration",
	},
	{
		name:    "bachelors",
		target:  targetEducation,
		level:   types.LevelBachelors,
		pattern: regexp.MustCompile(`\b(?i:b\.?sc\.?|b\.?s\.?|bachelor'?s?)` + degreeTail),
		capture: 1,
	},
	{
		name:    "bachelors-engineering",
		target:  targetEducation,
		level:   types.LevelBachelors,
		pattern: regexp.MustCompile(`\b(?:(?i:b\.?tech\.?)|B\.?E\.?)` + degreeTail),
		capture: 1,
	},
	{
		// Uppercase only for the abbreviations; "it" and "cs" are ordinary words.
		name:    "computer-science",
		target:  targetEducation,
		level:   types.LevelBachelors,
		pattern: regexp.MustCompile(`\b(?:(?i:computer science|information technology|software engineering)|CS|IT)\b`),
		fixed:   "Computer Science",
	},
}

var summaryRule = rule{
	name:   "labeled-summary",
	target: targetSummary,
	pattern: regexp.MustCompile(`(?i)\b(?:summary|objective|about|profile)[\s:]*\n?` +
		`([\s\S]{50,500}?)(?:\n\n|experience|education|skills|work)`),
	capture: 1,
}

var whitespaceRun = regexp.MustCompile(`\s+`)

func collapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}

func minLength(n int) func(string) bool {
	return func(s string) bool {
		return utf8.RuneCountInString(s) >= n
	}
}

func lengthBetween(lo, hi int) func(string) bool {
	return func(s string) bool {
		n := utf8.RuneCountInString(s)
		return n >= lo && n <= hi
	}
}

func plausibleYears(s string) bool {
	n, err := strconv.Atoi(s)
	if err != nil {
		return false
	}
	return n >= minPlausibleYears && n <= maxPlausibleYears
}
