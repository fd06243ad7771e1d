package parsing

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jonathan/talent-matcher/internal/types"
)

// ExtractSkills scans text for every vocabulary alias using whole-word,
// case-insensitive matching. Each canonical skill appears once; the first
// alias found in longest-first order decides its occurrence count.
// Results are ordered by confidence, highest first.
func (p *Profiler) ExtractSkills(text string) []types.Skill {
	found := make([]types.Skill, 0)
	if strings.TrimSpace(text) == "" {
		return found
	}

	lower := strings.ToLower(text)
	seen := make(map[string]bool)
	for _, alias := range p.patterns {
		count := countWholeWord(lower, alias)
		if count == 0 {
			continue
		}
		canonical, ok := p.vocab.Normalize(alias)
		if !ok || seen[canonical] {
			continue
		}
		seen[canonical] = true
		found = append(found, types.Skill{
			Name:       canonical,
			Category:   p.vocab.CategoryOf(canonical),
			Confidence: skillConfidence(count),
			MatchCount: count,
		})
	}

	sort.SliceStable(found, func(i, j int) bool {
		return found[i].Confidence > found[j].Confidence
	})
	return found
}

// skillConfidence grows with repeated mentions and saturates at 1.0.
func skillConfidence(count int) float64 {
	return round2(math.Min(0.5+0.1*float64(count), 1.0))
}

// countWholeWord counts non-overlapping occurrences of word in text that are
// not embedded in a larger word.
func countWholeWord(text, word string) int {
	if word == "" {
		return 0
	}
	count := 0
	for pos := 0; pos < len(text); {
		idx := strings.Index(text[pos:], word)
		if idx < 0 {
			break
		}
		start := pos + idx
		end := start + len(word)
		if boundaryBefore(text, start) && boundaryAfter(text, end) {
			count++
			pos = end
			continue
		}
		_, size := utf8.DecodeRuneInString(text[start:])
		pos = start + size
	}
	return count
}

func boundaryBefore(text string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:i])
	return !isWordRune(r)
}

func boundaryAfter(text string, i int) bool {
	if i >= len(text) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(text[i:])
	return !isWordRune(r)
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// ExtractExperience returns up to ten distinct role titles and the largest
// plausible years-of-experience figure mentioned in text (0 when none).
func (p *Profiler) ExtractExperience(text string) ([]types.ExperienceRole, int) {
	roles := make([]types.ExperienceRole, 0)
	if strings.TrimSpace(text) == "" {
		return roles, 0
	}

	seen := make(map[string]bool)
	for _, r := range titleRules {
		for _, m := range r.find(text) {
			key := strings.ToLower(m.value)
			if seen[key] {
				continue
			}
			seen[key] = true
			roles = append(roles, types.ExperienceRole{Title: m.value})
		}
	}

	// The company attaches to the last captured role, before the cap.
	if len(roles) > 0 {
		last := &roles[len(roles)-1]
		if last.Company == "" {
			if m, ok := companyRule.first(text); ok {
				last.Company = strings.TrimRight(m.value, " .,-")
			}
		}
	}

	if len(roles) > maxRoles {
		roles = roles[:maxRoles]
	}

	return roles, extractYears(text)
}

func extractYears(text string) int {
	best := 0
	for _, r := range yearsRules {
		for _, m := range r.find(text) {
			n, err := strconv.Atoi(m.value)
			if err == nil && n > best {
				best = n
			}
		}
	}
	return best
}

// ExtractEducation returns up to five distinct degree mentions.
func (p *Profiler) ExtractEducation(text string) []types.Education {
	entries := make([]types.Education, 0)
	if strings.TrimSpace(text) == "" {
		return entries
	}

	seen := make(map[string]bool)
	add := func(r rule, m ruleMatch) {
		field := truncateRunes(m.value, maxFieldLength)
		if field == "" {
			field = "Unknown"
		}
		key := string(r.level) + "|" + strings.ToLower(field)
		if seen[key] {
			return
		}
		seen[key] = true

		entry := types.Education{Level: r.level, Field: field}
		if r.fixed == "" && len(m.groups) > 2 {
			entry.Institution = truncateRunes(collapseWhitespace(m.groups[2]), maxInstitution)
		}
		entries = append(entries, entry)
	}

	for _, r := range degreeRules {
		for _, m := range r.find(text) {
			add(r, m)
		}
	}

	if len(entries) > maxEducation {
		entries = entries[:maxEducation]
	}
	return entries
}

// ExtractSummary prefers a labeled summary section and otherwise falls back
// to the opening of the text.
func (p *Profiler) ExtractSummary(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	if m, ok := summaryRule.first(text); ok && m.value != "" {
		return truncateRunes(m.value, maxSummaryLength)
	}
	return collapseWhitespace(truncateRunes(text, fallbackSummary))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
