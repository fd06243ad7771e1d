// Package observability provides human-readable output for the CLI text format.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/talent-matcher/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for the text format
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// truncate shortens s to n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// writeList writes up to limit names as bullets under a heading.
func writeList(sb *strings.Builder, heading string, names []string, limit int) {
	if len(names) == 0 {
		return
	}
	sb.WriteString(heading + ":\n")
	for i := 0; i < min(len(names), limit); i++ {
		sb.WriteString(fmt.Sprintf("  • %s\n", names[i]))
	}
	if len(names) > limit {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(names)-limit))
	}
	sb.WriteString("\n")
}

// PrintJobProfile outputs a human-readable summary of a job profile.
func (p *Printer) PrintJobProfile(title string, profile *types.JobProfile) {
	if profile == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Role:        %s\n", title))
	if profile.TotalYearsRequired > 0 {
		sb.WriteString(fmt.Sprintf("Experience:  %d+ years\n", profile.TotalYearsRequired))
	}
	sb.WriteString("\n")

	writeList(&sb, "Required Skills", types.SkillNames(profile.RequiredSkills), maxItemsToShow)
	writeList(&sb, "Preferred Skills", types.SkillNames(profile.PreferredSkills), 3)

	p.printBox("JOB PROFILE", strings.TrimSuffix(sb.String(), "\n\n"))
}

// PrintCandidateProfile outputs a candidate profile with its completeness.
func (p *Printer) PrintCandidateProfile(name string, profile *types.CandidateProfile, completeness types.Completeness) {
	if profile == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Candidate:     %s\n", name))
	sb.WriteString(fmt.Sprintf("Experience:    %d years\n", profile.TotalYearsExperience))
	sb.WriteString(fmt.Sprintf("Completeness:  %d%% (%s)\n", completeness.Score, completeness.Label))
	sb.WriteString("\n")

	writeList(&sb, "Skills", types.SkillNames(profile.Skills), maxItemsToShow)

	roles := make([]string, 0, len(profile.Experience))
	for _, r := range profile.Experience {
		if r.Company != "" {
			roles = append(roles, r.Title+" at "+r.Company)
		} else {
			roles = append(roles, r.Title)
		}
	}
	writeList(&sb, "Roles", roles, 3)

	degrees := make([]string, 0, len(profile.Education))
	for _, e := range profile.Education {
		degrees = append(degrees, strings.TrimSpace(string(e.Level)+" "+e.Field))
	}
	writeList(&sb, "Education", degrees, 3)

	writeList(&sb, "Suggestions", completeness.Suggestions, 3)

	p.printBox("CANDIDATE PROFILE", strings.TrimSuffix(sb.String(), "\n\n"))
}

// PrintRankedMatches outputs the top ranked candidates of a matching run.
func (p *Printer) PrintRankedMatches(summary *types.RunSummary) {
	if summary == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Job: %s\n", summary.JobTitle))
	sb.WriteString(fmt.Sprintf("Candidates ranked: %d   Average: %.1f\n", summary.Count, summary.AverageScore))

	count := min(len(summary.Matches), maxItemsToShow)
	for i := 0; i < count; i++ {
		m := summary.Matches[i]
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("#%d  %s\n", m.Rank, m.CandidateName))
		sb.WriteString(fmt.Sprintf("    Score: %.1f (%s)\n", m.Scores.Final, m.Interpretation.Label))
		if names := matchedNames(m.MatchedSkills); names != "" {
			sb.WriteString(fmt.Sprintf("    Skills: %s\n", names))
		}
		if names := matchedNames(m.MissingSkills); names != "" {
			sb.WriteString(fmt.Sprintf("    Missing: %s\n", names))
		}
	}

	if len(summary.Matches) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more candidates\n", len(summary.Matches)-maxItemsToShow))
	}

	p.printBox("TOP RANKED CANDIDATES", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintMatchDetail outputs the detailed explanation of one match.
func (p *Printer) PrintMatchDetail(detail *types.MatchDetail) {
	if detail == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s for %s\n", detail.CandidateName, detail.JobTitle))
	sb.WriteString(fmt.Sprintf("Score: %.1f (%s)\n", detail.Scores.Final, detail.Interpretation.Label))
	sb.WriteString(fmt.Sprintf("Semantic %.2f  Skills %.2f  Experience %.2f\n\n",
		detail.Scores.Semantic, detail.Scores.SkillMatch, detail.Scores.Experience))

	writeList(&sb, "Strengths", detail.Interpretation.Strengths, maxItemsToShow)
	writeList(&sb, "Concerns", detail.Interpretation.Concerns, maxItemsToShow)

	coverage := make([]string, 0, len(detail.Coverage))
	for _, c := range detail.Coverage {
		coverage = append(coverage, fmt.Sprintf("%s %d%% (%d/%d)", c.Category, c.Coverage, c.Matched, c.Total))
	}
	writeList(&sb, "Coverage", coverage, maxItemsToShow)

	if detail.Interpretation.Recommendation != "" {
		sb.WriteString(fmt.Sprintf("→ %s\n", detail.Interpretation.Recommendation))
	}

	p.printBox("MATCH DETAIL", strings.TrimSuffix(sb.String(), "\n"))
}

func matchedNames(list []types.MatchedSkill) string {
	names := make([]string, 0, len(list))
	for _, s := range list {
		names = append(names, s.Name)
	}
	return truncate(strings.Join(names, ", "), 40)
}
