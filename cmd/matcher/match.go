package main

import (
	"github.com/google/uuid"
	"github.com/jonathan/talent-matcher/internal/ingestion"
	"github.com/jonathan/talent-matcher/internal/observability"
	"github.com/jonathan/talent-matcher/internal/ranking"
	"github.com/jonathan/talent-matcher/internal/types"
	"github.com/spf13/cobra"
)

func newMatchCmd() *cobra.Command {
	var (
		jobFile        string
		jobTitle       string
		candidateFiles []string
		detailed       bool
		format         string
	)

	cmd := &cobra.Command{
		Use:   "match",
		Short: "Rank resumes against a job description offline",
		Long: "Profile a job description and a set of resumes and print the ranked matches as JSON. " +
			"No embeddings are generated, so semantic similarity scores are zero.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateFormat(format); err != nil {
				return err
			}
			profiler, err := newProfiler()
			if err != nil {
				return err
			}

			jobText, err := ingestion.ReadFile(jobFile)
			if err != nil {
				return err
			}
			if jobTitle == "" {
				jobTitle = baseName(jobFile)
			}
			job := &types.Job{ID: uuid.New(), Title: jobTitle, Profile: profiler.GenerateJobProfile(jobText)}

			candidates := make([]types.Candidate, 0, len(candidateFiles))
			for _, path := range candidateFiles {
				text, err := ingestion.ReadFile(path)
				if err != nil {
					return err
				}
				candidates = append(candidates, types.Candidate{
					ID:      uuid.New(),
					Name:    baseName(path),
					Profile: profiler.GenerateCandidateProfile(text),
				})
			}

			results, err := ranking.RankCandidates(cmd.Context(), job, candidates, ranking.DefaultRankOptions())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if detailed {
				details := make([]types.MatchDetail, 0, len(results))
				for i := range results {
					r := results[i]
					r.Interpretation = ranking.InterpretDetailed(&r)
					details = append(details, types.MatchDetail{MatchResult: r, Coverage: ranking.CategoryCoverage(&r)})
				}
				if format == formatText {
					printer := observability.NewPrinter(out)
					for i := range details {
						printer.PrintMatchDetail(&details[i])
					}
					return nil
				}
				return writeJSON(out, details)
			}

			summary := &types.RunSummary{
				JobID:        job.ID,
				JobTitle:     job.Title,
				Matches:      results,
				Count:        len(results),
				AverageScore: ranking.AverageScore(results),
			}
			if format == formatText {
				observability.NewPrinter(out).PrintRankedMatches(summary)
				return nil
			}
			return writeJSON(out, summary)
		},
	}

	cmd.Flags().StringVar(&jobFile, "job", "", "Path to the job description")
	cmd.Flags().StringVar(&jobTitle, "title", "", "Job title (defaults to the job file name)")
	cmd.Flags().StringArrayVar(&candidateFiles, "candidate", nil, "Path to a resume (repeatable)")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "Include strengths, concerns and category coverage")
	cmd.Flags().StringVar(&format, "format", formatJSON, "Output format: json or text")
	_ = cmd.MarkFlagRequired("job")
	_ = cmd.MarkFlagRequired("candidate")
	return cmd
}
