package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jonathan/talent-matcher/internal/embedding"
	"github.com/jonathan/talent-matcher/internal/ingestion"
	"github.com/jonathan/talent-matcher/internal/observability"
	"github.com/jonathan/talent-matcher/internal/parsing"
	"github.com/jonathan/talent-matcher/internal/skills"
	"github.com/jonathan/talent-matcher/internal/types"
	"github.com/spf13/cobra"
)

func newProfileCmd() *cobra.Command {
	var (
		kind          string
		file          string
		embeddingText bool
		format        string
	)

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Extract a structured profile from a resume or job description",
		Long: "Read a plain-text or HTML resume or job description and print the extracted " +
			"profile as JSON. With --embedding-text, print the text that would be embedded instead.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateFormat(format); err != nil {
				return err
			}
			profiler, err := newProfiler()
			if err != nil {
				return err
			}
			text, err := ingestion.ReadFile(file)
			if err != nil {
				return err
			}
			name := baseName(file)
			out := cmd.OutOrStdout()

			switch types.ProfileKind(kind) {
			case types.KindCandidate:
				c := &types.Candidate{Name: name, FileName: filepath.Base(file), RawText: text, Profile: profiler.GenerateCandidateProfile(text)}
				if embeddingText {
					prepared, err := embedding.PrepareCandidateText(c)
					if err != nil {
						return err
					}
					_, err = fmt.Fprintln(out, prepared)
					return err
				}
				completeness := parsing.Completeness(c)
				if format == formatText {
					observability.NewPrinter(out).PrintCandidateProfile(c.Name, c.Profile, completeness)
					return nil
				}
				return writeJSON(out, map[string]any{
					"name":         c.Name,
					"profile":      c.Profile,
					"completeness": completeness,
				})
			case types.KindJob:
				j := &types.Job{Title: name, RawText: text, Profile: profiler.GenerateJobProfile(text)}
				if embeddingText {
					prepared, err := embedding.PrepareJobText(j)
					if err != nil {
						return err
					}
					_, err = fmt.Fprintln(out, prepared)
					return err
				}
				if format == formatText {
					observability.NewPrinter(out).PrintJobProfile(j.Title, j.Profile)
					return nil
				}
				return writeJSON(out, map[string]any{
					"title":   j.Title,
					"profile": j.Profile,
				})
			default:
				return fmt.Errorf("invalid --kind %q: must be candidate or job", kind)
			}
		},
	}

	cmd.Flags().StringVar(&kind, "kind", string(types.KindCandidate), "Document kind: candidate or job")
	cmd.Flags().StringVarP(&file, "file", "f", "", "Path to the document")
	cmd.Flags().BoolVar(&embeddingText, "embedding-text", false, "Print the prepared embedding text instead of JSON")
	cmd.Flags().StringVar(&format, "format", formatJSON, "Output format: json or text")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newProfiler() (*parsing.Profiler, error) {
	vocab, err := skills.Default()
	if err != nil {
		return nil, fmt.Errorf("failed to load skill vocabulary: %w", err)
	}
	return parsing.NewProfiler(vocab), nil
}

const (
	formatJSON = "json"
	formatText = "text"
)

func validateFormat(format string) error {
	if format != formatJSON && format != formatText {
		return fmt.Errorf("invalid --format %q: must be json or text", format)
	}
	return nil
}

// baseName is the file name without directory or extension.
func baseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
