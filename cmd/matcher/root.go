package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jonathan/talent-matcher/internal/config"
	"github.com/spf13/cobra"
)

// rootOptions holds flags shared by every subcommand.
type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "matcher",
		Short: "Candidate matching and profiling engine",
		Long: "matcher extracts skill, experience and education profiles from resumes and job " +
			"descriptions, ranks candidates against jobs and serves the workflow over a REST API.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to a config file (yaml, json or toml)")

	cmd.AddCommand(
		newServeCmd(opts),
		newMigrateCmd(opts),
		newProfileCmd(),
		newMatchCmd(),
		newTokenCmd(opts),
	)
	return cmd
}

func (o *rootOptions) load() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return nil
}
