package main

import (
	"fmt"

	"github.com/jonathan/talent-matcher/internal/server"
	"github.com/spf13/cobra"
)

func newTokenCmd(root *rootOptions) *cobra.Command {
	var subject string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for the API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}
			if err := cfg.Auth.RequireSecret(); err != nil {
				return err
			}

			token, err := server.NewJWTService(cfg.Auth).GenerateToken(subject)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "", "Client name recorded in the token")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}
