package main

import (
	"fmt"

	"github.com/jonathan/talent-matcher/internal/db"
	"github.com/spf13/cobra"
)

func newMigrateCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(cmd *cobra.Command, _ []string) error {
				url, err := databaseURL(root)
				if err != nil {
					return err
				}
				if err := migrateUp(url); err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied")
				return nil
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back all migrations",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withMigrator(root, func(m *db.Migrator) error {
					if err := m.Down(); err != nil {
						return err
					}
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Migrations rolled back")
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the current schema version",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withMigrator(root, func(m *db.Migrator) error {
					version, dirty, err := m.Version()
					if err != nil {
						return err
					}
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "version: %d dirty: %t\n", version, dirty)
					return nil
				})
			},
		},
	)
	return cmd
}

func databaseURL(root *rootOptions) (string, error) {
	cfg, err := root.load()
	if err != nil {
		return "", err
	}
	if err := cfg.RequireDatabase(); err != nil {
		return "", err
	}
	return cfg.Database.URL, nil
}

func withMigrator(root *rootOptions, fn func(m *db.Migrator) error) error {
	url, err := databaseURL(root)
	if err != nil {
		return err
	}
	m, err := db.NewMigrator(url)
	if err != nil {
		return err
	}
	defer func() { _ = m.Close() }()
	return fn(m)
}

func migrateUp(url string) error {
	m, err := db.NewMigrator(url)
	if err != nil {
		return err
	}
	defer func() { _ = m.Close() }()
	return m.Up()
}
