package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"procurement/db/migrations"
)

func newMigrateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database schema",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				conn, err := a.connect(cmd.Context())
				if err != nil {
					return err
				}
				defer conn.Close()
				if err := migrations.Up(conn.DB); err != nil {
					return err
				}
				a.log.Info("migrations applied")
				return nil
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the last migration",
			RunE: func(cmd *cobra.Command, args []string) error {
				conn, err := a.connect(cmd.Context())
				if err != nil {
					return err
				}
				defer conn.Close()
				return migrations.Down(conn.DB)
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Print migration status",
			RunE: func(cmd *cobra.Command, args []string) error {
				conn, err := a.connect(cmd.Context())
				if err != nil {
					return err
				}
				defer conn.Close()
				return migrations.Status(conn.DB)
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List migrations embedded in the binary",
			RunE: func(cmd *cobra.Command, args []string) error {
				files, err := migrations.Files()
				if err != nil {
					return err
				}
				for _, f := range files {
					fmt.Fprintln(cmd.OutOrStdout(), f)
				}
				return nil
			},
		},
	)
	return cmd
}
