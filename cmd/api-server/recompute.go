package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"procurement/db"
	"procurement/internal/lifecycle"
)

func newRecomputeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "recompute-steps",
		Short: "Recalculate the stored current step of every contract",
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := a.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer conn.Close()

			n, err := lifecycle.RecomputeCurrentSteps(cmd.Context(), db.NewStorage(conn), a.log)
			fmt.Fprintf(cmd.OutOrStdout(), "updated %d contracts\n", n)
			return err
		},
	}
}
