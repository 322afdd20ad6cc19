package main

import (
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Move legacy embedded quarter data into the evaluation store",
		Long: "Schema upgrades run automatically when data is loaded. This command " +
			"additionally bridges quarter data still embedded inside assessments " +
			"into the normalized evaluation store; re-running it is a no-op.",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			result, err := app.migrator.BridgeObservations(cmd.Context())
			if err != nil {
				return err
			}
			cmd.Printf("bridged %d assessments: %d evaluations moved, %d skipped\n",
				result.Assessments, result.Evaluations, result.Skipped)
			return nil
		},
	}
}
