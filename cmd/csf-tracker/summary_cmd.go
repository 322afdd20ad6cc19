package main

import (
	"github.com/spf13/cobra"
)

func newSummaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Print entity counts for the current database",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			snapshot := app.exporter.Snapshot()
			cmd.Printf("users:        %d\n", snapshot.Counts.Users)
			cmd.Printf("controls:     %d\n", snapshot.Counts.Controls)
			cmd.Printf("assessments:  %d\n", snapshot.Counts.Assessments)
			cmd.Printf("evaluations:  %d\n", snapshot.Counts.Evaluations)
			cmd.Printf("requirements: %d\n", snapshot.Counts.Requirements)
			cmd.Printf("frameworks:   %d\n", snapshot.Counts.Frameworks)
			cmd.Printf("artifacts:    %d\n", snapshot.Counts.Artifacts)
			return nil
		},
	}
}
