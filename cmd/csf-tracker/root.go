package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "csf-tracker",
		Short:         "Local-first NIST CSF 2.0 compliance assessment tracker",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newImportCmd())
	cmd.AddCommand(newImportRequirementsCmd())
	cmd.AddCommand(newExportCmd())
	cmd.AddCommand(newDecryptCmd())
	cmd.AddCommand(newUsersCmd())
	cmd.AddCommand(newControlsCmd())
	cmd.AddCommand(newRequirementsCmd())
	cmd.AddCommand(newAssessmentsCmd())
	cmd.AddCommand(newEvaluationsCmd())
	cmd.AddCommand(newArtifactsCmd())
	cmd.AddCommand(newMigrateCmd())
	cmd.AddCommand(newSummaryCmd())
	return cmd
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}
