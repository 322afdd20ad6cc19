package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/CPAtoCybersecurity/csf-profile-sub000/internal/models"
	"github.com/CPAtoCybersecurity/csf-profile-sub000/internal/service"
)

func newEvaluationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evaluations",
		Short: "Manage quarterly evaluations",
	}
	cmd.AddCommand(newEvaluationsListCmd())
	cmd.AddCommand(newEvaluationsSetCmd())
	cmd.AddCommand(newEvaluationsDeleteCmd())
	return cmd
}

func newEvaluationsListCmd() *cobra.Command {
	var assessmentID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List evaluations",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ASSESSMENT\tCONTROL\tQUARTER\tACTUAL\tTARGET\tSTATUS\tAUDITOR")
			for _, evaluation := range app.evaluations.List(assessmentID) {
				fmt.Fprintf(w, "%s\t%s\t%s\t%.1f\t%.1f\t%s\t%s\n",
					evaluation.AssessmentID, evaluation.ControlID, evaluation.Quarter,
					evaluation.ActualScore, evaluation.TargetScore,
					evaluation.TestingStatus,
					app.directory.FormatUser(evaluation.AuditorID))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&assessmentID, "assessment", "", "Limit to one assessment")
	return cmd
}

func newEvaluationsSetCmd() *cobra.Command {
	var req service.UpsertEvaluationRequest
	var quarter string
	var status string
	var auditor int64
	var remediationOwner int64

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Create or update one quarterly evaluation",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			req.Quarter = models.Quarter(strings.ToUpper(quarter))
			req.TestingStatus = models.TestingStatus(status)
			if auditor > 0 {
				req.AuditorID = &auditor
			}
			if remediationOwner > 0 {
				req.Remediation.OwnerID = &remediationOwner
			}
			evaluation, err := app.evaluations.Upsert(cmd.Context(), req)
			if err != nil {
				return err
			}
			cmd.Printf("evaluation %s saved\n", models.FormatEvaluationID(evaluation.EvaluationKey))
			return nil
		},
	}

	cmd.Flags().StringVar(&req.AssessmentID, "assessment", "", "Assessment id (required)")
	cmd.Flags().StringVar(&req.ControlID, "control", "", "Control id (required)")
	cmd.Flags().StringVar(&quarter, "quarter", "", "Q1..Q4 (required)")
	cmd.Flags().Int64Var(&auditor, "auditor", 0, "Auditor user id")
	cmd.Flags().Float64Var(&req.ActualScore, "actual", 0, "Actual score 0..10")
	cmd.Flags().Float64Var(&req.TargetScore, "target", 0, "Target score 0..10")
	cmd.Flags().StringVar(&req.Observations, "observations", "", "Observations")
	cmd.Flags().StringVar(&req.TestProcedures, "procedures", "", "Test procedures")
	cmd.Flags().StringVar(&status, "status", "", "Not Started, In Progress, Submitted or Complete")
	cmd.Flags().BoolVar(&req.Examine, "examine", false, "Examine method applied")
	cmd.Flags().BoolVar(&req.Interview, "interview", false, "Interview method applied")
	cmd.Flags().BoolVar(&req.Test, "test", false, "Test method applied")
	cmd.Flags().StringVar(&req.EvaluationDate, "date", "", "Evaluation date (YYYY-MM-DD)")
	cmd.Flags().StringSliceVar(&req.LinkedArtifactIDs, "artifacts", nil, "Linked artifact ids")
	cmd.Flags().Int64Var(&remediationOwner, "remediation-owner", 0, "Remediation owner user id")
	cmd.Flags().StringVar(&req.Remediation.ActionPlan, "action-plan", "", "Remediation action plan")
	cmd.Flags().StringVar(&req.Remediation.DueDate, "due-date", "", "Remediation due date (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("assessment")
	_ = cmd.MarkFlagRequired("control")
	_ = cmd.MarkFlagRequired("quarter")
	return cmd
}

func newEvaluationsDeleteCmd() *cobra.Command {
	var assessmentID string
	var controlID string
	var quarter string

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete one quarterly evaluation",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			key := models.EvaluationKey{
				AssessmentID: assessmentID,
				ControlID:    controlID,
				Quarter:      models.Quarter(strings.ToUpper(quarter)),
			}
			if err := app.evaluations.Delete(cmd.Context(), key); err != nil {
				return err
			}
			cmd.Printf("deleted evaluation %s\n", models.FormatEvaluationID(key))
			return nil
		},
	}

	cmd.Flags().StringVar(&assessmentID, "assessment", "", "Assessment id (required)")
	cmd.Flags().StringVar(&controlID, "control", "", "Control id (required)")
	cmd.Flags().StringVar(&quarter, "quarter", "", "Q1..Q4 (required)")
	_ = cmd.MarkFlagRequired("assessment")
	_ = cmd.MarkFlagRequired("control")
	_ = cmd.MarkFlagRequired("quarter")
	return cmd
}
