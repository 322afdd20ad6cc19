package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/CPAtoCybersecurity/csf-profile-sub000/internal/models"
	"github.com/CPAtoCybersecurity/csf-profile-sub000/internal/service"
)

func newAssessmentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assessments",
		Short: "Manage assessment cycles",
	}
	cmd.AddCommand(newAssessmentsListCmd())
	cmd.AddCommand(newAssessmentsSetCmd())
	cmd.AddCommand(newAssessmentsScopeCmd())
	cmd.AddCommand(newAssessmentsDeleteCmd())
	return cmd
}

func newAssessmentsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List assessments",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tSCOPE TYPE\tITEMS\tEVALUATIONS")
			for _, assessment := range app.assessments.List() {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\n",
					assessment.ID, assessment.Name, assessment.ScopeType,
					len(assessment.ScopeIDs),
					len(app.evaluations.List(assessment.ID)))
			}
			return w.Flush()
		},
	}
}

func newAssessmentsSetCmd() *cobra.Command {
	var req service.UpsertAssessmentRequest
	var scopeType string

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Create or update an assessment",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			req.ScopeType = models.ScopeType(scopeType)
			assessment, err := app.assessments.Upsert(cmd.Context(), req)
			if err != nil {
				return err
			}
			cmd.Printf("assessment %s saved\n", assessment.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.ID, "id", "", "Assessment id (required)")
	cmd.Flags().StringVar(&req.Name, "name", "", "Display name (required)")
	cmd.Flags().StringVar(&req.Description, "description", "", "Description")
	cmd.Flags().StringVar(&scopeType, "scope-type", "", "controls or requirements")
	cmd.Flags().StringSliceVar(&req.ScopeIDs, "scope", nil, "In-scope item ids")
	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newAssessmentsScopeCmd() *cobra.Command {
	var items []string

	cmd := &cobra.Command{
		Use:   "add-scope <id>",
		Short: "Add items to an assessment's scope",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			assessment, err := app.assessments.AddScope(cmd.Context(), args[0], items)
			if err != nil {
				return err
			}
			cmd.Printf("assessment %s now has %d in-scope items\n", assessment.ID, len(assessment.ScopeIDs))
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&items, "items", nil, "Item ids to add (required)")
	_ = cmd.MarkFlagRequired("items")
	return cmd
}

func newAssessmentsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an assessment and its evaluations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			removed, err := app.assessments.Delete(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			cmd.Printf("deleted assessment %s and %d evaluations\n", args[0], removed)
			return nil
		},
	}
}
