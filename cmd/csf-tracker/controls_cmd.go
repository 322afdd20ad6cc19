package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/CPAtoCybersecurity/csf-profile-sub000/internal/models"
	"github.com/CPAtoCybersecurity/csf-profile-sub000/internal/service"
)

func newControlsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "controls",
		Short: "Manage implementation controls",
	}
	cmd.AddCommand(newControlsListCmd())
	cmd.AddCommand(newControlsSetCmd())
	cmd.AddCommand(newControlsDeleteCmd())
	return cmd
}

func newControlsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List controls",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSTATUS\tOWNER\tREQUIREMENTS")
			for _, control := range app.controls.List() {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\n",
					control.ControlID, control.Status,
					app.directory.FormatUser(control.OwnerID),
					len(control.LinkedRequirementIDs))
			}
			return w.Flush()
		},
	}
}

func newControlsSetCmd() *cobra.Command {
	var req service.UpsertControlRequest
	var owner int64
	var status string

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Create or update a control",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			if owner > 0 {
				req.OwnerID = &owner
			}
			req.Status = models.ControlStatus(status)
			control, err := app.controls.Upsert(cmd.Context(), req)
			if err != nil {
				return err
			}
			cmd.Printf("control %s saved\n", control.ControlID)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.ControlID, "id", "", "Control id (empty assigns the next CTL-NNN)")
	cmd.Flags().StringVar(&req.ImplementationDescription, "description", "", "Implementation description")
	cmd.Flags().Int64Var(&owner, "owner", 0, "Owner user id")
	cmd.Flags().Int64SliceVar(&req.StakeholderIDs, "stakeholders", nil, "Stakeholder user ids")
	cmd.Flags().StringSliceVar(&req.LinkedRequirementIDs, "requirements", nil, "Linked requirement ids")
	cmd.Flags().StringVar(&status, "status", "", "Not Implemented, Partially Implemented or Implemented")
	return cmd
}

func newControlsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a control",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.controls.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			cmd.Printf("deleted control %s\n", args[0])
			return nil
		},
	}
}
