package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/CPAtoCybersecurity/csf-profile-sub000/internal/service"
)

func newArtifactsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "artifacts",
		Short: "Manage evidence artifacts",
	}
	cmd.AddCommand(newArtifactsListCmd())
	cmd.AddCommand(newArtifactsAddCmd())
	cmd.AddCommand(newArtifactsDeleteCmd())
	return cmd
}

func newArtifactsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List artifacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tURL\tUPLOADED")
			for _, artifact := range app.artifacts.List() {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					artifact.ID, artifact.Name, artifact.URL, artifact.UploadedDate)
			}
			return w.Flush()
		},
	}
}

func newArtifactsAddCmd() *cobra.Command {
	var req service.UpsertArtifactRequest

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create or update an artifact",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			artifact, err := app.artifacts.Upsert(cmd.Context(), req)
			if err != nil {
				return err
			}
			cmd.Printf("artifact %s saved\n", artifact.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.ID, "id", "", "Artifact id (empty generates one)")
	cmd.Flags().StringVar(&req.Name, "name", "", "Display name (required)")
	cmd.Flags().StringVar(&req.Description, "description", "", "Description")
	cmd.Flags().StringVar(&req.URL, "url", "", "Evidence location")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newArtifactsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an artifact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.artifacts.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			cmd.Printf("deleted artifact %s\n", args[0])
			return nil
		},
	}
}
