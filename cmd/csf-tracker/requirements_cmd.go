package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newRequirementsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "requirements",
		Short: "Browse the imported requirement catalogs",
	}
	cmd.AddCommand(newRequirementsListCmd())
	cmd.AddCommand(newFrameworksListCmd())
	return cmd
}

func newRequirementsListCmd() *cobra.Command {
	var frameworkID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List requirements, optionally for one framework",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			requirements := app.reqRepo.List()
			if frameworkID != "" {
				requirements = app.reqRepo.ListByFramework(frameworkID)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tFRAMEWORK\tFUNCTION\tCATEGORY\tDESCRIPTION")
			for _, req := range requirements {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					req.ID, req.FrameworkID, req.Function, req.Category, req.SubcategoryDescription)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&frameworkID, "framework", "", "Limit to one framework id")
	return cmd
}

func newFrameworksListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "frameworks",
		Short: "List imported frameworks",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tVERSION\tIMPORTED")
			for _, fw := range app.reqRepo.Frameworks() {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					fw.ID, fw.Name, fw.Version, fw.ImportedAt.Format("2006-01-02"))
			}
			return w.Flush()
		},
	}
}
