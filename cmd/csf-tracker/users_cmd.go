package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/CPAtoCybersecurity/csf-profile-sub000/internal/service"
)

func newUsersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage the user directory",
	}
	cmd.AddCommand(newUsersListCmd())
	cmd.AddCommand(newUsersCreateCmd())
	cmd.AddCommand(newUsersUpdateCmd())
	cmd.AddCommand(newUsersDeleteCmd())
	return cmd
}

func newUsersListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List directory users",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tTITLE\tEMAIL")
			for _, user := range app.directory.List() {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", user.ID, user.Name, user.Title, user.Email)
			}
			return w.Flush()
		},
	}
}

func newUsersCreateCmd() *cobra.Command {
	var req service.CreateUserRequest

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a directory user",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			user, err := app.directory.Create(cmd.Context(), req)
			if err != nil {
				return err
			}
			cmd.Printf("created user %d: %s\n", user.ID, user.Format())
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Name, "name", "", "Display name (required)")
	cmd.Flags().StringVar(&req.Title, "title", "", "Job title")
	cmd.Flags().StringVar(&req.Email, "email", "", "Email address")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newUsersUpdateCmd() *cobra.Command {
	var req service.CreateUserRequest

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a directory user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return err
			}
			app, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			user, err := app.directory.Update(cmd.Context(), id, req)
			if err != nil {
				return err
			}
			cmd.Printf("updated user %d: %s\n", user.ID, user.Format())
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Name, "name", "", "Display name (required)")
	cmd.Flags().StringVar(&req.Title, "title", "", "Job title")
	cmd.Flags().StringVar(&req.Email, "email", "", "Email address")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newUsersDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a directory user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return err
			}
			app, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.directory.Delete(cmd.Context(), id); err != nil {
				return err
			}
			cmd.Printf("deleted user %d\n", id)
			return nil
		},
	}
}
