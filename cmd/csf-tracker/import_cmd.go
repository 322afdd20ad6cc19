package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/CPAtoCybersecurity/csf-profile-sub000/internal/models"
	"github.com/CPAtoCybersecurity/csf-profile-sub000/internal/service"
	"github.com/CPAtoCybersecurity/csf-profile-sub000/pkg/crypto"
)

func newImportCmd() *cobra.Command {
	var format string
	var password string

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a CSV export (standard, legacy or issue-tracker layout)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			data, err := readImportFile(args[0], password)
			if err != nil {
				return err
			}

			result, err := app.importer.ImportCSV(cmd.Context(), data, service.ImportFormat(format))
			if err != nil {
				return err
			}
			printImportResult(cmd, result)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "auto", "Row layout: auto, standard, legacy, tracker or requirements")
	cmd.Flags().StringVar(&password, "password", "", "Password for encrypted input files")
	return cmd
}

func newImportRequirementsCmd() *cobra.Command {
	var frameworkID string
	var name string
	var version string

	cmd := &cobra.Command{
		Use:   "import-requirements <file>",
		Short: "Import a framework requirement catalog, replacing its previous set",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}

			framework := models.Framework{ID: frameworkID, Name: name, Version: version}
			result, err := app.importer.ImportRequirements(cmd.Context(), data, framework)
			if err != nil {
				return err
			}
			printImportResult(cmd, result)
			return nil
		},
	}

	cmd.Flags().StringVar(&frameworkID, "framework", "nist-csf-2.0", "Framework identifier")
	cmd.Flags().StringVar(&name, "name", "NIST CSF", "Framework display name")
	cmd.Flags().StringVar(&version, "version", "2.0", "Framework version")
	return cmd
}

func readImportFile(path, password string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if crypto.IsEncrypted(data) {
		if password == "" {
			return nil, fmt.Errorf("%s is encrypted; pass --password", path)
		}
		return crypto.Decrypt(data, password)
	}
	return data, nil
}

func printImportResult(cmd *cobra.Command, result *service.ImportResult) {
	cmd.Printf("format: %s\n", result.Format)
	cmd.Printf("imported %d rows, skipped %d\n", result.Imported, result.Skipped)
	if result.Assessments > 0 {
		cmd.Printf("assessments: %d\n", result.Assessments)
	}
	if result.Controls > 0 {
		cmd.Printf("controls: %d\n", result.Controls)
	}
	if result.Evaluations > 0 {
		cmd.Printf("evaluations: %d\n", result.Evaluations)
	}
	if result.Requirements > 0 {
		cmd.Printf("requirements: %d\n", result.Requirements)
	}
	for _, warning := range result.Warnings {
		cmd.Printf("warning: %s\n", warning)
	}
}
