package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/CPAtoCybersecurity/csf-profile-sub000/internal/models"
	"github.com/CPAtoCybersecurity/csf-profile-sub000/internal/service"
	"github.com/CPAtoCybersecurity/csf-profile-sub000/pkg/crypto"
)

func newExportCmd() *cobra.Command {
	var format string
	var assessmentID string
	var quarter string
	var password string
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export assessment data as CSV, JSON snapshot or PDF summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			file, err := app.exporter.Generate(cmd.Context(), service.ExportOptions{
				Format:       service.ExportFormat(format),
				AssessmentID: assessmentID,
				Quarter:      models.Quarter(strings.ToUpper(quarter)),
				Password:     password,
			})
			if err != nil {
				return err
			}

			dir := out
			if dir == "" {
				dir = app.cfg.Export.OutputDir
			}
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("failed to create %s: %w", dir, err)
			}
			path := filepath.Join(dir, file.Name)
			if err := os.WriteFile(path, file.Data, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", path, err)
			}
			cmd.Printf("wrote %s (%d bytes)\n", path, len(file.Data))
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", string(service.ExportQuarterly), "Output format: csv, legacy-csv, tracker-csv, json or pdf")
	cmd.Flags().StringVar(&assessmentID, "assessment", "", "Limit the export to one assessment")
	cmd.Flags().StringVar(&quarter, "quarter", "Q1", "Quarter for the legacy-csv format")
	cmd.Flags().StringVar(&password, "password", "", "Encrypt the output with this password")
	cmd.Flags().StringVar(&out, "out", "", "Output directory (default from config)")
	return cmd
}

func newDecryptCmd() *cobra.Command {
	var password string
	var out string

	cmd := &cobra.Command{
		Use:   "decrypt <file>",
		Short: "Decrypt a password-protected export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}
			plain, err := crypto.Decrypt(data, password)
			if err != nil {
				return err
			}
			path := out
			if path == "" {
				path = strings.TrimSuffix(args[0], filepath.Ext(args[0]))
				path = strings.Replace(path, ".enc", "", 1) + filepath.Ext(args[0])
				if path == args[0] {
					path = args[0] + ".plain"
				}
			}
			if err := os.WriteFile(path, plain, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", path, err)
			}
			cmd.Printf("wrote %s (%d bytes)\n", path, len(plain))
			return nil
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "Decryption password")
	cmd.Flags().StringVar(&out, "out", "", "Output path (default strips the .enc marker)")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
