package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/xavierca1/prospector/internal/outreach"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the prospect list as CSV",
	Long:  "Writes the prospect list as CSV to stdout, to a file (--out) or mails it as an attachment (--email).",
	RunE:  runExport,
}

var (
	exportOut   string
	exportEmail string
)

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Path to write "+outreach.CSVFilename+" to")
	exportCmd.Flags().StringVar(&exportEmail, "email", "", "Mail the CSV to this address instead")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	b, err := openBackend(cmd.Context())
	if err != nil {
		return err
	}
	defer b.Close()

	csv, err := outreach.BuildCSV(b.store.List())
	if errors.Is(err, outreach.ErrNoData) {
		fmt.Fprintln(cmd.OutOrStdout(), "No data to export")
		return nil
	}
	if err != nil {
		return err
	}

	switch {
	case exportEmail != "":
		sender := b.mailSender()
		if sender == nil {
			return fmt.Errorf("mail is not configured: set MAIL_HOST")
		}
		if err := sender.SendCSVExport(cmd.Context(), exportEmail, outreach.CSVFilename, csv); err != nil {
			return fmt.Errorf("failed to mail export: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Sent %s to %s\n", outreach.CSVFilename, exportEmail)
	case exportOut != "":
		if err := os.WriteFile(exportOut, []byte(csv), 0o644); err != nil {
			return fmt.Errorf("failed to write export: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", exportOut)
	default:
		fmt.Fprintln(cmd.OutOrStdout(), csv)
	}
	return nil
}
