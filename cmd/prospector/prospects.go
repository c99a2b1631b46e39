package main

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/xavierca1/prospector/internal/entity"
	"github.com/xavierca1/prospector/internal/usecase"
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Log a new prospect",
	Long:  "Validates the contact and adds it to the top of the prospect list. First name, company and email are required.",
	RunE:  runAdd,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List logged prospects, newest first",
	RunE:  runList,
}

var statusCmd = &cobra.Command{
	Use:   "status <id> <status>",
	Short: "Change the status of a prospect",
	Long:  "Sets the status of a prospect. Valid values: Not Contacted, Contacted, Replied, Meeting Set, Closed.",
	Args:  cobra.ExactArgs(2),
	RunE:  runStatus,
}

var removeCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove a prospect after confirmation",
	Args:  cobra.ExactArgs(1),
	RunE:  runRemove,
}

var (
	addInput  usecase.LogProspectInput
	addStatus string
	removeYes bool
)

func init() {
	addCmd.Flags().StringVarP(&addInput.FirstName, "first-name", "f", "", "First name (required)")
	addCmd.Flags().StringVarP(&addInput.LastName, "last-name", "l", "", "Last name")
	addCmd.Flags().StringVarP(&addInput.Company, "company", "c", "", "Company (required)")
	addCmd.Flags().StringVarP(&addInput.Domain, "domain", "d", "", "Company domain, e.g. acme.com")
	addCmd.Flags().StringVarP(&addInput.Email, "email", "e", "", "Verified email (required)")
	addCmd.Flags().StringVarP(&addInput.Title, "title", "t", "", "Job title")
	addCmd.Flags().StringVar(&addStatus, "status", string(entity.StatusNotContacted), "Initial status")

	removeCmd.Flags().BoolVarP(&removeYes, "yes", "y", false, "Skip the confirmation prompt")

	rootCmd.AddCommand(addCmd, listCmd, statusCmd, removeCmd)
}

func runAdd(cmd *cobra.Command, _ []string) error {
	b, err := openBackend(cmd.Context())
	if err != nil {
		return err
	}
	defer b.Close()

	input := addInput
	input.Status = entity.Status(addStatus)

	p, err := b.store.Append(cmd.Context(), input)
	if err != nil {
		return err
	}
	if err := b.store.SyncError(); err != nil {
		return fmt.Errorf("prospect logged but not saved: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Logged %s %s (%s) as %s\n", p.FirstName, p.LastName, p.Company, p.ID)
	return nil
}

func runList(cmd *cobra.Command, _ []string) error {
	b, err := openBackend(cmd.Context())
	if err != nil {
		return err
	}
	defer b.Close()

	printProspects(cmd.OutOrStdout(), b.store.List())
	return nil
}

func printProspects(out io.Writer, prospects []entity.Prospect) {
	if len(prospects) == 0 {
		fmt.Fprintln(out, "No prospects logged yet.")
		return
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCOMPANY\tEMAIL\tTITLE\tSTATUS\tADDED")
	for _, p := range prospects {
		fmt.Fprintf(tw, "%s\t%s %s\t%s\t%s\t%s\t%s\t%s\n",
			p.ID, p.FirstName, p.LastName, p.Company, p.Email, p.Title, p.Status, p.DateAdded)
	}
	tw.Flush()
}

func runStatus(cmd *cobra.Command, args []string) error {
	b, err := openBackend(cmd.Context())
	if err != nil {
		return err
	}
	defer b.Close()

	id, status := args[0], entity.Status(args[1])
	updated, err := b.store.UpdateStatus(cmd.Context(), id, status)
	if err != nil {
		return err
	}
	if !updated {
		fmt.Fprintf(cmd.OutOrStdout(), "No prospect with id %s\n", id)
		return nil
	}
	if err := b.store.SyncError(); err != nil {
		return fmt.Errorf("status changed but not saved: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", id, status)
	return nil
}

func runRemove(cmd *cobra.Command, args []string) error {
	b, err := openBackend(cmd.Context())
	if err != nil {
		return err
	}
	defer b.Close()

	var confirm usecase.ConfirmFunc = usecase.AlwaysConfirm
	if !removeYes {
		confirm = promptConfirm(cmd.InOrStdin(), cmd.OutOrStdout())
	}

	id := args[0]
	removed, err := b.store.Remove(cmd.Context(), id, confirm)
	if errors.Is(err, usecase.ErrRemovalNotConfirmed) {
		fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
		return nil
	}
	if err != nil {
		return err
	}
	if !removed {
		fmt.Fprintf(cmd.OutOrStdout(), "No prospect with id %s\n", id)
		return nil
	}
	if err := b.store.SyncError(); err != nil {
		return fmt.Errorf("prospect removed but not saved: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", id)
	return nil
}
