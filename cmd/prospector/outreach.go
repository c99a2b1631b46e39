package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xavierca1/prospector/internal/config"
	"github.com/xavierca1/prospector/internal/outreach"
)

var searchCmd = &cobra.Command{
	Use:   "search <company-search|profile-search|email-finder>",
	Short: "Build a search URL for a contact",
	Long:  "Prints the search URL for the given service. With --open the URL is handed to the system browser.",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

var guessCmd = &cobra.Command{
	Use:   "guess",
	Short: "List common email address patterns for a contact",
	RunE:  runGuess,
}

var draftCmd = &cobra.Command{
	Use:   "draft",
	Short: "Print a cold email draft",
	RunE:  runDraft,
}

// contact flags shared by search, guess and draft
var (
	contactFirstName string
	contactLastName  string
	contactCompany   string
	contactDomain    string
	searchOpen       bool
)

func init() {
	for _, c := range []*cobra.Command{searchCmd, guessCmd, draftCmd} {
		c.Flags().StringVarP(&contactFirstName, "first-name", "f", "", "First name")
	}
	for _, c := range []*cobra.Command{searchCmd, guessCmd} {
		c.Flags().StringVarP(&contactLastName, "last-name", "l", "", "Last name")
		c.Flags().StringVarP(&contactDomain, "domain", "d", "", "Company domain, e.g. acme.com")
	}
	for _, c := range []*cobra.Command{searchCmd, draftCmd} {
		c.Flags().StringVarP(&contactCompany, "company", "c", "", "Company")
	}
	searchCmd.Flags().BoolVar(&searchOpen, "open", false, "Open the URL in the system browser")

	rootCmd.AddCommand(searchCmd, guessCmd, draftCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	u, err := cfg.Search.BuildSearchURL(outreach.Service(args[0]), outreach.SearchInput{
		FirstName: contactFirstName,
		LastName:  contactLastName,
		Company:   contactCompany,
		Domain:    contactDomain,
	})
	if errors.Is(err, outreach.ErrDomainRequired) {
		return fmt.Errorf("please enter the company domain first (--domain)")
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), u)
	if searchOpen {
		return openBrowser(u)
	}
	return nil
}

func runGuess(cmd *cobra.Command, _ []string) error {
	fmt.Fprintln(cmd.OutOrStdout(), outreach.GuessEmails(contactFirstName, contactLastName, contactDomain).Text())
	return nil
}

func runDraft(cmd *cobra.Command, _ []string) error {
	fmt.Fprintln(cmd.OutOrStdout(), outreach.DraftColdEmail(contactFirstName, contactCompany))
	return nil
}
