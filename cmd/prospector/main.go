// Package main provides the prospector CLI and HTTP API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var storeDirFlag string

var rootCmd = &cobra.Command{
	Use:   "prospector",
	Short: "Track outbound prospects and draft outreach",
	Long:  "Prospector keeps a persisted list of sales prospects and builds search URLs, email guesses, cold email drafts and CSV exports for them.",
}

func init() {
	rootCmd.SilenceUsage = true
	rootCmd.PersistentFlags().StringVar(&storeDirFlag, "store-dir", "", "Directory for the file store (overrides STORE_DIR, forces the file driver)")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
