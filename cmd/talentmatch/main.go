// Package main provides the entry point for the TalentMatch HTTP API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "talentmatch",
	Short: "TalentMatch backend",
	Long:  "TalentMatch connects candidates and employers: vacancy postings, skill-based match scoring, and the application and invitation lifecycle via REST API.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
