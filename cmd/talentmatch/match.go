package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/talentmatch/backend/internal/db"
	"github.com/talentmatch/backend/internal/logger"
	"github.com/talentmatch/backend/internal/matching"
	"github.com/talentmatch/backend/internal/schemas"
)

var (
	matchStore bool
)

var matchCmd = &cobra.Command{
	Use:   "match <input.json>",
	Short: "Score a candidate against vacancies from a JSON file",
	Long: `Run bulk match scoring outside the server. The input file holds one
candidate and a list of vacancies; results print to stdout as JSON,
best match first. With --store, matches at or above the persistence
threshold are written to the database.`,
	Args: cobra.ExactArgs(1),
	RunE: runMatch,
}

func init() {
	matchCmd.Flags().BoolVar(&matchStore, "store", false, "Persist qualifying matches to the database")
	rootCmd.AddCommand(matchCmd)
}

type matchInput struct {
	Candidate matching.Candidate `json:"candidate"`
	Vacancies []matching.Vacancy `json:"vacancies"`
}

func runMatch(cmd *cobra.Command, args []string) error {
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read input file: %w", err)
	}

	if err := schemas.ValidateMatchInput(raw); err != nil {
		return err
	}

	var input matchInput
	if err := json.Unmarshal(raw, &input); err != nil {
		return fmt.Errorf("failed to parse input file: %w", err)
	}

	scores := matching.BulkScore(input.Candidate, input.Vacancies)

	if matchStore {
		databaseURL := os.Getenv("DATABASE_URL")
		if databaseURL == "" {
			return fmt.Errorf("DATABASE_URL environment variable is required with --store")
		}

		log, err := logger.New(false, false)
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		defer log.Sync()

		store, err := db.Connect(cmd.Context(), databaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer store.Close()

		stored, err := matching.StoreMatches(cmd.Context(), store, input.Candidate.ID, scores, log)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "stored %d matches\n", stored)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(scores)
}
