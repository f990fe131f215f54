package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/contact-cleaner/internal/store"
)

var runsCommand = &cobra.Command{
	Use:   "runs",
	Short: "List recorded cleaning runs or inspect one run's artifacts",
	Long: `Reads the audit database. Without --run-id it lists recent runs, newest
first. With --run-id it prints the run record and every recorded artifact
(input snapshot, analysis result, resolutions, merged output, summary) as
JSON.`,
	RunE: runRunsCmd,
}

var (
	runsDatabaseURL string
	runsLimit       int
	runsRunID       string
)

// artifactSteps is the display order for a run's artifacts.
var artifactSteps = []string{
	store.StepInputRows,
	store.StepAnalysisResult,
	store.StepResolutions,
	store.StepMergedOutput,
	store.StepRunSummary,
}

func init() {
	runsCommand.Flags().StringVar(&runsDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")
	runsCommand.Flags().IntVar(&runsLimit, "limit", 20, "Maximum number of runs to list")
	runsCommand.Flags().StringVar(&runsRunID, "run-id", "", "Show one run and its artifacts instead of listing")

	rootCmd.AddCommand(runsCommand)
}

func runRunsCmd(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	databaseURL := runsDatabaseURL
	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable or --db-url flag is required")
	}

	var runID uuid.UUID
	if runsRunID != "" {
		parsed, err := uuid.Parse(runsRunID)
		if err != nil {
			return fmt.Errorf("invalid run ID %q: %w", runsRunID, err)
		}
		runID = parsed
	}

	audit, err := store.Connect(ctx, databaseURL)
	if err != nil {
		return err
	}
	defer audit.Close()

	if runID != uuid.Nil {
		return showRun(ctx, audit, runID)
	}
	return listRuns(ctx, audit)
}

func listRuns(ctx context.Context, audit *store.Store) error {
	runs, err := audit.ListRuns(ctx, runsLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded.")
		return nil
	}

	for _, run := range runs {
		completed := "-"
		if run.CompletedAt != nil {
			completed = run.CompletedAt.Format("2006-01-02 15:04:05")
		}
		fmt.Printf("%s  %-10s  %4d rows  %s -> %s  (finished %s)\n",
			run.ID, run.Status, run.TotalRows, run.InputPath, run.OutputPath, completed)
	}
	return nil
}

func showRun(ctx context.Context, audit *store.Store, runID uuid.UUID) error {
	run, err := audit.GetRun(ctx, runID)
	if err != nil {
		return err
	}
	if run == nil {
		return fmt.Errorf("run %s not found", runID)
	}

	encoded, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode run: %w", err)
	}
	fmt.Println(string(encoded))

	for _, step := range artifactSteps {
		content, err := audit.GetArtifact(ctx, runID, step)
		if err != nil {
			return err
		}
		if content == nil {
			continue
		}
		fmt.Printf("\n--- %s ---\n%s\n", step, content)
	}
	return nil
}
