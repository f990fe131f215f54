package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/contact-cleaner/internal/pipeline"
)

var analyzeCommand = &cobra.Command{
	Use:   "analyze",
	Short: "Run only the analysis phase and write its result as JSON",
	Long: `Analyzes the contact CSV without entering the escalation loop. The full
analysis result is written as JSON, which previews what a clean run would
auto-fix and what it would hand to the operator.`,
	RunE: runAnalyzeCmd,
}

var (
	analyzeInput  string
	analyzeOutput string
	analyzeAPIKey string
)

func init() {
	analyzeCommand.Flags().StringVarP(&analyzeInput, "input", "i", "", "Path to the contact CSV to analyze")
	analyzeCommand.Flags().StringVarP(&analyzeOutput, "output", "o", "", "Path for the analysis JSON (defaults to stdout)")
	analyzeCommand.Flags().StringVar(&analyzeAPIKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")
	_ = analyzeCommand.MarkFlagRequired("input")

	rootCmd.AddCommand(analyzeCommand)
}

func runAnalyzeCmd(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	apiKey := analyzeAPIKey
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable or --api-key flag is required")
	}

	result, err := pipeline.RunAnalyze(ctx, pipeline.RunOptions{
		InputPath: analyzeInput,
		APIKey:    apiKey,
		Out:       os.Stderr,
	})
	if err != nil {
		return err
	}

	encoded, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode analysis result: %w", err)
	}

	if analyzeOutput == "" {
		fmt.Println(string(encoded))
		return nil
	}
	if err := os.WriteFile(analyzeOutput, append(encoded, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write analysis result: %w", err)
	}
	fmt.Printf("Wrote analysis result to %s\n", analyzeOutput)
	return nil
}
