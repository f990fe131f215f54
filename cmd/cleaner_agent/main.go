// Package main provides the entry point for the contact cleaning CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "cleaner_agent",
	Short: "Contact CSV cleaning workflow",
	Long:  "Cleaner Agent analyzes a contact CSV with an LLM, walks a human operator through every row it cannot fix automatically, and writes a cleaned CSV with one output row per input row.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
