package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/contact-cleaner/internal/config"
	"github.com/jonathan/contact-cleaner/internal/pipeline"
	"github.com/jonathan/contact-cleaner/internal/workflow"
)

var cleanCommand = &cobra.Command{
	Use:   "clean",
	Short: "Run the full cleaning workflow end-to-end",
	Long: `Orchestrates the entire cleaning process: ingestion -> bulk analysis -> sequential escalation handling -> consistency validation -> merged output.

Configuration can be loaded from a JSON file using --config. Command-line arguments override config file values.`,
	RunE: runCleanCmd,
}

var (
	cleanConfigPath  string
	cleanInput       string
	cleanOutput      string
	cleanAPIKey      string
	cleanDatabaseURL string
	cleanResolutions string
	cleanTimeout     int
	cleanMaxSteps    int
	cleanVerbose     bool
)

func init() {
	// Config file flag (processed first)
	cleanCommand.Flags().StringVar(&cleanConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")

	cleanCommand.Flags().StringVarP(&cleanInput, "input", "i", "", "Path to the contact CSV to clean")
	cleanCommand.Flags().StringVarP(&cleanOutput, "output", "o", "", "Path for the cleaned CSV (defaults to <input>_cleaned.csv)")
	cleanCommand.Flags().StringVar(&cleanResolutions, "resolutions", "", "Path to a JSON file of prepared resolutions for unattended runs")
	cleanCommand.Flags().IntVar(&cleanTimeout, "timeout", 0, "Wall-clock limit for the run in seconds")
	cleanCommand.Flags().IntVar(&cleanMaxSteps, "max-steps", 0, "Workflow transition ceiling")
	cleanCommand.Flags().BoolVarP(&cleanVerbose, "verbose", "v", false, "Print detailed progress information")

	// API key can be passed as a flag, or read from env var GEMINI_API_KEY
	cleanCommand.Flags().StringVar(&cleanAPIKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")

	// Database URL for audit persistence
	cleanCommand.Flags().StringVar(&cleanDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")

	rootCmd.AddCommand(cleanCommand)
}

// resolveCleanConfig merges the config file, CLI overrides, defaults, and
// environment fallbacks into the effective configuration.
func resolveCleanConfig(cmd *cobra.Command) (config.Config, error) {
	var cfg config.Config
	if cleanConfigPath != "" {
		loadedCfg, err := config.LoadConfig(cleanConfigPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to load config: %w", err)
		}
		if err := loadedCfg.Validate(); err != nil {
			return cfg, err
		}
		cfg = *loadedCfg
		if cleanVerbose {
			_, _ = fmt.Fprintf(os.Stdout, "Loaded config from: %s\n", cleanConfigPath)
		}
	}

	// Apply CLI overrides; only override if the flag was explicitly set.
	if cmd.Flags().Changed("input") {
		cfg.Input = cleanInput
	}
	if cmd.Flags().Changed("output") {
		cfg.Output = cleanOutput
	}
	if cmd.Flags().Changed("api-key") {
		cfg.APIKey = cleanAPIKey
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = cleanDatabaseURL
	}
	if cmd.Flags().Changed("timeout") {
		cfg.TimeoutSeconds = cleanTimeout
	}
	if cmd.Flags().Changed("max-steps") {
		cfg.MaxSteps = cleanMaxSteps
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = cleanVerbose
	}

	cfg = cfg.MergeWithDefaults(config.Config{
		TimeoutSeconds: int(workflow.DefaultTimeout.Seconds()),
		MaxSteps:       workflow.DefaultMaxSteps,
	})

	if cfg.Input == "" {
		return cfg, fmt.Errorf("--input must be provided (via flag or config)")
	}

	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.APIKey == "" {
		return cfg, fmt.Errorf("GEMINI_API_KEY environment variable or --api-key flag is required")
	}

	// Audit persistence is optional; an empty URL disables it.
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}

	return cfg, nil
}

func runCleanCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := resolveCleanConfig(cmd)
	if err != nil {
		return err
	}

	_, err = pipeline.RunClean(ctx, pipeline.RunOptions{
		InputPath:       cfg.Input,
		OutputPath:      cfg.Output,
		APIKey:          cfg.APIKey,
		DatabaseURL:     cfg.DatabaseURL,
		TimeoutSeconds:  cfg.TimeoutSeconds,
		MaxSteps:        cfg.MaxSteps,
		Verbose:         cfg.Verbose,
		ResolutionsPath: cleanResolutions,
	})
	return err
}
