// Package pipeline provides the high-level orchestration for a cleaning run:
// ingestion, analysis, sequential escalation handling, merge, and output.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/contact-cleaner/internal/capability"
	"github.com/jonathan/contact-cleaner/internal/csvio"
	"github.com/jonathan/contact-cleaner/internal/llm"
	"github.com/jonathan/contact-cleaner/internal/observability"
	"github.com/jonathan/contact-cleaner/internal/operator"
	"github.com/jonathan/contact-cleaner/internal/store"
	"github.com/jonathan/contact-cleaner/internal/types"
	"github.com/jonathan/contact-cleaner/internal/workflow"
)

// RunOptions holds configuration for a cleaning run.
type RunOptions struct {
	InputPath      string
	OutputPath     string // derived from InputPath when empty
	APIKey         string
	DatabaseURL    string
	TimeoutSeconds int
	MaxSteps       int
	Verbose        bool

	// ResolutionsPath, when set, replays prepared resolutions from a JSON
	// file instead of asking an operator. Escalated rows the file does not
	// cover are skipped.
	ResolutionsPath string

	// Console carries the operator conversation. Defaults to stdin/stdout.
	Console operator.Console
	// Client overrides the model client, mainly for tests. When nil a Gemini
	// client is created from APIKey.
	Client llm.Client
	// Out receives progress and report output. Defaults to stdout.
	Out io.Writer
}

// Summary is the end-of-run accounting returned to the caller.
type Summary struct {
	RunID         uuid.UUID      `json:"run_id,omitempty"`
	InputPath     string         `json:"input_path"`
	OutputPath    string         `json:"output_path"`
	TotalRows     int            `json:"total_rows"`
	CleanRows     int            `json:"clean_rows"`
	AutoFixed     int            `json:"auto_fixed"`
	OperatorFixed int            `json:"operator_fixed"`
	Skipped       int            `json:"skipped"`
	Status        string         `json:"status"`
	Reasons       map[int]string `json:"reasons,omitempty"`
	Merged        []types.Row    `json:"-"`
}

// RunClean executes the full cleaning workflow for one CSV file and writes
// the cleaned output next to the input. The returned summary accounts for
// every input row.
func RunClean(ctx context.Context, opts RunOptions) (*Summary, error) {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	printer := observability.NewPrinter(out)

	outputPath := opts.OutputPath
	if outputPath == "" {
		outputPath = csvio.OutputPath(opts.InputPath)
	}

	fmt.Fprintf(out, "Loading contacts from %s...\n", opts.InputPath)
	rows, err := csvio.Load(opts.InputPath)
	if err != nil {
		return nil, fmt.Errorf("ingestion failed: %w", err)
	}
	fmt.Fprintf(out, "Loaded %d rows\n", len(rows))

	// Audit persistence is best effort: a broken database degrades to a
	// warning, never to a failed run.
	var audit *store.Store
	var runID uuid.UUID
	if opts.DatabaseURL != "" {
		audit, err = store.Connect(ctx, opts.DatabaseURL)
		if err != nil {
			fmt.Fprintf(out, "Warning: failed to connect to database: %v\n", err)
			fmt.Fprintf(out, "Continuing without audit persistence...\n")
			audit = nil
		} else {
			defer audit.Close()
			runID, err = audit.CreateRun(ctx, opts.InputPath, outputPath, len(rows))
			if err != nil {
				fmt.Fprintf(out, "Warning: failed to create audit run: %v\n", err)
				runID = uuid.Nil
			} else {
				_ = audit.SaveArtifact(ctx, runID, store.StepInputRows, store.CategoryIngestion, rows)
				if opts.Verbose {
					fmt.Fprintf(out, "[VERBOSE] Created audit run: %s\n", runID)
				}
			}
		}
	}

	client := opts.Client
	if client == nil {
		client, err = llm.NewClient(ctx, nil, opts.APIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create model client: %w", err)
		}
		defer client.Close()
	}

	analyzer := capability.NewLLMAnalyzer(client)

	var resolver workflow.Resolver
	if opts.ResolutionsPath != "" {
		resolver, err = capability.NewScriptedResolver(opts.ResolutionsPath)
		if err != nil {
			return nil, err
		}
	} else {
		console := opts.Console
		if console == nil {
			console = operator.NewTerminalConsole(os.Stdin, out)
		}
		resolver = capability.NewInteractiveResolver(console, client)
	}

	executor := workflow.NewExecutor()
	if opts.MaxSteps > 0 {
		executor.MaxSteps = opts.MaxSteps
	}
	if opts.TimeoutSeconds > 0 {
		executor.Timeout = time.Duration(opts.TimeoutSeconds) * time.Second
	}
	executor.OnDispatch = func(index, total int, entry *types.EscalationEntry) {
		fmt.Fprintf(out, "Escalation %d/%d: row %d\n", index+1, total, entry.RowNumber)
	}

	fmt.Fprintf(out, "Analyzing %d rows...\n", len(rows))
	state, err := executor.Run(ctx, rows, analyzer, resolver)
	if err != nil {
		completeRun(ctx, audit, runID, store.StatusFailed)
		return nil, err
	}

	if opts.Verbose {
		printer.PrintAnalysisSummary(state.Analysis)
		printer.PrintAutoFixes(state.Analysis.AutoFixed)
	}
	if audit != nil && runID != uuid.Nil {
		_ = audit.SaveArtifact(ctx, runID, store.StepAnalysisResult, store.CategoryAnalysis, state.Analysis)
		_ = audit.SaveArtifact(ctx, runID, store.StepResolutions, store.CategoryEscalation, map[string]any{
			"fixed":   state.ResolvedFixed,
			"skipped": state.ResolvedSkipped,
			"reasons": state.Reasons,
		})
	}

	merged, err := workflow.Merge(state)
	if err != nil {
		completeRun(ctx, audit, runID, store.StatusFailed)
		return nil, fmt.Errorf("merge failed: %w", err)
	}

	if err := csvio.Save(outputPath, merged); err != nil {
		completeRun(ctx, audit, runID, store.StatusFailed)
		return nil, fmt.Errorf("failed to write cleaned output: %w", err)
	}
	fmt.Fprintf(out, "Wrote %d rows to %s\n", len(merged), outputPath)

	// An operator abandoning mid-session still yields a complete output file
	// (remaining rows are skipped), but the run record reflects the abort.
	status := store.StatusCompleted
	for _, reason := range state.Reasons {
		if reason == types.ReasonSessionAbandoned {
			status = store.StatusAbandoned
			break
		}
	}

	summary := &Summary{
		RunID:         runID,
		InputPath:     opts.InputPath,
		OutputPath:    outputPath,
		TotalRows:     state.Analysis.TotalRows,
		CleanRows:     len(state.Analysis.ValidRows),
		AutoFixed:     len(state.Analysis.AutoFixed),
		OperatorFixed: len(state.ResolvedFixed),
		Skipped:       len(state.ResolvedSkipped),
		Status:        status,
		Reasons:       state.Reasons,
		Merged:        merged,
	}

	if audit != nil && runID != uuid.Nil {
		_ = audit.SaveArtifact(ctx, runID, store.StepMergedOutput, store.CategoryMerge, merged)
		_ = audit.SaveArtifact(ctx, runID, store.StepRunSummary, store.CategoryMerge, summary)
	}
	completeRun(ctx, audit, runID, status)

	printer.PrintRunReport(summary.TotalRows, summary.CleanRows, summary.AutoFixed, summary.OperatorFixed, summary.Skipped, summary.Reasons)

	return summary, nil
}

func completeRun(ctx context.Context, audit *store.Store, runID uuid.UUID, status string) {
	if audit == nil || runID == uuid.Nil {
		return
	}
	_ = audit.CompleteRun(ctx, runID, status)
}
