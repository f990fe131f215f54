package pipeline

import (
	"context"
	"fmt"
	"os"

	"github.com/jonathan/contact-cleaner/internal/capability"
	"github.com/jonathan/contact-cleaner/internal/csvio"
	"github.com/jonathan/contact-cleaner/internal/llm"
	"github.com/jonathan/contact-cleaner/internal/types"
)

// RunAnalyze executes only the analysis phase and returns its result without
// entering the escalation loop. Useful for previewing what a full run would
// escalate before committing operator time.
func RunAnalyze(ctx context.Context, opts RunOptions) (*types.AnalysisResult, error) {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	rows, err := csvio.Load(opts.InputPath)
	if err != nil {
		return nil, fmt.Errorf("ingestion failed: %w", err)
	}
	fmt.Fprintf(out, "Loaded %d rows from %s\n", len(rows), opts.InputPath)

	client := opts.Client
	if client == nil {
		client, err = llm.NewClient(ctx, nil, opts.APIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create model client: %w", err)
		}
		defer client.Close()
	}

	analyzer := capability.NewLLMAnalyzer(client)
	result, err := analyzer.Analyze(ctx, rows)
	if err != nil {
		return nil, fmt.Errorf("analysis capability failed: %w", err)
	}
	if err := result.Validate(); err != nil {
		return nil, fmt.Errorf("analysis result is inconsistent: %w", err)
	}
	if result.TotalRows != len(rows) {
		return nil, fmt.Errorf("analysis accounted for %d rows, input has %d", result.TotalRows, len(rows))
	}

	return result, nil
}
