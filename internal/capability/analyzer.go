package capability

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jonathan/contact-cleaner/internal/llm"
	"github.com/jonathan/contact-cleaner/internal/prompts"
	"github.com/jonathan/contact-cleaner/internal/schemas"
	"github.com/jonathan/contact-cleaner/internal/types"
	"github.com/jonathan/contact-cleaner/internal/workflow"
)

// LLMAnalyzer implements the bulk analysis capability. It sends the whole
// dataset to the model in one call and returns the structured classification
// of every row. The response is schema-validated before it is trusted.
type LLMAnalyzer struct {
	client llm.Client
	tier   llm.ModelTier
	retry  RetryPolicy
}

// NewLLMAnalyzer creates an analyzer backed by the given client. Analysis
// uses the advanced tier: one large, accuracy-sensitive call per run.
func NewLLMAnalyzer(client llm.Client) *LLMAnalyzer {
	return &LLMAnalyzer{
		client: client,
		tier:   llm.TierAdvanced,
		retry:  DefaultRetryPolicy(),
	}
}

// Analyze classifies every input row as clean, auto-fixed, or escalated.
func (a *LLMAnalyzer) Analyze(ctx context.Context, rows []types.Row) (*types.AnalysisResult, error) {
	dataset, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode dataset for analysis: %w", err)
	}

	template, err := prompts.Get("analysis.json", "analyze_and_fix")
	if err != nil {
		return nil, fmt.Errorf("failed to load analysis prompt: %w", err)
	}
	prompt := prompts.Format(template, map[string]string{"Dataset": string(dataset)})

	raw, err := generateJSONWithRetry(ctx, a.client, "analysis", prompt, a.tier, a.retry)
	if err != nil {
		return nil, err
	}

	if err := schemas.ValidateAnalysisResult(raw); err != nil {
		return nil, &workflow.SchemaViolationError{
			Capability: "analysis",
			Message:    "analysis output failed schema validation",
			Cause:      err,
		}
	}

	var result types.AnalysisResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, &workflow.SchemaViolationError{
			Capability: "analysis",
			Message:    "analysis output is not valid JSON",
			Cause:      err,
		}
	}

	return &result, nil
}
