package workflow

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/contact-cleaner/internal/types"
)

type stubAnalyzer struct {
	result *types.AnalysisResult
	err    error
	calls  int
}

func (a *stubAnalyzer) Analyze(_ context.Context, _ []types.Row) (*types.AnalysisResult, error) {
	a.calls++
	return a.result, a.err
}

type stubResolver struct {
	resolutions map[int]*types.EscalationResolution
	err         error
	calls       []int
}

func (r *stubResolver) Resolve(_ context.Context, entry *types.EscalationEntry) (*types.EscalationResolution, error) {
	r.calls = append(r.calls, entry.RowNumber)
	if r.err != nil {
		return nil, r.err
	}
	return r.resolutions[entry.RowNumber], nil
}

func inputRows(n int) []types.Row {
	rows := make([]types.Row, 0, n)
	for i := 1; i <= n; i++ {
		rows = append(rows, testRow(i))
	}
	return rows
}

func TestExecutor_AllClean(t *testing.T) {
	// Scenario: five valid rows, nothing to fix, nothing to escalate.
	result := &types.AnalysisResult{TotalRows: 5, ValidRows: inputRows(5)}
	analyzer := &stubAnalyzer{result: result}
	resolver := &stubResolver{}

	ws, err := NewExecutor().Run(context.Background(), inputRows(5), analyzer, resolver)
	require.NoError(t, err)

	assert.Equal(t, 1, analyzer.calls)
	assert.Empty(t, resolver.calls, "no escalation may be dispatched for a clean dataset")
	assert.Empty(t, ws.ResolvedFixed)
	assert.Empty(t, ws.ResolvedSkipped)

	merged, err := Merge(ws)
	require.NoError(t, err)
	assert.Equal(t, inputRows(5), merged)
}

func TestExecutor_EscalationsResolvedInQueueOrder(t *testing.T) {
	result := analysisWith(3)
	analyzer := &stubAnalyzer{result: result}
	resolver := &stubResolver{resolutions: map[int]*types.EscalationResolution{
		1: fixedResolution(1),
		2: skipResolution(2),
		3: fixedResolution(3),
	}}

	var dispatched []int
	executor := NewExecutor()
	executor.OnDispatch = func(index, total int, entry *types.EscalationEntry) {
		assert.Equal(t, 3, total)
		dispatched = append(dispatched, entry.RowNumber)
	}

	ws, err := executor.Run(context.Background(), inputRows(4), analyzer, resolver)
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2, 3}, resolver.calls, "escalations must be processed in queue order")
	assert.Equal(t, []int{1, 2, 3}, dispatched)
	assert.Len(t, ws.ResolvedFixed, 2)
	assert.Len(t, ws.ResolvedSkipped, 1)
	assert.Equal(t, 3, ws.Cursor)
}

func TestExecutor_AnalyzerErrorIsFatal(t *testing.T) {
	analyzer := &stubAnalyzer{err: fmt.Errorf("upstream unavailable")}

	_, err := NewExecutor().Run(context.Background(), inputRows(1), analyzer, &stubResolver{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "analysis capability failed")
}

func TestExecutor_AnalyzerSchemaViolationIsFatal(t *testing.T) {
	// total_rows disagrees with the submitted dataset.
	result := &types.AnalysisResult{TotalRows: 2, ValidRows: inputRows(2)}
	analyzer := &stubAnalyzer{result: result}

	_, err := NewExecutor().Run(context.Background(), inputRows(5), analyzer, &stubResolver{})
	var schemaErr *SchemaViolationError
	require.ErrorAs(t, err, &schemaErr)
}

func TestExecutor_MalformedResolutionDoesNotAbortRun(t *testing.T) {
	result := analysisWith(2)
	analyzer := &stubAnalyzer{result: result}
	// Row 1 gets a malformed resolution (nil), row 2 resolves normally.
	resolver := &stubResolver{resolutions: map[int]*types.EscalationResolution{
		2: fixedResolution(2),
	}}

	ws, err := NewExecutor().Run(context.Background(), inputRows(3), analyzer, resolver)
	require.NoError(t, err)

	require.Len(t, ws.ResolvedSkipped, 1)
	assert.Equal(t, 1, ws.ResolvedSkipped[0].RowNumber)
	assert.Contains(t, ws.Reasons[1], types.ReasonMalformedResponse)
	require.Len(t, ws.ResolvedFixed, 1)
	assert.Equal(t, 2, ws.ResolvedFixed[0].RowNumber)
}

func TestExecutor_ResolverErrorIsFatal(t *testing.T) {
	analyzer := &stubAnalyzer{result: analysisWith(1)}
	resolver := &stubResolver{err: fmt.Errorf("connection reset")}

	_, err := NewExecutor().Run(context.Background(), inputRows(2), analyzer, resolver)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "escalation capability failed for row 1")
}

func TestExecutor_StepCeiling(t *testing.T) {
	analyzer := &stubAnalyzer{result: analysisWith(10)}
	resolver := &stubResolver{resolutions: map[int]*types.EscalationResolution{}}
	for i := 1; i <= 10; i++ {
		resolver.resolutions[i] = fixedResolution(i)
	}

	executor := NewExecutor()
	executor.MaxSteps = 5

	_, err := executor.Run(context.Background(), inputRows(11), analyzer, resolver)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "step ceiling")
}

func TestExecutor_Timeout(t *testing.T) {
	analyzer := &stubAnalyzer{result: analysisWith(1)}
	slow := resolverFunc(func(ctx context.Context, entry *types.EscalationEntry) (*types.EscalationResolution, error) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Second):
			return fixedResolution(entry.RowNumber), nil
		}
	})

	executor := NewExecutor()
	executor.Timeout = 20 * time.Millisecond

	_, err := executor.Run(context.Background(), inputRows(2), analyzer, slow)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

type resolverFunc func(ctx context.Context, entry *types.EscalationEntry) (*types.EscalationResolution, error)

func (f resolverFunc) Resolve(ctx context.Context, entry *types.EscalationEntry) (*types.EscalationResolution, error) {
	return f(ctx, entry)
}

func TestExecutor_RowAccountingProperty(t *testing.T) {
	// The headline invariant: total == valid + auto_fixed + fixed + skipped.
	result := &types.AnalysisResult{
		TotalRows: 6,
		ValidRows: []types.Row{testRow(1), testRow(2)},
		AutoFixed: []types.AutoFixedEntry{
			{RowNumber: 3, Fixes: []types.Fix{{Column: "mobile", OldValue: "138 1234 5678", NewValue: "13812345678", Reason: "removed spaces"}}, FixedRow: testRow(3)},
		},
		Escalations: []types.EscalationEntry{escalationFor(4), escalationFor(5), escalationFor(6)},
	}
	analyzer := &stubAnalyzer{result: result}
	resolver := &stubResolver{resolutions: map[int]*types.EscalationResolution{
		4: fixedResolution(4),
		5: skipResolution(5),
		6: skipResolution(6),
	}}

	ws, err := NewExecutor().Run(context.Background(), inputRows(6), analyzer, resolver)
	require.NoError(t, err)

	assert.Equal(t, ws.Analysis.TotalRows,
		len(ws.Analysis.ValidRows)+len(ws.Analysis.AutoFixed)+len(ws.ResolvedFixed)+len(ws.ResolvedSkipped))
	assert.Equal(t, len(ws.Analysis.Escalations), len(ws.ResolvedFixed)+len(ws.ResolvedSkipped))
}
