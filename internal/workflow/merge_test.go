package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/contact-cleaner/internal/types"
)

func resolvedState() *WorkflowState {
	ws := NewWorkflowState()
	ws.Analysis = &types.AnalysisResult{
		TotalRows: 4,
		ValidRows: []types.Row{testRow(4)},
		AutoFixed: []types.AutoFixedEntry{
			{RowNumber: 2, Fixes: []types.Fix{{Column: "email", OldValue: " a@b.com", NewValue: "a@b.com", Reason: "trimmed whitespace"}}, FixedRow: testRow(2)},
		},
		Escalations: []types.EscalationEntry{escalationFor(1), escalationFor(3)},
	}
	fixed := testRow(1)
	fixed.Mobile = "13641654321"
	ws.ResolvedFixed = []types.Row{fixed}
	ws.ResolvedSkipped = []types.Row{testRow(3)}
	ws.LastPhase = PhaseEscalation
	return ws
}

func TestMerge_OrderedByRowNumber(t *testing.T) {
	merged, err := Merge(resolvedState())
	require.NoError(t, err)

	require.Len(t, merged, 4)
	for i, row := range merged {
		assert.Equal(t, i+1, row.RowNumber, "output must preserve original row order")
	}
	assert.Equal(t, "13641654321", merged[0].Mobile)
}

func TestMerge_SkippedRowKeptUnchanged(t *testing.T) {
	ws := resolvedState()
	merged, err := Merge(ws)
	require.NoError(t, err)
	assert.Equal(t, testRow(3), merged[2])
}

func TestValidateConsistency_NoAnalysis(t *testing.T) {
	var consistencyErr *ConsistencyError
	assert.ErrorAs(t, ValidateConsistency(nil), &consistencyErr)
	assert.ErrorAs(t, ValidateConsistency(NewWorkflowState()), &consistencyErr)
}

func TestValidateConsistency_UnresolvedEscalation(t *testing.T) {
	ws := resolvedState()
	ws.ResolvedSkipped = nil

	err := ValidateConsistency(ws)
	var consistencyErr *ConsistencyError
	require.ErrorAs(t, err, &consistencyErr)
	assert.Contains(t, err.Error(), "2 escalations were queued but 1 were resolved")
}

func TestValidateConsistency_RowCountMismatch(t *testing.T) {
	ws := resolvedState()
	ws.Analysis.TotalRows = 9

	err := ValidateConsistency(ws)
	var consistencyErr *ConsistencyError
	require.ErrorAs(t, err, &consistencyErr)
	assert.Contains(t, err.Error(), "9 input rows")
}

func TestValidateConsistency_DuplicateAcrossCategories(t *testing.T) {
	// Consistency failure injection: the same row number in valid_rows and
	// auto_fixed must abort before any output is produced.
	ws := resolvedState()
	ws.Analysis.ValidRows = append(ws.Analysis.ValidRows, testRow(2))
	ws.Analysis.TotalRows++

	err := ValidateConsistency(ws)
	var consistencyErr *ConsistencyError
	require.ErrorAs(t, err, &consistencyErr)
	assert.Contains(t, err.Error(), "appears in both")

	merged, mergeErr := Merge(ws)
	assert.Nil(t, merged, "no output may be assembled after a consistency failure")
	assert.Error(t, mergeErr)
}

func TestValidateConsistency_DuplicateBetweenResolvedCategories(t *testing.T) {
	ws := resolvedState()
	ws.ResolvedSkipped[0] = testRow(1) // collides with ResolvedFixed

	err := ValidateConsistency(ws)
	var consistencyErr *ConsistencyError
	require.ErrorAs(t, err, &consistencyErr)
}

func TestValidateConsistency_PassesOnResolvedState(t *testing.T) {
	assert.NoError(t, ValidateConsistency(resolvedState()))
}
