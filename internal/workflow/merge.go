package workflow

import (
	"fmt"
	"sort"

	"github.com/jonathan/contact-cleaner/internal/types"
)

// ValidateConsistency runs the post-execution invariant checks over the
// final workflow state. Any violation indicates a defect in an upstream
// capability or transition and aborts the run before output is written.
func ValidateConsistency(ws *WorkflowState) error {
	if ws == nil || ws.Analysis == nil {
		return &ConsistencyError{Message: "no analysis result present"}
	}

	escalations := len(ws.Analysis.Escalations)
	resolved := len(ws.ResolvedFixed) + len(ws.ResolvedSkipped)
	if escalations != resolved {
		return &ConsistencyError{Message: fmt.Sprintf(
			"%d escalations were queued but %d were resolved (%d fixed + %d skipped)",
			escalations, resolved, len(ws.ResolvedFixed), len(ws.ResolvedSkipped))}
	}

	accounted := len(ws.Analysis.ValidRows) + len(ws.Analysis.AutoFixed) + resolved
	if ws.Analysis.TotalRows != accounted {
		return &ConsistencyError{Message: fmt.Sprintf(
			"%d input rows but %d accounted for (%d valid + %d auto-fixed + %d fixed + %d skipped)",
			ws.Analysis.TotalRows, accounted,
			len(ws.Analysis.ValidRows), len(ws.Analysis.AutoFixed), len(ws.ResolvedFixed), len(ws.ResolvedSkipped))}
	}

	seen := make(map[int]string, ws.Analysis.TotalRows)
	check := func(rowNumber int, category string) error {
		if prev, ok := seen[rowNumber]; ok {
			return &ConsistencyError{Message: fmt.Sprintf("row %d appears in both %s and %s", rowNumber, prev, category)}
		}
		seen[rowNumber] = category
		return nil
	}
	for _, row := range ws.Analysis.ValidRows {
		if err := check(row.RowNumber, "valid_rows"); err != nil {
			return err
		}
	}
	for _, entry := range ws.Analysis.AutoFixed {
		if err := check(entry.RowNumber, "auto_fixed"); err != nil {
			return err
		}
	}
	for _, row := range ws.ResolvedFixed {
		if err := check(row.RowNumber, "resolved_fixed"); err != nil {
			return err
		}
	}
	for _, row := range ws.ResolvedSkipped {
		if err := check(row.RowNumber, "resolved_skipped"); err != nil {
			return err
		}
	}

	return nil
}

// Merge validates consistency and assembles the final record set: valid rows
// unchanged, the fixed row from each auto-fixed entry, the fixed row from
// each successful resolution, and the (possibly partially auto-fixed) row
// from each skipped resolution. Output preserves original row order.
func Merge(ws *WorkflowState) ([]types.Row, error) {
	if err := ValidateConsistency(ws); err != nil {
		return nil, err
	}

	merged := make([]types.Row, 0, ws.Analysis.TotalRows)
	merged = append(merged, ws.Analysis.ValidRows...)
	for _, entry := range ws.Analysis.AutoFixed {
		merged = append(merged, entry.FixedRow)
	}
	merged = append(merged, ws.ResolvedFixed...)
	merged = append(merged, ws.ResolvedSkipped...)

	sort.Slice(merged, func(i, j int) bool {
		return merged[i].RowNumber < merged[j].RowNumber
	})

	return merged, nil
}
