package workflow

import (
	"fmt"
	"reflect"

	"github.com/jonathan/contact-cleaner/internal/types"
)

// Router is the finite-state machine sequencing analysis ingestion,
// escalation dispatch, resolution ingestion, and termination. It is the only
// writer of the WorkflowState; transition methods are the only mutations.
type Router struct {
	state State
	ws    *WorkflowState
}

// NewRouter creates a router in START with an empty workflow state.
func NewRouter() *Router {
	return &Router{
		state: StateStart,
		ws:    NewWorkflowState(),
	}
}

// State returns the router's current state.
func (r *Router) State() State {
	return r.state
}

// Workflow returns the shared state. Callers other than the merge phase must
// treat it as read-only.
func (r *Router) Workflow() *WorkflowState {
	return r.ws
}

// IngestAnalysis handles START → DISPATCH (or START → DONE for an empty
// queue). It stores the analysis result, resets the cursor, and marks the
// analysis phase complete.
//
// The transition is idempotent: re-invoking it with the same payload after
// ingestion is a no-op, so a capability or executor retry replaying the step
// cannot duplicate state. A different payload after ingestion is a defect.
func (r *Router) IngestAnalysis(result *types.AnalysisResult, inputRows int) error {
	if result == nil {
		return &SchemaViolationError{Capability: "analysis", Message: "no result returned"}
	}

	if r.ws.LastPhase >= PhaseAnalysis && r.ws.Analysis != nil {
		if r.ws.Analysis == result || reflect.DeepEqual(r.ws.Analysis, result) {
			return nil
		}
		return &TransitionError{Transition: "ingest-analysis", State: r.state}
	}
	if r.state != StateStart {
		return &TransitionError{Transition: "ingest-analysis", State: r.state}
	}

	if result.TotalRows != inputRows {
		return &SchemaViolationError{
			Capability: "analysis",
			Message:    fmt.Sprintf("total_rows is %d but %d rows were submitted", result.TotalRows, inputRows),
		}
	}
	if err := result.Validate(); err != nil {
		return &SchemaViolationError{Capability: "analysis", Message: "row accounting invariant violated", Cause: err}
	}

	r.ws.Analysis = result
	r.ws.Cursor = 0
	r.ws.LastPhase = PhaseAnalysis

	if len(result.Escalations) == 0 {
		r.state = StateDone
	} else {
		r.state = StateDispatch
	}
	return nil
}

// NextEscalation handles DISPATCH → AWAIT_RESOLUTION: it selects the queued
// escalation under the cursor and hands a copy of it to the caller. The
// cursor is deliberately not touched here, so a replayed dispatch cannot
// skip or repeat an index.
func (r *Router) NextEscalation() (*types.EscalationEntry, error) {
	if r.state != StateDispatch {
		return nil, &TransitionError{Transition: "dispatch", State: r.state}
	}
	queue := r.ws.Escalations()
	if r.ws.Cursor >= len(queue) {
		return nil, &TransitionError{Transition: "dispatch", State: r.state}
	}

	entry := queue[r.ws.Cursor]
	r.state = StateAwaitResolution
	return &entry, nil
}

// IngestResolution handles AWAIT_RESOLUTION → ADVANCE. A well-formed
// resolution is recorded into ResolvedFixed or ResolvedSkipped keyed by row
// number; a malformed one (wrong shape, or a row number that does not match
// the dispatched escalation) is recorded as a skip of the dispatched row
// with a diagnostic reason, never as a run abort. A duplicate row number is
// fatal.
func (r *Router) IngestResolution(resolution *types.EscalationResolution) error {
	if r.state != StateAwaitResolution {
		return &TransitionError{Transition: "ingest-resolution", State: r.state}
	}

	entry := r.ws.Escalations()[r.ws.Cursor]

	resolution = normalizeResolution(resolution, &entry)

	rowNumber := resolution.RowNumber()
	if r.ws.recorded[rowNumber] {
		return &ConsistencyError{Message: fmt.Sprintf("row %d was already resolved", rowNumber)}
	}
	r.ws.recorded[rowNumber] = true

	if resolution.Success {
		r.ws.ResolvedFixed = append(r.ws.ResolvedFixed, *resolution.FixedRow)
	} else {
		r.ws.ResolvedSkipped = append(r.ws.ResolvedSkipped, *resolution.SkippedRow)
	}
	r.ws.Reasons[rowNumber] = resolution.Reason
	r.ws.LastPhase = PhaseEscalation
	r.state = StateAdvance
	return nil
}

// normalizeResolution converts a missing, malformed, or mismatched
// resolution into a skip of the dispatched row, preserving the original row
// data. One bad escalation must not lose data for other rows.
func normalizeResolution(resolution *types.EscalationResolution, entry *types.EscalationEntry) *types.EscalationResolution {
	skip := func(reason string) *types.EscalationResolution {
		skipped := entry.CurrentRow
		return &types.EscalationResolution{
			Success:    false,
			SkippedRow: &skipped,
			Reason:     reason,
		}
	}

	if resolution == nil {
		return skip(types.ReasonMalformedResponse)
	}
	if err := resolution.Validate(); err != nil {
		return skip(fmt.Sprintf("%s: %v", types.ReasonMalformedResponse, err))
	}
	if resolution.RowNumber() != entry.RowNumber {
		return skip(fmt.Sprintf("%s: resolution refers to row %d, escalation was for row %d",
			types.ReasonMalformedResponse, resolution.RowNumber(), entry.RowNumber))
	}
	return resolution
}

// Advance handles ADVANCE → DISPATCH (loop) or ADVANCE → DONE. The cursor
// increments by exactly one, then the dispatch guard is re-evaluated. This
// is the only place the cursor moves.
func (r *Router) Advance() error {
	if r.state != StateAdvance {
		return &TransitionError{Transition: "advance", State: r.state}
	}

	r.ws.Cursor++
	if r.ws.Cursor < len(r.ws.Escalations()) {
		r.state = StateDispatch
	} else {
		r.state = StateDone
	}
	return nil
}
