// Package workflow implements the orchestration core: the escalation router
// state machine, the graph executor that drives it, and the consistency
// validation and merge phase that assembles the final record set.
package workflow

import "fmt"

// SchemaViolationError reports a capability output that does not conform to
// its declared result shape or violates the row-accounting invariant.
type SchemaViolationError struct {
	Capability string
	Message    string
	Cause      error
}

func (e *SchemaViolationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s capability returned a malformed result: %s: %v", e.Capability, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s capability returned a malformed result: %s", e.Capability, e.Message)
}

func (e *SchemaViolationError) Unwrap() error {
	return e.Cause
}

// ConsistencyError reports a violated row-accounting invariant detected
// before output is written. A consistency error always aborts the run.
type ConsistencyError struct {
	Message string
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("consistency check failed: %s", e.Message)
}

// TransitionError reports a transition invoked from a state it is not legal
// in. It indicates a defect in the executor, never in input data.
type TransitionError struct {
	Transition string
	State      State
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("illegal transition %s from state %s", e.Transition, e.State)
}
