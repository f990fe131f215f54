package types

import "fmt"

// Resolution reasons recorded in the audit trail. Operator skips, abandoned
// sessions, and malformed capability output are kept distinct.
const (
	ReasonOperatorSkipped   = "operator skipped the row"
	ReasonSessionAbandoned  = "operator abandoned session"
	ReasonMalformedResponse = "escalation capability returned a malformed resolution"
)

// EscalationResolution is the single-issue output of the escalation
// capability. Exactly one of FixedRow and SkippedRow is non-nil, determined
// by Success.
type EscalationResolution struct {
	Success    bool   `json:"success"`
	FixedRow   *Row   `json:"fixed_row,omitempty"`
	SkippedRow *Row   `json:"skipped_row,omitempty"`
	Reason     string `json:"reason,omitempty"`
}

// Validate enforces the shape invariant of a resolution.
func (r *EscalationResolution) Validate() error {
	if r.Success {
		if r.FixedRow == nil {
			return fmt.Errorf("successful resolution is missing fixed_row")
		}
		if r.SkippedRow != nil {
			return fmt.Errorf("successful resolution must not carry skipped_row")
		}
		return nil
	}
	if r.SkippedRow == nil {
		return fmt.Errorf("failed resolution is missing skipped_row")
	}
	if r.FixedRow != nil {
		return fmt.Errorf("failed resolution must not carry fixed_row")
	}
	return nil
}

// RowNumber returns the row number the resolution refers to, regardless of
// outcome. Returns 0 for a malformed resolution carrying neither row.
func (r *EscalationResolution) RowNumber() int {
	if r.FixedRow != nil {
		return r.FixedRow.RowNumber
	}
	if r.SkippedRow != nil {
		return r.SkippedRow.RowNumber
	}
	return 0
}
