package workflow

import "github.com/jonathan/contact-cleaner/internal/types"

// State enumerates the router's finite states. Routing is a total function
// of (state, event); no side-channel bookkeeping decides the next node.
type State int

// Router states.
const (
	// StateStart means no analysis has been ingested yet.
	StateStart State = iota
	// StateDispatch means an escalation is queued and ready to send.
	StateDispatch
	// StateAwaitResolution means the escalation capability is executing,
	// including its human-interaction suspension.
	StateAwaitResolution
	// StateAdvance means a resolution was just ingested.
	StateAdvance
	// StateDone means the queue is exhausted or the analysis had zero
	// escalations.
	StateDone
)

func (s State) String() string {
	switch s {
	case StateStart:
		return "START"
	case StateDispatch:
		return "DISPATCH"
	case StateAwaitResolution:
		return "AWAIT_RESOLUTION"
	case StateAdvance:
		return "ADVANCE"
	case StateDone:
		return "DONE"
	}
	return "UNKNOWN"
}

// Phase records which capability last completed, used to keep analysis
// ingestion idempotent under executor retries.
type Phase int

// Phases of the run.
const (
	PhaseNone Phase = iota
	PhaseAnalysis
	PhaseEscalation
)

func (p Phase) String() string {
	switch p {
	case PhaseAnalysis:
		return "ANALYSIS"
	case PhaseEscalation:
		return "ESCALATION"
	}
	return "NONE"
}

// WorkflowState is the shared run state. It is owned exclusively by the
// Router while the graph executes: capabilities receive read-only
// projections of it and return new data, they never mutate it.
type WorkflowState struct {
	Analysis        *types.AnalysisResult
	Cursor          int
	ResolvedFixed   []types.Row
	ResolvedSkipped []types.Row
	LastPhase       Phase

	// Reasons is the audit trail: one reason per resolved row number.
	// Operator skips, abandoned sessions, and malformed capability output
	// are kept distinct here.
	Reasons map[int]string

	recorded map[int]bool
}

// NewWorkflowState returns an empty state, as it exists before the first
// node runs.
func NewWorkflowState() *WorkflowState {
	return &WorkflowState{
		Reasons:  make(map[int]string),
		recorded: make(map[int]bool),
	}
}

// Escalations returns the escalation queue, or nil before analysis ingestion.
func (ws *WorkflowState) Escalations() []types.EscalationEntry {
	if ws.Analysis == nil {
		return nil
	}
	return ws.Analysis.Escalations
}
