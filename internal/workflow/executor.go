package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/jonathan/contact-cleaner/internal/types"
)

// Analyzer is the analysis capability contract: invoked at most once per run
// with the full dataset, it returns a bulk result accounting for every row.
// It performs no interactive suspension.
type Analyzer interface {
	Analyze(ctx context.Context, rows []types.Row) (*types.AnalysisResult, error)
}

// Resolver is the escalation capability contract: invoked once per queued
// escalation, it presents the issues to a human operator, suspends until the
// operator responds, and yields exactly one resolution.
type Resolver interface {
	Resolve(ctx context.Context, entry *types.EscalationEntry) (*types.EscalationResolution, error)
}

// Executor defaults. Human interaction may legitimately take a long time, so
// the timeout is generous.
const (
	DefaultMaxSteps = 500
	DefaultTimeout  = 10 * time.Minute
)

// Executor drives the router: it calls the active node, applies the
// transition function, and repeats until DONE, bounded by a hard step
// ceiling and a wall-clock timeout. One capability call is outstanding at
// any time; nothing runs in parallel with anything else.
type Executor struct {
	MaxSteps int
	Timeout  time.Duration

	// OnDispatch, when set, is invoked just before each escalation is
	// handed to the resolver. Index is 0-based.
	OnDispatch func(index, total int, entry *types.EscalationEntry)
}

// NewExecutor returns an executor with default bounds.
func NewExecutor() *Executor {
	return &Executor{
		MaxSteps: DefaultMaxSteps,
		Timeout:  DefaultTimeout,
	}
}

// Run executes the full graph over the ingested rows and returns the final
// workflow state with the router in DONE. Any error is fatal for the run:
// row-local problems were already absorbed by the router's resolution
// ingestion and never surface here.
func (e *Executor) Run(ctx context.Context, rows []types.Row, analyzer Analyzer, resolver Resolver) (*WorkflowState, error) {
	maxSteps := e.MaxSteps
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}
	timeout := e.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	router := NewRouter()
	steps := 0

	// Analysis node runs exactly once, before the loop.
	steps++
	result, err := analyzer.Analyze(ctx, rows)
	if err != nil {
		return nil, fmt.Errorf("analysis capability failed: %w", err)
	}
	if err := router.IngestAnalysis(result, len(rows)); err != nil {
		return nil, err
	}

	for router.State() != StateDone {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("workflow aborted after %d steps: %w", steps, err)
		}
		steps++
		if steps > maxSteps {
			return nil, fmt.Errorf("workflow exceeded the step ceiling of %d node executions", maxSteps)
		}

		switch router.State() {
		case StateDispatch:
			entry, err := router.NextEscalation()
			if err != nil {
				return nil, err
			}
			if e.OnDispatch != nil {
				e.OnDispatch(router.Workflow().Cursor, len(router.Workflow().Escalations()), entry)
			}

			resolution, err := resolver.Resolve(ctx, entry)
			if err != nil {
				return nil, fmt.Errorf("escalation capability failed for row %d: %w", entry.RowNumber, err)
			}
			if err := router.IngestResolution(resolution); err != nil {
				return nil, err
			}

		case StateAdvance:
			if err := router.Advance(); err != nil {
				return nil, err
			}

		default:
			return nil, &TransitionError{Transition: "execute", State: router.State()}
		}
	}

	return router.Workflow(), nil
}
