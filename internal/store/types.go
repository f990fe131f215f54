package store

import (
	"time"

	"github.com/google/uuid"
)

// Run represents one cleaning run record.
type Run struct {
	ID          uuid.UUID  `json:"id"`
	InputPath   string     `json:"input_path"`
	OutputPath  string     `json:"output_path"`
	TotalRows   int        `json:"total_rows"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Run status values.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusAbandoned = "abandoned"
)

// Artifact step constants for known artifact types.
const (
	StepInputRows      = "input_rows"
	StepAnalysisResult = "analysis_result"
	StepResolutions    = "resolutions"
	StepMergedOutput   = "merged_output"
	StepRunSummary     = "run_summary"
)

// Artifact category constants, grouping steps by workflow phase.
const (
	CategoryIngestion  = "ingestion"
	CategoryAnalysis   = "analysis"
	CategoryEscalation = "escalation"
	CategoryMerge      = "merge"
)
