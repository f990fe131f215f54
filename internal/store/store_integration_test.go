package store

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/contact-cleaner/internal/types"
)

// setupTestStore connects to the audit DB for integration testing.
func setupTestStore(t *testing.T) *Store {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("Skipping integration test: DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	audit, err := Connect(ctx, dbURL)
	if err != nil {
		t.Skipf("Skipping integration test: failed to connect to DB: %v", err)
	}
	return audit
}

func TestIntegration_RunLifecycle(t *testing.T) {
	audit := setupTestStore(t)
	defer audit.Close()
	ctx := context.Background()

	inputPath := "integration-" + uuid.New().String() + ".csv"
	runID, err := audit.CreateRun(ctx, inputPath, inputPath+"_cleaned.csv", 3)
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, runID)

	run, err := audit.GetRun(ctx, runID)
	require.NoError(t, err)
	require.NotNil(t, run)
	assert.Equal(t, inputPath, run.InputPath)
	assert.Equal(t, 3, run.TotalRows)
	assert.Equal(t, StatusRunning, run.Status)
	assert.Nil(t, run.CompletedAt)

	require.NoError(t, audit.CompleteRun(ctx, runID, StatusAbandoned))

	run, err = audit.GetRun(ctx, runID)
	require.NoError(t, err)
	require.NotNil(t, run)
	assert.Equal(t, StatusAbandoned, run.Status)
	assert.NotNil(t, run.CompletedAt)

	runs, err := audit.ListRuns(ctx, 50)
	require.NoError(t, err)
	found := false
	for _, r := range runs {
		if r.ID == runID {
			found = true
		}
	}
	assert.True(t, found, "listed runs should include the new run")
}

func TestIntegration_ArtifactRoundtrip(t *testing.T) {
	audit := setupTestStore(t)
	defer audit.Close()
	ctx := context.Background()

	runID, err := audit.CreateRun(ctx, "artifacts.csv", "artifacts_cleaned.csv", 1)
	require.NoError(t, err)

	rows := []types.Row{{RowNumber: 1, Name: "张伟", Gender: "男", Mobile: "13800138000"}}
	require.NoError(t, audit.SaveArtifact(ctx, runID, StepInputRows, CategoryIngestion, rows))

	content, err := audit.GetArtifact(ctx, runID, StepInputRows)
	require.NoError(t, err)
	require.NotNil(t, content)

	var loaded []types.Row
	require.NoError(t, json.Unmarshal(content, &loaded))
	assert.Equal(t, rows, loaded)

	// Saving the same step again overwrites the earlier artifact.
	rows[0].Mobile = "13900139000"
	require.NoError(t, audit.SaveArtifact(ctx, runID, StepInputRows, CategoryIngestion, rows))

	content, err = audit.GetArtifact(ctx, runID, StepInputRows)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(content, &loaded))
	assert.Equal(t, "13900139000", loaded[0].Mobile)

	require.NoError(t, audit.CompleteRun(ctx, runID, StatusCompleted))
}

func TestIntegration_MissingRecordsReturnNil(t *testing.T) {
	audit := setupTestStore(t)
	defer audit.Close()
	ctx := context.Background()

	run, err := audit.GetRun(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, run)

	content, err := audit.GetArtifact(ctx, uuid.New(), StepRunSummary)
	require.NoError(t, err)
	assert.Nil(t, content)
}
