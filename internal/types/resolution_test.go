package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEscalationResolution_Validate(t *testing.T) {
	fixed := sampleRow(3)
	skipped := sampleRow(4)

	tests := []struct {
		name       string
		resolution EscalationResolution
		wantErr    string
	}{
		{
			name:       "successful fix",
			resolution: EscalationResolution{Success: true, FixedRow: &fixed, Reason: "operator supplied missing digits"},
		},
		{
			name:       "operator skip",
			resolution: EscalationResolution{Success: false, SkippedRow: &skipped, Reason: ReasonOperatorSkipped},
		},
		{
			name:       "success without fixed_row",
			resolution: EscalationResolution{Success: true},
			wantErr:    "missing fixed_row",
		},
		{
			name:       "success with skipped_row",
			resolution: EscalationResolution{Success: true, FixedRow: &fixed, SkippedRow: &skipped},
			wantErr:    "must not carry skipped_row",
		},
		{
			name:       "skip without skipped_row",
			resolution: EscalationResolution{Success: false},
			wantErr:    "missing skipped_row",
		},
		{
			name:       "skip with fixed_row",
			resolution: EscalationResolution{Success: false, FixedRow: &fixed, SkippedRow: &skipped},
			wantErr:    "must not carry fixed_row",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.resolution.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestEscalationResolution_RowNumber(t *testing.T) {
	fixed := sampleRow(3)
	skipped := sampleRow(4)

	assert.Equal(t, 3, (&EscalationResolution{Success: true, FixedRow: &fixed}).RowNumber())
	assert.Equal(t, 4, (&EscalationResolution{Success: false, SkippedRow: &skipped}).RowNumber())
	assert.Equal(t, 0, (&EscalationResolution{}).RowNumber())
}

func TestEscalationResolution_JSONOmitsNilRows(t *testing.T) {
	skipped := sampleRow(2)
	resolution := EscalationResolution{Success: false, SkippedRow: &skipped, Reason: ReasonOperatorSkipped}

	jsonBytes, err := json.Marshal(&resolution)
	require.NoError(t, err)
	assert.NotContains(t, string(jsonBytes), "fixed_row")
	assert.Contains(t, string(jsonBytes), `"skipped_row"`)
}
