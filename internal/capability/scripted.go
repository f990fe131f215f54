package capability

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/jonathan/contact-cleaner/internal/schemas"
	"github.com/jonathan/contact-cleaner/internal/types"
)

// ScriptedResolver implements the escalation capability from a prepared JSON
// file instead of a live operator, which makes unattended reruns possible.
// The file holds an array of resolution objects; each is schema-validated at
// load time. Escalated rows without a scripted resolution are skipped.
type ScriptedResolver struct {
	byRow map[int]*types.EscalationResolution
}

// NewScriptedResolver loads and validates the resolutions file.
func NewScriptedResolver(path string) (*ScriptedResolver, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read resolutions file %s: %w", path, err)
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("resolutions file is not a JSON array: %w", err)
	}

	byRow := make(map[int]*types.EscalationResolution, len(raw))
	for i, msg := range raw {
		if err := schemas.ValidateEscalationResolution(string(msg)); err != nil {
			return nil, fmt.Errorf("resolution %d failed schema validation: %w", i, err)
		}

		var resolution types.EscalationResolution
		if err := json.Unmarshal(msg, &resolution); err != nil {
			return nil, fmt.Errorf("failed to decode resolution %d: %w", i, err)
		}
		if err := resolution.Validate(); err != nil {
			return nil, fmt.Errorf("resolution %d is invalid: %w", i, err)
		}

		rowNumber := resolution.RowNumber()
		if _, dup := byRow[rowNumber]; dup {
			return nil, fmt.Errorf("resolutions file holds two resolutions for row %d", rowNumber)
		}
		byRow[rowNumber] = &resolution
	}

	return &ScriptedResolver{byRow: byRow}, nil
}

// Resolve returns the scripted resolution for the escalated row, or a skip
// when the file carries none.
func (r *ScriptedResolver) Resolve(_ context.Context, entry *types.EscalationEntry) (*types.EscalationResolution, error) {
	if resolution, ok := r.byRow[entry.RowNumber]; ok {
		return resolution, nil
	}

	row := entry.CurrentRow
	return &types.EscalationResolution{
		Success:    false,
		SkippedRow: &row,
		Reason:     "no scripted resolution for the row",
	}, nil
}
