package types

import "fmt"

// IssueType classifies an unresolved problem found by the analysis phase.
type IssueType string

// Issue type enumeration. The analysis capability may only emit these values.
const (
	IssueMissingDigits      IssueType = "missing_digits"
	IssueRequiredFieldEmpty IssueType = "required_field_empty"
	IssueAllContactsEmpty   IssueType = "all_contacts_empty"
	IssueMultipleValues     IssueType = "multiple_values"
	IssueTypeMismatch       IssueType = "type_mismatch"
	IssueInvalidEnumValue   IssueType = "invalid_enum_value"
	IssueNonContactText     IssueType = "non_contact_text"
)

// KnownIssueTypes returns the closed issue-type enumeration.
func KnownIssueTypes() []IssueType {
	return []IssueType{
		IssueMissingDigits,
		IssueRequiredFieldEmpty,
		IssueAllContactsEmpty,
		IssueMultipleValues,
		IssueTypeMismatch,
		IssueInvalidEnumValue,
		IssueNonContactText,
	}
}

// Fix is the audit entry for one automatically corrected field. Created by
// the analysis phase only; immutable once created.
type Fix struct {
	Column   string `json:"column"`
	OldValue string `json:"old_value"`
	NewValue string `json:"new_value"`
	Reason   string `json:"reason"`
}

// Issue describes one unresolved problem in a single field.
type Issue struct {
	Column       string    `json:"column"`
	IssueType    IssueType `json:"issue_type"`
	CurrentValue string    `json:"current_value"`
	Description  string    `json:"description"`
	Suggestions  []string  `json:"suggestions"`
}

// AutoFixedEntry is one row whose every problem was resolved automatically.
type AutoFixedEntry struct {
	RowNumber int   `json:"_row_number"`
	Fixes     []Fix `json:"fixes"`
	FixedRow  Row   `json:"fixed_row"`
}

// EscalationEntry is one row with at least one unresolved problem. CurrentRow
// reflects any partial auto-fixes already applied to the row.
type EscalationEntry struct {
	RowNumber  int     `json:"_row_number"`
	Issues     []Issue `json:"issues"`
	CurrentRow Row     `json:"current_row"`
}

// AnalysisResult is the bulk output of the analysis capability. Every input
// row appears in exactly one of AutoFixed, Escalations, or ValidRows.
type AnalysisResult struct {
	TotalRows   int               `json:"total_rows"`
	AutoFixed   []AutoFixedEntry  `json:"auto_fixed"`
	Escalations []EscalationEntry `json:"escalations"`
	ValidRows   []Row             `json:"valid_rows"`
}

// Validate enforces the row-accounting invariant: TotalRows equals the sum of
// the three category sizes, and no row number appears in more than one
// category or more than once within a category.
func (a *AnalysisResult) Validate() error {
	categorized := len(a.ValidRows) + len(a.AutoFixed) + len(a.Escalations)
	if a.TotalRows != categorized {
		return fmt.Errorf("total_rows is %d but %d rows were categorized (%d valid + %d auto-fixed + %d escalated)",
			a.TotalRows, categorized, len(a.ValidRows), len(a.AutoFixed), len(a.Escalations))
	}

	seen := make(map[int]string, a.TotalRows)
	record := func(rowNumber int, category string) error {
		if rowNumber < 1 {
			return fmt.Errorf("invalid row number %d in %s", rowNumber, category)
		}
		if prev, ok := seen[rowNumber]; ok {
			return fmt.Errorf("row %d appears in both %s and %s", rowNumber, prev, category)
		}
		seen[rowNumber] = category
		return nil
	}

	for _, row := range a.ValidRows {
		if err := record(row.RowNumber, "valid_rows"); err != nil {
			return err
		}
	}
	for _, entry := range a.AutoFixed {
		if err := record(entry.RowNumber, "auto_fixed"); err != nil {
			return err
		}
		if entry.FixedRow.RowNumber != entry.RowNumber {
			return fmt.Errorf("auto_fixed entry for row %d carries fixed_row numbered %d", entry.RowNumber, entry.FixedRow.RowNumber)
		}
	}
	for _, entry := range a.Escalations {
		if err := record(entry.RowNumber, "escalations"); err != nil {
			return err
		}
		if entry.CurrentRow.RowNumber != entry.RowNumber {
			return fmt.Errorf("escalation entry for row %d carries current_row numbered %d", entry.RowNumber, entry.CurrentRow.RowNumber)
		}
		if len(entry.Issues) == 0 {
			return fmt.Errorf("escalation entry for row %d has no issues", entry.RowNumber)
		}
	}

	return nil
}
