package capability

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/contact-cleaner/internal/llm"
	"github.com/jonathan/contact-cleaner/internal/operator"
	"github.com/jonathan/contact-cleaner/internal/prompts"
	"github.com/jonathan/contact-cleaner/internal/types"
)

// maxFieldAttempts bounds how many times the operator may retry an invalid
// value for a single field before the row is skipped.
const maxFieldAttempts = 3

// fieldRules maps a column to its validator tag. Columns absent from the map
// accept any value.
var fieldRules = map[string]string{
	types.ColumnName:   "required",
	types.ColumnGender: "omitempty,oneof=男 女",
	types.ColumnEmail:  "omitempty,email",
	types.ColumnMobile: "omitempty,len=11,numeric,startswith=1",
}

// InteractiveResolver implements the escalation capability by walking the
// operator through each flagged issue on a console. Field corrections are
// validated locally and optionally normalized through a fast model tier.
type InteractiveResolver struct {
	console  operator.Console
	client   llm.Client
	validate *validator.Validate
	retry    RetryPolicy
}

// NewInteractiveResolver creates a resolver that converses on the given
// console. The client is optional: when nil, corrections are applied as
// typed, without model-assisted normalization.
func NewInteractiveResolver(console operator.Console, client llm.Client) *InteractiveResolver {
	return &InteractiveResolver{
		console:  console,
		client:   client,
		validate: validator.New(),
		retry:    DefaultRetryPolicy(),
	}
}

// Resolve presents one escalated row to the operator and collects a
// resolution for it. Operator choices that end the whole session surface as
// an abandoned resolution, not as an error; only context failures and broken
// consoles are fatal.
func (r *InteractiveResolver) Resolve(ctx context.Context, entry *types.EscalationEntry) (*types.EscalationResolution, error) {
	row := entry.CurrentRow
	fixed := 0

	r.console.Say(fmt.Sprintf("行 %d 需要人工处理，共 %d 个问题", entry.RowNumber, len(entry.Issues)))

	for i, issue := range entry.Issues {
		r.console.Say(formatIssue(i+1, len(entry.Issues), issue))

		resolution, applied, err := r.resolveIssue(ctx, entry, &row, issue)
		if err != nil {
			return nil, err
		}
		if resolution != nil {
			return resolution, nil
		}
		if applied {
			fixed++
		}
	}

	return &types.EscalationResolution{
		Success:  true,
		FixedRow: &row,
		Reason:   fmt.Sprintf("operator corrected %d field(s)", fixed),
	}, nil
}

// resolveIssue handles one issue. It returns a non-nil resolution when the
// operator decided the fate of the whole row (skip or abandon), or
// applied=true when a valid value was written into the row.
func (r *InteractiveResolver) resolveIssue(ctx context.Context, entry *types.EscalationEntry, row *types.Row, issue types.Issue) (*types.EscalationResolution, bool, error) {
	for attempt := 1; attempt <= maxFieldAttempts; attempt++ {
		answer, err := r.console.Ask(ctx, "输入新值，或序号采纳建议，s 跳过此行，q 放弃会话: ")
		if err != nil {
			if errors.Is(err, operator.ErrAbandoned) {
				return abandonedResolution(entry), false, nil
			}
			return nil, false, fmt.Errorf("console read failed: %w", err)
		}

		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "s", "skip":
			return skippedResolution(entry, types.ReasonOperatorSkipped), false, nil
		case "q", "quit", "abort":
			return abandonedResolution(entry), false, nil
		}

		value := strings.TrimSpace(answer)
		if n, convErr := strconv.Atoi(value); convErr == nil && n >= 1 && n <= len(issue.Suggestions) {
			value = issue.Suggestions[n-1]
		}

		value = r.normalizeValue(ctx, issue.Column, value)

		if err := r.validateField(issue.Column, value); err != nil {
			r.console.Say(fmt.Sprintf("值无效: %v，请重新输入 (%d/%d)", err, attempt, maxFieldAttempts))
			continue
		}

		row.SetField(issue.Column, value)
		return nil, true, nil
	}

	return skippedResolution(entry, fmt.Sprintf("operator input failed validation %d times", maxFieldAttempts)), false, nil
}

// normalizeValue asks the fast tier to canonicalize an operator-entered
// value. Any failure falls back to the raw value: normalization is
// best-effort and never blocks a resolution.
func (r *InteractiveResolver) normalizeValue(ctx context.Context, column, value string) string {
	if r.client == nil || value == "" {
		return value
	}

	template, err := prompts.Get("escalation.json", "normalize_value")
	if err != nil {
		return value
	}
	prompt := prompts.Format(template, map[string]string{
		"Column": column,
		"Value":  value,
	})

	raw, err := r.client.GenerateJSON(ctx, prompt, llm.TierLite)
	if err != nil {
		return value
	}

	var normalized struct {
		Value string `json:"value"`
	}
	if err := json.Unmarshal([]byte(llm.CleanJSONBlock(raw)), &normalized); err != nil || normalized.Value == "" {
		return value
	}
	return normalized.Value
}

func (r *InteractiveResolver) validateField(column, value string) error {
	rule, ok := fieldRules[column]
	if !ok || rule == "" {
		return nil
	}
	if err := r.validate.Var(value, rule); err != nil {
		return fmt.Errorf("%s does not satisfy %q", column, rule)
	}
	return nil
}

func formatIssue(index, total int, issue types.Issue) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%d/%d] 字段 %s (%s): %s\n", index, total, issue.Column, issue.IssueType, issue.Description)
	fmt.Fprintf(&b, "  当前值: %q\n", issue.CurrentValue)
	for i, suggestion := range issue.Suggestions {
		fmt.Fprintf(&b, "  建议 %d: %s\n", i+1, suggestion)
	}
	return strings.TrimRight(b.String(), "\n")
}

func skippedResolution(entry *types.EscalationEntry, reason string) *types.EscalationResolution {
	row := entry.CurrentRow
	return &types.EscalationResolution{
		Success:    false,
		SkippedRow: &row,
		Reason:     reason,
	}
}

func abandonedResolution(entry *types.EscalationEntry) *types.EscalationResolution {
	return skippedResolution(entry, types.ReasonSessionAbandoned)
}
