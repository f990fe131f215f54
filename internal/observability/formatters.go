// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jonathan/contact-cleaner/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintAnalysisSummary outputs a human-readable summary of the analysis phase.
func (p *Printer) PrintAnalysisSummary(result *types.AnalysisResult) {
	if result == nil {
		return
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Total rows:   %d\n", result.TotalRows))
	sb.WriteString(fmt.Sprintf("Clean:        %d\n", len(result.ValidRows)))
	sb.WriteString(fmt.Sprintf("Auto-fixed:   %d\n", len(result.AutoFixed)))
	sb.WriteString(fmt.Sprintf("Escalated:    %d\n", len(result.Escalations)))

	if len(result.AutoFixed) > 0 {
		sb.WriteString("\nAuto-fixes:\n")
		count := min(len(result.AutoFixed), maxItemsToShow)
		for i := 0; i < count; i++ {
			entry := result.AutoFixed[i]
			sb.WriteString(fmt.Sprintf("  row %d: %d change(s)\n", entry.RowNumber, len(entry.Fixes)))
		}
		if len(result.AutoFixed) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(result.AutoFixed)-maxItemsToShow))
		}
	}

	if len(result.Escalations) > 0 {
		sb.WriteString("\nEscalated rows:\n")
		count := min(len(result.Escalations), maxItemsToShow)
		for i := 0; i < count; i++ {
			entry := result.Escalations[i]
			sb.WriteString(fmt.Sprintf("  row %d: %d issue(s)\n", entry.RowNumber, len(entry.Issues)))
		}
		if len(result.Escalations) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(result.Escalations)-maxItemsToShow))
		}
	}

	p.printBox("ANALYSIS SUMMARY", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintAutoFixes outputs the per-field audit of every automatic fix.
func (p *Printer) PrintAutoFixes(entries []types.AutoFixedEntry) {
	if len(entries) == 0 {
		return
	}

	var sb strings.Builder
	for i, entry := range entries {
		sb.WriteString(fmt.Sprintf("Row %d:\n", entry.RowNumber))
		for _, fix := range entry.Fixes {
			sb.WriteString(fmt.Sprintf("  %s: %q -> %q\n", fix.Column, fix.OldValue, fix.NewValue))
			if fix.Reason != "" {
				sb.WriteString(fmt.Sprintf("    %s\n", fix.Reason))
			}
		}
		if i < len(entries)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("AUTOMATIC FIXES", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintResolution outputs the outcome of one escalated row.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintResolution(resolution *types.EscalationResolution) {
	if resolution == nil {
		return
	}

	outcome := "skipped"
	if resolution.Success {
		outcome = "fixed"
	}
	fmt.Fprintf(p.out, "row %d %s: %s\n", resolution.RowNumber(), outcome, resolution.Reason)
}

// PrintRunReport outputs the end-of-run accounting: how many rows were
// written and how each escalated row was resolved.
func (p *Printer) PrintRunReport(totalRows, cleanRows, autoFixed, operatorFixed, skipped int, reasons map[int]string) {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Rows in input:       %d\n", totalRows))
	sb.WriteString(fmt.Sprintf("Clean:               %d\n", cleanRows))
	sb.WriteString(fmt.Sprintf("Auto-fixed:          %d\n", autoFixed))
	sb.WriteString(fmt.Sprintf("Fixed by operator:   %d\n", operatorFixed))
	sb.WriteString(fmt.Sprintf("Skipped:             %d\n", skipped))
	sb.WriteString(fmt.Sprintf("Rows in output:      %d\n", totalRows))

	if len(reasons) > 0 {
		sb.WriteString("\nEscalation outcomes:\n")
		numbers := make([]int, 0, len(reasons))
		for n := range reasons {
			numbers = append(numbers, n)
		}
		sort.Ints(numbers)
		for _, n := range numbers {
			sb.WriteString(fmt.Sprintf("  row %d: %s\n", n, reasons[n]))
		}
	}

	p.printBox("RUN REPORT", strings.TrimSuffix(sb.String(), "\n"))
}
