package controllers

import (
	"fmt"
	"io"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/rios0rios0/updatewarden/internal/domain/entities"
)

// printReports writes one line per emitted decision and, with showDiffs,
// a line diff of every updated file.
func printReports(out io.Writer, reports []entities.PolicyReport, showDiffs bool) {
	for _, report := range reports {
		_, _ = fmt.Fprintf(out, "== %s %s\n", report.Policy.Ecosystem, report.Policy.Directory)
		before := make(map[string]string, len(report.Files))
		for _, file := range report.Files {
			before[file.Name] = file.Content
		}
		for _, decision := range report.Decisions {
			if !decision.Emitted() {
				continue
			}
			_, _ = fmt.Fprintln(out, describeDecision(decision))
			if showDiffs && decision.Outcome == entities.OutcomeUpdated {
				printDiffs(out, before, decision.UpdatedFiles)
			}
		}
		if report.Err != nil {
			_, _ = fmt.Fprintf(out, "  error: %v\n", report.Err)
		}
	}
}

func describeDecision(decision entities.UpdateDecision) string {
	dependency := decision.Dependency
	switch decision.Outcome {
	case entities.OutcomeUpdated:
		moves := make([]string, 0, len(decision.UpdatedDependencies))
		for _, updated := range decision.UpdatedDependencies {
			moves = append(moves, fmt.Sprintf("%s %s -> %s", updated.Name, updated.PreviousVersion, updated.Version))
		}
		kind := "update"
		if decision.IsSecurityFix {
			kind = "security update"
		}
		return fmt.Sprintf("  %s: %s (%s, unlock %s)", dependency.Name, strings.Join(moves, ", "), kind,
			decision.UnlockStrategy)
	case entities.OutcomeUpdateNotPossible:
		reasons := make([]string, 0, len(decision.ConflictingDependencies))
		for _, conflict := range decision.ConflictingDependencies {
			reasons = append(reasons, conflict.Explanation)
		}
		if len(reasons) == 0 {
			return fmt.Sprintf("  %s: update not possible", dependency.Name)
		}
		return fmt.Sprintf("  %s: update not possible (%s)", dependency.Name, strings.Join(reasons, "; "))
	case entities.OutcomeError:
		return fmt.Sprintf("  %s: error: %v", dependency.Name, decision.Err)
	default:
		return fmt.Sprintf("  %s: %s", dependency.Name, strings.ReplaceAll(string(decision.Outcome), "_", " "))
	}
}

// printDiffs diffs updated against before, then moves before forward so the
// next decision of the entry is diffed against this one's output.
func printDiffs(out io.Writer, before map[string]string, updated []entities.UpdatedFile) {
	for _, file := range updated {
		previous, existed := before[file.Name]
		switch {
		case file.Deleted:
			_, _ = fmt.Fprintf(out, "    deleted %s\n", file.Name)
			delete(before, file.Name)
			continue
		case !existed:
			_, _ = fmt.Fprintf(out, "    added %s\n", file.Name)
		default:
			_, _ = fmt.Fprintf(out, "    --- %s\n    +++ %s\n", file.Name, file.Name)
			_, _ = io.WriteString(out, lineDiff(previous, file.Content))
		}
		before[file.Name] = file.Content
	}
}

// lineDiff renders only the changed lines, prefixed with - and +.
func lineDiff(before, after string) string {
	dmp := diffmatchpatch.New()
	beforeChars, afterChars, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(beforeChars, afterChars, false), lines)

	var builder strings.Builder
	for _, diff := range diffs {
		prefix := ""
		switch diff.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		case diffmatchpatch.DiffEqual:
			continue
		}
		for _, line := range strings.SplitAfter(diff.Text, "\n") {
			if line == "" {
				continue
			}
			builder.WriteString("    " + prefix + strings.TrimSuffix(line, "\n") + "\n")
		}
	}
	return builder.String()
}
