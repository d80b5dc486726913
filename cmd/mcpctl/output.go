package main

import (
	"fmt"
	"strings"

	"github.com/joshuapare/mcpkit/config/bulk"
	"github.com/joshuapare/mcpkit/config/plan"
	"github.com/joshuapare/mcpkit/config/verify"
)

// printPreview renders a plan's diff lines, colored by change kind.
func printPreview(p *plan.Plan) {
	for _, line := range p.Preview() {
		switch {
		case strings.HasPrefix(line, "+ "):
			printInfo("  %s\n", styled(diffAddedStyle, line))
		case strings.HasPrefix(line, "- "):
			printInfo("  %s\n", styled(diffRemovedStyle, line))
		case strings.HasPrefix(line, "~ "):
			printInfo("  %s\n", styled(diffModifiedStyle, line))
		default:
			printInfo("  %s\n", line)
		}
	}
	if issues := p.Validation(); len(issues.Issues) > 0 {
		printIssues(issues)
	}
}

// printIssues lists validation findings, one line each.
func printIssues(res verify.Result) {
	for _, is := range res.Issues {
		glyph := styled(warnStyle, "!")
		if is.Severity == verify.SeverityError {
			glyph = styled(errorStyle, "✗")
		}
		loc := is.Entry
		if is.Field != "" {
			if loc != "" {
				loc += " "
			}
			loc += is.Field
		}
		if loc != "" {
			printInfo("  %s %s: %s\n", glyph, loc, is.Message)
		} else {
			printInfo("  %s %s\n", glyph, is.Message)
		}
	}
}

// bulkProgress reports each entry of a bulk run as its outcome is
// decided.
func bulkProgress(name string, outcome bulk.Outcome, err error) {
	switch outcome {
	case bulk.OutcomeApplied:
		printInfo("  %s %s\n", styled(successStyle, "✓"), name)
	case bulk.OutcomeFailed:
		printInfo("  %s %s: %v\n", styled(errorStyle, "✗"), name, err)
	case bulk.OutcomeSkipped:
		printInfo("  %s %s (skipped)\n", styled(mutedStyle, "-"), name)
	case bulk.OutcomePlanned:
		printInfo("  %s %s (planned)\n", styled(mutedStyle, "~"), name)
	}
}

// bulkJSON shapes a bulk result for --json output.
func bulkJSON(res *bulk.Result) map[string]any {
	failures := make([]map[string]string, 0, len(res.Failed))
	for _, f := range res.Failed {
		failures = append(failures, map[string]string{"name": f.Name, "error": f.Err.Error()})
	}
	out := map[string]any{
		"applied": res.Applied,
		"skipped": res.Skipped,
		"failed":  failures,
	}
	if len(res.Issues.Issues) > 0 {
		msgs := make([]string, 0, len(res.Issues.Issues))
		for _, is := range res.Issues.Issues {
			msgs = append(msgs, is.String())
		}
		out["issues"] = msgs
	}
	return out
}

// bulkError converts failed entries into the command's error, keeping
// the first failure's kind for the exit code.
func bulkError(res *bulk.Result) error {
	if res.OK() {
		return nil
	}
	if len(res.Failed) == 1 {
		return fmt.Errorf("%s: %w", res.Failed[0].Name, res.Failed[0].Err)
	}
	return fmt.Errorf("%d entries failed, first %s: %w",
		len(res.Failed), res.Failed[0].Name, res.Failed[0].Err)
}

// bulkSummary prints the applied/failed/skipped tally of a bulk run.
func bulkSummary(res *bulk.Result) {
	printInfo("\n%d applied, %d failed, %d skipped\n",
		len(res.Applied), len(res.Failed), len(res.Skipped))
}
