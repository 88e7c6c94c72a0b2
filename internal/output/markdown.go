package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/dshills/comet/internal/analyze"
)

// MarkdownWriter outputs a PR-comment-friendly markdown report.
type MarkdownWriter struct{}

func (m *MarkdownWriter) Write(w io.Writer, report *analyze.Report) error {
	fmt.Fprintf(w, "## Comet Analysis\n\n")

	if report.Empty() {
		fmt.Fprintln(w, "No changes detected.")
		return nil
	}

	fmt.Fprintf(w, "| File | Status | Staged |\n")
	fmt.Fprintf(w, "|------|--------|--------|\n")
	for _, f := range report.Files {
		name := f.Path
		if f.Status == "renamed" && f.OldPath != "" {
			name = f.OldPath + " → " + f.Path
		}
		staged := ""
		if f.Staged {
			staged = "yes"
		}
		fmt.Fprintf(w, "| `%s` | %s | %s |\n", name, f.Status, staged)
	}
	fmt.Fprintln(w)

	if report.CommitError != "" {
		fmt.Fprintf(w, "**Commit message generation failed:** %s\n\n", report.CommitError)
	} else {
		fmt.Fprintf(w, "### Suggested commit message\n\n")
		fmt.Fprintf(w, "```\n%s\n```\n\n", strings.TrimSpace(report.CommitMessage))
	}

	for _, rev := range report.Reviews {
		fmt.Fprintf(w, "<details>\n<summary>Review: chunk %d/%d (%s)</summary>\n\n",
			rev.SequenceIndex+1, rev.TotalChunks, strings.Join(rev.Paths, ", "))
		if rev.Failed() {
			fmt.Fprintf(w, "Failed: %s\n\n", rev.Error)
		} else {
			fmt.Fprintf(w, "%s\n\n", strings.TrimSpace(rev.Review))
		}
		fmt.Fprintf(w, "</details>\n\n")
	}

	fmt.Fprintf(w, "*Analyzed in %dms (git: %dms, LLM: %dms)*\n",
		report.Timing.TotalMs, report.Timing.GitMs, report.Timing.LLMMs)

	return nil
}
