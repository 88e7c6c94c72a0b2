package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/dshills/comet/internal/analyze"
)

// TextWriter outputs a human-readable text report.
type TextWriter struct{}

func (t *TextWriter) Write(w io.Writer, report *analyze.Report) error {
	ew := &errWriter{w: w}

	ew.printf("Comet Analysis (%s / %s)\n", report.Provider, report.Model)
	ew.printf("Repository: %s\n", report.Root)
	ew.println(strings.Repeat("-", 60))

	if report.Empty() {
		ew.println("No changes detected.")
		return ew.err
	}

	ew.printf("Changed files: %d\n", len(report.Files))
	for _, f := range report.Files {
		marker := " "
		if f.Staged {
			marker = "*"
		}
		if f.Status == "renamed" && f.OldPath != "" {
			ew.printf("  %s%s %s -> %s\n", marker, statusLetter(f.Status), f.OldPath, f.Path)
			continue
		}
		ew.printf("  %s%s %s\n", marker, statusLetter(f.Status), f.Path)
	}

	ew.println("")
	if report.CommitError != "" {
		ew.printf("Commit message: FAILED (%s)\n", report.CommitError)
	} else {
		ew.println("Suggested commit message:")
		ew.println(strings.Repeat("-", 60))
		ew.println(strings.TrimSpace(report.CommitMessage))
		ew.println(strings.Repeat("-", 60))
		if report.CommitCached {
			ew.println("(cached)")
		}
	}

	for _, rev := range report.Reviews {
		ew.printf("\nReview [chunk %d/%d] %s\n",
			rev.SequenceIndex+1, rev.TotalChunks, strings.Join(rev.Paths, ", "))
		ew.println(strings.Repeat("-", 40))
		if rev.Failed() {
			ew.printf("FAILED: %s\n", rev.Error)
			continue
		}
		ew.println(strings.TrimSpace(rev.Review))
		if rev.Cached {
			ew.println("(cached)")
		}
	}

	ew.printf("\n%s\n", strings.Repeat("-", 60))
	ew.printf("Completed in %dms (git: %dms, LLM: %dms)\n",
		report.Timing.TotalMs, report.Timing.GitMs, report.Timing.LLMMs)

	return ew.err
}

// errWriter wraps an io.Writer and captures the first error.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func (ew *errWriter) println(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintln(ew.w, s)
}

func statusLetter(status string) string {
	switch status {
	case "added":
		return "A"
	case "modified":
		return "M"
	case "deleted":
		return "D"
	case "renamed":
		return "R"
	case "untracked":
		return "?"
	case "tooLarge":
		return "L"
	default:
		return " "
	}
}
