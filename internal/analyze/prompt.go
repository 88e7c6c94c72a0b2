package analyze

import (
	"fmt"
	"strings"

	"github.com/dshills/comet/internal/changes"
	"github.com/dshills/comet/internal/chunk"
)

const commitSystemPromptText = `You are a helpful assistant that generates clear, concise git commit messages.
Follow conventional commit format: <type>(<scope>): <subject>

Types: feat, fix, docs, style, refactor, test, chore

Rules:
- Subject line should be max 50 characters
- Use imperative mood ("Add" not "Added")
- Don't end with period
- Include body if needed for complex changes
- Respond with ONLY the commit message, no preamble`

// CommitSystemPrompt returns the system prompt for commit-message
// generation, with an optional output-language instruction.
func CommitSystemPrompt(language string) string {
	if language == "" || strings.EqualFold(language, "english") {
		return commitSystemPromptText
	}
	return commitSystemPromptText + fmt.Sprintf("\n- Write the commit message in %s", language)
}

// diffExcerptLines caps the per-file diff excerpt in the change summary.
const diffExcerptLines = 10

// BuildCommitPrompt constructs the commit-message prompt from a change
// set, keeping it under maxLen bytes. When the full summary with diff
// excerpts is too long, the excerpts are dropped first; as a last
// resort the summary is truncated.
func BuildCommitPrompt(cs *changes.ChangeSet, maxLen int) string {
	prompt := commitPromptWith(summarizeChanges(cs, true))
	if maxLen <= 0 || len(prompt) <= maxLen {
		return prompt
	}

	prompt = commitPromptWith(summarizeChanges(cs, false))
	if len(prompt) <= maxLen {
		return prompt
	}
	return prompt[:maxLen]
}

func commitPromptWith(summary string) string {
	return fmt.Sprintf(`Based on these code changes, generate a git commit message:

%s

Generate a conventional commit message with:
1. A clear subject line (max 50 chars)
2. An optional body explaining what and why (if needed)
3. Focus on the main purpose of the changes`, summary)
}

func summarizeChanges(cs *changes.ChangeSet, includeDiffs bool) string {
	var b strings.Builder
	for _, fc := range cs.Changes {
		fmt.Fprintf(&b, "\nFile: %s\n", fc.Path)
		if fc.Status == changes.StatusRenamed && fc.OldPath != "" {
			fmt.Fprintf(&b, "- Renamed from %s to %s\n", fc.OldPath, fc.Path)
		} else {
			fmt.Fprintf(&b, "- %s\n", fc.Status)
		}
		payload := fc.Payload()
		if !includeDiffs || payload == "" {
			continue
		}
		lines := strings.Split(payload, "\n")
		b.WriteString("```\n")
		if len(lines) > diffExcerptLines {
			b.WriteString(strings.Join(lines[:diffExcerptLines], "\n"))
			b.WriteString("\n... (truncated)\n")
		} else {
			b.WriteString(payload)
			if !strings.HasSuffix(payload, "\n") {
				b.WriteString("\n")
			}
		}
		b.WriteString("```\n")
	}
	return b.String()
}

const reviewSystemPromptText = `You are an experienced code reviewer.
Provide constructive feedback focusing on:
- Code quality and best practices
- Potential bugs or issues
- Performance concerns
- Security vulnerabilities
- Suggestions for improvement

Be concise and actionable.`

// ReviewSystemPrompt returns the system prompt for per-chunk review.
func ReviewSystemPrompt() string { return reviewSystemPromptText }

// BuildReviewPrompt constructs the review prompt for one chunk.
func BuildReviewPrompt(ch chunk.Chunk) string {
	var b strings.Builder
	b.WriteString("Review this code change:\n")

	if langs := detectLanguages(ch.Paths()); len(langs) > 0 {
		fmt.Fprintf(&b, "Languages: %s\n", strings.Join(langs, ", "))
	}

	for _, e := range ch.Entries {
		fmt.Fprintf(&b, "\nFile: %s\n", e.Path)
		fmt.Fprintf(&b, "Change Type: %s\n", e.Status)
		if e.Parts > 1 {
			fmt.Fprintf(&b, "Section %d of %d\n", e.Part, e.Parts)
		}
		if e.Payload != "" {
			b.WriteString("\n")
			b.WriteString(e.Payload)
			if !strings.HasSuffix(e.Payload, "\n") {
				b.WriteString("\n")
			}
		}
	}

	b.WriteString(`
Provide a brief code review with:
1. Any critical issues (if any)
2. Suggestions for improvement
3. Positive aspects (if notable)

Keep it concise and constructive.`)
	return b.String()
}

func detectLanguages(files []string) []string {
	langMap := map[string]string{
		".go":   "Go",
		".py":   "Python",
		".js":   "JavaScript",
		".ts":   "TypeScript",
		".rs":   "Rust",
		".java": "Java",
		".rb":   "Ruby",
		".c":    "C",
		".cpp":  "C++",
		".sh":   "Shell",
		".sql":  "SQL",
		".yaml": "YAML",
		".yml":  "YAML",
	}

	seen := make(map[string]bool)
	var langs []string
	for _, f := range files {
		for ext, lang := range langMap {
			if strings.HasSuffix(f, ext) && !seen[lang] {
				seen[lang] = true
				langs = append(langs, lang)
			}
		}
	}
	return langs
}
