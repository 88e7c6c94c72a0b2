package analyze

// Outcome classifies a finished run for exit-status purposes.
type Outcome string

const (
	// OutcomeSuccess means every generation task succeeded.
	OutcomeSuccess Outcome = "success"
	// OutcomePartial means some tasks failed but at least one succeeded.
	OutcomePartial Outcome = "partial"
	// OutcomeFailure means every task failed.
	OutcomeFailure Outcome = "failure"
)

// FileSummary is one changed file as shown to the user.
type FileSummary struct {
	Path    string `json:"path"`
	OldPath string `json:"oldPath,omitempty"`
	Status  string `json:"status"`
	Staged  bool   `json:"staged"`
	Binary  bool   `json:"binary,omitempty"`
	Size    int64  `json:"sizeBytes"`
}

// ChunkReview is the review text for one chunk, or its failure.
type ChunkReview struct {
	SequenceIndex int      `json:"sequenceIndex"`
	TotalChunks   int      `json:"totalChunks"`
	Paths         []string `json:"paths"`
	Review        string   `json:"review,omitempty"`
	Cached        bool     `json:"cached,omitempty"`
	Error         string   `json:"error,omitempty"`
}

// Failed reports whether this chunk's generation failed.
func (r ChunkReview) Failed() bool { return r.Error != "" }

// Timing breaks a run's wall time into its phases.
type Timing struct {
	GitMs   int64 `json:"gitMs"`
	LLMMs   int64 `json:"llmMs"`
	TotalMs int64 `json:"totalMs"`
}

// Report is the complete result of one analysis run.
type Report struct {
	Tool    string `json:"tool"`
	Version string `json:"version"`
	RunID   string `json:"runId"`

	Root     string `json:"root"`
	Provider string `json:"provider"`
	Model    string `json:"model"`

	Files []FileSummary `json:"files"`

	CommitMessage string `json:"commitMessage,omitempty"`
	CommitCached  bool   `json:"commitCached,omitempty"`
	CommitError   string `json:"commitError,omitempty"`

	Reviews []ChunkReview `json:"reviews,omitempty"`

	ChunksTotal int    `json:"chunksTotal"`
	Timing      Timing `json:"timing"`
}

// Empty reports whether the working tree had no changes to analyze.
func (r *Report) Empty() bool { return len(r.Files) == 0 }

// Outcome classifies the run. The commit message counts as one task and
// each reviewed chunk as another; a run with no tasks is a success.
func (r *Report) Outcome() Outcome {
	var total, failed int
	if !r.Empty() {
		total++
		if r.CommitError != "" {
			failed++
		}
	}
	for _, rev := range r.Reviews {
		total++
		if rev.Failed() {
			failed++
		}
	}
	switch {
	case failed == 0:
		return OutcomeSuccess
	case failed == total:
		return OutcomeFailure
	default:
		return OutcomePartial
	}
}
