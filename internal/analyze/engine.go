package analyze

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/dshills/comet/internal/cache"
	"github.com/dshills/comet/internal/changes"
	"github.com/dshills/comet/internal/chunk"
	"github.com/dshills/comet/internal/config"
	"github.com/dshills/comet/internal/logging"
	"github.com/dshills/comet/internal/providers"
	"github.com/dshills/comet/internal/redact"
)

// Engine runs the analysis pipeline: collect pending changes, pack
// them into chunks, and generate a commit message and optional
// per-chunk reviews through the provider, with results cached by
// content fingerprint.
type Engine struct {
	cfg   config.Config
	gen   providers.Generator
	store *cache.Cache
}

// New builds an engine from configuration: the configured provider
// wrapped in the retry policy, and the on-disk result cache.
func New(cfg config.Config) (*Engine, error) {
	base, err := providers.New(cfg.Provider, cfg.Model)
	if err != nil {
		return nil, err
	}
	gen := providers.Retrier{
		Generator:  base,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: time.Duration(cfg.RetryDelayMS) * time.Millisecond,
	}
	store, err := cache.New(cfg.Cache.Enabled, cfg.Cache.Dir, cfg.Cache.TTLSeconds)
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}
	return &Engine{cfg: cfg, gen: gen, store: store}, nil
}

// NewWithBackend builds an engine around an explicit generator and
// cache. Used by tests and by callers that already hold a provider.
func NewWithBackend(cfg config.Config, gen providers.Generator, store *cache.Cache) *Engine {
	return &Engine{cfg: cfg, gen: gen, store: store}
}

// Options selects per-run behavior.
type Options struct {
	// Review enables per-chunk code review on top of the commit message.
	Review bool
}

// Run analyzes the pending changes of the repository at repoRoot. Task
// failures (a chunk the provider could not process) are recorded in
// the report and do not abort the run; only infrastructure failures
// and context cancellation return an error.
func (e *Engine) Run(ctx context.Context, repoRoot string, opts Options) (*Report, error) {
	start := time.Now()

	cs, err := changes.Collect(repoRoot, changes.Options{MaxFileSizeMB: e.cfg.MaxFileSizeMB})
	if err != nil {
		return nil, err
	}
	gitMs := time.Since(start).Milliseconds()

	report := &Report{
		Tool:     "comet",
		Version:  "1.0",
		RunID:    uuid.NewString(),
		Root:     cs.Root,
		Provider: e.gen.Name(),
		Model:    e.cfg.Model,
		Files:    fileSummaries(cs),
	}

	if cs.Empty() {
		report.Timing = Timing{GitMs: gitMs, TotalMs: time.Since(start).Milliseconds()}
		return report, nil
	}

	e.scrub(cs)
	chunks := chunk.Split(cs, e.cfg.MaxChunkSize)
	report.ChunksTotal = len(chunks)

	llmStart := time.Now()
	e.generateCommitMessage(ctx, cs, chunks, report)
	if opts.Review {
		report.Reviews = e.reviewChunks(ctx, chunks)
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	report.Timing = Timing{
		GitMs:   gitMs,
		LLMMs:   time.Since(llmStart).Milliseconds(),
		TotalMs: time.Since(start).Milliseconds(),
	}
	return report, nil
}

// scrub redacts credentials in place before payloads reach prompts or
// fingerprints. Fingerprinting after redaction keeps secrets out of
// cache keys as well as cache values.
func (e *Engine) scrub(cs *changes.ChangeSet) {
	for i := range cs.Changes {
		fc := &cs.Changes[i]
		if fc.DiffText != "" {
			fc.DiffText = redact.Apply(fc.DiffText, e.cfg.CredentialKeywords)
		}
		if fc.FullContent != "" {
			fc.FullContent = redact.Apply(fc.FullContent, e.cfg.CredentialKeywords)
		}
	}
}

func (e *Engine) generateCommitMessage(ctx context.Context, cs *changes.ChangeSet, chunks []chunk.Chunk, report *Report) {
	scope := cache.Scope(e.gen.Name(), e.cfg.Model, "commit")
	fp := cache.FingerprintChunks(scope, chunks)

	result, cached, err := e.store.GetOrGenerate(fp, func() (string, error) {
		resp, err := e.gen.Generate(ctx, providers.Request{
			SystemPrompt: CommitSystemPrompt(e.cfg.Language),
			UserPrompt:   BuildCommitPrompt(cs, e.cfg.MaxContextLength),
		})
		if err != nil {
			return "", err
		}
		return resp.Content, nil
	})
	if err != nil {
		report.CommitError = err.Error()
		logging.L().Warnw("commit message generation failed", "error", err)
		return
	}
	report.CommitMessage = result
	report.CommitCached = cached
}

// reviewChunks runs per-chunk review across a bounded worker pool.
// Results land in their chunk's slot, so the output is in
// SequenceIndex order no matter which worker finishes first.
func (e *Engine) reviewChunks(ctx context.Context, chunks []chunk.Chunk) []ChunkReview {
	scope := cache.Scope(e.gen.Name(), e.cfg.Model, "review")
	reviews := make([]ChunkReview, len(chunks))

	g, ctx := errgroup.WithContext(ctx)
	limit := e.cfg.MaxConcurrency
	if limit <= 0 {
		limit = 1
	}
	g.SetLimit(limit)

	for i, ch := range chunks {
		i, ch := i, ch
		g.Go(func() error {
			rev := ChunkReview{
				SequenceIndex: ch.SequenceIndex,
				TotalChunks:   ch.TotalChunks,
				Paths:         ch.Paths(),
			}
			if err := ctx.Err(); err != nil {
				rev.Error = err.Error()
				reviews[i] = rev
				return nil
			}

			fp := cache.Fingerprint(scope, ch)
			result, cached, err := e.store.GetOrGenerate(fp, func() (string, error) {
				resp, err := e.gen.Generate(ctx, providers.Request{
					SystemPrompt: ReviewSystemPrompt(),
					UserPrompt:   BuildReviewPrompt(ch),
				})
				if err != nil {
					return "", err
				}
				return resp.Content, nil
			})
			if err != nil {
				rev.Error = err.Error()
				logging.L().Warnw("chunk review failed",
					"chunk", ch.SequenceIndex, "paths", rev.Paths, "error", err)
			} else {
				rev.Review = result
				rev.Cached = cached
			}
			reviews[i] = rev
			return nil
		})
	}
	// Workers never return errors; failures live in their slots.
	_ = g.Wait()
	return reviews
}

func fileSummaries(cs *changes.ChangeSet) []FileSummary {
	if cs.Empty() {
		return nil
	}
	files := make([]FileSummary, 0, len(cs.Changes))
	for _, fc := range cs.Changes {
		files = append(files, FileSummary{
			Path:    fc.Path,
			OldPath: fc.OldPath,
			Status:  string(fc.Status),
			Staged:  fc.Staged,
			Binary:  fc.Binary,
			Size:    fc.SizeBytes,
		})
	}
	return files
}
