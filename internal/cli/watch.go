package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/comet/internal/analyze"
	"github.com/dshills/comet/internal/config"
	"github.com/dshills/comet/internal/logging"
	"github.com/dshills/comet/internal/output"
	"github.com/dshills/comet/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the repository and analyze on every quiet period",
	Long:  "Watch the current repository for file changes. After each burst of edits settles, pending changes are analyzed and the results printed. A new burst cancels any analysis still in flight.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(buildOverrides())
		if err != nil {
			return err
		}
		if flagNoCache {
			cfg.Cache.Enabled = false
		}

		engine, err := analyze.New(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}

		if err := runWatch(cmd.Context(), engine, cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
		}
		return nil
	},
}

func runWatch(parent context.Context, engine *analyze.Engine, cfg config.Config) error {
	root, err := os.Getwd()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	coalescer := watch.NewCoalescer(
		time.Duration(cfg.DebounceDelayMS)*time.Millisecond,
		cfg.AdaptiveMultiplier,
		cfg.IgnorePatterns,
	)
	defer coalescer.Stop()

	watcher, err := watch.NewWatcher(root, coalescer)
	if err != nil {
		return err
	}
	defer watcher.Stop()

	fmt.Fprintf(os.Stdout, "Watching %s (Ctrl+C to stop)\n", root)

	// One analysis at a time. A new signal cancels the previous run so
	// results always reflect the latest tree state.
	var (
		wg        sync.WaitGroup
		cancelRun context.CancelFunc
	)
	defer func() {
		if cancelRun != nil {
			cancelRun()
		}
		wg.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(os.Stdout, "\nStopped watching.")
			return nil

		case paths := <-coalescer.Signals():
			logging.L().Infow("changes settled", "paths", len(paths))

			if cancelRun != nil {
				cancelRun()
				wg.Wait()
			}
			runCtx, cancel := context.WithCancel(ctx)
			cancelRun = cancel

			wg.Add(1)
			go func() {
				defer wg.Done()
				analyzeOnce(runCtx, engine, cfg)
			}()
		}
	}
}

func analyzeOnce(ctx context.Context, engine *analyze.Engine, cfg config.Config) {
	report, err := engine.Run(ctx, ".", analyze.Options{
		Review: flagReview || cfg.AutoReview,
	})
	if err != nil {
		if ctx.Err() != nil {
			logging.L().Debugw("analysis superseded")
			return
		}
		fmt.Fprintf(os.Stderr, "Analysis error: %v\n", err)
		return
	}
	if report.Empty() {
		logging.L().Debugw("no pending changes")
		return
	}
	if err := output.WriteReport(report, cfg.Format, ""); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
	}
}

func init() {
	addAnalyzeFlags(watchCmd)
}
