package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/comet/internal/analyze"
	"github.com/dshills/comet/internal/changes"
	"github.com/dshills/comet/internal/config"
	"github.com/dshills/comet/internal/output"
)

// Shared analysis flags
var (
	flagProvider string
	flagModel    string
	flagLanguage string
	flagFormat   string
	flagOut      string
	flagReview   bool
	flagNoCache  bool
)

func addAnalyzeFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagProvider, "provider", "", "LLM provider (ollama, openrouter, gemini)")
	cmd.Flags().StringVar(&flagModel, "model", "", "Model name")
	cmd.Flags().StringVar(&flagLanguage, "language", "", "Commit message language")
	cmd.Flags().StringVar(&flagFormat, "format", "", "Output format (text, json, markdown)")
	cmd.Flags().StringVar(&flagOut, "out", "", "Output file path (default: stdout)")
	cmd.Flags().BoolVar(&flagReview, "review", false, "Also run per-chunk code review")
	cmd.Flags().BoolVar(&flagNoCache, "no-cache", false, "Bypass the result cache")
}

func buildOverrides() map[string]string {
	m := make(map[string]string)
	if flagProvider != "" {
		m["provider"] = flagProvider
	}
	if flagModel != "" {
		m["model"] = flagModel
	}
	if flagLanguage != "" {
		m["language"] = flagLanguage
	}
	if flagFormat != "" {
		m["format"] = flagFormat
	}
	return m
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze pending changes once",
	Long:  "Analyze the pending changes of the current repository, generate a commit message, and optionally review each chunk.",
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

		runAnalysis(cmd.Context(), engine, cfg)
		return nil
	},
}

func runAnalysis(ctx context.Context, engine *analyze.Engine, cfg config.Config) {
	report, err := engine.Run(ctx, ".", analyze.Options{
		Review: flagReview || cfg.AutoReview,
	})
	if err != nil {
		if errors.Is(err, changes.ErrNotARepository) {
			fmt.Fprintln(os.Stderr, "Error: not a git repository")
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		exitCode = ExitRuntimeError
		return
	}

	if err := output.WriteReport(report, cfg.Format, flagOut); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
		exitCode = ExitRuntimeError
		return
	}

	exitCode = exitFor(report.Outcome())
}

func init() {
	addAnalyzeFlags(analyzeCmd)
}
