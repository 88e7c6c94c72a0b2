package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/comet/internal/analyze"
	"github.com/dshills/comet/internal/logging"
)

const version = "0.1.0"

// Exit codes. A run that produced every requested result exits 0; a
// run where some generation tasks failed exits 1; a run where all of
// them failed exits 2.
const (
	ExitSuccess        = 0
	ExitPartialFailure = 1
	ExitFullFailure    = 2
	ExitUsageError     = 3
	ExitRuntimeError   = 4
)

var flagVerbose bool

var rootCmd = &cobra.Command{
	Use:   "comet",
	Short: "Watch a git tree and generate commit messages and reviews",
	Long:  "Comet analyzes pending git changes and generates commit messages and code reviews using a local or remote LLM provider.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Init(flagVerbose)
	},
}

// Run executes the root command and returns an exit code.
func Run() int {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable verbose logging")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(modelsCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(hookCmd)
	rootCmd.AddCommand(versionCmd)

	defer logging.Sync()

	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error
		return ExitUsageError
	}

	return exitCode
}

// exitCode is set by command handlers to control the process exit code.
var exitCode = ExitSuccess

// exitFor maps a report outcome to a process exit code.
func exitFor(outcome analyze.Outcome) int {
	switch outcome {
	case analyze.OutcomePartial:
		return ExitPartialFailure
	case analyze.OutcomeFailure:
		return ExitFullFailure
	default:
		return ExitSuccess
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print comet version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(os.Stdout, "comet version %s\n", version)
	},
}
