package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/comet/internal/providers"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List installed Ollama models",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := providers.NewOllama("")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()

		models, err := p.ListModels(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v (is Ollama running?)\n", err)
			exitCode = ExitRuntimeError
			return nil
		}
		if len(models) == 0 {
			fmt.Fprintln(os.Stdout, "No models installed. Try: ollama pull gemma3:1b")
			return nil
		}

		suggested := providers.SuggestModel(models)
		fmt.Fprintln(os.Stdout, "Installed models:")
		for _, m := range models {
			marker := " "
			if m.Name == suggested {
				marker = "*"
			}
			fmt.Fprintf(os.Stdout, " %s %-30s %6.1f GB\n", marker, m.Name, float64(m.Size)/(1024*1024*1024))
		}
		if suggested != "" {
			fmt.Fprintf(os.Stdout, "\nSuggested for analysis: %s\n", suggested)
		}
		return nil
	},
}
