// Command listingctl runs the listing assistant's building blocks from the shell:
// text extraction, next-field suggestions, photo synthesis and analysis, and
// database migrations. Results are printed as JSON.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"listingguide/internal/config"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// cli carries the state shared by every subcommand
type cli struct {
	verbose bool
	timeout time.Duration
	logger  *zap.Logger
}

func newRootCmd() *cobra.Command {
	app := &cli{logger: zap.NewNop()}

	root := &cobra.Command{
		Use:           "listingctl",
		Short:         "Listing assistant tools",
		Long:          `listingctl extracts property features from text, suggests the next form fields, synthesizes photo analyses and manages the listings database.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := "warn"
			if app.verbose {
				level = "debug"
			}
			logger, err := config.NewLogger(config.LoggingConfig{Level: level, Format: "console"})
			if err != nil {
				return err
			}
			app.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = app.logger.Sync()
		},
	}

	root.PersistentFlags().BoolVarP(&app.verbose, "verbose", "v", false, "Enable verbose logging")
	root.PersistentFlags().DurationVar(&app.timeout, "timeout", 2*time.Minute, "Operation timeout")

	root.AddCommand(
		app.extractCmd(),
		app.suggestCmd(),
		app.synthesizeCmd(),
		app.analyzeCmd(),
		app.migrateCmd(),
	)
	return root
}

func (a *cli) context(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), a.timeout)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
