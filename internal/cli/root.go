package cli

import (
	goerrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rileyhilliard/countertop/internal/errors"
	"github.com/rileyhilliard/countertop/internal/logger"
	"github.com/rileyhilliard/countertop/internal/ui"
	"github.com/spf13/cobra"
)

// Global flags
var (
	cfgFile string
	verbose bool
	noColor bool
)

var rootCmd = &cobra.Command{
	Use:   "countertop",
	Short: "Live counter table for your terminal",
	Long: `countertop draws a table of counters once and then rewrites only the
cells whose values change, in place, as events arrive.

Counters come from host sources, which poll /proc locally or over SSH, and
from push sources, which send newline-delimited JSON to the listener or on
stdin.

Get started:
  countertop init     Write a starter countertop.yaml
  countertop check    Validate it and preview the table
  countertop watch    Show the live table`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if noColor || os.Getenv("NO_COLOR") != "" {
			ui.DisableColors()
		}
		if verbose {
			logger.SetDefault(logger.NewWriterLogger("", os.Stderr, true))
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: ./countertop.yaml, then ~/.config/countertop/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

// printError writes err the way structured errors render, coloring the
// first line.
func printError(w io.Writer, err error) {
	var structured *errors.Error
	if !goerrors.As(err, &structured) {
		fmt.Fprintln(w, ui.ErrorStyle().Render(ui.SymbolFail+" "+err.Error()))
		return
	}

	text := structured.Error()
	first, rest, _ := strings.Cut(text, "\n")
	fmt.Fprintln(w, ui.ErrorStyle().Render(first))
	if rest = strings.TrimRight(rest, "\n"); rest != "" {
		fmt.Fprintln(w, ui.MutedStyle().Render(rest))
	}
}
