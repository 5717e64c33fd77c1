// C8: the Orchestrator. Wires the compiled pattern, the enumerator, the
// dispatcher, and the collector into one run and picks the process exit
// code, the same shape as dupedog's run()/runDedupe split — a thin cobra
// binding in main.go's sibling, and a plain, error-returning function
// underneath it that the tests call directly without touching os.Exit.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/ivoronin/xerg/internal/color"
	"github.com/ivoronin/xerg/internal/collect"
	"github.com/ivoronin/xerg/internal/dispatch"
	"github.com/ivoronin/xerg/internal/enumerator"
	"github.com/ivoronin/xerg/internal/stats"
	"github.com/ivoronin/xerg/internal/xergtypes"
	"github.com/spf13/cobra"
)

// exitOK, exitNoMatch, and exitFatal are the three process exit codes:
// success-with-matches, clean zero-match run, and a fatal configuration
// or I/O failure that prevented any work.
const (
	exitOK      = 0
	exitNoMatch = 1
	exitFatal   = 2
)

// searchOptions holds the CLI flags bound by newRootCmd.
type searchOptions struct {
	colorName string
	showStats bool
	xtreme    bool
}

// run builds the root command, executes it against args, and returns the
// process exit code. It never calls os.Exit itself so tests can call it
// directly and inspect the returned code.
func run(args []string) int {
	exitCode := exitFatal
	cmd := newRootCmd(&exitCode)
	cmd.SetArgs(args)

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitFatal
	}
	return exitCode
}

func newRootCmd(exitCode *int) *cobra.Command {
	opts := &searchOptions{}

	cmd := &cobra.Command{
		Use:     "xerg <pattern> [path]",
		Short:   "Search files recursively for a pattern",
		Version: version + " (" + commit + ")",
		Args:    cobra.RangeArgs(1, 2),
		RunE: func(_ *cobra.Command, args []string) error {
			pattern := args[0]
			root := "."
			if len(args) == 2 {
				root = args[1]
			}
			code, err := search(pattern, root, opts, os.Stdout, os.Stderr)
			*exitCode = code
			return err
		},
	}

	cmd.Flags().StringVar(&opts.colorName, "color", "", "highlight match spans: red, green, blue, or bold")
	cmd.Flags().BoolVar(&opts.showStats, "stats", false, "print per-file and run summary lines")
	cmd.Flags().BoolVarP(&opts.xtreme, "xtreme", "x", false, "minimal raw output, no per-file grouping")

	return cmd
}

// search runs one end-to-end pipeline and returns the process exit code:
// compile pattern, build config, start timer, enumerate, dispatch,
// collect, stop timer, print summary. A non-nil error is a
// ConfigError-class failure cobra should print as a usage-style
// diagnostic; code is still exitFatal in that case.
func search(pattern, root string, opts *searchOptions, stdout, stderr io.Writer) (int, error) {
	colorName, err := color.ParseName(opts.colorName)
	if err != nil {
		return exitFatal, err
	}

	re, err := xergtypes.CompilePattern(pattern)
	if err != nil {
		return exitFatal, err
	}

	cfg := xergtypes.Config{
		Pattern: pattern,
		Root:    root,
		Color:   colorName,
		Stats:   opts.showStats,
		Xtreme:  opts.xtreme,
	}

	timer := stats.Start()

	enumResult := enumerator.Enumerate(cfg.Root, dispatch.Workers(), cfg.Stats && !cfg.Xtreme)
	if len(enumResult.Paths) == 0 && len(enumResult.Errors) > 0 {
		for _, e := range enumResult.Errors {
			fmt.Fprintf(stderr, "%s: %s\n", e.Path, e.Err)
		}
		return exitFatal, nil
	}

	code := color.Resolve(cfg.Color)
	msgs := dispatch.Run(enumResult.Paths, re, code, cfg.Xtreme, stdout)
	summary := collect.Run(msgs, stdout, stderr, cfg.Stats)

	for _, e := range enumResult.Errors {
		fmt.Fprintf(stderr, "%s: %s\n", e.Path, e.Err)
		summary.Errors++
	}

	summary.ElapsedSecs = timer.ElapsedSecs()
	if cfg.Stats {
		fmt.Fprintln(stdout, summary.String())
	}

	if summary.Matches > 0 {
		return exitOK, nil
	}
	return exitNoMatch, nil
}
