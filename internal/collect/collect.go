// Package collect implements C6: the single consumer that drains the
// dispatcher's OutputMessage channel, prints the default-mode output
// format, and folds per-file counters into a RunStats.
//
// Grounded on dupedog's cmd/dupedog/dedupe.go drainErrors pattern: one
// goroutine-free loop over a channel until it closes, classifying each
// message by a tag field and taking the matching action. Unlike
// drainErrors (which only counts), this collector both prints and folds,
// since it is the sole writer to stdout and the diagnostic stream in
// default (non-xtreme) mode.
package collect

import (
	"fmt"
	"io"

	"github.com/ivoronin/xerg/internal/xergtypes"
)

// Run drains msgs until the channel closes, writing default-mode output
// to out and diagnostics to diag. printStats gates whether the per-file
// "lines/matches/skipped" line and the final summary are printed; the
// counters are folded into the returned RunStats regardless, since the
// caller needs files/errors totals to pick an exit code even when
// --stats was not requested.
func Run(msgs <-chan xergtypes.OutputMessage, out, diag io.Writer, printStats bool) xergtypes.RunStats {
	var stats xergtypes.RunStats

	for msg := range msgs {
		switch msg.Kind {
		case xergtypes.MsgHeader:
			fmt.Fprintf(out, "--- %s ---\n", msg.Path)

		case xergtypes.MsgLine:
			fmt.Fprintf(out, "%4d:  %s\n", msg.LineIndex, msg.StyledLine)

		case xergtypes.MsgError:
			fmt.Fprintf(diag, "%s: %s\n", msg.Path, msg.Err)
			stats.Errors++

		case xergtypes.MsgFileStats:
			stats.Fold(msg)
			if printStats {
				fmt.Fprintf(out, "  lines: %d, matches: %d, skipped: %d\n",
					msg.LinesRead, msg.Matches, msg.SkippedLines)
			}
		}
	}

	return stats
}
