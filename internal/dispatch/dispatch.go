// Package dispatch implements C5 (the Work Dispatcher): it turns a list of
// candidate files into a stream of xergtypes.OutputMessage values on a
// single channel, picking either a single-file fast path or a bounded
// worker pool depending on workload shape.
//
// The pool shape is lifted directly from dupedog's internal/verifier: a
// fixed number of workers reading off one job channel, a pending
// WaitGroup the dispatcher blocks on, then a two-stage channel close
// (job channel first, result channel once workers have drained it) so no
// send ever races a close.
package dispatch

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"runtime"
	"sync"

	"github.com/dlclark/regexp2"
	"github.com/ivoronin/xerg/internal/color"
	"github.com/ivoronin/xerg/internal/match"
	"github.com/ivoronin/xerg/internal/reader"
	"github.com/ivoronin/xerg/internal/xergtypes"
)

// Workers returns the pool size: one less than the number of logical
// CPUs, never fewer than one.
func Workers() int {
	if n := runtime.NumCPU() - 1; n > 0 {
		return n
	}
	return 1
}

// rawWriter serializes xtreme mode's direct line writes to its target
// writer. Lines from different files may interleave across calls, but a
// single writeLine call is atomic with respect to other writeLine calls, so
// no line is ever torn. Each write is
// flushed immediately so a match is visible the instant it's found,
// rather than waiting on a buffer to fill or the run to finish.
type rawWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (rw *rawWriter) writeLine(path string, lineIndex int, content string) {
	rw.mu.Lock()
	defer rw.mu.Unlock()
	fmt.Fprintf(rw.w, "%s:%d:%s\n", path, lineIndex, content)
	if bw, ok := rw.w.(*bufio.Writer); ok {
		_ = bw.Flush()
	}
}

// Run scans every path in paths against re and sends one burst of
// OutputMessage values per file (Header, Line..., FileStats, or just
// Error on open failure) to the returned channel, closing it once every
// file has been processed.
//
// When len(paths) == 1 the file is scanned on a single goroutine with no
// worker pool (the single-file fast path). The scan does not run on the
// calling goroutine: its messages still reach the caller through the
// returned channel.
//
// In xtreme mode, matching lines are written directly to xtremeOut from
// the scanning goroutine as "path:line_index:content\n" rather than
// buffered as Line messages; no Header is emitted and no color markers
// are applied. FileStats messages still flow through the channel so the
// Collector can fold them into the run summary when --stats is set.
func Run(paths []string, re *regexp2.Regexp, code color.Code, xtreme bool, xtremeOut io.Writer) <-chan xergtypes.OutputMessage {
	out := make(chan xergtypes.OutputMessage, 256)

	if len(paths) == 0 {
		close(out)
		return out
	}

	raw := &rawWriter{w: bufio.NewWriter(xtremeOut)}

	if len(paths) == 1 {
		go func() {
			defer close(out)
			defer raw.flush()
			scanFile(paths[0], re, code, xtreme, true, raw, out)
		}()
		return out
	}

	go runPool(paths, re, code, xtreme, raw, out)
	return out
}

func (rw *rawWriter) flush() {
	if bw, ok := rw.w.(*bufio.Writer); ok {
		rw.mu.Lock()
		_ = bw.Flush()
		rw.mu.Unlock()
	}
}

// runPool drives the fixed worker pool, the parallel path.
func runPool(paths []string, re *regexp2.Regexp, code color.Code, xtreme bool, raw *rawWriter, out chan<- xergtypes.OutputMessage) {
	jobs := make(chan string, len(paths))
	for _, p := range paths {
		jobs <- p
	}
	close(jobs)

	var pending sync.WaitGroup
	n := Workers()
	pending.Add(n)

	for i := 0; i < n; i++ {
		go func() {
			defer pending.Done()
			for path := range jobs {
				scanFile(path, re, code, xtreme, false, raw, out)
			}
		}()
	}

	pending.Wait()
	raw.flush()
	close(out)
}

// burstMu serializes whole-file bursts onto the shared channel so one
// file's messages are never interleaved with another file's.
var burstMu sync.Mutex

// scanFile scans one file top to bottom and emits its message burst.
// The file's messages are buffered and sent together as one contiguous
// burst. An open/read failure becomes a single Error message; the file is
// then skipped entirely.
func scanFile(path string, re *regexp2.Regexp, code color.Code, xtreme, singleFile bool, raw *rawWriter, out chan<- xergtypes.OutputMessage) {
	send := func(msgs ...xergtypes.OutputMessage) {
		burstMu.Lock()
		defer burstMu.Unlock()
		for _, m := range msgs {
			out <- m
		}
	}

	size, err := statSize(path)
	if err != nil {
		send(xergtypes.Error(path, err))
		return
	}

	kind := reader.Select(size, singleFile)
	lines, closeFn, err := reader.Open(path, kind)
	if err != nil {
		send(xergtypes.Error(path, err))
		return
	}
	defer closeFn()

	effectiveCode := code
	if xtreme {
		effectiveCode = color.Code{}
	}

	linesRead := 0
	matches := 0
	skipped := 0
	headerSent := false
	var burst []xergtypes.OutputMessage

	for _, ln := range lines {
		linesRead++
		outcome := match.Scan(re, ln.Bytes, effectiveCode)
		if !outcome.Decodable {
			skipped++
			continue
		}
		if !outcome.Matched {
			continue
		}

		matches++
		if xtreme {
			raw.writeLine(path, ln.Index, outcome.OriginalLine)
			continue
		}
		if !headerSent {
			burst = append(burst, xergtypes.Header(path))
			headerSent = true
		}
		burst = append(burst, xergtypes.Line(path, ln.Index, outcome.StyledLine))
	}

	burst = append(burst, xergtypes.FileStats(path, linesRead, matches, skipped))
	send(burst...)
}

func statSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}
