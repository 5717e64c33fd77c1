// Package enumerator produces an ordered list of candidate file paths from
// an input root path (file or directory), skipping hidden entries.
//
// # Architecture Overview
//
// The enumerator reuses dupedog's concurrent fan-out/fan-in walker
// (internal/scanner): one goroutine per discovered directory,
// concurrency bounded by a semaphore, a single collector goroutine
// draining the fan-in channel into the final ordered slice.
//
// Unlike a duplicate scanner, the caller here cares about a stable,
// deterministic listing order even though downstream parallel dispatch
// doesn't preserve it: the single-file fast path and several tests key off
// "is this a single path" and "what order does the list come in", so
// ordering is restored by sorting the walker's output by full path string
// (byte-wise lexicographic) rather than racing the fan-in channel's
// arrival order.
//
// # Why This Design?
//
//   - Semaphore controls concurrent directory reads (same rationale as
//     dupedog's scanner: bound syscall concurrency, not goroutine count).
//   - A depth-cap sentinel (maxDepth) stops recursion more than 256 levels deep and
//     reports an error for the directory where it stopped.
//   - A directory that cannot be opened or listed becomes an Error record;
//     enumeration continues rather than aborting the whole walk. An entry
//     whose stat fails (for example a dangling symlink) is skipped without
//     an Error record.
package enumerator

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/ivoronin/xerg/internal/progress"
	"github.com/ivoronin/xerg/internal/xergtypes"
)

// maxDepth is the recursion depth sentinel: a directory nested deeper than
// this below the root is reported as an error instead of being walked.
const maxDepth = 256

// Result is the outcome of enumerating a root: an ordered, finite list of
// regular-file paths, plus any non-fatal per-path errors encountered while
// walking (the caller prints these as diagnostics and counts them as
// errors). Either list may be empty.
type Result struct {
	Paths  []string
	Errors []PathError
}

// PathError pairs a path with the traversal error encountered there.
type PathError struct {
	Path string
	Err  error
}

// entry is one file found during the walk, tagged with enough ordering
// information to reconstruct a stable depth-first listing afterward.
type entry struct {
	path  string
	order string // lexicographically-sortable path, used only for ordering
}

// foundCount implements fmt.Stringer so the walk's running file count can
// feed progress.Bar.Describe without that package depending on this one.
type foundCount int

func (n foundCount) String() string { return fmt.Sprintf("%d files found", int(n)) }

// Enumerate walks root (a file or directory) and returns the ordered list
// of regular files found under it, skipping any entry whose name begins
// with "." (files and whole directory subtrees). Symlinks to regular files
// are followed; a symlink to a directory is skipped, not descended into.
// showProgress displays a spinner on stderr tracking the running file
// count while the walk is in flight; total file count is unknown ahead
// of time, so the bar always runs in spinner mode.
func Enumerate(root string, workers int, showProgress bool) Result {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return Result{Errors: []PathError{{Path: root, Err: err}}}
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		return Result{Errors: []PathError{{Path: absRoot, Err: err}}}
	}
	if !info.IsDir() {
		return Result{Paths: []string{absRoot}}
	}

	if workers < 1 {
		workers = 1
	}

	w := &walker{
		sem:      xergtypes.NewSemaphore(workers),
		resultCh: make(chan entry, 1000),
		errCh:    make(chan PathError, 100),
	}

	bar := progress.New(showProgress, -1)

	var entries []entry
	var errs []PathError
	collectorWg := sync.WaitGroup{}
	collectorWg.Add(2)

	go func() {
		defer collectorWg.Done()
		for e := range w.resultCh {
			entries = append(entries, e)
			bar.Describe(foundCount(len(entries)))
		}
	}()
	go func() {
		defer collectorWg.Done()
		for e := range w.errCh {
			errs = append(errs, e)
		}
	}()

	w.walkDirectory(absRoot, 0)
	w.walkerWg.Wait()
	close(w.resultCh)
	close(w.errCh)
	collectorWg.Wait()
	bar.Finish(foundCount(len(entries)))

	sort.Slice(entries, func(i, j int) bool { return entries[i].order < entries[j].order })
	paths := make([]string, len(entries))
	for i, e := range entries {
		paths[i] = e.path
	}

	return Result{Paths: paths, Errors: errs}
}

// walker holds the runtime state for one Enumerate call.
type walker struct {
	sem      xergtypes.Semaphore
	resultCh chan entry
	errCh    chan PathError
	walkerWg sync.WaitGroup
}

// walkDirectory spawns a goroutine to list one directory and recursively
// spawn children, the same semaphore-guarded shape as dupedog's
// scanner.walkDirectory.
func (w *walker) walkDirectory(dir string, depth int) {
	if depth > maxDepth {
		w.errCh <- PathError{Path: dir, Err: errDepthExceeded}
		return
	}

	w.walkerWg.Add(1)
	go func() {
		defer w.walkerWg.Done()

		w.sem.Acquire()
		defer w.sem.Release()

		files, subdirs, err := listDirectory(dir)
		if err != nil {
			w.errCh <- PathError{Path: dir, Err: err}
			return
		}

		for _, f := range files {
			w.resultCh <- entry{path: f, order: f}
		}

		for _, sub := range subdirs {
			w.walkDirectory(sub, depth+1)
		}
	}()
}

// listDirectory reads a single directory, returning regular files and
// subdirectories to recurse into. Hidden entries (name starting with ".")
// are skipped entirely, including their subtrees.
func listDirectory(dirPath string) (files []string, subdirs []string, err error) {
	dir, err := os.Open(dirPath)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = dir.Close() }()

	const batchSize = 1000
	for {
		dirEntries, err := dir.ReadDir(batchSize)
		if len(dirEntries) == 0 {
			if err != nil && err != io.EOF {
				return files, subdirs, err
			}
			break
		}

		for _, de := range dirEntries {
			if isHidden(de.Name()) {
				continue
			}
			full := filepath.Join(dirPath, de.Name())

			if de.IsDir() {
				subdirs = append(subdirs, full)
				continue
			}

			// Follow symlinks: resolve to decide if the target is a
			// regular file worth scanning.
			info, statErr := os.Stat(full)
			if statErr != nil {
				continue // unreadable symlink target, silently skip
			}
			if info.Mode().IsRegular() {
				files = append(files, full)
			}
		}
	}

	return files, subdirs, nil
}

func isHidden(name string) bool {
	return len(name) > 0 && name[0] == '.'
}

var errDepthExceeded = errDepth{}

type errDepth struct{}

func (errDepth) Error() string { return "max recursion depth exceeded (possible symlink cycle)" }
