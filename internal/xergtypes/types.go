// Package xergtypes provides shared types used across the xerg codebase.
package xergtypes

import "fmt"

// ColorName is one of the recognized match-highlighting styles.
type ColorName int

const (
	ColorNone ColorName = iota
	ColorRed
	ColorGreen
	ColorBlue
	ColorBold
)

// FileReaderKind is the tagged variant C2 (the FileReader Selector) chooses
// between for a given file.
type FileReaderKind int

const (
	Streaming FileReaderKind = iota
	BulkRead
	MemoryMap
)

func (k FileReaderKind) String() string {
	switch k {
	case Streaming:
		return "streaming"
	case BulkRead:
		return "bulkread"
	case MemoryMap:
		return "mmap"
	default:
		return "unknown"
	}
}

// Config is an immutable value constructed before dispatch. It is shared
// read-only by every worker.
type Config struct {
	Pattern string    // source string for the regex (required)
	Root    string    // single filesystem path, file or directory
	Color   ColorName // match-span styling; ColorNone = no markers inserted
	Stats   bool      // emit per-file and run summary lines
	Xtreme  bool      // minimal raw-output format
}

// MatchRecord is one matched line within a single file.
type MatchRecord struct {
	LineIndex    int    // 1-based
	OriginalLine string
	StyledLine   string // == OriginalLine when color is None or xtreme mode is on
}

// MessageKind tags an OutputMessage's variant.
type MessageKind int

const (
	MsgHeader MessageKind = iota
	MsgLine
	MsgError
	MsgFileStats
	MsgDone
)

// OutputMessage is one entry in the burst a worker sends for a file, or the
// Done sentinel.
type OutputMessage struct {
	Kind MessageKind

	Path string // Header, Line, Error, FileStats

	// Line
	LineIndex  int
	StyledLine string

	// Error
	Err string

	// FileStats
	LinesRead    int
	Matches      int
	SkippedLines int
}

// Header builds an OutputMessage announcing the start of a file's matches.
func Header(path string) OutputMessage {
	return OutputMessage{Kind: MsgHeader, Path: path}
}

// Line builds an OutputMessage carrying one matched line.
func Line(path string, lineIndex int, styledLine string) OutputMessage {
	return OutputMessage{Kind: MsgLine, Path: path, LineIndex: lineIndex, StyledLine: styledLine}
}

// Error builds an OutputMessage reporting a non-fatal per-file failure.
func Error(path string, err error) OutputMessage {
	return OutputMessage{Kind: MsgError, Path: path, Err: err.Error()}
}

// FileStats builds an OutputMessage carrying one file's final counters.
func FileStats(path string, linesRead, matches, skippedLines int) OutputMessage {
	return OutputMessage{
		Kind:         MsgFileStats,
		Path:         path,
		LinesRead:    linesRead,
		Matches:      matches,
		SkippedLines: skippedLines,
	}
}

// Done builds the Done sentinel message. The dispatcher ends its stream by
// closing the channel rather than by sending this message.
func Done() OutputMessage { return OutputMessage{Kind: MsgDone} }

// RunStats holds monotonic counters mutated only by the Collector
// (single writer) plus the wall-clock elapsed time.
type RunStats struct {
	FilesProcessed int
	LinesRead      int
	Matches        int
	SkippedLines   int
	Errors         int
	ElapsedSecs    float64
}

// Fold merges one file's FileStats into the run totals.
func (s *RunStats) Fold(msg OutputMessage) {
	s.FilesProcessed++
	s.LinesRead += msg.LinesRead
	s.Matches += msg.Matches
	s.SkippedLines += msg.SkippedLines
}

// String renders the machine-readable "result: ...;" summary line.
// Field order and the trailing semicolon are part of the external contract.
func (s *RunStats) String() string {
	return fmt.Sprintf("result: files:%d; lines:%d; matches:%d; skipped:%d; errors:%d; time:%.3fs;",
		s.FilesProcessed, s.LinesRead, s.Matches, s.SkippedLines, s.Errors, s.ElapsedSecs)
}

// Semaphore implements a counting semaphore using a buffered channel.
// It limits concurrent access to a resource by blocking when the limit is reached.
type Semaphore chan struct{}

// NewSemaphore creates a semaphore that allows up to n concurrent acquisitions.
func NewSemaphore(n int) Semaphore { return make(chan struct{}, n) }

// Acquire blocks until a slot is available, then claims it.
func (s Semaphore) Acquire() { s <- struct{}{} }

// Release frees a slot, unblocking one waiting Acquire call.
func (s Semaphore) Release() { <-s }

// ConfigError marks a fatal configuration failure; CompilePattern returns
// it for an invalid regex. The Orchestrator exits with code 2 on it (as it
// does on any other fatal error, including an unreadable root path, which
// is not reported as a ConfigError).
type ConfigError struct {
	msg string
}

func NewConfigError(format string, args ...any) *ConfigError {
	return &ConfigError{msg: fmt.Sprintf(format, args...)}
}

func (e *ConfigError) Error() string { return e.msg }
