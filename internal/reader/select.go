// Package reader implements C2 (the FileReader Selector) and C2's three
// byte-delivery strategies: Streaming, BulkRead, and MemoryMap.
//
// # Why This Design?
//
// Selection itself (Select) is pure and has no I/O, the same shape as
// dupedog's internal/screener: a single function mapping metadata to a
// decision, grounded on one input at a time, cheap to call per file.
// The actual byte-range reads (Open) mirror dupedog's internal/verifier,
// which does real, bounded file I/O behind a narrow interface
// (hashRange's open-seek-read-close shape).
package reader

import (
	"bufio"
	"bytes"
	"os"

	"github.com/edsrzf/mmap-go"
	"github.com/ivoronin/xerg/internal/xergtypes"
)

// Threshold constants. Empirically fixed: do not change without
// re-benchmarking under concurrent multi-file load.
const (
	bulkReadCeiling = 7 * 1024 * 1024   // 7 MiB
	streamingFloor  = 100 * 1024 * 1024 // 100 MiB
	maxLineSize     = 16 * 1024 * 1024  // generous ceiling for bufio.Scanner's token buffer
)

// Select chooses a FileReaderKind for one file, evaluated top to bottom.
func Select(fileSize int64, isSingleFileWorkload bool) xergtypes.FileReaderKind {
	switch {
	case !isSingleFileWorkload:
		return xergtypes.Streaming
	case fileSize > streamingFloor:
		return xergtypes.Streaming
	case fileSize > bulkReadCeiling:
		return xergtypes.MemoryMap
	default:
		return xergtypes.BulkRead
	}
}

// Line is one (lineIndex, bytes) tuple from a file, lineIndex being 1-based
// and bytes excluding the line terminator (a trailing "\r" from a "\r\n"
// pair is preserved; none of the strategies depend on trimming it).
type Line struct {
	Index int
	Bytes []byte
}

// Open reads path using the given strategy and returns its lines plus a
// close function the caller must call when done (releases a memory
// mapping; a no-op for the other strategies).
func Open(path string, kind xergtypes.FileReaderKind) (lines []Line, closeFn func(), err error) {
	switch kind {
	case xergtypes.Streaming:
		return openStreaming(path)
	case xergtypes.BulkRead:
		return openBulkRead(path)
	case xergtypes.MemoryMap:
		return openMemoryMap(path)
	default:
		return openStreaming(path)
	}
}

// openStreaming reads the file line by line through a bufio.Scanner and
// copies every line into the returned slice, so all of the file's lines
// are held in memory together; memory use is not bounded to one line.
func openStreaming(path string) ([]Line, func(), error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = f.Close() }()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), maxLineSize)
	// Split on "\n" only, keeping a trailing "\r" the way splitLines does.
	sc.Split(func(data []byte, atEOF bool) (int, []byte, error) {
		if i := bytes.IndexByte(data, '\n'); i >= 0 {
			return i + 1, data[:i], nil
		}
		if atEOF && len(data) > 0 {
			return len(data), data, nil
		}
		return 0, nil, nil
	})
	var lines []Line
	idx := 0
	for sc.Scan() {
		idx++
		buf := make([]byte, len(sc.Bytes()))
		copy(buf, sc.Bytes())
		lines = append(lines, Line{Index: idx, Bytes: buf})
	}
	if err := sc.Err(); err != nil {
		return nil, nil, err
	}
	return lines, func() {}, nil
}

// openBulkRead reads the entire file with one syscall, then splits on "\n".
func openBulkRead(path string) ([]Line, func(), error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	return splitLines(data), func() {}, nil
}

// openMemoryMap maps the file read-only and splits the mapped bytes on
// "\n" without copying into a second buffer. The mapping is released by
// the returned close function once the file's lines are scanned.
func openMemoryMap(path string) ([]Line, func(), error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, nil, err
	}
	if info.Size() == 0 {
		_ = f.Close()
		return nil, func() {}, nil
	}

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		_ = f.Close()
		return nil, nil, err
	}

	lines := splitLines([]byte(m))
	closeFn := func() {
		_ = m.Unmap()
		_ = f.Close()
	}
	return lines, closeFn, nil
}

// splitLines splits data on "\n", preserving a trailing "\r" on each line
// and tolerating a final line with no trailing newline.
func splitLines(data []byte) []Line {
	if len(data) == 0 {
		return nil
	}
	var lines []Line
	idx := 0
	start := 0
	for i, b := range data {
		if b == '\n' {
			idx++
			lines = append(lines, Line{Index: idx, Bytes: data[start:i]})
			start = i + 1
		}
	}
	if start < len(data) {
		idx++
		lines = append(lines, Line{Index: idx, Bytes: data[start:]})
	}
	return lines
}
