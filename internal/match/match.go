// Package match implements C3 (the Line Scanner) and C4 (the Highlighter):
// given a compiled pattern and a line's raw bytes, it decides whether the
// line matches and, if so, produces the styled line C6 prints.
//
// Grounded on dupedog's internal/verifier for the "pure function over one
// unit of work, shared read-only state passed in" shape (verifier.hashRange
// takes a pre-opened file and a shared blockSize constant; Scan takes a
// pre-compiled, shared *regexp2.Regexp). Span-splicing in highlight is new
// work specific to xerg's output contract and has no direct teacher
// analogue.
package match

import (
	"strings"
	"unicode/utf8"

	"github.com/dlclark/regexp2"
	"github.com/ivoronin/xerg/internal/color"
	"github.com/ivoronin/xerg/internal/xergtypes"
)

// Outcome is the result of scanning one line.
type Outcome struct {
	Matched      bool
	Decodable    bool // false if the line was not valid UTF-8 or timed out
	OriginalLine string
	StyledLine   string
}

// Scan decides whether line matches re and, when it does, builds the
// highlighted rendering using code. Invalid UTF-8 and matcher timeouts are
// treated identically: the line is counted as skipped, never as an error.
func Scan(re *regexp2.Regexp, line []byte, code color.Code) Outcome {
	if !utf8.Valid(line) {
		return Outcome{Decodable: false}
	}

	s := string(line)
	spans, ok := findSpans(re, s)
	if !ok {
		return Outcome{Decodable: false}
	}
	if len(spans) == 0 {
		return Outcome{Decodable: true, Matched: false, OriginalLine: s}
	}

	return Outcome{
		Decodable:    true,
		Matched:      true,
		OriginalLine: s,
		StyledLine:   highlight(s, spans, code),
	}
}

// span is a half-open byte range [start, end) within a line.
type span struct {
	start, end int
}

// findSpans walks non-overlapping matches left to right. A regexp2 timeout
// is reported as !ok so the caller treats the line as undecodable rather
// than fatally erroring on a pathological backtrack against a huge line.
func findSpans(re *regexp2.Regexp, s string) ([]span, bool) {
	var spans []span

	m, err := re.FindStringMatch(s)
	for {
		if err != nil {
			return nil, false
		}
		if m == nil {
			break
		}
		start := m.Index
		end := m.Index + m.Length
		if end == start {
			// Zero-length match: record the line as matched once, but
			// don't loop forever re-matching at the same position.
			spans = append(spans, span{start: start, end: end})
			break
		}
		spans = append(spans, span{start: start, end: end})

		m, err = re.FindNextMatch(m)
	}

	return spans, true
}

// highlight splices code's markers around each matched span, leaving the
// rest of the line untouched. Spans are assumed sorted and non-overlapping
// (guaranteed by findSpans's left-to-right walk).
func highlight(s string, spans []span, code Coder) string {
	var b strings.Builder
	b.Grow(len(s) + 16*len(spans))

	prev := 0
	for _, sp := range spans {
		b.WriteString(s[prev:sp.start])
		if sp.end > sp.start {
			b.WriteString(code.Wrap(s[sp.start:sp.end]))
		} else {
			b.WriteString(s[sp.start:sp.end])
		}
		prev = sp.end
	}
	b.WriteString(s[prev:])
	return b.String()
}

// Coder is the narrow interface highlight needs from color.Code, named
// here so this file doesn't import color just to spell the concrete type
// in a second place.
type Coder interface {
	Wrap(string) string
}

var _ Coder = color.Code{}

// MatchRecord builds the shared record type for one matched line.
func MatchRecord(lineIndex int, outcome Outcome) xergtypes.MatchRecord {
	return xergtypes.MatchRecord{
		LineIndex:    lineIndex,
		OriginalLine: outcome.OriginalLine,
		StyledLine:   outcome.StyledLine,
	}
}
