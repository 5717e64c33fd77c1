package xergtypes

import (
	"time"

	"github.com/dlclark/regexp2"
)

// matchTimeout bounds a single FindNextMatch call so that pathological
// lookaround/backtracking on attacker-controlled input can't hang a worker
// forever. A line that times out is treated the same as a decode failure:
// skipped, counted, never fatal.
const matchTimeout = 2 * time.Second

// CompilePattern compiles the source pattern with PCRE-like features
// (alternation, character classes, repetition, Unicode property escapes).
// Compilation failure is a fatal ConfigError.
func CompilePattern(source string) (*regexp2.Regexp, error) {
	re, err := regexp2.Compile(source, regexp2.Unicode)
	if err != nil {
		return nil, NewConfigError("invalid pattern %q: %v", source, err)
	}
	re.MatchTimeout = matchTimeout
	return re, nil
}
