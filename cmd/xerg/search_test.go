package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

// === Section 1: default mode ===

func TestSearch_TwoFilesTwoHeadersThreeLines(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, "a.rs"), "one\ntwo\nfn main\n")
	mustWrite(t, filepath.Join(dir, "b.rs"), "fn foo\nx\nx\nx\nfn bar\n")

	var out, diag bytes.Buffer
	code, err := search("fn ", dir, &searchOptions{}, &out, &diag)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if code != exitOK {
		t.Errorf("code = %d, want %d", code, exitOK)
	}
	if strings.Count(out.String(), " ---\n") != 2 {
		t.Errorf("expected two header blocks, got:\n%s", out.String())
	}
	if strings.Count(out.String(), ":  fn ") != 3 {
		t.Errorf("expected three Line entries, got:\n%s", out.String())
	}
}

// === Section 2: zero matches ===

func TestSearch_NoMatchesExitsOne(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, "a.rs"), "one\ntwo\n")

	var out, diag bytes.Buffer
	code, err := search("nothing_here_xyz", dir, &searchOptions{showStats: true}, &out, &diag)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if code != exitNoMatch {
		t.Errorf("code = %d, want %d", code, exitNoMatch)
	}
	if !strings.Contains(out.String(), "matches:0") {
		t.Errorf("summary missing matches:0, got %q", out.String())
	}
	if strings.Contains(out.String(), "---") {
		t.Errorf("zero-match run must not print a header, got %q", out.String())
	}
}

// === Section 3: invalid pattern ===

func TestSearch_InvalidPatternReturnsFatal(t *testing.T) {
	var out, diag bytes.Buffer
	code, err := search("(unterminated", t.TempDir(), &searchOptions{}, &out, &diag)
	if err == nil {
		t.Fatalf("expected error")
	}
	if code != exitFatal {
		t.Errorf("code = %d, want %d", code, exitFatal)
	}
}

// === Section 4: zero-byte file ===

func TestSearch_ZeroByteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.txt")
	mustWrite(t, path, "")

	var out, diag bytes.Buffer
	code, err := search("x", path, &searchOptions{showStats: true}, &out, &diag)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if code != exitNoMatch {
		t.Errorf("code = %d, want %d", code, exitNoMatch)
	}
	if !strings.Contains(out.String(), "files:1; lines:0; matches:0") {
		t.Errorf("summary = %q", out.String())
	}
}

// === Section 5: unreadable file among readable ===

func TestSearch_UnreadableFileReportsErrorAndContinues(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("running as root ignores file permissions")
	}

	dir := t.TempDir()
	unreadable := filepath.Join(dir, "secret.rs")
	readable := filepath.Join(dir, "ok.rs")
	mustWrite(t, unreadable, "pat\n")
	mustWrite(t, readable, "pat\n")
	if err := os.Chmod(unreadable, 0o000); err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.Chmod(unreadable, 0o644) }()

	var out, diag bytes.Buffer
	code, err := search("pat", dir, &searchOptions{showStats: true}, &out, &diag)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if code != exitOK {
		t.Errorf("code = %d, want %d", code, exitOK)
	}
	if diag.Len() == 0 {
		t.Errorf("expected a diagnostic line for the unreadable file")
	}
	if !strings.Contains(out.String(), "errors:1") {
		t.Errorf("summary = %q, want errors:1", out.String())
	}
}

// === Section 6: xtreme mode ===

func TestSearch_XtremeSingleFileExactLine(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lib.rs")
	mustWrite(t, path, "mod a;\nuse x;\nmod b;\n")

	var out, diag bytes.Buffer
	code, err := search("use", path, &searchOptions{xtreme: true}, &out, &diag)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if code != exitOK {
		t.Errorf("code = %d, want %d", code, exitOK)
	}
	want := path + ":2:use x;\n"
	if out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
}

func TestSearch_XtremeAndDefaultAgreeOnMatchedPairs(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lib.rs")
	mustWrite(t, path, "mod a;\nuse x;\nmod b;\nuse y;\n")

	var defaultOut, defaultDiag bytes.Buffer
	if _, err := search("use", path, &searchOptions{}, &defaultOut, &defaultDiag); err != nil {
		t.Fatalf("default search: %v", err)
	}
	var xtremeOut, xtremeDiag bytes.Buffer
	if _, err := search("use", path, &searchOptions{xtreme: true}, &xtremeOut, &xtremeDiag); err != nil {
		t.Fatalf("xtreme search: %v", err)
	}

	wantPairs := []struct{ defaultForm, xtremeForm string }{
		{"   2:  use x;", ":2:use x;"},
		{"   4:  use y;", ":4:use y;"},
	}
	for _, pair := range wantPairs {
		if !strings.Contains(defaultOut.String(), pair.defaultForm) {
			t.Errorf("default output missing %q, got:\n%s", pair.defaultForm, defaultOut.String())
		}
		if !strings.Contains(xtremeOut.String(), pair.xtremeForm) {
			t.Errorf("xtreme output missing %q, got:\n%s", pair.xtremeForm, xtremeOut.String())
		}
	}
}

// === Section 7: idempotence under corpus doubling ===

func TestSearch_DoublingCorpusDoublesCounts(t *testing.T) {
	single := t.TempDir()
	mustWrite(t, filepath.Join(single, "a.rs"), "fn main\nx\nfn foo\n")
	mustWrite(t, filepath.Join(single, "b.rs"), "fn bar\ny\ny\n")

	doubled := t.TempDir()
	mustWrite(t, filepath.Join(doubled, "set1", "a.rs"), "fn main\nx\nfn foo\n")
	mustWrite(t, filepath.Join(doubled, "set1", "b.rs"), "fn bar\ny\ny\n")
	mustWrite(t, filepath.Join(doubled, "set2", "a.rs"), "fn main\nx\nfn foo\n")
	mustWrite(t, filepath.Join(doubled, "set2", "b.rs"), "fn bar\ny\ny\n")

	var singleOut, singleDiag bytes.Buffer
	if _, err := search("fn ", single, &searchOptions{showStats: true}, &singleOut, &singleDiag); err != nil {
		t.Fatalf("single search: %v", err)
	}
	var doubledOut, doubledDiag bytes.Buffer
	if _, err := search("fn ", doubled, &searchOptions{showStats: true}, &doubledOut, &doubledDiag); err != nil {
		t.Fatalf("doubled search: %v", err)
	}

	single1 := parseSummary(t, singleOut.String())
	doubled1 := parseSummary(t, doubledOut.String())

	if doubled1.files != 2*single1.files {
		t.Errorf("files = %d, want %d", doubled1.files, 2*single1.files)
	}
	if doubled1.lines != 2*single1.lines {
		t.Errorf("lines = %d, want %d", doubled1.lines, 2*single1.lines)
	}
	if doubled1.matches != 2*single1.matches {
		t.Errorf("matches = %d, want %d", doubled1.matches, 2*single1.matches)
	}
	if doubled1.skipped != 2*single1.skipped {
		t.Errorf("skipped = %d, want %d", doubled1.skipped, 2*single1.skipped)
	}
}

type runSummary struct {
	files, lines, matches, skipped int
}

// parseSummary extracts the integer following each "name:" field in a
// "result: files:N; lines:N; matches:N; skipped:N; errors:N; time:N.NNNs;"
// line, ignoring any per-file stats lines printed before it.
func parseSummary(t *testing.T, out string) runSummary {
	t.Helper()
	start := strings.Index(out, "result: ")
	if start == -1 {
		t.Fatalf("output %q has no result line", out)
	}
	out = out[start:]
	var s runSummary
	fields := map[string]*int{
		"files":   &s.files,
		"lines":   &s.lines,
		"matches": &s.matches,
		"skipped": &s.skipped,
	}
	for name, dst := range fields {
		idx := strings.Index(out, name+":")
		if idx == -1 {
			t.Fatalf("summary %q missing field %q", out, name)
		}
		rest := out[idx+len(name)+1:]
		end := strings.IndexAny(rest, ";")
		if end == -1 {
			t.Fatalf("summary %q malformed field %q", out, name)
		}
		n, err := strconv.Atoi(rest[:end])
		if err != nil {
			t.Fatalf("summary %q field %q not an int: %v", out, name, err)
		}
		*dst = n
	}
	return s
}

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
