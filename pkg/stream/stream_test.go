package stream

import (
	"bytes"
	"strings"
	"testing"

	"github.com/dkoosis/loopcheck/pkg/loopback"
)

func pair() loopback.PairSpec { return loopback.PairSpec{Source: 0, Dest: 2} }

func TestStreamer_PassAndFailLines(t *testing.T) {
	var buf bytes.Buffer
	s := New(&buf, 80, 24, 1, nil)

	s.PairStarted(pair(), 3)
	s.CaseFinished(loopback.TestCase{Source: 0, Dest: 2, Pattern: 0xAA, Expected: 0xAA, Actual: 0xAA, Passed: true})
	s.CaseFinished(loopback.TestCase{Source: 0, Dest: 2, Pattern: 0xFF, Expected: 0xFF, Actual: 0x7F})
	s.CaseFinished(loopback.TestCase{Source: 0, Dest: 2, Pattern: 0x55, Expected: 0x55, Err: "port 2: read: timeout"})
	s.PairFinished(pair(), 1, 2)

	out := buf.String()
	for _, want := range []string{
		"port 0 -> port 2",
		"✓ 0xAA  read 0xAA",
		"✗ 0xFF  expected 0xFF, read 0x7F",
		"✗ 0x55  ERR",
		"port 2: read: timeout",
		"1/3",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestStreamer_FooterErasedWhenAllPairsDone(t *testing.T) {
	var buf bytes.Buffer
	s := New(&buf, 80, 24, 1, nil)

	s.PairStarted(pair(), 1)
	s.CaseFinished(loopback.TestCase{Source: 0, Dest: 2, Pattern: 0x00, Expected: 0x00, Actual: 0x00, Passed: true})
	s.PairFinished(pair(), 1, 0)
	s.Finish(loopback.Summary{Total: 1, Passed: 1})

	out := buf.String()
	if !strings.Contains(out, "PASS") {
		t.Errorf("final summary missing:\n%s", out)
	}
	// The last thing written must be the summary, not a dangling footer.
	if strings.Contains(lastLine(out), "patterns") {
		t.Errorf("footer survived past Finish:\n%s", out)
	}
}

func TestStreamer_FinishReportsFailures(t *testing.T) {
	var buf bytes.Buffer
	s := New(&buf, 80, 24, 0, nil)

	s.Finish(loopback.Summary{Total: 96, Passed: 90, Failed: 6})
	if !strings.Contains(buf.String(), "6/96 tests failed") {
		t.Errorf("failure summary missing:\n%s", buf.String())
	}
}

func TestStreamer_FinishEmptyRun(t *testing.T) {
	var buf bytes.Buffer
	s := New(&buf, 80, 24, 0, nil)

	s.Finish(loopback.Summary{})
	if !strings.Contains(buf.String(), "no tests run") {
		t.Errorf("empty-run notice missing:\n%s", buf.String())
	}
}

func TestStreamer_StyleFuncApplied(t *testing.T) {
	var buf bytes.Buffer
	style := func(kind LineKind, text string) string {
		if kind == KindPass {
			return "[P]" + text
		}
		return text
	}
	s := New(&buf, 80, 24, 1, style)

	s.PairStarted(pair(), 1)
	s.CaseFinished(loopback.TestCase{Source: 0, Dest: 2, Pattern: 0x00, Expected: 0x00, Actual: 0x00, Passed: true})

	if !strings.Contains(buf.String(), "[P]") {
		t.Errorf("style func not applied:\n%s", buf.String())
	}
}

func TestTermWriter_FooterEraseSequence(t *testing.T) {
	var buf bytes.Buffer
	tw := newTermWriter(&buf, 80, 24)

	tw.DrawFooter([]string{"status line"})
	tw.EraseFooter()
	tw.EraseFooter() // second erase is a no-op

	out := buf.String()
	if got := strings.Count(out, "\033[2K"); got != 1 {
		t.Errorf("got %d erase sequences, want 1:\n%q", got, out)
	}
}

func TestTruncateToWidth(t *testing.T) {
	if got := truncateToWidth("short", 80); got != "short" {
		t.Errorf("got %q", got)
	}
	got := truncateToWidth(strings.Repeat("a", 100), 10)
	if got != strings.Repeat("a", 7)+"..." {
		t.Errorf("got %q", got)
	}
	// Wide runes count as two cells.
	if got := truncateToWidth("ポートテスト", 6); len(got) == 0 {
		t.Errorf("wide-rune truncation emptied the string")
	}
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	return lines[len(lines)-1]
}
