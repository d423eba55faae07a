package stream

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dkoosis/loopcheck/pkg/loopback"
)

// LineKind identifies the type of output line for styling.
type LineKind int

const (
	KindPass LineKind = iota
	KindFail
	KindPairHeader
	KindPairPass
	KindPairFail
	KindDetail
	KindSeparator
)

// StyleFunc formats a line with colors/symbols.
// If nil, no styling is applied.
type StyleFunc func(kind LineKind, text string) string

// Streamer renders loopback run progress live. It implements
// loopback.Sink; all calls arrive on the run goroutine, in order.
type Streamer struct {
	tw    *termWriter
	style StyleFunc

	pairTotal int
	pairsDone int

	current         loopback.PairSpec
	patternsPerPair int
	doneInPair      int

	totalPassed int
	totalFailed int
	started     time.Time
}

// New creates a Streamer writing to out with the given terminal size.
// pairTotal is the number of pairs the run will execute.
func New(out io.Writer, width, height, pairTotal int, style StyleFunc) *Streamer {
	return &Streamer{
		tw:        newTermWriter(out, width, height),
		style:     style,
		pairTotal: pairTotal,
		started:   time.Now(),
	}
}

func (s *Streamer) styleLine(kind LineKind, text string) string {
	if s.style != nil {
		return s.style(kind, text)
	}
	return text
}

// PairStarted implements loopback.Sink.
func (s *Streamer) PairStarted(pair loopback.PairSpec, patterns int) {
	s.current = pair
	s.patternsPerPair = patterns
	s.doneInPair = 0

	s.tw.EraseFooter()
	header := fmt.Sprintf("  ─── %s %s", pair, strings.Repeat("─", 24))
	s.tw.PrintLine(s.styleLine(KindPairHeader, header))
	s.redrawFooter()
}

// CaseFinished implements loopback.Sink.
func (s *Streamer) CaseFinished(tc loopback.TestCase) {
	s.doneInPair++
	s.tw.EraseFooter()

	switch {
	case tc.Passed:
		s.totalPassed++
		line := fmt.Sprintf("  ✓ 0x%02X  read 0x%02X", tc.Pattern, tc.Actual)
		s.tw.PrintLine(s.styleLine(KindPass, line))
	case tc.Err != "":
		s.totalFailed++
		line := fmt.Sprintf("  ✗ 0x%02X  ERR", tc.Pattern)
		s.tw.PrintLine(s.styleLine(KindFail, line))
		s.tw.PrintLine(s.styleLine(KindDetail, "        "+tc.Err))
	default:
		s.totalFailed++
		line := fmt.Sprintf("  ✗ 0x%02X  expected 0x%02X, read 0x%02X",
			tc.Pattern, tc.Expected, tc.Actual)
		s.tw.PrintLine(s.styleLine(KindFail, line))
	}

	s.redrawFooter()
}

// PairFinished implements loopback.Sink.
func (s *Streamer) PairFinished(pair loopback.PairSpec, passed, failed int) {
	s.pairsDone++
	s.tw.EraseFooter()

	total := passed + failed
	if failed == 0 {
		line := fmt.Sprintf("  ✓ %-20s %d/%d", pair, passed, total)
		s.tw.PrintLine(s.styleLine(KindPairPass, line))
	} else {
		line := fmt.Sprintf("  ✗ %-20s %d/%d", pair, passed, total)
		s.tw.PrintLine(s.styleLine(KindPairFail, line))
	}
	s.redrawFooter()
}

// Finish erases the footer and prints the final summary lines.
func (s *Streamer) Finish(sum loopback.Summary) {
	s.tw.EraseFooter()

	elapsed := time.Since(s.started).Seconds()
	sep := "  " + strings.Repeat("─", 44)
	s.tw.PrintLine(s.styleLine(KindSeparator, sep))

	if sum.Failed > 0 {
		line := fmt.Sprintf("  FAIL (%.1fs) %d/%d tests failed", elapsed, sum.Failed, sum.Total)
		s.tw.PrintLine(s.styleLine(KindFail, line))
		return
	}
	rate, ok := sum.SuccessRate()
	if !ok {
		s.tw.PrintLine(s.styleLine(KindSeparator, "  no tests run"))
		return
	}
	line := fmt.Sprintf("  PASS (%.1fs) %d tests, %.1f%%", elapsed, sum.Total, rate)
	s.tw.PrintLine(s.styleLine(KindPass, line))
}

// redrawFooter rebuilds the running-totals footer while pairs remain.
func (s *Streamer) redrawFooter() {
	if s.pairsDone >= s.pairTotal {
		return
	}
	status := fmt.Sprintf("  pair %d/%d · %s · %d/%d patterns · %d passed, %d failed",
		s.pairsDone+1, s.pairTotal, s.current,
		s.doneInPair, s.patternsPerPair,
		s.totalPassed, s.totalFailed)
	s.tw.DrawFooter([]string{status})
}
