// Package loopback drives wiring-integrity tests over a daq.Device: write a
// pattern to one port, read it back on the wired partner port, compare.
// Results are pure data; presentation lives in pkg/mapper and pkg/render.
package loopback

import (
	"context"
	"fmt"
	"time"

	"github.com/dkoosis/loopcheck/pkg/daq"
)

// PairSpec is one directional test: patterns are written to Source and read
// back on Dest.
type PairSpec struct {
	Source int
	Dest   int
}

func (p PairSpec) String() string {
	return fmt.Sprintf("port %d -> port %d", p.Source, p.Dest)
}

// DefaultPairs returns the four directional pairs of the bench harness,
// which wires port 0 to port 2 and port 1 to port 3.
func DefaultPairs() []PairSpec {
	return []PairSpec{{0, 2}, {2, 0}, {1, 3}, {3, 1}}
}

// TestCase is one pattern sent across one pair. Immutable once recorded.
// A driver fault during write or read leaves Actual zero and records the
// fault in Err; Passed is false in that case regardless of Actual.
type TestCase struct {
	Source   int
	Dest     int
	Pattern  byte
	Expected byte
	Actual   byte
	Passed   bool
	Err      string
}

// Pair returns the pair this case ran on.
func (c TestCase) Pair() PairSpec { return PairSpec{Source: c.Source, Dest: c.Dest} }

// Summary aggregates a run. Failures preserves run order.
type Summary struct {
	Total    int
	Passed   int
	Failed   int
	Failures []TestCase
}

// SuccessRate returns the pass percentage and whether any tests ran.
func (s Summary) SuccessRate() (float64, bool) {
	if s.Total == 0 {
		return 0, false
	}
	return 100 * float64(s.Passed) / float64(s.Total), true
}

// Sink receives progress events during a run. Implementations must not
// block; all calls happen on the run's goroutine, in order.
type Sink interface {
	PairStarted(pair PairSpec, patterns int)
	CaseFinished(tc TestCase)
	PairFinished(pair PairSpec, passed, failed int)
}

// Tester runs the pattern sequence across port pairs on a single device.
// Execution is strictly sequential: the board is one shared bus.
type Tester struct {
	dev      daq.Device
	pairs    []PairSpec
	patterns []byte
	settle   time.Duration
	sink     Sink
}

// Option configures a Tester.
type Option func(*Tester)

// WithPairs overrides the default directional pairs.
func WithPairs(pairs []PairSpec) Option {
	return func(t *Tester) { t.pairs = pairs }
}

// WithPatterns overrides the default pattern sequence.
func WithPatterns(patterns []byte) Option {
	return func(t *Tester) { t.patterns = patterns }
}

// WithSettle sets the wait between driving a pattern and sampling it, giving
// the lines time to stabilize. Zero is fine for simulated devices.
func WithSettle(d time.Duration) Option {
	return func(t *Tester) { t.settle = d }
}

// WithSink installs a progress sink.
func WithSink(sink Sink) Option {
	return func(t *Tester) { t.sink = sink }
}

// DefaultSettle matches the 1ms data-stable wait the hardware needs between
// latching outputs and sampling inputs.
const DefaultSettle = time.Millisecond

// NewTester creates a Tester over dev with the default pairs, patterns and
// settle time.
func NewTester(dev daq.Device, opts ...Option) *Tester {
	t := &Tester{
		dev:      dev,
		pairs:    DefaultPairs(),
		patterns: Patterns(),
		settle:   DefaultSettle,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Pairs returns the pairs this Tester will run.
func (t *Tester) Pairs() []PairSpec { return t.pairs }

// PatternCount returns the number of patterns per pair.
func (t *Tester) PatternCount() int { return len(t.patterns) }

// RunPair writes each pattern to pair.Source and verifies it on pair.Dest.
// Driver faults are contained: the affected case is recorded as failed and
// the sequence continues. The only error returned is context cancellation.
func (t *Tester) RunPair(ctx context.Context, pair PairSpec) ([]TestCase, error) {
	if t.sink != nil {
		t.sink.PairStarted(pair, len(t.patterns))
	}
	cases := make([]TestCase, 0, len(t.patterns))
	passed, failed := 0, 0
	for _, pattern := range t.patterns {
		if err := ctx.Err(); err != nil {
			return cases, err
		}
		tc := t.runCase(pair, pattern)
		cases = append(cases, tc)
		if tc.Passed {
			passed++
		} else {
			failed++
		}
		if t.sink != nil {
			t.sink.CaseFinished(tc)
		}
	}
	if t.sink != nil {
		t.sink.PairFinished(pair, passed, failed)
	}
	return cases, nil
}

func (t *Tester) runCase(pair PairSpec, pattern byte) TestCase {
	tc := TestCase{
		Source:   pair.Source,
		Dest:     pair.Dest,
		Pattern:  pattern,
		Expected: pattern,
	}
	if err := t.dev.WritePort(pair.Source, pattern); err != nil {
		tc.Err = err.Error()
		return tc
	}
	if t.settle > 0 {
		time.Sleep(t.settle)
	}
	actual, err := t.dev.ReadPort(pair.Dest)
	if err != nil {
		tc.Err = err.Error()
		return tc
	}
	tc.Actual = actual
	tc.Passed = actual == tc.Expected
	return tc
}

// RunAll runs every configured pair in order and returns all cases.
func (t *Tester) RunAll(ctx context.Context) ([]TestCase, error) {
	var all []TestCase
	for _, pair := range t.pairs {
		cases, err := t.RunPair(ctx, pair)
		all = append(all, cases...)
		if err != nil {
			return all, err
		}
	}
	return all, nil
}

// Summarize aggregates cases into a Summary. Counts are order-independent;
// Failures keeps input order.
func Summarize(cases []TestCase) Summary {
	s := Summary{Total: len(cases)}
	for _, tc := range cases {
		if tc.Passed {
			s.Passed++
		} else {
			s.Failed++
			s.Failures = append(s.Failures, tc)
		}
	}
	return s
}
