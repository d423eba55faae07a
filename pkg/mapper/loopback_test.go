package mapper

import (
	"strings"
	"testing"

	"github.com/dkoosis/loopcheck/pkg/loopback"
	"github.com/dkoosis/loopcheck/pkg/pattern"
)

func passCase(src, dst int, p byte) loopback.TestCase {
	return loopback.TestCase{Source: src, Dest: dst, Pattern: p, Expected: p, Actual: p, Passed: true}
}

func failCase(src, dst int, p, actual byte) loopback.TestCase {
	return loopback.TestCase{Source: src, Dest: dst, Pattern: p, Expected: p, Actual: actual}
}

func TestBanner(t *testing.T) {
	s := Banner("Dev1", loopback.DefaultPairs(), 24)
	if !strings.Contains(s.Label, "Dev1") {
		t.Errorf("banner label %q missing device", s.Label)
	}
	// Device, four pairs, pattern count.
	if len(s.Metrics) != 6 {
		t.Fatalf("got %d metrics, want 6", len(s.Metrics))
	}
	if s.Metrics[1].Value != "port 0 -> port 2" {
		t.Errorf("first pair metric = %q", s.Metrics[1].Value)
	}
	if s.Metrics[5].Value != "24 per pair" {
		t.Errorf("patterns metric = %q", s.Metrics[5].Value)
	}
}

func TestFromRun_AllPass(t *testing.T) {
	cases := []loopback.TestCase{
		passCase(0, 2, 0x00),
		passCase(0, 2, 0xFF),
		passCase(2, 0, 0xAA),
	}
	patterns := FromRun(cases, loopback.Summarize(cases))

	// Two pair tables plus the tally; no failure sections.
	if len(patterns) != 3 {
		t.Fatalf("got %d patterns, want 3", len(patterns))
	}
	sum, ok := patterns[2].(*pattern.Summary)
	if !ok {
		t.Fatalf("last pattern is %T, want *pattern.Summary", patterns[2])
	}
	if !strings.HasPrefix(sum.Label, "PASS") {
		t.Errorf("tally label = %q, want PASS prefix", sum.Label)
	}
}

func TestFromRun_GroupsByPairInRunOrder(t *testing.T) {
	cases := []loopback.TestCase{
		passCase(0, 2, 0x00),
		passCase(0, 2, 0xFF),
		passCase(2, 0, 0x00),
		passCase(1, 3, 0x00),
	}
	patterns := FromRun(cases, loopback.Summarize(cases))

	wantLabels := []string{"port 0 -> port 2", "port 2 -> port 0", "port 1 -> port 3"}
	for i, want := range wantLabels {
		table, ok := patterns[i].(*pattern.PairTable)
		if !ok {
			t.Fatalf("pattern %d is %T, want *pattern.PairTable", i, patterns[i])
		}
		if table.Label != want {
			t.Errorf("table %d label = %q, want %q", i, table.Label, want)
		}
	}
	first := patterns[0].(*pattern.PairTable)
	if len(first.Results) != 2 {
		t.Errorf("first table has %d rows, want 2", len(first.Results))
	}
}

func TestFromRun_FailureSections(t *testing.T) {
	cases := []loopback.TestCase{
		passCase(0, 2, 0x00),
		failCase(0, 2, 0xFF, 0x7F), // bit 7 dropped
		failCase(2, 0, 0x80, 0x00), // bit 7 dropped
	}
	sum := loopback.Summarize(cases)
	patterns := FromRun(cases, sum)

	// Two pair tables, tally, failure list, suspect lines.
	if len(patterns) != 5 {
		t.Fatalf("got %d patterns, want 5", len(patterns))
	}

	tally := patterns[2].(*pattern.Summary)
	if tally.Label != "FAIL — 2 of 3 tests failed" {
		t.Errorf("tally label = %q", tally.Label)
	}

	failures := patterns[3].(*pattern.PairTable)
	if failures.Label != "failed tests" {
		t.Errorf("failure table label = %q", failures.Label)
	}
	if len(failures.Results) != 2 {
		t.Fatalf("failure table has %d rows, want 2", len(failures.Results))
	}
	if !strings.Contains(failures.Results[0].Name, "port 0 -> port 2") {
		t.Errorf("failure row missing pair prefix: %q", failures.Results[0].Name)
	}

	lb := patterns[4].(*pattern.Leaderboard)
	if lb.Label != "suspect lines" {
		t.Errorf("leaderboard label = %q", lb.Label)
	}
	if len(lb.Items) != 1 {
		t.Fatalf("leaderboard has %d items, want 1 (only bit 7 corrupted)", len(lb.Items))
	}
	if lb.Items[0].Name != "line 7 (bit 7)" {
		t.Errorf("top suspect = %q", lb.Items[0].Name)
	}
	if lb.Items[0].Metric != "2 failures" {
		t.Errorf("top suspect metric = %q", lb.Items[0].Metric)
	}
}

func TestFromRun_DriverFaultRow(t *testing.T) {
	cases := []loopback.TestCase{
		{Source: 0, Dest: 2, Pattern: 0xAA, Expected: 0xAA, Err: "port 2: read: timeout"},
	}
	patterns := FromRun(cases, loopback.Summarize(cases))

	table := patterns[0].(*pattern.PairTable)
	row := table.Results[0]
	if row.Status != "fail" {
		t.Errorf("status = %q, want fail", row.Status)
	}
	if row.Actual != "" {
		t.Errorf("actual = %q, want empty for a driver fault", row.Actual)
	}
	if row.Details != "port 2: read: timeout" {
		t.Errorf("details = %q", row.Details)
	}

	// Fault cases carry no read value, so they must not feed the
	// suspect-line ranking.
	for _, p := range patterns {
		if lb, ok := p.(*pattern.Leaderboard); ok && len(lb.Items) > 0 {
			t.Errorf("driver fault produced suspect lines: %+v", lb.Items)
		}
	}
}

func TestFromRun_EmptyRun(t *testing.T) {
	patterns := FromRun(nil, loopback.Summarize(nil))
	if len(patterns) != 1 {
		t.Fatalf("got %d patterns, want the bare tally", len(patterns))
	}
	sum := patterns[0].(*pattern.Summary)
	found := false
	for _, m := range sum.Metrics {
		if m.Label == "Success Rate" && m.Value == "N/A (no tests run)" {
			found = true
		}
	}
	if !found {
		t.Error("empty run must report N/A success rate")
	}
}

func TestSuspectLines_RankedByCount(t *testing.T) {
	failures := []loopback.TestCase{
		failCase(0, 2, 0xFF, 0xFC), // bits 0,1
		failCase(2, 0, 0x01, 0x00), // bit 0
		failCase(1, 3, 0x03, 0x02), // bit 0
	}
	lb := suspectLines(failures)

	if len(lb.Items) != 2 {
		t.Fatalf("got %d items, want 2", len(lb.Items))
	}
	if lb.Items[0].Name != "line 0 (bit 0)" || lb.Items[0].Metric != "3 failures" {
		t.Errorf("rank 1 = %q %q", lb.Items[0].Name, lb.Items[0].Metric)
	}
	if lb.Items[1].Name != "line 1 (bit 1)" || lb.Items[1].Metric != "1 failure" {
		t.Errorf("rank 2 = %q %q", lb.Items[1].Name, lb.Items[1].Metric)
	}
}
