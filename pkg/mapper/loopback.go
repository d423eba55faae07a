// Package mapper converts loopback run results into visualization patterns.
package mapper

import (
	"fmt"
	"sort"

	"github.com/dkoosis/loopcheck/pkg/loopback"
	"github.com/dkoosis/loopcheck/pkg/pattern"
)

const (
	statusPass = "pass"
	statusFail = "fail"
)

// Banner builds the pre-run configuration summary: device, wiring, pattern
// count.
func Banner(device string, pairs []loopback.PairSpec, patterns int) *pattern.Summary {
	s := &pattern.Summary{
		Label: "loopback test — " + device,
		Metrics: []pattern.SummaryItem{
			{Label: "Device", Value: device, Kind: "info"},
		},
	}
	for _, p := range pairs {
		s.Metrics = append(s.Metrics, pattern.SummaryItem{
			Label: "Pair", Value: p.String(), Kind: "info",
		})
	}
	s.Metrics = append(s.Metrics, pattern.SummaryItem{
		Label: "Patterns", Value: fmt.Sprintf("%d per pair", patterns), Kind: "info",
	})
	return s
}

// FromRun maps a completed run to patterns: one table per pair in run
// order, the final tally, then (when anything failed) the itemized failure
// list and the suspect-line ranking.
func FromRun(cases []loopback.TestCase, sum loopback.Summary) []pattern.Pattern {
	var out []pattern.Pattern
	for _, table := range pairTables(cases) {
		out = append(out, table)
	}
	out = append(out, summaryPattern(sum))
	if sum.Failed > 0 {
		out = append(out, failureTable(sum.Failures))
		if lb := suspectLines(sum.Failures); len(lb.Items) > 0 {
			out = append(out, lb)
		}
	}
	return out
}

// pairTables groups cases by directional pair, preserving run order.
func pairTables(cases []loopback.TestCase) []*pattern.PairTable {
	var tables []*pattern.PairTable
	index := map[loopback.PairSpec]*pattern.PairTable{}
	for _, tc := range cases {
		table, ok := index[tc.Pair()]
		if !ok {
			table = &pattern.PairTable{Label: tc.Pair().String()}
			index[tc.Pair()] = table
			tables = append(tables, table)
		}
		table.Results = append(table.Results, caseItem(tc))
	}
	return tables
}

func caseItem(tc loopback.TestCase) pattern.CaseItem {
	item := pattern.CaseItem{
		Name:     hexByte(tc.Pattern),
		Status:   statusPass,
		Expected: hexByte(tc.Expected),
	}
	if tc.Err != "" {
		item.Status = statusFail
		item.Details = tc.Err
		return item
	}
	item.Actual = hexByte(tc.Actual)
	if !tc.Passed {
		item.Status = statusFail
	}
	return item
}

func summaryPattern(sum loopback.Summary) *pattern.Summary {
	label := fmt.Sprintf("PASS — %d/%d tests", sum.Passed, sum.Total)
	if sum.Failed > 0 {
		label = fmt.Sprintf("FAIL — %d of %d tests failed", sum.Failed, sum.Total)
	}
	s := &pattern.Summary{
		Label: label,
		Metrics: []pattern.SummaryItem{
			{Label: "Total", Value: fmt.Sprintf("%d", sum.Total), Kind: "info"},
			{Label: "Passed", Value: fmt.Sprintf("%d", sum.Passed), Kind: "success"},
			{Label: "Failed", Value: fmt.Sprintf("%d", sum.Failed), Kind: failKind(sum.Failed)},
		},
	}
	if rate, ok := sum.SuccessRate(); ok {
		s.Metrics = append(s.Metrics, pattern.SummaryItem{
			Label: "Success Rate", Value: fmt.Sprintf("%.1f%%", rate), Kind: failKind(sum.Failed),
		})
	} else {
		s.Metrics = append(s.Metrics, pattern.SummaryItem{
			Label: "Success Rate", Value: "N/A (no tests run)", Kind: "warning",
		})
	}
	return s
}

func failKind(failed int) string {
	if failed > 0 {
		return "error"
	}
	return "success"
}

// failureTable lists every failed case with its pair, matching the original
// failure report at the end of a run.
func failureTable(failures []loopback.TestCase) *pattern.PairTable {
	table := &pattern.PairTable{Label: "failed tests"}
	for _, tc := range failures {
		item := caseItem(tc)
		item.Name = tc.Pair().String() + "  " + item.Name
		table.Results = append(table.Results, item)
	}
	return table
}

// suspectLines ranks data lines (bit positions) by how many comparisons
// they corrupted. Driver-fault cases carry no read value and are excluded.
// A single line dominating the ranking usually means one broken wire.
func suspectLines(failures []loopback.TestCase) *pattern.Leaderboard {
	counts := [8]int{}
	for _, tc := range failures {
		if tc.Err != "" {
			continue
		}
		diff := tc.Expected ^ tc.Actual
		for bit := 0; bit < 8; bit++ {
			if diff&(1<<bit) != 0 {
				counts[bit]++
			}
		}
	}

	type lineCount struct{ bit, count int }
	var lines []lineCount
	for bit, count := range counts {
		if count > 0 {
			lines = append(lines, lineCount{bit, count})
		}
	}
	sort.Slice(lines, func(i, j int) bool {
		if lines[i].count != lines[j].count {
			return lines[i].count > lines[j].count
		}
		return lines[i].bit < lines[j].bit
	})

	lb := &pattern.Leaderboard{Label: "suspect lines", ShowRank: true}
	for i, lc := range lines {
		lb.Items = append(lb.Items, pattern.LeaderboardItem{
			Rank:   i + 1,
			Name:   fmt.Sprintf("line %d (bit %d)", lc.bit, lc.bit),
			Metric: countLabel(lc.count, "failure", "failures"),
		})
	}
	return lb
}

func hexByte(b byte) string {
	return fmt.Sprintf("0x%02X", b)
}

func countLabel(n int, singular, plural string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, singular)
	}
	return fmt.Sprintf("%d %s", n, plural)
}
