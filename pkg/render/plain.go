package render

import (
	"fmt"
	"strings"

	"github.com/dkoosis/loopcheck/pkg/pattern"
)

const statusFail = "fail"

// Plain renders patterns as terse plain text for piped output and log
// files. Zero ANSI codes; one line per case.
type Plain struct{}

// NewPlain creates a plain-text renderer.
func NewPlain() *Plain {
	return &Plain{}
}

// Render formats all patterns as plain text. The first summary becomes the
// SCOPE line; pair tables and failure listings follow in order.
func (p *Plain) Render(patterns []pattern.Pattern) string {
	var sb strings.Builder
	scopeDone := false

	for _, pat := range patterns {
		switch v := pat.(type) {
		case *pattern.Summary:
			if !scopeDone {
				sb.WriteString("SCOPE: " + v.Label + "\n")
				scopeDone = true
			} else {
				sb.WriteString("\n" + v.Label + "\n")
			}
			for _, m := range v.Metrics {
				sb.WriteString(fmt.Sprintf("  %s: %s\n", m.Label, m.Value))
			}
		case *pattern.PairTable:
			sb.WriteString("\n" + v.Label + "\n")
			for _, item := range v.Results {
				prefix := "  PASS"
				if item.Status == statusFail {
					prefix = "  FAIL"
				}
				sb.WriteString(prefix + " " + item.Name)
				switch {
				case item.Actual == "":
					sb.WriteString(" ERR")
				case item.Status == statusFail:
					sb.WriteString(" expected " + item.Expected + " read " + item.Actual)
				default:
					sb.WriteString(" read " + item.Actual)
				}
				sb.WriteString("\n")
				if item.Details != "" {
					for _, line := range strings.Split(item.Details, "\n") {
						sb.WriteString("    " + line + "\n")
					}
				}
			}
		case *pattern.Leaderboard:
			sb.WriteString("\n" + v.Label + "\n")
			for _, item := range v.Items {
				sb.WriteString(fmt.Sprintf("  %d. %s %s\n", item.Rank, item.Name, item.Metric))
			}
		}
	}
	return sb.String()
}
