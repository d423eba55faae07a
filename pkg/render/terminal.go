package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/dkoosis/loopcheck/pkg/pattern"
)

// Terminal renders patterns as styled terminal output via lipgloss.
type Terminal struct {
	theme Theme
	width int
	title cases.Caser
}

// NewTerminal creates a terminal renderer with the given theme.
func NewTerminal(theme Theme, width int) *Terminal {
	if width <= 0 {
		width = 80
	}
	return &Terminal{theme: theme, width: width, title: cases.Title(language.English)}
}

// Render formats all patterns for terminal display.
func (t *Terminal) Render(patterns []pattern.Pattern) string {
	var sections []string
	for _, p := range patterns {
		s := t.renderOne(p)
		if s != "" {
			sections = append(sections, s)
		}
	}
	return strings.Join(sections, "\n")
}

func (t *Terminal) renderOne(p pattern.Pattern) string {
	switch v := p.(type) {
	case *pattern.Summary:
		return t.renderSummary(v)
	case *pattern.PairTable:
		return t.renderPairTable(v)
	case *pattern.Leaderboard:
		return t.renderLeaderboard(v)
	default:
		return ""
	}
}

func (t *Terminal) renderSummary(s *pattern.Summary) string {
	var sb strings.Builder
	if s.Label != "" {
		sb.WriteString(t.theme.Bold.Render(t.sectionLabel(s.Label)))
		sb.WriteString("\n")
	}
	for _, m := range s.Metrics {
		sb.WriteString("  ")
		icon, style := t.iconStyle(m.Kind)
		sb.WriteString(style.Render(icon + " " + m.Label + ": " + m.Value))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (t *Terminal) renderPairTable(pt *pattern.PairTable) string {
	if len(pt.Results) == 0 {
		return ""
	}
	var sb strings.Builder
	if pt.Label != "" {
		sb.WriteString(t.theme.Bold.Render(t.sectionLabel(pt.Label)))
		sb.WriteString("\n")
	}

	maxName := 0
	for _, r := range pt.Results {
		if len(r.Name) > maxName {
			maxName = len(r.Name)
		}
	}
	if maxName > 40 {
		maxName = 40
	}

	for _, r := range pt.Results {
		sb.WriteString("  ")
		icon, style := t.statusIconStyle(r.Status)
		sb.WriteString(style.Render(icon + " "))
		sb.WriteString(t.theme.Value.Render(padRight(r.Name, maxName)))

		switch {
		case r.Actual == "":
			// Driver fault: no value was read.
			sb.WriteString("  ")
			sb.WriteString(t.theme.Error.Render("ERR"))
		case r.Status == "fail":
			sb.WriteString("  ")
			sb.WriteString(t.theme.Muted.Render("expected " + r.Expected + ", read "))
			sb.WriteString(t.theme.Error.Render(r.Actual))
		default:
			sb.WriteString("  ")
			sb.WriteString(t.theme.Muted.Render("read " + r.Actual))
		}

		if r.Details != "" {
			for _, line := range strings.Split(r.Details, "\n") {
				sb.WriteString("\n    ")
				sb.WriteString(t.theme.Muted.Render(line))
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func (t *Terminal) renderLeaderboard(l *pattern.Leaderboard) string {
	if len(l.Items) == 0 {
		return ""
	}
	var sb strings.Builder
	if l.Label != "" {
		sb.WriteString(t.theme.Bold.Render(t.sectionLabel(l.Label)))
		sb.WriteString("\n")
	}

	maxName, maxMetric := 0, 0
	for _, item := range l.Items {
		if len(item.Name) > maxName {
			maxName = len(item.Name)
		}
		if len(item.Metric) > maxMetric {
			maxMetric = len(item.Metric)
		}
	}

	for _, item := range l.Items {
		sb.WriteString("  ")
		if l.ShowRank {
			sb.WriteString(t.theme.Muted.Render(fmt.Sprintf("%2d. ", item.Rank)))
		}
		sb.WriteString(t.theme.Primary.Render(padRight(item.Name, maxName)))
		sb.WriteString("  ")
		sb.WriteString(t.theme.Warning.Render(padLeft(item.Metric, maxMetric)))
		sb.WriteString("\n")
	}
	return sb.String()
}

// sectionLabel title-cases lowercase section labels coming from the mapper;
// labels that already carry formatting (PASS/FAIL headers) pass through.
func (t *Terminal) sectionLabel(label string) string {
	if label == strings.ToLower(label) {
		return t.title.String(label)
	}
	return label
}

func (t *Terminal) iconStyle(kind string) (string, lipgloss.Style) {
	switch kind {
	case "success":
		return t.theme.Icons.Pass, t.theme.Success
	case "error":
		return t.theme.Icons.Fail, t.theme.Error
	case "warning":
		return t.theme.Icons.Warn, t.theme.Warning
	default:
		return t.theme.Icons.Info, t.theme.Primary
	}
}

func (t *Terminal) statusIconStyle(status string) (string, lipgloss.Style) {
	switch status {
	case "pass":
		return t.theme.Icons.Pass, t.theme.Success
	case "fail":
		return t.theme.Icons.Fail, t.theme.Error
	default:
		return t.theme.Icons.Info, t.theme.Muted
	}
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

func padLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(" ", width-len(s)) + s
}
