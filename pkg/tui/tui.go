// Package tui runs a loopback test inside a full-screen terminal view:
// a pair list with live counts on the left, failure details in a viewport
// on the right.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dkoosis/loopcheck/pkg/daq"
	"github.com/dkoosis/loopcheck/pkg/loopback"
)

// Run builds a Tester over dev with the TUI's progress sink installed and
// executes it inside the full-screen view. It returns the run summary once
// the view is dismissed. The context cancels both the run and the view.
func Run(ctx context.Context, dev daq.Device, opts ...loopback.Option) (loopback.Summary, error) {
	events := make(chan event)
	opts = append(opts, loopback.WithSink(chanSink{ch: events}))
	tester := loopback.NewTester(dev, opts...)

	go func() {
		defer close(events)
		cases, err := tester.RunAll(ctx)
		events <- event{kind: eventDone, cases: cases, err: err}
	}()

	program := tea.NewProgram(newModel(tester, events), tea.WithContext(ctx))
	finalModel, err := program.Run()
	if err != nil {
		return loopback.Summary{}, err
	}
	m := finalModel.(model)
	return m.summary, m.runErr
}

type eventKind int

const (
	eventPairStarted eventKind = iota
	eventCase
	eventPairFinished
	eventDone
)

type event struct {
	kind     eventKind
	pair     loopback.PairSpec
	patterns int
	tc       loopback.TestCase
	passed   int
	failed   int
	cases    []loopback.TestCase
	err      error
}

// chanSink forwards run progress into the TUI's event channel.
type chanSink struct {
	ch chan<- event
}

func (s chanSink) PairStarted(pair loopback.PairSpec, patterns int) {
	s.ch <- event{kind: eventPairStarted, pair: pair, patterns: patterns}
}

func (s chanSink) CaseFinished(tc loopback.TestCase) {
	s.ch <- event{kind: eventCase, tc: tc}
}

func (s chanSink) PairFinished(pair loopback.PairSpec, passed, failed int) {
	s.ch <- event{kind: eventPairFinished, pair: pair, passed: passed, failed: failed}
}

type pairState struct {
	spec     loopback.PairSpec
	patterns int
	done     int
	passed   int
	failed   int
	running  bool
	finished bool
}

type model struct {
	events   <-chan event
	pairs    []pairState
	failures []string
	viewport viewport.Model
	ready    bool
	done     bool
	summary  loopback.Summary
	runErr   error
	width    int
	height   int
}

func newModel(tester *loopback.Tester, events <-chan event) model {
	vp := viewport.New(0, 0)
	vp.SetContent("No failures yet")
	pairs := make([]pairState, 0, len(tester.Pairs()))
	for _, spec := range tester.Pairs() {
		pairs = append(pairs, pairState{spec: spec, patterns: tester.PatternCount()})
	}
	return model{events: events, pairs: pairs, viewport: vp}
}

func (m model) Init() tea.Cmd {
	return m.listen()
}

type eventMsg event
type closedMsg struct{}

func (m model) listen() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return closedMsg{}
		}
		return eventMsg(ev)
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "enter":
			if m.done {
				return m, tea.Quit
			}
		case "up", "k":
			m.viewport.ScrollUp(1)
		case "down", "j":
			m.viewport.ScrollDown(1)
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = m.width - listWidth - 5
		m.viewport.Height = m.height - 6
		m.ready = true
	case eventMsg:
		m.apply(event(msg))
		if m.done {
			return m, nil
		}
		return m, m.listen()
	case closedMsg:
		return m, nil
	}
	return m, nil
}

func (m *model) apply(ev event) {
	switch ev.kind {
	case eventPairStarted:
		for i := range m.pairs {
			m.pairs[i].running = m.pairs[i].spec == ev.pair
		}
	case eventCase:
		for i := range m.pairs {
			if m.pairs[i].spec == ev.tc.Pair() {
				m.pairs[i].done++
				if ev.tc.Passed {
					m.pairs[i].passed++
				} else {
					m.pairs[i].failed++
				}
			}
		}
		if !ev.tc.Passed {
			m.failures = append(m.failures, failureLine(ev.tc))
			m.viewport.SetContent(strings.Join(m.failures, "\n"))
			m.viewport.GotoBottom()
		}
	case eventPairFinished:
		for i := range m.pairs {
			if m.pairs[i].spec == ev.pair {
				m.pairs[i].running = false
				m.pairs[i].finished = true
			}
		}
	case eventDone:
		m.done = true
		m.summary = loopback.Summarize(ev.cases)
		m.runErr = ev.err
	}
}

func failureLine(tc loopback.TestCase) string {
	if tc.Err != "" {
		return fmt.Sprintf("%s  0x%02X  %s", tc.Pair(), tc.Pattern, tc.Err)
	}
	return fmt.Sprintf("%s  0x%02X  expected 0x%02X, read 0x%02X",
		tc.Pair(), tc.Pattern, tc.Expected, tc.Actual)
}

const listWidth = 30

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	passStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("34"))
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	activeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	paneStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

func (m model) View() string {
	if !m.ready {
		return "starting..."
	}

	var list strings.Builder
	for _, p := range m.pairs {
		icon, style := "·", mutedStyle
		switch {
		case p.running:
			icon, style = "»", activeStyle
		case p.finished && p.failed == 0:
			icon, style = "✓", passStyle
		case p.finished:
			icon, style = "✗", failStyle
		}
		line := fmt.Sprintf("%s %-18s %2d/%2d", icon, p.spec, p.done, p.patterns)
		list.WriteString(style.Render(line) + "\n")
	}

	left := paneStyle.Width(listWidth).Render(list.String())
	right := paneStyle.Render(m.viewport.View())
	body := lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right)

	status := mutedStyle.Render("running...")
	if m.done {
		if m.summary.Failed > 0 {
			status = failStyle.Render(fmt.Sprintf("FAIL — %d/%d failed — press q to exit",
				m.summary.Failed, m.summary.Total))
		} else {
			status = passStyle.Render(fmt.Sprintf("PASS — %d tests — press q to exit",
				m.summary.Total))
		}
	}

	return titleStyle.Render("loopcheck") + "\n" + body + "\n" + status + "\n"
}
