// loopcheck verifies digital I/O wiring on a 4-port DAQ board by driving
// bit patterns across wired-loopback port pairs and reading them back.
//
// Usage:
//
//	loopcheck                     # real board, device Dev1
//	loopcheck --device Dev2
//	loopcheck --sim               # built-in simulated board
//	loopcheck --format json       # machine-readable results
//
// Output modes (auto-detected):
//
//	terminal: styled live output (default when TTY)
//	plain:    terse text for logs and pipes (default when piped)
//	json:     structured JSON for automation
//
// Exit codes: 0 all tests passed, 1 at least one failure, 2 fatal error
// (device not found, driver not installed, bad usage).
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"golang.org/x/term"

	"github.com/dkoosis/loopcheck/internal/config"
	"github.com/dkoosis/loopcheck/internal/version"
	"github.com/dkoosis/loopcheck/pkg/daq"
	_ "github.com/dkoosis/loopcheck/pkg/daq/nidaqmx"
	_ "github.com/dkoosis/loopcheck/pkg/daq/sim"
	"github.com/dkoosis/loopcheck/pkg/loopback"
	"github.com/dkoosis/loopcheck/pkg/mapper"
	"github.com/dkoosis/loopcheck/pkg/pattern"
	"github.com/dkoosis/loopcheck/pkg/render"
	"github.com/dkoosis/loopcheck/pkg/stream"
	"github.com/dkoosis/loopcheck/pkg/tui"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("loopcheck", flag.ContinueOnError)
	fs.SetOutput(stderr)
	deviceFlag := fs.String("device", config.DefaultDevice, "DAQ device name (\"sim:loop\" selects the simulator)")
	simFlag := fs.Bool("sim", false, "Run against the built-in simulated loopback board")
	formatFlag := fs.String("format", config.DefaultFormat, "Output format: auto, terminal, plain, json")
	themeFlag := fs.String("theme", config.DefaultTheme, "Theme: default, bench, mono")
	tuiFlag := fs.Bool("tui", false, "Full-screen live view (TTY only)")
	settleFlag := fs.Duration("settle", loopback.DefaultSettle, "Wait between write and read")
	noColorFlag := fs.Bool("no-color", false, "Disable colors")
	ciFlag := fs.Bool("ci", false, "CI mode: monochrome, no live footer")
	listFlag := fs.Bool("list-patterns", false, "Print the test pattern sequence and exit")
	versionFlag := fs.Bool("version", false, "Print version and exit")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *versionFlag {
		fmt.Fprintln(stdout, version.String())
		return 0
	}
	if *listFlag {
		for _, p := range loopback.Patterns() {
			fmt.Fprintf(stdout, "0x%02X\n", p)
		}
		return 0
	}

	flags := config.CliFlags{
		Device:  *deviceFlag,
		Format:  *formatFlag,
		Theme:   *themeFlag,
		Settle:  *settleFlag,
		NoColor: *noColorFlag,
		CI:      *ciFlag,
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "device":
			flags.DeviceSet = true
		case "format":
			flags.FormatSet = true
		case "theme":
			flags.ThemeSet = true
		case "settle":
			flags.SettleSet = true
		case "no-color":
			flags.NoColorSet = true
		case "ci":
			flags.CISet = true
		}
	})

	cfg, err := config.Resolve(flags)
	if err != nil {
		fmt.Fprintf(stderr, "loopcheck: %v\n", err)
		return 2
	}

	deviceName := cfg.Device
	if *simFlag {
		deviceName = "sim:loop"
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	dev, err := daq.Open(deviceName)
	if err != nil {
		printFatal(stderr, deviceName, err)
		return 2
	}
	defer dev.Close()

	opts := []loopback.Option{loopback.WithSettle(cfg.Settle)}
	if len(cfg.Pairs) > 0 {
		opts = append(opts, loopback.WithPairs(cfg.Pairs))
	}

	theme := render.ThemeByName(cfg.Theme)
	if cfg.NoColor {
		theme = render.MonoTheme()
	}

	if *tuiFlag && isTTYWriter(stdout) {
		return runTUI(ctx, stderr, dev, opts)
	}

	mode := resolveFormat(cfg.Format, stdout)
	if mode == "terminal" && isTTYWriter(stdout) && !cfg.CI {
		return runLive(ctx, stdout, stderr, dev, deviceName, theme, opts)
	}
	return runBatch(ctx, stdout, stderr, dev, deviceName, mode, theme, opts)
}

// runTUI executes the run inside the full-screen view.
func runTUI(ctx context.Context, stderr io.Writer, dev daq.Device, opts []loopback.Option) int {
	sum, err := tui.Run(ctx, dev, opts...)
	if err != nil {
		fmt.Fprintf(stderr, "loopcheck: %v\n", err)
		return 2
	}
	return exitCode(sum)
}

// runLive streams per-pattern progress to a TTY as the run executes, then
// appends the failure listing when anything failed.
func runLive(ctx context.Context, stdout, stderr io.Writer, dev daq.Device, deviceName string, theme render.Theme, opts []loopback.Option) int {
	width, height := termSize(stdout)
	terminal := render.NewTerminal(theme, width)

	probe := loopback.NewTester(dev, opts...)
	fmt.Fprint(stdout, terminal.Render(banner(deviceName, probe)))

	streamer := stream.New(stdout, width, height, len(probe.Pairs()), styleFor(theme))
	tester := loopback.NewTester(dev, append(opts, loopback.WithSink(streamer))...)

	cases, err := tester.RunAll(ctx)
	sum := loopback.Summarize(cases)
	streamer.Finish(sum)
	if err != nil {
		fmt.Fprintf(stderr, "loopcheck: %v\n", err)
		return 2
	}
	if sum.Failed > 0 {
		fmt.Fprint(stdout, terminal.Render(failureDetail(sum)))
	}
	return exitCode(sum)
}

// runBatch runs everything first, then renders the complete result.
func runBatch(ctx context.Context, stdout, stderr io.Writer, dev daq.Device, deviceName, mode string, theme render.Theme, opts []loopback.Option) int {
	tester := loopback.NewTester(dev, opts...)
	cases, err := tester.RunAll(ctx)
	sum := loopback.Summarize(cases)

	patterns := banner(deviceName, tester)
	patterns = append(patterns, mapper.FromRun(cases, sum)...)
	fmt.Fprint(stdout, selectRenderer(mode, theme, stdout).Render(patterns))

	if err != nil {
		fmt.Fprintf(stderr, "loopcheck: %v\n", err)
		return 2
	}
	return exitCode(sum)
}

func banner(deviceName string, tester *loopback.Tester) []pattern.Pattern {
	return []pattern.Pattern{mapper.Banner(deviceName, tester.Pairs(), tester.PatternCount())}
}

// failureDetail keeps only the failure listing and suspect-line ranking;
// the live stream already showed per-case lines and the tally.
func failureDetail(sum loopback.Summary) []pattern.Pattern {
	var out []pattern.Pattern
	for _, p := range mapper.FromRun(nil, sum) {
		switch p.Type() {
		case pattern.PatternTypePairTable, pattern.PatternTypeLeaderboard:
			out = append(out, p)
		}
	}
	return out
}

func exitCode(sum loopback.Summary) int {
	if sum.Failed > 0 {
		return 1
	}
	return 0
}

// printFatal prints the abort diagnostic with the likely causes, matching
// the failure classes in pkg/daq.
func printFatal(stderr io.Writer, deviceName string, err error) {
	fmt.Fprintf(stderr, "loopcheck: FATAL: %v\n", err)
	switch {
	case errors.Is(err, daq.ErrDriverUnavailable):
		fmt.Fprintln(stderr, "\nPlease ensure the NI-DAQmx driver runtime is installed,")
		fmt.Fprintln(stderr, "or run with --sim to use the simulated board.")
	case errors.Is(err, daq.ErrDeviceNotFound):
		fmt.Fprintf(stderr, "\nDevice %q is not known to the driver. Please ensure:\n", deviceName)
		fmt.Fprintln(stderr, "  1. the device is connected and powered")
		fmt.Fprintln(stderr, "  2. the device name is correct (see NI MAX)")
		fmt.Fprintln(stderr, "  3. the loopback harness is wired: port 0 <-> port 2, port 1 <-> port 3")
	}
}

func selectRenderer(mode string, theme render.Theme, w io.Writer) render.Renderer {
	switch mode {
	case "json":
		return render.NewJSON()
	case "plain":
		return render.NewPlain()
	default:
		width, _ := termSize(w)
		return render.NewTerminal(theme, width)
	}
}

func resolveFormat(format string, w io.Writer) string {
	if format != "auto" {
		return format
	}
	// Auto-detect: TTY = terminal, piped = plain.
	if isTTYWriter(w) {
		return "terminal"
	}
	return "plain"
}

// styleFor maps stream line kinds onto theme styles.
func styleFor(theme render.Theme) stream.StyleFunc {
	return func(kind stream.LineKind, text string) string {
		switch kind {
		case stream.KindPass, stream.KindPairPass:
			return theme.Success.Render(text)
		case stream.KindFail, stream.KindPairFail:
			return theme.Error.Render(text)
		case stream.KindPairHeader:
			return theme.Bold.Render(text)
		case stream.KindDetail, stream.KindSeparator:
			return theme.Muted.Render(text)
		default:
			return text
		}
	}
}

// isTTYWriter reports whether w is a terminal.
func isTTYWriter(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// termSize returns the terminal dimensions for w, defaulting to 80x24.
func termSize(w io.Writer) (width, height int) {
	width, height = 80, 24
	if f, ok := w.(*os.File); ok {
		if tw, th, err := term.GetSize(int(f.Fd())); err == nil {
			if tw > 0 {
				width = tw
			}
			if th > 0 {
				height = th
			}
		}
	}
	return width, height
}
