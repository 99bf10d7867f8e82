// Package output provides console output for render benchmarks.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/wesleyorama2/chartperf/internal/bench"
	"github.com/wesleyorama2/chartperf/internal/engine"
	"github.com/wesleyorama2/chartperf/internal/profiling"
)

const (
	ruleChar  = "━"
	ruleWidth = 56

	progressFilled = "█"
	progressEmpty  = "░"
)

// ConsoleOutput writes benchmark progress and results.
type ConsoleOutput struct {
	writer    io.Writer
	useColors bool
	quiet     bool
	verbose   bool
	width     int
	scheme    *ColorScheme

	mu sync.Mutex
}

// ConsoleOutputConfig contains configuration for ConsoleOutput.
type ConsoleOutputConfig struct {
	Writer      io.Writer
	Quiet       bool
	Verbose     bool
	ForceColors bool
}

// NewConsoleOutput creates a new console output handler.
func NewConsoleOutput(config ConsoleOutputConfig) *ConsoleOutput {
	if config.Writer == nil {
		config.Writer = os.Stdout
	}

	useColors := config.ForceColors || (isTerminal(config.Writer) && supportsColors())
	scheme := DefaultColorScheme()
	if !useColors {
		scheme = NoColorScheme()
	} else {
		scheme.enable()
	}

	return &ConsoleOutput{
		writer:    config.Writer,
		useColors: useColors,
		quiet:     config.Quiet,
		verbose:   config.Verbose,
		width:     lineWidth(config.Writer),
		scheme:    scheme,
	}
}

func isTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return checkIsTerminal(f)
	}
	return false
}

func supportsColors() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("FORCE_COLOR") != "" {
		return true
	}
	term := os.Getenv("TERM")
	return term != "" && term != "dumb"
}

// UseColors reports whether output is colorized.
func (c *ConsoleOutput) UseColors() bool {
	return c.useColors
}

// PrintHeader prints the benchmark header.
func (c *ConsoleOutput) PrintHeader(name string, cfg bench.Config, width, height int) {
	if c.quiet {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	line := strings.Repeat(ruleChar, c.width)
	c.writeln(c.scheme.Rule.Sprint(line))
	c.writeln(c.scheme.Title.Sprintf("%s - Running", name))
	c.writeln(c.scheme.Rule.Sprint(line))
	c.writeln(fmt.Sprintf("Iterations:    %s warm-up, %s measured",
		c.scheme.Value.Sprint(cfg.Warmup), c.scheme.Value.Sprint(cfg.Count)))
	c.writeln(fmt.Sprintf("Canvas:        %s", c.scheme.Value.Sprintf("%dx%d", width, height)))
	c.writeln("")
}

// PrintBegin announces the warm-up phase. It is printed even in quiet mode.
func (c *ConsoleOutput) PrintBegin() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writeln("begin warmup...")
}

// PrintTiming prints the start and end of the measured phase as epoch
// milliseconds. The two lines are never colorized so they stay machine
// readable.
func (c *ConsoleOutput) PrintTiming(r bench.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.writer, "start : %d\nend : %d\n", r.StartMillis(), r.EndMillis())
}

// PrintProgress prints a one-line progress update in verbose mode.
func (c *ConsoleOutput) PrintProgress(progress float64, state bench.State) {
	if !c.verbose || c.quiet {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.writeln(fmt.Sprintf("%s %s %s",
		c.scheme.Success.Sprint(renderProgressBar(progress, 30)),
		c.scheme.Value.Sprintf("%3.0f%%", progress*100),
		c.scheme.Phase.Sprint(state.String())))
}

// PrintSummary prints the final benchmark summary.
func (c *ConsoleOutput) PrintSummary(result *engine.TestResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.quiet {
		if result.Passed {
			c.writeln(c.scheme.Success.Sprint("PASSED"))
		} else {
			c.writeln(c.scheme.Error.Sprint("FAILED"))
		}
		return
	}

	line := strings.Repeat(ruleChar, c.width)
	status := c.scheme.Success.Sprint("Completed " + iconSuccess)
	if !result.Passed {
		status = c.scheme.Error.Sprint("Failed " + iconError)
	}

	c.writeln("")
	c.writeln(c.scheme.Rule.Sprint(line))
	c.writeln(fmt.Sprintf("%s - %s", c.scheme.Title.Sprint(result.Name), status))
	c.writeln(c.scheme.Rule.Sprint(line))
	c.writeln("")

	c.writeln(fmt.Sprintf("Elapsed:       %s", c.scheme.Value.Sprint(formatDuration(result.Elapsed))))
	c.writeln(fmt.Sprintf("Wall Time:     %s", c.scheme.Value.Sprint(formatDuration(result.Duration))))

	if m := result.Metrics; m != nil {
		c.writeln(fmt.Sprintf("Frames:        %s warm-up, %s measured",
			c.scheme.Value.Sprint(formatNumber(m.WarmupFrames)),
			c.scheme.Value.Sprint(formatNumber(m.MeasuredFrames))))
		c.writeln(fmt.Sprintf("FPS:           %s", c.scheme.Value.Sprintf("%.1f", m.FPS)))
		c.writeln("")

		c.writeln(c.scheme.Title.Sprint("Frame Time Distribution:"))
		c.writeln(fmt.Sprintf("  Min:       %s", formatDurationShort(m.FrameTime.Min)))
		c.writeln(fmt.Sprintf("  Mean:      %s", formatDurationShort(m.FrameTime.Mean)))
		c.writeln(fmt.Sprintf("  P50:       %s", formatDurationShort(m.FrameTime.P50)))
		c.writeln(fmt.Sprintf("  P90:       %s", formatDurationShort(m.FrameTime.P90)))
		c.writeln(fmt.Sprintf("  P95:       %s", formatDurationShort(m.FrameTime.P95)))
		c.writeln(fmt.Sprintf("  P99:       %s", formatDurationShort(m.FrameTime.P99)))
		c.writeln(fmt.Sprintf("  Max:       %s", formatDurationShort(m.FrameTime.Max)))
	}
	c.writeln("")

	if c.verbose && len(result.PhaseHistory) > 0 {
		c.writeln(c.scheme.Title.Sprint("Phases:"))
		for _, p := range result.PhaseHistory {
			c.writeln(fmt.Sprintf("  %-8s %s after %s frames",
				c.scheme.Phase.Sprint(string(p.Phase)),
				p.Timestamp.Format(time.RFC3339Nano),
				formatNumber(p.Frames)))
		}
		c.writeln("")
	}

	if len(result.Thresholds) > 0 {
		c.writeln(c.scheme.Title.Sprint("Thresholds:"))
		for _, t := range result.Thresholds {
			mark := c.scheme.Success.Sprint(iconSuccess)
			if !t.Passed {
				mark = c.scheme.Error.Sprint(iconError)
			}
			c.writeln(fmt.Sprintf("  %s %s %s (actual: %s)", mark, t.Metric, t.Expression, t.Value))
			if !t.Passed && t.Message != "" && c.verbose {
				c.writeln("      " + c.scheme.Error.Sprint(t.Message))
			}
		}
		c.writeln("")
	}
}

// PrintProfile prints the hottest functions of the measured phase.
func (c *ConsoleOutput) PrintProfile(path string, s *profiling.Summary) {
	if c.quiet || s == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.writeln(c.scheme.Title.Sprintf("CPU Profile (%s sampled, %s):", formatDurationShort(s.Total), path))
	for _, f := range s.Functions {
		c.writeln(fmt.Sprintf("  %6.2f%%  %10s  %10s  %s",
			f.Percent, formatDurationShort(f.Flat), formatDurationShort(f.Cum), c.scheme.Phase.Sprint(f.Name)))
	}
	c.writeln("")
}

// PrintError prints an error line.
func (c *ConsoleOutput) PrintError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writeln(fmt.Sprintf("%s %v", c.scheme.Error.Sprint(iconError), err))
}

// PrintInfo prints an informational line unless quiet.
func (c *ConsoleOutput) PrintInfo(format string, args ...interface{}) {
	if c.quiet {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writeln(fmt.Sprintf("%s %s", c.scheme.Info.Sprint(iconInfo), fmt.Sprintf(format, args...)))
}

func (c *ConsoleOutput) writeln(s string) {
	fmt.Fprintln(c.writer, s)
}

func renderProgressBar(progress float64, width int) string {
	if progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}
	filled := int(progress * float64(width))
	return "[" + strings.Repeat(progressFilled, filled) + strings.Repeat(progressEmpty, width-filled) + "]"
}

// formatDuration formats a duration in a human-readable format.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%dm %02ds", m, s)
}

// formatDurationShort formats a frame time.
func formatDurationShort(d time.Duration) string {
	if d < time.Microsecond {
		return "0µs"
	}
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	if d < time.Second {
		return fmt.Sprintf("%.2fms", float64(d.Microseconds())/1000)
	}
	return fmt.Sprintf("%.2fs", d.Seconds())
}

// formatNumber formats a number with thousands separators.
func formatNumber(n int64) string {
	if n < 0 {
		return "-" + formatNumber(-n)
	}
	str := fmt.Sprintf("%d", n)
	if len(str) <= 3 {
		return str
	}

	var b strings.Builder
	offset := len(str) % 3
	if offset > 0 {
		b.WriteString(str[:offset])
	}
	for i := offset; i < len(str); i += 3 {
		if b.Len() > 0 {
			b.WriteString(",")
		}
		b.WriteString(str[i : i+3])
	}
	return b.String()
}
