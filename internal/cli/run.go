package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/wesleyorama2/chartperf/internal/bench"
	"github.com/wesleyorama2/chartperf/internal/config"
	"github.com/wesleyorama2/chartperf/internal/engine"
	"github.com/wesleyorama2/chartperf/internal/output"
	"github.com/wesleyorama2/chartperf/internal/profiling"
	"github.com/wesleyorama2/chartperf/internal/report"
	"github.com/wesleyorama2/chartperf/internal/window"
)

var errThresholdsFailed = errors.New("one or more thresholds failed")

// runBenchmark loads the configuration, runs the benchmark and reports the
// result. Positional arguments are accepted and ignored.
func runBenchmark(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	quiet, _ := cmd.Flags().GetBool("quiet")
	verbose, _ := cmd.Flags().GetBool("verbose")
	stdout := cmd.OutOrStdout()

	console := output.NewConsoleOutput(output.ConsoleOutputConfig{
		Writer:  stdout,
		Quiet:   quiet,
		Verbose: verbose,
	})

	var opts []engine.Option
	if verbose && !quiet {
		opts = append(opts, engine.WithObserver(progressObserver(console, cfg.Warmup+cfg.Count)))
	}

	var profiler *profiling.CPUProfiler
	if path, _ := cmd.Flags().GetString("cpuprofile"); path != "" {
		profiler = profiling.NewCPUProfiler(path, cfg.Warmup)
		opts = append(opts, engine.WithObserver(profiler))
	}

	eng, err := engine.NewEngine(cfg, opts...)
	if err != nil {
		return err
	}

	console.PrintHeader(cfg.Name, bench.Config{Warmup: cfg.Warmup, Count: cfg.Count}, cfg.Window.Width, cfg.Window.Height)
	console.PrintBegin()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	result, err := run(ctx, eng, cfg)
	if profiler != nil {
		if perr := profiler.Close(); perr != nil && err == nil {
			err = perr
		}
	}
	if err != nil {
		return fmt.Errorf("benchmark failed: %w", err)
	}

	console.PrintTiming(result.Timing)
	console.PrintSummary(result)

	if profiler != nil {
		top, _ := cmd.Flags().GetInt("profile-top")
		summary, err := profiling.SummarizeFile(profiler.Path(), top)
		if err != nil {
			return fmt.Errorf("failed to read CPU profile: %w", err)
		}
		console.PrintProfile(profiler.Path(), summary)
	}

	if err := writeReports(cmd, stdout, console, result); err != nil {
		return err
	}

	if !result.Passed {
		return errThresholdsFailed
	}
	return nil
}

func run(ctx context.Context, eng *engine.Engine, cfg *config.BenchConfig) (*engine.TestResult, error) {
	if cfg.Window.Headless {
		return eng.Run(ctx)
	}
	if err := window.Run(ctx, cfg.Name, cfg.Window, eng); err != nil {
		return nil, err
	}
	return eng.Finish()
}

// loadConfig reads --config, or starts from the defaults, and applies every
// flag the user set explicitly.
func loadConfig(cmd *cobra.Command) (*config.BenchConfig, error) {
	flags := cmd.Flags()

	cfg := config.Default()
	if path, _ := flags.GetString("config"); path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return nil, fmt.Errorf("error loading config: %w", err)
		}
		cfg = loaded
	}

	if flags.Changed("warmup") {
		cfg.Warmup, _ = flags.GetInt("warmup")
	}
	if flags.Changed("count") {
		cfg.Count, _ = flags.GetInt("count")
	}
	if flags.Changed("width") {
		cfg.Window.Width, _ = flags.GetInt("width")
	}
	if flags.Changed("height") {
		cfg.Window.Height, _ = flags.GetInt("height")
	}
	if flags.Changed("samples") {
		cfg.Chart.Samples, _ = flags.GetInt("samples")
	}
	if flags.Changed("outlines") {
		cfg.Chart.DrawFaceOutlines, _ = flags.GetBool("outlines")
	}
	if flags.Changed("headless") {
		cfg.Window.Headless, _ = flags.GetBool("headless")
	}
	if flags.Changed("timeout") {
		timeout, _ := flags.GetDuration("timeout")
		cfg.Timeout = config.Duration(timeout)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// progressObserver prints a progress line roughly every tenth of the run.
func progressObserver(console *output.ConsoleOutput, total int) bench.Observer {
	every := total / 10
	if every < 1 {
		every = 1
	}
	return bench.ObserverFunc(func(i int, state bench.State, _ time.Duration) {
		if (i+1)%every == 0 || state == bench.Done {
			console.PrintProgress(float64(i+1)/float64(total), state)
		}
	})
}

// writeReports writes the JSON and HTML reports selected by --json, --html
// and --output. A .json or .html output path picks the format.
func writeReports(cmd *cobra.Command, stdout io.Writer, console *output.ConsoleOutput, result *engine.TestResult) error {
	jsonFlag, _ := cmd.Flags().GetBool("json")
	htmlFlag, _ := cmd.Flags().GetBool("html")
	outputPath, _ := cmd.Flags().GetString("output")

	// The output extension wins over --json and --html.
	ext := strings.ToLower(filepath.Ext(outputPath))
	outputIsJSON := ext == ".json" || (jsonFlag && ext != ".html")
	outputIsHTML := ext == ".html" || (htmlFlag && ext != ".json")

	switch {
	case outputIsJSON && outputPath == "":
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	case outputIsJSON:
		return writeJSONReport(console, result, outputPath)
	case outputIsHTML:
		if outputPath == "" {
			outputPath = defaultReportPath(result.Name, time.Now())
		}
		return writeHTMLReport(console, result, outputPath)
	case outputPath != "":
		var g errgroup.Group
		g.Go(func() error { return writeHTMLReport(console, result, outputPath+".html") })
		g.Go(func() error { return writeJSONReport(console, result, outputPath+".json") })
		return g.Wait()
	}
	return nil
}

func writeJSONReport(console *output.ConsoleOutput, result *engine.TestResult, path string) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	if err := report.WriteJSON(result, path); err != nil {
		return err
	}
	console.PrintInfo("JSON report: %s", path)
	return nil
}

func writeHTMLReport(console *output.ConsoleOutput, result *engine.TestResult, path string) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	if err := report.GenerateHTML(result, path); err != nil {
		return fmt.Errorf("failed to generate HTML report: %w", err)
	}
	console.PrintInfo("HTML report: %s", path)
	return nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return nil
}

// defaultReportPath creates a report file name from the benchmark name.
func defaultReportPath(name string, now time.Time) string {
	safe := strings.ToLower(strings.NewReplacer(" ", "-", "/", "-").Replace(name))
	return fmt.Sprintf("chartperf-%s-%s.html", safe, now.Format("20060102-150405"))
}
