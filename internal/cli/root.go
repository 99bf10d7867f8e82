package cli

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/wesleyorama2/chartperf/internal/output"
)

var version = "0.1.0"

// RootCmd represents the base command when called without any subcommands
var RootCmd = NewRootCmd()

// NewRootCmd builds the command tree. Each call returns independent flag
// state, which keeps tests isolated from one another.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "chartperf [flags]",
		Short:   "Render micro-benchmark for a 3D surface chart",
		Version: version,
		Long: `chartperf renders a 3D surface chart over and over, moving the camera a
little on every iteration, and reports how long the measured iterations took.

The first --warmup iterations are rendered but not timed. The start time is
taken when the last warm-up render completes and the end time when the last
measured render completes. Both are printed as epoch milliseconds:

  start : 1700000000123
  end : 1700000004567

Examples:
  chartperf
  chartperf --headless --warmup 100 --count 1000
  chartperf --config bench.yaml --output reports/run1`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runBenchmark,
	}

	flags := cmd.Flags()
	flags.StringP("config", "c", "", "Benchmark configuration file (YAML, JSON or TOML)")
	flags.Int("warmup", 0, "Number of untimed warm-up iterations")
	flags.Int("count", 0, "Number of timed iterations")
	flags.Int("width", 0, "Canvas width in pixels")
	flags.Int("height", 0, "Canvas height in pixels")
	flags.Int("samples", 0, "Surface samples per axis")
	flags.Bool("outlines", false, "Draw face outlines")
	flags.Bool("headless", false, "Render off-screen on a task queue instead of in a window")
	flags.Duration("timeout", 0, "Abort the run after this long (0 disables)")
	flags.Bool("json", false, "Write the result as JSON")
	flags.Bool("html", false, "Write an HTML report")
	flags.StringP("output", "o", "", "Report path; .json or .html selects the format, no extension writes both")
	flags.String("cpuprofile", "", "Write a CPU profile of the measured iterations to this file")
	flags.Int("profile-top", 10, "Number of functions listed from the CPU profile")
	flags.BoolP("quiet", "q", false, "Only print the timing lines and the pass/fail status")
	flags.BoolP("verbose", "v", false, "Print progress while rendering and extra summary detail")

	cmd.AddCommand(newValidateCmd())
	return cmd
}

// Execute runs the root command and prints any error to stderr.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() error {
	if err := RootCmd.Execute(); err != nil {
		printError(os.Stderr, err)
		return err
	}
	return nil
}

func printError(w io.Writer, err error) {
	output.NewConsoleOutput(output.ConsoleOutputConfig{Writer: w}).PrintError(err)
}
