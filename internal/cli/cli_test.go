package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wesleyorama2/chartperf/internal/engine"
)

var quickArgs = []string{"--headless", "--warmup", "2", "--count", "3", "--width", "64", "--height", "48", "--samples", "6"}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestRun_HeadlessPrintsTiming(t *testing.T) {
	out, err := execute(t, append(quickArgs, "positional", "args")...)
	require.NoError(t, err)

	assert.Contains(t, out, "TestPerformance - Running")
	assert.Regexp(t, regexp.MustCompile(`(?s)begin warmup\.\.\.\n.*start : \d+\nend : \d+\n`), out)
	assert.Contains(t, out, "Frame Time Distribution:")
}

func TestRun_QuietOutput(t *testing.T) {
	out, err := execute(t, append(quickArgs, "--quiet")...)
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^begin warmup\.\.\.\nstart : \d+\nend : \d+\nPASSED\n$`), out)
}

func TestRun_EndNotBeforeStart(t *testing.T) {
	out, err := execute(t, append(quickArgs, "--quiet")...)
	require.NoError(t, err)

	var start, end int64
	_, err = fmt.Sscanf(out, "begin warmup...\nstart : %d\nend : %d\n", &start, &end)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, end, start)
}

func TestRun_VerboseProgress(t *testing.T) {
	out, err := execute(t, append(quickArgs, "--verbose")...)
	require.NoError(t, err)
	assert.Contains(t, out, "100%")
	assert.Contains(t, out, "Phases:")
}

func TestRun_InvalidFlags(t *testing.T) {
	_, err := execute(t, "--headless", "--warmup", "0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestRun_ThresholdFailure(t *testing.T) {
	path := writeConfig(t, "bench.yaml", `
thresholds:
  fps:
    - "mean > 1e12"
`)
	out, err := execute(t, append(quickArgs, "--config", path)...)
	assert.True(t, errors.Is(err, errThresholdsFailed), "got %v", err)
	assert.Contains(t, out, "start : ")
	assert.Contains(t, out, "fps mean > 1e12")
}

func TestRun_JSONReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "result.json")
	_, err := execute(t, append(quickArgs, "--quiet", "--output", path)...)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var result engine.TestResult
	require.NoError(t, json.Unmarshal(data, &result))
	assert.Equal(t, 2, result.Timing.Warmup)
	assert.Equal(t, 3, result.Timing.Count)
	assert.Equal(t, int64(3), result.Metrics.MeasuredFrames)
}

func TestRun_JSONToStdout(t *testing.T) {
	out, err := execute(t, append(quickArgs, "--quiet", "--json")...)
	require.NoError(t, err)
	assert.Contains(t, out, `"timing": {`)
}

func TestRun_OutputWithoutExtension(t *testing.T) {
	base := filepath.Join(t.TempDir(), "run1")
	out, err := execute(t, append(quickArgs, "--output", base)...)
	require.NoError(t, err)

	assert.FileExists(t, base+".html")
	assert.FileExists(t, base+".json")
	assert.Contains(t, out, "HTML report: "+base+".html")
}

func TestRun_OutputExtensionWinsOverFlag(t *testing.T) {
	dir := t.TempDir()

	htmlPath := filepath.Join(dir, "r.html")
	_, err := execute(t, append(quickArgs, "--quiet", "--json", "--output", htmlPath)...)
	require.NoError(t, err)
	data, err := os.ReadFile(htmlPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<!DOCTYPE html>")

	jsonPath := filepath.Join(dir, "r.json")
	_, err = execute(t, append(quickArgs, "--quiet", "--html", "--output", jsonPath)...)
	require.NoError(t, err)
	data, err = os.ReadFile(jsonPath)
	require.NoError(t, err)
	assert.True(t, json.Valid(data), "expected JSON in %s", jsonPath)
}

func TestPrintError(t *testing.T) {
	var buf bytes.Buffer
	printError(&buf, errThresholdsFailed)
	assert.Equal(t, "✗ one or more thresholds failed\n", buf.String())
}

func TestRun_CPUProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cpu.pprof")
	out, err := execute(t, append(quickArgs, "--cpuprofile", path, "--profile-top", "3")...)
	require.NoError(t, err)

	assert.FileExists(t, path)
	assert.Contains(t, out, "CPU Profile (")
	assert.Contains(t, out, path)
}

func TestLoadConfig_FlagsOverrideFile(t *testing.T) {
	path := writeConfig(t, "bench.toml", `
name = "from file"
warmup = 50
count = 60

[window]
width = 300
height = 200
`)

	cmd := NewRootCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--config", path, "--count", "7", "--headless", "--timeout", "2s"}))

	cfg, err := loadConfig(cmd)
	require.NoError(t, err)

	assert.Equal(t, "from file", cfg.Name)
	assert.Equal(t, 50, cfg.Warmup, "unset flags keep file values")
	assert.Equal(t, 7, cfg.Count)
	assert.Equal(t, 300, cfg.Window.Width)
	assert.True(t, cfg.Window.Headless)
	assert.Equal(t, 2*time.Second, time.Duration(cfg.Timeout))
}

func TestLoadConfig_Defaults(t *testing.T) {
	cmd := NewRootCmd()
	require.NoError(t, cmd.ParseFlags(nil))

	cfg, err := loadConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, 500, cfg.Warmup)
	assert.Equal(t, 500, cfg.Count)
	assert.False(t, cfg.Window.Headless)
}

func TestLoadConfig_BadFile(t *testing.T) {
	path := writeConfig(t, "bench.yaml", "warmups: 3\n")

	cmd := NewRootCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--config", path}))

	_, err := loadConfig(cmd)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error loading config")
}

func TestValidateCmd(t *testing.T) {
	good := writeConfig(t, "good.yaml", "name: ok\nwarmup: 3\ncount: 4\n")
	out, err := execute(t, "validate", good)
	require.NoError(t, err)
	assert.Contains(t, out, "is valid (ok: 3 warm-up, 4 measured, 768x512)")

	bad := writeConfig(t, "bad.json", `{"count": -1}`)
	_, err = execute(t, "validate", bad)
	assert.Error(t, err)

	_, err = execute(t, "validate")
	assert.Error(t, err)
}

func TestDefaultReportPath(t *testing.T) {
	now := time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC)
	assert.Equal(t, "chartperf-my-bench-a-b-20240305-140709.html", defaultReportPath("My Bench a/b", now))
}
