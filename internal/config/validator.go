package config

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/wesleyorama2/chartperf/internal/chart"
)

const (
	maxWindowSize = 8192
	maxSamples    = 512
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors struct {
	Errors []*ValidationError
}

func (e *ValidationErrors) Error() string {
	if len(e.Errors) == 0 {
		return "no validation errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e.Errors)))
	for i, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// Add adds an error to the collection.
func (e *ValidationErrors) Add(field, message string) {
	e.Errors = append(e.Errors, &ValidationError{Field: field, Message: message})
}

// HasErrors returns true if there are any errors.
func (e *ValidationErrors) HasErrors() bool {
	return len(e.Errors) > 0
}

// ThresholdStats lists the statistics each threshold group accepts.
var ThresholdStats = map[string][]string{
	"frame_time": {"min", "max", "avg", "mean", "med", "p50", "p90", "p95", "p99"},
	"fps":        {"value", "mean"},
	"elapsed":    {"value"},
}

// Validate validates the configuration after defaults have been applied.
//
// Returns nil if valid, or a *ValidationErrors containing all problems.
func (c *BenchConfig) Validate() error {
	errs := &ValidationErrors{}

	if c.Warmup < 1 {
		errs.Add("warmup", "warmup must be at least 1")
	}
	if c.Count < 1 {
		errs.Add("count", "count must be at least 1")
	}
	if c.Timeout < 0 {
		errs.Add("timeout", "timeout cannot be negative")
	}

	validateWindow(&c.Window, errs)
	validateChart(&c.Chart, errs)
	validateViewPoint(&c.ViewPoint, errs)

	if c.Thresholds != nil {
		validateThresholds(c.Thresholds, errs)
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}

func validateWindow(w *WindowConfig, errs *ValidationErrors) {
	if w.Width <= 0 || w.Width > maxWindowSize {
		errs.Add("window.width", fmt.Sprintf("width must be between 1 and %d", maxWindowSize))
	}
	if w.Height <= 0 || w.Height > maxWindowSize {
		errs.Add("window.height", fmt.Sprintf("height must be between 1 and %d", maxWindowSize))
	}
}

func validateChart(c *ChartConfig, errs *ValidationErrors) {
	validateRange("chart.xRange", c.XRange, errs)
	validateRange("chart.zRange", c.ZRange, errs)
	validateRange("chart.colorRange", c.ColorRange, errs)

	if d := c.Dimensions; d != nil && (d.Width <= 0 || d.Height <= 0 || d.Depth <= 0) {
		errs.Add("chart.dimensions", "width, height and depth must be positive")
	}

	if c.Samples < 1 || c.Samples > maxSamples {
		errs.Add("chart.samples", fmt.Sprintf("samples must be between 1 and %d", maxSamples))
	}

	if _, err := chart.ParseHexColor(c.LowColor); err != nil {
		errs.Add("chart.lowColor", err.Error())
	}
	if _, err := chart.ParseHexColor(c.HighColor); err != nil {
		errs.Add("chart.highColor", err.Error())
	}
}

func validateRange(field string, r *RangeConfig, errs *ValidationErrors) {
	if r != nil && r.Min >= r.Max {
		errs.Add(field, fmt.Sprintf("min (%g) must be less than max (%g)", r.Min, r.Max))
	}
}

func validateViewPoint(vp *ViewPointConfig, errs *ValidationErrors) {
	if vp.Distance <= 0 {
		errs.Add("viewPoint.distance", "distance must be positive")
	}
}

func validateThresholds(t *ThresholdsConfig, errs *ValidationErrors) {
	groups := map[string][]string{
		"frame_time": t.FrameTime,
		"fps":        t.FPS,
		"elapsed":    t.Elapsed,
	}
	for group, exprs := range groups {
		for i, expr := range exprs {
			if err := validateThresholdExpression(group, expr); err != nil {
				errs.Add(fmt.Sprintf("thresholds.%s[%d]", group, i), err.Error())
			}
		}
	}
}

func validateThresholdExpression(group, expr string) error {
	stat, op, value, err := ParseThresholdExpression(expr)
	if err != nil {
		return err
	}

	if !validOperators[op] {
		return fmt.Errorf("invalid operator: %s", op)
	}

	known := false
	for _, s := range ThresholdStats[group] {
		if s == stat {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("unknown %s statistic: %s", group, stat)
	}

	switch group {
	case "frame_time", "elapsed":
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid duration value %q: %w", value, err)
		}
	default:
		if _, err := strconv.ParseFloat(value, 64); err != nil {
			return fmt.Errorf("invalid numeric value %q: %w", value, err)
		}
	}
	return nil
}

var (
	thresholdRe    = regexp.MustCompile(`^(\w+)\s*([<>=!]+)\s*(.+)$`)
	validOperators = map[string]bool{
		"<": true, "<=": true, ">": true, ">=": true, "==": true, "=": true, "!=": true, "<>": true,
	}
)

// ParseThresholdExpression splits an expression like "p95 < 20ms" into its
// statistic, operator and value.
func ParseThresholdExpression(expr string) (stat, op, value string, err error) {
	expr = strings.TrimSpace(expr)

	matches := thresholdRe.FindStringSubmatch(expr)
	if len(matches) != 4 {
		return "", "", "", fmt.Errorf("invalid expression format: %s", expr)
	}

	return matches[1], matches[2], strings.TrimSpace(matches[3]), nil
}
