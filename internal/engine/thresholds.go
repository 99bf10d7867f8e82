package engine

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/tidwall/gjson"

	"github.com/wesleyorama2/chartperf/internal/config"
)

// ThresholdResult contains the result of a threshold evaluation.
type ThresholdResult struct {
	Metric     string `json:"metric"`
	Expression string `json:"expression"`
	Passed     bool   `json:"passed"`
	Value      string `json:"value"`
	Message    string `json:"message,omitempty"`
}

// thresholdPaths maps "<group>.<stat>" to a gjson path into the JSON form of
// a TestResult.
var thresholdPaths = map[string]string{
	"frame_time.min":  "metrics.frameTime.min",
	"frame_time.max":  "metrics.frameTime.max",
	"frame_time.avg":  "metrics.frameTime.mean",
	"frame_time.mean": "metrics.frameTime.mean",
	"frame_time.med":  "metrics.frameTime.p50",
	"frame_time.p50":  "metrics.frameTime.p50",
	"frame_time.p90":  "metrics.frameTime.p90",
	"frame_time.p95":  "metrics.frameTime.p95",
	"frame_time.p99":  "metrics.frameTime.p99",
	"fps.value":       "metrics.fps",
	"fps.mean":        "metrics.fps",
	"elapsed.value":   "elapsed",
}

// evaluateThresholds evaluates all configured thresholds against result.
func evaluateThresholds(cfg *config.ThresholdsConfig, result *TestResult) []ThresholdResult {
	if cfg == nil {
		return nil
	}

	doc, err := json.Marshal(result)
	if err != nil {
		return []ThresholdResult{{Metric: "thresholds", Message: fmt.Sprintf("failed to encode result: %v", err)}}
	}

	var results []ThresholdResult
	for _, expr := range cfg.FrameTime {
		results = append(results, evaluateThreshold(doc, "frame_time", expr, true))
	}
	for _, expr := range cfg.FPS {
		results = append(results, evaluateThreshold(doc, "fps", expr, false))
	}
	for _, expr := range cfg.Elapsed {
		results = append(results, evaluateThreshold(doc, "elapsed", expr, true))
	}
	return results
}

// evaluateThreshold evaluates one expression. Duration groups compare in
// nanoseconds, which is how time.Duration is encoded in the result.
func evaluateThreshold(doc []byte, group, expr string, isDuration bool) ThresholdResult {
	result := ThresholdResult{
		Metric:     group,
		Expression: expr,
	}

	stat, op, valueStr, err := config.ParseThresholdExpression(expr)
	if err != nil {
		result.Message = fmt.Sprintf("failed to parse expression: %v", err)
		return result
	}

	path, ok := thresholdPaths[group+"."+stat]
	if !ok {
		result.Message = fmt.Sprintf("unknown %s statistic: %s", group, stat)
		return result
	}

	actual := gjson.GetBytes(doc, path)
	if !actual.Exists() {
		result.Message = fmt.Sprintf("no value recorded for %s", path)
		return result
	}

	var threshold float64
	if isDuration {
		d, err := time.ParseDuration(valueStr)
		if err != nil {
			result.Message = fmt.Sprintf("failed to parse threshold value: %v", err)
			return result
		}
		threshold = float64(d)
		result.Value = time.Duration(actual.Int()).Round(time.Microsecond).String()
	} else {
		threshold, err = strconv.ParseFloat(valueStr, 64)
		if err != nil {
			result.Message = fmt.Sprintf("failed to parse threshold value: %v", err)
			return result
		}
		result.Value = fmt.Sprintf("%.2f", actual.Float())
	}

	result.Passed = compareValues(actual.Float(), op, threshold)
	if !result.Passed {
		result.Message = fmt.Sprintf("%s is %s, threshold: %s %s", stat, result.Value, op, valueStr)
	}
	return result
}

// compareValues compares two values using the given operator.
func compareValues(actual float64, op string, threshold float64) bool {
	switch op {
	case "<":
		return actual < threshold
	case "<=":
		return actual <= threshold
	case ">":
		return actual > threshold
	case ">=":
		return actual >= threshold
	case "==", "=":
		return actual == threshold
	case "!=", "<>":
		return actual != threshold
	default:
		return false
	}
}
