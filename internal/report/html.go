// Package report writes benchmark results to JSON and HTML files.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"time"

	"github.com/wesleyorama2/chartperf/internal/engine"
	"github.com/wesleyorama2/chartperf/internal/metrics"
)

// ReportData contains all data needed to render the HTML report.
type ReportData struct {
	*engine.TestResult
	BucketsJSON template.JS
}

// BucketPoint is one frame bucket as plotted in the report. Durations are in
// microseconds.
type BucketPoint struct {
	Index  int     `json:"index"`
	Frames int     `json:"frames"`
	FPS    float64 `json:"fps"`
	Mean   int64   `json:"mean"`
	P95    int64   `json:"p95"`
	Max    int64   `json:"max"`
}

// WriteJSON writes result as indented JSON to path.
func WriteJSON(result *engine.TestResult, path string) error {
	if result == nil {
		return fmt.Errorf("result cannot be nil")
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write JSON file: %w", err)
	}
	return nil
}

// GenerateHTML generates an HTML report from test results and writes it to a file.
func GenerateHTML(result *engine.TestResult, outputPath string) error {
	html, err := GenerateHTMLString(result)
	if err != nil {
		return fmt.Errorf("failed to generate HTML: %w", err)
	}

	if err := os.WriteFile(outputPath, []byte(html), 0644); err != nil {
		return fmt.Errorf("failed to write HTML file: %w", err)
	}
	return nil
}

// GenerateHTMLString generates an HTML report from test results and returns it as a string.
func GenerateHTMLString(result *engine.TestResult) (string, error) {
	if result == nil {
		return "", fmt.Errorf("result cannot be nil")
	}

	tmpl, err := template.New("report").Funcs(templateFuncs()).Parse(htmlTemplate)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	bucketsJSON, err := convertBucketsJSON(result.Buckets)
	if err != nil {
		return "", fmt.Errorf("failed to convert frame buckets: %w", err)
	}

	data := ReportData{
		TestResult:  result,
		BucketsJSON: template.JS(bucketsJSON),
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

func convertBucketsJSON(buckets []*metrics.FrameBucket) (string, error) {
	if len(buckets) == 0 {
		return "[]", nil
	}

	points := make([]BucketPoint, len(buckets))
	for i, b := range buckets {
		points[i] = BucketPoint{
			Index:  b.Index,
			Frames: b.Frames,
			FPS:    b.FPS,
			Mean:   b.Mean.Microseconds(),
			P95:    b.P95.Microseconds(),
			Max:    b.Max.Microseconds(),
		}
	}

	data, err := json.Marshal(points)
	if err != nil {
		return "[]", err
	}
	return string(data), nil
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"formatDuration":  formatDuration,
		"formatFrameTime": formatFrameTime,
		"formatTime":      formatTime,
		"millis":          func(t time.Time) int64 { return t.UnixMilli() },
	}
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
	return fmt.Sprintf("%dm %02ds", int(d.Minutes()), int(d.Seconds())%60)
}

func formatFrameTime(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	return fmt.Sprintf("%.2fms", float64(d.Microseconds())/1000)
}

func formatTime(t time.Time) string {
	return t.Format("2006-01-02 15:04:05.000")
}
