package output

import (
	"github.com/fatih/color"
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconInfo    = "ℹ"
)

// ColorScheme defines the colors used for different elements in the output
type ColorScheme struct {
	Rule    *color.Color
	Title   *color.Color
	Value   *color.Color
	Phase   *color.Color
	Success *color.Color
	Error   *color.Color
	Info    *color.Color
}

// DefaultColorScheme returns the default color scheme
func DefaultColorScheme() *ColorScheme {
	return &ColorScheme{
		Rule:    color.New(color.FgCyan),
		Title:   color.New(color.Bold),
		Value:   color.New(color.FgCyan),
		Phase:   color.New(color.FgMagenta),
		Success: color.New(color.FgGreen),
		Error:   color.New(color.FgRed),
		Info:    color.New(color.FgBlue),
	}
}

// NoColorScheme returns a color scheme with all colors disabled
func NoColorScheme() *ColorScheme {
	s := DefaultColorScheme()
	for _, c := range s.all() {
		c.DisableColor()
	}
	return s
}

// enable forces colors on regardless of the global color.NoColor, which
// fatih/color derives from stdout alone.
func (s *ColorScheme) enable() {
	for _, c := range s.all() {
		c.EnableColor()
	}
}

func (s *ColorScheme) all() []*color.Color {
	return []*color.Color{s.Rule, s.Title, s.Value, s.Phase, s.Success, s.Error, s.Info}
}
