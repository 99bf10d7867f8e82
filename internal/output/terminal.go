package output

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

func checkIsTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// lineWidth returns the width of horizontal rules for w: the default, or the
// terminal width when w is a narrower terminal.
func lineWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok || !checkIsTerminal(f) {
		return ruleWidth
	}
	cols, _, err := term.GetSize(int(f.Fd()))
	if err != nil || cols <= 0 || cols >= ruleWidth {
		return ruleWidth
	}
	return cols
}
