package output

import (
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Styler colors status text. A disabled Styler returns text unchanged.
type Styler struct {
	ok   *color.Color
	fail *color.Color
	info *color.Color
}

// NewStyler returns a Styler that colors only when enabled is true.
func NewStyler(enabled bool) *Styler {
	s := &Styler{
		ok:   color.New(color.FgGreen),
		fail: color.New(color.FgRed),
		info: color.New(color.FgCyan),
	}
	for _, c := range []*color.Color{s.ok, s.fail, s.info} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return s
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (s *Styler) OK(text string) string   { return s.ok.Sprint(text) }
func (s *Styler) Fail(text string) string { return s.fail.Sprint(text) }
func (s *Styler) Info(text string) string { return s.info.Sprint(text) }
