package ui

import (
	"os"

	"github.com/charmbracelet/x/term"
)

const (
	// DefaultTermWidth is the fallback width when detection fails.
	DefaultTermWidth = 120

	// MaxReportWidth caps the wrap width for rendered reports. The
	// generated reports are prose and narrow tables; wrapping them to a
	// very wide terminal makes them hard to scan.
	MaxReportWidth = 100
)

// DisplayContext captures how report output should be rendered: styled and
// wrapped on a terminal, plain when piped.
type DisplayContext struct {
	TermWidth int
	IsTTY     bool
}

// NewDisplayContext detects whether stdout is a terminal and how wide it is.
func NewDisplayContext() *DisplayContext {
	fd := os.Stdout.Fd()
	isTTY := term.IsTerminal(fd)

	width := DefaultTermWidth
	if isTTY {
		if w, _, err := term.GetSize(fd); err == nil && w > 0 {
			width = w
		}
	}

	return &DisplayContext{TermWidth: width, IsTTY: isTTY}
}

// RenderWidth returns the wrap width for markdown rendering, capped at
// MaxReportWidth.
func (d *DisplayContext) RenderWidth() int {
	if d.TermWidth > MaxReportWidth {
		return MaxReportWidth
	}
	return d.TermWidth
}
