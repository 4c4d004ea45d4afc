// Package clicolor gates ANSI color output for the CLI on whether stdout is
// an interactive terminal.
package clicolor

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

const (
	ansiReset = "\x1b[0m"
	ansiBold  = "\x1b[1m"
	ansiDim   = "\x1b[2m"
	ansiRed   = "\x1b[31m"
	ansiGreen = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiCyan  = "\x1b[36m"
)

// IsTTY reports whether w is an interactive terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// NoColorRequested reports whether the NO_COLOR environment variable is set,
// per the convention most CLIs in the ecosystem honor.
func NoColorRequested() bool {
	_, set := os.LookupEnv("NO_COLOR")
	return set
}

// Printer colorizes text conditionally on the output stream, the NO_COLOR
// environment variable, and NewPrinter's forceDisable argument.
type Printer struct {
	enabled bool
}

// NewPrinter builds a Printer for w. Color is enabled only when w is a TTY
// and neither NO_COLOR nor forceDisable ask for plain output.
func NewPrinter(w io.Writer, forceDisable bool) *Printer {
	enabled := !forceDisable && !NoColorRequested() && IsTTY(w)
	return &Printer{enabled: enabled}
}

func (p *Printer) wrap(code, text string) string {
	if !p.enabled {
		return text
	}
	return code + text + ansiReset
}

// Bold returns text in bold, or unchanged when color is disabled.
func (p *Printer) Bold(text string) string { return p.wrap(ansiBold, text) }

// Dim returns dimmed text, or unchanged when color is disabled.
func (p *Printer) Dim(text string) string { return p.wrap(ansiDim, text) }

// Red returns text colored red, for errors and deletions.
func (p *Printer) Red(text string) string { return p.wrap(ansiRed, text) }

// Green returns text colored green, for additions and success.
func (p *Printer) Green(text string) string { return p.wrap(ansiGreen, text) }

// Yellow returns text colored yellow, for warnings and renames.
func (p *Printer) Yellow(text string) string { return p.wrap(ansiYellow, text) }

// Cyan returns text colored cyan, for highlighted search matches.
func (p *Printer) Cyan(text string) string { return p.wrap(ansiCyan, text) }

// Enabled reports whether this Printer will emit ANSI codes.
func (p *Printer) Enabled() bool { return p.enabled }

// Sprintf formats like fmt.Sprintf with no colorization; a thin
// passthrough so callers can build messages uniformly alongside the color
// helpers above.
func Sprintf(format string, args ...any) string {
	return fmt.Sprintf(format, args...)
}
