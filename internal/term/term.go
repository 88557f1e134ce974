// Package term resolves the color mode and detects terminals.
//
// Color state lives in fatih/color's package-level NoColor switch, which every
// package that prints (logging, display) consults. [Configure] sets it once
// during startup.
package term

import (
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/backmassage/tablebatch/internal/config"
)

// Configure resolves mode and toggles colored output for the whole process.
// Call once during startup (from [logging.NewLogger]).
func Configure(mode config.ColorMode) {
	color.NoColor = !resolve(mode) //nolint:reassign // library global is the switch
}

// Enabled reports whether ANSI colors are currently active.
func Enabled() bool { return !color.NoColor }

// resolve determines whether colors should be enabled based on the configured
// mode, TTY detection, and the NO_COLOR env var (https://no-color.org).
func resolve(mode config.ColorMode) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	default: // ColorAuto
		return IsTerminal(os.Stdout) &&
			os.Getenv("NO_COLOR") == "" &&
			strings.ToLower(os.Getenv("TERM")) != "dumb"
	}
}

// IsTerminal reports whether f is attached to a TTY.
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
