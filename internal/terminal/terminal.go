// Package terminal provides terminal detection and capabilities.
//
// Capability detection keys off stderr rather than stdout: bosun's own
// chrome is written to stderr so a wrapped command's stdout can be piped
// cleanly.
package terminal

import (
	"os"

	"golang.org/x/term"
)

// Info holds terminal capability information.
type Info struct {
	IsTTY     bool
	NoColor   bool
	Width     int
	ForceFlag bool // Set when --no-color flag is used
}

// Detect returns terminal information for the current environment.
func Detect() *Info {
	stderrFD := int(os.Stderr.Fd())
	isTTY := term.IsTerminal(stderrFD)

	width := 80

	if isTTY {
		if w, _, err := term.GetSize(stderrFD); err == nil {
			width = w
		}
	}

	// Honor the NO_COLOR convention (https://no-color.org/)
	_, noColor := os.LookupEnv("NO_COLOR")

	if os.Getenv("TERM") == "dumb" {
		noColor = true
	}

	return &Info{
		IsTTY:   isTTY,
		NoColor: noColor,
		Width:   width,
	}
}

// ColorEnabled returns true if colored output should be used.
func (t *Info) ColorEnabled() bool {
	if t.ForceFlag {
		return false
	}

	return t.IsTTY && !t.NoColor
}

// SpinnersEnabled returns true if spinners should be used.
func (t *Info) SpinnersEnabled() bool {
	return t.IsTTY && !t.NoColor
}
