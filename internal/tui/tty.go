package tui

import (
	"os"

	"golang.org/x/term"
)

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return f != nil && term.IsTerminal(int(f.Fd()))
}

// IsTTY reports whether the selector can run: it reads keys from stdin and
// draws on stderr. Stdout may be redirected, in which case only the selected
// record is written to it.
func IsTTY() bool {
	return IsTerminal(os.Stdin) && IsTerminal(os.Stderr)
}
