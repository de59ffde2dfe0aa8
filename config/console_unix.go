//go:build !windows

package config

import (
	"os"

	"golang.org/x/term"
)

// EnableColorOutput checks if colorized log output is possible on stream.
func EnableColorOutput(stream *os.File) bool {
	return colorAllowed() && term.IsTerminal(int(stream.Fd()))
}
