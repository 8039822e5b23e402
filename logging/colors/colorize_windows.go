//go:build windows
// +build windows

package colors

import (
	"fmt"
	"os"

	"golang.org/x/sys/windows"
)

var enabled bool

// EnableColor asks the console whether it supports virtual terminal sequences and enables ANSI coloring if so.
func EnableColor() {
	var mode uint32
	handle := windows.Handle(os.Stdout.Fd())
	if err := windows.GetConsoleMode(handle, &mode); err != nil {
		enabled = false
		return
	}

	// Try to switch virtual terminal processing on if it is not already.
	if mode&windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING == 0 {
		err := windows.SetConsoleMode(handle, mode|windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING)
		enabled = err == nil
		return
	}
	enabled = true
}

// DisableColor disables ANSI coloring.
func DisableColor() {
	enabled = false
}

// Colorize returns the string s wrapped in ANSI code c assuming that ANSI is supported on the Windows version
// Source: https://github.com/rs/zerolog/blob/4fff5db29c3403bc26dee9895e12a108aacc0203/console.go
func Colorize(s any, c Color) string {
	if !enabled {
		return fmt.Sprintf("%v", s)
	}
	return fmt.Sprintf("\x1b[%dm%v\x1b[0m", c, s)
}
