//go:build !windows
// +build !windows

package colors

import "fmt"

// enabled describes whether ANSI escape codes are emitted. Unix terminals support them out of the box.
var enabled = true

// EnableColor enables ANSI coloring. Non-windows systems need no kernel calls to support it.
func EnableColor() {
	enabled = true
}

// DisableColor disables ANSI coloring, e.g. when output is piped or --no-color is set.
func DisableColor() {
	enabled = false
}

// Colorize returns the string s wrapped in ANSI code c, or s as-is if coloring is disabled.
// Source: https://github.com/rs/zerolog/blob/4fff5db29c3403bc26dee9895e12a108aacc0203/console.go
func Colorize(s any, c Color) string {
	if !enabled {
		return fmt.Sprintf("%v", s)
	}
	return fmt.Sprintf("\x1b[%dm%v\x1b[0m", c, s)
}
