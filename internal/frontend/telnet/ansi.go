// Package telnet serves the table console over Telnet: a TCP acceptor, a
// line reader that strips protocol negotiation, and ANSI styling.
package telnet

import (
	"fmt"
	"regexp"
	"strings"
)

// SGR escape sequences used by the console.
const (
	Reset = "\033[0m"
	Bold  = "\033[1m"
	Dim   = "\033[2m"

	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Blue    = "\033[34m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"
	White   = "\033[37m"

	BrightRed    = "\033[91m"
	BrightGreen  = "\033[92m"
	BrightYellow = "\033[93m"
	BrightCyan   = "\033[96m"
)

// Colorize wraps text in color followed by Reset.
func Colorize(color, text string) string {
	return color + text + Reset
}

// Styled wraps text in every given sequence followed by Reset.
func Styled(text string, codes ...string) string {
	return strings.Join(codes, "") + text + Reset
}

// Colorf is Colorize over a formatted string.
func Colorf(color, format string, args ...any) string {
	return color + fmt.Sprintf(format, args...) + Reset
}

var sgrPattern = regexp.MustCompile("\033\\[[0-9;]*m")

// StripANSI removes SGR sequences, leaving only printable text.
func StripANSI(s string) string {
	return sgrPattern.ReplaceAllString(s, "")
}

// VisibleLen is the printable width of s in bytes once styling is removed.
func VisibleLen(s string) int {
	return len(StripANSI(s))
}

// PadRight pads s with spaces to width printable columns.
func PadRight(s string, width int) string {
	if n := VisibleLen(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}
