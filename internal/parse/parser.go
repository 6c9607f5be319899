package parse

import (
	"regexp"
	"strings"
)

var (
	// CSI and OSC sequences; OSC is terminated by BEL or ST.
	ansiRE    = regexp.MustCompile(`\x1b\[[0-9;?]*[ -/]*[@-~]|\x1b\][^\x07\x1b]*(?:\x07|\x1b\\)|\x1b[@-Z\\-_]`)
	controlRE = regexp.MustCompile(`[\x00-\x08\x0b\x0c\x0e-\x1f\x7f]`)
)

// Line turns one chunk read from a pipe or file into entry text: the line
// terminator is removed and invalid UTF-8 is replaced.
func Line(raw string) string {
	raw = strings.TrimSuffix(raw, "\n")
	raw = strings.TrimSuffix(raw, "\r")
	return strings.ToValidUTF8(raw, "�")
}

// Plain is the display form of entry text: escape sequences are dropped and
// a carriage return keeps only what was drawn after it, the way a terminal
// would show progress-bar style output.
func Plain(text string) string {
	text = ansiRE.ReplaceAllString(text, "")
	if idx := strings.LastIndex(text, "\r"); idx != -1 {
		text = text[idx+1:]
	}
	text = strings.ReplaceAll(text, "\t", "    ")
	return controlRE.ReplaceAllString(text, "")
}

// Raw keeps colour escapes but still expands tabs and drops carriage
// returns so the row width stays predictable.
func Raw(text string) string {
	if idx := strings.LastIndex(text, "\r"); idx != -1 {
		text = text[idx+1:]
	}
	return strings.ReplaceAll(text, "\t", "    ")
}
