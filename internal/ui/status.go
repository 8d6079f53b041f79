package ui

import (
	"fmt"
	"os"
)

// VerbWidth is the fixed width for right-aligned action verbs in status
// lines.
const VerbWidth = 10

// Verbosity levels.
const (
	VerbNormal  = 0 // default: status + results + errors
	VerbVerbose = 1 // --verbose: above + per-class decode detail
)

// Verbosity and QuietMode control what gets printed. Set from CLI
// options before the pipeline runs.
var (
	Verbosity int
	QuietMode bool
)

// SetVerbosity sets the package verbosity level.
func SetVerbosity(v int) {
	Verbosity = v
}

// SetQuietMode suppresses all status output when true.
func SetQuietMode(q bool) {
	QuietMode = q
}

func statusLine(verb, detail string) string {
	styled := AccentStyle.Render(fmt.Sprintf("%*s", VerbWidth, verb))
	return fmt.Sprintf("%s  %s", styled, detail)
}

// Status prints a status line with a right-aligned verb to stderr.
// Suppressed in quiet mode.
func Status(verb, detail string) {
	if QuietMode {
		return
	}
	fmt.Fprintln(os.Stderr, statusLine(verb, detail))
}

// Detail prints a status line only at verbose level.
func Detail(verb, detail string) {
	if QuietMode || Verbosity < VerbVerbose {
		return
	}
	fmt.Fprintln(os.Stderr, statusLine(verb, Dim(detail)))
}

// WarningStatus prints a warning-colored line to stderr. Shown even in
// quiet mode.
func WarningStatus(verb, detail string) {
	styled := WarningStyle.Render(fmt.Sprintf("%*s", VerbWidth, verb))
	fmt.Fprintf(os.Stderr, "%s  %s\n", styled, detail)
}

// ErrorStatus prints an error-colored line to stderr. Shown even in
// quiet mode.
func ErrorStatus(verb, detail string) {
	styled := ErrorStyle.Render(fmt.Sprintf("%*s", VerbWidth, verb))
	fmt.Fprintf(os.Stderr, "%s  %s\n", styled, detail)
}

// Result writes scriptable output to stdout. Always prints.
func Result(s string) {
	fmt.Fprintln(os.Stdout, s)
}
