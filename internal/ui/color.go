// Package ui provides terminal output: styled status lines and an
// in-place extraction progress bar.
package ui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
)

// NoColor disables colored output when true.
var NoColor = false

var (
	AccentStyle  lipgloss.Style
	SuccessStyle lipgloss.Style
	ErrorStyle   lipgloss.Style
	WarningStyle lipgloss.Style
	DimStyle     lipgloss.Style
)

func init() {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		NoColor = true
	}
	initStyles()
}

func initStyles() {
	if NoColor {
		AccentStyle = lipgloss.NewStyle()
		SuccessStyle = lipgloss.NewStyle()
		ErrorStyle = lipgloss.NewStyle()
		WarningStyle = lipgloss.NewStyle()
		DimStyle = lipgloss.NewStyle()
		return
	}

	AccentStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#8a9fc9")) // muted steel blue

	SuccessStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#6b8c6b")) // muted sage green

	ErrorStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#c87070")) // muted coral red

	WarningStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#c9a866")) // muted gold

	DimStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#6a6a74")) // dark grey
}

// SetNoColor enables or disables colored output.
func SetNoColor(noColor bool) {
	NoColor = noColor
	initStyles()
}

// Dim formats text as de-emphasized detail.
func Dim(s string) string {
	return DimStyle.Render(s)
}
