package ui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
)

// Adaptive colors, set by initializeColors
var (
	ColorPrimary   lipgloss.Color
	ColorSecondary lipgloss.Color
	ColorAccent    lipgloss.Color

	ColorSuccess lipgloss.Color
	ColorWarning lipgloss.Color
	ColorError   lipgloss.Color

	ColorText      lipgloss.Color
	ColorTextMuted lipgloss.Color
	ColorTextDim   lipgloss.Color
	ColorBorder    lipgloss.Color
)

// Component styles, rebuilt whenever the colors change
var (
	StyleTitle     lipgloss.Style
	StyleMetadata  lipgloss.Style
	StyleMode      lipgloss.Style
	StyleDirty     lipgloss.Style
	StyleSuccess   lipgloss.Style
	StyleTextDim   lipgloss.Style
	StylePreview   lipgloss.Style
	StyleStatusBar lipgloss.Style
)

// initializeColors picks the palette for the terminal background.
// GLAMOUR_STYLE=light or dark forces one.
func initializeColors() {
	switch os.Getenv("GLAMOUR_STYLE") {
	case "light":
		setLightThemeColors()
	case "dark":
		setDarkThemeColors()
	default:
		if lipgloss.HasDarkBackground() {
			setDarkThemeColors()
		} else {
			setLightThemeColors()
		}
	}
	buildStyles()
}

func setDarkThemeColors() {
	ColorPrimary = lipgloss.Color("205")
	ColorSecondary = lipgloss.Color("33")
	ColorAccent = lipgloss.Color("214")

	ColorSuccess = lipgloss.Color("10")
	ColorWarning = lipgloss.Color("11")
	ColorError = lipgloss.Color("9")

	ColorText = lipgloss.Color("252")
	ColorTextMuted = lipgloss.Color("244")
	ColorTextDim = lipgloss.Color("240")
	ColorBorder = lipgloss.Color("238")
}

func setLightThemeColors() {
	ColorPrimary = lipgloss.Color("125")
	ColorSecondary = lipgloss.Color("25")
	ColorAccent = lipgloss.Color("130")

	ColorSuccess = lipgloss.Color("28")
	ColorWarning = lipgloss.Color("136")
	ColorError = lipgloss.Color("124")

	ColorText = lipgloss.Color("235")
	ColorTextMuted = lipgloss.Color("240")
	ColorTextDim = lipgloss.Color("244")
	ColorBorder = lipgloss.Color("250")
}

func buildStyles() {
	StyleTitle = lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Bold(true).
		Padding(0, 1)

	StyleMetadata = lipgloss.NewStyle().
		Foreground(ColorTextDim).
		Padding(0, 1)

	StyleMode = lipgloss.NewStyle().
		Foreground(lipgloss.Color("15")).
		Background(ColorSecondary).
		Bold(true).
		Padding(0, 1)

	StyleDirty = lipgloss.NewStyle().
		Foreground(ColorWarning).
		Bold(true)

	StyleSuccess = lipgloss.NewStyle().
		Foreground(ColorSuccess).
		Bold(true)

	StyleTextDim = lipgloss.NewStyle().
		Foreground(ColorTextDim)

	StylePreview = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder)

	StyleStatusBar = lipgloss.NewStyle().
		Padding(0, 1)
}
