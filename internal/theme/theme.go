// Package theme provides the Lip Gloss color palette and reusable styles
// for the Sightline console. It is a leaf package with no internal imports
// to avoid import cycles.
package theme

import "github.com/charmbracelet/lipgloss"

// Session status colors.
var (
	ColorActive  = lipgloss.Color("#22c55e") // green-500
	ColorStopped = lipgloss.Color("#9ca3af") // gray-400
)

// Alert priority colors: border and background tint.
var (
	ColorCritical      = lipgloss.Color("#ef4444")
	ColorCriticalBg    = lipgloss.Color("#450a0a")
	ColorImportant     = lipgloss.Color("#eab308")
	ColorImportantBg   = lipgloss.Color("#422006")
	ColorInformational = lipgloss.Color("#3b82f6")
	ColorInfoBg        = lipgloss.Color("#172554")
	ColorOther         = lipgloss.Color("#6b7280")
	ColorOtherBg       = lipgloss.Color("#1f2937")
)

// Wake-word banner colors.
var (
	ColorWakeWord   = lipgloss.Color("#a855f7")
	ColorWakeWordBg = lipgloss.Color("#2e1065")
)

// UI chrome colors.
var (
	ColorBorder  = lipgloss.Color("#4b5563")
	ColorDimmed  = lipgloss.Color("#6b7280")
	ColorBright  = lipgloss.Color("#f9fafb")
	ColorBg      = lipgloss.Color("#111827")
	ColorHealthy = lipgloss.Color("#22c55e")
	ColorWarning = lipgloss.Color("#d97706")
	ColorDanger  = lipgloss.Color("#dc2626")
	ColorInfo    = lipgloss.Color("#2563eb")
	ColorAccent  = lipgloss.Color("#7c3aed")
)

// StatusColor returns the status dot color for a session state.
func StatusColor(active bool) lipgloss.Color {
	if active {
		return ColorActive
	}
	return ColorStopped
}

// PriorityColors returns the border and background colors for an alert
// priority. Unknown priorities get the neutral pair.
func PriorityColors(priority string) (border, bg lipgloss.Color) {
	switch priority {
	case "critical":
		return ColorCritical, ColorCriticalBg
	case "important":
		return ColorImportant, ColorImportantBg
	case "informational":
		return ColorInformational, ColorInfoBg
	default:
		return ColorOther, ColorOtherBg
	}
}

// Reusable styles.
var (
	StyleHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorBright)

	StyleDimmed = lipgloss.NewStyle().
			Foreground(ColorDimmed)

	StyleBold = lipgloss.NewStyle().
			Bold(true)

	StyleError = lipgloss.NewStyle().
			Foreground(ColorDanger)

	StyleOverlay = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(1, 2)

	StylePanel = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)
)
