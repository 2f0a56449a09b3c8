package tui

import "github.com/charmbracelet/lipgloss"

// ────────────────────────────────────────────────────────────
// Color Palette: GitHub Dark aesthetic
// ────────────────────────────────────────────────────────────
//
// All colors are defined here. No ad-hoc color literals anywhere.

var (
	// Base
	colorBgSurface = lipgloss.Color("#1c2128")

	// Text
	colorText      = lipgloss.Color("#e6edf3")
	colorTextDim   = lipgloss.Color("#8b949e")
	colorTextMuted = lipgloss.Color("#484f58")

	// Accents
	colorBlue   = lipgloss.Color("#58a6ff")
	colorGreen  = lipgloss.Color("#3fb950")
	colorRed    = lipgloss.Color("#f85149")
	colorPurple = lipgloss.Color("#bc8cff")

	// Structural
	colorDivider = lipgloss.Color("#30363d")
)

// ────────────────────────────────────────────────────────────
// Component Styles
// ────────────────────────────────────────────────────────────

// Header bar
var (
	headerBarStyle = lipgloss.NewStyle().
			Background(colorBgSurface).
			Foreground(colorText).
			Padding(0, 1)

	headerBrandStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorBlue)

	headerSepStyle = lipgloss.NewStyle().
			Foreground(colorTextMuted)

	headerMetaStyle = lipgloss.NewStyle().
			Foreground(colorTextDim)
)

// Progress view
var (
	spinnerStyle = lipgloss.NewStyle().
			Foreground(colorPurple)

	progressTextStyle = lipgloss.NewStyle().
				Foreground(colorText)

	elapsedStyle = lipgloss.NewStyle().
			Foreground(colorTextMuted)
)

// Tip view
var (
	tipIconStyle = lipgloss.NewStyle().
			Foreground(colorRed)

	tipTextStyle = lipgloss.NewStyle().
			Foreground(colorText).
			Bold(true)

	tipRetryStyle = lipgloss.NewStyle().
			Foreground(colorTextDim)
)

// View transition
var (
	fadingStyle = lipgloss.NewStyle().
		Faint(true)
)

// Detail scene
var (
	detailLabelStyle = lipgloss.NewStyle().
				Foreground(colorBlue).
				Width(8)

	detailValueStyle = lipgloss.NewStyle().
				Foreground(colorText)

	detailLinkStyle = lipgloss.NewStyle().
			Foreground(colorGreen).
			Underline(true)

	detailPanelStyle = lipgloss.NewStyle().
				Padding(1, 2).
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorDivider)
)

// Footer / status bar
var (
	statusStyle = lipgloss.NewStyle().
			Foreground(colorText).
			Background(colorBgSurface).
			Padding(0, 1)

	hintKeyStyle = lipgloss.NewStyle().
			Foreground(colorText).
			Bold(true)

	hintDescStyle = lipgloss.NewStyle().
			Foreground(colorTextMuted)

	footerBarStyle = lipgloss.NewStyle().
			Background(colorBgSurface)
)
