package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Mr-Dark-debug/gtoken/internal/stage"
)

// renderFrame stacks header, body and footer to fill width×height.
func renderFrame(brand, title, meta, body, status string, hints []stage.Hint, width, height int) string {
	header := renderHeader(brand, title, meta, width)
	footer := renderFooter(status, hints, width)

	bodyHeight := maxInt(height-2, 1) // header + footer
	placed := lipgloss.Place(width, bodyHeight, lipgloss.Center, lipgloss.Center, body)

	return lipgloss.JoinVertical(lipgloss.Left, header, placed, footer)
}

// renderHeader produces the top bar:
//
//	GTOKEN  |  Opening gallery  |  gid 5 · page 3
func renderHeader(brand, title, meta string, width int) string {
	sep := headerSepStyle.Render(" │ ")

	parts := []string{headerBrandStyle.Render(brand)}
	if title != "" {
		parts = append(parts, sep, headerMetaStyle.Render(title))
	}
	if meta != "" {
		parts = append(parts, sep, headerMetaStyle.Render(meta))
	}

	return headerBarStyle.Width(width).Render(strings.Join(parts, ""))
}

// renderFooter produces the bottom status bar with keyboard hints.
func renderFooter(status string, hints []stage.Hint, width int) string {
	var left string
	if status != "" {
		left = statusStyle.Render(status)
	}
	right := renderHints(hints)

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + strings.Repeat(" ", gap) + right
	return footerBarStyle.Width(width).Render(bar)
}

func renderHints(hints []stage.Hint) string {
	var parts []string
	for _, h := range hints {
		parts = append(parts,
			hintKeyStyle.Render(h.Key)+" "+hintDescStyle.Render(h.Desc))
	}
	return strings.Join(parts, hintDescStyle.Render("  "))
}
