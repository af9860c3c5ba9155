package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// truncate shortens a string to the given limit, adding an ellipsis if needed.
func truncate(value string, limit int) string {
	value = strings.TrimSpace(value)
	if limit <= 0 {
		return value
	}
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	if limit <= 1 {
		return string(runes[:limit])
	}
	return string(runes[:limit-1]) + "…"
}

// truncatePath shortens a path by dropping leading directories, keeping the
// file name intact whenever it fits.
//
//	truncatePath("/home/fred/Documents/report.txt", 22) = "…/Documents/report.txt"
func truncatePath(value string, limit int) string {
	runes := []rune(value)
	if limit <= 0 || len(runes) <= limit {
		return value
	}
	const ellipsis = "…"
	parts := strings.Split(value, "/")
	for i := 1; i < len(parts); i++ {
		tail := ellipsis + "/" + strings.Join(parts[i:], "/")
		if len([]rune(tail)) <= limit {
			return tail
		}
	}
	// Not even the last element fits: keep its end.
	return ellipsis + string(runes[len(runes)-limit+1:])
}

// padRight pads a string with spaces to the given display width.
func padRight(s string, width int) string {
	n := lipgloss.Width(s)
	if width <= 0 || n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}

// padLeft right-aligns a string within the given display width.
func padLeft(s string, width int) string {
	n := lipgloss.Width(s)
	if width <= 0 || n >= width {
		return s
	}
	return strings.Repeat(" ", width-n) + s
}
