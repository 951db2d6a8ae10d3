package ui

import "github.com/charmbracelet/lipgloss"

// palette holds the adaptive colors shared by every screen.
type palette struct {
	primary   lipgloss.AdaptiveColor
	secondary lipgloss.AdaptiveColor
	success   lipgloss.AdaptiveColor
	warning   lipgloss.AdaptiveColor
	danger    lipgloss.AdaptiveColor
	selected  lipgloss.AdaptiveColor
}

func defaultPalette() palette {
	return palette{
		primary:   lipgloss.AdaptiveColor{Light: "#3B82F6", Dark: "#60A5FA"},
		secondary: lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"},
		success:   lipgloss.AdaptiveColor{Light: "#10B981", Dark: "#34D399"},
		warning:   lipgloss.AdaptiveColor{Light: "#F59E0B", Dark: "#FBBF24"},
		danger:    lipgloss.AdaptiveColor{Light: "#EF4444", Dark: "#F87171"},
		selected:  lipgloss.AdaptiveColor{Light: "#DBEAFE", Dark: "#1E3A8A"},
	}
}
