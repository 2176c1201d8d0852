package ui

import "github.com/charmbracelet/lipgloss"

// Theme holds the color palette and pre-computed styles for the TUI. Styles
// are created once at startup instead of per-frame.
type Theme struct {
	Renderer *lipgloss.Renderer

	// Colors
	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Muted     lipgloss.AdaptiveColor
	Border    lipgloss.AdaptiveColor
	Highlight lipgloss.AdaptiveColor
	Error     lipgloss.AdaptiveColor
	Success   lipgloss.AdaptiveColor

	// Styles
	Base        lipgloss.Style
	Header      lipgloss.Style
	StatusBar   lipgloss.Style
	NoticeError lipgloss.Style
	NoticeInfo  lipgloss.Style
	HelpText    lipgloss.Style
	LinkLine    lipgloss.Style
	Tooltip     lipgloss.Style
	PanelBorder lipgloss.Style
	PanelTitle  lipgloss.Style
	CorrectOpt  lipgloss.Style
	WrongOpt    lipgloss.Style
	SelectedOpt lipgloss.Style
}

// DefaultTheme returns the standard Dracula-inspired theme (adaptive).
func DefaultTheme(r *lipgloss.Renderer) Theme {
	t := Theme{
		Renderer:  r,
		Primary:   lipgloss.AdaptiveColor{Light: "#7c3aed", Dark: "#bd93f9"},
		Secondary: lipgloss.AdaptiveColor{Light: "#0369a1", Dark: "#8be9fd"},
		Muted:     lipgloss.AdaptiveColor{Light: "#6b7280", Dark: "#6272a4"},
		Border:    lipgloss.AdaptiveColor{Light: "#d1d5db", Dark: "#44475a"},
		Highlight: lipgloss.AdaptiveColor{Light: "#ede9fe", Dark: "#44475a"},
		Error:     lipgloss.AdaptiveColor{Light: "#b91c1c", Dark: "#ff5555"},
		Success:   lipgloss.AdaptiveColor{Light: "#15803d", Dark: "#50fa7b"},
	}

	t.Base = r.NewStyle()
	t.Header = r.NewStyle().Bold(true).Foreground(t.Primary)
	t.StatusBar = r.NewStyle().Foreground(t.Muted)
	t.NoticeError = r.NewStyle().Bold(true).Foreground(t.Error)
	t.NoticeInfo = r.NewStyle().Foreground(t.Secondary)
	t.HelpText = r.NewStyle().Foreground(t.Muted).Italic(true)
	t.LinkLine = r.NewStyle().Foreground(t.Border)
	t.Tooltip = r.NewStyle().Foreground(t.Secondary)
	t.PanelBorder = r.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(t.Border).Padding(0, 1)
	t.PanelTitle = r.NewStyle().Bold(true).Foreground(t.Primary)
	t.CorrectOpt = r.NewStyle().Bold(true).Foreground(t.Success)
	t.WrongOpt = r.NewStyle().Foreground(t.Error)
	t.SelectedOpt = r.NewStyle().Bold(true).Background(t.Highlight)

	return t
}
