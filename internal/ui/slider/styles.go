package slider

import "github.com/charmbracelet/lipgloss"

var (
	colorAccent = lipgloss.Color("86")
	colorThumb  = lipgloss.Color("212")
	colorDim    = lipgloss.Color("242")
)

type Styles struct {
	Title    lipgloss.Style
	Track    lipgloss.Style
	Selected lipgloss.Style
	Thumb    lipgloss.Style
	Label    lipgloss.Style
	Dim      lipgloss.Style
}

func DefaultStyles() Styles {
	return Styles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(colorAccent),
		Track:    lipgloss.NewStyle().Foreground(colorDim),
		Selected: lipgloss.NewStyle().Foreground(colorAccent),
		Thumb:    lipgloss.NewStyle().Bold(true).Foreground(colorThumb),
		Label:    lipgloss.NewStyle().Width(6),
		Dim:      lipgloss.NewStyle().Foreground(colorDim),
	}
}
