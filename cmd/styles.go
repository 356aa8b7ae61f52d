package cmd

import (
	"github.com/charmbracelet/lipgloss"

	"togglassistant/storage"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11"))

	runningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("14")).
			Bold(true)
)

// stateLabel renders a lifecycle state padded to a fixed width.
func stateLabel(state storage.State) string {
	label := lipgloss.NewStyle().Width(9).Render(state.String())
	switch state {
	case storage.StateNew:
		return successStyle.Render(label)
	case storage.StateModified:
		return warningStyle.Render(label)
	case storage.StateDeleted:
		return errorStyle.Render(label)
	default:
		return dimStyle.Render(label)
	}
}
