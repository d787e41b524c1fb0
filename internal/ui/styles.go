package ui

import "github.com/charmbracelet/lipgloss"

const columnWidth = 30

var (
	columnStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1).
			Width(columnWidth)
	focusedColumnStyle = columnStyle.BorderForeground(lipgloss.Color("63"))
	draggedColumnStyle = columnStyle.BorderForeground(lipgloss.Color("214"))

	titleStyle        = lipgloss.NewStyle().Bold(true)
	focusedTitleStyle = titleStyle.Foreground(lipgloss.Color("63")).Underline(true)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("238")).
			Width(columnWidth - 4)
	focusedCardStyle = cardStyle.BorderForeground(lipgloss.Color("205"))
	draggedCardStyle = cardStyle.BorderForeground(lipgloss.Color("214")).Bold(true)

	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	priorityColors = map[string]lipgloss.Color{
		"Low":    lipgloss.Color("42"),
		"Medium": lipgloss.Color("214"),
		"High":   lipgloss.Color("196"),
	}
)
