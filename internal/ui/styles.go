package ui

import (
	"github.com/charmbracelet/lipgloss"

	"todo-game/internal/tasks"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	panelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62"))

	cursorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	doneStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Strikethrough(true)
	archivedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Italic(true)
	deletingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Faint(true)
	overdueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	dueStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("69"))
	categoryStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("141"))
	tagStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("160")).Padding(0, 1)
	helpStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	progressFull   = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	progressEmpty  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	labelStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	focusedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	groundStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("94"))
	playerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true)
	obstacleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	gameTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("226"))

	priorityHigh   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	priorityMedium = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	priorityLow    = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
)

func styleForPriority(p tasks.Priority) lipgloss.Style {
	switch p {
	case tasks.PriorityHigh:
		return priorityHigh
	case tasks.PriorityMedium:
		return priorityMedium
	default:
		return priorityLow
	}
}
