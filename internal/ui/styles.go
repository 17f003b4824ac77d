package ui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	subtleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	doneStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	noteStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	infoStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	dimDayStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	highlightDay  = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("42"))
	todayDayStyle = lipgloss.NewStyle().Underline(true)
	selectedDay   = lipgloss.NewStyle().Reverse(true)
)
