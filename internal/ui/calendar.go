package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nibzard/clockin/internal/tracker"
)

const weekdayHeader = "Su  Mo  Tu  We  Th  Fr  Sa"

// RenderMonth draws m as a text grid. Days with a completed task are shown
// green and marked with "*" so the grid still reads without colour. The
// cell whose date equals selected is drawn reversed.
func RenderMonth(m tracker.CalendarMonth, selected string) string {
	var b strings.Builder
	width := lipgloss.Width(weekdayHeader)
	b.WriteString(titleStyle.Render(lipgloss.PlaceHorizontal(width, lipgloss.Center, m.Label)))
	b.WriteString("\n")
	b.WriteString(subtleStyle.Render(weekdayHeader))
	b.WriteString("\n")

	for _, week := range m.Weeks {
		cells := make([]string, 0, len(week.Days))
		for _, day := range week.Days {
			cells = append(cells, renderDay(day, day.Date == selected))
		}
		b.WriteString(strings.TrimRight(strings.Join(cells, " "), " "))
		b.WriteString("\n")
	}
	return b.String()
}

func renderDay(day tracker.CalendarDay, selected bool) string {
	mark := " "
	if day.Highlighted {
		mark = "*"
	}
	text := fmt.Sprintf("%2d%s", day.Day, mark)

	style := lipgloss.NewStyle()
	switch {
	case day.Highlighted:
		style = highlightDay
	case !day.InMonth:
		style = dimDayStyle
	}
	if day.Today {
		style = style.Inherit(todayDayStyle)
	}
	if selected {
		style = style.Inherit(selectedDay)
	}
	return style.Render(text)
}

// CompletedSummary lists the highlighted days of m that fall inside the
// month, one "date: task, task" line each.
func CompletedSummary(m tracker.CalendarMonth) []string {
	var lines []string
	for _, week := range m.Weeks {
		for _, day := range week.Days {
			if day.InMonth && day.Highlighted {
				lines = append(lines, fmt.Sprintf("%s: %s", day.Date, strings.Join(day.Completed, ", ")))
			}
		}
	}
	return lines
}
