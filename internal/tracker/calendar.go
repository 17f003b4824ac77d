package tracker

import (
	"slices"
	"time"

	"github.com/nibzard/clockin/internal/habit"
)

// CalendarMonth is a Sunday-first grid of whole weeks covering one month.
type CalendarMonth struct {
	Label string
	Year  int
	Month time.Month
	Weeks []CalendarWeek
}

// CalendarWeek is seven consecutive days.
type CalendarWeek struct {
	Days []CalendarDay
}

// CalendarDay is one grid cell.
type CalendarDay struct {
	Date        string
	Day         int
	InMonth     bool
	Today       bool
	Highlighted bool
	Completed   []string
}

// Highlights returns the distinct dates on which any task was completed,
// in ascending order. Entries that do not parse as dates are skipped.
func (t *Tracker) Highlights() []time.Time {
	seen := map[string]bool{}
	var dates []time.Time
	for s := range t.CompletedDates() {
		d, err := habit.ParseDate(s)
		if err != nil {
			continue
		}
		if key := habit.FormatDate(d); !seen[key] {
			seen[key] = true
			dates = append(dates, d)
		}
	}
	slices.SortFunc(dates, func(a, b time.Time) int { return a.Compare(b) })
	return dates
}

// completedByDate maps each parseable completion date to the names of the
// tasks done on it, in list order.
func (t *Tracker) completedByDate() map[string][]string {
	byDate := map[string][]string{}
	for i := range t.doc.Tasks {
		task := &t.doc.Tasks[i]
		for _, s := range task.Completed {
			if _, err := habit.ParseDate(s); err != nil {
				continue
			}
			if !slices.Contains(byDate[s], task.Name) {
				byDate[s] = append(byDate[s], task.Name)
			}
		}
	}
	return byDate
}

// Month builds the calendar grid for the given month.
func (t *Tracker) Month(year int, month time.Month) CalendarMonth {
	byDate := t.completedByDate()
	today := t.Today()

	monthStart := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, -1)
	gridStart := monthStart.AddDate(0, 0, -int(monthStart.Weekday()))

	var weeks []CalendarWeek
	var days []CalendarDay
	for day := gridStart; ; day = day.AddDate(0, 0, 1) {
		key := habit.FormatDate(day)
		done := byDate[key]
		days = append(days, CalendarDay{
			Date:        key,
			Day:         day.Day(),
			InMonth:     day.Month() == monthStart.Month(),
			Today:       key == today,
			Highlighted: len(done) > 0,
			Completed:   done,
		})

		if len(days) == 7 {
			weeks = append(weeks, CalendarWeek{Days: days})
			days = nil
			if !day.Before(monthEnd) {
				break
			}
		}
	}

	return CalendarMonth{
		Label: monthStart.Format("January 2006"),
		Year:  monthStart.Year(),
		Month: monthStart.Month(),
		Weeks: weeks,
	}
}
