// Package tracker exposes day counts, per-date completion and notes, and the
// task-list mutations over a habit document. Every mutation is saved before
// it returns.
package tracker

import (
	"iter"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nibzard/clockin/internal/habit"
	"github.com/nibzard/clockin/internal/logging"
)

const secondsPerDay = 24 * 60 * 60

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock sets the source of "today".
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		t.now = now
	}
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(t *Tracker) {
		t.logger = logger
	}
}

// Tracker is the view-model over one data file.
// It is not safe for concurrent use.
type Tracker struct {
	store  *habit.Store
	doc    *habit.Document
	start  time.Time
	now    func() time.Time
	logger *log.Logger
}

// TaskView is one row of the task list as shown for a given day.
type TaskView struct {
	Index      int
	Name       string
	DaysPassed int
	Done       bool
	Note       string
}

// New loads the store's document and returns a tracker over it.
func New(store *habit.Store, opts ...Option) (*Tracker, error) {
	t := &Tracker{
		store:  store,
		now:    time.Now,
		logger: logging.Discard(),
	}
	for _, opt := range opts {
		opt(t)
	}

	doc, err := store.Load()
	if err != nil {
		return nil, err
	}
	start, err := habit.ParseDate(doc.StartDate)
	if err != nil {
		return nil, err
	}
	t.doc = doc
	t.start = start
	return t, nil
}

// Today returns the current date as YYYY-MM-DD.
func (t *Tracker) Today() string {
	return habit.FormatDate(t.now())
}

// StartDate returns the start date as YYYY-MM-DD.
func (t *Tracker) StartDate() string {
	return t.doc.StartDate
}

// Len returns the number of tasks.
func (t *Tracker) Len() int {
	return len(t.doc.Tasks)
}

// Document returns a copy of the current document.
func (t *Tracker) Document() *habit.Document {
	return t.doc.Clone()
}

// DayCount returns the number of the day that today is, counting the start
// date as day 1. It is zero or negative when today precedes the start date.
func (t *Tracker) DayCount(today time.Time) int {
	secs := habit.CalendarDate(today).Unix() - t.start.Unix()
	return int(secs/secondsPerDay) + 1
}

// DayCountToday returns DayCount for the tracker's clock.
func (t *Tracker) DayCountToday() int {
	return t.DayCount(t.now())
}

// Tasks returns the task rows for date. DaysPassed is the global day count
// for today, identical for every row.
func (t *Tracker) Tasks(date string) []TaskView {
	days := t.DayCountToday()
	views := make([]TaskView, 0, len(t.doc.Tasks))
	for i := range t.doc.Tasks {
		task := &t.doc.Tasks[i]
		views = append(views, TaskView{
			Index:      i,
			Name:       task.Name,
			DaysPassed: days,
			Done:       task.IsCompletedOn(date),
			Note:       task.Notes[date],
		})
	}
	return views
}

// AddTask appends a task named name. It returns false without saving when
// the trimmed name is empty.
func (t *Tracker) AddTask(name string) (bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return false, nil
	}
	err := t.commit(func(doc *habit.Document) {
		doc.Tasks = append(doc.Tasks, habit.NewTask(name))
	})
	if err != nil {
		return false, err
	}
	t.logger.Debug("Added task", "index", len(t.doc.Tasks)-1, "task", name)
	return true, nil
}

// DeleteTask removes the task at index.
func (t *Tracker) DeleteTask(index int) error {
	task, err := t.doc.Task(index)
	if err != nil {
		return err
	}
	name := task.Name
	err = t.commit(func(doc *habit.Document) {
		doc.Tasks = append(doc.Tasks[:index], doc.Tasks[index+1:]...)
	})
	if err != nil {
		return err
	}
	t.logger.Debug("Deleted task", "index", index, "task", name)
	return nil
}

// RenameTask replaces the name of the task at index. It returns false
// without saving when the trimmed name is empty.
func (t *Tracker) RenameTask(index int, name string) (bool, error) {
	if err := t.doc.CheckIndex(index); err != nil {
		return false, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return false, nil
	}
	err := t.commit(func(doc *habit.Document) {
		doc.Tasks[index].Name = name
	})
	if err != nil {
		return false, err
	}
	t.logger.Debug("Renamed task", "index", index, "task", name)
	return true, nil
}

// ToggleCompletion marks the task at index done on date when completed is
// true, and not done otherwise. Repeating a call has no further effect.
// A date that is not YYYY-MM-DD is rejected with ErrInvalidDate and an
// out-of-range index with ErrInvalidIndex; nothing is saved in either case.
func (t *Tracker) ToggleCompletion(index int, date string, completed bool) error {
	if err := t.doc.CheckIndex(index); err != nil {
		return err
	}
	if _, err := habit.ParseDate(date); err != nil {
		return err
	}
	err := t.commit(func(doc *habit.Document) {
		if completed {
			doc.Tasks[index].MarkCompleted(date)
		} else {
			doc.Tasks[index].UnmarkCompleted(date)
		}
	})
	if err != nil {
		return err
	}
	t.logger.Debug("Set completion", "index", index, "date", date, "completed", completed)
	return nil
}

// SetNote stores text as the note for the task at index on date.
// An empty text clears the note. Dates and indexes are validated as in
// ToggleCompletion.
func (t *Tracker) SetNote(index int, date, text string) error {
	if err := t.doc.CheckIndex(index); err != nil {
		return err
	}
	if _, err := habit.ParseDate(date); err != nil {
		return err
	}
	err := t.commit(func(doc *habit.Document) {
		doc.Tasks[index].SetNote(date, text)
	})
	if err != nil {
		return err
	}
	t.logger.Debug("Set note", "index", index, "date", date, "length", len(text))
	return nil
}

// SetStartDate changes the start date. The previous value is kept when s
// is not a YYYY-MM-DD date.
func (t *Tracker) SetStartDate(s string) error {
	start, err := habit.ParseDate(s)
	if err != nil {
		return err
	}
	err = t.commit(func(doc *habit.Document) {
		doc.StartDate = s
	})
	if err != nil {
		return err
	}
	t.start = start
	t.logger.Debug("Set start date", "date", s)
	return nil
}

// CompletedTasksOn returns the names of the tasks done on date, in list order.
func (t *Tracker) CompletedTasksOn(date string) []string {
	names := []string{}
	for i := range t.doc.Tasks {
		if t.doc.Tasks[i].IsCompletedOn(date) {
			names = append(names, t.doc.Tasks[i].Name)
		}
	}
	return names
}

// IsCompletedOn reports whether the task at index was done on date.
func (t *Tracker) IsCompletedOn(index int, date string) (bool, error) {
	task, err := t.doc.Task(index)
	if err != nil {
		return false, err
	}
	return task.IsCompletedOn(date), nil
}

// Note returns the note for the task at index on date, or "".
func (t *Tracker) Note(index int, date string) (string, error) {
	task, err := t.doc.Task(index)
	if err != nil {
		return "", err
	}
	return task.Notes[date], nil
}

// CompletedDates yields every completion entry of every task, unparsed and
// possibly repeated.
func (t *Tracker) CompletedDates() iter.Seq[string] {
	return func(yield func(string) bool) {
		for i := range t.doc.Tasks {
			for _, date := range t.doc.Tasks[i].Completed {
				if !yield(date) {
					return
				}
			}
		}
	}
}

// commit applies mutate and saves. If saving fails the in-memory document
// is restored so it matches the file.
func (t *Tracker) commit(mutate func(doc *habit.Document)) error {
	prev := t.doc.Clone()
	mutate(t.doc)
	if err := t.store.Save(t.doc); err != nil {
		t.doc = prev
		t.logger.Error("Save failed", "path", t.store.Path(), "err", err)
		return err
	}
	return nil
}
