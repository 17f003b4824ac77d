package habit

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

// DateLayout is the on-disk date format.
const DateLayout = "2006-01-02"

var (
	// ErrInvalidDate is returned for strings that are not YYYY-MM-DD dates.
	ErrInvalidDate = errors.New("invalid date")
	// ErrInvalidIndex is returned for task positions outside the task list.
	ErrInvalidIndex = errors.New("invalid task index")
	// ErrDataCorrupt is returned when an existing data file cannot be used.
	ErrDataCorrupt = errors.New("data file corrupt")
)

// Task is a named daily habit with its completion dates and per-date notes.
type Task struct {
	Name      string            `json:"name"`
	Days      int               `json:"days"`
	Completed []string          `json:"completed"`
	Notes     map[string]string `json:"notes"`
}

// NewTask returns a task with empty completion and notes.
func NewTask(name string) Task {
	return Task{
		Name:      name,
		Completed: []string{},
		Notes:     map[string]string{},
	}
}

// IsCompletedOn reports whether date is in the task's completion set.
func (t *Task) IsCompletedOn(date string) bool {
	return slices.Contains(t.Completed, date)
}

// MarkCompleted adds date to the completion set.
// It returns false if the date was already present.
func (t *Task) MarkCompleted(date string) bool {
	if t.IsCompletedOn(date) {
		return false
	}
	t.Completed = append(t.Completed, date)
	return true
}

// UnmarkCompleted removes every occurrence of date from the completion set.
// It returns false if the date was not present.
func (t *Task) UnmarkCompleted(date string) bool {
	n := len(t.Completed)
	t.Completed = slices.DeleteFunc(t.Completed, func(d string) bool { return d == date })
	return len(t.Completed) < n
}

// SetNote stores text as the note for date. An empty text is kept as an
// empty entry.
func (t *Task) SetNote(date, text string) {
	if t.Notes == nil {
		t.Notes = map[string]string{}
	}
	t.Notes[date] = text
}

func (t Task) clone() Task {
	c := t
	c.Completed = slices.Clone(t.Completed)
	if c.Completed == nil {
		c.Completed = []string{}
	}
	c.Notes = make(map[string]string, len(t.Notes))
	for k, v := range t.Notes {
		c.Notes[k] = v
	}
	return c
}

// Document is the full persisted state.
type Document struct {
	StartDate string `json:"start_date"`
	Tasks     []Task `json:"tasks"`
}

// NewDocument returns a document starting on start with one task per name.
func NewDocument(start time.Time, names []string) *Document {
	doc := &Document{
		StartDate: FormatDate(start),
		Tasks:     make([]Task, 0, len(names)),
	}
	for _, name := range names {
		doc.Tasks = append(doc.Tasks, NewTask(name))
	}
	return doc
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	c := &Document{
		StartDate: d.StartDate,
		Tasks:     make([]Task, len(d.Tasks)),
	}
	for i := range d.Tasks {
		c.Tasks[i] = d.Tasks[i].clone()
	}
	return c
}

// Task returns the task at index.
func (d *Document) Task(index int) (*Task, error) {
	if err := d.CheckIndex(index); err != nil {
		return nil, err
	}
	return &d.Tasks[index], nil
}

// CheckIndex returns an IndexError if index is outside the task list.
func (d *Document) CheckIndex(index int) error {
	if index < 0 || index >= len(d.Tasks) {
		return &IndexError{Index: index, Len: len(d.Tasks)}
	}
	return nil
}

// normalize fills missing collections left out of hand-edited files and
// drops repeated completion dates, keeping the first occurrence.
func (d *Document) normalize() {
	if d.Tasks == nil {
		d.Tasks = []Task{}
	}
	for i := range d.Tasks {
		if d.Tasks[i].Completed == nil {
			d.Tasks[i].Completed = []string{}
		}
		d.Tasks[i].Completed = dedupe(d.Tasks[i].Completed)
		if d.Tasks[i].Notes == nil {
			d.Tasks[i].Notes = map[string]string{}
		}
	}
}

func dedupe(dates []string) []string {
	seen := make(map[string]bool, len(dates))
	return slices.DeleteFunc(dates, func(d string) bool {
		if seen[d] {
			return true
		}
		seen[d] = true
		return false
	})
}

// ParseDate parses a YYYY-MM-DD string as a UTC calendar date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, &DateError{Value: s}
	}
	return t, nil
}

// FormatDate formats the calendar date of t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// CalendarDate truncates t to midnight UTC of its own calendar date.
func CalendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DateError reports a string that is not a YYYY-MM-DD date.
type DateError struct {
	Value string
}

func (e *DateError) Error() string {
	return fmt.Sprintf("%s %q: expected YYYY-MM-DD", ErrInvalidDate, e.Value)
}

// Is matches ErrInvalidDate.
func (e *DateError) Is(target error) bool {
	return target == ErrInvalidDate
}

// IndexError reports a task position outside the task list.
type IndexError struct {
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	if e.Len == 0 {
		return fmt.Sprintf("%s %d: no tasks", ErrInvalidIndex, e.Index)
	}
	return fmt.Sprintf("%s %d: must be between 0 and %d", ErrInvalidIndex, e.Index, e.Len-1)
}

// Is matches ErrInvalidIndex.
func (e *IndexError) Is(target error) bool {
	return target == ErrInvalidIndex
}

// CorruptError reports a data file that exists but cannot be used.
type CorruptError struct {
	Path     string
	Problems []error
}

func (e *CorruptError) Error() string {
	msgs := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		msgs = append(msgs, p.Error())
	}
	return fmt.Sprintf("%s: %s: %s", ErrDataCorrupt, e.Path, strings.Join(msgs, "; "))
}

// Unwrap returns the individual problems.
func (e *CorruptError) Unwrap() []error {
	return e.Problems
}

// Is matches ErrDataCorrupt.
func (e *CorruptError) Is(target error) bool {
	return target == ErrDataCorrupt
}

// ValidationError represents a validation error with context.
type ValidationError struct {
	Path string // dotted path to the error location
	Err  error
}

func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}
