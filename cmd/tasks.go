package cmd

import (
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/nibzard/clockin/internal/config"
	"github.com/nibzard/clockin/internal/habit"
	"github.com/nibzard/clockin/internal/tracker"
	"github.com/nibzard/clockin/internal/ui"
)

// taskIndex converts a 1-based task number from the command line to a
// tracker index.
func taskIndex(tr *tracker.Tracker, arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("%w %q: expected a task number", habit.ErrInvalidIndex, arg)
	}
	if n < 1 || n > tr.Len() {
		if tr.Len() == 0 {
			return 0, fmt.Errorf("%w %d: no tasks", habit.ErrInvalidIndex, n)
		}
		return 0, fmt.Errorf("%w %d: must be between 1 and %d", habit.ErrInvalidIndex, n, tr.Len())
	}
	return n - 1, nil
}

// dateOrToday validates s as a date, defaulting to the tracker's today.
func dateOrToday(tr *tracker.Tracker, s string) (string, error) {
	if s == "" {
		return tr.Today(), nil
	}
	if _, err := habit.ParseDate(s); err != nil {
		return "", err
	}
	return s, nil
}

func taskName(tr *tracker.Tracker, index int) string {
	return tr.Document().Tasks[index].Name
}

// statusCommand prints the day banner and the task rows for a date.
func statusCommand(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("clockin status", flag.ContinueOnError)
	fs.SetOutput(stderr)
	dateFlag := fs.String("date", "", "Date to show (YYYY-MM-DD, default today)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	tr, err := openTracker(cfg)
	if err != nil {
		return err
	}
	date, err := dateOrToday(tr, *dateFlag)
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Day %d (started %s, today %s)\n\n", tr.DayCountToday(), tr.StartDate(), tr.Today())
	if date != tr.Today() {
		fmt.Fprintf(stdout, "Tasks on %s:\n", date)
	}
	printRows(stdout, tr.Tasks(date))
	return nil
}

func printRows(w io.Writer, views []tracker.TaskView) {
	if len(views) == 0 {
		fmt.Fprintln(w, "No tasks. Add one with: clockin add <name>")
		return
	}
	for _, v := range views {
		box := "[ ]"
		if v.Done {
			box = "[x]"
		}
		line := fmt.Sprintf("%3d. %s %s", v.Index+1, box, v.Name)
		if v.Note != "" {
			line += fmt.Sprintf("  (note: %s)", v.Note)
		}
		fmt.Fprintln(w, line)
	}
}

// addCommand appends a task.
func addCommand(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("clockin add", flag.ContinueOnError)
	fs.SetOutput(stderr)
	words, err := parseInterspersed(fs, args)
	if err != nil {
		return err
	}

	tr, err := openTracker(cfg)
	if err != nil {
		return err
	}
	added, err := tr.AddTask(strings.Join(words, " "))
	if err != nil {
		return err
	}
	if !added {
		fmt.Fprintln(stdout, "Nothing added: task name is empty")
		return nil
	}
	fmt.Fprintf(stdout, "Added task %d: %s\n", tr.Len(), taskName(tr, tr.Len()-1))
	return nil
}

// rmCommand deletes a task.
func rmCommand(cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: clockin rm <n>")
	}
	tr, err := openTracker(cfg)
	if err != nil {
		return err
	}
	index, err := taskIndex(tr, args[0])
	if err != nil {
		return err
	}
	name := taskName(tr, index)
	if err := tr.DeleteTask(index); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Deleted task %d: %s\n", index+1, name)
	return nil
}

// renameCommand renames a task.
func renameCommand(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("clockin rename", flag.ContinueOnError)
	fs.SetOutput(stderr)
	positional, err := parseInterspersed(fs, args)
	if err != nil {
		return err
	}
	if len(positional) < 2 {
		return fmt.Errorf("usage: clockin rename <n> <name>")
	}
	tr, err := openTracker(cfg)
	if err != nil {
		return err
	}
	index, err := taskIndex(tr, positional[0])
	if err != nil {
		return err
	}
	old := taskName(tr, index)
	renamed, err := tr.RenameTask(index, strings.Join(positional[1:], " "))
	if err != nil {
		return err
	}
	if !renamed {
		fmt.Fprintln(stdout, "Nothing renamed: task name is empty")
		return nil
	}
	fmt.Fprintf(stdout, "Renamed task %d: %s -> %s\n", index+1, old, taskName(tr, index))
	return nil
}

// checkCommand marks a task done or not done on a date.
func checkCommand(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("clockin check", flag.ContinueOnError)
	fs.SetOutput(stderr)
	dateFlag := fs.String("date", "", "Date (YYYY-MM-DD, default today)")
	undo := fs.Bool("undo", false, "Mark the task not done")
	positional, err := parseInterspersed(fs, args)
	if err != nil {
		return err
	}
	if len(positional) != 1 {
		return fmt.Errorf("usage: clockin check <n> [-date YYYY-MM-DD] [-undo]")
	}

	tr, err := openTracker(cfg)
	if err != nil {
		return err
	}
	index, err := taskIndex(tr, positional[0])
	if err != nil {
		return err
	}
	date, err := dateOrToday(tr, *dateFlag)
	if err != nil {
		return err
	}
	if err := tr.ToggleCompletion(index, date, !*undo); err != nil {
		return err
	}

	verb := "Checked"
	if *undo {
		verb = "Unchecked"
	}
	fmt.Fprintf(stdout, "%s task %d (%s) on %s\n", verb, index+1, taskName(tr, index), date)
	return nil
}

// noteCommand sets or clears the note for a task on a date.
func noteCommand(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("clockin note", flag.ContinueOnError)
	fs.SetOutput(stderr)
	dateFlag := fs.String("date", "", "Date (YYYY-MM-DD, default today)")
	positional, err := parseInterspersed(fs, args)
	if err != nil {
		return err
	}
	if len(positional) < 1 {
		return fmt.Errorf("usage: clockin note <n> [-date YYYY-MM-DD] <text>")
	}

	tr, err := openTracker(cfg)
	if err != nil {
		return err
	}
	index, err := taskIndex(tr, positional[0])
	if err != nil {
		return err
	}
	date, err := dateOrToday(tr, *dateFlag)
	if err != nil {
		return err
	}
	text := strings.Join(positional[1:], " ")
	if err := tr.SetNote(index, date, text); err != nil {
		return err
	}

	if text == "" {
		fmt.Fprintf(stdout, "Cleared note for task %d on %s\n", index+1, date)
		return nil
	}
	fmt.Fprintf(stdout, "Saved note for task %d on %s\n", index+1, date)
	return nil
}

// startCommand changes the start date.
func startCommand(cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: clockin start <YYYY-MM-DD>")
	}
	tr, err := openTracker(cfg)
	if err != nil {
		return err
	}
	if err := tr.SetStartDate(args[0]); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Start date set to %s, today is day %d\n", tr.StartDate(), tr.DayCountToday())
	return nil
}

// dayCommand lists the tasks completed on a date.
func dayCommand(cfg *config.Config, args []string) error {
	if len(args) > 1 {
		return fmt.Errorf("unexpected arguments: %v", args[1:])
	}
	tr, err := openTracker(cfg)
	if err != nil {
		return err
	}
	var arg string
	if len(args) == 1 {
		arg = args[0]
	}
	date, err := dateOrToday(tr, arg)
	if err != nil {
		return err
	}

	names := tr.CompletedTasksOn(date)
	if len(names) == 0 {
		fmt.Fprintf(stdout, "Nothing completed on %s\n", date)
		return nil
	}
	fmt.Fprintf(stdout, "Completed on %s:\n", date)
	for _, name := range names {
		fmt.Fprintf(stdout, "  - %s\n", name)
	}
	return nil
}

// calendarCommand prints a month grid with completed days marked.
func calendarCommand(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("clockin calendar", flag.ContinueOnError)
	fs.SetOutput(stderr)
	monthFlag := fs.String("month", "", "Month to show (YYYY-MM, default this month)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	tr, err := openTracker(cfg)
	if err != nil {
		return err
	}

	year, month, _ := now().Date()
	if *monthFlag != "" {
		t, err := time.Parse("2006-01", *monthFlag)
		if err != nil {
			return fmt.Errorf("invalid month %q: expected YYYY-MM", *monthFlag)
		}
		year, month = t.Year(), t.Month()
	}

	m := tr.Month(year, month)
	fmt.Fprint(stdout, ui.RenderMonth(m, ""))
	if lines := ui.CompletedSummary(m); len(lines) > 0 {
		fmt.Fprintln(stdout)
		for _, line := range lines {
			fmt.Fprintln(stdout, line)
		}
	}
	return nil
}
