// Package ui provides the terminal interface and shared text rendering.
package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nibzard/clockin/internal/config"
	"github.com/nibzard/clockin/internal/habit"
	"github.com/nibzard/clockin/internal/tracker"
)

// RunTUI starts the TUI over tr.
func RunTUI(ctx context.Context, cfg *config.Config, tr *tracker.Tracker) error {
	if !IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY")
	}
	model := newTUIModel(cfg, tr)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}

type screen int

const (
	screenList screen = iota
	screenInput
	screenConfirmDelete
	screenCalendar
	screenHelp
)

type inputKind int

const (
	inputAdd inputKind = iota
	inputRename
	inputNote
	inputStart
)

var inputLabels = map[inputKind]string{
	inputAdd:    "New task",
	inputRename: "Rename task",
	inputNote:   "Note for today",
	inputStart:  "Start date (YYYY-MM-DD)",
}

type tuiModel struct {
	cfg      *config.Config
	tr       *tracker.Tracker
	screen   screen
	back     screen // screen to return to from help
	cursor   int
	input    textinput.Model
	note     textarea.Model // multi-line editor for inputNote
	kind     inputKind
	selected time.Time // calendar selection
	message  string
	isErr    bool
}

func newTUIModel(cfg *config.Config, tr *tracker.Tracker) *tuiModel {
	ti := textinput.New()
	ti.CharLimit = 200
	ti.Width = 40

	// Notes keep whatever was written, so the editor has no length limits.
	ta := textarea.New()
	ta.CharLimit = 0
	ta.MaxHeight = 0
	ta.ShowLineNumbers = false
	ta.SetWidth(60)
	ta.SetHeight(4)
	ta.KeyMap.InsertNewline = key.NewBinding(
		key.WithKeys("ctrl+j", "alt+enter"),
		key.WithHelp("ctrl+j", "new line"),
	)
	return &tuiModel{
		cfg:   cfg,
		tr:    tr,
		input: ti,
		note:  ta,
	}
}

func (m *tuiModel) Init() tea.Cmd {
	return nil
}

func (m *tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		if m.screen == screenInput {
			return m, m.updateEditor(msg)
		}
		return m, nil
	}
	if key.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.screen {
	case screenInput:
		return m.updateInput(key)
	case screenConfirmDelete:
		return m.updateConfirm(key)
	case screenCalendar:
		return m.updateCalendar(key)
	case screenHelp:
		m.screen = m.back
		return m, nil
	default:
		return m.updateList(key)
	}
}

func (m *tuiModel) updateList(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	n := m.tr.Len()
	switch key.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < n-1 {
			m.cursor++
		}
	case " ":
		if n == 0 {
			return m, nil
		}
		today := m.tr.Today()
		done, err := m.tr.IsCompletedOn(m.cursor, today)
		if err == nil {
			err = m.tr.ToggleCompletion(m.cursor, today, !done)
		}
		m.report(err, "")
	case "a":
		return m, m.openInput(inputAdd, "")
	case "e":
		if n == 0 {
			return m, nil
		}
		return m, m.openInput(inputRename, m.tr.Tasks(m.tr.Today())[m.cursor].Name)
	case "n":
		if n == 0 {
			return m, nil
		}
		note, _ := m.tr.Note(m.cursor, m.tr.Today())
		return m, m.openInput(inputNote, note)
	case "s":
		return m, m.openInput(inputStart, m.tr.StartDate())
	case "d":
		if n == 0 {
			return m, nil
		}
		m.screen = screenConfirmDelete
	case "c":
		m.selected = m.today()
		m.screen = screenCalendar
		m.message = ""
	case "?", "h":
		m.back = screenList
		m.screen = screenHelp
	}
	return m, nil
}

func (m *tuiModel) openInput(kind inputKind, value string) tea.Cmd {
	m.kind = kind
	m.screen = screenInput
	m.message = ""
	if kind == inputNote {
		m.note.Placeholder = inputLabels[kind]
		m.note.SetValue(value)
		return m.note.Focus()
	}
	m.input.Placeholder = inputLabels[kind]
	m.input.SetValue(value)
	m.input.CursorEnd()
	return m.input.Focus()
}

func (m *tuiModel) closeInput() {
	m.input.Blur()
	m.input.SetValue("")
	m.note.Blur()
	m.note.Reset()
	m.screen = screenList
}

// updateEditor forwards msg to the editor for the current input kind.
func (m *tuiModel) updateEditor(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	if m.kind == inputNote {
		m.note, cmd = m.note.Update(msg)
	} else {
		m.input, cmd = m.input.Update(msg)
	}
	return cmd
}

func (m *tuiModel) inputValue() string {
	if m.kind == inputNote {
		return m.note.Value()
	}
	return m.input.Value()
}

func (m *tuiModel) updateInput(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "esc":
		m.closeInput()
		return m, nil
	case "enter":
		m.submit(m.inputValue())
		return m, nil
	}
	return m, m.updateEditor(key)
}

func (m *tuiModel) submit(value string) {
	switch m.kind {
	case inputAdd:
		added, err := m.tr.AddTask(value)
		if added {
			m.cursor = m.tr.Len() - 1
		}
		m.report(err, changedMessage(added, "Added task", "Name is empty, nothing added"))
	case inputRename:
		renamed, err := m.tr.RenameTask(m.cursor, value)
		m.report(err, changedMessage(renamed, "Renamed task", "Name is empty, task unchanged"))
	case inputNote:
		err := m.tr.SetNote(m.cursor, m.tr.Today(), value)
		m.report(err, "Saved note")
	case inputStart:
		err := m.tr.SetStartDate(strings.TrimSpace(value))
		if err != nil {
			// Keep the field open so the date can be corrected.
			m.report(err, "")
			return
		}
		m.report(nil, fmt.Sprintf("Start date set to %s", m.tr.StartDate()))
	}
	m.closeInput()
}

func changedMessage(changed bool, yes, no string) string {
	if changed {
		return yes
	}
	return no
}

func (m *tuiModel) updateConfirm(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "y", "Y":
		name := m.tr.Tasks(m.tr.Today())[m.cursor].Name
		err := m.tr.DeleteTask(m.cursor)
		if m.cursor >= m.tr.Len() && m.cursor > 0 {
			m.cursor--
		}
		m.report(err, fmt.Sprintf("Deleted %q", name))
		m.screen = screenList
	case "n", "N", "esc":
		m.screen = screenList
	}
	return m, nil
}

func (m *tuiModel) updateCalendar(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "q":
		return m, tea.Quit
	case "esc", "c":
		m.screen = screenList
	case "left", "h":
		m.selected = m.selected.AddDate(0, 0, -1)
	case "right", "l":
		m.selected = m.selected.AddDate(0, 0, 1)
	case "up", "k":
		m.selected = m.selected.AddDate(0, 0, -7)
	case "down", "j":
		m.selected = m.selected.AddDate(0, 0, 7)
	case "[":
		m.selected = shiftMonth(m.selected, -1)
	case "]":
		m.selected = shiftMonth(m.selected, 1)
	case "t":
		m.selected = m.today()
	case "?":
		m.back = screenCalendar
		m.screen = screenHelp
	}
	return m, nil
}

func (m *tuiModel) today() time.Time {
	d, _ := habit.ParseDate(m.tr.Today())
	return d
}

// shiftMonth moves d by delta months, clamping the day to the target
// month's length.
func shiftMonth(d time.Time, delta int) time.Time {
	first := time.Date(d.Year(), d.Month()+time.Month(delta), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1).Day()
	return first.AddDate(0, 0, min(d.Day(), last)-1)
}

func (m *tuiModel) report(err error, ok string) {
	if err != nil {
		m.message = err.Error()
		m.isErr = true
		return
	}
	m.message = ok
	m.isErr = false
}

func (m *tuiModel) View() string {
	var b strings.Builder
	writeTitle(&b, m.tr)

	switch m.screen {
	case screenHelp:
		writeHelp(&b)
		b.WriteString(subtleStyle.Render("Press any key to go back"))
		b.WriteString("\n")
		return b.String()
	case screenCalendar:
		m.writeCalendar(&b)
		m.writeMessage(&b)
		b.WriteString(subtleStyle.Render("arrows move | [ ] month | t today | esc back | ? help | q quit"))
		b.WriteString("\n")
		return b.String()
	}

	m.writeTasks(&b)
	switch m.screen {
	case screenInput:
		b.WriteString(inputLabels[m.kind] + ":\n")
		hint := "enter save | esc cancel"
		if m.kind == inputNote {
			b.WriteString(m.note.View())
			hint = "enter save | ctrl+j new line | esc cancel"
		} else {
			b.WriteString(m.input.View())
		}
		b.WriteString("\n\n")
		m.writeMessage(&b)
		b.WriteString(subtleStyle.Render(hint))
	case screenConfirmDelete:
		name := m.tr.Tasks(m.tr.Today())[m.cursor].Name
		b.WriteString(errorStyle.Render(fmt.Sprintf("Delete %q? (y/n)", name)))
		b.WriteString("\n")
	default:
		m.writeMessage(&b)
		b.WriteString(subtleStyle.Render("space check | a add | e rename | d delete | n note | s start | c calendar | ? help | q quit"))
	}
	b.WriteString("\n")
	return b.String()
}

func writeTitle(b *strings.Builder, tr *tracker.Tracker) {
	b.WriteString(titleStyle.Render(fmt.Sprintf("Clock In  Day %d", tr.DayCountToday())))
	b.WriteString("\n")
	b.WriteString(subtleStyle.Render(fmt.Sprintf("Started %s, today %s", tr.StartDate(), tr.Today())))
	b.WriteString("\n\n")
}

// rowGap maps the font size preference to blank lines between task rows.
func (m *tuiModel) rowGap() int {
	if m.cfg == nil {
		return 0
	}
	switch {
	case m.cfg.FontSize >= 28:
		return 2
	case m.cfg.FontSize >= 20:
		return 1
	}
	return 0
}

func (m *tuiModel) writeTasks(b *strings.Builder) {
	views := m.tr.Tasks(m.tr.Today())
	if len(views) == 0 {
		b.WriteString(subtleStyle.Render("  No tasks. Press a to add one."))
		b.WriteString("\n\n")
		return
	}
	gap := strings.Repeat("\n", m.rowGap())
	for _, v := range views {
		b.WriteString(formatRow(v, v.Index == m.cursor))
		b.WriteString("\n")
		b.WriteString(gap)
	}
	b.WriteString("\n")
}

func formatRow(v tracker.TaskView, selected bool) string {
	pointer := "  "
	if selected {
		pointer = cursorStyle.Render("> ")
	}
	box := "[ ]"
	name := v.Name
	if v.Done {
		box = doneStyle.Render("[x]")
		name = doneStyle.Render(name)
	}
	line := fmt.Sprintf("%s%s %s", pointer, box, name)
	if v.Note != "" {
		line += "  " + noteStyle.Render(notePreview(v.Note))
	}
	return line
}

// notePreview returns the first line of a note for the one-line task row.
func notePreview(note string) string {
	first, rest, multi := strings.Cut(note, "\n")
	if multi && strings.TrimSpace(rest) != "" {
		return first + " ..."
	}
	return first
}

func (m *tuiModel) writeCalendar(b *strings.Builder) {
	month := m.tr.Month(m.selected.Year(), m.selected.Month())
	key := habit.FormatDate(m.selected)
	b.WriteString(RenderMonth(month, key))
	b.WriteString("\n")

	done := m.tr.CompletedTasksOn(key)
	if len(done) == 0 {
		b.WriteString(subtleStyle.Render(fmt.Sprintf("Nothing completed on %s", key)))
		b.WriteString("\n\n")
		return
	}
	b.WriteString(fmt.Sprintf("Completed on %s:\n", key))
	for _, name := range done {
		b.WriteString("  " + doneStyle.Render(name) + "\n")
	}
	b.WriteString("\n")
}

func (m *tuiModel) writeMessage(b *strings.Builder) {
	if m.message == "" {
		return
	}
	style := infoStyle
	if m.isErr {
		style = errorStyle
	}
	b.WriteString(style.Render(m.message))
	b.WriteString("\n")
}

func writeHelp(b *strings.Builder) {
	b.WriteString("Keyboard Shortcuts\n\n")
	b.WriteString("  up/k, down/j   Move\n")
	b.WriteString("  space          Check or uncheck the task for today\n")
	b.WriteString("  a              Add a task\n")
	b.WriteString("  e              Rename the task\n")
	b.WriteString("  d              Delete the task\n")
	b.WriteString("  n              Edit today's note\n")
	b.WriteString("  ctrl+j         New line while editing a note\n")
	b.WriteString("  s              Change the start date\n")
	b.WriteString("  c              Calendar\n")
	b.WriteString("  ?, h           Toggle this help screen\n")
	b.WriteString("  q, ctrl+c      Quit\n\n")
	b.WriteString("Calendar\n\n")
	b.WriteString("  arrows, hjkl   Move the selected day\n")
	b.WriteString("  [ ]            Previous or next month\n")
	b.WriteString("  t              Jump to today\n")
	b.WriteString("  esc, c         Back to the task list\n\n")
}

// IsTTY returns true if w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
