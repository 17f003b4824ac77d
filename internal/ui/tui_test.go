package ui

import (
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nibzard/clockin/internal/config"
	"github.com/nibzard/clockin/internal/habit"
	"github.com/nibzard/clockin/internal/tracker"
)

func newTestModel(t *testing.T) *tuiModel {
	t.Helper()
	clock := func() time.Time { return time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC) }
	path := filepath.Join(t.TempDir(), habit.DefaultFile)
	store := habit.NewStore(path, habit.WithStoreClock(clock))
	doc := habit.NewDocument(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), []string{"Wake", "Exercise", "Read"})
	doc.Tasks[2].Completed = []string{"2024-01-05"}
	if err := store.Save(doc); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	tr, err := tracker.New(store, tracker.WithClock(clock))
	if err != nil {
		t.Fatalf("tracker.New failed: %v", err)
	}
	return newTUIModel(&config.Config{FontSize: config.DefaultFontSize}, tr)
}

func keys(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(m *tuiModel, msgs ...tea.Msg) {
	for _, msg := range msgs {
		m.Update(msg)
	}
}

var (
	space = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	esc   = tea.KeyMsg{Type: tea.KeyEsc}
	right = tea.KeyMsg{Type: tea.KeyRight}
	down  = tea.KeyMsg{Type: tea.KeyDown}
)

func TestToggleToday(t *testing.T) {
	m := newTestModel(t)

	send(m, down, space)
	if got := m.tr.CompletedTasksOn("2024-01-10"); !reflect.DeepEqual(got, []string{"Exercise"}) {
		t.Errorf("after space: got %v, want [Exercise]", got)
	}

	send(m, space)
	if got := m.tr.CompletedTasksOn("2024-01-10"); len(got) != 0 {
		t.Errorf("after second space: got %v, want []", got)
	}
}

func TestAddTaskFlow(t *testing.T) {
	m := newTestModel(t)

	send(m, keys("a"))
	if m.screen != screenInput || m.kind != inputAdd {
		t.Fatalf("screen: got %v/%v, want add input", m.screen, m.kind)
	}
	send(m, keys("Walk the dog"), enter)

	if m.screen != screenList {
		t.Errorf("screen after enter: got %v, want list", m.screen)
	}
	if m.tr.Len() != 4 || m.cursor != 3 {
		t.Fatalf("Len/cursor: got %d/%d, want 4/3", m.tr.Len(), m.cursor)
	}
	if name := m.tr.Document().Tasks[3].Name; name != "Walk the dog" {
		t.Errorf("new task name: got %q", name)
	}
}

func TestAddBlankTaskIsNoop(t *testing.T) {
	m := newTestModel(t)

	send(m, keys("a"), keys("   "), enter)
	if m.tr.Len() != 3 {
		t.Errorf("Len: got %d, want 3", m.tr.Len())
	}
	if m.isErr || m.message == "" {
		t.Errorf("message: got %q (err=%v), want a notice", m.message, m.isErr)
	}
}

func TestEscCancelsInput(t *testing.T) {
	m := newTestModel(t)

	send(m, keys("a"), keys("Nope"), esc)
	if m.screen != screenList || m.tr.Len() != 3 {
		t.Errorf("esc: screen %v, Len %d", m.screen, m.tr.Len())
	}
	if m.input.Value() != "" {
		t.Errorf("input not cleared: %q", m.input.Value())
	}
}

func TestRenameFlow(t *testing.T) {
	m := newTestModel(t)

	send(m, keys("e"))
	if got := m.input.Value(); got != "Wake" {
		t.Fatalf("prefilled name: got %q, want Wake", got)
	}
	send(m, keys(" early"), enter)
	if name := m.tr.Document().Tasks[0].Name; name != "Wake early" {
		t.Errorf("renamed: got %q, want %q", name, "Wake early")
	}
}

func TestNoteFlow(t *testing.T) {
	m := newTestModel(t)

	send(m, keys("n"), keys("6am"), enter)
	if note, _ := m.tr.Note(0, "2024-01-10"); note != "6am" {
		t.Errorf("note: got %q, want 6am", note)
	}
	if !strings.Contains(m.View(), "6am") {
		t.Error("note not shown in the task list")
	}
}

func TestNoteEditorKeepsLongMultilineNote(t *testing.T) {
	m := newTestModel(t)
	long := "line one\nline two\n" + strings.Repeat("x", 250)
	if err := m.tr.SetNote(0, "2024-01-10", long); err != nil {
		t.Fatalf("SetNote failed: %v", err)
	}

	send(m, keys("n"))
	if got := m.note.Value(); got != long {
		t.Fatalf("editor value: got %d bytes, want %d", len(got), len(long))
	}
	send(m, enter)
	if note, _ := m.tr.Note(0, "2024-01-10"); note != long {
		t.Errorf("note changed by opening and saving: got %q", note)
	}
	if view := m.View(); !strings.Contains(view, "line one ...") {
		t.Errorf("row should preview the first line:\n%s", view)
	}
}

func TestNoteEditorNewLine(t *testing.T) {
	m := newTestModel(t)

	send(m, keys("n"), keys("first"), tea.KeyMsg{Type: tea.KeyCtrlJ}, keys("second"), enter)
	if note, _ := m.tr.Note(0, "2024-01-10"); note != "first\nsecond" {
		t.Errorf("note: got %q, want %q", note, "first\nsecond")
	}
	if m.screen != screenList {
		t.Errorf("screen: got %v, want list", m.screen)
	}
}

func TestNotePreview(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"single", "single"},
		{"first\nsecond", "first ..."},
		{"trailing\n", "trailing"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := notePreview(tt.in); got != tt.want {
			t.Errorf("notePreview(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDeleteNeedsConfirmation(t *testing.T) {
	m := newTestModel(t)

	send(m, keys("d"))
	if m.screen != screenConfirmDelete {
		t.Fatalf("screen: got %v, want confirm", m.screen)
	}
	if !strings.Contains(m.View(), `Delete "Wake"?`) {
		t.Errorf("confirm prompt missing:\n%s", m.View())
	}
	send(m, keys("n"))
	if m.tr.Len() != 3 {
		t.Fatalf("declined delete removed a task")
	}

	send(m, keys("d"), keys("y"))
	if m.tr.Len() != 2 || m.tr.Document().Tasks[0].Name != "Exercise" {
		t.Errorf("after delete: %+v", m.tr.Document().Tasks)
	}
}

func TestDeleteLastMovesCursor(t *testing.T) {
	m := newTestModel(t)

	send(m, down, down, keys("d"), keys("y"))
	if m.cursor != 1 {
		t.Errorf("cursor: got %d, want 1", m.cursor)
	}
}

func TestInvalidStartDateKeepsOldValue(t *testing.T) {
	m := newTestModel(t)

	send(m, keys("s"))
	m.input.SetValue("2024/02/01")
	send(m, enter)

	if m.tr.StartDate() != "2024-01-01" {
		t.Errorf("StartDate: got %q, want unchanged", m.tr.StartDate())
	}
	if m.screen != screenInput || !m.isErr {
		t.Errorf("expected input to stay open with an error, screen=%v err=%v", m.screen, m.isErr)
	}
	if !strings.Contains(m.View(), "expected YYYY-MM-DD") {
		t.Errorf("error not shown:\n%s", m.View())
	}

	m.input.SetValue("2024-01-08")
	send(m, enter)
	if m.tr.StartDate() != "2024-01-08" || m.tr.DayCountToday() != 3 {
		t.Errorf("StartDate/day: got %s/%d", m.tr.StartDate(), m.tr.DayCountToday())
	}
	if m.screen != screenList {
		t.Errorf("screen: got %v, want list", m.screen)
	}
}

func TestCalendarNavigation(t *testing.T) {
	m := newTestModel(t)

	send(m, keys("c"))
	if m.screen != screenCalendar || habit.FormatDate(m.selected) != "2024-01-10" {
		t.Fatalf("calendar: screen %v, selected %s", m.screen, habit.FormatDate(m.selected))
	}
	if view := m.View(); !strings.Contains(view, "January 2024") || !strings.Contains(view, "5*") {
		t.Errorf("calendar view missing month or highlight:\n%s", view)
	}

	send(m, right)
	if got := habit.FormatDate(m.selected); got != "2024-01-11" {
		t.Errorf("after right: got %s", got)
	}
	send(m, keys("["))
	if got := habit.FormatDate(m.selected); got != "2023-12-11" {
		t.Errorf("after [: got %s", got)
	}
	send(m, keys("t"))
	if got := habit.FormatDate(m.selected); got != "2024-01-10" {
		t.Errorf("after t: got %s", got)
	}

	for i := 0; i < 5; i++ {
		send(m, tea.KeyMsg{Type: tea.KeyLeft})
	}
	if view := m.View(); !strings.Contains(view, "Completed on 2024-01-05") || !strings.Contains(view, "Read") {
		t.Errorf("selected day summary missing:\n%s", view)
	}

	send(m, esc)
	if m.screen != screenList {
		t.Errorf("esc: got screen %v, want list", m.screen)
	}
}

func TestHelpReturnsToPreviousScreen(t *testing.T) {
	m := newTestModel(t)

	send(m, keys("?"))
	if m.screen != screenHelp || !strings.Contains(m.View(), "Keyboard Shortcuts") {
		t.Fatalf("help not shown")
	}
	send(m, keys("x"))
	if m.screen != screenList {
		t.Errorf("screen: got %v, want list", m.screen)
	}

	send(m, keys("c"), keys("?"), keys("x"))
	if m.screen != screenCalendar {
		t.Errorf("screen: got %v, want calendar", m.screen)
	}
}

func TestQuit(t *testing.T) {
	m := newTestModel(t)
	_, cmd := m.Update(keys("q"))
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestRowGap(t *testing.T) {
	tests := []struct {
		size int
		want int
	}{
		{8, 0},
		{16, 0},
		{20, 1},
		{27, 1},
		{28, 2},
		{36, 2},
	}
	m := newTestModel(t)
	for _, tt := range tests {
		m.cfg.FontSize = tt.size
		if got := m.rowGap(); got != tt.want {
			t.Errorf("rowGap(font %d) = %d, want %d", tt.size, got, tt.want)
		}
	}
}

func TestShiftMonth(t *testing.T) {
	tests := []struct {
		in    string
		delta int
		want  string
	}{
		{"2024-03-31", -1, "2024-02-29"},
		{"2024-01-31", 1, "2024-02-29"},
		{"2024-01-15", -1, "2023-12-15"},
		{"2023-12-31", 1, "2024-01-31"},
	}
	for _, tt := range tests {
		d, _ := habit.ParseDate(tt.in)
		if got := habit.FormatDate(shiftMonth(d, tt.delta)); got != tt.want {
			t.Errorf("shiftMonth(%s, %d) = %s, want %s", tt.in, tt.delta, got, tt.want)
		}
	}
}

func TestRenderMonth(t *testing.T) {
	m := newTestModel(t)
	month := m.tr.Month(2024, time.January)

	out := RenderMonth(month, "")
	for _, want := range []string{"January 2024", weekdayHeader, " 5*", "31"} {
		if !strings.Contains(out, want) {
			t.Errorf("RenderMonth missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, " 6*") {
		t.Errorf("unexpected highlight on the 6th:\n%s", out)
	}
	// Title, header and five weeks.
	if lines := strings.Count(out, "\n"); lines != 7 {
		t.Errorf("line count: got %d, want 7", lines)
	}

	summary := CompletedSummary(month)
	if !reflect.DeepEqual(summary, []string{"2024-01-05: Read"}) {
		t.Errorf("CompletedSummary: got %v", summary)
	}
}
