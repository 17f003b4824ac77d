package habit

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func fixedClock(date string) func() time.Time {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return t.Add(9 * time.Hour) }
}

func TestLoadCreatesDefaultDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	store := NewStore(path, WithStoreClock(fixedClock("2024-03-05")))

	doc, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if doc.StartDate != "2024-03-05" {
		t.Errorf("StartDate: got %q, want 2024-03-05", doc.StartDate)
	}
	if len(doc.Tasks) != 3 {
		t.Fatalf("Tasks count: got %d, want 3", len(doc.Tasks))
	}
	for i, task := range doc.Tasks {
		if task.Name != DefaultSeedTasks()[i] {
			t.Errorf("Tasks[%d].Name: got %q, want %q", i, task.Name, DefaultSeedTasks()[i])
		}
		if len(task.Completed) != 0 || len(task.Notes) != 0 {
			t.Errorf("Tasks[%d] should start empty, got %+v", i, task)
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("data file not created: %v", err)
	}
	if info.Mode().Perm() != 0644 {
		t.Errorf("file mode: got %v, want 0644", info.Mode().Perm())
	}
}

func TestLoadCreatesMissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", DefaultFile)
	store := NewStore(path, WithSeedTasks([]string{"Only"}))

	doc, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(doc.Tasks) != 1 || doc.Tasks[0].Name != "Only" {
		t.Errorf("Tasks: got %+v, want one task named Only", doc.Tasks)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("data file not created: %v", err)
	}
}

func TestLoadAndSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	store := NewStore(path)

	original := &Document{
		StartDate: "2024-01-01",
		Tasks: []Task{
			{
				Name:      "醒了立刻起床",
				Completed: []string{"2024-01-02", "2024-01-01"},
				Notes:     map[string]string{"2024-01-02": "六点 <早>"},
			},
			NewTask("Read"),
		},
	}

	if err := store.Save(original); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if !reflect.DeepEqual(loaded, original) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", loaded, original)
	}
}

func TestSaveFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	store := NewStore(path)

	doc := &Document{
		StartDate: "2024-01-01",
		Tasks:     []Task{{Name: "阅读一页书", Notes: map[string]string{"2024-01-01": "a & b"}}},
	}
	if err := store.Save(doc); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	text := string(data)

	if !strings.Contains(text, "阅读一页书") {
		t.Errorf("non-ASCII name was escaped:\n%s", text)
	}
	if !strings.Contains(text, "a & b") {
		t.Errorf("HTML characters were escaped:\n%s", text)
	}
	if !strings.HasSuffix(text, "}\n") {
		t.Errorf("expected trailing newline, got %q", text[len(text)-3:])
	}
	if !strings.Contains(text, "\n  \"start_date\": \"2024-01-01\"") {
		t.Errorf("expected 2-space indentation:\n%s", text)
	}
	if !strings.Contains(text, "\"completed\": []") {
		t.Errorf("missing completed list should be written as []:\n%s", text)
	}
}

func TestLoadDefaultFillsMissingFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	content := `{
  "start_date": "2024-01-01",
  "tasks": [
    {"name": "Legacy", "days": 0, "completed": ["2024-01-01"]},
    {"name": "Bare"}
  ]
}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	doc, err := NewStore(path).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if doc.Tasks[0].Notes == nil {
		t.Error("Tasks[0].Notes should be filled")
	}
	if doc.Tasks[1].Completed == nil || doc.Tasks[1].Notes == nil {
		t.Errorf("Tasks[1] should be filled, got %+v", doc.Tasks[1])
	}
	if !doc.Tasks[0].IsCompletedOn("2024-01-01") {
		t.Error("Tasks[0] should keep its completion")
	}
}

func TestLoadToleratesMalformedCompletedDates(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	content := `{"start_date": "2024-01-01", "tasks": [{"name": "A", "completed": ["yesterday", "2024-01-01"]}]}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	doc, err := NewStore(path).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got := doc.Tasks[0].Completed; len(got) != 2 {
		t.Errorf("Completed: got %v, want both entries kept", got)
	}
}

func TestSeedFileKeepsOriginalNames(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	if _, err := NewStore(path, WithStoreClock(fixedClock("2024-03-05"))).Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	for _, name := range []string{"醒了立刻起床", "锻炼身体一分钟", "阅读一页书"} {
		if !strings.Contains(string(data), `"name": "`+name+`"`) {
			t.Errorf("seed file missing %q:\n%s", name, data)
		}
	}
}

func TestLoadDropsRepeatedCompletedDates(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	content := `{"start_date": "2024-01-01", "tasks": [{"name": "A", "completed": ["2024-01-03", "2024-01-01", "2024-01-03", "2024-01-01"]}]}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	doc, err := NewStore(path).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got := doc.Tasks[0].Completed; !reflect.DeepEqual(got, []string{"2024-01-03", "2024-01-01"}) {
		t.Errorf("Completed: got %v, want [2024-01-03 2024-01-01]", got)
	}
}

func TestLoadCorrupt(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantPath string
	}{
		{
			name:    "invalid json",
			content: `{"start_date": "2024-01-01", "tasks": [`,
		},
		{
			name:    "not an object",
			content: `[]`,
		},
		{
			name:     "missing start_date",
			content:  `{"tasks": []}`,
			wantPath: "",
		},
		{
			name:     "malformed start_date",
			content:  `{"start_date": "01/02/2024", "tasks": []}`,
			wantPath: "start_date",
		},
		{
			name:     "tasks not an array",
			content:  `{"start_date": "2024-01-01", "tasks": {}}`,
			wantPath: "tasks",
		},
		{
			name:     "task missing name",
			content:  `{"start_date": "2024-01-01", "tasks": [{"completed": []}]}`,
			wantPath: "tasks[0]",
		},
		{
			name:     "task with empty name",
			content:  `{"start_date": "2024-01-01", "tasks": [{"name": "ok"}, {"name": ""}]}`,
			wantPath: "tasks[1].name",
		},
		{
			name:     "completed entry not a string",
			content:  `{"start_date": "2024-01-01", "tasks": [{"name": "A", "completed": [20240101]}]}`,
			wantPath: "tasks[0].completed[0]",
		},
		{
			name:     "note not a string",
			content:  `{"start_date": "2024-01-01", "tasks": [{"name": "A", "notes": {"2024-01-01": 3}}]}`,
			wantPath: "tasks[0].notes.2024-01-01",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), DefaultFile)
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatalf("WriteFile failed: %v", err)
			}

			_, err := NewStore(path).Load()
			if !errors.Is(err, ErrDataCorrupt) {
				t.Fatalf("Load error: got %v, want ErrDataCorrupt", err)
			}
			var ce *CorruptError
			if !errors.As(err, &ce) {
				t.Fatalf("expected *CorruptError, got %T", err)
			}
			if ce.Path != path {
				t.Errorf("Path: got %q, want %q", ce.Path, path)
			}
			if tt.wantPath != "" {
				found := false
				for _, p := range ce.Problems {
					var ve *ValidationError
					if errors.As(p, &ve) && ve.Path == tt.wantPath {
						found = true
					}
				}
				if !found {
					t.Errorf("no problem reported at %q: %v", tt.wantPath, ce.Problems)
				}
			}

			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("ReadFile failed: %v", err)
			}
			if string(data) != tt.content {
				t.Error("corrupt file was modified")
			}
		})
	}
}

func TestLoadAllowsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	content := `{"start_date": "2024-01-01", "theme": "dark", "tasks": [{"name": "A", "color": "red"}]}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if _, err := NewStore(path).Load(); err != nil {
		t.Errorf("Load failed: %v", err)
	}
}

func TestLoadReadError(t *testing.T) {
	dir := t.TempDir()
	_, err := NewStore(dir).Load()
	if err == nil {
		t.Fatal("expected error loading a directory")
	}
	if errors.Is(err, ErrDataCorrupt) {
		t.Errorf("read errors should not be reported as corrupt: %v", err)
	}
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.json")
	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(good, []byte(`{"start_date": "2024-01-01", "tasks": []}`), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(bad, []byte(`{"start_date": 1, "tasks": [{"name": ""}]}`), 0644); err != nil {
		t.Fatal(err)
	}

	problems, err := Validate(good)
	if err != nil {
		t.Fatalf("Validate(good) error: %v", err)
	}
	if len(problems) != 0 {
		t.Errorf("Validate(good): got %v, want no problems", problems)
	}

	problems, err = Validate(bad)
	if err != nil {
		t.Fatalf("Validate(bad) error: %v", err)
	}
	if len(problems) < 2 {
		t.Errorf("Validate(bad): got %v, want at least 2 problems", problems)
	}

	if _, err := Validate(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("Validate(missing) should fail")
	}
}
