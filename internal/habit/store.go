package habit

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/natefinch/atomic"
)

// DefaultFile is the data file name used when none is configured.
const DefaultFile = "clock_in_data.json"

// DefaultSeedTasks are the tasks a new data file starts with.
func DefaultSeedTasks() []string {
	return []string{
		"醒了立刻起床",
		"锻炼身体一分钟",
		"阅读一页书",
	}
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithSeedTasks sets the task names written to a new data file.
func WithSeedTasks(names []string) StoreOption {
	return func(s *Store) {
		s.seeds = names
	}
}

// WithStoreClock sets the clock used for the start date of a new data file.
func WithStoreClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		s.now = now
	}
}

// WithStoreLogger sets the logger.
func WithStoreLogger(logger *log.Logger) StoreOption {
	return func(s *Store) {
		s.logger = logger
	}
}

// Store reads and writes a single data file.
type Store struct {
	path   string
	seeds  []string
	now    func() time.Time
	logger *log.Logger
}

// NewStore returns a store for the data file at path.
func NewStore(path string, opts ...StoreOption) *Store {
	s := &Store{
		path:   path,
		seeds:  DefaultSeedTasks(),
		now:    time.Now,
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the data file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the data file. If the file does not exist, a document with the
// seed tasks starting today is created and saved. An existing file that fails
// validation is returned as a *CorruptError and not modified.
func (s *Store) Load() (*Document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read data file: %w", err)
		}
		doc := NewDocument(s.now(), s.seeds)
		if err := s.Save(doc); err != nil {
			return nil, err
		}
		s.logger.Info("Created data file", "path", s.path, "tasks", len(doc.Tasks))
		return doc, nil
	}

	return decode(s.path, data)
}

// Save writes doc to the data file, replacing it atomically.
func (s *Store) Save(doc *Document) error {
	data, err := Encode(doc)
	if err != nil {
		return err
	}

	_, statErr := os.Stat(s.path)
	created := errors.Is(statErr, fs.ErrNotExist)
	if created {
		if dir := filepath.Dir(s.path); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("create data dir: %w", err)
			}
		}
	}

	if err := atomic.WriteFile(s.path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write data file: %w", err)
	}
	// atomic.WriteFile leaves new files with the temp file's 0600 mode.
	if created {
		if err := os.Chmod(s.path, 0644); err != nil {
			return fmt.Errorf("chmod data file: %w", err)
		}
	}

	s.logger.Debug("Saved data file", "path", s.path, "bytes", len(data))
	return nil
}

// Validate checks the data file at path against the bundled schema without
// decoding it. It is used by diagnostics; Load performs the same checks.
func Validate(path string) ([]error, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read data file: %w", err)
	}
	return validateData(data), nil
}

// Encode renders doc in the on-disk format.
func Encode(doc *Document) ([]byte, error) {
	doc.normalize()
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("marshal data file: %w", err)
	}
	return buf.Bytes(), nil
}

// decode validates and parses raw file contents.
func decode(path string, data []byte) (*Document, error) {
	if problems := validateData(data); len(problems) > 0 {
		return nil, &CorruptError{Path: path, Problems: problems}
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &CorruptError{Path: path, Problems: []error{err}}
	}
	// start_date must parse with DateLayout.
	if _, err := ParseDate(doc.StartDate); err != nil {
		return nil, &CorruptError{Path: path, Problems: []error{
			&ValidationError{Path: "start_date", Err: err},
		}}
	}
	doc.normalize()
	return &doc, nil
}
