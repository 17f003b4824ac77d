package cmd

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/natefinch/atomic"

	"github.com/nibzard/clockin/internal/config"
	"github.com/nibzard/clockin/internal/habit"
	"github.com/nibzard/clockin/internal/tracker"
)

// doctorCommand checks the configuration and data file validity.
func doctorCommand(cws *config.ConfigWithSources, args []string) error {
	flags := flag.NewFlagSet("clockin doctor", flag.ContinueOnError)
	flags.SetOutput(stderr)
	verbose := flags.Bool("v", false, "Verbose output")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", flags.Args())
	}
	cfg := cws.Config

	fmt.Fprintln(stdout, "clockin doctor")
	fmt.Fprintln(stdout, "==============")
	fmt.Fprintln(stdout)

	allOK := true

	// Config
	fmt.Fprintln(stdout, "Config:")
	if file := cws.ActiveFile(); file != "" {
		fmt.Fprintf(stdout, "  ✅ Config file: %s\n", strings.Join(cws.Files, ", "))
	} else {
		fmt.Fprintln(stdout, "  ⚠️  No config file (using defaults; run clockin init to create one)")
	}
	fmt.Fprintf(stdout, "  ✅ Font size: %d\n", cfg.FontSize)
	fmt.Fprintf(stdout, "  ✅ Logging: %s (%s)\n", cfg.LogLevel, cfg.LogFormat)
	if len(cfg.SeedTasks) == 0 {
		fmt.Fprintln(stdout, "  ⚠️  Seed tasks: none (new data files start empty)")
	} else {
		fmt.Fprintf(stdout, "  ✅ Seed tasks: %d\n", len(cfg.SeedTasks))
	}
	if *verbose {
		for _, field := range []string{"data_file", "font_size", "seed_tasks", "log_level", "log_format", "log_timestamps", "log_caller"} {
			fmt.Fprintf(stdout, "     %s = %s (%s)\n", field, fieldValue(cfg, field), cws.Sources[field])
		}
	}
	fmt.Fprintln(stdout)

	// Data file
	fmt.Fprintf(stdout, "Data file: %s\n", cfg.DataFile)
	info, err := os.Stat(cfg.DataFile)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		fmt.Fprintf(stdout, "  ⚠️  Not found (will be created with %d seed tasks)\n", len(cfg.SeedTasks))
	case err != nil:
		fmt.Fprintf(stdout, "  ❌ Error: %v\n", err)
		allOK = false
	case info.IsDir():
		fmt.Fprintln(stdout, "  ❌ Error: path is a directory")
		allOK = false
	default:
		fmt.Fprintln(stdout, "  ✅ OK")
		if !checkDataFile(cfg, *verbose) {
			allOK = false
		}
	}
	fmt.Fprintln(stdout)

	// Overall status
	if allOK {
		fmt.Fprintln(stdout, "✅ All checks passed!")
		return nil
	}
	fmt.Fprintln(stdout, "⚠️  Some checks failed. clockin will refuse to modify an invalid data file.")
	return fmt.Errorf("doctor checks failed")
}

// checkDataFile validates an existing data file and, in verbose mode, prints
// its contents.
func checkDataFile(cfg *config.Config, verbose bool) bool {
	problems, err := habit.Validate(cfg.DataFile)
	if err != nil {
		fmt.Fprintf(stdout, "  ❌ Load error: %v\n", err)
		return false
	}
	if len(problems) > 0 {
		fmt.Fprintln(stdout, "  ❌ Validation failed:")
		for _, p := range problems {
			fmt.Fprintf(stdout, "     - %v\n", p)
		}
		return false
	}
	fmt.Fprintln(stdout, "  ✅ Valid")

	if !verbose {
		return true
	}
	tr, err := tracker.New(habit.NewStore(cfg.DataFile), tracker.WithClock(now))
	if err != nil {
		fmt.Fprintf(stdout, "  ❌ Load error: %v\n", err)
		return false
	}
	fmt.Fprintf(stdout, "  Start date: %s (today is day %d)\n", tr.StartDate(), tr.DayCountToday())
	fmt.Fprintf(stdout, "  Tasks: %d\n", tr.Len())
	for _, task := range tr.Document().Tasks {
		fmt.Fprintf(stdout, "    - %s: %d check-ins, %d notes\n", task.Name, len(task.Completed), len(task.Notes))
	}
	skipped := 0
	for date := range tr.CompletedDates() {
		if _, err := habit.ParseDate(date); err != nil {
			skipped++
		}
	}
	if skipped > 0 {
		fmt.Fprintf(stdout, "  ⚠️  %d completion entries are not YYYY-MM-DD dates and are ignored by the calendar\n", skipped)
	}
	return true
}

func fieldValue(cfg *config.Config, field string) string {
	switch field {
	case "data_file":
		return cfg.DataFile
	case "font_size":
		return strconv.Itoa(cfg.FontSize)
	case "seed_tasks":
		return strconv.Quote(strings.Join(cfg.SeedTasks, ", "))
	case "log_level":
		return cfg.LogLevel
	case "log_format":
		return cfg.LogFormat
	case "log_timestamps":
		return strconv.FormatBool(cfg.LogTimestamps)
	case "log_caller":
		return strconv.FormatBool(cfg.LogCaller)
	}
	return ""
}

// initCommand writes an example clockin.toml to the working directory and
// creates the data file if it does not exist.
func initCommand(cfg *config.Config, args []string) error {
	flags := flag.NewFlagSet("clockin init", flag.ContinueOnError)
	flags.SetOutput(stderr)
	force := flags.Bool("force", false, "Overwrite an existing clockin.toml")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", flags.Args())
	}

	configPath := filepath.Join(cfg.WorkDir, "clockin.toml")
	_, statErr := os.Stat(configPath)
	switch {
	case statErr == nil && !*force:
		fmt.Fprintf(stdout, "Skipping %s (already exists, use -force to overwrite)\n", configPath)
	case statErr != nil && !errors.Is(statErr, fs.ErrNotExist):
		return fmt.Errorf("checking %s: %w", configPath, statErr)
	default:
		if err := atomic.WriteFile(configPath, strings.NewReader(config.ExampleConfig())); err != nil {
			return fmt.Errorf("writing %s: %w", configPath, err)
		}
		if err := os.Chmod(configPath, 0644); err != nil {
			return fmt.Errorf("chmod %s: %w", configPath, err)
		}
		fmt.Fprintf(stdout, "Wrote %s\n", configPath)
	}

	_, statErr = os.Stat(cfg.DataFile)
	existed := statErr == nil
	tr, err := openTracker(cfg)
	if err != nil {
		return err
	}
	if existed {
		fmt.Fprintf(stdout, "Data file exists: %s (%d tasks)\n", cfg.DataFile, tr.Len())
	} else {
		fmt.Fprintf(stdout, "Created %s with %d tasks starting %s\n", cfg.DataFile, tr.Len(), tr.StartDate())
	}
	return nil
}
