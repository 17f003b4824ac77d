// Package cmd implements the CLI command structure for clockin.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nibzard/clockin/internal/config"
	"github.com/nibzard/clockin/internal/habit"
	"github.com/nibzard/clockin/internal/logging"
	"github.com/nibzard/clockin/internal/tracker"
	"github.com/nibzard/clockin/internal/ui"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Output streams and clock, replaced in tests.
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
	now              = time.Now
)

// Run executes the clockin CLI.
func Run(ctx context.Context, args []string) error {
	// Create a flag set for global options
	fs := flag.NewFlagSet("clockin", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		printUsage(fs, stderr)
	}
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")
	fs.BoolVar(showVersion, "v", false, "Show version")

	// Global flags
	cws, err := config.LoadWithSources(fs, args)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg := cws.Config
	if *help {
		printUsage(fs, stdout)
		return nil
	}
	if *showVersion {
		return versionCommand()
	}

	// Determine the subcommand
	subcommand := "status"
	remainingArgs := fs.Args()
	if len(remainingArgs) > 0 {
		subcommand = remainingArgs[0]
		remainingArgs = remainingArgs[1:]
	}

	switch subcommand {
	case "status", "ls":
		return statusCommand(cfg, remainingArgs)
	case "add":
		return addCommand(cfg, remainingArgs)
	case "rm", "delete":
		return rmCommand(cfg, remainingArgs)
	case "rename":
		return renameCommand(cfg, remainingArgs)
	case "check":
		return checkCommand(cfg, remainingArgs)
	case "note":
		return noteCommand(cfg, remainingArgs)
	case "start":
		return startCommand(cfg, remainingArgs)
	case "day":
		return dayCommand(cfg, remainingArgs)
	case "calendar", "cal":
		return calendarCommand(cfg, remainingArgs)
	case "tui":
		return tuiCommand(ctx, cfg, remainingArgs)
	case "doctor":
		return doctorCommand(cws, remainingArgs)
	case "init":
		return initCommand(cfg, remainingArgs)
	case "version":
		return versionCommand()
	case "help":
		printUsage(fs, stdout)
		return nil
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", subcommand)
		printUsage(fs, stderr)
		return fmt.Errorf("unknown command: %s", subcommand)
	}
}

// newLogger builds the stderr logger from the logging settings in cfg.
func newLogger(cfg *config.Config) *log.Logger {
	return logging.NewFromConfig(stderr, cfg.LogLevel, cfg.LogFormat, cfg.LogTimestamps, cfg.LogCaller)
}

// openTracker loads the configured data file, creating it with the seed
// tasks if it does not exist.
func openTracker(cfg *config.Config) (*tracker.Tracker, error) {
	logger := newLogger(cfg)
	store := habit.NewStore(cfg.DataFile,
		habit.WithSeedTasks(cfg.SeedTasks),
		habit.WithStoreClock(now),
		habit.WithStoreLogger(logger),
	)
	return tracker.New(store, tracker.WithClock(now), tracker.WithLogger(logger))
}

// parseInterspersed parses flags that may appear before, between or after
// positional arguments. Arguments after "--" are always positional.
func parseInterspersed(fs *flag.FlagSet, args []string) ([]string, error) {
	var tail []string
	if i := slices.Index(args, "--"); i >= 0 {
		args, tail = args[:i], args[i+1:]
	}

	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		args = fs.Args()
		if len(args) == 0 {
			break
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
	return append(positional, tail...), nil
}

// tuiCommand launches the TUI.
func tuiCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("clockin tui", flag.ContinueOnError)
	fs.SetOutput(stderr)
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
	return ui.RunTUI(ctx, cfg, tr)
}

// versionCommand prints version information.
func versionCommand() error {
	fmt.Fprintf(stdout, "clockin version %s\n", Version)
	return nil
}

// printUsage prints the usage message.
func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "clockin - daily habit check-in tracker")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  clockin [global options] [command] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  status [-date D]             Show the day count and today's tasks (default command)")
	fmt.Fprintln(w, "  add <name>                   Add a task")
	fmt.Fprintln(w, "  rm <n>                       Delete task n")
	fmt.Fprintln(w, "  rename <n> <name>            Rename task n")
	fmt.Fprintln(w, "  check <n> [-date D] [-undo]  Mark task n done (or not done) on a date")
	fmt.Fprintln(w, "  note <n> [-date D] <text>    Set the note for task n on a date (empty text clears it)")
	fmt.Fprintln(w, "  start <YYYY-MM-DD>           Change the start date")
	fmt.Fprintln(w, "  day [YYYY-MM-DD]             List the tasks completed on a date")
	fmt.Fprintln(w, "  calendar [-month YYYY-MM]    Show a month with completed days marked")
	fmt.Fprintln(w, "  tui                          Launch terminal UI")
	fmt.Fprintln(w, "  doctor [-v]                  Check config and data file validity")
	fmt.Fprintln(w, "  init [-force]                Write an example clockin.toml and create the data file")
	fmt.Fprintln(w, "  version                      Show version information")
	fmt.Fprintln(w, "  help                         Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Task numbers start at 1. Dates are YYYY-MM-DD and default to today.")
	fmt.Fprintln(w, "Use -- before a task name or note text that starts with a dash.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
}
