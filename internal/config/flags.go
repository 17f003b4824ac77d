package config

import "flag"

// flagToSource maps flag names to config field names.
var flagToSource = map[string]string{
	"data":           "data_file",
	"font-size":      "font_size",
	"log-level":      "log_level",
	"log-format":     "log_format",
	"log-timestamps": "log_timestamps",
	"log-caller":     "log_caller",
}

// parseFlags defines the global flags on fs and parses args.
// Flags default to the values already in cfg, so unset flags change nothing.
// If sources is non-nil, it tracks which flags were set.
func parseFlags(cfg *Config, fs *flag.FlagSet, args []string, sources map[string]ConfigSource) error {
	if fs == nil {
		fs = flag.NewFlagSet("clockin", flag.ContinueOnError)
	}

	// Paths
	fs.StringVar(&cfg.DataFile, "data", cfg.DataFile, "Path to data file")

	// Display
	fs.IntVar(&cfg.FontSize, "font-size", cfg.FontSize, "Font size preference (8-36)")

	// Logging
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format (text, json, logfmt)")
	fs.BoolVar(&cfg.LogTimestamps, "log-timestamps", cfg.LogTimestamps, "Show timestamps in logs")
	fs.BoolVar(&cfg.LogCaller, "log-caller", cfg.LogCaller, "Show caller location in logs")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if sources != nil {
		fs.Visit(func(f *flag.Flag) {
			if fieldName, ok := flagToSource[f.Name]; ok {
				sources[fieldName] = SourceFlag
			}
		})
	}
	return nil
}
