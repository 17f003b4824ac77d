package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/nibzard/clockin/internal/utils"
)

// loadFromEnv overrides config from CLOCKIN_* environment variables.
// If sources is non-nil, it tracks the source of each value.
func loadFromEnv(cfg *Config, sources map[string]ConfigSource) error {
	setEnv := func(field string) {
		if sources != nil {
			sources[field] = SourceEnv
		}
	}

	if v := os.Getenv("CLOCKIN_DATA"); v != "" {
		cfg.DataFile = v
		setEnv("data_file")
	}
	if v := os.Getenv("CLOCKIN_FONT_SIZE"); v != "" {
		i, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("CLOCKIN_FONT_SIZE %q: not a number", v)
		}
		cfg.FontSize = i
		setEnv("font_size")
	}
	if v := os.Getenv("CLOCKIN_SEED_TASKS"); v != "" {
		cfg.SeedTasks = utils.SplitAndTrim(v, ",")
		setEnv("seed_tasks")
	}

	// Logging configuration
	if v := os.Getenv("CLOCKIN_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
		setEnv("log_level")
	}
	if v := os.Getenv("CLOCKIN_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
		setEnv("log_format")
	}
	if v := os.Getenv("CLOCKIN_LOG_TIMESTAMPS"); v != "" {
		cfg.LogTimestamps = utils.ParseBool(v)
		setEnv("log_timestamps")
	}
	if v := os.Getenv("CLOCKIN_LOG_CALLER"); v != "" {
		cfg.LogCaller = utils.ParseBool(v)
		setEnv("log_caller")
	}
	return nil
}
