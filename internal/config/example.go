package config

// ExampleConfig returns an example configuration showing all available options.
func ExampleConfig() string {
	return `# clockin configuration file
# Values can be overridden by CLOCKIN_* environment variables or CLI flags

# Data file (relative to the working directory; supports ~ and $VAR expansion)
data_file = "clock_in_data.json"

# Font size preference for the task list (8-36)
font_size = 16

# Tasks written to a new data file
seed_tasks = [
  "醒了立刻起床",
  "锻炼身体一分钟",
  "阅读一页书",
]

# Logging (written to stderr)
log_level = "info"      # debug, info, warn, error
log_format = "text"     # text, json, logfmt
log_timestamps = false
log_caller = false
`
}
