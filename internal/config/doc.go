// Package config handles configuration loading and defaults.
//
// Configuration is loaded from multiple sources in priority order:
// 1. Built-in defaults
// 2. User config file (~/.clockin/clockin.toml or OS-specific config directory)
// 3. Project config file (clockin.toml or .clockin.toml in the working directory)
// 4. Environment variables (CLOCKIN_*)
// 5. CLI flags
//
// Each level overrides the previous one, so CLI flags take precedence.
//
// User-level config locations:
// - ~/.clockin/clockin.toml (preferred)
// - Windows: %APPDATA%\clockin\clockin.toml
// - macOS: ~/Library/Application Support/clockin/clockin.toml
// - Linux/BSD: $XDG_CONFIG_HOME/clockin/clockin.toml or ~/.config/clockin/clockin.toml
//
// Project-level config locations (overrides user config):
// - ./clockin.toml (preferred)
// - ./.clockin.toml
package config
