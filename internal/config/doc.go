// Package config handles loading and parsing Tally configuration files.
//
// # Overview
//
// This package reads a small TOML file that tells Tally where the
// study-session API lives, which session to track and where to keep local
// data (the pending-event store and the log file).
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/tally/config.toml (default)
//  3. If the config file doesn't exist, fall back to hardcoded defaults
//  4. If the file exists but fields are missing/empty, use defaults
//
// # Default Values
//
//   - Config file: ~/.config/tally/config.toml
//   - API: http://127.0.0.1:8080
//   - Session: active
//   - Store backend: sqlite
//   - Data directory: ~/.local/share/tally
//   - Request timeout: 10 seconds
//   - Log file: <data_dir>/tally.log
//
// # TOML Format
//
//	api_url = "https://study.example.com"
//	api_token = "..."
//	session = "active"
//	store = "sqlite"          # or "yaml"
//	data_dir = "~/.local/share/tally"
//	request_timeout_seconds = 10
//
// All fields are optional. Tilde expansion is performed on data_dir.
//
// # Error Handling
//
// Load returns errors for:
//   - Path expansion failures (e.g., cannot determine home directory)
//   - File read errors (except os.ErrNotExist, which triggers defaults)
//   - TOML parsing errors and unknown store backends
//
// Missing config files are NOT an error, so Tally works out of the box
// against a local API.
package config
