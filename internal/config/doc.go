// Package config loads plakview's TOML configuration file.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/plakview/config.toml (default)
//  3. If the config file doesn't exist, fall back to hardcoded defaults
//  4. If the file exists but fields are missing/empty, use defaults
//
// Command line flags and PLAKVIEW_* environment variables are layered on top
// by the cmd package; this package only knows about the file.
//
// # Default Values
//
//   - Config file: ~/.config/plakview/config.toml
//   - API URL: none (the persisted state file or the config screen provides it)
//   - Page size: 10
//   - Request timeout: 30s ("0" disables it)
//   - Log file: ~/.local/state/plakview/plakview.log
//   - Log level: info
//   - Theme: Nightfox
//   - State file: ~/.config/plakview/state.toml
//   - Download directory: ~/Downloads
//
// # TOML Format
//
//	api_url = "http://localhost:3010"
//	page_size = 25
//	request_timeout = "10s"
//	log_file = "~/.cache/plakview.log"
//	log_level = "debug"
//	theme = "Kanagawa"
//	state_file = "~/.config/plakview/state.toml"
//	download_dir = "~/Downloads/plakar"
//
// Every field is optional. Tilde expansion is performed on paths and relative
// paths are made absolute.
//
// # Error Handling
//
// Load returns errors for:
//   - Path expansion failures (e.g., cannot determine home directory)
//   - File read errors (except os.ErrNotExist, which triggers defaults)
//   - TOML parsing errors, including an unparsable request_timeout
//
// Missing config files are NOT an error.
package config
