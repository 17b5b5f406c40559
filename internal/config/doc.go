// Package config loads the bridge client configuration.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/bridge/config.toml (default)
//  3. If the config file doesn't exist, fall back to defaults
//  4. If the file exists but fields are missing/empty, use defaults
//
// Command-line flags are applied by the caller after Load.
//
// # Default Values
//
//   - Backend origin: http://127.0.0.1:5000
//   - Web origin: same as the backend origin
//   - Poll interval: 1000 ms
//   - Items per page: 5
//   - Download directory: ~/Downloads/bridge
//   - Log file: ~/.local/state/bridge/bridge.log
//
// # TOML Format
//
//	backend_origin = "https://api.bridge.example"
//	web_origin = "https://bridge.example"
//	poll_interval_ms = 1000
//	items_per_page = 5
//	download_dir = "~/Downloads/bridge"
//	log_file = "~/.local/state/bridge/bridge.log"
//
// Paths beginning with ~ are expanded to the user's home directory and made
// absolute.
package config
