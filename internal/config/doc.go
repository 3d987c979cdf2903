// Package config provides configuration management for ultimate-tab.
//
// This package handles:
//   - Loading and saving settings from JSON files
//   - Default configuration values
//   - Overrides from ULTIMATE_TAB_* environment variables
//
// # Default Settings
//
//	settings := config.DefaultSettings()
//	// 5s fast fetch, then up to 3 headless renders of 30s each
//	// 2 minute budget for the whole acquisition
//
// # Loading from File
//
//	settings, err := config.Load("/path/to/config.json")
//	if err != nil {
//	    // Uses defaults if file doesn't exist
//	}
//	settings.ApplyEnv()
//
// # Configuration Options
//
// Settings includes options for:
//   - Fast fetch timeout and User-Agent
//   - Render retries, per-attempt timeout and retry cooldown
//   - Overall time budget and minimum page length
//   - Batch concurrency and result cache size
//   - Allowed hosts
//   - Log level and format
package config
