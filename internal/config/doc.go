// SPDX-License-Identifier: MPL-2.0

// Package config handles application configuration using Viper with CUE as the file format.
//
// Configuration is loaded from ~/.config/jarsmith/config.cue (or XDG equivalent on Linux,
// ~/Library/Application Support/jarsmith/config.cue on macOS, %APPDATA%\jarsmith\config.cue
// on Windows), with a config.cue in the current directory as fallback. Config values supply
// defaults for the matching command-line flags: the base jar path, the package index URL,
// system site-package visibility, and verbosity.
//
// Configuration validation is performed against a CUE schema (config_schema.cue) to ensure
// type safety and provide clear error messages for invalid configurations.
package config
