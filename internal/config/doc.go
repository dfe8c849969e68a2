// SPDX-License-Identifier: MPL-2.0

// Package config handles launcher configuration using Viper with CUE as the file format.
//
// Configuration is loaded from $CYBERMORPH_CONFIG, or from
// ~/.config/cybermorph/config.cue (XDG equivalent on Linux,
// ~/Library/Application Support/cybermorph/config.cue on macOS,
// %APPDATA%\cybermorph\config.cue on Windows). Every key can be overridden by
// a CYBERMORPH_-prefixed environment variable, with "." in nested keys
// replaced by "_" (CYBERMORPH_UI_VERBOSE).
//
// The file is validated against an embedded CUE schema (config_schema.cue).
package config
