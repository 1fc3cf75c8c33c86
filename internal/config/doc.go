// SPDX-License-Identifier: MPL-2.0

// Package config loads the yamlbook configuration using Viper with CUE as the
// file format.
//
// The file is looked up at the --config path, then at config.cue in the user
// config directory ($XDG_CONFIG_HOME/yamlbook on Linux, ~/Library/Application
// Support/yamlbook on macOS, %APPDATA%\yamlbook on Windows), then at
// ./yamlbook.cue. Files are validated against the embedded schema
// (config_schema.cue) before they reach Viper. Only presentation and watch
// settings are configurable.
package config
