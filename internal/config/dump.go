// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

const (
	// FormatCUE renders the configuration in the native file format.
	FormatCUE DumpFormat = "cue"
	// FormatTOML renders the configuration as TOML.
	FormatTOML DumpFormat = "toml"
	// FormatYAML renders the configuration as YAML.
	FormatYAML DumpFormat = "yaml"
)

// ErrUnknownDumpFormat is returned by ParseDumpFormat for unsupported names.
var ErrUnknownDumpFormat = errors.New("unknown dump format")

type (
	// DumpFormat names an output format of Dump.
	DumpFormat string

	// fileView mirrors Config with the debounce as a duration string, the
	// way it is written in a config file.
	fileView struct {
		UI    uiView    `toml:"ui" yaml:"ui"`
		Watch watchView `toml:"watch" yaml:"watch"`
	}

	uiView struct {
		ColorScheme string `toml:"color_scheme" yaml:"color_scheme"`
		Verbose     bool   `toml:"verbose" yaml:"verbose"`
		LogLevel    string `toml:"log_level" yaml:"log_level"`
	}

	watchView struct {
		Debounce    string   `toml:"debounce" yaml:"debounce"`
		ClearScreen bool     `toml:"clear_screen" yaml:"clear_screen"`
		Ignore      []string `toml:"ignore" yaml:"ignore"`
	}
)

// ParseDumpFormat accepts "cue", "toml" and "yaml" in any case.
func ParseDumpFormat(s string) (DumpFormat, error) {
	switch f := DumpFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCUE, FormatTOML, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("%w %q (valid: cue, toml, yaml)", ErrUnknownDumpFormat, s)
	}
}

// Dump renders cfg in the requested format.
func Dump(cfg *Config, format DumpFormat) ([]byte, error) {
	switch format {
	case FormatCUE:
		return []byte(GenerateCUE(cfg)), nil
	case FormatTOML:
		out, err := toml.Marshal(newFileView(cfg))
		if err != nil {
			return nil, fmt.Errorf("failed to encode TOML: %w", err)
		}
		return out, nil
	case FormatYAML:
		out, err := yaml.Marshal(newFileView(cfg))
		if err != nil {
			return nil, fmt.Errorf("failed to encode YAML: %w", err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownDumpFormat, format)
	}
}

func newFileView(cfg *Config) fileView {
	ignore := cfg.Watch.Ignore
	if ignore == nil {
		ignore = []string{}
	}
	return fileView{
		UI: uiView{
			ColorScheme: string(cfg.UI.ColorScheme),
			Verbose:     cfg.UI.Verbose,
			LogLevel:    string(cfg.UI.LogLevel),
		},
		Watch: watchView{
			Debounce:    cfg.Watch.Debounce.String(),
			ClearScreen: cfg.Watch.ClearScreen,
			Ignore:      ignore,
		},
	}
}

// GenerateCUE generates a CUE representation of the configuration that
// loads back into an equal Config.
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// yamlbook configuration file\n")
	sb.WriteString("// Run 'yamlbook config --help' for the available settings.\n\n")

	sb.WriteString("ui: {\n")
	fmt.Fprintf(&sb, "\tcolor_scheme: %q\n", cfg.UI.ColorScheme)
	fmt.Fprintf(&sb, "\tverbose: %v\n", cfg.UI.Verbose)
	fmt.Fprintf(&sb, "\tlog_level: %q\n", cfg.UI.LogLevel)
	sb.WriteString("}\n")

	sb.WriteString("\nwatch: {\n")
	fmt.Fprintf(&sb, "\tdebounce: %q\n", cfg.Watch.Debounce.String())
	fmt.Fprintf(&sb, "\tclear_screen: %v\n", cfg.Watch.ClearScreen)
	if len(cfg.Watch.Ignore) == 0 {
		sb.WriteString("\tignore: []\n")
	} else {
		sb.WriteString("\tignore: [\n")
		for _, pattern := range cfg.Watch.Ignore {
			fmt.Fprintf(&sb, "\t\t%q,\n", pattern)
		}
		sb.WriteString("\t]\n")
	}
	sb.WriteString("}\n")

	return sb.String()
}
