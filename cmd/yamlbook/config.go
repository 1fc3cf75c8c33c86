// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yamlbook/yamlbook/internal/config"
)

// newConfigCommand creates the `yamlbook config` command tree.
func newConfigCommand(app *App, flags *rootFlagValues) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage yamlbook configuration",
		Long: `Manage yamlbook configuration.

Configuration is read from the --config file if given, otherwise from:
  - Linux: $XDG_CONFIG_HOME/yamlbook/config.cue (~/.config/yamlbook/config.cue)
  - macOS: ~/Library/Application Support/yamlbook/config.cue
  - Windows: %APPDATA%\yamlbook\config.cue
and finally from ./yamlbook.cue. Only output and watch settings can be
configured; the ` + DataDir + `/ and ` + OutputPath + ` locations are fixed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd.Context(), app, flags)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfigPath(app, flags)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(app)
		},
	})

	var format string
	dumpCmd := &cobra.Command{
		Use:   "dump",
		Short: "Output the effective configuration as CUE, TOML or YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return dumpConfig(cmd.Context(), app, flags, format)
		},
	}
	dumpCmd.Flags().StringVarP(&format, "format", "f", string(config.FormatCUE), "output format (cue, toml, yaml)")
	cfgCmd.AddCommand(dumpCmd)

	return cfgCmd
}

func showConfig(ctx context.Context, app *App, flags *rootFlagValues) error {
	cfg, err := app.Config.Load(ctx, flags.loadOptions())
	if err != nil {
		return err
	}

	keyStyle := PathStyle
	valueStyle := SuccessStyle

	fmt.Fprintln(app.stdout, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(app.stdout)

	path, err := config.ResolvePath(flags.loadOptions())
	if err != nil || path == "" {
		fmt.Fprintf(app.stdout, "%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	} else {
		fmt.Fprintf(app.stdout, "%s: %s\n", keyStyle.Render("Config file"), path)
	}
	fmt.Fprintln(app.stdout)

	fmt.Fprintf(app.stdout, "%s:\n", keyStyle.Render("ui"))
	fmt.Fprintf(app.stdout, "  color_scheme: %s\n", valueStyle.Render(cfg.UI.ColorScheme.String()))
	fmt.Fprintf(app.stdout, "  verbose: %s\n", valueStyle.Render(fmt.Sprintf("%v", cfg.UI.Verbose)))
	fmt.Fprintf(app.stdout, "  log_level: %s\n", valueStyle.Render(string(cfg.UI.LogLevel)))

	fmt.Fprintln(app.stdout)
	fmt.Fprintf(app.stdout, "%s:\n", keyStyle.Render("watch"))
	fmt.Fprintf(app.stdout, "  debounce: %s\n", valueStyle.Render(cfg.Watch.Debounce.String()))
	fmt.Fprintf(app.stdout, "  clear_screen: %s\n", valueStyle.Render(fmt.Sprintf("%v", cfg.Watch.ClearScreen)))
	if len(cfg.Watch.Ignore) == 0 {
		fmt.Fprintf(app.stdout, "  ignore: %s\n", SubtitleStyle.Render("(none)"))
	} else {
		fmt.Fprintf(app.stdout, "  ignore: %s\n", valueStyle.Render(strings.Join(cfg.Watch.Ignore, ", ")))
	}

	return nil
}

func showConfigPath(app *App, flags *rootFlagValues) error {
	cfgDir, err := config.ConfigDir()
	if err != nil {
		return err
	}
	fmt.Fprintf(app.stdout, "Config directory: %s\n", cfgDir)

	path, err := config.ResolvePath(flags.loadOptions())
	if err != nil {
		return err
	}
	if path == "" {
		fmt.Fprintf(app.stdout, "Config file: %s\n", SubtitleStyle.Render("(none, using defaults)"))
	} else {
		fmt.Fprintf(app.stdout, "Config file: %s\n", path)
	}
	return nil
}

func initConfig(app *App) error {
	path, created, err := config.CreateDefaultConfig(config.LoadOptions{})
	if err != nil {
		return fmt.Errorf("failed to create config: %w", err)
	}

	if !created {
		fmt.Fprintf(app.stdout, "%s Configuration already exists at %s\n", WarningStyle.Render("!"), path)
		return nil
	}
	fmt.Fprintf(app.stdout, "%s Created default configuration at %s\n", SuccessStyle.Render("✓"), path)
	return nil
}

func dumpConfig(ctx context.Context, app *App, flags *rootFlagValues, format string) error {
	f, err := config.ParseDumpFormat(format)
	if err != nil {
		return err
	}

	cfg, err := app.Config.Load(ctx, flags.loadOptions())
	if err != nil {
		return err
	}

	out, err := config.Dump(cfg, f)
	if err != nil {
		return err
	}
	_, err = app.stdout.Write(out)
	return err
}
