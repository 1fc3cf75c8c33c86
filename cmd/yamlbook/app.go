// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/yamlbook/yamlbook/internal/aggregator"
	"github.com/yamlbook/yamlbook/internal/config"
	"github.com/yamlbook/yamlbook/internal/issue"
	"github.com/yamlbook/yamlbook/internal/logging"
)

type (
	// App wires CLI services and shared dependencies. It is the composition
	// root of the CLI layer: every command handler receives an App and
	// resolves configuration, logging and the pipeline through it.
	App struct {
		Config ConfigProvider
		stdout io.Writer
		stderr io.Writer
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config ConfigProvider
		Stdout io.Writer
		Stderr io.Writer
	}

	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
	}

	// rootFlagValues holds the persistent flags shared by every command.
	rootFlagValues struct {
		verbose    bool
		configPath string
	}

	// session is the per-invocation state derived from flags and
	// configuration.
	session struct {
		cfg        *config.Config
		logger     *slog.Logger
		aggregator *aggregator.Aggregator
		verbose    bool
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) (*App, error) {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}

	return &App{
		Config: deps.Config,
		stdout: deps.Stdout,
		stderr: deps.Stderr,
	}, nil
}

// loadOptions turns the persistent flags into config loading options.
func (f *rootFlagValues) loadOptions() config.LoadOptions {
	return config.LoadOptions{ConfigFilePath: f.configPath}
}

// newSession loads configuration and builds the logger and pipeline. A
// broken config file found by lookup is reported as a warning and the
// defaults are used, so a bad editor setting never blocks a build. A file
// named with --config must load.
func (a *App) newSession(ctx context.Context, flags *rootFlagValues) (*session, error) {
	cfg, err := a.Config.Load(ctx, flags.loadOptions())
	if err != nil {
		if flags.configPath != "" || errors.Is(err, context.Canceled) {
			return nil, err
		}
		fmt.Fprintln(a.stderr, WarningStyle.Render("Warning: ")+formatErrorForDisplay(err, flags.verbose))
		cfg = config.DefaultConfig()
	}

	verbose := flags.verbose || cfg.UI.Verbose
	logger, err := logging.New(a.stderr, logging.Options{
		Level:   cfg.UI.LogLevel,
		Verbose: verbose,
		Prefix:  config.AppName,
	})
	if err != nil {
		return nil, err
	}

	return &session{
		cfg:        cfg,
		logger:     logger,
		aggregator: aggregator.New(logger),
		verbose:    verbose,
	}, nil
}

// formatErrorForDisplay formats an error for user display. ActionableErrors
// get their suggestions, and in verbose mode the full error chain.
func formatErrorForDisplay(err error, verbose bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verbose)
	}
	return err.Error()
}

// renderIssueGuide writes the catalog guide for id to the App's stderr.
// Rendering problems are logged and otherwise ignored.
func (a *App) renderIssueGuide(s *session, id issue.Id) {
	guide := issue.Get(id)
	if guide == nil {
		return
	}
	rendered, err := guide.Render(s.cfg.UI.ColorScheme.GlamourStyle())
	if err != nil {
		s.logger.Warn("render issue guide", "issue", int(id), "err", err)
		return
	}
	fmt.Fprint(a.stderr, rendered)
}
