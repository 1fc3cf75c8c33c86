// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/yamlbook/yamlbook/internal/issue"
	"github.com/yamlbook/yamlbook/pkg/types"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand builds the command tree. Running the root command without
// a subcommand builds the book.
func NewRootCommand(app *App) *cobra.Command {
	flags := &rootFlagValues{}

	rootCmd := &cobra.Command{
		Use:   "yamlbook",
		Short: "Combine a tree of YAML files into one JSON book",
		Long: TitleStyle.Render("yamlbook") + SubtitleStyle.Render(" - combine a tree of YAML files into one JSON book") + `

yamlbook reads every .yaml file under ` + DataDir + `/, groups the parsed
documents by file name (without the extension) and writes the result to
` + OutputPath + `. Files with the same name in different directories end up
in the same group.

` + SubtitleStyle.Render("Examples:") + `
  yamlbook                  Build ` + OutputPath + `
  yamlbook list             Show the groups without writing anything
  yamlbook watch            Rebuild on every change under ` + DataDir + `/
  yamlbook clean            Remove ` + OutputPath + `
  yamlbook config show      Show the current configuration`,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd.Context(), app, flags)
		},
	}

	rootCmd.SetOut(app.stdout)
	rootCmd.SetErr(app.stderr)
	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &ExitError{Code: types.ExitUsage, Err: err}
	})

	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable debug logging and detailed error guides")
	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default is $XDG_CONFIG_HOME/yamlbook/config.cue)")

	rootCmd.AddCommand(
		newBuildCommand(app, flags),
		newListCommand(app, flags),
		newCleanCommand(app, flags),
		newWatchCommand(app, flags),
		newConfigCommand(app, flags),
	)

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// errorHandler prints errors that reach fang. Failures the handlers already
// reported (an *ExitError without a cause) are not printed again.
func errorHandler(verbose func() bool) fang.ErrorHandler {
	return func(w io.Writer, styles fang.Styles, err error) {
		var exitErr *ExitError
		if errors.As(err, &exitErr) && exitErr.Err == nil {
			return
		}
		var ae *issue.ActionableError
		if errors.As(err, &ae) {
			fmt.Fprintln(w, ErrorStyle.Render("Error:"), ae.Format(verbose()))
			return
		}
		fang.DefaultErrorHandler(w, styles, err)
	}
}

// Execute runs the CLI and exits the process with the resulting status.
// This is called by main.main().
func Execute() {
	app, err := NewApp(Dependencies{})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(int(types.ExitFailure))
	}

	rootCmd := NewRootCommand(app)
	verbose := func() bool {
		v, _ := rootCmd.PersistentFlags().GetBool("verbose")
		return v
	}

	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(errorHandler(verbose)),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(int(exitErr.Code))
		}
		os.Exit(int(types.ExitFailure))
	}
}
