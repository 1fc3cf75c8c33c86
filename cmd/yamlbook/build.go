// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/yamlbook/yamlbook/internal/aggregator"
	"github.com/yamlbook/yamlbook/internal/book"
	"github.com/yamlbook/yamlbook/internal/issue"
	"github.com/yamlbook/yamlbook/pkg/types"
)

// newBuildCommand creates the `yamlbook build` command. The root command
// runs the same handler when invoked without a subcommand.
func newBuildCommand(app *App, flags *rootFlagValues) *cobra.Command {
	return &cobra.Command{
		Use:   "build",
		Short: "Build " + OutputPath + " from the YAML files under " + DataDir + "/",
		Long: `Build the book.

Every .yaml file under ` + DataDir + `/ is parsed and grouped by its file name
without the extension. The groups are written as one JSON object to
` + OutputPath + `. The first unreadable or invalid file stops the build and the
previous artifact is left as it was.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd.Context(), app, flags)
		},
	}
}

func runBuild(ctx context.Context, app *App, flags *rootFlagValues) error {
	s, err := app.newSession(ctx, flags)
	if err != nil {
		return err
	}
	if _, err := buildOnce(ctx, app, s); err != nil {
		return &ExitError{Code: types.ExitFailure}
	}
	return nil
}

// buildOnce runs the pipeline and reports the outcome: one success line, or
// one diagnostic line on stdout followed by hints on stderr.
func buildOnce(ctx context.Context, app *App, s *session) (*book.Book, error) {
	b, err := s.aggregator.Build(ctx, DataDir, OutputPath)
	if err != nil {
		reportFailure(app, s, "Build failed", err)
		return nil, err
	}

	fmt.Fprintf(app.stdout, "%s Book built successfully: %s (%s, %s)\n",
		SuccessStyle.Render("✓"),
		PathStyle.Render(OutputPath),
		plural(b.Len(), "group"),
		plural(b.DocumentCount(), "document"),
	)
	return b, nil
}

// reportFailure prints the single diagnostic line on stdout. Suggestions
// go to stderr, and in verbose mode the matching issue guide as well.
func reportFailure(app *App, s *session, headline string, err error) {
	fmt.Fprintf(app.stdout, "%s %s: %v\n", ErrorStyle.Render("✗"), headline, err)

	ae := describeFailure(err)
	if ae == nil {
		return
	}
	for _, hint := range ae.Suggestions {
		fmt.Fprintf(app.stderr, "  %s %s\n", WarningStyle.Render("•"), hint)
	}
	if s.verbose && ae.Issue != 0 {
		app.renderIssueGuide(s, ae.Issue)
	}
}

// describeFailure maps a pipeline error onto an ActionableError with
// remediation hints. It returns nil for errors that carry no path, such as
// cancellation.
func describeFailure(err error) *issue.ActionableError {
	var pe *aggregator.PathError
	if !errors.As(err, &pe) {
		return nil
	}

	ctx := issue.NewErrorContext().WithResource(pe.Path).Wrap(pe.Err)

	switch {
	case pe.Op == "list" && pe.Path == DataDir && errors.Is(err, fs.ErrNotExist):
		ctx.WithOperation("list data directory").
			WithIssue(issue.DataDirNotFoundId).
			WithSuggestion("Run yamlbook from the directory that contains " + DataDir + "/")
	case errors.Is(err, fs.ErrPermission):
		ctx.WithOperation(pe.Op).
			WithIssue(issue.PermissionDeniedId).
			WithSuggestion("Check the permissions of " + pe.Path)
	case pe.Kind == aggregator.KindParse && pe.Path == OutputPath:
		ctx.WithOperation("read book").
			WithSuggestion("Run 'yamlbook build' to write a fresh " + OutputPath)
	case pe.Kind == aggregator.KindParse:
		ctx.WithOperation("parse document").
			WithIssue(issue.DocumentParseFailedId).
			WithSuggestion("Fix the YAML in " + pe.Path + " and build again")
	case pe.Op == "write" || pe.Op == "encode":
		ctx.WithOperation("write book").
			WithIssue(issue.BookWriteFailedId).
			WithSuggestion("Make sure the " + filepath.Dir(OutputPath) + "/ directory exists and is writable")
	default:
		ctx.WithOperation("read document").
			WithIssue(issue.DocumentReadFailedId).
			WithSuggestion("Check that " + pe.Path + " is a readable regular file")
	}

	return ctx.Build()
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
