// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yamlbook/yamlbook/internal/book"
	"github.com/yamlbook/yamlbook/internal/issue"
	"github.com/yamlbook/yamlbook/internal/watch"
	"github.com/yamlbook/yamlbook/pkg/types"
)

// clearScreen is the ANSI sequence that clears the terminal and homes the
// cursor.
const clearScreen = "\033[2J\033[H"

// newWatchCommand creates the `yamlbook watch` command.
func newWatchCommand(app *App, flags *rootFlagValues) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Rebuild " + OutputPath + " whenever a source file changes",
		Long: `Build once, then watch ` + DataDir + `/ and rebuild the whole book after
` + book.Extension + ` files are created, changed or removed. Bursts of changes are
coalesced (see watch.debounce in the configuration). A failed rebuild is
reported and watching continues. Stop with Ctrl+C.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd.Context(), app, flags)
		},
	}
}

func runWatch(ctx context.Context, app *App, flags *rootFlagValues) error {
	s, err := app.newSession(ctx, flags)
	if err != nil {
		return err
	}

	fmt.Fprintf(app.stdout, "%s Watch mode: initial build\n", PathStyle.Render("→"))
	// A failed initial build is reported; watching starts regardless.
	_, _ = buildOnce(ctx, app, s)

	w, err := watch.New(watch.Config{
		Root:     DataDir,
		Patterns: []string{"**/*" + book.Extension},
		Ignore:   s.cfg.Watch.Ignore,
		Debounce: s.cfg.Watch.Debounce,
		Logger:   s.logger,
		OnChange: func(ctx context.Context, changed []string) error {
			if s.cfg.Watch.ClearScreen {
				fmt.Fprint(app.stdout, clearScreen)
			}
			fmt.Fprintf(app.stdout, "%s Detected %s. Rebuilding...\n", PathStyle.Render("→"), plural(len(changed), "change"))
			s.logger.Debug("rebuild triggered", "changed", changed)
			_, _ = buildOnce(ctx, app, s)
			fmt.Fprintf(app.stdout, "\n%s Watching for changes...\n\n", PathStyle.Render("→"))
			return nil
		},
	})
	if err != nil {
		fmt.Fprintf(app.stdout, "%s Watch failed: %v\n", ErrorStyle.Render("✗"), err)
		if s.verbose {
			app.renderIssueGuide(s, issue.DataDirNotFoundId)
		}
		return &ExitError{Code: types.ExitFailure}
	}

	fmt.Fprintf(app.stdout, "\n%s Watching %s for changes (Ctrl+C to stop)...\n\n", PathStyle.Render("→"), PathStyle.Render(DataDir+"/"))

	if err := w.Run(ctx); err != nil {
		fmt.Fprintf(app.stdout, "%s Watch failed: %v\n", ErrorStyle.Render("✗"), err)
		if errors.Is(err, watch.ErrWatcherBroken) {
			app.renderIssueGuide(s, issue.WatchFailedId)
		}
		return &ExitError{Code: types.ExitFailure}
	}

	fmt.Fprintln(app.stdout, SubtitleStyle.Render("Stopped watching."))
	return nil
}
