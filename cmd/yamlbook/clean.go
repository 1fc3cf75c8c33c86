// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yamlbook/yamlbook/internal/aggregator"
	"github.com/yamlbook/yamlbook/pkg/types"
)

// newCleanCommand creates the `yamlbook clean` command.
func newCleanCommand(app *App, flags *rootFlagValues) *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Remove " + OutputPath,
		Long: `Remove the built artifact. A missing artifact is not an error. The
sources under ` + DataDir + `/ are never touched.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClean(cmd.Context(), app, flags)
		},
	}
}

func runClean(ctx context.Context, app *App, flags *rootFlagValues) error {
	s, err := app.newSession(ctx, flags)
	if err != nil {
		return err
	}

	removed, err := aggregator.RemoveArtifact(OutputPath)
	if err != nil {
		reportFailure(app, s, "Clean failed", err)
		return &ExitError{Code: types.ExitFailure}
	}

	if !removed {
		fmt.Fprintf(app.stdout, "%s %s\n", SubtitleStyle.Render("Nothing to clean:"), PathStyle.Render(OutputPath)+" does not exist")
		return nil
	}
	s.logger.Debug("removed artifact", "path", OutputPath)
	fmt.Fprintf(app.stdout, "%s Removed %s\n", SuccessStyle.Render("✓"), PathStyle.Render(OutputPath))
	return nil
}
