// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/yamlbook/yamlbook/internal/aggregator"
	"github.com/yamlbook/yamlbook/internal/book"
	"github.com/yamlbook/yamlbook/pkg/types"
)

// newListCommand creates the `yamlbook list` command.
func newListCommand(app *App, flags *rootFlagValues) *cobra.Command {
	var built bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show the groups a build would produce",
		Long: `Show every group and its document count.

By default the sources under ` + DataDir + `/ are read and parsed exactly as a
build would, but nothing is written. With --built the existing
` + OutputPath + ` is summarized instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd.Context(), app, flags, built)
		},
	}
	cmd.Flags().BoolVar(&built, "built", false, "summarize "+OutputPath+" instead of the sources")

	return cmd
}

func runList(ctx context.Context, app *App, flags *rootFlagValues, built bool) error {
	s, err := app.newSession(ctx, flags)
	if err != nil {
		return err
	}

	var b *book.Book
	if built {
		b, err = aggregator.ReadBook(OutputPath)
	} else {
		b, err = s.aggregator.Collect(ctx, DataDir)
	}
	if err != nil {
		reportFailure(app, s, "List failed", err)
		return &ExitError{Code: types.ExitFailure}
	}

	if b.Len() == 0 {
		fmt.Fprintln(app.stdout, SubtitleStyle.Render("No groups: no "+book.Extension+" files found"))
		return nil
	}

	fmt.Fprintln(app.stdout, renderGroupTable(b))
	fmt.Fprintln(app.stdout, SubtitleStyle.Render(fmt.Sprintf("%s, %s",
		plural(b.Len(), "group"), plural(b.DocumentCount(), "document"))))
	return nil
}

// renderGroupTable renders one row per group in key order.
func renderGroupTable(b *book.Book) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(SubtitleStyle).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			return tableCellStyle
		}).
		Headers("GROUP", "DOCUMENTS")

	for _, key := range b.Keys() {
		name := string(key)
		if name == "" {
			name = `""`
		}
		t.Row(name, strconv.Itoa(len(b.Get(key))))
	}

	return t.Render()
}
