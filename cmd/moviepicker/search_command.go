package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newSearchCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool
	var mediaType string

	cmd := &cobra.Command{
		Use:   "search <title>",
		Short: "Search OMDb by title",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.TrimSpace(strings.Join(args, " "))
			return ctx.withApp(cmd.Context(), func(app *application) error {
				results, err := app.omdb.Search(cmd.Context(), query, mediaType)
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, results)
				}
				out := cmd.OutOrStdout()
				if len(results) == 0 {
					fmt.Fprintf(out, "No results for %q\n", query)
					return nil
				}
				rows := make([][]string, 0, len(results))
				for _, r := range results {
					rows = append(rows, []string{r.IMDbID, r.Title, r.Year})
				}
				fmt.Fprintln(out, renderTable(out, []string{"IMDb ID", "Title", "Year"}, rows, []columnAlignment{alignLeft, alignLeft, alignRight}))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&mediaType, "type", "movie", "OMDb type filter (movie, series, episode; empty for all)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}
