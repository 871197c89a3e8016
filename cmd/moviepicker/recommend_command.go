package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newRecommendCommand(ctx *commandContext) *cobra.Command {
	var includeWatched bool
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "recommend <what you feel like watching>",
		Short: "Ask the model to pick movies from the watch-list",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.TrimSpace(strings.Join(args, " "))
			if query == "" {
				return errors.New("query is required")
			}
			return ctx.withApp(cmd.Context(), func(app *application) error {
				rec, err := app.catalog.Recommend(cmd.Context(), query, includeWatched)
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, rec)
				}
				out := cmd.OutOrStdout()
				for i := range rec.Movies {
					fmt.Fprintf(out, "%d. %s\n", i+1, movieLabel(&rec.Movies[i]))
				}
				if rec.Explanation != "" {
					if len(rec.Movies) > 0 {
						fmt.Fprintln(out)
					}
					fmt.Fprintln(out, rec.Explanation)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&includeWatched, "include-watched", false, "Consider watched entries too")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}
