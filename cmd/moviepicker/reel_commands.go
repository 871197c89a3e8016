package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"moviepicker/internal/resolver"
	"moviepicker/internal/textutil"
	"moviepicker/internal/watchlist"
)

func newReelCommand(ctx *commandContext) *cobra.Command {
	reelCmd := &cobra.Command{
		Use:   "reel",
		Short: "Extract movies from an Instagram reel",
	}
	reelCmd.AddCommand(newReelSearchCommand(ctx))
	reelCmd.AddCommand(newReelImportCommand(ctx))
	return reelCmd
}

func newReelSearchCommand(ctx *commandContext) *cobra.Command {
	var vision bool
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "search <url>",
		Short: "List OMDb matches for the movies a reel mentions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd.Context(), func(app *application) error {
				matches, err := app.pipeline.Search(cmd.Context(), args[0], vision)
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, matches)
				}
				printMatches(cmd, matches)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&vision, "vision", false, "Also send sampled video frames to the vision model")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func newReelImportCommand(ctx *commandContext) *cobra.Command {
	var vision bool
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "import <url>",
		Short: "Add every movie a reel mentions to the watch-list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd.Context(), func(app *application) error {
				movies, err := app.pipeline.Import(cmd.Context(), args[0], vision)
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, movies)
				}
				if len(movies) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No new movies imported")
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d movie(s)\n", len(movies))
				printMovies(cmd, movies)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&vision, "vision", false, "Also send sampled video frames to the vision model")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func printMatches(cmd *cobra.Command, matches []resolver.Match) {
	out := cmd.OutOrStdout()
	if len(matches) == 0 {
		fmt.Fprintln(out, "No movies found in reel")
		return
	}
	rows := make([][]string, 0, len(matches))
	for _, m := range matches {
		rows = append(rows, []string{m.IMDbID, m.Title, m.Year})
	}
	fmt.Fprintln(out, renderTable(out, []string{"IMDb ID", "Title", "Year"}, rows, []columnAlignment{alignLeft, alignLeft, alignRight}))
}

func printMovies(cmd *cobra.Command, movies []watchlist.Movie) {
	out := cmd.OutOrStdout()
	rows := make([][]string, 0, len(movies))
	for _, m := range movies {
		year := ""
		if m.Year > 0 {
			year = strconv.Itoa(m.Year)
		}
		rows = append(rows, []string{
			strconv.FormatInt(m.ID, 10),
			textutil.Ellipsize(m.Title, 48),
			year,
			textutil.Title(m.Source),
			yesNo(m.IsWatched),
			m.IMDbID.String(),
		})
	}
	fmt.Fprintln(out, renderTable(out,
		[]string{"ID", "Title", "Year", "Source", "Watched", "IMDb ID"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignRight, alignLeft, alignLeft, alignLeft},
	))
}
