package main

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"moviepicker/internal/services"
	"moviepicker/internal/watchlist"
)

func newMoviesCommand(ctx *commandContext) *cobra.Command {
	moviesCmd := &cobra.Command{
		Use:   "movies",
		Short: "Manage the watch-list",
	}
	moviesCmd.AddCommand(newMoviesListCommand(ctx))
	moviesCmd.AddCommand(newMoviesShowCommand(ctx))
	moviesCmd.AddCommand(newMoviesAddCommand(ctx))
	moviesCmd.AddCommand(newMoviesWatchCommand(ctx))
	moviesCmd.AddCommand(newMoviesDeleteCommand(ctx))
	return moviesCmd
}

func newMoviesListCommand(ctx *commandContext) *cobra.Command {
	var source string
	var watched bool
	var unwatched bool
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List watch-list entries, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			if watched && unwatched {
				return errors.New("--watched and --unwatched are mutually exclusive")
			}
			filter := watchlist.Filter{Source: strings.TrimSpace(source)}
			if filter.Source != "" && !validSource(filter.Source) {
				return fmt.Errorf("--source must be one of %s", strings.Join(sources(), ", "))
			}
			switch {
			case watched:
				v := true
				filter.Watched = &v
			case unwatched:
				v := false
				filter.Watched = &v
			}

			return ctx.withApp(cmd.Context(), func(app *application) error {
				movies, err := app.store.List(cmd.Context(), filter)
				if err != nil {
					return err
				}
				if jsonOut {
					if movies == nil {
						movies = []watchlist.Movie{}
					}
					return writeJSON(cmd, movies)
				}
				if len(movies) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Watch-list is empty")
					return nil
				}
				printMovies(cmd, movies)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "Only entries from this source (personal, top100, awards, instagram)")
	cmd.Flags().BoolVar(&watched, "watched", false, "Only watched entries")
	cmd.Flags().BoolVar(&unwatched, "unwatched", false, "Only unwatched entries")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func newMoviesShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one watch-list entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseMovieID(args[0])
			if err != nil {
				return err
			}
			return ctx.withApp(cmd.Context(), func(app *application) error {
				movie, err := app.store.Get(cmd.Context(), id)
				if err != nil {
					return err
				}
				if movie == nil {
					return fmt.Errorf("movie %d not found", id)
				}
				if jsonOut {
					return writeJSON(cmd, movie)
				}
				printMovieDetail(cmd, movie)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func newMoviesAddCommand(ctx *commandContext) *cobra.Command {
	var imdbID string
	var source string
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "add [title or IMDb id]",
		Short: "Look a movie up on OMDb and add it to the watch-list",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.TrimSpace(strings.Join(args, " "))
			imdbID = strings.TrimSpace(imdbID)
			if query == "" && imdbID == "" {
				return errors.New("a title, an IMDb id or --imdb is required")
			}
			if source != "" && !validSource(source) {
				return fmt.Errorf("--source must be one of %s", strings.Join(sources(), ", "))
			}

			return ctx.withApp(cmd.Context(), func(app *application) error {
				var movie *watchlist.Movie
				var err error
				if imdbID != "" {
					movie, err = app.catalog.AddByIMDbID(cmd.Context(), imdbID, source)
				} else {
					movie, err = app.catalog.AddByQuery(cmd.Context(), query)
				}
				if err != nil {
					if errors.Is(err, services.ErrConflict) {
						return fmt.Errorf("%w (already on the watch-list)", err)
					}
					return err
				}
				if jsonOut {
					return writeJSON(cmd, movie)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added #%d %s\n", movie.ID, movieLabel(movie))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&imdbID, "imdb", "", "Add by IMDb id (returns the existing entry when already present)")
	cmd.Flags().StringVar(&source, "source", "", "Source recorded with --imdb (default personal)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func newMoviesWatchCommand(ctx *commandContext) *cobra.Command {
	var unwatch bool

	cmd := &cobra.Command{
		Use:   "watch <id>",
		Short: "Mark an entry as watched",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseMovieID(args[0])
			if err != nil {
				return err
			}
			return ctx.withApp(cmd.Context(), func(app *application) error {
				movie, err := app.store.SetWatched(cmd.Context(), id, !unwatch)
				if err != nil {
					return err
				}
				state := "watched"
				if unwatch {
					state = "unwatched"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Marked #%d %s as %s\n", movie.ID, movieLabel(movie), state)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&unwatch, "unwatch", false, "Mark as not watched instead")
	return cmd
}

func newMoviesDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Remove an entry from the watch-list",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseMovieID(args[0])
			if err != nil {
				return err
			}
			return ctx.withApp(cmd.Context(), func(app *application) error {
				if err := app.store.Delete(cmd.Context(), id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted movie %d\n", id)
				return nil
			})
		},
	}
}

func printMovieDetail(cmd *cobra.Command, m *watchlist.Movie) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "#%d %s\n", m.ID, movieLabel(m))
	if m.OriginalTitle != "" {
		fmt.Fprintf(out, "Original title: %s\n", m.OriginalTitle)
	}
	if m.IMDbID.IsSynthetic() {
		fmt.Fprintf(out, "Reel import id: %s (not matched on IMDb)\n", m.IMDbID)
	} else {
		fmt.Fprintf(out, "IMDb: %s\n", m.IMDbID)
	}
	if len(m.Genres) > 0 {
		fmt.Fprintf(out, "Genres: %s\n", strings.Join(m.Genres, ", "))
	}
	if m.Director != "" {
		fmt.Fprintf(out, "Director: %s\n", m.Director)
	}
	if len(m.Cast) > 0 {
		fmt.Fprintf(out, "Cast: %s\n", strings.Join(m.Cast, ", "))
	}
	if m.IMDbRating != nil {
		fmt.Fprintf(out, "Rating: %.1f\n", *m.IMDbRating)
	}
	fmt.Fprintf(out, "Source: %s\n", m.Source)
	fmt.Fprintf(out, "Watched: %s\n", yesNo(m.IsWatched))
	if m.Description != "" {
		fmt.Fprintf(out, "\n%s\n", m.Description)
	} else if m.Plot != "" {
		fmt.Fprintf(out, "\n%s\n", m.Plot)
	}
}

func movieLabel(m *watchlist.Movie) string {
	if m.Year > 0 {
		return fmt.Sprintf("%s (%d)", m.Title, m.Year)
	}
	return m.Title
}

func parseMovieID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid movie id %q", raw)
	}
	return id, nil
}

func sources() []string {
	return []string{watchlist.SourcePersonal, watchlist.SourceTop100, watchlist.SourceAwards, watchlist.SourceInstagram}
}

func validSource(value string) bool {
	return slices.Contains(sources(), value)
}
