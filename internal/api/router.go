package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"moviepicker/internal/catalog"
	"moviepicker/internal/identification/omdb"
	"moviepicker/internal/logging"
	"moviepicker/internal/resolver"
	"moviepicker/internal/watchlist"
)

// ReelPipeline runs reel searches and imports.
type ReelPipeline interface {
	Search(ctx context.Context, url string, vision bool) ([]resolver.Match, error)
	Import(ctx context.Context, url string, vision bool) ([]watchlist.Movie, error)
}

// Catalog adds entries through OMDb and produces recommendations.
type Catalog interface {
	AddByQuery(ctx context.Context, query string) (*watchlist.Movie, error)
	AddByIMDbID(ctx context.Context, imdbID, source string) (*watchlist.Movie, error)
	Recommend(ctx context.Context, query string, includeWatched bool) (*catalog.Recommendation, error)
}

// MovieStore is the part of the watch-list the handlers read and update directly.
type MovieStore interface {
	List(ctx context.Context, filter watchlist.Filter) ([]watchlist.Movie, error)
	Get(ctx context.Context, id int64) (*watchlist.Movie, error)
	SetWatched(ctx context.Context, id int64, watched bool) (*watchlist.Movie, error)
	Delete(ctx context.Context, id int64) error
}

// TitleSearcher searches OMDb by title.
type TitleSearcher interface {
	Search(ctx context.Context, query, mediaType string) ([]omdb.SearchResult, error)
}

// Options configures the router.
type Options struct {
	APIToken              string
	CORSOrigins           []string
	PipelineRatePerMinute int
	PipelineTimeout       time.Duration
}

// Dependencies are the services behind the routes.
type Dependencies struct {
	Pipeline ReelPipeline
	Catalog  Catalog
	Store    MovieStore
	Searcher TitleSearcher
}

type handlers struct {
	deps   Dependencies
	logger *slog.Logger
}

// NewRouter builds the HTTP handler.
func NewRouter(opts Options, deps Dependencies, logger *slog.Logger) http.Handler {
	logger = logging.NewComponentLogger(logger, "api")
	h := &handlers{deps: deps, logger: logger}

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization", requestIDHeader},
		ExposedHeaders: []string{requestIDHeader},
		MaxAge:         86400,
	}))
	r.Use(observeMiddleware(logger))

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/api/health", h.health)

	r.Route("/api", func(r chi.Router) {
		r.Use(authMiddleware(opts.APIToken, logger))

		r.Route("/instagram", func(r chi.Router) {
			r.Use(pipelineRateLimit(opts.PipelineRatePerMinute, logger))
			r.Use(pipelineTimeout(opts.PipelineTimeout))
			r.Post("/import", h.importReel)
			r.Post("/search", h.searchReel)
		})

		r.Route("/movies", func(r chi.Router) {
			r.Get("/", h.listMovies)
			r.Post("/", h.addMovie)
			r.Post("/by-imdb/{imdbID}", h.addMovieByIMDbID)
			r.Get("/{id}", h.getMovie)
			r.Patch("/{id}", h.updateMovie)
			r.Delete("/{id}", h.deleteMovie)
		})

		r.Get("/search", h.searchTitles)
		r.Post("/recommend", h.recommend)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, logger, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, logger, http.StatusMethodNotAllowed, "method not allowed")
	})
	return r
}
