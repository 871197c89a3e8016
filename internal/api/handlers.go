package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"moviepicker/internal/identification/omdb"
	"moviepicker/internal/services"
	"moviepicker/internal/watchlist"
)

func (h *handlers) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, h.logger, http.StatusOK, healthResponse{Status: "ok"})
}

func (h *handlers) importReel(w http.ResponseWriter, r *http.Request) {
	var req reelRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	created, err := h.deps.Pipeline.Import(r.Context(), req.URL, req.Vision)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusCreated, created)
}

func (h *handlers) searchReel(w http.ResponseWriter, r *http.Request) {
	var req reelRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	matches, err := h.deps.Pipeline.Search(r.Context(), req.URL, req.Vision)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, matches)
}

func (h *handlers) listMovies(w http.ResponseWriter, r *http.Request) {
	q := listMoviesQuery{Source: strings.TrimSpace(r.URL.Query().Get("source"))}
	if err := validateStruct(&q); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	filter := watchlist.Filter{Source: q.Source}
	if raw := strings.TrimSpace(r.URL.Query().Get("is_watched")); raw != "" {
		watched, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, h.logger, http.StatusBadRequest, "is_watched must be true or false")
			return
		}
		filter.Watched = &watched
	}
	movies, err := h.deps.Store.List(r.Context(), filter)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	if movies == nil {
		movies = []watchlist.Movie{}
	}
	writeJSON(w, h.logger, http.StatusOK, movies)
}

func (h *handlers) getMovie(w http.ResponseWriter, r *http.Request) {
	id, ok := h.movieID(w, r)
	if !ok {
		return
	}
	movie, err := h.deps.Store.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	if movie == nil {
		writeError(w, h.logger, http.StatusNotFound, "movie not found")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, movie)
}

func (h *handlers) addMovie(w http.ResponseWriter, r *http.Request) {
	var req addMovieRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	movie, err := h.deps.Catalog.AddByQuery(r.Context(), req.Query)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, movie)
}

func (h *handlers) addMovieByIMDbID(w http.ResponseWriter, r *http.Request) {
	source := strings.TrimSpace(r.URL.Query().Get("source"))
	q := listMoviesQuery{Source: source}
	if err := validateStruct(&q); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	movie, err := h.deps.Catalog.AddByIMDbID(r.Context(), chi.URLParam(r, "imdbID"), source)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, movie)
}

func (h *handlers) updateMovie(w http.ResponseWriter, r *http.Request) {
	id, ok := h.movieID(w, r)
	if !ok {
		return
	}
	var req updateMovieRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	var (
		movie *watchlist.Movie
		err   error
	)
	if req.IsWatched != nil {
		movie, err = h.deps.Store.SetWatched(r.Context(), id, *req.IsWatched)
	} else {
		movie, err = h.deps.Store.Get(r.Context(), id)
		if err == nil && movie == nil {
			err = services.Wrap(services.ErrNotFound, "api", "update", "movie not found", nil)
		}
	}
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, movie)
}

func (h *handlers) deleteMovie(w http.ResponseWriter, r *http.Request) {
	id, ok := h.movieID(w, r)
	if !ok {
		return
	}
	if err := h.deps.Store.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, messageResponse{Message: "movie deleted"})
}

func (h *handlers) searchTitles(w http.ResponseWriter, r *http.Request) {
	q := searchQuery{Query: strings.TrimSpace(r.URL.Query().Get("q"))}
	if err := validateStruct(&q); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	results, err := h.deps.Searcher.Search(r.Context(), q.Query, "movie")
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	if results == nil {
		results = []omdb.SearchResult{}
	}
	writeJSON(w, h.logger, http.StatusOK, results)
}

func (h *handlers) recommend(w http.ResponseWriter, r *http.Request) {
	var req recommendRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	rec, err := h.deps.Catalog.Recommend(r.Context(), req.Query, req.IncludeWatched)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, rec)
}

func (h *handlers) movieID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, h.logger, http.StatusBadRequest, "movie id must be a positive integer")
		return 0, false
	}
	return id, true
}
