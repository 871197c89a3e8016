package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"moviepicker/internal/identification/omdb"
	"moviepicker/internal/logging"
	"moviepicker/internal/movieid"
	"moviepicker/internal/services"
	"moviepicker/internal/services/llm"
	"moviepicker/internal/watchlist"
)

const (
	// EmptyListExplanation is returned by Recommend when there is nothing to choose from.
	EmptyListExplanation = "В вашем списке пока нет непросмотренных фильмов. Добавьте фильмы, чтобы получить рекомендации."

	maxRecommendations = 3
	describeMaxTokens  = 300
	recommendMaxTokens = 500
)

// Lookup fetches full OMDb records.
type Lookup interface {
	LookupID(ctx context.Context, imdbID string) (*omdb.Movie, error)
	LookupTitle(ctx context.Context, title string, year int) (*omdb.Movie, error)
}

// Completer issues chat completions.
type Completer interface {
	Complete(ctx context.Context, req llm.Request) (string, error)
}

// Store is the subset of the watch-list the service needs.
type Store interface {
	List(ctx context.Context, filter watchlist.Filter) ([]watchlist.Movie, error)
	Unwatched(ctx context.Context) ([]watchlist.Movie, error)
	GetByIMDbID(ctx context.Context, id movieid.ID) (*watchlist.Movie, error)
	Add(ctx context.Context, movie watchlist.NewMovie, source string) (*watchlist.Movie, error)
}

// Recommendation is the model's pick from the watch-list.
type Recommendation struct {
	Movies      []watchlist.Movie `json:"movies"`
	Explanation string            `json:"explanation"`
}

// Service adds and recommends watch-list entries.
type Service struct {
	store     Store
	lookup    Lookup
	completer Completer
	model     string
	logger    *slog.Logger
}

// New constructs a catalog service. completer may be nil, in which case
// descriptions are skipped and Recommend reports missing credentials.
func New(store Store, lookup Lookup, completer Completer, textModel string, logger *slog.Logger) *Service {
	return &Service{
		store:     store,
		lookup:    lookup,
		completer: completer,
		model:     strings.TrimSpace(textModel),
		logger:    logging.NewComponentLogger(logger, "catalog"),
	}
}

// AddByQuery resolves a title or IMDb id and stores it as a personal entry.
func (s *Service) AddByQuery(ctx context.Context, query string) (*watchlist.Movie, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, services.Wrap(services.ErrValidation, "catalog", "add", "query is required", nil)
	}
	if s.lookup == nil {
		return nil, services.Wrap(services.ErrMissingCredentials, "catalog", "add", "OMDb is not configured", nil)
	}

	var (
		record *omdb.Movie
		err    error
	)
	if id := movieid.Parse(query); id.IsCanonical() {
		record, err = s.lookup.LookupID(ctx, id.String())
	} else {
		record, err = s.lookup.LookupTitle(ctx, query, 0)
	}
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, services.Wrap(services.ErrNotFound, "catalog", "add", fmt.Sprintf("movie %q not found in OMDb", query), nil)
	}

	existing, err := s.store.GetByIMDbID(ctx, movieid.Canonical(record.IMDbID))
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, services.Wrap(services.ErrConflict, "catalog", "add", fmt.Sprintf("movie %q is already in the list", record.Title), nil)
	}
	return s.store.Add(ctx, s.newMovie(ctx, record), watchlist.SourcePersonal)
}

// AddByIMDbID stores the given title under source. An entry that already
// exists is returned unchanged. Synthetic ids are refused since OMDb cannot
// resolve them.
func (s *Service) AddByIMDbID(ctx context.Context, imdbID, source string) (*watchlist.Movie, error) {
	id := movieid.Parse(imdbID)
	switch id.Kind() {
	case movieid.KindCanonical:
	case movieid.KindSynthetic:
		return nil, services.Wrap(services.ErrValidation, "catalog", "add", fmt.Sprintf("%s is a reel import id, not an IMDb id", id), nil)
	default:
		return nil, services.Wrap(services.ErrValidation, "catalog", "add", fmt.Sprintf("invalid IMDb id %q", id), nil)
	}
	if source == "" {
		source = watchlist.SourcePersonal
	}
	existing, err := s.store.GetByIMDbID(ctx, id)
	if err != nil || existing != nil {
		return existing, err
	}
	if s.lookup == nil {
		return nil, services.Wrap(services.ErrMissingCredentials, "catalog", "add", "OMDb is not configured", nil)
	}
	record, err := s.lookup.LookupID(ctx, id.String())
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, services.Wrap(services.ErrNotFound, "catalog", "add", fmt.Sprintf("movie %s not found", id), nil)
	}
	return s.store.Add(ctx, s.newMovie(ctx, record), source)
}

func (s *Service) newMovie(ctx context.Context, record *omdb.Movie) watchlist.NewMovie {
	return watchlist.NewMovie{
		IMDbID:      movieid.Canonical(record.IMDbID),
		Title:       record.Title,
		Year:        record.Year,
		Genres:      record.Genres,
		Description: s.describe(ctx, record.Title, record.Plot),
		Plot:        record.Plot,
		Cast:        record.Cast,
		Director:    record.Director,
		PosterURL:   record.PosterURL,
		IMDbRating:  record.Rating,
		Awards:      record.Awards,
	}
}

// describe generates a short Russian description. Failures leave the entry
// without one.
func (s *Service) describe(ctx context.Context, title, plot string) string {
	if strings.TrimSpace(plot) == "" || s.completer == nil {
		return ""
	}
	reply, err := s.completer.Complete(ctx, llm.Request{
		Model:     s.model,
		User:      describePrompt(title, plot),
		MaxTokens: describeMaxTokens,
	})
	if err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, s.logger), "description generation failed", "describe_failed",
			logging.String("title", title),
			logging.Error(err),
			logging.String(logging.FieldImpact, "entry stored without a description"),
		)
		return ""
	}
	return strings.TrimSpace(reply)
}

// Recommend asks the model to pick up to three entries matching query.
func (s *Service) Recommend(ctx context.Context, query string, includeWatched bool) (*Recommendation, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, services.Wrap(services.ErrValidation, "catalog", "recommend", "query is required", nil)
	}

	var (
		candidates []watchlist.Movie
		err        error
	)
	if includeWatched {
		candidates, err = s.store.List(ctx, watchlist.Filter{})
	} else {
		candidates, err = s.store.Unwatched(ctx)
	}
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return &Recommendation{Movies: []watchlist.Movie{}, Explanation: EmptyListExplanation}, nil
	}
	if s.completer == nil {
		return nil, services.Wrap(services.ErrMissingCredentials, "catalog", "recommend", "language model is not configured", nil)
	}

	reply, err := s.completer.Complete(ctx, llm.Request{
		Model:     s.model,
		User:      recommendPrompt(query, candidates, maxRecommendations),
		MaxTokens: recommendMaxTokens,
	})
	if err != nil {
		return nil, err
	}
	ids, explanation := parseRecommendation(strings.TrimSpace(reply))

	byID := make(map[int64]watchlist.Movie, len(candidates))
	for _, m := range candidates {
		byID[m.ID] = m
	}
	picked := make([]watchlist.Movie, 0, len(ids))
	for _, id := range ids {
		m, ok := byID[id]
		if !ok {
			continue
		}
		picked = append(picked, m)
		delete(byID, id)
	}
	s.logger.InfoContext(ctx, "recommendation ready",
		logging.String(logging.FieldEventType, "recommend_complete"),
		logging.Int("candidates", len(candidates)),
		logging.Int("picked", len(picked)),
	)
	return &Recommendation{Movies: picked, Explanation: explanation}, nil
}
