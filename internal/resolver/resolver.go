// Package resolver matches extracted movie mentions against OMDb.
//
// Each mention goes through a waterfall: typed movie search, untyped search,
// then an exact title lookup. English titles are tried before Russian ones.
// Hits without a poster are ignored, and an IMDb id is reported at most once
// per run.
package resolver

import (
	"context"
	"log/slog"
	"strconv"

	"moviepicker/internal/extraction"
	"moviepicker/internal/identification/omdb"
	"moviepicker/internal/logging"
	"moviepicker/internal/metrics"
	"moviepicker/internal/textutil"
)

const (
	TierMovieSearch = "search_movie"
	TierAnySearch   = "search_any"
	TierExactTitle  = "exact_title"
	TierNone        = "none"

	// DefaultMaxPerTitle caps the matches kept for one mention.
	DefaultMaxPerTitle = 3
)

// Match is a resolved movie.
type Match struct {
	IMDbID    string `json:"imdb_id"`
	Title     string `json:"title"`
	Year      string `json:"year"`
	PosterURL string `json:"poster_url"`
}

// Seen tracks IMDb ids already reported during one run.
type Seen map[string]struct{}

// Has reports whether id was already accepted.
func (s Seen) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Resolver runs the search waterfall.
type Resolver struct {
	searcher omdb.Searcher
	maxPer   int
	logger   *slog.Logger
}

// New constructs a resolver. maxPerTitle <= 0 uses DefaultMaxPerTitle.
func New(searcher omdb.Searcher, maxPerTitle int, logger *slog.Logger) *Resolver {
	if maxPerTitle <= 0 {
		maxPerTitle = DefaultMaxPerTitle
	}
	return &Resolver{
		searcher: searcher,
		maxPer:   maxPerTitle,
		logger:   logging.NewComponentLogger(logger, "resolver"),
	}
}

// Resolve returns up to the configured number of matches for the mention.
// Accepted ids are added to seen. No match is an empty result, not an error.
func (r *Resolver) Resolve(ctx context.Context, mention extraction.Mention, seen Seen) ([]Match, error) {
	logger := logging.WithContext(ctx, r.logger)
	queries := queriesFor(mention)
	results := make([]Match, 0, r.maxPer)

	for _, tier := range []struct {
		name      string
		mediaType string
	}{
		{TierMovieSearch, "movie"},
		{TierAnySearch, ""},
	} {
		for _, query := range queries {
			logger.Debug("searching omdb",
				logging.String("tier", tier.name),
				logging.String("query", query),
			)
			found, err := r.searcher.Search(ctx, query, tier.mediaType)
			if err != nil {
				return nil, err
			}
			results = r.collect(results, found, seen)
			if len(results) > 0 {
				metrics.ResolverTierHits.WithLabelValues(tier.name).Inc()
				return results, nil
			}
		}
	}

	for _, query := range queries {
		logger.Debug("looking up exact title", logging.String("tier", TierExactTitle), logging.String("query", query))
		movie, err := r.searcher.LookupTitle(ctx, query, 0)
		if err != nil {
			return nil, err
		}
		if movie == nil || movie.PosterURL == "" || seen.Has(movie.IMDbID) {
			continue
		}
		seen[movie.IMDbID] = struct{}{}
		year := ""
		if movie.Year > 0 {
			year = strconv.Itoa(movie.Year)
		}
		metrics.ResolverTierHits.WithLabelValues(TierExactTitle).Inc()
		return append(results, Match{
			IMDbID:    movie.IMDbID,
			Title:     movie.Title,
			Year:      year,
			PosterURL: movie.PosterURL,
		}), nil
	}

	metrics.ResolverTierHits.WithLabelValues(TierNone).Inc()
	logging.WarnWithContext(logger, "no omdb match for mention", "resolver_no_match",
		logging.String("title_en", mention.TitleEN),
		logging.String("title_ru", mention.TitleRU),
		logging.String(logging.FieldImpact, "mention omitted from results"),
		logging.String(logging.FieldErrorHint, "the extracted title may be a transliteration"),
	)
	return results, nil
}

func (r *Resolver) collect(results []Match, found []omdb.SearchResult, seen Seen) []Match {
	for _, hit := range found {
		if len(results) >= r.maxPer {
			break
		}
		if hit.PosterURL == "" || seen.Has(hit.IMDbID) {
			continue
		}
		seen[hit.IMDbID] = struct{}{}
		results = append(results, Match{
			IMDbID:    hit.IMDbID,
			Title:     hit.Title,
			Year:      hit.Year,
			PosterURL: hit.PosterURL,
		})
	}
	return results
}

// queriesFor lists the normalised English then Russian titles, skipping empties.
func queriesFor(m extraction.Mention) []string {
	queries := make([]string, 0, 2)
	for _, title := range []string{m.TitleEN, m.TitleRU} {
		if q := textutil.NormalizeQuery(title); q != "" {
			queries = append(queries, q)
		}
	}
	return queries
}
