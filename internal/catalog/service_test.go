package catalog_test

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"

	"moviepicker/internal/catalog"
	"moviepicker/internal/identification/omdb"
	"moviepicker/internal/logging"
	"moviepicker/internal/movieid"
	"moviepicker/internal/services"
	"moviepicker/internal/services/llm"
	"moviepicker/internal/testsupport"
	"moviepicker/internal/watchlist"
)

type stubLookup struct {
	byID    map[string]*omdb.Movie
	byTitle map[string]*omdb.Movie
	calls   []string
}

func (s *stubLookup) LookupID(_ context.Context, imdbID string) (*omdb.Movie, error) {
	s.calls = append(s.calls, "id:"+imdbID)
	return s.byID[imdbID], nil
}

func (s *stubLookup) LookupTitle(_ context.Context, title string, _ int) (*omdb.Movie, error) {
	s.calls = append(s.calls, "title:"+title)
	return s.byTitle[title], nil
}

type stubCompleter struct {
	reply string
	err   error
	calls []llm.Request
}

func (s *stubCompleter) Complete(_ context.Context, req llm.Request) (string, error) {
	s.calls = append(s.calls, req)
	return s.reply, s.err
}

var inception = &omdb.Movie{
	IMDbID: "tt1375666",
	Title:  "Inception",
	Year:   2010,
	Genres: []string{"Action", "Sci-Fi"},
	Plot:   "A thief who steals corporate secrets through dream-sharing technology.",
	Cast:   []string{"Leonardo DiCaprio", "Joseph Gordon-Levitt"},
}

func newService(t *testing.T, completer catalog.Completer) (*catalog.Service, *watchlist.SQLiteStore, *stubLookup) {
	t.Helper()
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	lookup := &stubLookup{
		byID:    map[string]*omdb.Movie{"tt1375666": inception},
		byTitle: map[string]*omdb.Movie{"Inception": inception},
	}
	return catalog.New(store, lookup, completer, "gpt-4o-mini", logging.NewNop()), store, lookup
}

func TestAddByQueryUsesIDOrTitle(t *testing.T) {
	completer := &stubCompleter{reply: "  Вор проникает в сны.  "}
	svc, _, lookup := newService(t, completer)

	movie, err := svc.AddByQuery(context.Background(), "Inception")
	if err != nil {
		t.Fatalf("AddByQuery: %v", err)
	}
	if movie.Source != watchlist.SourcePersonal || movie.Description != "Вор проникает в сны." {
		t.Fatalf("unexpected movie %+v", movie)
	}
	if lookup.calls[0] != "title:Inception" {
		t.Fatalf("expected title lookup, got %v", lookup.calls)
	}
	if len(completer.calls) != 1 || completer.calls[0].MaxTokens != 300 || !strings.Contains(completer.calls[0].User, `"Inception"`) {
		t.Fatalf("unexpected describe request %+v", completer.calls)
	}

	_, err = svc.AddByQuery(context.Background(), "tt1375666")
	if !errors.Is(err, services.ErrConflict) {
		t.Fatalf("expected ErrConflict for duplicate, got %v", err)
	}
	if lookup.calls[1] != "id:tt1375666" {
		t.Fatalf("expected id lookup, got %v", lookup.calls)
	}
}

func TestAddByQueryNotFound(t *testing.T) {
	svc, _, _ := newService(t, nil)
	_, err := svc.AddByQuery(context.Background(), "Nothing Like This")
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if services.HTTPStatus(err) != 404 {
		t.Fatalf("expected 404, got %d", services.HTTPStatus(err))
	}
}

func TestAddSurvivesDescriptionFailure(t *testing.T) {
	svc, _, _ := newService(t, &stubCompleter{err: errors.New("model down")})
	movie, err := svc.AddByQuery(context.Background(), "Inception")
	if err != nil {
		t.Fatalf("AddByQuery: %v", err)
	}
	if movie.Description != "" || movie.Plot == "" {
		t.Fatalf("expected entry without description, got %+v", movie)
	}
}

func TestAddByIMDbIDReturnsExisting(t *testing.T) {
	svc, _, lookup := newService(t, nil)
	first, err := svc.AddByIMDbID(context.Background(), "tt1375666", watchlist.SourceTop100)
	if err != nil {
		t.Fatalf("AddByIMDbID: %v", err)
	}
	if first.Source != watchlist.SourceTop100 {
		t.Fatalf("expected top100 source, got %q", first.Source)
	}
	second, err := svc.AddByIMDbID(context.Background(), "tt1375666", watchlist.SourceAwards)
	if err != nil {
		t.Fatalf("AddByIMDbID again: %v", err)
	}
	if second.ID != first.ID || second.Source != watchlist.SourceTop100 {
		t.Fatalf("expected existing entry, got %+v", second)
	}
	if len(lookup.calls) != 1 {
		t.Fatalf("expected a single lookup, got %v", lookup.calls)
	}

	if _, err := svc.AddByIMDbID(context.Background(), "nope", ""); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestAddByIMDbIDRefusesSyntheticIDs(t *testing.T) {
	svc, store, lookup := newService(t, nil)
	synthetic := movieid.Synthetic("Heat", "Схватка")
	testsupport.AddMovie(t, store, watchlist.NewMovie{IMDbID: synthetic, Title: "Схватка"}, watchlist.SourceInstagram)

	_, err := svc.AddByIMDbID(context.Background(), synthetic.String(), watchlist.SourcePersonal)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation for a synthetic id, got %v", err)
	}
	if len(lookup.calls) != 0 {
		t.Fatalf("synthetic id must not reach OMDb, got %v", lookup.calls)
	}
}

func TestAddStoresCanonicalID(t *testing.T) {
	svc, _, _ := newService(t, nil)
	movie, err := svc.AddByQuery(context.Background(), "TT1375666")
	if err != nil {
		t.Fatalf("AddByQuery: %v", err)
	}
	if !movie.IMDbID.IsCanonical() || movie.IMDbID.String() != "tt1375666" {
		t.Fatalf("expected canonical tt1375666, got %s (%s)", movie.IMDbID, movie.IMDbID.Kind())
	}
}

func TestRecommendEmptyList(t *testing.T) {
	completer := &stubCompleter{}
	svc, _, _ := newService(t, completer)
	rec, err := svc.Recommend(context.Background(), "что-то лёгкое", false)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if rec.Explanation != catalog.EmptyListExplanation || len(rec.Movies) != 0 || len(completer.calls) != 0 {
		t.Fatalf("unexpected recommendation %+v calls=%d", rec, len(completer.calls))
	}
}

func TestRecommendFollowsModelOrder(t *testing.T) {
	completer := &stubCompleter{}
	svc, store, _ := newService(t, completer)
	a := testsupport.AddMovie(t, store, watchlist.NewMovie{IMDbID: movieid.Canonical("tt1"), Title: "Альфа", Year: 2001, Plot: strings.Repeat("п", 300)}, watchlist.SourcePersonal)
	b := testsupport.AddMovie(t, store, watchlist.NewMovie{IMDbID: movieid.Canonical("tt2"), Title: "Бета", Cast: []string{"A", "B", "C", "D"}}, watchlist.SourcePersonal)
	c := testsupport.AddMovie(t, store, watchlist.NewMovie{IMDbID: movieid.Canonical("tt3"), Title: "Гамма", Description: "Коротко."}, watchlist.SourcePersonal)
	if _, err := store.SetWatched(context.Background(), c.ID, true); err != nil {
		t.Fatalf("SetWatched: %v", err)
	}

	completer.reply = "РЕКОМЕНДАЦИИ: [" + itoa(b.ID) + ", 999, " + itoa(a.ID) + "]\nОБЪЯСНЕНИЕ: Оба подходят."
	rec, err := svc.Recommend(context.Background(), "драма", false)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(rec.Movies) != 2 || rec.Movies[0].ID != b.ID || rec.Movies[1].ID != a.ID {
		t.Fatalf("unexpected order %+v", rec.Movies)
	}
	if rec.Explanation != "Оба подходят." {
		t.Fatalf("unexpected explanation %q", rec.Explanation)
	}

	prompt := completer.calls[0].User
	if completer.calls[0].MaxTokens != 500 {
		t.Fatalf("unexpected max tokens %d", completer.calls[0].MaxTokens)
	}
	if strings.Contains(prompt, "Гамма") {
		t.Fatal("watched entry must not be offered")
	}
	if !strings.Contains(prompt, "«Альфа» (2001)") || !strings.Contains(prompt, "«Бета» (год неизвестен)") {
		t.Fatalf("prompt missing candidate lines:\n%s", prompt)
	}
	if !strings.Contains(prompt, "Актёры: A, B, C") || strings.Contains(prompt, "A, B, C, D") {
		t.Fatalf("expected top three cast only:\n%s", prompt)
	}
	if !strings.Contains(prompt, strings.Repeat("п", 200)+"...") || strings.Contains(prompt, strings.Repeat("п", 201)) {
		t.Fatalf("expected plot excerpt of 200 runes:\n%s", prompt)
	}

	if _, err := svc.Recommend(context.Background(), "драма", true); err != nil {
		t.Fatalf("Recommend with watched: %v", err)
	}
	if !strings.Contains(completer.calls[1].User, "«Гамма»") {
		t.Fatal("expected watched entry when includeWatched is set")
	}
}

func TestRecommendRequiresModel(t *testing.T) {
	svc, store, _ := newService(t, nil)
	testsupport.AddMovie(t, store, watchlist.NewMovie{IMDbID: movieid.Canonical("tt1"), Title: "One"}, watchlist.SourcePersonal)
	if _, err := svc.Recommend(context.Background(), "любое", false); !errors.Is(err, services.ErrMissingCredentials) {
		t.Fatalf("expected ErrMissingCredentials, got %v", err)
	}
}

func itoa(v int64) string { return strconv.FormatInt(v, 10) }
