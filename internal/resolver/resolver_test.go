package resolver

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"moviepicker/internal/extraction"
	"moviepicker/internal/identification/omdb"
)

type searchCall struct {
	query     string
	mediaType string
}

type fakeSearcher struct {
	search  map[searchCall][]omdb.SearchResult
	titles  map[string]*omdb.Movie
	err     error
	calls   []searchCall
	lookups []string
}

func (f *fakeSearcher) Search(_ context.Context, query, mediaType string) ([]omdb.SearchResult, error) {
	call := searchCall{query, mediaType}
	f.calls = append(f.calls, call)
	if f.err != nil {
		return nil, f.err
	}
	return f.search[call], nil
}

func (f *fakeSearcher) LookupTitle(_ context.Context, title string, _ int) (*omdb.Movie, error) {
	f.lookups = append(f.lookups, title)
	return f.titles[title], nil
}

func hit(id string) omdb.SearchResult {
	return omdb.SearchResult{IMDbID: id, Title: "Title " + id, Year: "2023", PosterURL: "https://img/" + id}
}

var poorThings = extraction.Mention{TitleRU: "Бедные-несчастные", TitleEN: "Poor Things"}

func TestResolveFirstTierStopsAtFirstHit(t *testing.T) {
	fake := &fakeSearcher{search: map[searchCall][]omdb.SearchResult{
		{"Poor Things", "movie"}:       {hit("tt1"), {IMDbID: "tt2", Title: "No poster"}, hit("tt3"), hit("tt4"), hit("tt5")},
		{"Бедные-несчастные", "movie"}: {hit("tt9")},
	}}
	r := New(fake, 3, nil)
	seen := Seen{}
	got, err := r.Resolve(context.Background(), poorThings, seen)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	ids := idsOf(got)
	if !reflect.DeepEqual(ids, []string{"tt1", "tt3", "tt4"}) {
		t.Fatalf("unexpected ids %v", ids)
	}
	if len(fake.calls) != 1 {
		t.Fatalf("expected a single search, got %v", fake.calls)
	}
	if !seen.Has("tt4") || seen.Has("tt5") || seen.Has("tt2") {
		t.Fatalf("unexpected seen set %v", seen)
	}
}

func TestResolveSkipsSeenAndFallsThroughQueries(t *testing.T) {
	fake := &fakeSearcher{search: map[searchCall][]omdb.SearchResult{
		{"Poor Things", "movie"}:       {hit("tt1")},
		{"Бедные-несчастные", "movie"}: {hit("tt1"), hit("tt7")},
	}}
	seen := Seen{"tt1": {}}
	got, err := New(fake, 3, nil).Resolve(context.Background(), poorThings, seen)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !reflect.DeepEqual(idsOf(got), []string{"tt7"}) {
		t.Fatalf("unexpected ids %v", idsOf(got))
	}
	want := []searchCall{{"Poor Things", "movie"}, {"Бедные-несчастные", "movie"}}
	if !reflect.DeepEqual(fake.calls, want) {
		t.Fatalf("unexpected call order %v", fake.calls)
	}
}

func TestResolveUntypedTier(t *testing.T) {
	fake := &fakeSearcher{search: map[searchCall][]omdb.SearchResult{
		{"Бедные-несчастные", ""}: {hit("tt5")},
	}}
	got, err := New(fake, 3, nil).Resolve(context.Background(), poorThings, Seen{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !reflect.DeepEqual(idsOf(got), []string{"tt5"}) {
		t.Fatalf("unexpected ids %v", idsOf(got))
	}
	want := []searchCall{
		{"Poor Things", "movie"},
		{"Бедные-несчастные", "movie"},
		{"Poor Things", ""},
		{"Бедные-несчастные", ""},
	}
	if !reflect.DeepEqual(fake.calls, want) {
		t.Fatalf("unexpected call order %v", fake.calls)
	}
	if len(fake.lookups) != 0 {
		t.Fatal("exact lookup must not run after a search hit")
	}
}

func TestResolveExactTitleTier(t *testing.T) {
	fake := &fakeSearcher{titles: map[string]*omdb.Movie{
		"Poor Things":       {IMDbID: "tt1", Title: "Poor Things"},
		"Бедные-несчастные": {IMDbID: "tt14230458", Title: "Poor Things", Year: 2023, PosterURL: "https://img/p"},
	}}
	got, err := New(fake, 3, nil).Resolve(context.Background(), poorThings, Seen{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	want := []Match{{IMDbID: "tt14230458", Title: "Poor Things", Year: "2023", PosterURL: "https://img/p"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v want %+v", got, want)
	}
	if !reflect.DeepEqual(fake.lookups, []string{"Poor Things", "Бедные-несчастные"}) {
		t.Fatalf("unexpected lookups %v", fake.lookups)
	}
}

func TestResolveNoMatchIsEmpty(t *testing.T) {
	fake := &fakeSearcher{}
	got, err := New(fake, 0, nil).Resolve(context.Background(), extraction.Mention{TitleEN: "  Unknown   Film "}, Seen{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty slice, got %#v", got)
	}
	if fake.calls[0].query != "Unknown Film" {
		t.Fatalf("query not normalised: %q", fake.calls[0].query)
	}
	if len(fake.calls) != 2 {
		t.Fatalf("empty russian title must be skipped, got %v", fake.calls)
	}
}

func TestResolveDedupAcrossMentions(t *testing.T) {
	fake := &fakeSearcher{search: map[searchCall][]omdb.SearchResult{
		{"Dune", "movie"}:           {hit("tt1160419"), hit("tt15239678")},
		{"Dune: Part Two", "movie"}: {hit("tt15239678"), hit("tt1160419")},
	}}
	r := New(fake, 3, nil)
	seen := Seen{}
	var all []Match
	for _, m := range []extraction.Mention{{TitleEN: "Dune"}, {TitleEN: "Dune: Part Two"}} {
		got, err := r.Resolve(context.Background(), m, seen)
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		all = append(all, got...)
	}
	counts := map[string]int{}
	for _, m := range all {
		counts[m.IMDbID]++
		if counts[m.IMDbID] > 1 {
			t.Fatalf("duplicate id %s in %v", m.IMDbID, idsOf(all))
		}
	}
	if len(all) != 2 {
		t.Fatalf("expected two unique matches, got %v", idsOf(all))
	}
}

func TestResolvePropagatesUpstreamErrors(t *testing.T) {
	boom := errors.New("omdb down")
	fake := &fakeSearcher{err: boom}
	if _, err := New(fake, 3, nil).Resolve(context.Background(), poorThings, Seen{}); !errors.Is(err, boom) {
		t.Fatalf("expected upstream error, got %v", err)
	}
}

func idsOf(matches []Match) []string {
	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, m.IMDbID)
	}
	return ids
}
