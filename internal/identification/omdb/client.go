package omdb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"moviepicker/internal/services"
)

const (
	// DefaultBaseURL is the public OMDb endpoint.
	DefaultBaseURL = "http://www.omdbapi.com/"
	notAvailable   = "N/A"
)

// SearchResult is one hit of an OMDb title search.
type SearchResult struct {
	IMDbID    string `json:"imdb_id"`
	Title     string `json:"title"`
	Year      string `json:"year"`
	PosterURL string `json:"poster_url"`
}

// Movie is the full OMDb record for a title.
type Movie struct {
	IMDbID    string
	Title     string
	Year      int
	Genres    []string
	Plot      string
	Cast      []string
	Director  string
	PosterURL string
	Rating    *float64
	Awards    string
}

// Searcher is the subset of the client used to resolve extracted titles.
type Searcher interface {
	Search(ctx context.Context, query, mediaType string) ([]SearchResult, error)
	LookupTitle(ctx context.Context, title string, year int) (*Movie, error)
}

// Client talks to the OMDb API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *services.Breaker
}

var _ Searcher = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRateLimit caps outbound requests per second. Zero disables limiting.
func WithRateLimit(perSecond float64) Option {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = nil
			return
		}
		burst := int(perSecond)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithBreaker routes requests through a circuit breaker.
func WithBreaker(b *services.Breaker) Option {
	return func(c *Client) {
		c.breaker = b
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient = &http.Client{Timeout: timeout}
		}
	}
}

// New creates an OMDb client.
func New(apiKey, baseURL string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errMissingKey("")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	client := &Client{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

func errMissingKey(op string) error {
	return services.Wrap(services.ErrMissingCredentials, "omdb", op, "OMDb API key is not configured (set OMDB_API_KEY)", nil)
}

// Disabled stands in for a Client when no API key is configured. Every call
// fails with ErrMissingCredentials so callers report a 400 instead of crashing.
type Disabled struct{}

func (Disabled) Search(context.Context, string, string) ([]SearchResult, error) {
	return nil, errMissingKey("search")
}

func (Disabled) LookupID(context.Context, string) (*Movie, error) {
	return nil, errMissingKey("lookup")
}

func (Disabled) LookupTitle(context.Context, string, int) (*Movie, error) {
	return nil, errMissingKey("lookup")
}

type searchPayload struct {
	Response string `json:"Response"`
	Error    string `json:"Error"`
	Search   []struct {
		Title  string `json:"Title"`
		Year   string `json:"Year"`
		IMDbID string `json:"imdbID"`
		Poster string `json:"Poster"`
	} `json:"Search"`
}

type moviePayload struct {
	Response   string `json:"Response"`
	Error      string `json:"Error"`
	Title      string `json:"Title"`
	Year       string `json:"Year"`
	Genre      string `json:"Genre"`
	Director   string `json:"Director"`
	Actors     string `json:"Actors"`
	Plot       string `json:"Plot"`
	Awards     string `json:"Awards"`
	Poster     string `json:"Poster"`
	IMDbRating string `json:"imdbRating"`
	IMDbID     string `json:"imdbID"`
}

// Search finds titles matching query. An empty mediaType searches all types.
// OMDb's "not found" answer yields an empty slice.
func (c *Client) Search(ctx context.Context, query, mediaType string) ([]SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("omdb search: query must not be empty")
	}
	params := url.Values{}
	params.Set("s", query)
	if mediaType = strings.TrimSpace(mediaType); mediaType != "" {
		params.Set("type", mediaType)
	}
	var payload searchPayload
	if err := c.get(ctx, "search", params, &payload); err != nil {
		return nil, err
	}
	if strings.EqualFold(payload.Response, "False") {
		return []SearchResult{}, nil
	}
	results := make([]SearchResult, 0, len(payload.Search))
	for _, item := range payload.Search {
		results = append(results, SearchResult{
			IMDbID:    item.IMDbID,
			Title:     item.Title,
			Year:      item.Year,
			PosterURL: available(item.Poster),
		})
	}
	return results, nil
}

// LookupID fetches the full record of an IMDb id. Unknown ids yield nil.
func (c *Client) LookupID(ctx context.Context, imdbID string) (*Movie, error) {
	imdbID = strings.TrimSpace(imdbID)
	if imdbID == "" {
		return nil, errors.New("omdb lookup: imdb id must not be empty")
	}
	params := url.Values{}
	params.Set("i", imdbID)
	params.Set("plot", "full")
	return c.lookup(ctx, "lookup id", params)
}

// LookupTitle fetches the best exact match for title, optionally narrowed by
// year. No match yields nil.
func (c *Client) LookupTitle(ctx context.Context, title string, year int) (*Movie, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, errors.New("omdb lookup: title must not be empty")
	}
	params := url.Values{}
	params.Set("t", title)
	params.Set("plot", "full")
	if year > 0 {
		params.Set("y", strconv.Itoa(year))
	}
	return c.lookup(ctx, "lookup title", params)
}

func (c *Client) lookup(ctx context.Context, op string, params url.Values) (*Movie, error) {
	var payload moviePayload
	if err := c.get(ctx, op, params, &payload); err != nil {
		return nil, err
	}
	if strings.EqualFold(payload.Response, "False") {
		return nil, nil
	}
	movie := parseMovie(payload)
	return &movie, nil
}

func (c *Client) get(ctx context.Context, op string, params url.Values, target any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("omdb %s: rate limit wait: %w", op, err)
		}
	}
	params.Set("apikey", c.apiKey)
	endpoint := c.baseURL
	if strings.Contains(endpoint, "?") {
		endpoint += "&" + params.Encode()
	} else {
		endpoint += "?" + params.Encode()
	}

	_, err := services.Guard(c.breaker, func() (struct{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return struct{}{}, fmt.Errorf("omdb %s: build request: %w", op, err)
		}
		requestStart := time.Now()
		resp, err := c.httpClient.Do(req)
		latency := time.Since(requestStart)
		if err != nil {
			return struct{}{}, fmt.Errorf("omdb %s: execute request (latency=%v): %w", op, latency, redactKey(err, c.apiKey))
		}
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return struct{}{}, fmt.Errorf("omdb %s: read body: %w", op, err)
		}
		if resp.StatusCode != http.StatusOK {
			// OMDb answers 401 with a JSON body for bad keys.
			return struct{}{}, fmt.Errorf("omdb %s returned %d (latency=%v)", op, resp.StatusCode, latency)
		}
		if err := json.Unmarshal(body, target); err != nil {
			return struct{}{}, fmt.Errorf("omdb %s: decode response: %w", op, err)
		}
		return struct{}{}, nil
	})
	return err
}

func parseMovie(p moviePayload) Movie {
	movie := Movie{
		IMDbID:    p.IMDbID,
		Title:     p.Title,
		Genres:    splitList(p.Genre),
		Cast:      splitList(p.Actors),
		Plot:      available(p.Plot),
		Director:  available(p.Director),
		PosterURL: available(p.Poster),
		Awards:    available(p.Awards),
		Year:      parseYear(p.Year),
	}
	if rating := available(p.IMDbRating); rating != "" {
		if value, err := strconv.ParseFloat(rating, 64); err == nil {
			movie.Rating = &value
		}
	}
	return movie
}

// parseYear takes the first year of ranges such as "2010–2015".
func parseYear(value string) int {
	value = available(value)
	if value == "" {
		return 0
	}
	first, _, _ := strings.Cut(value, "–")
	year, err := strconv.Atoi(strings.TrimSpace(first))
	if err != nil {
		return 0
	}
	return year
}

func splitList(value string) []string {
	value = available(value)
	if value == "" {
		return []string{}
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		out = append(out, strings.TrimSpace(part))
	}
	return out
}

func available(value string) string {
	if strings.TrimSpace(value) == notAvailable {
		return ""
	}
	return value
}

// redactKey keeps the API key out of url.Error messages.
func redactKey(err error, key string) error {
	var urlErr *url.Error
	if key != "" && errors.As(err, &urlErr) {
		urlErr.URL = strings.ReplaceAll(urlErr.URL, key, "***")
	}
	return err
}
