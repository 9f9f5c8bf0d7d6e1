// TMDB API implementation of [MovieService]
//
// Response shapes follow https://developer.themoviedb.org/reference
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mvx/internal/models"
	"github.com/desertthunder/mvx/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	maxResponseBody  = 8 << 20
	maxErrorBody     = 1 << 20
	defaultTimeout   = 15 * time.Second
	defaultRateLimit = 20
)

// HTTPError represents a non-2xx response from the TMDB API.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// Unwrap lets callers match any API failure with [shared.ErrAPIRequest].
func (e *HTTPError) Unwrap() error {
	return shared.ErrAPIRequest
}

// IsStatus returns true if err (or any wrapped error) is an HTTPError with the given status code.
func IsStatus(err error, code int) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == code
	}
	return false
}

// TMDBOptions configures a [TMDBService]. Zero values select defaults.
type TMDBOptions struct {
	URLs        URLBuilder
	HTTPClient  *http.Client
	AccessToken string        // optional v4 read access token, sent as a bearer
	RateLimit   float64       // requests per second; negative disables limiting
	Burst       int           // limiter burst
	Timeout     time.Duration // per-request client timeout
	CacheTTL    time.Duration // response cache lifetime; 0 disables caching
	Logger      *log.Logger
}

// TMDBOptionsFromConfig maps the [tmdb] config table onto [TMDBOptions].
func TMDBOptionsFromConfig(cfg shared.TMDBConfig, logger *log.Logger) TMDBOptions {
	return TMDBOptions{
		URLs:        NewURLBuilder(cfg.APIBase, cfg.ImageBase, cfg.Language),
		AccessToken: cfg.AccessToken,
		RateLimit:   cfg.RateLimit,
		Burst:       cfg.Burst,
		Timeout:     cfg.Timeout.Duration,
		CacheTTL:    cfg.CacheTTL.Duration,
		Logger:      logger,
	}
}

// TMDBService implements [MovieService] and [KeyValidator] against the TMDB v3 API.
//
// Every request carries the api_key query parameter from its [KeySource]. Requests are
// throttled client side and successful page responses can be cached for [TMDBOptions.CacheTTL].
// Failed requests are not retried.
type TMDBService struct {
	urls    URLBuilder
	keys    KeySource
	client  *http.Client
	plain   *http.Client
	limiter *rate.Limiter
	cache   *responseCache
	logger  *log.Logger
}

// NewTMDBService creates a [TMDBService] that reads the API key from keys on every call.
func NewTMDBService(keys KeySource, opts TMDBOptions) *TMDBService {
	if opts.URLs.Base == "" {
		opts.URLs = DefaultURLs
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	base := opts.HTTPClient
	if base == nil {
		base = &http.Client{Timeout: opts.Timeout}
	}

	client := base
	if opts.AccessToken != "" {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.AccessToken, TokenType: "Bearer"})
		client = oauth2.NewClient(ctx, src)
		client.Timeout = base.Timeout
	}

	limit := rate.Limit(opts.RateLimit)
	switch {
	case opts.RateLimit < 0:
		limit = rate.Inf
	case opts.RateLimit == 0:
		limit = defaultRateLimit
	}
	burst := opts.Burst
	if burst < 1 {
		burst = 1
	}

	return &TMDBService{
		urls:    opts.URLs,
		keys:    keys,
		client:  client,
		plain:   base,
		limiter: rate.NewLimiter(limit, burst),
		cache:   newResponseCache(opts.CacheTTL),
		logger:  opts.Logger,
	}
}

// URLs returns the builder used for requests and image links.
func (s *TMDBService) URLs() URLBuilder {
	return s.urls
}

func (s *TMDBService) key() (string, error) {
	if s.keys == nil {
		return "", shared.ErrNotAuthenticated
	}
	return s.keys.APIKey()
}

func (s *TMDBService) Popular(ctx context.Context, page int) (*models.MoviePage, error) {
	return s.page(ctx, "popular", func(key string) string { return s.urls.Popular(key, page) })
}

func (s *TMDBService) NowPlaying(ctx context.Context, page int) (*models.MoviePage, error) {
	return s.page(ctx, "now playing", func(key string) string { return s.urls.NowPlaying(key, page) })
}

func (s *TMDBService) TopRated(ctx context.Context, page int) (*models.MoviePage, error) {
	return s.page(ctx, "top rated", func(key string) string { return s.urls.TopRated(key, page) })
}

func (s *TMDBService) Upcoming(ctx context.Context, page int) (*models.MoviePage, error) {
	return s.page(ctx, "upcoming", func(key string) string { return s.urls.Upcoming(key, page) })
}

func (s *TMDBService) ByGenre(ctx context.Context, genreID, page int) (*models.MoviePage, error) {
	return s.page(ctx, "genre", func(key string) string { return s.urls.Genre(key, genreID, page) })
}

func (s *TMDBService) Featured(ctx context.Context) (*models.MoviePage, error) {
	return s.page(ctx, "featured", s.urls.Featured)
}

func (s *TMDBService) Discover(ctx context.Context, filters models.DiscoverFilters, page int) (*models.MoviePage, error) {
	return s.page(ctx, "discover", func(key string) string { return s.urls.Discover(key, filters, page) })
}

func (s *TMDBService) Search(ctx context.Context, query string, page int) (*models.MoviePage, error) {
	if query == "" {
		return nil, fmt.Errorf("%w: empty search query", shared.ErrInvalidInput)
	}
	return s.page(ctx, "search", func(key string) string { return s.urls.Search(key, query, page) })
}

// Genres fetches the genre list in the configured language.
func (s *TMDBService) Genres(ctx context.Context) (*models.GenreList, error) {
	key, err := s.key()
	if err != nil {
		return nil, err
	}
	var list models.GenreList
	if err := s.get(ctx, s.client, s.urls.GenreList(key), true, &list); err != nil {
		return nil, fmt.Errorf("tmdb.Genres: %w", err)
	}
	return &list, nil
}

// ValidateKey requests the first popular page with key, bypassing the cache and any bearer token.
//
// Any failure is reported as [shared.ErrInvalidAPIKey].
func (s *TMDBService) ValidateKey(ctx context.Context, key string) error {
	if key == "" {
		return shared.ErrInvalidAPIKey
	}
	var page models.MoviePage
	if err := s.get(ctx, s.plain, s.urls.Popular(key, 1), false, &page); err != nil {
		s.logger.Debug("api key rejected", "error", err)
		return fmt.Errorf("%w: %v", shared.ErrInvalidAPIKey, err)
	}
	return nil
}

func (s *TMDBService) page(ctx context.Context, name string, build func(key string) string) (*models.MoviePage, error) {
	key, err := s.key()
	if err != nil {
		return nil, err
	}

	var page models.MoviePage
	if err := s.get(ctx, s.client, build(key), true, &page); err != nil {
		return nil, fmt.Errorf("tmdb %s: %w", name, err)
	}
	if page.Results == nil {
		page.Results = []models.Movie{}
	}
	return &page, nil
}

// get performs a throttled GET of rawURL and decodes the JSON body into out.
func (s *TMDBService) get(ctx context.Context, client *http.Client, rawURL string, cacheable bool, out any) error {
	if cacheable {
		if body, ok := s.cache.get(rawURL); ok {
			s.logger.Debug("cache hit", "url", redactKey(rawURL))
			return decodeBody(body, out)
		}
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: rate limiter: %v", shared.ErrAPIRequest, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	s.logger.Debug("GET", "url", redactKey(rawURL))
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, redactErr(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return readHTTPError(resp)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return fmt.Errorf("%w: read response: %v", shared.ErrAPIRequest, err)
	}
	if err := decodeBody(body, out); err != nil {
		return err
	}
	if cacheable {
		s.cache.set(rawURL, body)
	}
	return nil
}

func decodeBody(body []byte, out any) error {
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: decode response: %v", shared.ErrAPIRequest, err)
	}
	return nil
}

func readHTTPError(resp *http.Response) error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return &HTTPError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("failed to read body: %v", err)}
	}
	var apiErr struct {
		StatusMessage string `json:"status_message"`
	}
	if json.Unmarshal(body, &apiErr) == nil && apiErr.StatusMessage != "" {
		return &HTTPError{StatusCode: resp.StatusCode, Message: apiErr.StatusMessage}
	}
	msg := string(body)
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return &HTTPError{StatusCode: resp.StatusCode, Message: msg}
}

// redactKey masks the api_key query value so URLs can be logged.
func redactKey(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	if q.Has("api_key") {
		q.Set("api_key", "***")
		u.RawQuery = q.Encode()
	}
	return u.String()
}

func redactErr(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return &url.Error{Op: urlErr.Op, URL: redactKey(urlErr.URL), Err: urlErr.Err}
	}
	return err
}
