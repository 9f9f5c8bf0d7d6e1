// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/mvx/internal/models"
)

// MockMovieService is a test double for [services.MovieService].
//
// Each method records "<name>:<page>" and answers from Pages[name] (with Page set to the
// requested page) or Errors[name]. Methods are safe for concurrent use.
type MockMovieService struct {
	Pages     map[string]*models.MoviePage
	Errors    map[string]error
	GenreList *models.GenreList
	Filters   []models.DiscoverFilters

	mu    sync.Mutex
	calls []string
}

// NewMockMovieService returns a [MockMovieService] that answers every listing with page.
func NewMockMovieService(page *models.MoviePage) *MockMovieService {
	pages := make(map[string]*models.MoviePage)
	for _, name := range []string{"popular", "now_playing", "top_rated", "upcoming", "genre", "featured", "discover", "search"} {
		pages[name] = page
	}
	return &MockMovieService{Pages: pages, Errors: make(map[string]error)}
}

// Calls returns the recorded calls in order.
func (m *MockMovieService) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *MockMovieService) respond(name string, page int) (*models.MoviePage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, fmt.Sprintf("%s:%d", name, page))

	if err := m.Errors[name]; err != nil {
		return nil, err
	}
	p, ok := m.Pages[name]
	if !ok || p == nil {
		return &models.MoviePage{Page: page, Results: []models.Movie{}}, nil
	}
	out := *p
	if page > 0 {
		out.Page = page
	}
	return &out, nil
}

func (m *MockMovieService) Popular(ctx context.Context, page int) (*models.MoviePage, error) {
	return m.respond("popular", page)
}

func (m *MockMovieService) NowPlaying(ctx context.Context, page int) (*models.MoviePage, error) {
	return m.respond("now_playing", page)
}

func (m *MockMovieService) TopRated(ctx context.Context, page int) (*models.MoviePage, error) {
	return m.respond("top_rated", page)
}

func (m *MockMovieService) Upcoming(ctx context.Context, page int) (*models.MoviePage, error) {
	return m.respond("upcoming", page)
}

func (m *MockMovieService) ByGenre(ctx context.Context, genreID, page int) (*models.MoviePage, error) {
	return m.respond("genre", page)
}

func (m *MockMovieService) Featured(ctx context.Context) (*models.MoviePage, error) {
	return m.respond("featured", 0)
}

func (m *MockMovieService) Discover(ctx context.Context, filters models.DiscoverFilters, page int) (*models.MoviePage, error) {
	m.mu.Lock()
	m.Filters = append(m.Filters, filters)
	m.mu.Unlock()
	return m.respond("discover", page)
}

func (m *MockMovieService) Search(ctx context.Context, query string, page int) (*models.MoviePage, error) {
	return m.respond("search", page)
}

func (m *MockMovieService) Genres(ctx context.Context) (*models.GenreList, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "genres:0")
	if err := m.Errors["genres"]; err != nil {
		return nil, err
	}
	if m.GenreList == nil {
		return &models.GenreList{Genres: models.Genres}, nil
	}
	return m.GenreList, nil
}

// MockKeyValidator is a test double for [services.KeyValidator]
type MockKeyValidator struct {
	Err  error
	Keys []string
}

func (m *MockKeyValidator) ValidateKey(ctx context.Context, key string) error {
	m.Keys = append(m.Keys, key)
	return m.Err
}

// SampleMovies builds n movies with ids starting at 1.
func SampleMovies(n int) []models.Movie {
	movies := make([]models.Movie, n)
	for i := range movies {
		id := int64(i + 1)
		movies[i] = models.Movie{
			ID:          id,
			Title:       fmt.Sprintf("Movie %d", id),
			Overview:    fmt.Sprintf("Overview of movie %d", id),
			PosterPath:  fmt.Sprintf("/poster%d.jpg", id),
			ReleaseDate: "2024-01-15",
			VoteAverage: 7.5,
		}
	}
	return movies
}

// SamplePage builds a page of n movies reporting totalPages pages.
func SamplePage(page, totalPages, n int) *models.MoviePage {
	return &models.MoviePage{Page: page, Results: SampleMovies(n), TotalPages: totalPages, TotalResults: totalPages * n}
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// JSONResponse builds an [http.Response] with the given status and body.
func JSONResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
