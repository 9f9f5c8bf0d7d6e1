package services

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/desertthunder/mvx/internal/models"
)

const (
	DefaultAPIBase   = "https://api.themoviedb.org/3"
	DefaultImageBase = "https://image.tmdb.org/t/p"
	DefaultLanguage  = "ko-KR"
	movieWebBase     = "https://www.themoviedb.org/movie"
)

// Image sizes used by the views.
const (
	SizeOriginal = "original" // banner backdrop
	SizeRow      = "w300"     // home rows
	SizeCard     = "w500"     // infinite grid
	SizeThumb    = "w92"      // table rows
)

// NowPlayingDefaultPage is the page requested for "New Releases" when none is given.
const NowPlayingDefaultPage = 2

// URLBuilder formats TMDB endpoint URLs with a fixed parameter order.
//
// The zero value is not usable; use [NewURLBuilder] or [DefaultURLs].
type URLBuilder struct {
	Base      string
	ImageBase string
	Language  string
}

// DefaultURLs points at the public TMDB API.
var DefaultURLs = NewURLBuilder("", "", "")

// NewURLBuilder returns a [URLBuilder], substituting defaults for empty arguments.
func NewURLBuilder(base, imageBase, language string) URLBuilder {
	if base == "" {
		base = DefaultAPIBase
	}
	if imageBase == "" {
		imageBase = DefaultImageBase
	}
	if language == "" {
		language = DefaultLanguage
	}
	return URLBuilder{
		Base:      strings.TrimRight(base, "/"),
		ImageBase: strings.TrimRight(imageBase, "/"),
		Language:  language,
	}
}

func pageOr(page, fallback int) int {
	if page < 1 {
		return fallback
	}
	return page
}

func (b URLBuilder) listing(endpoint, key string, page int) string {
	return fmt.Sprintf("%s/movie/%s?api_key=%s&language=%s&page=%d",
		b.Base, endpoint, url.QueryEscape(key), url.QueryEscape(b.Language), page)
}

// Popular returns the popular movies URL. Page defaults to 1.
func (b URLBuilder) Popular(key string, page int) string {
	return b.listing("popular", key, pageOr(page, 1))
}

// NowPlaying returns the now playing URL. Page defaults to [NowPlayingDefaultPage].
func (b URLBuilder) NowPlaying(key string, page int) string {
	return b.listing("now_playing", key, pageOr(page, NowPlayingDefaultPage))
}

// TopRated returns the top rated URL. Page defaults to 1.
func (b URLBuilder) TopRated(key string, page int) string {
	return b.listing("top_rated", key, pageOr(page, 1))
}

// Upcoming returns the upcoming URL. Page defaults to 1.
func (b URLBuilder) Upcoming(key string, page int) string {
	return b.listing("upcoming", key, pageOr(page, 1))
}

// Genre returns the discover URL restricted to one genre. Page defaults to 1.
func (b URLBuilder) Genre(key string, genreID, page int) string {
	return fmt.Sprintf("%s/discover/movie?api_key=%s&with_genres=%d&language=%s&page=%d",
		b.Base, url.QueryEscape(key), genreID, url.QueryEscape(b.Language), pageOr(page, 1))
}

// Featured returns the popular movies URL without a page parameter.
func (b URLBuilder) Featured(key string) string {
	return fmt.Sprintf("%s/movie/popular?api_key=%s&language=%s", b.Base, url.QueryEscape(key), url.QueryEscape(b.Language))
}

// Discover returns the filtered discover URL.
//
// Parameters are written in the order api_key, language, sort_by, with_genres,
// primary_release_year, vote_average.gte, with_original_language and then page; unset
// filters are omitted, as is page when it is 1 or less.
func (b URLBuilder) Discover(key string, f models.DiscoverFilters, page int) string {
	params := [][2]string{
		{"api_key", key},
		{"language", b.Language},
		{"sort_by", f.SortOrDefault()},
	}
	if len(f.Genres) > 0 {
		ids := make([]string, len(f.Genres))
		for i, id := range f.Genres {
			ids[i] = strconv.Itoa(id)
		}
		params = append(params, [2]string{"with_genres", strings.Join(ids, ",")})
	}
	if f.Year != nil {
		params = append(params, [2]string{"primary_release_year", strconv.Itoa(*f.Year)})
	}
	if f.Rating != nil {
		params = append(params, [2]string{"vote_average.gte", models.FormatRating(*f.Rating)})
	}
	if len(f.Languages) > 0 {
		params = append(params, [2]string{"with_original_language", strings.Join(f.Languages, ",")})
	}
	if page > 1 {
		params = append(params, [2]string{"page", strconv.Itoa(page)})
	}
	return b.Base + "/discover/movie?" + encodeOrdered(params)
}

// Search returns the free-text search URL. Page defaults to 1.
func (b URLBuilder) Search(key, query string, page int) string {
	return fmt.Sprintf("%s/search/movie?api_key=%s&language=%s&query=%s&page=%d",
		b.Base, url.QueryEscape(key), url.QueryEscape(b.Language), url.QueryEscape(query), pageOr(page, 1))
}

// GenreList returns the URL of the localized genre list.
func (b URLBuilder) GenreList(key string) string {
	return fmt.Sprintf("%s/genre/movie/list?api_key=%s&language=%s", b.Base, url.QueryEscape(key), url.QueryEscape(b.Language))
}

// Image returns the image URL for path at size, or "" when path is empty.
func (b URLBuilder) Image(size, path string) string {
	if path == "" {
		return ""
	}
	return b.ImageBase + "/" + size + path
}

// MovieWebURL returns the public TMDB page for a movie.
func MovieWebURL(id int64) string {
	return fmt.Sprintf("%s/%d", movieWebBase, id)
}

// encodeOrdered form-encodes params without reordering them, unlike [url.Values.Encode].
func encodeOrdered(params [][2]string) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = url.QueryEscape(p[0]) + "=" + url.QueryEscape(p[1])
	}
	return strings.Join(parts, "&")
}

// PopularURL formats [URLBuilder.Popular] against [DefaultURLs].
func PopularURL(key string, page int) string { return DefaultURLs.Popular(key, page) }

// NowPlayingURL formats [URLBuilder.NowPlaying] against [DefaultURLs].
func NowPlayingURL(key string, page int) string { return DefaultURLs.NowPlaying(key, page) }

// GenreURL formats [URLBuilder.Genre] against [DefaultURLs].
func GenreURL(key string, genreID, page int) string { return DefaultURLs.Genre(key, genreID, page) }

// FeaturedURL formats [URLBuilder.Featured] against [DefaultURLs].
func FeaturedURL(key string) string { return DefaultURLs.Featured(key) }

// DiscoverURL formats [URLBuilder.Discover] against [DefaultURLs].
func DiscoverURL(key string, f models.DiscoverFilters, page int) string {
	return DefaultURLs.Discover(key, f, page)
}

// ImageURL formats [URLBuilder.Image] against [DefaultURLs].
func ImageURL(size, path string) string { return DefaultURLs.Image(size, path) }
