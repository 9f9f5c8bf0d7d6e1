// package services defines the movie catalogue and account services.
package services

import (
	"context"

	"github.com/desertthunder/mvx/internal/models"
	"github.com/desertthunder/mvx/internal/shared"
)

// MovieService is the movie catalogue used by tasks and views.
type MovieService interface {
	// Popular lists popular movies. Page defaults to 1.
	Popular(ctx context.Context, page int) (*models.MoviePage, error)

	// NowPlaying lists movies in theaters. Page defaults to 2.
	NowPlaying(ctx context.Context, page int) (*models.MoviePage, error)

	TopRated(ctx context.Context, page int) (*models.MoviePage, error)
	Upcoming(ctx context.Context, page int) (*models.MoviePage, error)

	// ByGenre lists movies tagged with genreID.
	ByGenre(ctx context.Context, genreID, page int) (*models.MoviePage, error)

	// Featured lists the candidates for the home banner.
	Featured(ctx context.Context) (*models.MoviePage, error)

	// Discover lists movies matching filters.
	Discover(ctx context.Context, filters models.DiscoverFilters, page int) (*models.MoviePage, error)

	// Search lists movies whose title matches query.
	Search(ctx context.Context, query string, page int) (*models.MoviePage, error)

	// Genres returns the localized genre names.
	Genres(ctx context.Context) (*models.GenreList, error)
}

// KeyValidator checks that a key is accepted by the movie API.
type KeyValidator interface {
	ValidateKey(ctx context.Context, key string) error
}

// KeySource supplies the API key of the signed-in user.
type KeySource interface {
	APIKey() (string, error)
}

// StaticKey is a [KeySource] with a fixed key.
type StaticKey string

// APIKey returns the key, or [shared.ErrNotAuthenticated] when it is empty.
func (k StaticKey) APIKey() (string, error) {
	if k == "" {
		return "", shared.ErrNotAuthenticated
	}
	return string(k), nil
}

var (
	_ MovieService = (*TMDBService)(nil)
	_ KeyValidator = (*TMDBService)(nil)
	_ KeySource    = (*AuthService)(nil)
	_ KeySource    = StaticKey("")
)
