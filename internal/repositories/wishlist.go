package repositories

import (
	"slices"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mvx/internal/models"
	"github.com/desertthunder/mvx/internal/shared"
)

// WishlistRepository manages per-user saved movies stored under [shared.KeyWishlists].
//
// Read failures never surface to callers: they are logged and treated as an empty wishlist.
type WishlistRepository struct {
	store  shared.Storage
	logger *log.Logger
}

// NewWishlistRepository creates a new [WishlistRepository] over store
func NewWishlistRepository(store shared.Storage, logger *log.Logger) *WishlistRepository {
	return &WishlistRepository{store: store, logger: logger}
}

func (r *WishlistRepository) load() (models.Wishlists, error) {
	wishlists := models.Wishlists{}
	if err := readRecord(r.store, shared.KeyWishlists, &wishlists); err != nil {
		return nil, err
	}
	if wishlists == nil {
		wishlists = models.Wishlists{}
	}
	return wishlists, nil
}

// Get returns the movies saved by userID, oldest first.
func (r *WishlistRepository) Get(userID string) []models.Movie {
	wishlists, err := r.load()
	if err != nil {
		r.logger.Error("error getting wishlist", "user", userID, "error", err)
		return []models.Movie{}
	}
	movies := wishlists[userID]
	if movies == nil {
		return []models.Movie{}
	}
	r.logger.Debug("loaded wishlist", "user", userID, "count", len(movies))
	return movies
}

// Toggle removes movie from userID's wishlist when present and appends it otherwise.
//
// It returns true when the movie is in the wishlist afterwards. An empty userID or any
// storage failure returns false and leaves the record unchanged.
func (r *WishlistRepository) Toggle(userID string, movie models.Movie) bool {
	if userID == "" {
		return false
	}

	wishlists, err := r.load()
	if err != nil {
		r.logger.Error("error toggling wishlist", "user", userID, "error", err)
		return false
	}

	movies := wishlists[userID]
	idx := models.IndexOf(movies, movie.ID)
	if idx >= 0 {
		movies = slices.Delete(movies, idx, idx+1)
	} else {
		movies = append(movies, movie)
	}
	if movies == nil {
		movies = []models.Movie{}
	}
	wishlists[userID] = movies

	if err := writeRecord(r.store, shared.KeyWishlists, wishlists); err != nil {
		r.logger.Error("error toggling wishlist", "user", userID, "error", err)
		return false
	}
	r.logger.Debug("updated wishlist", "user", userID, "movie", movie.ID, "added", idx < 0)
	return idx < 0
}

// Remove deletes every entry with movieID from userID's wishlist. An empty userID is a no-op.
func (r *WishlistRepository) Remove(userID string, movieID int64) {
	if userID == "" {
		return
	}

	wishlists, err := r.load()
	if err != nil {
		r.logger.Error("error removing from wishlist", "user", userID, "error", err)
		return
	}

	kept := slices.DeleteFunc(slices.Clone(wishlists[userID]), func(m models.Movie) bool { return m.ID == movieID })
	if kept == nil {
		kept = []models.Movie{}
	}
	wishlists[userID] = kept

	if err := writeRecord(r.store, shared.KeyWishlists, wishlists); err != nil {
		r.logger.Error("error removing from wishlist", "user", userID, "error", err)
		return
	}
	r.logger.Debug("movie removed from wishlist", "user", userID, "movie", movieID)
}

// IsMember reports whether userID has saved movieID.
func (r *WishlistRepository) IsMember(userID string, movieID int64) bool {
	if userID == "" {
		return false
	}

	wishlists, err := r.load()
	if err != nil {
		r.logger.Error("error checking wishlist", "user", userID, "error", err)
		return false
	}
	return models.IndexOf(wishlists[userID], movieID) >= 0
}
