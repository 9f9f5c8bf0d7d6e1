package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/mvx/internal/formatter"
	"github.com/desertthunder/mvx/internal/models"
	"github.com/desertthunder/mvx/internal/shared"
	"github.com/urfave/cli/v3"
)

// movieID parses the id argument.
func movieID(cmd *cli.Command) (int64, error) {
	raw := strings.TrimSpace(cmd.StringArg("id"))
	if raw == "" {
		return 0, fmt.Errorf("%w: movie id is required", shared.ErrMissingArgument)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: movie id %q", shared.ErrInvalidArgument, raw)
	}
	return id, nil
}

// currentUser returns the signed in user.
//
// A remembered user id outlives logout, so the stored API key is checked first.
func (r *Runner) currentUser() (string, error) {
	if err := r.requireKey(); err != nil {
		return "", err
	}
	user := r.auth.CurrentUser()
	if user == "" {
		return "", fmt.Errorf("%w: run 'mvx auth login' first", shared.ErrNoCurrentUser)
	}
	return user, nil
}

// WishlistList prints the signed in user's wishlist.
func (r *Runner) WishlistList(ctx context.Context, cmd *cli.Command) error {
	user, err := r.currentUser()
	if err != nil {
		return err
	}
	movies := r.wishlist.Get(user)

	if cmd.Bool("json") {
		return r.writeJSON(movies, cmd.Bool("pretty"))
	}

	r.writePlainHeader("My Wishlist")
	if len(movies) == 0 {
		return r.writePlain("Your wishlist is empty.\n")
	}
	for _, m := range movies {
		r.writePlain("%8d  %s\n", m.ID, formatter.MovieLine(m))
	}
	return nil
}

// findMovie looks id up on one page of a listing.
func (r *Runner) findMovie(ctx context.Context, cmd *cli.Command, id int64) (models.Movie, error) {
	if err := r.requireKey(); err != nil {
		return models.Movie{}, err
	}
	listing := cmd.String("from")
	fetch, err := r.engine.Listing(listing, cmd.Int("genre"))
	if err != nil {
		return models.Movie{}, err
	}
	page, _, err := pageRange(cmd)
	if err != nil {
		return models.Movie{}, err
	}

	result, err := fetch(ctx, page)
	if err != nil {
		return models.Movie{}, err
	}
	if i := models.IndexOf(result.Results, id); i >= 0 {
		return result.Results[i], nil
	}
	return models.Movie{}, fmt.Errorf("%w: movie %d is not on page %d of %s", shared.ErrMovieNotFound, id, page, listing)
}

// WishlistToggle adds a movie to the wishlist, or removes it when already saved.
//
// The movie comes from --data when given; otherwise it is looked up on a listing page.
// Removing never needs the movie record.
func (r *Runner) WishlistToggle(ctx context.Context, cmd *cli.Command) error {
	user, err := r.currentUser()
	if err != nil {
		return err
	}
	id, err := movieID(cmd)
	if err != nil {
		return err
	}

	var movie models.Movie
	switch {
	case r.wishlist.IsMember(user, id):
		movie = models.Movie{ID: id}
	case cmd.String("data") != "":
		if err := json.Unmarshal([]byte(cmd.String("data")), &movie); err != nil {
			return fmt.Errorf("%w: data is not a movie: %v", shared.ErrInvalidInput, err)
		}
		if movie.ID != id {
			return fmt.Errorf("%w: data has id %d, expected %d", shared.ErrInvalidInput, movie.ID, id)
		}
	default:
		if movie, err = r.findMovie(ctx, cmd, id); err != nil {
			return err
		}
	}

	if r.wishlist.Toggle(user, movie) {
		return r.writePlain("♥ Added to wishlist: %s\n", movie.Title)
	}
	return r.writePlain("Removed from wishlist: %d\n", id)
}

// WishlistRemove deletes a movie from the wishlist.
func (r *Runner) WishlistRemove(ctx context.Context, cmd *cli.Command) error {
	user, err := r.currentUser()
	if err != nil {
		return err
	}
	id, err := movieID(cmd)
	if err != nil {
		return err
	}

	r.wishlist.Remove(user, id)
	return r.writePlain("Removed from wishlist: %d\n", id)
}

// WishlistCheck reports whether a movie is saved.
func (r *Runner) WishlistCheck(ctx context.Context, cmd *cli.Command) error {
	user, err := r.currentUser()
	if err != nil {
		return err
	}
	id, err := movieID(cmd)
	if err != nil {
		return err
	}

	if r.wishlist.IsMember(user, id) {
		return r.writePlain("♥ %d is in your wishlist\n", id)
	}
	return r.writePlain("%d is not in your wishlist\n", id)
}

// WishlistExport writes the wishlist to a file.
func (r *Runner) WishlistExport(ctx context.Context, cmd *cli.Command) error {
	user, err := r.currentUser()
	if err != nil {
		return err
	}

	description := cmd.String("description")
	if description == "" {
		description = "Saved movies of " + user
	}
	return r.writeExport(cmd, &formatter.MovieExport{
		Name:        cmd.String("name"),
		Description: description,
		Owner:       user,
		Movies:      r.wishlist.Get(user),
		ExportedAt:  time.Now().UTC(),
	})
}
