package tasks

import (
	"context"
	"strings"

	"github.com/desertthunder/mvx/internal/models"
)

// SearchResult is one page of discovery or free-text search results.
type SearchResult struct {
	Filters models.DiscoverFilters
	Chips   []models.FilterChip
	Page    *models.MoviePage
}

// Search runs filters against the catalogue.
//
// A non-blank Query uses title search and ignores the other filters; otherwise the discover
// endpoint is queried with every active filter.
func (e *Engine) Search(ctx context.Context, progress chan<- ProgressUpdate, filters models.DiscoverFilters, page int) (*SearchResult, error) {
	chips := filters.Chips()
	e.sendProgress(progress, discoverUpdate(len(chips)))

	var (
		result *models.MoviePage
		err    error
	)
	if q := strings.TrimSpace(filters.Query); q != "" {
		result, err = e.movies.Search(ctx, q, page)
	} else {
		result, err = e.movies.Discover(ctx, filters, page)
	}
	if err != nil {
		e.logger.Error("error fetching movies", "error", err)
		return nil, err
	}

	return &SearchResult{Filters: filters, Chips: chips, Page: result}, nil
}
