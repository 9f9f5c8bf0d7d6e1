package tasks

import (
	"context"
	"fmt"

	"github.com/desertthunder/mvx/internal/models"
	"github.com/desertthunder/mvx/internal/shared"
)

const (
	// MaxPages caps pagination; TMDB rejects pages above it.
	MaxPages = 500

	// TableRows is the number of movies a table page shows.
	TableRows = 6

	windowRadius = 2
)

// TablePage is one page of the popular table view.
type TablePage struct {
	Page       int
	TotalPages int
	Movies     []models.Movie
	Window     []int // page links centred on Page
	ShowFirst  bool  // link to page 1 before the window
	LeadingGap bool  // ellipsis between page 1 and the window
	ShowLast   bool  // link to the last page after the window
	TrailGap   bool  // ellipsis between the window and the last page
}

// Rank returns the 1-based position of the i-th movie across all pages.
func (p TablePage) Rank(i int) int {
	return (p.Page-1)*TableRows + i + 1
}

// HasPrev reports whether a previous page exists.
func (p TablePage) HasPrev() bool { return p.Page > 1 }

// HasNext reports whether a next page exists.
func (p TablePage) HasNext() bool { return p.Page < p.TotalPages }

// CappedTotal limits a reported page count to [MaxPages].
func CappedTotal(totalPages int) int {
	return shared.MinInt(totalPages, MaxPages)
}

// PageWindow returns the pages current-2 through current+2 that lie within [1, total].
func PageWindow(current, total int) []int {
	window := make([]int, 0, 2*windowRadius+1)
	for p := current - windowRadius; p <= current+windowRadius; p++ {
		if p > 0 && p <= total {
			window = append(window, p)
		}
	}
	return window
}

// PopularTable fetches one page of popular movies for the table view.
func (e *Engine) PopularTable(ctx context.Context, page int) (*TablePage, error) {
	if page < 1 {
		return nil, fmt.Errorf("%w: page must be at least 1", shared.ErrInvalidArgument)
	}
	if page > MaxPages {
		return nil, fmt.Errorf("%w: page must be at most %d", shared.ErrInvalidArgument, MaxPages)
	}

	result, err := e.movies.Popular(ctx, page)
	if err != nil {
		return nil, err
	}

	movies := result.Results
	if len(movies) > TableRows {
		movies = movies[:TableRows]
	}

	total := CappedTotal(result.TotalPages)
	return &TablePage{
		Page:       page,
		TotalPages: total,
		Movies:     movies,
		Window:     PageWindow(page, total),
		ShowFirst:  page > windowRadius,
		LeadingGap: page > windowRadius+1,
		ShowLast:   page < total-1,
		TrailGap:   page < total-windowRadius,
	}, nil
}

// InfiniteFeed accumulates popular pages for the infinite scroll view.
//
// The zero value is ready to use and loads page 1 first.
type InfiniteFeed struct {
	Movies     []models.Movie
	Page       int // last page loaded
	TotalPages int
	HasMore    bool
	loaded     bool
}

// LoadMore fetches the next page and appends its movies.
//
// It is a no-op once [InfiniteFeed.HasMore] is false. On error the feed is unchanged.
func (e *Engine) LoadMore(ctx context.Context, feed *InfiniteFeed) error {
	if feed.loaded && !feed.HasMore {
		return nil
	}

	next := feed.Page + 1
	result, err := e.movies.Popular(ctx, next)
	if err != nil {
		e.logger.Error("error fetching movies", "page", next, "error", err)
		return err
	}

	feed.Movies = append(feed.Movies, result.Results...)
	feed.Page = next
	feed.TotalPages = CappedTotal(result.TotalPages)
	feed.HasMore = next < feed.TotalPages
	feed.loaded = true
	return nil
}
