package tasks

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/desertthunder/mvx/internal/models"
	"github.com/desertthunder/mvx/internal/shared"
)

// PageFunc fetches one page of a movie listing.
type PageFunc func(ctx context.Context, page int) (*models.MoviePage, error)

// Listing names accepted by [Engine.Listing].
const (
	ListPopular    = "popular"
	ListNowPlaying = "now-playing"
	ListTopRated   = "top-rated"
	ListUpcoming   = "upcoming"
	ListGenre      = "genre"
)

// Listings are the listing names in display order.
var Listings = []string{ListPopular, ListNowPlaying, ListTopRated, ListUpcoming, ListGenre}

// Listing resolves a listing name to a [PageFunc]. genreID is only used by [ListGenre].
func (e *Engine) Listing(name string, genreID int) (PageFunc, error) {
	switch name {
	case ListPopular:
		return e.movies.Popular, nil
	case ListNowPlaying:
		return e.movies.NowPlaying, nil
	case ListTopRated:
		return e.movies.TopRated, nil
	case ListUpcoming:
		return e.movies.Upcoming, nil
	case ListGenre:
		if genreID <= 0 {
			return nil, fmt.Errorf("%w: genre listing needs a genre id", shared.ErrMissingArgument)
		}
		return func(ctx context.Context, page int) (*models.MoviePage, error) {
			return e.movies.ByGenre(ctx, genreID, page)
		}, nil
	default:
		return nil, fmt.Errorf("%w: unknown listing %q", shared.ErrInvalidArgument, name)
	}
}

// CollectOpts contains configuration for fetching a range of pages.
type CollectOpts struct {
	From       int // first page (default: 1)
	To         int // last page, inclusive (default: From)
	NumWorkers int // concurrent fetches (default: 3, max: 10)
}

// CollectResult holds the merged movies of a page range.
type CollectResult struct {
	Movies     []models.Movie // in page order, first occurrence of each id
	Pages      int            // pages fetched successfully
	TotalPages int            // capped page count reported by the API
	Failed     map[int]error  // failed pages
}

type pageResult struct {
	page   int
	movies []models.Movie
	total  int
	err    error
}

// Collect fetches pages From..To concurrently and merges them.
//
// Failed pages are recorded and skipped. An error is returned only when every page fails or
// ctx is canceled.
func (e *Engine) Collect(ctx context.Context, prog chan<- ProgressUpdate, fetch PageFunc, opts CollectOpts) (*CollectResult, error) {
	if opts.From < 1 {
		opts.From = 1
	}
	if opts.To < opts.From {
		opts.To = opts.From
	}
	if opts.To > MaxPages {
		return nil, fmt.Errorf("%w: page must be at most %d", shared.ErrInvalidArgument, MaxPages)
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 3
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}

	count := opts.To - opts.From + 1
	jobs := make(chan int, count)
	results := make(chan pageResult, count)

	var wg sync.WaitGroup
	for range opts.NumWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for page := range jobs {
				if ctx.Err() != nil {
					results <- pageResult{page: page, err: ctx.Err()}
					continue
				}
				res, err := fetch(ctx, page)
				if err != nil {
					results <- pageResult{page: page, err: err}
					continue
				}
				results <- pageResult{page: page, movies: res.Results, total: res.TotalPages}
			}
		}()
	}

	for page := opts.From; page <= opts.To; page++ {
		jobs <- page
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	collected := make([]pageResult, 0, count)
	result := &CollectResult{Failed: make(map[int]error)}
	step := 0
	for res := range results {
		step++
		if res.err != nil {
			result.Failed[res.page] = res.err
			e.logger.Warn("page fetch failed", "page", res.page, "error", res.err)
			e.sendProgress(prog, pageFailedUpdate(step, count, res.page, res.err))
			continue
		}
		collected = append(collected, res)
		e.sendProgress(prog, pageFetchedUpdate(step, count, res.page, len(res.movies)))
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(collected) == 0 {
		return nil, fmt.Errorf("all %d pages failed: %w", count, result.Failed[opts.From])
	}

	sort.Slice(collected, func(i, j int) bool { return collected[i].page < collected[j].page })

	seen := make(map[int64]bool)
	for _, res := range collected {
		result.TotalPages = CappedTotal(res.total)
		for _, m := range res.movies {
			if seen[m.ID] {
				continue
			}
			seen[m.ID] = true
			result.Movies = append(result.Movies, m)
		}
	}
	result.Pages = len(collected)
	return result, nil
}
