package tasks

import (
	"context"
	"sync"

	"github.com/desertthunder/mvx/internal/models"
	"golang.org/x/sync/errgroup"
)

// Home row titles, in display order.
const (
	RowPopular     = "Popular Movies"
	RowNewReleases = "New Releases"
	RowAction      = "Action Movies"
)

// ActionGenreID is the genre shown in the [RowAction] row.
const ActionGenreID = 28

// Row is one titled strip of the home screen.
//
// Err records why the row is empty; it never fails the whole feed.
type Row struct {
	Title  string
	Movies []models.Movie
	Err    error
}

// HomeFeed is the home screen: an optional banner and the fixed rows.
type HomeFeed struct {
	Banner *models.Movie
	Rows   []Row
}

type rowSource struct {
	title string
	fetch func(ctx context.Context) (*models.MoviePage, error)
}

func (e *Engine) homeRows() []rowSource {
	return []rowSource{
		{RowPopular, func(ctx context.Context) (*models.MoviePage, error) { return e.movies.Popular(ctx, 1) }},
		{RowNewReleases, func(ctx context.Context) (*models.MoviePage, error) { return e.movies.NowPlaying(ctx, 0) }},
		{RowAction, func(ctx context.Context) (*models.MoviePage, error) { return e.movies.ByGenre(ctx, ActionGenreID, 1) }},
	}
}

// Home fetches the banner candidates and every row concurrently.
//
// The banner is a random pick from the featured results and is nil when that request fails
// or returns nothing. Failed rows are logged and left empty. Only cancellation of ctx is
// returned as an error.
func (e *Engine) Home(ctx context.Context, progress chan<- ProgressUpdate) (*HomeFeed, error) {
	sources := e.homeRows()
	feed := &HomeFeed{Rows: make([]Row, len(sources))}
	total := len(sources) + 1

	var (
		mu   sync.Mutex
		done int
	)
	report := func(update func(step int) ProgressUpdate) {
		mu.Lock()
		done++
		step := done
		mu.Unlock()
		e.sendProgress(progress, update(step))
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		page, err := e.movies.Featured(gctx)
		report(func(step int) ProgressUpdate { return fetchBannerUpdate(step, total) })
		if err != nil {
			e.logger.Error("error fetching featured movies", "error", err)
			return nil
		}
		if len(page.Results) > 0 {
			banner := page.Results[e.pick(len(page.Results))]
			feed.Banner = &banner
		}
		return nil
	})

	for i, src := range sources {
		g.Go(func() error {
			row := Row{Title: src.title, Movies: []models.Movie{}}
			page, err := src.fetch(gctx)
			if err != nil {
				e.logger.Error("error fetching movies", "row", src.title, "error", err)
				row.Err = err
			} else {
				row.Movies = page.Results
			}
			feed.Rows[i] = row
			report(func(step int) ProgressUpdate { return rowLoadedUpdate(step, total, row) })
			return nil
		})
	}

	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return feed, nil
}
