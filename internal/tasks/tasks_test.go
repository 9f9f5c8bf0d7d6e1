package tasks

import (
	"context"
	"errors"
	"io"
	"reflect"
	"slices"
	"strings"
	"testing"

	"github.com/desertthunder/mvx/internal/models"
	"github.com/desertthunder/mvx/internal/shared"
	tu "github.com/desertthunder/mvx/internal/testing"
)

func newTestEngine(svc *tu.MockMovieService) *Engine {
	return NewEngine(svc, shared.NewLogger(io.Discard))
}

func TestHome(t *testing.T) {
	t.Run("Banner And Rows", func(t *testing.T) {
		svc := tu.NewMockMovieService(tu.SamplePage(1, 10, 4))
		engine := newTestEngine(svc)
		engine.SetPicker(func(n int) int { return n - 1 })

		progress := make(chan ProgressUpdate, 10)
		feed, err := engine.Home(context.Background(), progress)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if feed.Banner == nil || feed.Banner.ID != 4 {
			t.Errorf("expected banner to be the picked movie, got %+v", feed.Banner)
		}

		titles := make([]string, len(feed.Rows))
		for i, row := range feed.Rows {
			titles[i] = row.Title
			if len(row.Movies) != 4 {
				t.Errorf("row %s: expected 4 movies, got %d", row.Title, len(row.Movies))
			}
		}
		if !reflect.DeepEqual(titles, []string{RowPopular, RowNewReleases, RowAction}) {
			t.Errorf("unexpected row order %v", titles)
		}

		calls := svc.Calls()
		for _, want := range []string{"featured:0", "popular:1", "now_playing:0", "genre:1"} {
			if !slices.Contains(calls, want) {
				t.Errorf("expected call %s, got %v", want, calls)
			}
		}

		if len(progress) != 4 {
			t.Errorf("expected 4 progress updates, got %d", len(progress))
		}
	})

	t.Run("Failing Row Does Not Fail Feed", func(t *testing.T) {
		svc := tu.NewMockMovieService(tu.SamplePage(1, 10, 2))
		svc.Errors["now_playing"] = shared.ErrAPIRequest
		svc.Errors["featured"] = shared.ErrAPIRequest

		feed, err := newTestEngine(svc).Home(context.Background(), nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if feed.Banner != nil {
			t.Error("expected no banner when featured fails")
		}
		row := feed.Rows[1]
		if row.Title != RowNewReleases || row.Err == nil || len(row.Movies) != 0 || row.Movies == nil {
			t.Errorf("expected empty failed row, got %+v", row)
		}
		if len(feed.Rows[0].Movies) != 2 {
			t.Error("expected other rows to load")
		}
	})

	t.Run("Empty Featured", func(t *testing.T) {
		svc := tu.NewMockMovieService(tu.SamplePage(1, 1, 0))
		feed, err := newTestEngine(svc).Home(context.Background(), nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if feed.Banner != nil {
			t.Error("expected no banner for empty results")
		}
	})

	t.Run("Canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := newTestEngine(tu.NewMockMovieService(nil)).Home(ctx, nil); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}

func TestPageWindow(t *testing.T) {
	tests := []struct {
		current, total int
		want           []int
	}{
		{1, 500, []int{1, 2, 3}},
		{2, 500, []int{1, 2, 3, 4}},
		{10, 500, []int{8, 9, 10, 11, 12}},
		{500, 500, []int{498, 499, 500}},
		{1, 1, []int{1}},
		{2, 3, []int{1, 2, 3}},
	}

	for _, tt := range tests {
		got := PageWindow(tt.current, tt.total)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("PageWindow(%d, %d) = %v, want %v", tt.current, tt.total, got, tt.want)
		}
	}
}

func TestPopularTable(t *testing.T) {
	t.Run("Caps Total And Rows", func(t *testing.T) {
		svc := tu.NewMockMovieService(tu.SamplePage(1, 45000, 20))
		page, err := newTestEngine(svc).PopularTable(context.Background(), 3)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if page.TotalPages != MaxPages {
			t.Errorf("expected total capped at %d, got %d", MaxPages, page.TotalPages)
		}
		if len(page.Movies) != TableRows {
			t.Errorf("expected %d rows, got %d", TableRows, len(page.Movies))
		}
		if page.Rank(0) != 13 {
			t.Errorf("expected rank 13, got %d", page.Rank(0))
		}
		if !reflect.DeepEqual(page.Window, []int{1, 2, 3, 4, 5}) {
			t.Errorf("unexpected window %v", page.Window)
		}
		if !page.ShowFirst || page.LeadingGap || !page.ShowLast || !page.TrailGap {
			t.Errorf("unexpected links %+v", page)
		}
		if !page.HasPrev() || !page.HasNext() {
			t.Error("expected both directions")
		}
	})

	t.Run("Last Page", func(t *testing.T) {
		svc := tu.NewMockMovieService(tu.SamplePage(1, 8, 20))
		page, err := newTestEngine(svc).PopularTable(context.Background(), 8)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if page.HasNext() || page.ShowLast || page.TrailGap {
			t.Errorf("expected no forward links on the last page, got %+v", page)
		}
		if !page.LeadingGap {
			t.Error("expected leading ellipsis")
		}
	})

	t.Run("Invalid Page", func(t *testing.T) {
		engine := newTestEngine(tu.NewMockMovieService(nil))
		for _, p := range []int{0, MaxPages + 1} {
			if _, err := engine.PopularTable(context.Background(), p); !errors.Is(err, shared.ErrInvalidArgument) {
				t.Errorf("page %d: expected ErrInvalidArgument, got %v", p, err)
			}
		}
	})
}

func TestLoadMore(t *testing.T) {
	t.Run("Appends Until Last Page", func(t *testing.T) {
		svc := tu.NewMockMovieService(tu.SamplePage(1, 3, 2))
		engine := newTestEngine(svc)
		var feed InfiniteFeed

		for range 5 {
			if err := engine.LoadMore(context.Background(), &feed); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}

		if feed.Page != 3 || feed.HasMore {
			t.Errorf("expected to stop at page 3, got page=%d hasMore=%v", feed.Page, feed.HasMore)
		}
		if len(feed.Movies) != 6 {
			t.Errorf("expected 6 movies, got %d", len(feed.Movies))
		}
		if !reflect.DeepEqual(svc.Calls(), []string{"popular:1", "popular:2", "popular:3"}) {
			t.Errorf("unexpected calls %v", svc.Calls())
		}
	})

	t.Run("Cap At 500", func(t *testing.T) {
		svc := tu.NewMockMovieService(tu.SamplePage(1, 9999, 1))
		feed := InfiniteFeed{Page: 499}
		if err := newTestEngine(svc).LoadMore(context.Background(), &feed); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if feed.HasMore {
			t.Error("expected no more pages at 500")
		}
	})

	t.Run("Error Leaves Feed", func(t *testing.T) {
		svc := tu.NewMockMovieService(tu.SamplePage(1, 3, 2))
		svc.Errors["popular"] = shared.ErrAPIRequest
		var feed InfiniteFeed
		if err := newTestEngine(svc).LoadMore(context.Background(), &feed); err == nil {
			t.Fatal("expected error")
		}
		if feed.Page != 0 || len(feed.Movies) != 0 {
			t.Errorf("expected unchanged feed, got %+v", feed)
		}
	})
}

func TestSearch(t *testing.T) {
	t.Run("Discover", func(t *testing.T) {
		svc := tu.NewMockMovieService(tu.SamplePage(1, 1, 3))
		f := models.DefaultFilters()
		f.ToggleGenre(28)

		res, err := newTestEngine(svc).Search(context.Background(), nil, f, 1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(res.Chips) != 1 || len(res.Page.Results) != 3 {
			t.Errorf("unexpected result %+v", res)
		}
		if len(svc.Filters) != 1 || svc.Filters[0].Genres[0] != 28 {
			t.Errorf("expected filters to reach discover, got %v", svc.Filters)
		}
	})

	t.Run("Query Uses Search", func(t *testing.T) {
		svc := tu.NewMockMovieService(tu.SamplePage(1, 1, 1))
		f := models.DefaultFilters()
		f.Query = "  matrix "

		if _, err := newTestEngine(svc).Search(context.Background(), nil, f, 2); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !reflect.DeepEqual(svc.Calls(), []string{"search:2"}) {
			t.Errorf("unexpected calls %v", svc.Calls())
		}
	})

	t.Run("Error", func(t *testing.T) {
		svc := tu.NewMockMovieService(nil)
		svc.Errors["discover"] = shared.ErrAPIRequest
		if _, err := newTestEngine(svc).Search(context.Background(), nil, models.DefaultFilters(), 1); !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
	})
}

func TestCollect(t *testing.T) {
	t.Run("Merges In Page Order", func(t *testing.T) {
		engine := newTestEngine(tu.NewMockMovieService(nil))
		fetch := func(ctx context.Context, page int) (*models.MoviePage, error) {
			movies := tu.SampleMovies(page * 2)
			return &models.MoviePage{Page: page, Results: movies[len(movies)-2:], TotalPages: 900}, nil
		}

		progress := make(chan ProgressUpdate, 10)
		res, err := engine.Collect(context.Background(), progress, fetch, CollectOpts{From: 1, To: 4, NumWorkers: 4})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Pages != 4 || res.TotalPages != MaxPages {
			t.Errorf("unexpected result %+v", res)
		}
		ids := make([]int64, len(res.Movies))
		for i, m := range res.Movies {
			ids[i] = m.ID
		}
		if !reflect.DeepEqual(ids, []int64{1, 2, 3, 4, 5, 6, 7, 8}) {
			t.Errorf("unexpected ids %v", ids)
		}
		if len(progress) != 4 {
			t.Errorf("expected 4 progress updates, got %d", len(progress))
		}
	})

	t.Run("Dedupes And Records Failures", func(t *testing.T) {
		engine := newTestEngine(tu.NewMockMovieService(nil))
		fetch := func(ctx context.Context, page int) (*models.MoviePage, error) {
			if page == 2 {
				return nil, shared.ErrAPIRequest
			}
			return tu.SamplePage(page, 3, 2), nil
		}

		res, err := engine.Collect(context.Background(), nil, fetch, CollectOpts{From: 1, To: 3})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(res.Movies) != 2 {
			t.Errorf("expected duplicates removed, got %d movies", len(res.Movies))
		}
		if !errors.Is(res.Failed[2], shared.ErrAPIRequest) || len(res.Failed) != 1 {
			t.Errorf("expected page 2 failure, got %v", res.Failed)
		}
	})

	t.Run("All Failed", func(t *testing.T) {
		engine := newTestEngine(tu.NewMockMovieService(nil))
		fetch := func(ctx context.Context, page int) (*models.MoviePage, error) { return nil, shared.ErrAPIRequest }
		if _, err := engine.Collect(context.Background(), nil, fetch, CollectOpts{To: 2}); !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
	})

	t.Run("Too Many Pages", func(t *testing.T) {
		engine := newTestEngine(tu.NewMockMovieService(nil))
		if _, err := engine.Collect(context.Background(), nil, nil, CollectOpts{From: 1, To: 501}); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestListing(t *testing.T) {
	svc := tu.NewMockMovieService(tu.SamplePage(1, 1, 1))
	engine := newTestEngine(svc)

	for _, name := range Listings {
		fetch, err := engine.Listing(name, 18)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", name, err)
		}
		if _, err := fetch(context.Background(), 1); err != nil {
			t.Fatalf("%s: fetch failed: %v", name, err)
		}
	}
	want := []string{"popular:1", "now_playing:1", "top_rated:1", "upcoming:1", "genre:1"}
	if !reflect.DeepEqual(svc.Calls(), want) {
		t.Errorf("unexpected calls %v", svc.Calls())
	}

	if _, err := engine.Listing(ListGenre, 0); !errors.Is(err, shared.ErrMissingArgument) {
		t.Errorf("expected ErrMissingArgument, got %v", err)
	}
	if _, err := engine.Listing("trending", 0); err == nil || !strings.Contains(err.Error(), "trending") {
		t.Errorf("expected unknown listing error, got %v", err)
	}
}

func TestPhaseString(t *testing.T) {
	if FetchRow.String() != "fetch_row" || Phase(99).String() != "" {
		t.Error("unexpected phase names")
	}
}
