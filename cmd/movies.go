package main

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/desertthunder/mvx/internal/formatter"
	"github.com/desertthunder/mvx/internal/models"
	"github.com/desertthunder/mvx/internal/services"
	"github.com/desertthunder/mvx/internal/shared"
	"github.com/desertthunder/mvx/internal/tasks"
	"github.com/urfave/cli/v3"
)

const coverSize = "w500"

func listingNames() string {
	return strings.Join(tasks.Listings, ", ")
}

// pageRange reads --page and --to, defaulting the last page to the first.
func pageRange(cmd *cli.Command) (int, int, error) {
	from := cmd.Int("page")
	if from < 1 || from > tasks.MaxPages {
		return 0, 0, fmt.Errorf("%w: --page must be between 1 and %d", shared.ErrInvalidFlag, tasks.MaxPages)
	}
	to := from
	if cmd.IsSet("to") {
		to = cmd.Int("to")
	}
	if to < from || to > tasks.MaxPages {
		return 0, 0, fmt.Errorf("%w: --to must be between %d and %d", shared.ErrInvalidFlag, from, tasks.MaxPages)
	}
	return from, to, nil
}

// requireKey fails early when no API key is stored.
func (r *Runner) requireKey() error {
	if !r.auth.IsAuthenticated() {
		return fmt.Errorf("%w: run 'mvx auth login' first", shared.ErrNotAuthenticated)
	}
	return nil
}

// watchProgress prints progress updates until the returned stop func is called.
func (r *Runner) watchProgress() (chan<- tasks.ProgressUpdate, func()) {
	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			switch update.Phase {
			case tasks.FetchBanner, tasks.FetchRow:
				r.writePlain("📥 %s\n", update.Message)
			case tasks.FetchPage:
				r.writePlain("   [%d/%d] %s\n", update.Step, update.Total, update.Message)
			case tasks.Discover:
				r.writePlain("🔍 %s\n", update.Message)
			}
		}
	}()
	return progressCh, func() {
		close(progressCh)
		<-done
	}
}

func (r *Runner) writeMovies(movies []models.Movie, firstRank int) {
	for i, m := range movies {
		r.writePlain("%3d. %s\n", firstRank+i, formatter.MovieLine(m))
	}
}

// pagerLine renders the popular table pager, e.g. "‹ 1 … 3 4 [5] 6 7 … 500 ›".
func pagerLine(p *tasks.TablePage) string {
	var parts []string
	if p.HasPrev() {
		parts = append(parts, "‹")
	}
	if p.ShowFirst {
		parts = append(parts, "1")
	}
	if p.LeadingGap {
		parts = append(parts, "…")
	}
	for _, n := range p.Window {
		if n == p.Page {
			parts = append(parts, fmt.Sprintf("[%d]", n))
		} else {
			parts = append(parts, fmt.Sprint(n))
		}
	}
	if p.TrailGap {
		parts = append(parts, "…")
	}
	if p.ShowLast {
		parts = append(parts, fmt.Sprint(p.TotalPages))
	}
	if p.HasNext() {
		parts = append(parts, "›")
	}
	return strings.Join(parts, " ")
}

type homeRow struct {
	Title  string         `json:"title"`
	Movies []models.Movie `json:"movies"`
	Error  string         `json:"error,omitempty"`
}

func homeJSON(feed *tasks.HomeFeed) map[string]any {
	rows := make([]homeRow, len(feed.Rows))
	for i, row := range feed.Rows {
		rows[i] = homeRow{Title: row.Title, Movies: row.Movies}
		if row.Err != nil {
			rows[i].Error = row.Err.Error()
		}
	}
	return map[string]any{"banner": feed.Banner, "rows": rows}
}

// MoviesHome prints the banner and the home rows.
func (r *Runner) MoviesHome(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireKey(); err != nil {
		return err
	}

	asJSON := cmd.Bool("json")
	var (
		progressCh chan<- tasks.ProgressUpdate
		stop       = func() {}
	)
	if !asJSON {
		progressCh, stop = r.watchProgress()
	}
	feed, err := r.engine.Home(ctx, progressCh)
	stop()
	if err != nil {
		return err
	}

	if asJSON {
		return r.writeJSON(homeJSON(feed), cmd.Bool("pretty"))
	}

	r.writePlain("\n")
	if feed.Banner != nil {
		r.writePlainHeader("★ " + feed.Banner.Title)
		r.writePlain("%s\n", feed.Banner.Overview)
	}
	for _, row := range feed.Rows {
		r.writePlainln("%s", row.Title)
		if row.Err != nil {
			r.writePlain("Failed to load movies\n")
			continue
		}
		r.writeMovies(row.Movies, 1)
	}
	return nil
}

// MoviesPopular prints one page of the popular table.
func (r *Runner) MoviesPopular(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireKey(); err != nil {
		return err
	}
	page, _, err := pageRange(cmd)
	if err != nil {
		return err
	}

	p, err := r.engine.PopularTable(ctx, page)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(p, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("Popular Movies (page %d of %d)", p.Page, p.TotalPages))
	r.writeMovies(p.Movies, p.Rank(0))
	return r.writePlainln("%s", pagerLine(p))
}

func (r *Runner) collect(ctx context.Context, cmd *cli.Command, listing string, progress bool) (*tasks.CollectResult, error) {
	from, to, err := pageRange(cmd)
	if err != nil {
		return nil, err
	}
	fetch, err := r.engine.Listing(listing, cmd.Int("genre"))
	if err != nil {
		return nil, err
	}

	var (
		progressCh chan<- tasks.ProgressUpdate
		stop       = func() {}
	)
	if progress {
		progressCh, stop = r.watchProgress()
	}
	workers := 3
	if cmd.IsSet("workers") {
		workers = cmd.Int("workers")
	}
	result, err := r.engine.Collect(ctx, progressCh, fetch, tasks.CollectOpts{From: from, To: to, NumWorkers: workers})
	stop()
	return result, err
}

// MoviesList fetches a page range of a listing.
func (r *Runner) MoviesList(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireKey(); err != nil {
		return err
	}
	listing := cmd.StringArg("listing")
	if listing == "" {
		listing = tasks.ListPopular
	}

	asJSON := cmd.Bool("json")
	result, err := r.collect(ctx, cmd, listing, !asJSON)
	if err != nil {
		return err
	}

	if asJSON {
		return r.writeJSON(result.Movies, cmd.Bool("pretty"))
	}

	r.writePlain("\n")
	r.writePlainHeader(fmt.Sprintf("%s: %d movies from %d pages", listing, len(result.Movies), result.Pages))
	r.writeMovies(result.Movies, 1)

	if len(result.Failed) > 0 {
		pages := make([]int, 0, len(result.Failed))
		for p := range result.Failed {
			pages = append(pages, p)
		}
		slices.Sort(pages)
		r.writePlainln("Failed pages: %v", pages)
	}
	return nil
}

func (r *Runner) writeSearch(cmd *cli.Command, result *tasks.SearchResult) error {
	if cmd.Bool("json") {
		return r.writeJSON(result.Page, cmd.Bool("pretty"))
	}

	if len(result.Chips) > 0 {
		labels := make([]string, len(result.Chips))
		for i, c := range result.Chips {
			labels[i] = c.Label
		}
		r.writePlain("Filters: %s\n", strings.Join(labels, " · "))
	}

	page := result.Page
	r.writePlainHeader(fmt.Sprintf("%d results (page %d of %d)", page.TotalResults, page.Page, tasks.CappedTotal(page.TotalPages)))
	if len(page.Results) == 0 {
		return r.writePlain("No movies found.\n")
	}
	r.writeMovies(page.Results, 1)
	return nil
}

// MoviesDiscover lists movies matching the filter flags.
func (r *Runner) MoviesDiscover(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireKey(); err != nil {
		return err
	}
	page, _, err := pageRange(cmd)
	if err != nil {
		return err
	}

	filters := models.DefaultFilters()
	for _, id := range cmd.IntSlice("genre") {
		if !slices.Contains(filters.Genres, id) {
			filters.ToggleGenre(id)
		}
	}
	for _, code := range cmd.StringSlice("lang") {
		if !slices.Contains(filters.Languages, code) {
			filters.ToggleLanguage(code)
		}
	}
	rating := cmd.Float("rating")
	if rating < 0 || rating > 10 {
		return fmt.Errorf("%w: --rating must be between 0 and 10", shared.ErrInvalidFlag)
	}
	filters.SetRating(rating)
	filters.SetYear(cmd.Int("year"))

	sort := cmd.String("sort")
	if !models.ValidSort(sort) {
		return fmt.Errorf("%w: unknown sort %q", shared.ErrInvalidFlag, sort)
	}
	filters.Sort = sort

	var (
		progressCh chan<- tasks.ProgressUpdate
		stop       = func() {}
	)
	if !cmd.Bool("json") {
		progressCh, stop = r.watchProgress()
	}
	result, err := r.engine.Search(ctx, progressCh, filters, page)
	stop()
	if err != nil {
		return err
	}
	return r.writeSearch(cmd, result)
}

// MoviesSearch lists movies whose title matches the query.
func (r *Runner) MoviesSearch(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireKey(); err != nil {
		return err
	}
	query := strings.TrimSpace(cmd.StringArg("query"))
	if query == "" {
		return fmt.Errorf("%w: query is required", shared.ErrMissingArgument)
	}
	page, _, err := pageRange(cmd)
	if err != nil {
		return err
	}

	filters := models.DefaultFilters()
	filters.Query = query
	result, err := r.engine.Search(ctx, nil, filters, page)
	if err != nil {
		return err
	}
	return r.writeSearch(cmd, result)
}

// MoviesGenres lists the localized genres.
func (r *Runner) MoviesGenres(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireKey(); err != nil {
		return err
	}

	list, err := r.engine.Movies().Genres(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(list, cmd.Bool("pretty"))
	}
	for _, g := range list.Genres {
		r.writePlain("%6d  %s\n", g.ID, g.Name)
	}
	return nil
}

// coverURL returns the poster of the first movie with one, for markdown exports.
func (r *Runner) coverURL(movies []models.Movie) string {
	urls := services.NewURLBuilder(r.config.TMDB.APIBase, r.config.TMDB.ImageBase, r.config.TMDB.Language)
	for _, m := range movies {
		if m.PosterPath != "" {
			return urls.Image(coverSize, m.PosterPath)
		}
	}
	return ""
}

func (r *Runner) writeExport(cmd *cli.Command, export *formatter.MovieExport) error {
	format := cmd.String("format")
	imageURL := ""
	if format == formatter.FormatMarkdown || format == "md" {
		imageURL = r.coverURL(export.Movies)
	}

	files, err := formatter.WriteExport(export, format, cmd.String("output"), imageURL)
	if err != nil {
		return err
	}

	r.logger.Info("export written", "name", export.Name, "movies", len(export.Movies), "files", len(files))
	r.writePlain("✓ Exported %d movies\n", len(export.Movies))
	for _, f := range files {
		r.writePlain("  %s\n", f)
	}
	return nil
}

// MoviesExport writes a page range of a listing to a file.
func (r *Runner) MoviesExport(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireKey(); err != nil {
		return err
	}
	listing := cmd.StringArg("listing")
	if listing == "" {
		listing = tasks.ListPopular
	}

	result, err := r.collect(ctx, cmd, listing, true)
	if err != nil {
		return err
	}

	name := cmd.String("name")
	if name == "" {
		name = listing
	}
	from, to, _ := pageRange(cmd)
	description := cmd.String("description")
	if description == "" {
		description = fmt.Sprintf("Pages %d-%d of %s", from, to, listing)
	}

	return r.writeExport(cmd, &formatter.MovieExport{
		Name:        name,
		Description: description,
		Owner:       r.auth.CurrentUser(),
		Movies:      result.Movies,
		ExportedAt:  time.Now().UTC(),
	})
}
