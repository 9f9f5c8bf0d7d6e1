package server

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mvx/internal/models"
	"github.com/desertthunder/mvx/internal/repositories"
	"github.com/desertthunder/mvx/internal/services"
	"github.com/desertthunder/mvx/internal/shared"
	"github.com/desertthunder/mvx/internal/tasks"
)

// Route paths.
const (
	PathHome     = "/"
	PathSignIn   = "/signin"
	PathSignUp   = "/signup"
	PathLogout   = "/logout"
	PathPopular  = "/popular"
	PathWishlist = "/wishlist"
	PathSearch   = "/search"
	PathGenres   = "/genres"
)

// AppOpts holds the dependencies of an [App].
type AppOpts struct {
	Local     shared.Storage
	Sessions  SessionStore
	Validator services.KeyValidator
	Engine    *tasks.Engine
	Logger    *log.Logger
}

// App serves the movie browser routes as JSON.
//
// Local storage is shared by every client; session storage is scoped by the session cookie.
type App struct {
	local     shared.Storage
	sessions  SessionStore
	users     *repositories.UserRepository
	wishlist  *repositories.WishlistRepository
	validator services.KeyValidator
	engine    *tasks.Engine
	logger    *log.Logger
}

// NewApp creates an [App].
func NewApp(opts AppOpts) *App {
	return &App{
		local:     opts.Local,
		sessions:  opts.Sessions,
		users:     repositories.NewUserRepository(opts.Local, opts.Logger),
		wishlist:  repositories.NewWishlistRepository(opts.Local, opts.Logger),
		validator: opts.Validator,
		engine:    opts.Engine,
		logger:    opts.Logger,
	}
}

// Routes builds the router with every route and middleware.
func (a *App) Routes() *BasicRouter {
	r := NewBasicRouter()
	r.Use(Recover(a.logger), Logging(a.logger), Sessions(a.sessions, a.logger))

	r.HandleFunc(http.MethodGet, PathSignIn, a.handleSignInStatus)
	r.HandleFunc(http.MethodPost, PathSignIn, a.handleSignIn)
	r.HandleFunc(http.MethodPost, PathSignUp, a.handleSignUp)
	r.HandleFunc(http.MethodPost, PathLogout, a.handleLogout)

	r.Handle(http.MethodGet, "/{$}", a.RequireKey(http.HandlerFunc(a.handleHome)))
	r.Handle(http.MethodGet, PathPopular, a.RequireKey(http.HandlerFunc(a.handlePopular)))
	r.Handle(http.MethodGet, PathSearch, a.RequireKey(http.HandlerFunc(a.handleSearch)))
	r.Handle(http.MethodGet, PathGenres, a.RequireKey(http.HandlerFunc(a.handleGenres)))
	r.Handle(http.MethodGet, PathWishlist, a.RequireKey(http.HandlerFunc(a.handleWishlist)))
	r.Handle(http.MethodPost, PathWishlist, a.RequireKey(http.HandlerFunc(a.handleWishlistToggle)))
	r.Handle(http.MethodGet, PathWishlist+"/{id}", a.RequireKey(http.HandlerFunc(a.handleWishlistCheck)))
	r.Handle(http.MethodDelete, PathWishlist+"/{id}", a.RequireKey(http.HandlerFunc(a.handleWishlistRemove)))

	r.Handler(unknownRoutes{app: a})
	return r
}

// auth returns the [services.AuthService] for the request's session.
func (a *App) auth(r *http.Request) *services.AuthService {
	session := a.sessions.Storage(SessionID(r.Context()))
	return services.NewAuthService(a.users, a.local, session, a.validator, a.logger)
}

// RequireKey redirects to the sign in page unless an API key is stored.
func (a *App) RequireKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.auth(r).IsAuthenticated() {
			http.Redirect(w, r, PathSignIn, http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// unknownRoutes sends every unmatched path home, or to sign in without an API key.
type unknownRoutes struct {
	app *App
}

func (u unknownRoutes) Routes() []string { return []string{"/"} }

func (u unknownRoutes) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	target := PathSignIn
	if u.app.auth(r).IsAuthenticated() {
		target = PathHome
	}
	http.Redirect(w, r, target, http.StatusFound)
}

// PruneSessions removes sessions idle for longer than ttl every interval until ctx is done.
func (a *App) PruneSessions(ctx context.Context, interval, ttl time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := a.sessions.Prune(time.Now().Add(-ttl))
			if err != nil {
				a.logger.Error("failed to prune sessions", "error", err)
				continue
			}
			if n > 0 {
				a.logger.Info("pruned sessions", "count", n)
			}
		}
	}
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Remember bool   `json:"remember"`
}

type signUpRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

type sessionResponse struct {
	Authenticated bool   `json:"authenticated"`
	User          string `json:"user"`
	Remembered    bool   `json:"remembered"`
	AutoLogin     bool   `json:"auto_login"`
}

type signedInResponse struct {
	User     string `json:"user"`
	Remember bool   `json:"remember"`
	Redirect string `json:"redirect"`
}

func (a *App) handleSignInStatus(w http.ResponseWriter, r *http.Request) {
	auth := a.auth(r)
	writeJSON(w, http.StatusOK, sessionResponse{
		Authenticated: auth.IsAuthenticated(),
		User:          auth.CurrentUser(),
		Remembered:    auth.IsRemembered(),
		AutoLogin:     auth.CheckAutoLogin(),
	})
}

func (a *App) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	user, err := a.auth(r).Login(strings.TrimSpace(req.Email), req.Password, req.Remember)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, signedInResponse{User: user.ID, Remember: req.Remember, Redirect: PathHome})
}

func (a *App) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Password != req.ConfirmPassword {
		writeError(w, http.StatusBadRequest, shared.ErrPasswordMismatch)
		return
	}

	user, err := a.auth(r).Register(r.Context(), strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusCreated, signedInResponse{User: user.ID, Redirect: PathSignIn})
}

func (a *App) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := a.auth(r).Logout(); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"redirect": PathSignIn})
}

type rowResponse struct {
	Title  string         `json:"title"`
	Movies []models.Movie `json:"movies"`
	Error  string         `json:"error,omitempty"`
}

type homeResponse struct {
	Banner *models.Movie `json:"banner"`
	Rows   []rowResponse `json:"rows"`
}

func (a *App) handleHome(w http.ResponseWriter, r *http.Request) {
	feed, err := a.engine.Home(r.Context(), nil)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	resp := homeResponse{Banner: feed.Banner, Rows: make([]rowResponse, len(feed.Rows))}
	for i, row := range feed.Rows {
		resp.Rows[i] = rowResponse{Title: row.Title, Movies: row.Movies}
		if row.Err != nil {
			resp.Rows[i].Error = row.Err.Error()
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

type tableResponse struct {
	Page        int            `json:"page"`
	TotalPages  int            `json:"total_pages"`
	FirstRank   int            `json:"first_rank"`
	Movies      []models.Movie `json:"movies"`
	Window      []int          `json:"window"`
	ShowFirst   bool           `json:"show_first"`
	LeadingGap  bool           `json:"leading_gap"`
	ShowLast    bool           `json:"show_last"`
	TrailingGap bool           `json:"trailing_gap"`
}

type feedResponse struct {
	Page       int            `json:"page"`
	TotalPages int            `json:"total_pages"`
	Movies     []models.Movie `json:"movies"`
	HasMore    bool           `json:"has_more"`
}

func (a *App) handlePopular(w http.ResponseWriter, r *http.Request) {
	page, err := pageParam(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	switch view := r.URL.Query().Get("view"); view {
	case "", "table":
		p, err := a.engine.PopularTable(r.Context(), page)
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusOK, tableResponse{
			Page:        p.Page,
			TotalPages:  p.TotalPages,
			FirstRank:   p.Rank(0),
			Movies:      p.Movies,
			Window:      p.Window,
			ShowFirst:   p.ShowFirst,
			LeadingGap:  p.LeadingGap,
			ShowLast:    p.ShowLast,
			TrailingGap: p.TrailGap,
		})
	case "infinite":
		var feed tasks.InfiniteFeed
		for feed.Page < page {
			if err := a.engine.LoadMore(r.Context(), &feed); err != nil {
				writeError(w, statusFor(err), err)
				return
			}
			if !feed.HasMore {
				break
			}
		}
		writeJSON(w, http.StatusOK, feedResponse{Page: feed.Page, TotalPages: feed.TotalPages, Movies: feed.Movies, HasMore: feed.HasMore})
	default:
		writeError(w, http.StatusBadRequest, fmt.Errorf("%w: view must be table or infinite, got %q", shared.ErrInvalidArgument, view))
	}
}

type filtersResponse struct {
	Genres    []int    `json:"genres"`
	Rating    *float64 `json:"rating"`
	Year      *int     `json:"year"`
	Sort      string   `json:"sort"`
	Languages []string `json:"languages"`
	Query     string   `json:"query,omitempty"`
}

type chipResponse struct {
	Kind  models.ChipKind `json:"kind"`
	Value string          `json:"value"`
	Label string          `json:"label"`
}

type searchResponse struct {
	Filters filtersResponse   `json:"filters"`
	Chips   []chipResponse    `json:"chips"`
	Page    *models.MoviePage `json:"page"`
}

func (a *App) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters, err := ParseFilters(q)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	page, err := pageParam(q)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	result, err := a.engine.Search(r.Context(), nil, filters, page)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	chips := make([]chipResponse, len(result.Chips))
	for i, c := range result.Chips {
		chips[i] = chipResponse{Kind: c.Kind, Value: c.Value, Label: c.Label}
	}
	f := result.Filters
	writeJSON(w, http.StatusOK, searchResponse{
		Filters: filtersResponse{
			Genres:    nonNil(f.Genres),
			Rating:    f.Rating,
			Year:      f.Year,
			Sort:      f.SortOrDefault(),
			Languages: nonNil(f.Languages),
			Query:     f.Query,
		},
		Chips: chips,
		Page:  result.Page,
	})
}

func (a *App) handleGenres(w http.ResponseWriter, r *http.Request) {
	genres, err := a.engine.Movies().Genres(r.Context())
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, genres)
}

type wishlistResponse struct {
	User   string         `json:"user"`
	Movies []models.Movie `json:"movies"`
}

type membershipResponse struct {
	ID         int64 `json:"id"`
	InWishlist bool  `json:"in_wishlist"`
}

func (a *App) handleWishlist(w http.ResponseWriter, r *http.Request) {
	user := a.auth(r).CurrentUser()
	if user == "" {
		http.Redirect(w, r, PathSignIn, http.StatusFound)
		return
	}
	writeJSON(w, http.StatusOK, wishlistResponse{User: user, Movies: a.wishlist.Get(user)})
}

func (a *App) handleWishlistToggle(w http.ResponseWriter, r *http.Request) {
	user := a.auth(r).CurrentUser()
	if user == "" {
		writeError(w, http.StatusUnauthorized, shared.ErrNoCurrentUser)
		return
	}

	var movie models.Movie
	if err := decodeJSON(r, &movie); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if movie.ID == 0 {
		writeError(w, http.StatusBadRequest, fmt.Errorf("%w: movie id is required", shared.ErrInvalidInput))
		return
	}

	writeJSON(w, http.StatusOK, membershipResponse{ID: movie.ID, InWishlist: a.wishlist.Toggle(user, movie)})
}

func (a *App) handleWishlistCheck(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("%w: movie id %q", shared.ErrInvalidArgument, r.PathValue("id")))
		return
	}
	user := a.auth(r).CurrentUser()
	writeJSON(w, http.StatusOK, membershipResponse{ID: id, InWishlist: a.wishlist.IsMember(user, id)})
}

func (a *App) handleWishlistRemove(w http.ResponseWriter, r *http.Request) {
	user := a.auth(r).CurrentUser()
	if user == "" {
		writeError(w, http.StatusUnauthorized, shared.ErrNoCurrentUser)
		return
	}
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("%w: movie id %q", shared.ErrInvalidArgument, r.PathValue("id")))
		return
	}

	a.wishlist.Remove(user, id)
	writeJSON(w, http.StatusOK, membershipResponse{ID: id, InWishlist: false})
}

func pageParam(q url.Values) (int, error) {
	raw := q.Get("page")
	if raw == "" {
		return 1, nil
	}
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 || page > tasks.MaxPages {
		return 0, fmt.Errorf("%w: page must be between 1 and %d, got %q", shared.ErrInvalidArgument, tasks.MaxPages, raw)
	}
	return page, nil
}

// ParseFilters reads discovery filters from query parameters:
// genres=28,12 rating=7.5 year=2019 sort=vote_average.desc languages=ko,en query=title.
func ParseFilters(q url.Values) (models.DiscoverFilters, error) {
	filters := models.DefaultFilters()

	for _, raw := range splitList(q.Get("genres")) {
		id, err := strconv.Atoi(raw)
		if err != nil || id <= 0 {
			return filters, fmt.Errorf("%w: genre %q", shared.ErrInvalidArgument, raw)
		}
		filters.ToggleGenre(id)
	}
	for _, code := range splitList(q.Get("languages")) {
		filters.ToggleLanguage(code)
	}

	if raw := q.Get("rating"); raw != "" {
		r, err := strconv.ParseFloat(raw, 64)
		if err != nil || r < 0 || r > 10 {
			return filters, fmt.Errorf("%w: rating %q", shared.ErrInvalidArgument, raw)
		}
		filters.SetRating(r)
	}
	if raw := q.Get("year"); raw != "" {
		y, err := strconv.Atoi(raw)
		if err != nil || y < 0 {
			return filters, fmt.Errorf("%w: year %q", shared.ErrInvalidArgument, raw)
		}
		filters.SetYear(y)
	}
	if sort := q.Get("sort"); sort != "" {
		if !models.ValidSort(sort) {
			return filters, fmt.Errorf("%w: sort %q", shared.ErrInvalidArgument, sort)
		}
		filters.Sort = sort
	}
	filters.Query = strings.TrimSpace(q.Get("query"))
	return filters, nil
}

// splitList splits a comma separated parameter, dropping blanks and repeats.
func splitList(raw string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" || seen[part] {
			continue
		}
		seen[part] = true
		out = append(out, part)
	}
	return out
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
