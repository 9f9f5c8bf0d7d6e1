package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/mvx/internal/models"
	"github.com/desertthunder/mvx/internal/repositories"
	"github.com/desertthunder/mvx/internal/services"
	"github.com/desertthunder/mvx/internal/shared"
	"github.com/desertthunder/mvx/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	SignInView ViewState = iota
	HomeView
	PopularView
	SearchView
	WishlistView
)

func (v ViewState) String() string {
	switch v {
	case SignInView:
		return "Sign In"
	case HomeView:
		return "Home"
	case PopularView:
		return "Popular"
	case SearchView:
		return "Search"
	case WishlistView:
		return "Wishlist"
	default:
		return ""
	}
}

var navViews = []ViewState{HomeView, PopularView, SearchView, WishlistView}

// Model represents the TUI application state.
type Model struct {
	ctx      context.Context
	view     ViewState
	auth     *services.AuthService
	wishlist *repositories.WishlistRepository
	engine   *tasks.Engine
	open     func(url string) error
	width    int
	height   int
	loading  bool
	progress tasks.ProgressUpdate
	status   string
	err      error
	signIn   signInForm
	home     homeState
	popular  popularState
	search   searchState
	wish     wishState
	help     help.Model
	keys     keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
//
// The model starts on the home view when an API key is already stored and on sign in otherwise.
func NewModel(ctx context.Context, auth *services.AuthService, wishlist *repositories.WishlistRepository, engine *tasks.Engine) *Model {
	m := &Model{
		ctx:      ctx,
		view:     SignInView,
		auth:     auth,
		wishlist: wishlist,
		engine:   engine,
		open:     shared.OpenBrowser,
		signIn:   newSignInForm(),
		search:   newSearchState(),
		popular:  newPopularState(),
		help:     help.New(),
		keys:     newKeyMap(),
	}
	if auth.IsAuthenticated() {
		m.view = HomeView
	}
	return m
}

// SetOpener replaces the function used to open movie pages.
func (m *Model) SetOpener(open func(url string) error) {
	m.open = open
}

// ViewState returns the active view.
func (m *Model) ViewState() ViewState {
	return m.view
}

// Init starts loading the first view.
func (m *Model) Init() tea.Cmd {
	if m.view == SignInView {
		return m.signIn.focus()
	}
	return m.enter(m.view)
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.popular.resize(msg.Width, msg.Height)
		if m.wish.ready && msg.Height > 8 {
			m.wish.list.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case Msg:
		return m.handleMsg(msg)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.view == SignInView {
			return m.updateSignIn(msg)
		}
		if m.view == SearchView && m.search.editing() {
			return m.updateSearch(msg)
		}
		if cmd, ok := m.handleGlobalKeys(msg); ok {
			return m, cmd
		}
		m.status = ""
		switch m.view {
		case HomeView:
			return m.updateHome(msg)
		case PopularView:
			return m.updatePopular(msg)
		case SearchView:
			return m.updateSearch(msg)
		case WishlistView:
			return m.updateWishlist(msg)
		}
	}

	if m.view == SignInView {
		return m, m.signIn.update(msg)
	}
	if m.view == SearchView {
		return m, m.search.updateInputs(msg)
	}
	return m, nil
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgSignedIn:
		return m.onSignedIn(msg)
	case MsgRegistered:
		return m.onRegistered(msg)
	case MsgProgressUpdate:
		p := msg.data.(progress)
		m.progress = p.update
		if row, ok := p.update.Data.(tasks.Row); ok {
			m.home.partial = append(m.home.partial, row)
		}
		return m, p.next
	case MsgHomeLoaded:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.home.setFeed(msg.data.(*tasks.HomeFeed))
		}
		return m, nil
	case MsgPopularLoaded:
		m.popular.pending = false
		if msg.err != nil {
			m.status = styles.err.Render(fmt.Sprintf("Error: %v", msg.err))
			return m, nil
		}
		m.popular.page = msg.data.(*tasks.TablePage)
		m.popular.table.SetCursor(0)
		m.refreshPopularRows()
		return m, nil
	case MsgFeedLoaded:
		m.popular.pending = false
		if msg.err != nil {
			m.status = styles.err.Render(fmt.Sprintf("Error: %v", msg.err))
			return m, nil
		}
		m.popular.feed = *msg.data.(*tasks.InfiniteFeed)
		m.refreshPopularRows()
		return m, nil
	case MsgSearchLoaded:
		m.search.pending = false
		if msg.err != nil {
			m.status = styles.err.Render(fmt.Sprintf("Error: %v", msg.err))
			return m, nil
		}
		m.search.setResult(msg.data.(*tasks.SearchResult))
		return m, nil
	}
	return m, nil
}

// handleGlobalKeys processes navigation keys shared by every signed in view.
func (m *Model) handleGlobalKeys(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return tea.Quit, true
	case key.Matches(msg, m.keys.logout):
		return m.logout(), true
	case key.Matches(msg, m.keys.toHome):
		return m.enter(HomeView), true
	case key.Matches(msg, m.keys.toPop):
		return m.enter(PopularView), true
	case key.Matches(msg, m.keys.toSearch):
		return m.enter(SearchView), true
	case key.Matches(msg, m.keys.toWish):
		return m.enter(WishlistView), true
	}
	return nil, false
}

// enter switches to view, loading its data the first time. Without an API key every view
// falls back to sign in.
func (m *Model) enter(view ViewState) tea.Cmd {
	if !m.auth.IsAuthenticated() {
		m.view = SignInView
		return m.signIn.focus()
	}

	m.view = view
	m.err = nil
	switch view {
	case HomeView:
		if m.home.feed == nil && !m.loading {
			return m.loadHome()
		}
	case PopularView:
		if m.popular.page == nil && !m.popular.pending {
			return m.loadPopular(1)
		}
	case SearchView:
		if m.search.result == nil {
			return m.runSearch(1)
		}
	case WishlistView:
		m.reloadWishlist()
	}
	return nil
}

func (m *Model) logout() tea.Cmd {
	if err := m.auth.Logout(); err != nil {
		m.status = styles.err.Render(fmt.Sprintf("Error: %v", err))
	} else {
		m.status = styles.ok.Render("Signed out")
	}
	m.home = homeState{}
	m.popular = newPopularState()
	m.popular.resize(m.width, m.height)
	m.search = newSearchState()
	m.wish = wishState{}
	m.signIn = newSignInForm()
	m.view = SignInView
	return m.signIn.focus()
}

// toggleWishlist adds or removes movie for the signed in user and reports the result.
func (m *Model) toggleWishlist(movie *models.Movie) {
	if movie == nil {
		return
	}
	user := m.auth.CurrentUser()
	if user == "" {
		m.status = styles.warn.Render("Sign in to use the wishlist")
		return
	}
	if m.wishlist.Toggle(user, *movie) {
		m.status = styles.ok.Render(fmt.Sprintf("♥ Added to wishlist: %s", movie.Title))
	} else {
		m.status = styles.warn.Render(fmt.Sprintf("Removed from wishlist: %s", movie.Title))
	}
	if m.view == WishlistView {
		m.reloadWishlist()
	}
}

func (m *Model) openMovie(movie *models.Movie) {
	if movie == nil || m.open == nil {
		return
	}
	if err := m.open(services.MovieWebURL(movie.ID)); err != nil {
		m.status = styles.err.Render(fmt.Sprintf("Error: %v", err))
	}
}

// inWishlist reports whether the signed in user saved movie.
func (m *Model) inWishlist(movie models.Movie) bool {
	return m.wishlist.IsMember(m.auth.CurrentUser(), movie.ID)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.view == SignInView {
		return m.renderSignIn()
	}

	var b strings.Builder
	b.WriteString(m.renderNav())
	b.WriteString("\n\n")

	switch {
	case m.err != nil:
		b.WriteString(styles.err.Render(fmt.Sprintf("Error: %v", m.err)))
	case m.loading && m.view == HomeView:
		b.WriteString(m.renderLoading())
	default:
		switch m.view {
		case HomeView:
			b.WriteString(m.renderHome())
		case PopularView:
			b.WriteString(m.renderPopular())
		case SearchView:
			b.WriteString(m.renderSearch())
		case WishlistView:
			b.WriteString(m.renderWishlist())
		}
	}

	if m.status != "" {
		b.WriteString("\n\n")
		b.WriteString(m.status)
	}
	return b.String()
}

func (m *Model) renderNav() string {
	tabs := make([]string, len(navViews))
	for i, v := range navViews {
		label := fmt.Sprintf("%d %s", i+1, v)
		if v == m.view {
			tabs[i] = styles.active.Render(label)
		} else {
			tabs[i] = styles.help.Render(label)
		}
	}
	user := m.auth.CurrentUser()
	if user == "" {
		user = "guest"
	}
	return fmt.Sprintf("%s  %s  %s", styles.title.UnsetMarginBottom().Render("mvx"), strings.Join(tabs, "  "), styles.help.Render(user))
}

func (m *Model) renderLoading() string {
	var b strings.Builder
	b.WriteString("Loading...")
	for _, row := range m.home.partial {
		fmt.Fprintf(&b, "\n%s", styles.ok.Render(fmt.Sprintf("✓ %s (%d movies)", row.Title, len(row.Movies))))
	}
	if m.progress.Message != "" {
		fmt.Fprintf(&b, "\n%s", styles.help.Render(m.progress.Message))
	}
	return b.String()
}

func (m *Model) renderHelp(bindings ...key.Binding) string {
	return m.help.ShortHelpView(bindings)
}
