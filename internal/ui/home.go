package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/mvx/internal/models"
	"github.com/desertthunder/mvx/internal/tasks"
)

const rowWindow = 5

type homeState struct {
	feed    *tasks.HomeFeed
	partial []tasks.Row
	row     int
	col     int
}

func (h *homeState) setFeed(feed *tasks.HomeFeed) {
	h.feed = feed
	h.partial = nil
	h.row, h.col = 0, 0
}

func (h *homeState) rowMovies() []models.Movie {
	if h.feed == nil || h.row >= len(h.feed.Rows) {
		return nil
	}
	return h.feed.Rows[h.row].Movies
}

func (h *homeState) selected() *models.Movie {
	movies := h.rowMovies()
	if h.col < 0 || h.col >= len(movies) {
		return nil
	}
	return &movies[h.col]
}

func (h *homeState) moveRow(delta int) {
	if h.feed == nil || len(h.feed.Rows) == 0 {
		return
	}
	h.row = max(0, min(len(h.feed.Rows)-1, h.row+delta))
	h.col = min(h.col, max(0, len(h.rowMovies())-1))
}

func (h *homeState) moveCol(delta int) {
	h.col = max(0, min(len(h.rowMovies())-1, h.col+delta))
}

// loadHome streams the home feed, reporting each row as it arrives.
func (m *Model) loadHome() tea.Cmd {
	m.loading = true
	m.progress = tasks.ProgressUpdate{}
	m.home.partial = nil

	progressChan := make(chan tasks.ProgressUpdate, 8)
	var (
		feed *tasks.HomeFeed
		err  error
	)
	go func() {
		feed, err = m.engine.Home(m.ctx, progressChan)
		close(progressChan)
	}()

	var wait tea.Cmd
	wait = func() tea.Msg {
		update, ok := <-progressChan
		if !ok {
			return homeLoadedMsg(feed, err)
		}
		return progressUpdateMsg(update, wait)
	}
	return wait
}

func (m *Model) updateHome(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.up):
		m.home.moveRow(-1)
	case key.Matches(msg, m.keys.down):
		m.home.moveRow(1)
	case key.Matches(msg, m.keys.left):
		m.home.moveCol(-1)
	case key.Matches(msg, m.keys.right):
		m.home.moveCol(1)
	case key.Matches(msg, m.keys.wishlist):
		m.toggleWishlist(m.home.selected())
	case key.Matches(msg, m.keys.open), key.Matches(msg, m.keys.enter):
		m.openMovie(m.home.selected())
	case msg.String() == "r":
		if !m.loading {
			return m, m.loadHome()
		}
	}
	return m, nil
}

func (m *Model) renderHome() string {
	feed := m.home.feed
	if feed == nil {
		return "Loading..."
	}

	var b strings.Builder
	if feed.Banner != nil {
		banner := feed.Banner
		b.WriteString(styles.title.Render("★ " + banner.Title))
		b.WriteString("\n")
		fmt.Fprintf(&b, "%s\n", truncate(banner.Overview, 200))
		fmt.Fprintf(&b, "%s\n\n", styles.help.Render(fmt.Sprintf("Rating %s • %s", banner.Rating(), banner.ReleaseDate)))
	}

	for i, row := range feed.Rows {
		title := row.Title
		if i == m.home.row {
			title = styles.active.Render(title)
		} else {
			title = styles.ok.Render(title)
		}
		b.WriteString(title)
		b.WriteString("\n")

		switch {
		case row.Err != nil:
			b.WriteString(styles.err.Render("  Failed to load movies"))
		case len(row.Movies) == 0:
			b.WriteString(styles.help.Render("  No movies"))
		default:
			col := -1
			if i == m.home.row {
				col = m.home.col
			}
			b.WriteString(m.renderRow(row.Movies, col))
		}
		b.WriteString("\n\n")
	}

	if movie := m.home.selected(); movie != nil {
		fmt.Fprintf(&b, "%s\n%s\n\n", styles.ok.Render(movieLabel(*movie)), truncate(movie.Overview, 300))
	}

	b.WriteString(m.renderHelp(m.keys.left, m.keys.right, m.keys.wishlist, m.keys.open, m.keys.toPop, m.keys.quit))
	return b.String()
}

// renderRow shows a window of titles around the selected column. col < 0 selects nothing.
func (m *Model) renderRow(movies []models.Movie, col int) string {
	start := 0
	if col > rowWindow/2 {
		start = col - rowWindow/2
	}
	end := min(len(movies), start+rowWindow)
	start = max(0, min(start, end-rowWindow))

	cells := make([]string, 0, end-start+2)
	if start > 0 {
		cells = append(cells, "‹")
	}
	for i := start; i < end; i++ {
		label := movies[i].Title
		if m.inWishlist(movies[i]) {
			label = "♥ " + label
		}
		if i == col {
			label = styles.active.Render("[" + label + "]")
		}
		cells = append(cells, label)
	}
	if end < len(movies) {
		cells = append(cells, "›")
	}
	return "  " + strings.Join(cells, " │ ")
}

func movieLabel(movie models.Movie) string {
	if y := movie.Year(); y != "" {
		return fmt.Sprintf("%s (%s) ★ %s", movie.Title, y, movie.Rating())
	}
	return fmt.Sprintf("%s ★ %s", movie.Title, movie.Rating())
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
