package ui

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/mvx/internal/models"
	"github.com/desertthunder/mvx/internal/tasks"
)

type popularState struct {
	infinite bool
	page     *tasks.TablePage
	feed     tasks.InfiniteFeed
	table    table.Model
	pending  bool
}

func newPopularState() popularState {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "#", Width: 5},
			{Title: "Title", Width: 32},
			{Title: "Release", Width: 11},
			{Title: "Rating", Width: 6},
			{Title: "Lang", Width: 4},
			{Title: "♥", Width: 2},
		}),
		table.WithFocused(true),
		table.WithHeight(tasks.TableRows+1),
	)
	return popularState{table: t}
}

func (p *popularState) resize(width, height int) {
	if p.infinite && height > 10 {
		p.table.SetHeight(height - 10)
	}
}

// movies returns what the active mode lists.
func (p *popularState) movies() []models.Movie {
	if p.infinite {
		return p.feed.Movies
	}
	if p.page == nil {
		return nil
	}
	return p.page.Movies
}

func (p *popularState) selected() *models.Movie {
	movies := p.movies()
	i := p.table.Cursor()
	if i < 0 || i >= len(movies) {
		return nil
	}
	return &movies[i]
}

func (m *Model) refreshPopularRows() {
	movies := m.popular.movies()
	rows := make([]table.Row, len(movies))
	for i, movie := range movies {
		rank := i + 1
		if !m.popular.infinite && m.popular.page != nil {
			rank = m.popular.page.Rank(i)
		}
		heart := ""
		if m.inWishlist(movie) {
			heart = "♥"
		}
		rows[i] = table.Row{strconv.Itoa(rank), movie.Title, movie.ReleaseDate, movie.Rating(), movie.Language(), heart}
	}
	m.popular.table.SetRows(rows)
	if m.popular.table.Cursor() >= len(rows) {
		m.popular.table.SetCursor(max(0, len(rows)-1))
	}
}

func (m *Model) loadPopular(page int) tea.Cmd {
	m.popular.pending = true
	return func() tea.Msg {
		result, err := m.engine.PopularTable(m.ctx, page)
		return popularLoadedMsg(result, err)
	}
}

// loadMore fetches the next infinite page on a copy of the feed.
func (m *Model) loadMore() tea.Cmd {
	if m.popular.pending {
		return nil
	}
	m.popular.pending = true
	feed := m.popular.feed
	feed.Movies = slices.Clone(feed.Movies)
	return func() tea.Msg {
		err := m.engine.LoadMore(m.ctx, &feed)
		return feedLoadedMsg(&feed, err)
	}
}

func (m *Model) updatePopular(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	p := &m.popular

	switch {
	case msg.String() == "v":
		p.infinite = !p.infinite
		p.table.SetCursor(0)
		if p.infinite {
			p.table.SetHeight(max(tasks.TableRows+1, m.height-10))
		} else {
			p.table.SetHeight(tasks.TableRows + 1)
		}
		m.refreshPopularRows()
		if p.infinite && p.feed.Page == 0 {
			return m, m.loadMore()
		}
		return m, nil
	case key.Matches(msg, m.keys.wishlist):
		m.toggleWishlist(p.selected())
		m.refreshPopularRows()
		return m, nil
	case key.Matches(msg, m.keys.open), key.Matches(msg, m.keys.enter):
		m.openMovie(p.selected())
		return m, nil
	}

	if p.infinite {
		var cmd tea.Cmd
		p.table, cmd = p.table.Update(msg)
		if key.Matches(msg, m.keys.down) && p.table.Cursor() >= len(p.feed.Movies)-1 && p.feed.HasMore {
			return m, tea.Batch(cmd, m.loadMore())
		}
		return m, cmd
	}

	if p.page != nil && !p.pending {
		switch {
		case key.Matches(msg, m.keys.left), key.Matches(msg, m.keys.prev):
			if p.page.HasPrev() {
				return m, m.loadPopular(p.page.Page - 1)
			}
			return m, nil
		case key.Matches(msg, m.keys.right), key.Matches(msg, m.keys.next):
			if p.page.HasNext() {
				return m, m.loadPopular(p.page.Page + 1)
			}
			return m, nil
		case msg.String() == "g":
			if p.page.Page != 1 {
				return m, m.loadPopular(1)
			}
			return m, nil
		case msg.String() == "G":
			if p.page.Page != p.page.TotalPages {
				return m, m.loadPopular(p.page.TotalPages)
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	p.table, cmd = p.table.Update(msg)
	return m, cmd
}

func (m *Model) renderPopular() string {
	p := &m.popular

	var b strings.Builder
	mode := "table view"
	if p.infinite {
		mode = "infinite view"
	}
	b.WriteString(styles.title.Render(fmt.Sprintf("Popular Movies (%s)", mode)))
	b.WriteString("\n")
	b.WriteString(p.table.View())
	b.WriteString("\n\n")

	switch {
	case p.pending:
		b.WriteString(styles.help.Render("Loading..."))
	case p.infinite && !p.feed.HasMore && p.feed.Page > 0:
		b.WriteString(styles.help.Render("No more movies"))
	case p.infinite:
		b.WriteString(styles.help.Render(fmt.Sprintf("%d movies loaded", len(p.feed.Movies))))
	case p.page != nil:
		b.WriteString(renderPager(p.page))
	}
	b.WriteString("\n\n")

	toggle := key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "switch view"))
	b.WriteString(m.renderHelp(m.keys.left, m.keys.right, m.keys.wishlist, m.keys.open, toggle, m.keys.quit))
	return b.String()
}

// renderPager draws the page links: prev, first page, window, last page, next.
func renderPager(p *tasks.TablePage) string {
	var parts []string
	if p.HasPrev() {
		parts = append(parts, "‹")
	}
	if p.ShowFirst {
		parts = append(parts, "1")
		if p.LeadingGap {
			parts = append(parts, "…")
		}
	}
	for _, n := range p.Window {
		if n == p.Page {
			parts = append(parts, styles.active.Render(fmt.Sprintf("[%d]", n)))
		} else {
			parts = append(parts, strconv.Itoa(n))
		}
	}
	if p.ShowLast {
		if p.TrailGap {
			parts = append(parts, "…")
		}
		parts = append(parts, strconv.Itoa(p.TotalPages))
	}
	if p.HasNext() {
		parts = append(parts, "›")
	}
	return strings.Join(parts, " ")
}
