package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/mvx/internal/models"
)

const (
	defaultListWidth  = 80
	defaultListHeight = 20
)

type wishState struct {
	list   list.Model
	movies []models.Movie
	ready  bool
}

func (m *Model) newWishlistList() list.Model {
	width, height := defaultListWidth, defaultListHeight
	if m.width > 0 && m.height > 8 {
		width, height = m.width-4, m.height-8
	}
	l := list.New(nil, list.NewDefaultDelegate(), width, height)
	l.Title = "My Wishlist"
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.DisableQuitKeybindings()
	return l
}

// reloadWishlist reads the signed in user's wishlist into the list, keeping the cursor.
func (m *Model) reloadWishlist() {
	if !m.wish.ready {
		m.wish.list = m.newWishlistList()
		m.wish.ready = true
	}
	m.wish.movies = m.wishlist.Get(m.auth.CurrentUser())
	cursor := m.wish.list.Index()
	m.wish.list.SetItems(movieItems(m.wish.movies))
	if cursor >= len(m.wish.movies) {
		cursor = len(m.wish.movies) - 1
	}
	if cursor >= 0 {
		m.wish.list.Select(cursor)
	}
}

func (m *Model) selectedWish() *models.Movie {
	item, ok := m.wish.list.SelectedItem().(movieItem)
	if !ok {
		return nil
	}
	return &item.movie
}

func (m *Model) updateWishlist(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.remove):
		if movie := m.selectedWish(); movie != nil {
			m.wishlist.Remove(m.auth.CurrentUser(), movie.ID)
			m.status = styles.warn.Render(fmt.Sprintf("Removed from wishlist: %s", movie.Title))
			m.reloadWishlist()
		}
		return m, nil
	case key.Matches(msg, m.keys.wishlist):
		m.toggleWishlist(m.selectedWish())
		return m, nil
	case key.Matches(msg, m.keys.open), key.Matches(msg, m.keys.enter):
		m.openMovie(m.selectedWish())
		return m, nil
	}

	var cmd tea.Cmd
	m.wish.list, cmd = m.wish.list.Update(msg)
	return m, cmd
}

func (m *Model) renderWishlist() string {
	if len(m.wish.movies) == 0 {
		return fmt.Sprintf("%s\n%s\n\n%s",
			styles.title.Render("My Wishlist"),
			styles.help.Render("Your wishlist is empty. Press w on any movie to add it."),
			m.renderHelp(m.keys.toHome, m.keys.quit),
		)
	}

	var b strings.Builder
	b.WriteString(m.wish.list.View())
	b.WriteString("\n\n")
	b.WriteString(m.renderHelp(m.keys.up, m.keys.down, m.keys.remove, m.keys.open, m.keys.quit))
	return b.String()
}
