package ui

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/mvx/internal/models"
	"github.com/desertthunder/mvx/internal/tasks"
)

const (
	focusQuery = iota
	focusFilters
	focusResults
	focusCount
)

const (
	ratingStep   = 0.5
	maxRating    = 10
	yearsOffered = 50
	filterWindow = 8
)

// filterOption is one selectable line of the filter panel.
type filterOption struct {
	kind  models.ChipKind
	value string
	label string
}

func filterOptions() []filterOption {
	var opts []filterOption
	for _, o := range models.SortOptions {
		opts = append(opts, filterOption{kind: models.ChipSort, value: o.Value, label: "정렬: " + o.Label})
	}
	for _, g := range models.Genres {
		opts = append(opts, filterOption{kind: models.ChipGenre, value: strconv.Itoa(g.ID), label: "장르: " + g.Name})
	}
	for _, l := range models.Languages {
		opts = append(opts, filterOption{kind: models.ChipLanguage, value: l.Value, label: "언어: " + l.Label})
	}
	return append(opts,
		filterOption{kind: models.ChipRating, label: "최소 평점"},
		filterOption{kind: models.ChipYear, label: "개봉년도"},
	)
}

type searchState struct {
	filters  models.DiscoverFilters
	query    textinput.Model
	focus    int
	options  []filterOption
	cursor   int
	result   *tasks.SearchResult
	page     int
	selected int
	pending  bool
	thisYear int
}

func newSearchState() searchState {
	q := textinput.New()
	q.Placeholder = "Search by title (empty to discover with filters)"
	q.CharLimit = 100
	return searchState{
		filters:  models.DefaultFilters(),
		query:    q,
		focus:    focusResults,
		options:  filterOptions(),
		page:     1,
		thisYear: time.Now().Year(),
	}
}

// editing reports whether typed keys go to the query input.
func (s *searchState) editing() bool {
	return s.focus == focusQuery
}

func (s *searchState) setFocus(focus int) tea.Cmd {
	s.focus = focus
	if focus == focusQuery {
		return s.query.Focus()
	}
	s.query.Blur()
	return nil
}

func (s *searchState) updateInputs(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	s.query, cmd = s.query.Update(msg)
	return cmd
}

func (s *searchState) setResult(r *tasks.SearchResult) {
	s.result = r
	s.selected = 0
	if r.Page != nil && r.Page.Page > 0 {
		s.page = r.Page.Page
	}
}

func (s *searchState) movies() []models.Movie {
	if s.result == nil || s.result.Page == nil {
		return nil
	}
	return s.result.Page.Results
}

func (s *searchState) totalPages() int {
	if s.result == nil || s.result.Page == nil {
		return 0
	}
	return tasks.CappedTotal(s.result.Page.TotalPages)
}

func (s *searchState) selectedMovie() *models.Movie {
	movies := s.movies()
	if s.selected < 0 || s.selected >= len(movies) {
		return nil
	}
	return &movies[s.selected]
}

// apply selects or toggles the option under the cursor.
func (s *searchState) apply() bool {
	opt := s.options[s.cursor]
	switch opt.kind {
	case models.ChipSort:
		if s.filters.SortOrDefault() == opt.value {
			return false
		}
		s.filters.Sort = opt.value
	case models.ChipGenre:
		id, _ := strconv.Atoi(opt.value)
		s.filters.ToggleGenre(id)
	case models.ChipLanguage:
		s.filters.ToggleLanguage(opt.value)
	default:
		return false
	}
	return true
}

// adjust moves the rating or year under the cursor by delta steps.
func (s *searchState) adjust(delta int) bool {
	switch s.options[s.cursor].kind {
	case models.ChipRating:
		r := 0.0
		if s.filters.Rating != nil {
			r = *s.filters.Rating
		}
		r = max(0, min(maxRating, r+float64(delta)*ratingStep))
		s.filters.SetRating(r)
		return true
	case models.ChipYear:
		oldest := s.thisYear - yearsOffered + 1
		switch {
		case s.filters.Year == nil && delta < 0:
			s.filters.SetYear(s.thisYear)
		case s.filters.Year == nil:
			return false
		default:
			y := *s.filters.Year + delta
			if y > s.thisYear {
				s.filters.SetYear(0)
			} else {
				s.filters.SetYear(max(oldest, y))
			}
		}
		return true
	}
	return false
}

func (s *searchState) optionState(opt filterOption) string {
	switch opt.kind {
	case models.ChipSort:
		if s.filters.SortOrDefault() == opt.value {
			return "(•)"
		}
		return "( )"
	case models.ChipGenre:
		id, _ := strconv.Atoi(opt.value)
		if slices.Contains(s.filters.Genres, id) {
			return "[x]"
		}
		return "[ ]"
	case models.ChipLanguage:
		if slices.Contains(s.filters.Languages, opt.value) {
			return "[x]"
		}
		return "[ ]"
	case models.ChipRating:
		if s.filters.Rating == nil {
			return "‹ 제한 없음 ›"
		}
		return fmt.Sprintf("‹ %s점 이상 ›", models.FormatRating(*s.filters.Rating))
	case models.ChipYear:
		if s.filters.Year == nil {
			return "‹ 전체 ›"
		}
		return fmt.Sprintf("‹ %d년 ›", *s.filters.Year)
	}
	return ""
}

func (m *Model) runSearch(page int) tea.Cmd {
	m.search.pending = true
	filters := m.search.filters
	return func() tea.Msg {
		result, err := m.engine.Search(m.ctx, nil, filters, page)
		return searchLoadedMsg(result, err)
	}
}

func (m *Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := &m.search

	switch msg.String() {
	case "tab":
		return m, s.setFocus((s.focus + 1) % focusCount)
	case "shift+tab":
		return m, s.setFocus((s.focus + focusCount - 1) % focusCount)
	}

	switch s.focus {
	case focusQuery:
		switch msg.String() {
		case "enter":
			s.filters.Query = strings.TrimSpace(s.query.Value())
			s.setFocus(focusResults)
			return m, m.runSearch(1)
		case "esc":
			return m, s.setFocus(focusResults)
		}
		var cmd tea.Cmd
		s.query, cmd = s.query.Update(msg)
		return m, cmd

	case focusFilters:
		switch {
		case key.Matches(msg, m.keys.up):
			s.cursor = max(0, s.cursor-1)
		case key.Matches(msg, m.keys.down):
			s.cursor = min(len(s.options)-1, s.cursor+1)
		case key.Matches(msg, m.keys.toggle), key.Matches(msg, m.keys.enter):
			if s.apply() {
				return m, m.runSearch(1)
			}
		case key.Matches(msg, m.keys.left):
			if s.adjust(-1) {
				return m, m.runSearch(1)
			}
		case key.Matches(msg, m.keys.right):
			if s.adjust(1) {
				return m, m.runSearch(1)
			}
		default:
			return m.updateChips(msg)
		}
		return m, nil

	default:
		switch {
		case key.Matches(msg, m.keys.up):
			s.selected = max(0, s.selected-1)
		case key.Matches(msg, m.keys.down):
			s.selected = min(max(0, len(s.movies())-1), s.selected+1)
		case key.Matches(msg, m.keys.next), key.Matches(msg, m.keys.right):
			if !s.pending && s.page < s.totalPages() {
				return m, m.runSearch(s.page + 1)
			}
		case key.Matches(msg, m.keys.prev), key.Matches(msg, m.keys.left):
			if !s.pending && s.page > 1 {
				return m, m.runSearch(s.page - 1)
			}
		case key.Matches(msg, m.keys.wishlist):
			m.toggleWishlist(s.selectedMovie())
		case key.Matches(msg, m.keys.open), key.Matches(msg, m.keys.enter):
			m.openMovie(s.selectedMovie())
		case msg.String() == "/":
			return m, s.setFocus(focusQuery)
		default:
			return m.updateChips(msg)
		}
		return m, nil
	}
}

// updateChips handles removing the last active filter and resetting all of them.
func (m *Model) updateChips(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := &m.search
	switch {
	case key.Matches(msg, m.keys.reset):
		s.filters.Reset()
		s.query.Reset()
		return m, m.runSearch(1)
	case key.Matches(msg, m.keys.remove):
		chips := s.filters.Chips()
		if len(chips) == 0 {
			return m, nil
		}
		s.filters.Remove(chips[len(chips)-1])
		return m, m.runSearch(1)
	}
	return m, nil
}

func (m *Model) renderSearch() string {
	s := &m.search

	var b strings.Builder
	b.WriteString(styles.title.Render("영화 찾아보기"))
	b.WriteString("\n")

	label := "Query"
	if s.focus == focusQuery {
		label = styles.active.Render(label)
	}
	fmt.Fprintf(&b, "%s %s\n\n", label, s.query.View())

	if chips := s.filters.Chips(); len(chips) > 0 {
		rendered := make([]string, len(chips))
		for i, c := range chips {
			rendered[i] = styles.chip.Render(c.Label)
		}
		b.WriteString(strings.Join(rendered, " "))
		b.WriteString("\n\n")
	}

	if s.focus == focusFilters {
		b.WriteString(styles.active.Render("필터 설정"))
		b.WriteString("\n")
		start := max(0, min(s.cursor-filterWindow/2, len(s.options)-filterWindow))
		end := min(len(s.options), start+filterWindow)
		for i := start; i < end; i++ {
			opt := s.options[i]
			line := fmt.Sprintf("%s %s", s.optionState(opt), opt.label)
			if opt.kind == models.ChipRating || opt.kind == models.ChipYear {
				line = fmt.Sprintf("%s %s", opt.label, s.optionState(opt))
			}
			if i == s.cursor {
				line = styles.active.Render("> " + line)
			} else {
				line = "  " + line
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	movies := s.movies()
	switch {
	case s.pending:
		b.WriteString(styles.help.Render("Loading..."))
		b.WriteString("\n")
	case s.result != nil && len(movies) == 0:
		b.WriteString(styles.help.Render("No movies found"))
		b.WriteString("\n")
	}
	for i, movie := range movies {
		line := movieLabel(movie)
		if m.inWishlist(movie) {
			line = "♥ " + line
		}
		if s.focus == focusResults && i == s.selected {
			line = styles.active.Render("> " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	if total := s.totalPages(); total > 0 {
		fmt.Fprintf(&b, "\n%s\n", styles.help.Render(fmt.Sprintf("Page %d of %d", s.page, total)))
	}
	b.WriteString("\n")

	search := key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search"))
	b.WriteString(m.renderHelp(m.keys.tab, search, m.keys.toggle, m.keys.remove, m.keys.reset, m.keys.wishlist, m.keys.quit))
	return b.String()
}
