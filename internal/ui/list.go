package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/mvx/internal/models"
)

var (
	_ list.Item = movieItem{}
)

// movieItem wraps [models.Movie] to implement [list.Item].
type movieItem struct {
	movie models.Movie
}

func (i movieItem) FilterValue() string { return i.movie.Title }
func (i movieItem) Title() string       { return i.movie.Title }
func (i movieItem) Description() string {
	parts := []string{fmt.Sprintf("★ %s", i.movie.Rating())}
	if y := i.movie.Year(); y != "" {
		parts = append([]string{y}, parts...)
	}
	if lang := i.movie.Language(); lang != "" {
		parts = append(parts, lang)
	}
	return strings.Join(parts, " • ")
}

func movieItems(movies []models.Movie) []list.Item {
	items := make([]list.Item, len(movies))
	for i, m := range movies {
		items[i] = movieItem{movie: m}
	}
	return items
}
