package models

import (
	"fmt"
	"slices"
	"strconv"
)

// DefaultSort is the discovery sort applied when none is chosen.
const DefaultSort = "popularity.desc"

// Option is a selectable value with its display label.
type Option struct {
	Value string
	Label string
}

// Genres are the genre choices offered by the search filters.
var Genres = []Genre{
	{ID: 28, Name: "액션"},
	{ID: 12, Name: "모험"},
	{ID: 16, Name: "애니메이션"},
	{ID: 35, Name: "코미디"},
	{ID: 80, Name: "범죄"},
	{ID: 99, Name: "다큐멘터리"},
	{ID: 18, Name: "드라마"},
	{ID: 10751, Name: "가족"},
	{ID: 14, Name: "판타지"},
	{ID: 36, Name: "역사"},
	{ID: 27, Name: "공포"},
	{ID: 10402, Name: "음악"},
	{ID: 9648, Name: "미스터리"},
	{ID: 10749, Name: "로맨스"},
	{ID: 878, Name: "SF"},
	{ID: 53, Name: "스릴러"},
	{ID: 10752, Name: "전쟁"},
	{ID: 37, Name: "서부"},
}

// SortOptions are the discovery sort orders.
var SortOptions = []Option{
	{Value: "popularity.desc", Label: "인기도 높은순"},
	{Value: "popularity.asc", Label: "인기도 낮은순"},
	{Value: "vote_average.desc", Label: "평점 높은순"},
	{Value: "vote_average.asc", Label: "평점 낮은순"},
	{Value: "release_date.desc", Label: "최신순"},
	{Value: "release_date.asc", Label: "오래된순"},
}

// Languages are the original-language choices.
var Languages = []Option{
	{Value: "ko", Label: "한국어"},
	{Value: "en", Label: "영어"},
	{Value: "ja", Label: "일본어"},
	{Value: "zh", Label: "중국어"},
	{Value: "es", Label: "스페인어"},
	{Value: "fr", Label: "프랑스어"},
}

// GenreName returns the label of a filter genre, or its id when unknown.
func GenreName(id int) string {
	for _, g := range Genres {
		if g.ID == id {
			return g.Name
		}
	}
	return strconv.Itoa(id)
}

func optionLabel(opts []Option, value string) string {
	for _, o := range opts {
		if o.Value == value {
			return o.Label
		}
	}
	return value
}

// ValidSort reports whether s is one of [SortOptions].
func ValidSort(s string) bool {
	return slices.ContainsFunc(SortOptions, func(o Option) bool { return o.Value == s })
}

// ChipKind identifies which filter a [FilterChip] removes.
type ChipKind string

const (
	ChipSort     ChipKind = "sort"
	ChipGenre    ChipKind = "genre"
	ChipLanguage ChipKind = "language"
	ChipRating   ChipKind = "rating"
	ChipYear     ChipKind = "year"
)

// FilterChip is one active, removable filter.
type FilterChip struct {
	Kind  ChipKind
	Value string
	Label string
}

// DiscoverFilters are the discovery query parameters chosen in the search view.
//
// A nil Rating or Year means "no limit". Query, when set, switches to free-text search.
type DiscoverFilters struct {
	Genres    []int
	Rating    *float64
	Year      *int
	Sort      string
	Languages []string
	Query     string
}

// DefaultFilters returns filters with no constraints and the default sort.
func DefaultFilters() DiscoverFilters {
	return DiscoverFilters{Sort: DefaultSort}
}

// Reset restores the default filters.
func (f *DiscoverFilters) Reset() {
	*f = DefaultFilters()
}

// ToggleGenre adds id when absent and removes it otherwise.
func (f *DiscoverFilters) ToggleGenre(id int) {
	if i := slices.Index(f.Genres, id); i >= 0 {
		f.Genres = slices.Delete(slices.Clone(f.Genres), i, i+1)
		return
	}
	f.Genres = append(slices.Clone(f.Genres), id)
}

// ToggleLanguage adds code when absent and removes it otherwise.
func (f *DiscoverFilters) ToggleLanguage(code string) {
	if i := slices.Index(f.Languages, code); i >= 0 {
		f.Languages = slices.Delete(slices.Clone(f.Languages), i, i+1)
		return
	}
	f.Languages = append(slices.Clone(f.Languages), code)
}

// SetRating sets the minimum vote average; zero clears it.
func (f *DiscoverFilters) SetRating(r float64) {
	if r <= 0 {
		f.Rating = nil
		return
	}
	f.Rating = &r
}

// SetYear sets the primary release year; zero clears it.
func (f *DiscoverFilters) SetYear(y int) {
	if y <= 0 {
		f.Year = nil
		return
	}
	f.Year = &y
}

// SortOrDefault returns Sort, falling back to [DefaultSort].
func (f DiscoverFilters) SortOrDefault() string {
	if f.Sort == "" {
		return DefaultSort
	}
	return f.Sort
}

// IsDefault reports whether no filter narrows the default discovery.
func (f DiscoverFilters) IsDefault() bool {
	return len(f.Genres) == 0 && len(f.Languages) == 0 && f.Rating == nil && f.Year == nil &&
		f.SortOrDefault() == DefaultSort && f.Query == ""
}

// FormatRating renders a rating the way it appears in query strings and chips ("7", "4.5").
func FormatRating(r float64) string {
	return strconv.FormatFloat(r, 'f', -1, 64)
}

// Chips lists the active filters in display order: sort, genres, languages, rating, year.
func (f DiscoverFilters) Chips() []FilterChip {
	var chips []FilterChip
	if s := f.SortOrDefault(); s != DefaultSort {
		chips = append(chips, FilterChip{Kind: ChipSort, Value: s, Label: "정렬: " + optionLabel(SortOptions, s)})
	}
	for _, id := range f.Genres {
		chips = append(chips, FilterChip{Kind: ChipGenre, Value: strconv.Itoa(id), Label: "장르: " + GenreName(id)})
	}
	for _, code := range f.Languages {
		chips = append(chips, FilterChip{Kind: ChipLanguage, Value: code, Label: "언어: " + optionLabel(Languages, code)})
	}
	if f.Rating != nil {
		r := FormatRating(*f.Rating)
		chips = append(chips, FilterChip{Kind: ChipRating, Value: r, Label: fmt.Sprintf("평점: %s점 이상", r)})
	}
	if f.Year != nil {
		y := strconv.Itoa(*f.Year)
		chips = append(chips, FilterChip{Kind: ChipYear, Value: y, Label: fmt.Sprintf("개봉년도: %s년", y)})
	}
	return chips
}

// Remove clears the filter a chip describes.
func (f *DiscoverFilters) Remove(chip FilterChip) {
	switch chip.Kind {
	case ChipSort:
		f.Sort = DefaultSort
	case ChipGenre:
		if id, err := strconv.Atoi(chip.Value); err == nil && slices.Contains(f.Genres, id) {
			f.ToggleGenre(id)
		}
	case ChipLanguage:
		if slices.Contains(f.Languages, chip.Value) {
			f.ToggleLanguage(chip.Value)
		}
	case ChipRating:
		f.Rating = nil
	case ChipYear:
		f.Year = nil
	}
}
