package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Movie is a movie list entry as returned by the metadata API.
//
// Decoding keeps the original bytes; encoding a decoded Movie writes them back unchanged,
// so fields this type does not model survive a round trip through the wishlist record.
type Movie struct {
	ID               int64   `json:"id"`
	Title            string  `json:"title"`
	OriginalTitle    string  `json:"original_title,omitempty"`
	Overview         string  `json:"overview"`
	PosterPath       string  `json:"poster_path"`
	BackdropPath     string  `json:"backdrop_path"`
	VoteAverage      float64 `json:"vote_average"`
	VoteCount        int     `json:"vote_count"`
	ReleaseDate      string  `json:"release_date"`
	OriginalLanguage string  `json:"original_language"`
	GenreIDs         []int   `json:"genre_ids"`
	Popularity       float64 `json:"popularity"`
	Adult            bool    `json:"adult,omitempty"`

	raw json.RawMessage
}

// movieFields has Movie's fields without its JSON methods.
type movieFields Movie

// UnmarshalJSON decodes the known fields and retains the raw object.
func (m *Movie) UnmarshalJSON(data []byte) error {
	var f movieFields
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*m = Movie(f)
	m.raw = append(json.RawMessage(nil), data...)
	return nil
}

// MarshalJSON writes the raw object when the movie was decoded, the known fields otherwise.
func (m Movie) MarshalJSON() ([]byte, error) {
	if len(m.raw) > 0 {
		return m.raw, nil
	}
	return json.Marshal(movieFields(m))
}

// Raw returns the bytes the movie was decoded from, or nil.
func (m Movie) Raw() json.RawMessage {
	return m.raw
}

// Year returns the release year, or "" when the release date is unknown.
func (m Movie) Year() string {
	if len(m.ReleaseDate) < 4 {
		return ""
	}
	return m.ReleaseDate[:4]
}

// Rating formats the vote average with one decimal, as shown on cards.
func (m Movie) Rating() string {
	return fmt.Sprintf("%.1f", m.VoteAverage)
}

// Language returns the upper-cased original language code.
func (m Movie) Language() string {
	return strings.ToUpper(m.OriginalLanguage)
}

// MoviePage is one page of list results.
type MoviePage struct {
	Page         int     `json:"page"`
	Results      []Movie `json:"results"`
	TotalPages   int     `json:"total_pages"`
	TotalResults int     `json:"total_results"`
}

// Genre is a genre id and its display name.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// GenreList is the genre lookup response.
type GenreList struct {
	Genres []Genre `json:"genres"`
}

// Lookup returns the name for id.
func (l GenreList) Lookup(id int) (string, bool) {
	for _, g := range l.Genres {
		if g.ID == id {
			return g.Name, true
		}
	}
	return "", false
}

// Names maps genre ids to names, skipping unknown ids.
func (l GenreList) Names(ids []int) []string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if name, ok := l.Lookup(id); ok {
			names = append(names, name)
		}
	}
	return names
}
