package tmdb

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
)

// ErrMalformedGenres reports genre_ids that are absent or not an array.
var ErrMalformedGenres = errors.New("genre_ids missing or not an array")

// Movie is a discover result.
type Movie struct {
	ID            int64           `json:"id"`
	Title         string          `json:"title"`
	OriginalTitle string          `json:"original_title"`
	ReleaseDate   string          `json:"release_date"`
	GenreIDs      json.RawMessage `json:"genre_ids"`
	Overview      string          `json:"overview"`
	PosterPath    *string         `json:"poster_path"`
	Popularity    float64         `json:"popularity"`
}

// Genres decodes genre_ids. Numeric strings are accepted; other non-numeric
// elements are skipped.
func (m Movie) Genres() ([]int, error) {
	raw := bytes.TrimSpace(m.GenreIDs)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, ErrMalformedGenres
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var items []any
	if err := dec.Decode(&items); err != nil {
		return nil, ErrMalformedGenres
	}
	ids := make([]int, 0, len(items))
	for _, item := range items {
		var text string
		switch v := item.(type) {
		case json.Number:
			text = v.String()
		case string:
			text = strings.TrimSpace(v)
		default:
			continue
		}
		id, err := strconv.Atoi(text)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Person is a cast or crew credit.
type Person struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	OriginalName string  `json:"original_name"`
	Character    string  `json:"character,omitempty"`
	Job          string  `json:"job,omitempty"`
	Department   string  `json:"department,omitempty"`
	Order        int     `json:"order"`
	ProfilePath  *string `json:"profile_path"`
}

// DisplayName returns name, falling back to original_name.
func (p Person) DisplayName() string {
	if name := strings.TrimSpace(p.Name); name != "" {
		return name
	}
	return strings.TrimSpace(p.OriginalName)
}

// Credits models /movie/{id}/credits.
type Credits struct {
	ID   int64    `json:"id"`
	Cast []Person `json:"cast"`
	Crew []Person `json:"crew"`
}

// DiscoverResponse models the paginated /discover/movie payload.
type DiscoverResponse struct {
	Page         int     `json:"page"`
	Results      []Movie `json:"results"`
	TotalPages   int     `json:"total_pages"`
	TotalResults int     `json:"total_results"`
}
