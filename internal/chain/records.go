package chain

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"

	"reelchain/internal/tmdb"
)

var (
	errMissingMovieID = errors.New("movie id required")
	errEmptyCast      = errors.New("cast must not be empty")
	errKeyNotInCast   = errors.New("key person must belong to the cast")
)

// MovieRecord is the subset of a discover result carried into a chain.
type MovieRecord struct {
	ID            int64
	Title         string
	OriginalTitle string
	ReleaseDate   string
	GenreIDs      []int
	Overview      string
	PosterPath    *string
}

// NewMovieRecord validates a discover result. Movies without an id or with
// malformed genre_ids are rejected.
func NewMovieRecord(movie tmdb.Movie) (MovieRecord, error) {
	if movie.ID <= 0 {
		return MovieRecord{}, errMissingMovieID
	}
	genres, err := movie.Genres()
	if err != nil {
		return MovieRecord{}, fmt.Errorf("movie %d: %w", movie.ID, err)
	}
	return MovieRecord{
		ID:            movie.ID,
		Title:         movie.Title,
		OriginalTitle: movie.OriginalTitle,
		ReleaseDate:   movie.ReleaseDate,
		GenreIDs:      genres,
		Overview:      movie.Overview,
		PosterPath:    movie.PosterPath,
	}, nil
}

// PersonRecord is a credited person with a resolved display name.
type PersonRecord struct {
	ID          int64
	Name        string
	Character   string
	Job         string
	Order       int
	ProfilePath *string
}

func newPersonRecord(p tmdb.Person) PersonRecord {
	return PersonRecord{
		ID:          p.ID,
		Name:        p.DisplayName(),
		Character:   p.Character,
		Job:         p.Job,
		Order:       p.Order,
		ProfilePath: p.ProfilePath,
	}
}

// Entry is a movie linked into the chain.
type Entry struct {
	Movie     MovieRecord
	Cast      []PersonRecord
	Directors []PersonRecord
	KeyPerson PersonRecord
}

// NewEntry assembles an entry, requiring a movie id, a non-empty cast, and a
// key person drawn from that cast.
func NewEntry(movie MovieRecord, cast, directors []PersonRecord, keyPerson PersonRecord) (Entry, error) {
	if movie.ID <= 0 {
		return Entry{}, errMissingMovieID
	}
	if len(cast) == 0 {
		return Entry{}, fmt.Errorf("movie %d: %w", movie.ID, errEmptyCast)
	}
	found := false
	for _, member := range cast {
		if member.ID == keyPerson.ID {
			found = true
			break
		}
	}
	if !found {
		return Entry{}, fmt.Errorf("movie %d: %w", movie.ID, errKeyNotInCast)
	}
	if directors == nil {
		directors = []PersonRecord{}
	}
	return Entry{
		Movie:     movie,
		Cast:      append([]PersonRecord(nil), cast...),
		Directors: append([]PersonRecord{}, directors...),
		KeyPerson: keyPerson,
	}, nil
}

// Raw renders the entry in the generic shape consumed by puzzle.NormalizeMovie.
func (e Entry) Raw() map[string]any {
	genres := make([]any, 0, len(e.Movie.GenreIDs))
	for _, id := range e.Movie.GenreIDs {
		genres = append(genres, id)
	}
	cast := make([]any, 0, len(e.Cast))
	for _, p := range e.Cast {
		cast = append(cast, map[string]any{
			"id":           p.ID,
			"name":         p.Name,
			"character":    p.Character,
			"profile_path": derefString(p.ProfilePath),
		})
	}
	directors := make([]any, 0, len(e.Directors))
	for _, p := range e.Directors {
		directors = append(directors, map[string]any{"id": p.ID, "name": p.Name})
	}
	return map[string]any{
		"id":             e.Movie.ID,
		"title":          e.Movie.Title,
		"original_title": e.Movie.OriginalTitle,
		"poster_path":    derefString(e.Movie.PosterPath),
		"release_date":   e.Movie.ReleaseDate,
		"overview":       e.Movie.Overview,
		"genre_ids":      genres,
		"directors":      directors,
		"cast":           cast,
		"keyPerson":      map[string]any{"id": e.KeyPerson.ID, "name": e.KeyPerson.Name},
	}
}

func derefString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

// primaryCast keeps billed cast with order below maxPrimaryCast, capped at maxPrimaryCast.
func primaryCast(cast []tmdb.Person) []PersonRecord {
	out := make([]PersonRecord, 0, maxPrimaryCast)
	for _, p := range cast {
		if len(out) == maxPrimaryCast {
			break
		}
		if p.Order >= maxPrimaryCast || !usablePerson(p) {
			continue
		}
		out = append(out, newPersonRecord(p))
	}
	return out
}

// supportingCast keeps up to maxPrimaryCast members not credited in previous.
func supportingCast(cast []tmdb.Person, previous []PersonRecord) []PersonRecord {
	seen := make(map[int64]struct{}, len(previous))
	for _, p := range previous {
		seen[p.ID] = struct{}{}
	}
	out := make([]PersonRecord, 0, maxPrimaryCast)
	for _, p := range cast {
		if len(out) == maxPrimaryCast {
			break
		}
		if _, dup := seen[p.ID]; dup || !usablePerson(p) {
			continue
		}
		out = append(out, newPersonRecord(p))
	}
	return out
}

func directorsOf(crew []tmdb.Person) []PersonRecord {
	folder := cases.Fold()
	out := []PersonRecord{}
	for _, p := range crew {
		if folder.String(strings.TrimSpace(p.Job)) != "director" {
			continue
		}
		out = append(out, newPersonRecord(p))
	}
	return out
}

// usablePerson requires an id to query by and a name to display.
func usablePerson(p tmdb.Person) bool {
	return p.ID > 0 && p.DisplayName() != ""
}
