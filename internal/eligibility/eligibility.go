// Package eligibility decides whether a discovered movie may join a chain.
package eligibility

import (
	"slices"
	"strconv"
	"time"

	"reelchain/internal/tmdb"
)

// DefaultLowestYear is the earliest release year allowed when bounds apply.
const DefaultLowestYear = 1980

// DefaultExcludedGenres are Documentary and TV Movie.
var DefaultExcludedGenres = []int{99, 10770}

// Options tunes IsEligible. Zero values fall back to the package defaults and
// the wall-clock year.
type Options struct {
	EnforceYearBounds bool
	DisallowedIDs     map[int64]struct{}
	LowestYear        int
	CurrentYear       int
	ExcludedGenres    []int
}

// IsEligible reports whether movie passes the genre, id, and optional year checks.
func IsEligible(movie tmdb.Movie, opts Options) bool {
	if _, banned := opts.DisallowedIDs[movie.ID]; banned {
		return false
	}

	genres, err := movie.Genres()
	if err != nil {
		return false
	}
	excluded := opts.ExcludedGenres
	if excluded == nil {
		excluded = DefaultExcludedGenres
	}
	for _, id := range genres {
		if slices.Contains(excluded, id) {
			return false
		}
	}

	if !opts.EnforceYearBounds {
		return true
	}
	year, ok := ReleaseYear(movie.ReleaseDate)
	if !ok {
		return false
	}
	lowest := opts.LowestYear
	if lowest == 0 {
		lowest = DefaultLowestYear
	}
	current := opts.CurrentYear
	if current == 0 {
		current = time.Now().Year()
	}
	return year >= lowest && year <= current
}

// ReleaseYear parses the leading four characters of a release date.
func ReleaseYear(releaseDate string) (int, bool) {
	if len(releaseDate) < 4 {
		return 0, false
	}
	year, err := strconv.Atoi(releaseDate[:4])
	if err != nil {
		return 0, false
	}
	return year, true
}

// Filter returns the eligible movies in their original order.
func Filter(movies []tmdb.Movie, opts Options) []tmdb.Movie {
	out := make([]tmdb.Movie, 0, len(movies))
	for _, movie := range movies {
		if IsEligible(movie, opts) {
			out = append(out, movie)
		}
	}
	return out
}
