package eligibility_test

import (
	"encoding/json"
	"testing"

	"reelchain/internal/eligibility"
	"reelchain/internal/tmdb"
)

func movie(id int64, date string, genres string) tmdb.Movie {
	return tmdb.Movie{ID: id, ReleaseDate: date, GenreIDs: json.RawMessage(genres)}
}

func TestIsEligible(t *testing.T) {
	disallowed := map[int64]struct{}{5: {}}
	cases := []struct {
		name  string
		movie tmdb.Movie
		opts  eligibility.Options
		want  bool
	}{
		{"plain drama", movie(1, "2001-05-04", `[18]`), eligibility.Options{}, true},
		{"documentary excluded", movie(1, "2001-05-04", `[18, 99]`), eligibility.Options{}, false},
		{"tv movie excluded with bounds off", movie(1, "1950-01-01", `[10770]`), eligibility.Options{}, false},
		{"numeric string genre excluded", movie(1, "2001", `["99"]`), eligibility.Options{}, false},
		{"custom exclusions", movie(1, "2001", `[99]`), eligibility.Options{ExcludedGenres: []int{16}}, true},
		{"malformed genres", movie(1, "2001", `"18"`), eligibility.Options{}, false},
		{"missing genres", movie(1, "2001", ``), eligibility.Options{}, false},
		{"disallowed id", movie(5, "2001", `[18]`), eligibility.Options{DisallowedIDs: disallowed}, false},
		{"old year without bounds", movie(1, "1950-01-01", `[18]`), eligibility.Options{}, true},
		{"old year with bounds", movie(1, "1950-01-01", `[18]`), eligibility.Options{EnforceYearBounds: true, CurrentYear: 2020}, false},
		{"future year with bounds", movie(1, "2031-01-01", `[18]`), eligibility.Options{EnforceYearBounds: true, CurrentYear: 2030}, false},
		{"lowest year inclusive", movie(1, "1995-01-01", `[18]`), eligibility.Options{EnforceYearBounds: true, LowestYear: 1995, CurrentYear: 2030}, true},
		{"current year inclusive", movie(1, "2030-12-31", `[18]`), eligibility.Options{EnforceYearBounds: true, CurrentYear: 2030}, true},
		{"missing date with bounds", movie(1, "", `[18]`), eligibility.Options{EnforceYearBounds: true}, false},
		{"malformed date with bounds", movie(1, "20x1-01-01", `[18]`), eligibility.Options{EnforceYearBounds: true}, false},
		{"missing date without bounds", movie(1, "", `[18]`), eligibility.Options{}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := eligibility.IsEligible(tc.movie, tc.opts); got != tc.want {
				t.Fatalf("IsEligible = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestFilterPreservesOrder(t *testing.T) {
	movies := []tmdb.Movie{
		movie(1, "2001", `[18]`),
		movie(2, "2001", `[99]`),
		movie(3, "2001", `[35]`),
	}
	got := eligibility.Filter(movies, eligibility.Options{})
	if len(got) != 2 || got[0].ID != 1 || got[1].ID != 3 {
		t.Fatalf("unexpected filter result: %+v", got)
	}
}

func TestReleaseYear(t *testing.T) {
	if year, ok := eligibility.ReleaseYear("1999-03-31"); !ok || year != 1999 {
		t.Fatalf("ReleaseYear = %d, %v", year, ok)
	}
	if _, ok := eligibility.ReleaseYear("199"); ok {
		t.Fatal("expected short date to fail")
	}
}
