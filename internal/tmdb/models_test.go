package tmdb_test

import (
	"encoding/json"
	"errors"
	"testing"

	"reelchain/internal/tmdb"
)

func TestMovieGenres(t *testing.T) {
	cases := []struct {
		name    string
		raw     string
		want    []int
		wantErr bool
	}{
		{"numbers", `[28, 12]`, []int{28, 12}, false},
		{"numeric strings", `["99", 18]`, []int{99, 18}, false},
		{"junk elements skipped", `[null, "abc", 1.5, 35]`, []int{35}, false},
		{"empty array", `[]`, []int{}, false},
		{"missing", ``, nil, true},
		{"null", `null`, nil, true},
		{"object", `{"a":1}`, nil, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			movie := tmdb.Movie{GenreIDs: json.RawMessage(tc.raw)}
			got, err := movie.Genres()
			if tc.wantErr {
				if !errors.Is(err, tmdb.ErrMalformedGenres) {
					t.Fatalf("expected malformed error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Genres returned error: %v", err)
			}
			if len(got) != len(tc.want) {
				t.Fatalf("got %v want %v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("got %v want %v", got, tc.want)
				}
			}
		})
	}
}

func TestPersonDisplayNameFallback(t *testing.T) {
	if got := (tmdb.Person{OriginalName: " Toshiro Mifune "}).DisplayName(); got != "Toshiro Mifune" {
		t.Fatalf("unexpected display name %q", got)
	}
}
