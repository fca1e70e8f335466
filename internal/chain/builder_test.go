package chain_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"reelchain/internal/chain"
	"reelchain/internal/credits"
	"reelchain/internal/logging"
	"reelchain/internal/services"
	"reelchain/internal/tmdb"
)

var fixedNow = time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

// scriptedChooser returns queued indices, then 0.
type scriptedChooser struct {
	queue []int
	calls []int
}

func (s *scriptedChooser) Intn(n int) int {
	s.calls = append(s.calls, n)
	if len(s.queue) == 0 {
		return 0
	}
	v := s.queue[0]
	s.queue = s.queue[1:]
	return v
}

// fakeWorld serves discover results and credits computed from ids.
type fakeWorld struct {
	years       map[int][]tmdb.Movie
	yearErr     error
	byCast      map[int64][]tmdb.Movie
	castErr     map[int64]error
	credits     map[int64]tmdb.Credits
	yearCalls   []int
	castCalls   []int64
	creditCalls int
}

func newMovie(id int64, date string, genres ...int) tmdb.Movie {
	raw, _ := json.Marshal(genres)
	return tmdb.Movie{ID: id, Title: fmt.Sprintf("Movie %d", id), ReleaseDate: date, GenreIDs: raw}
}

func (w *fakeWorld) DiscoverByYear(_ context.Context, year int) ([]tmdb.Movie, error) {
	w.yearCalls = append(w.yearCalls, year)
	if w.yearErr != nil {
		return nil, w.yearErr
	}
	return w.years[year], nil
}

func (w *fakeWorld) DiscoverByCast(_ context.Context, personID int64) ([]tmdb.Movie, error) {
	w.castCalls = append(w.castCalls, personID)
	if err := w.castErr[personID]; err != nil {
		return nil, err
	}
	if movies, ok := w.byCast[personID]; ok {
		return movies, nil
	}
	base := personID * 10
	return []tmdb.Movie{
		newMovie(base+1, "2010-01-01", 18),
		newMovie(base+2, "2011-01-01", 35),
		newMovie(base+3, "2012-01-01", 28),
	}, nil
}

func (w *fakeWorld) Credits(_ context.Context, movieID int64) (tmdb.Credits, error) {
	w.creditCalls++
	if c, ok := w.credits[movieID]; ok {
		return c, nil
	}
	cast := make([]tmdb.Person, 0, 6)
	for k := range int64(6) {
		cast = append(cast, tmdb.Person{ID: movieID*10 + k, Name: fmt.Sprintf("Actor %d", movieID*10+k), Order: int(k)})
	}
	return tmdb.Credits{
		ID:   movieID,
		Cast: cast,
		Crew: []tmdb.Person{
			{ID: 1, Name: "Director One", Job: "Director"},
			{ID: 2, Name: "Helper", Job: "Assistant Director"},
			{ID: 3, Name: "Director Two", Job: "DIRECTOR"},
		},
	}, nil
}

func seedYear(count int) map[int][]tmdb.Movie {
	movies := make([]tmdb.Movie, 0, count)
	for i := 1; i <= count; i++ {
		movies = append(movies, newMovie(int64(i), "2005-06-01", 18))
	}
	return map[int][]tmdb.Movie{2005: movies}
}

func newBuilder(t *testing.T, world *fakeWorld, chooser chain.Chooser) *chain.Builder {
	t.Helper()
	cache, err := credits.New(world, 64, logging.NewNop())
	if err != nil {
		t.Fatalf("credits.New: %v", err)
	}
	return chain.NewBuilder(world, cache,
		chain.WithChooser(chooser),
		chain.WithClock(func() time.Time { return fixedNow }),
		chain.WithLowestYear(2005),
		chain.WithLogger(logging.NewNop()),
	)
}

func TestGenerateBuildsSixLinkedMovies(t *testing.T) {
	world := &fakeWorld{years: seedYear(10)}
	chooser := &scriptedChooser{queue: []int{0, 3}}
	p, err := newBuilder(t, world, chooser).Generate(context.Background())
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	if len(world.yearCalls) != 1 || world.yearCalls[0] != 2005 {
		t.Fatalf("expected discover for 2005, got %v", world.yearCalls)
	}
	if chooser.calls[0] != 2026-2005+1 {
		t.Fatalf("expected year range of %d, got %d", 2026-2005+1, chooser.calls[0])
	}
	if len(p.Puzzle) != chain.Length || len(p.KeyPeople) != chain.Length {
		t.Fatalf("expected %d entries and key people, got %d / %d", chain.Length, len(p.Puzzle), len(p.KeyPeople))
	}
	if p.Puzzle[0].ID == nil || *p.Puzzle[0].ID != 4 {
		t.Fatalf("expected seed at index 3 (id 4), got %v", p.Puzzle[0].ID)
	}
	if p.PuzzleID != fixedNow.UnixMilli() {
		t.Fatalf("unexpected puzzle id %d", p.PuzzleID)
	}

	seen := map[int64]bool{}
	for i, entry := range p.Puzzle {
		if entry.ID == nil {
			t.Fatalf("entry %d missing id", i)
		}
		if seen[*entry.ID] {
			t.Fatalf("duplicate movie id %d", *entry.ID)
		}
		seen[*entry.ID] = true

		if p.KeyPeople[i] == "" || p.KeyPeople[i] != entry.KeyPerson.Name {
			t.Fatalf("entry %d key people mismatch: %q vs %q", i, p.KeyPeople[i], entry.KeyPerson.Name)
		}
		inCast := false
		for _, member := range entry.Cast {
			if member.Name == entry.KeyPerson.Name {
				inCast = true
			}
		}
		if !inCast {
			t.Fatalf("entry %d key person %q not in cast", i, entry.KeyPerson.Name)
		}
		if len(entry.Cast) == 0 || len(entry.Cast) > 5 {
			t.Fatalf("entry %d has %d cast members", i, len(entry.Cast))
		}
		if len(entry.Directors) != 2 {
			t.Fatalf("entry %d expected 2 directors, got %+v", i, entry.Directors)
		}
	}

	// Each link is discovered through the previous key person.
	if len(world.castCalls) != chain.Length-1 {
		t.Fatalf("expected one cast lookup per link, got %v", world.castCalls)
	}
	if world.creditCalls != chain.Length {
		t.Fatalf("expected one credits fetch per movie, got %d", world.creditCalls)
	}
}

func TestGenerateFailsWithoutEligibleSeed(t *testing.T) {
	world := &fakeWorld{years: map[int][]tmdb.Movie{
		2005: {newMovie(1, "2005-01-01", 99), newMovie(2, "2005-01-01", 10770, 18)},
	}}
	_, err := newBuilder(t, world, &scriptedChooser{}).Generate(context.Background())
	if services.KindOf(err) != services.KindExternalService {
		t.Fatalf("expected external service error, got %v", err)
	}
	if world.creditCalls != 0 {
		t.Fatalf("expected no credits fetch, got %d", world.creditCalls)
	}
}

func TestGenerateWrapsUntaggedErrors(t *testing.T) {
	world := &fakeWorld{yearErr: errors.New("decode failure")}
	_, err := newBuilder(t, world, &scriptedChooser{}).Generate(context.Background())
	ext, ok := services.AsExternal(err)
	if !ok || ext.Kind != services.KindExternalService {
		t.Fatalf("expected tagged error, got %v", err)
	}
}

func TestExtendFallsBackThroughPreviousCast(t *testing.T) {
	world := &fakeWorld{
		years: seedYear(1),
		// Seed is movie 1 with cast 10..14; key person is 10.
		castErr: map[int64]error{10: services.External("Failed to fetch movies for cast member 10", nil)},
		byCast: map[int64][]tmdb.Movie{
			11: {newMovie(1, "2005-06-01", 18), newMovie(900, "1970-01-01", 18)},
		},
	}
	p, err := newBuilder(t, world, &scriptedChooser{}).Generate(context.Background())
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if len(world.castCalls) < 3 || world.castCalls[0] != 10 || world.castCalls[1] != 11 || world.castCalls[2] != 12 {
		t.Fatalf("unexpected candidate order %v", world.castCalls)
	}
	if got := *p.Puzzle[1].ID; got != 121 {
		t.Fatalf("expected link through cast member 12 (movie 121), got %d", got)
	}
}

func TestGenerateNoConnectedMovie(t *testing.T) {
	world := &fakeWorld{years: seedYear(1), byCast: map[int64][]tmdb.Movie{}}
	for id := int64(10); id < 15; id++ {
		world.byCast[id] = nil
	}
	_, err := newBuilder(t, world, &scriptedChooser{}).Generate(context.Background())
	ext, ok := services.AsExternal(err)
	if !ok || ext.Message != "no connected movie found" {
		t.Fatalf("expected no connected movie error, got %v", err)
	}
	if len(world.castCalls) != 5 {
		t.Fatalf("expected every previous cast member tried, got %v", world.castCalls)
	}
}

func TestSeedRequiresBilledCast(t *testing.T) {
	world := &fakeWorld{
		years: seedYear(1),
		credits: map[int64]tmdb.Credits{
			1: {ID: 1, Cast: []tmdb.Person{{ID: 5, Name: "Extra", Order: 9}}},
		},
	}
	_, err := newBuilder(t, world, &scriptedChooser{}).Generate(context.Background())
	if services.KindOf(err) != services.KindExternalService {
		t.Fatalf("expected external service error for empty primary cast, got %v", err)
	}
}

func TestSupportingCastExcludesPreviousCast(t *testing.T) {
	world := &fakeWorld{
		years: seedYear(1),
		credits: map[int64]tmdb.Credits{
			101: {ID: 101, Cast: []tmdb.Person{
				{ID: 10, Name: "Actor 10"},
				{ID: 11, Name: "Actor 11"},
				{ID: 500, Name: "Newcomer"},
			}},
		},
	}
	p, err := newBuilder(t, world, &scriptedChooser{}).Generate(context.Background())
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	link := p.Puzzle[1]
	if len(link.Cast) != 1 || link.Cast[0].Name != "Newcomer" || link.KeyPerson.Name != "Newcomer" {
		t.Fatalf("expected only the new cast member, got %+v", link.Cast)
	}
}

func TestRandomChooserStaysInRange(t *testing.T) {
	chooser := chain.NewRandomChooser()
	for range 100 {
		if v := chooser.Intn(3); v < 0 || v >= 3 {
			t.Fatalf("Intn out of range: %d", v)
		}
	}
	if chooser.Intn(0) != 0 {
		t.Fatal("Intn(0) should return 0")
	}
}
