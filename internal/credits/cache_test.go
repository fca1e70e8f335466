package credits_test

import (
	"context"
	"errors"
	"testing"

	"reelchain/internal/credits"
	"reelchain/internal/logging"
	"reelchain/internal/tmdb"
)

type countingFetcher struct {
	calls map[int64]int
	err   error
}

func (f *countingFetcher) Credits(_ context.Context, movieID int64) (tmdb.Credits, error) {
	if f.calls == nil {
		f.calls = map[int64]int{}
	}
	f.calls[movieID]++
	if f.err != nil {
		return tmdb.Credits{}, f.err
	}
	return tmdb.Credits{ID: movieID, Cast: []tmdb.Person{{ID: movieID * 10, Name: "Actor"}}}, nil
}

func newCache(t *testing.T, fetcher credits.Fetcher, capacity int) *credits.Cache {
	t.Helper()
	cache, err := credits.New(fetcher, capacity, logging.NewNop())
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return cache
}

func TestGetMemoizes(t *testing.T) {
	fetcher := &countingFetcher{}
	cache := newCache(t, fetcher, 4)
	ctx := context.Background()

	for range 3 {
		got, err := cache.Get(ctx, 7)
		if err != nil {
			t.Fatalf("Get returned error: %v", err)
		}
		if got.ID != 7 {
			t.Fatalf("unexpected credits: %+v", got)
		}
	}
	if fetcher.calls[7] != 1 {
		t.Fatalf("expected one fetch, got %d", fetcher.calls[7])
	}
}

func TestEvictsLeastRecentlyUsed(t *testing.T) {
	fetcher := &countingFetcher{}
	cache := newCache(t, fetcher, 3)
	ctx := context.Background()

	for _, id := range []int64{1, 2, 3} {
		if _, err := cache.Get(ctx, id); err != nil {
			t.Fatalf("Get(%d): %v", id, err)
		}
	}
	if _, err := cache.Get(ctx, 4); err != nil {
		t.Fatalf("Get(4): %v", err)
	}
	if cache.Contains(1) {
		t.Fatal("expected least recently used key 1 to be evicted")
	}
	for _, id := range []int64{2, 3, 4} {
		if !cache.Contains(id) {
			t.Fatalf("expected key %d to remain", id)
		}
	}
	if cache.Len() != 3 {
		t.Fatalf("expected len 3, got %d", cache.Len())
	}
}

func TestReadProtectsFromEviction(t *testing.T) {
	fetcher := &countingFetcher{}
	cache := newCache(t, fetcher, 3)
	ctx := context.Background()

	for _, id := range []int64{1, 2, 3} {
		_, _ = cache.Get(ctx, id)
	}
	_, _ = cache.Get(ctx, 1)
	_, _ = cache.Get(ctx, 4)

	if !cache.Contains(1) {
		t.Fatal("recently read key 1 should survive")
	}
	if cache.Contains(2) {
		t.Fatal("expected key 2 to be evicted")
	}
	if fetcher.calls[1] != 1 {
		t.Fatalf("hit must not refetch, got %d calls", fetcher.calls[1])
	}
}

func TestNonPositiveIDShortCircuits(t *testing.T) {
	fetcher := &countingFetcher{}
	cache := newCache(t, fetcher, 2)

	for _, id := range []int64{0, -5} {
		got, err := cache.Get(context.Background(), id)
		if err != nil {
			t.Fatalf("Get(%d) returned error: %v", id, err)
		}
		if got.Cast == nil || got.Crew == nil || len(got.Cast) != 0 || len(got.Crew) != 0 {
			t.Fatalf("expected empty non-nil credits, got %+v", got)
		}
	}
	if len(fetcher.calls) != 0 || cache.Len() != 0 {
		t.Fatalf("expected no fetches or entries, calls=%v len=%d", fetcher.calls, cache.Len())
	}
}

func TestFetchErrorIsNotCached(t *testing.T) {
	fetcher := &countingFetcher{err: errors.New("boom")}
	cache := newCache(t, fetcher, 2)

	if _, err := cache.Get(context.Background(), 9); err == nil {
		t.Fatal("expected error")
	}
	if cache.Contains(9) {
		t.Fatal("failed fetch must not be cached")
	}
}

func TestNewRequiresFetcher(t *testing.T) {
	if _, err := credits.New(nil, 1, nil); err == nil {
		t.Fatal("expected error without fetcher")
	}
}
