package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"reelchain/internal/services"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenPath(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("OpenPath: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestCorruptRowIsInternalError(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	if _, err := s.db.ExecContext(ctx, `INSERT INTO puzzles VALUES (7, '"not a puzzle"', 'oops', 'x', 'x')`); err != nil {
		t.Fatalf("seed row: %v", err)
	}

	_, err := s.Get(ctx, 7)
	if services.KindOf(err) != services.KindInternal {
		t.Fatalf("expected internal error, got %v", err)
	}
	if _, err := s.Latest(ctx); services.KindOf(err) != services.KindInternal {
		t.Fatalf("expected internal error from Latest, got %v", err)
	}

	listings, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(listings) != 1 || listings[0].KeyPeople == nil || len(listings[0].KeyPeople) != 0 {
		t.Fatalf("expected empty key people for malformed json, got %+v", listings)
	}
}

func TestRetryOnBusyRetriesBusyErrors(t *testing.T) {
	calls := 0
	err := retryOnBusy(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("database is locked (SQLITE_BUSY)")
		}
		return nil
	})
	if err != nil || calls != 3 {
		t.Fatalf("expected success after 3 calls, got %v after %d", err, calls)
	}
}

func TestRetryOnBusyStopsOnOtherErrors(t *testing.T) {
	calls := 0
	boom := errors.New("constraint failed")
	err := retryOnBusy(context.Background(), func() error {
		calls++
		return boom
	})
	if !errors.Is(err, boom) || calls != 1 {
		t.Fatalf("expected single failing call, got %v after %d", err, calls)
	}
}
