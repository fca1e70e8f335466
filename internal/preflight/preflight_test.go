package preflight

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"reelchain/internal/testsupport"
	"reelchain/internal/tmdb"
)

type pingFunc func(ctx context.Context, year int) error

func (f pingFunc) Ping(ctx context.Context, year int) error { return f(ctx, year) }

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckTMDB_OK(t *testing.T) {
	var gotYear int
	result := CheckTMDB(context.Background(), pingFunc(func(_ context.Context, year int) error {
		gotYear = year
		return nil
	}), 1999)
	if !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
	if gotYear != 1999 {
		t.Fatalf("expected probe year 1999, got %d", gotYear)
	}
}

func TestCheckTMDB_BadCredentials(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client, err := tmdb.New(tmdb.Settings{BaseURL: srv.URL, APIKey: "bad"}, tmdb.WithRetry(3, 0))
	if err != nil {
		t.Fatalf("tmdb.New: %v", err)
	}
	result := CheckTMDB(context.Background(), client, 2000)
	if result.Passed {
		t.Fatal("expected failure for rejected credentials")
	}
	if result.Detail != "auth failed (invalid api token or key)" {
		t.Fatalf("unexpected detail %q", result.Detail)
	}
	if calls != 1 {
		t.Fatalf("expected a single probe request, got %d", calls)
	}
}

func TestCheckTMDB_Timeout(t *testing.T) {
	result := CheckTMDB(context.Background(), pingFunc(func(context.Context, int) error {
		return context.DeadlineExceeded
	}), 2000)
	if result.Passed || result.Detail != "probe timed out (TMDB unresponsive)" {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestCheckTMDB_NilPinger(t *testing.T) {
	if result := CheckTMDB(context.Background(), nil, 2000); result.Passed {
		t.Fatal("expected failure without a client")
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	if results := RunAll(context.Background(), nil, nil); results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAll_Directories(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}

	results := RunAll(context.Background(), cfg, nil)
	if len(results) != 3 {
		t.Fatalf("expected 3 directory results, got %d", len(results))
	}
	if failed := Failed(results); len(failed) != 0 {
		t.Fatalf("unexpected failures: %+v", failed)
	}
}

func TestRunAll_IncludesTMDBFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithArchive(false))
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	boom := errors.New("boom")

	results := RunAll(context.Background(), cfg, pingFunc(func(context.Context, int) error { return boom }))
	if len(results) != 3 {
		t.Fatalf("expected data, log and TMDB results, got %d", len(results))
	}
	failed := Failed(results)
	if len(failed) != 1 || failed[0].Name != "TMDB" || failed[0].Detail != "boom" {
		t.Fatalf("unexpected failures: %+v", failed)
	}
}
