package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"reelchain/internal/config"
	"reelchain/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	tmdb       *httptest.Server
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	for _, key := range []string{"TMDB_API_TOKEN", "TMDB_API_KEY", "LOWEST_YEAR", "TMDB_REQUEST_TIMEOUT_MS"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	stub := httptest.NewServer(http.HandlerFunc(serveTMDBWorld))
	t.Cleanup(stub.Close)

	cfg := testsupport.NewConfig(t, testsupport.WithTMDBBaseURL(stub.URL))
	homeDir := filepath.Join(testsupport.BaseDir(cfg), "home")
	t.Setenv("HOME", homeDir)

	configPath := filepath.Join(homeDir, ".config", "reelchain", "config.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{cfg: cfg, configPath: configPath, tmdb: stub}
}

// serveTMDBWorld answers discover and credits requests with a deterministic
// graph: movie M credits actors M*10..M*10+5, and actor P appears in movies
// P*10+1..P*10+3.
func serveTMDBWorld(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.URL.Path == "/discover/movie" && r.URL.Query().Get("primary_release_year") != "":
		year := r.URL.Query().Get("primary_release_year")
		var results []map[string]any
		for id := 1001; id <= 1005; id++ {
			results = append(results, movieJSON(int64(id), year+"-06-01"))
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"results": results})
	case r.URL.Path == "/discover/movie" && r.URL.Query().Get("with_cast") != "":
		person, _ := strconv.ParseInt(r.URL.Query().Get("with_cast"), 10, 64)
		var results []map[string]any
		for k := int64(1); k <= 3; k++ {
			results = append(results, movieJSON(person*10+k, "2010-06-01"))
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"results": results})
	case strings.HasPrefix(r.URL.Path, "/movie/") && strings.HasSuffix(r.URL.Path, "/credits"):
		idText := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/movie/"), "/credits")
		movieID, _ := strconv.ParseInt(idText, 10, 64)
		cast := make([]map[string]any, 0, 6)
		for k := int64(0); k < 6; k++ {
			personID := movieID*10 + k
			cast = append(cast, map[string]any{
				"id":        personID,
				"name":      fmt.Sprintf("Actor %d", personID),
				"character": "Role",
				"order":     k,
			})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":   movieID,
			"cast": cast,
			"crew": []map[string]any{{"id": 7, "name": "Dana Director", "job": "Director"}},
		})
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"status_message":"not found"}`))
	}
}

func movieJSON(id int64, releaseDate string) map[string]any {
	return map[string]any{
		"id":           id,
		"title":        fmt.Sprintf("Movie %d", id),
		"release_date": releaseDate,
		"genre_ids":    []int{18},
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
