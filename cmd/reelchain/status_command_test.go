package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"reelchain/internal/preflight"
)

func TestRenderStatusLineNoColor(t *testing.T) {
	got := renderStatusLine("Daemon", statusError, "Not running", false)
	want := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, "Daemon:", "[ERROR] Not running")
	if got != want {
		t.Fatalf("renderStatusLine mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderStatusLineWithColor(t *testing.T) {
	got := renderStatusLine("Daemon", statusOK, "Running", true)
	if !strings.HasPrefix(got, ansiGreen) {
		t.Fatalf("expected green prefix, got %q", got)
	}
	if !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected reset suffix, got %q", got)
	}
}

func TestCheckLines(t *testing.T) {
	lines := checkLines([]preflight.Result{
		{Name: "Data directory", Passed: true, Detail: "/tmp (read/write ok)"},
		{Name: "TMDB", Detail: "auth failed"},
	})
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0].kind != statusOK || lines[1].kind != statusError {
		t.Fatalf("unexpected kinds %+v", lines)
	}
}

func TestWriteSections(t *testing.T) {
	var buf strings.Builder
	writeSections(&buf, []statusSection{
		{title: "One", lines: []statusLine{{label: "Config", message: "defaults"}}},
		{title: "Two", lines: []statusLine{{label: "TMDB", kind: statusError, message: "auth failed"}}},
	}, false)
	out := buf.String()
	requireContains(t, out, "== One ==")
	requireContains(t, out, "[INFO] defaults")
	requireContains(t, out, "\n\n== Two ==")
	requireContains(t, out, "[ERROR] auth failed")
}

func TestStatusCommandOffline(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"status", "--offline"}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "Stored puzzles")
	requireContains(t, out, "[WARN] Not running")
	requireContains(t, out, "Data directory")
}

func TestStatusCommandProbesTMDB(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"status", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	var report statusReport
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if report.SchemaVersion != 2 || report.PuzzleCount != 0 {
		t.Fatalf("unexpected report %+v", report)
	}
	found := false
	for _, check := range report.Checks {
		if check.Name == "TMDB" {
			found = true
			if !check.Passed {
				t.Fatalf("expected TMDB probe to pass, got %q", check.Detail)
			}
		}
	}
	if !found {
		t.Fatal("expected TMDB check in report")
	}
}
