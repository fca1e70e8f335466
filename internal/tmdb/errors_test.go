package tmdb

import (
	"net/http"
	"testing"
	"time"
)

func TestParseRetryAfter(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	cases := map[string]time.Duration{
		"":   0,
		"12": 12 * time.Second,
		"-3": 0,
		now.Add(90 * time.Second).Format(http.TimeFormat): 90 * time.Second,
		now.Add(-time.Minute).Format(http.TimeFormat):     0,
		"soon": 0,
	}
	for input, want := range cases {
		if got := parseRetryAfter(input, now); got != want {
			t.Fatalf("parseRetryAfter(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestStatusErrorRetryable(t *testing.T) {
	if (&StatusError{StatusCode: 499}).Retryable() {
		t.Fatal("4xx must not be retryable")
	}
	if !(&StatusError{StatusCode: 500}).Retryable() {
		t.Fatal("500 must be retryable")
	}
}
