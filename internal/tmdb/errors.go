package tmdb

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const maxErrorBody = 512

// StatusError is a non-2xx response from TMDB.
type StatusError struct {
	StatusCode int
	Body       string
	RetryAfter time.Duration
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("tmdb returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("tmdb returned status %d: %s", e.StatusCode, e.Body)
}

// Retryable reports whether the status is a server-side failure.
func (e *StatusError) Retryable() bool {
	return e.StatusCode >= http.StatusInternalServerError
}

func newStatusError(resp *http.Response, body []byte, now time.Time) *StatusError {
	text := strings.TrimSpace(string(body))
	if len(text) > maxErrorBody {
		text = text[:maxErrorBody]
	}
	return &StatusError{
		StatusCode: resp.StatusCode,
		Body:       text,
		RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"), now),
	}
}

// parseRetryAfter accepts delta-seconds or an HTTP-date.
func parseRetryAfter(value string, now time.Time) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	if secs, err := strconv.Atoi(value); err == nil {
		if secs < 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(value); err == nil {
		if d := at.Sub(now); d > 0 {
			return d
		}
	}
	return 0
}
