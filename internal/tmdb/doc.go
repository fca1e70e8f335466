// Package tmdb talks to the TMDB v3 API.
//
// Client.Fetch owns the retry policy: server errors are retried with
// exponential backoff, 404 and other client errors fail immediately. The
// discover and credits helpers build URLs, decode payloads, and tag every
// failure as a services.ExternalServiceError.
package tmdb
