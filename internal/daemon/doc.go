// Package daemon runs the long-lived reelchain HTTP service.
//
// It wraps the puzzle service in a chi router, serves it on the configured
// bind address, and holds a flock-based lock so only one daemon per data
// directory runs at a time. Handlers translate service errors into HTTP
// statuses; generation and storage logic stay in the api package.
package daemon
