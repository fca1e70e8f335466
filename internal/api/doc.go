// Package api exposes the puzzle operations shared by the HTTP daemon and the
// CLI.
//
// PuzzleService owns generation (serialized, retried, persisted) and the read
// paths over the store. Callers obtain a puzzle or a typed error; HTTP status
// mapping lives in the daemon package.
package api
