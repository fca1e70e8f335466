// Package store persists generated puzzles in SQLite.
//
// Rows hold the normalized puzzle JSON keyed by puzzle id; reads run the
// normalizer again so callers always receive the client contract. Schema
// changes ship as goose migrations embedded in the binary. Writes retry
// briefly when SQLite reports a busy database.
package store
