// Package preflight provides readiness checks for TMDB and the filesystem
// paths that reelchain depends on.
//
// The daemon runs RunAll at startup and logs any failures. The CLI "reelchain
// status" command renders the same results as colored status lines.
package preflight
