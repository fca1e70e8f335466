// Package main hosts the reelchain CLI entrypoint and command graph.
//
// The Cobra-based command tree generates puzzles locally, browses and imports
// stored puzzles, runs the HTTP daemon, reports readiness, and scaffolds
// configuration. It centralizes configuration resolution and logger setup so
// subcommands can focus on output instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
