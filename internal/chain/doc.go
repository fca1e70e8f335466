// Package chain builds six-movie puzzles in which each movie shares a cast
// member with the one before it.
//
// Builder seeds the chain from a random release year, then repeatedly looks
// up movies featuring the previous entry's key person, falling back through
// the rest of that entry's cast. Randomness flows through Chooser and time
// through an injectable clock so tests can pin every decision.
package chain
