// Package puzzle defines the client contract for generated puzzles and the
// normalizer that turns raw movie payloads, stored rows, and archive files
// into that contract.
//
// Normalization is total and idempotent: every string is trimmed and NFC
// normalized, slices are never nil, and feeding a normalized puzzle back in
// yields an equal value.
package puzzle
