// Package services defines shared utilities consumed by the puzzle core, the
// metadata client, and the outer collaborators.
//
// Key responsibilities:
//   - Context helpers that stamp request and generation identifiers for
//     logging and tracing.
//   - ExternalServiceError, the tagged error every generation failure is
//     reported as, plus KindOf for classification at transport boundaries.
//   - Sentinel markers and the Wrap helper for failures outside generation
//     (configuration, storage, validation).
//
// Use these helpers when wiring new components so error classification and
// observability stay uniform across the CLI and the daemon.
package services
