// Package config loads, normalizes, and validates reelchain configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// TMDB_API_TOKEN and LOWEST_YEAR. Field-level rules are declared as validator
// tags on the section structs; cross-field rules live in validate.go.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
