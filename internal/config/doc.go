// Package config loads, normalizes, and validates TOML configuration for the
// review pipeline. Defaults are usable out of the box; environment variables
// backfill credentials that are absent from the file.
package config
