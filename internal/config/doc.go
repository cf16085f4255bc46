// Package config loads, normalizes, and validates squish configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, resolves XDG base directories, and honours
// environment fallbacks such as SQUISH_TEMP_DIR. The Config type centralizes
// every knob the pipeline and CLI need: optimization level, concurrency,
// filename masks, per-kind enable and metadata flags, safety copies, and
// custom stages.
//
// A Config is built once per run and then shared read-only by every job.
// Always obtain settings through this package so downstream code receives
// sanitized paths and clear validation errors.
package config
