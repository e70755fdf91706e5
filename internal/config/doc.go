// Package config loads, normalizes, and validates mixtape configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours XDG_STATE_HOME for the state
// directory. Encoder binaries, the encoder preference order, and extra or
// overridden encoding profiles can all be adjusted here; the compiled-in
// capability table and profiles live in the encoder package.
//
// Always obtain settings through this package so downstream code receives
// expanded paths, canonical log formats, and clear validation errors.
package config
