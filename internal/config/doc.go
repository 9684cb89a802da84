// Package config loads, normalizes, and validates flackit configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. An absent config file is not an error;
// every field has a working default, so the CLI runs unconfigured.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
