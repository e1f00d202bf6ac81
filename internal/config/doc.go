// Package config loads, normalizes, and validates gatekeeper configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type centralizes every knob the
// CLI and validator need: working directories, source object storage,
// destination topology, conformance tool settings, and notification endpoints.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths and clear validation errors. A configuration that fails
// Validate stops the process before any package is attempted; it never turns
// into a failure notification.
package config
