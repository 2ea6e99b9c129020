// Package config loads, validates, and defaults the TOML configuration for
// the paperweights pipeline. Paths are expanded (including ~), secrets may be
// supplied via environment variables, and a sample configuration can be
// materialized with CreateSample.
package config
