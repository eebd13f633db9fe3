// Package config loads, normalizes, and validates the TOML configuration
// that drives the skald pipeline. Defaults are always applied first so a
// missing file still yields a runnable configuration (minus the LLM API key).
package config
