// Package config loads, normalizes, and validates pipeline configuration.
//
// Settings come from a TOML file layered over Default(). Paths may use a
// leading tilde. Every validation failure wraps errs.ErrConfiguration.
package config
