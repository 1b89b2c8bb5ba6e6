// Package config loads the runtime configuration from a TOML file,
// overlaying defaults so a missing or partial file still yields a
// fully usable configuration.
package config
