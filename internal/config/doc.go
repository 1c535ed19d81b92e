// Package config provides configuration structures and utilities for relevador.
// It defines the run settings (timeouts, politeness, limits, output), the
// YAML survey file format, the built-in multilingual keyword sets, and the
// validation that turns malformed input into a configuration error before
// any request is sent.
package config
