// Package config resolves settings for the pcmpipe binaries from built-in
// defaults, an optional TOML file and command line flags, in that order.
package config
