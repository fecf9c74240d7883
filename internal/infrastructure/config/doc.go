// Package config loads playground configuration from environment variables
// using envconfig. Every field has a default, so an empty environment yields
// the same values as Default.
package config
