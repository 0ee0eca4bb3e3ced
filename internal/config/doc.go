// Package config handles configuration loading, parsing, and validation
// from environment variables (WORDPATH_ prefix) and an optional config.yaml.
// It provides type-safe access to settings needed by the server, the cache
// and the recommenders while keeping configuration details out of business logic.
package config
