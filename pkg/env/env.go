// Package env reads raw environment variables for the few spots that
// run before config.Load, such as logger bootstrap.
package env

import "os"

// Get returns the variable's value, or fallback when unset or empty.
// Structured configuration goes through pkg/config; this is only for
// pre-config lookups like LOG_FORMAT.
func Get(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
