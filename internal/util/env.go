// Package util holds small helpers shared across the chatbot's components.
package util

import (
	"log/slog"
	"os"
	"strings"
)

// ParseBoolEnv reads a boolean environment variable, returning defaultValue
// when the variable is unset or unparseable. Accepted values are true/1/yes/on
// and false/0/no/off, case-insensitive, surrounding whitespace ignored.
func ParseBoolEnv(key string, defaultValue bool) bool {
	raw := os.Getenv(key)
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return defaultValue
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	}
	slog.Warn("ParseBoolEnv: invalid boolean value, using default", "key", key, "value", raw, "default", defaultValue)
	return defaultValue
}
