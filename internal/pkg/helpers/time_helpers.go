package helpers

import (
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// ParseDuration reads a configured duration such as "90s" or "1h". Empty
// values yield fallback quietly. Malformed or negative values yield fallback
// with a warning on the global logger, since this can run before the
// application logger is configured.
func ParseDuration(value string, fallback time.Duration) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil || d < 0 {
		log.Warn().Err(err).Str("value", value).Dur("fallback", fallback).Msg("Invalid duration in configuration, using fallback")
		return fallback
	}
	return d
}
