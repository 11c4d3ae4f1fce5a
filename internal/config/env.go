// Copyright (c) 2026 mikempw
// SPDX-License-Identifier: MIT

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mikempw/failover/internal/log"
)

// parseEnv is the one lookup primitive behind every Parse* helper: an
// unset or empty variable yields the default, an unparseable one logs a
// warning and yields the default, and every choice is logged with its
// source so an operator can reconstruct the effective configuration from
// debug output alone.
func parseEnv[T any](key string, def T, parse func(string) (T, error)) T {
	logger := log.WithComponent("config")

	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		logger.Debug().Str("key", key).Str("source", "default").
			Interface("value", def).Msg("config value")
		return def
	}

	v, err := parse(raw)
	if err != nil {
		logger.Warn().Str("key", key).Str("raw", raw).
			Interface("default", def).Msg("unparseable config value, using default")
		return def
	}

	logger.Debug().Str("key", key).Str("source", "environment").
		Interface("value", v).Msg("config value")
	return v
}

// isSecretKey guesses whether a key's value must never reach the log.
func isSecretKey(key string) bool {
	k := strings.ToLower(key)
	return strings.Contains(k, "token") || strings.Contains(k, "password") || strings.Contains(k, "secret")
}

// ParseString reads a string variable. Secret-shaped keys log only that
// they were set, never the value.
func ParseString(key, def string) string {
	if !isSecretKey(key) {
		return parseEnv(key, def, func(s string) (string, error) { return s, nil })
	}

	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return def
	}
	logger := log.WithComponent("config")
	logger.Debug().Str("key", key).Bool("sensitive", true).
		Str("source", "environment").Msg("config value")
	return raw
}

// ParseInt reads an integer variable.
func ParseInt(key string, def int) int {
	return parseEnv(key, def, strconv.Atoi)
}

// ParseFloat reads a float64 variable.
func ParseFloat(key string, def float64) float64 {
	return parseEnv(key, def, func(s string) (float64, error) {
		return strconv.ParseFloat(s, 64)
	})
}

// ParseDuration reads a duration variable in Go syntax ("5s", "1m30s").
func ParseDuration(key string, def time.Duration) time.Duration {
	return parseEnv(key, def, time.ParseDuration)
}

// ParseSeconds reads a duration variable, accepting either a bare integer
// number of seconds ("60", the documented form for the lease and interval
// keys) or Go duration syntax ("60s", "1m").
func ParseSeconds(key string, def time.Duration) time.Duration {
	return parseEnv(key, def, func(s string) (time.Duration, error) {
		if secs, err := strconv.Atoi(s); err == nil {
			return time.Duration(secs) * time.Second, nil
		}
		return time.ParseDuration(s)
	})
}

// ParseBool reads a boolean variable, accepting true/false, 1/0 and
// yes/no in any case.
func ParseBool(key string, def bool) bool {
	return parseEnv(key, def, func(s string) (bool, error) {
		switch strings.ToLower(s) {
		case "true", "1", "yes":
			return true, nil
		case "false", "0", "no":
			return false, nil
		}
		return false, fmt.Errorf("not a boolean: %q", s)
	})
}
