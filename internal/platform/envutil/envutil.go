// Package envutil reads typed configuration values from the process
// environment, falling back to a caller-supplied default.
package envutil

import (
	"os"
	"strconv"
	"strings"
	"time"
)

func String(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func Int(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func Bool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// Millis reads key as an integer count of milliseconds and returns it as
// a time.Duration.
func Millis(key string, defMillis int) time.Duration {
	return time.Duration(Int(key, defMillis)) * time.Millisecond
}
