package config

import (
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/subosito/gotenv"
)

func LoadEnv(env string) {
	envFile := "config/envs/.env." + env
	if err := gotenv.Load(envFile); err != nil {
		slog.Warn("No .env file found, using OS environment")
	}
}

// GetString returns the value of key or fallback when unset or empty.
func GetString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// GetInt returns the integer value of key or fallback when unset or invalid.
func GetInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("Invalid integer in environment, using fallback",
			slog.String("key", key),
			slog.String("value", v))
		return fallback
	}
	return n
}

// GetDuration reads key as a number of seconds.
func GetDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("Invalid duration in environment, using fallback",
			slog.String("key", key),
			slog.String("value", v))
		return fallback
	}
	return time.Duration(n) * time.Second
}

// GeminiAPIKeys collects every GOOGLE_API_KEY_<N> value, ordered by variable
// name, so the cleaning stage can rotate across project keys.
func GeminiAPIKeys() []string {
	type kv struct{ name, value string }
	var found []kv
	for _, entry := range os.Environ() {
		name, value, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		if strings.HasPrefix(name, "GOOGLE_API_KEY_") && strings.TrimSpace(value) != "" {
			found = append(found, kv{name, value})
		}
	}
	sort.Slice(found, func(i, j int) bool { return found[i].name < found[j].name })

	keys := make([]string, 0, len(found))
	for _, f := range found {
		keys = append(keys, f.value)
	}
	return keys
}
