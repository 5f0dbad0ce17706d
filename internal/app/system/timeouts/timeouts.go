// Package timeouts provides centralized timeout values for handler and
// worker operations.
//
// These values are used with context.WithTimeout around database calls.
// Guidelines:
//   - Ping: health checks
//   - Short: single-document reads (get by ID, lookup by email)
//   - Medium: list queries, simple creates and updates
//   - Long: multi-collection writes
//   - Batch: the fan-out batch commit and the event-promotion sweep
package timeouts

import (
	"os"
	"sync"
	"time"
)

// Default timeout values (used if none are configured).
const (
	DefaultPing   = 2 * time.Second
	DefaultShort  = 5 * time.Second
	DefaultMedium = 10 * time.Second
	DefaultLong   = 30 * time.Second
	DefaultBatch  = 60 * time.Second
)

var mu sync.RWMutex

var (
	ping   = DefaultPing
	short  = DefaultShort
	medium = DefaultMedium
	long   = DefaultLong
	batch  = DefaultBatch
)

// Ping returns the timeout for health checks.
func Ping() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return ping
}

// Short returns the timeout for single-document reads.
func Short() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return short
}

// Medium returns the timeout for list queries and simple writes.
func Medium() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return medium
}

// Long returns the timeout for writes touching multiple collections.
func Long() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return long
}

// Batch returns the timeout for bulk operations such as the notification
// fan-out commit.
func Batch() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return batch
}

// ConfigureFromEnv reads timeout overrides from the environment.
// Recognized variables: TIMEOUT_PING, TIMEOUT_SHORT, TIMEOUT_MEDIUM,
// TIMEOUT_LONG, TIMEOUT_BATCH (Go duration strings, e.g. "5s", "2m").
// Invalid or unset values keep the defaults. Returns how many values
// were applied.
func ConfigureFromEnv() int {
	mu.Lock()
	defer mu.Unlock()
	configured := 0

	set := func(env string, dst *time.Duration) {
		if v := os.Getenv(env); v != "" {
			if d, err := time.ParseDuration(v); err == nil && d > 0 {
				*dst = d
				configured++
			}
		}
	}

	set("TIMEOUT_PING", &ping)
	set("TIMEOUT_SHORT", &short)
	set("TIMEOUT_MEDIUM", &medium)
	set("TIMEOUT_LONG", &long)
	set("TIMEOUT_BATCH", &batch)

	return configured
}

// Reset restores all timeouts to their default values. Useful for testing.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	ping = DefaultPing
	short = DefaultShort
	medium = DefaultMedium
	long = DefaultLong
	batch = DefaultBatch
}
