// Package timeouts centralizes per-operation deadline values for CareHub
// handlers and services.
//
// Handlers pick the tier that matches the work: Ping for connectivity
// checks, Short for single-document reads, Medium for list queries,
// Long for assignment and lifecycle operations that touch several
// collections, and Batch for CSV member imports.
//
// Values start at defaults and may be overridden at startup with
// Configure or ConfigureFromEnv.
package timeouts

import (
	"context"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultPing   = 2 * time.Second
	DefaultShort  = 5 * time.Second
	DefaultMedium = 10 * time.Second
	DefaultLong   = 30 * time.Second
	DefaultBatch  = 60 * time.Second
)

var (
	mu     sync.RWMutex
	ping   = DefaultPing
	short  = DefaultShort
	medium = DefaultMedium
	long   = DefaultLong
	batch  = DefaultBatch
)

// Ping returns the deadline for connectivity checks (health endpoint).
func Ping() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return ping
}

// Short returns the deadline for single-document reads.
func Short() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return short
}

// Medium returns the deadline for list queries and simple writes.
func Medium() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return medium
}

// Long returns the deadline for multi-collection operations such as
// case assignment and form finalization.
func Long() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return long
}

// Batch returns the deadline for bulk work such as member CSV imports.
func Batch() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return batch
}

// Config holds timeout overrides. Zero values keep the current setting.
type Config struct {
	Ping   time.Duration
	Short  time.Duration
	Medium time.Duration
	Long   time.Duration
	Batch  time.Duration
}

// Configure applies overrides. Call during startup, before handlers run.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	if cfg.Ping > 0 {
		ping = cfg.Ping
	}
	if cfg.Short > 0 {
		short = cfg.Short
	}
	if cfg.Medium > 0 {
		medium = cfg.Medium
	}
	if cfg.Long > 0 {
		long = cfg.Long
	}
	if cfg.Batch > 0 {
		batch = cfg.Batch
	}
}

// ConfigureFromEnv reads overrides from CAREHUB_TIMEOUT_PING, _SHORT,
// _MEDIUM, _LONG, and _BATCH (Go duration strings, e.g. "5s", "2m").
// Unset or invalid values keep the current setting. Returns how many
// overrides were applied.
func ConfigureFromEnv() int {
	cfg := Config{}
	applied := 0
	for _, v := range []struct {
		env string
		dst *time.Duration
	}{
		{"CAREHUB_TIMEOUT_PING", &cfg.Ping},
		{"CAREHUB_TIMEOUT_SHORT", &cfg.Short},
		{"CAREHUB_TIMEOUT_MEDIUM", &cfg.Medium},
		{"CAREHUB_TIMEOUT_LONG", &cfg.Long},
		{"CAREHUB_TIMEOUT_BATCH", &cfg.Batch},
	} {
		raw := os.Getenv(v.env)
		if raw == "" {
			continue
		}
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			*v.dst = d
			applied++
		}
	}
	Configure(cfg)
	return applied
}

// WithTimeout wraps context.WithTimeout and logs a warning when the
// returned cancel func observes a deadline-exceeded, naming the
// operation so slow paths show up in the logs.
func WithTimeout(parent context.Context, timeout time.Duration, log *zap.Logger, operation string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	return ctx, func() {
		if ctx.Err() == context.DeadlineExceeded && log != nil {
			log.Warn("operation timed out",
				zap.String("operation", operation),
				zap.Duration("timeout", timeout),
			)
		}
		cancel()
	}
}
