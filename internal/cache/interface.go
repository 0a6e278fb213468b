// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package cache provides the memory and Redis caches used for permalink
// and translation lookups.
package cache

import (
	"context"
	"sync/atomic"
	"time"
)

// Cache stores raw lookup results. Implementations are safe for
// concurrent use.
type Cache interface {
	// Get returns ErrCacheMiss for unknown or expired keys.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value; a zero ttl means the cache default.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// DeleteByPrefix drops every key of a site or relation after a write.
	DeleteByPrefix(ctx context.Context, prefix string) error
	Has(ctx context.Context, key string) (bool, error)
	Close() error
}

// StatsProvider is implemented by caches that count lookups for the
// health endpoint.
type StatsProvider interface {
	Stats() Stats
}

// Stats holds lookup counters.
type Stats struct {
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	Sets    int64   `json:"sets"`
	Items   int     `json:"items,omitempty"`
	HitRate float64 `json:"hit_rate"`
}

// counters is shared by both backends.
type counters struct {
	hits, misses, sets atomic.Int64
}

func (c *counters) stats(items int) Stats {
	hits, misses := c.hits.Load(), c.misses.Load()
	s := Stats{Hits: hits, Misses: misses, Sets: c.sets.Load(), Items: items}
	if total := hits + misses; total > 0 {
		s.HitRate = float64(hits) / float64(total) * 100
	}
	return s
}

// Error is a sentinel cache error.
type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	ErrCacheMiss   Error = "cache miss"
	ErrCacheClosed Error = "cache closed"
)
