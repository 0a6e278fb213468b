// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypedCache_GetOrSet(t *testing.T) {
	c := NewTypedCache[int64](newTestMemoryCache(t, 0), time.Minute)
	ctx := context.Background()

	calls := 0
	load := func() (int64, error) {
		calls++
		return 42, nil
	}

	v, err := c.GetOrSet(ctx, "resolve:1:x", load)
	require.NoError(t, err)
	assert.Equal(t, int64(42), v)

	v, err = c.GetOrSet(ctx, "resolve:1:x", load)
	require.NoError(t, err)
	assert.Equal(t, int64(42), v)
	assert.Equal(t, 1, calls)

	require.NoError(t, c.DeleteByPrefix(ctx, "resolve:1:"))
	_, ok := c.Get(ctx, "resolve:1:x")
	assert.False(t, ok)
}

func TestTypedCache_ErrorsAreNotCached(t *testing.T) {
	c := NewTypedCache[string](newTestMemoryCache(t, 0), time.Minute)
	ctx := context.Background()
	boom := errors.New("boom")

	_, err := c.GetOrSet(ctx, "k", func() (string, error) { return "", boom })
	assert.ErrorIs(t, err, boom)

	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)
}

func TestTypedCache_Redis(t *testing.T) {
	rc, _ := newTestRedisCache(t)
	c := NewTypedCache[map[int64]int64](rc, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "links:post:1:5", map[int64]int64{2: 9}))
	got, ok := c.Get(ctx, "links:post:1:5")
	require.True(t, ok)
	assert.Equal(t, map[int64]int64{2: 9}, got)

	require.NoError(t, c.DeleteByPrefix(ctx, "links:"))
	_, ok = c.Get(ctx, "links:post:1:5")
	assert.False(t, ok)
}
