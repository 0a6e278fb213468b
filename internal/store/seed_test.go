// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeed(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, Seed(ctx, db, DefaultSeedSites))

	repo := NewRepository(db)
	about, err := repo.ResolveURL(ctx, 1, "https://www.example.org/about/")
	require.NoError(t, err)
	require.NotZero(t, about)

	team, err := repo.ResolveURL(ctx, 1, "https://www.example.org/about/team/")
	require.NoError(t, err)
	require.NotZero(t, team)

	// Seeding twice does not duplicate content.
	require.NoError(t, Seed(ctx, db, DefaultSeedSites))
	ids, err := repo.ChildIDs(ctx, 1, about)
	require.NoError(t, err)
	assert.Equal(t, []int64{team}, ids)
}
