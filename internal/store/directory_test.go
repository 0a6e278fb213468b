// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/ocms-xliff/internal/model"
)

func TestDirectorySites(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	sites, err := NewDirectory(db).Sites(context.Background())
	require.NoError(t, err)
	require.Len(t, sites, 2)
	assert.Equal(t, int64(1), sites[0].ID)
	assert.Equal(t, "en", sites[0].LanguageCode())
	assert.Equal(t, "de", sites[1].LanguageCode())
	assert.Equal(t, "de.example.org", sites[1].Domain())
}

func TestDirectoryCreateLinkAndTranslations(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	dir := NewDirectory(db)
	ctx := context.Background()

	empty, err := dir.Translations(ctx, 1, 10, model.RelationPost)
	require.NoError(t, err)
	assert.Empty(t, empty)

	require.NoError(t, dir.CreateLink(ctx, model.RelationPost, map[int64]int64{1: 10, 2: 20}))

	fromSource, err := dir.Translations(ctx, 1, 10, model.RelationPost)
	require.NoError(t, err)
	assert.Equal(t, map[int64]int64{2: 20}, fromSource)

	fromTarget, err := dir.Translations(ctx, 2, 20, model.RelationPost)
	require.NoError(t, err)
	assert.Equal(t, map[int64]int64{1: 10}, fromTarget)

	terms, err := dir.Translations(ctx, 1, 10, model.RelationTerm)
	require.NoError(t, err)
	assert.Empty(t, terms, "kinds are separate object spaces")
}

func TestDirectoryCreateLinkMerges(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	dir := NewDirectory(db)
	ctx := context.Background()

	_, err := db.ExecContext(ctx, `INSERT INTO sites (id, name, url, language, is_active) VALUES (3, 'Français', 'https://fr.example.org', 'fr-FR', 1)`)
	require.NoError(t, err)

	require.NoError(t, dir.CreateLink(ctx, model.RelationPost, map[int64]int64{1: 10, 2: 20}))
	require.NoError(t, dir.CreateLink(ctx, model.RelationPost, map[int64]int64{1: 10, 3: 30}))

	got, err := dir.Translations(ctx, 3, 30, model.RelationPost)
	require.NoError(t, err)
	assert.Equal(t, map[int64]int64{1: 10, 2: 20}, got)

	// Re-linking site 2 to another object replaces the member.
	require.NoError(t, dir.CreateLink(ctx, model.RelationPost, map[int64]int64{1: 10, 2: 21}))
	got, err = dir.Translations(ctx, 1, 10, model.RelationPost)
	require.NoError(t, err)
	assert.Equal(t, map[int64]int64{2: 21, 3: 30}, got)

	orphan, err := dir.Translations(ctx, 2, 20, model.RelationPost)
	require.NoError(t, err)
	assert.Empty(t, orphan)
}

func TestDirectoryCreateLinkRejectsUnknownKind(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	err := NewDirectory(db).CreateLink(context.Background(), model.RelationKind("user"), map[int64]int64{1: 1, 2: 2})
	assert.Error(t, err)
}
