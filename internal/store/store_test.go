// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

// testDB creates a temporary test database with both default sites.
func testDB(t *testing.T) (*sql.DB, func()) {
	t.Helper()

	f, err := os.CreateTemp(t.TempDir(), "xliff-test-*.db")
	require.NoError(t, err)
	dbPath := f.Name()
	_ = f.Close()

	db, err := NewDB(dbPath)
	require.NoError(t, err)

	if err := Migrate(db); err != nil {
		_ = db.Close()
		t.Fatalf("Migrate: %v", err)
	}

	ctx := context.Background()
	q := New(db)
	for _, s := range DefaultSeedSites {
		require.NoError(t, q.UpsertSite(ctx, UpsertSiteParams{
			ID: s.ID, Name: s.Name, Url: s.URL, Language: s.Language, IsActive: 1,
		}))
	}

	return db, func() {
		_ = db.Close()
	}
}

func strPtr(s string) *string {
	return &s
}
