// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/olegiv/ocms-xliff/internal/cache"
	"github.com/olegiv/ocms-xliff/internal/i18n"
	"github.com/olegiv/ocms-xliff/internal/model"
	"github.com/olegiv/ocms-xliff/internal/store"
	"github.com/olegiv/ocms-xliff/internal/testutil"
	"github.com/olegiv/ocms-xliff/internal/transfer"
)

var testNow = time.Date(2026, 10, 18, 9, 5, 0, 0, time.UTC)

type testEnv struct {
	db    *sql.DB
	repo  *store.Repository
	cache *cache.MemoryCache
	svc   *XLIFFService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	require.NoError(t, i18n.Init(testutil.TestLoggerSilent()))

	db, cleanup := testutil.TestDBWithSites(t)
	t.Cleanup(cleanup)

	c := cache.NewMemoryCache(cache.MemoryCacheOptions{DefaultTTL: time.Minute})
	t.Cleanup(func() { _ = c.Close() })

	opts := transfer.DefaultExportOptions()
	opts.Now = func() time.Time { return testNow }

	return &testEnv{
		db:    db,
		repo:  store.NewRepository(db),
		cache: c,
		svc:   NewStoreService(db, c, time.Minute, testutil.TestLoggerSilent(), opts),
	}
}

func (e *testEnv) page(t *testing.T, title string, parentID int64, body string) int64 {
	t.Helper()
	id, err := e.repo.WriteContent(context.Background(), 1, model.ContentDraft{
		Type:     model.TypePage,
		Status:   model.StatusPublished,
		Title:    &title,
		Body:     &body,
		ParentID: parentID,
	})
	require.NoError(t, err)
	return id
}
