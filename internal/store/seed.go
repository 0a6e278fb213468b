// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/olegiv/ocms-xliff/internal/model"
)

// SeedSite describes a site created by Seed.
type SeedSite struct {
	ID       int64
	Name     string
	URL      string
	Language string
}

// DefaultSeedSites are the sites of a fresh installation.
var DefaultSeedSites = []SeedSite{
	{ID: 1, Name: "English", URL: "https://www.example.org", Language: "en-US"},
	{ID: 2, Name: "Deutsch", URL: "https://de.example.org", Language: "de-DE"},
}

// Seed creates the default sites and, when the first site is empty, a small
// page tree to export.
func Seed(ctx context.Context, db *sql.DB, sites []SeedSite) error {
	queries := New(db)

	for _, s := range sites {
		if err := queries.UpsertSite(ctx, UpsertSiteParams{
			ID:       s.ID,
			Name:     s.Name,
			Url:      s.URL,
			Language: s.Language,
			IsActive: 1,
		}); err != nil {
			return fmt.Errorf("seeding site %d: %w", s.ID, err)
		}
	}
	if len(sites) == 0 {
		return nil
	}

	source := sites[0].ID
	if _, err := queries.FindContentBySlug(ctx, source, "about", sql.NullInt64{}); err == nil {
		slog.Info("demo content already exists, skipping seed")
		return nil
	} else if !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("checking demo content: %w", err)
	}

	repo := NewRepository(db)
	about, err := repo.WriteContent(ctx, source, model.ContentDraft{
		Type:   model.TypePage,
		Status: model.StatusPublished,
		Title:  ptr("About"),
		Body:   ptr("<p>Who we are.</p>"),
		Meta:   map[string]string{"subtitle": "Our story"},
	})
	if err != nil {
		return fmt.Errorf("seeding about page: %w", err)
	}

	team, err := repo.WriteContent(ctx, source, model.ContentDraft{
		Type:     model.TypePage,
		Status:   model.StatusPublished,
		Title:    ptr("Team"),
		Body:     ptr(fmt.Sprintf(`<p>Read <a href="%s/about/">about us</a>.</p>`, sites[0].URL)),
		ParentID: about,
	})
	if err != nil {
		return fmt.Errorf("seeding team page: %w", err)
	}

	slog.Info("seeded demo content", "site", source, "about", about, "team", team)
	return nil
}

func ptr(s string) *string {
	return &s
}
