// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSiteLanguageCodeAndDomain(t *testing.T) {
	tests := []struct {
		site       Site
		wantCode   string
		wantDomain string
	}{
		{Site{URL: "https://www.example.org", Language: "en-US"}, "en", "www.example.org"},
		{Site{URL: "https://de.example.org:8443/sub", Language: "DE"}, "de", "de.example.org"},
		{Site{URL: "://broken", Language: "x"}, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.site.URL, func(t *testing.T) {
			assert.Equal(t, tt.wantCode, tt.site.LanguageCode())
			assert.Equal(t, tt.wantDomain, tt.site.Domain())
		})
	}
}

func TestContentItemHelpers(t *testing.T) {
	item := ContentItem{
		ParentID: 4,
		Meta: []MetaField{
			{Key: "subtitle", Value: "first"},
			{Key: "subtitle", Value: "second"},
		},
		Media: []MediaRef{
			{Scope: MediaScopeAttached, Media: Media{ID: 3}},
			{Scope: MediaScopeFeatured, Media: Media{ID: 8}},
		},
	}

	assert.True(t, item.HasParent())

	v, ok := item.MetaValue("subtitle")
	assert.True(t, ok)
	assert.Equal(t, "first", v)
	_, ok = item.MetaValue("missing")
	assert.False(t, ok)

	featured := item.Featured()
	require.NotNil(t, featured)
	assert.Equal(t, int64(8), featured.ID)

	assert.Nil(t, (&ContentItem{}).Featured())
	assert.False(t, (&ContentItem{}).HasParent())
}

func TestRelationKindValid(t *testing.T) {
	assert.True(t, RelationPost.Valid())
	assert.True(t, RelationTerm.Valid())
	assert.True(t, RelationMedia.Valid())
	assert.False(t, RelationKind("menu").Valid())
}

func TestPresetIsScheduled(t *testing.T) {
	assert.False(t, (&Preset{}).IsScheduled())
	assert.True(t, (&Preset{Schedule: "@daily"}).IsScheduled())
	assert.True(t, (&ContentDraft{ID: 2}).IsUpdate())
}
