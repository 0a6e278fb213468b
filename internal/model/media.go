// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Media scopes describe how an image is related to a content item.
const (
	MediaScopeFeatured = "post_thumbnail"
	MediaScopeAttached = "attached"
	MediaScopeGallery  = "gallery"
)

// Media represents an image in a site's media library together with
// its translatable descriptors.
type Media struct {
	ID          int64
	SiteID      int64
	Filename    string
	AltText     string
	Caption     string
	Title       string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// MediaRef is a media item as seen from a content item.
type MediaRef struct {
	Scope string
	Media
}

// MediaAttachment links a media item to content on write.
type MediaAttachment struct {
	Scope   string
	MediaID int64
}
