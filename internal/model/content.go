// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Content statuses
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

// Content types
const (
	TypePage = "page"
	TypePost = "post"
)

// ContentItem is a unit of translatable content read from a site.
type ContentItem struct {
	ID        int64
	SiteID    int64
	Type      string
	Status    string
	Title     string
	Slug      string
	Body      string
	Excerpt   string
	ParentID  int64 // 0 when the item has no parent
	Meta      []MetaField
	Terms     []Term
	Media     []MediaRef
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasParent returns true if the item sits below another item.
func (c *ContentItem) HasParent() bool {
	return c.ParentID != 0
}

// MetaValue returns the first value stored for key.
func (c *ContentItem) MetaValue(key string) (string, bool) {
	for _, m := range c.Meta {
		if m.Key == key {
			return m.Value, true
		}
	}
	return "", false
}

// Featured returns the featured image reference, if any.
func (c *ContentItem) Featured() *MediaRef {
	for i := range c.Media {
		if c.Media[i].Scope == MediaScopeFeatured {
			return &c.Media[i]
		}
	}
	return nil
}

// MetaField is a single key/value metadata entry. Keys may repeat.
type MetaField struct {
	Key   string
	Value string
}

// ContentDraft describes a content write. ID 0 creates a new item,
// otherwise the existing item is updated and nil fields are left untouched.
type ContentDraft struct {
	ID       int64
	Type     string
	Status   string
	Title    *string
	Body     *string
	Excerpt  *string
	ParentID int64
	Meta     map[string]string
	TermIDs  []int64
	Media    []MediaAttachment
}

// IsUpdate returns true if the draft targets an existing item.
func (d *ContentDraft) IsUpdate() bool {
	return d.ID != 0
}

// ContentPatch changes individual columns of an existing item.
type ContentPatch struct {
	ParentID *int64
	Body     *string
}
