// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"database/sql"
	"time"
)

// Site is a row of the sites table.
type Site struct {
	ID       int64
	Name     string
	Url      string
	Language string
	IsActive int64
}

// Content is a row of the contents table.
type Content struct {
	ID        int64
	SiteID    int64
	Type      string
	Status    string
	Title     string
	Slug      string
	Body      string
	Excerpt   string
	ParentID  sql.NullInt64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ContentMeta is a row of the content_meta table.
type ContentMeta struct {
	ID        int64
	ContentID int64
	MetaKey   string
	MetaValue string
}

// Term is a row of the terms table.
type Term struct {
	ID       int64
	SiteID   int64
	Taxonomy string
	Name     string
	Slug     string
}

// Medium is a row of the media table.
type Medium struct {
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

// ContentMedium is a media row joined with its attachment scope.
type ContentMedium struct {
	Medium
	Scope    string
	Position int64
}

// RelationshipMember is a row of the relationship_members table.
type RelationshipMember struct {
	RelationshipID int64
	Kind           string
	SiteID         int64
	ObjectID       int64
}

// Preset is a row of the presets table.
type Preset struct {
	ID        int64
	SiteID    int64
	Name      string
	RootIds   string
	Schedule  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Event is a row of the events table.
type Event struct {
	ID        int64
	Level     string
	Category  string
	Message   string
	Metadata  string
	CreatedAt time.Time
}
