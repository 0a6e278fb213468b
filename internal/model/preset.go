// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Preset is a saved root-page selection used to pre-select a page tree
// for bulk export. Schedule is an optional cron expression.
type Preset struct {
	ID        int64
	SiteID    int64
	Name      string
	RootIDs   []int64
	Schedule  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsScheduled returns true if the preset is exported periodically.
func (p *Preset) IsScheduled() bool {
	return p.Schedule != ""
}
