// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package transfer

import (
	"time"

	"github.com/olegiv/ocms-xliff/internal/model"
	"github.com/olegiv/ocms-xliff/internal/util"
)

// Filename returns "<name or domain>_<ddmmyyyy>_<hhmm>.xml". A preset name
// is slugified; without one the site's domain is used.
func Filename(name string, site *model.Site, now time.Time) string {
	prefix := util.Slugify(name)
	if prefix == "" {
		prefix = site.Domain()
	}
	if prefix == "" {
		prefix = "xliff"
	}
	return util.SanitizeFilename(prefix + "_" + now.Format("02012006") + "_" + now.Format("1504") + ".xml")
}
