// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"net/url"
	"strings"
)

// Site is one language site of the network.
type Site struct {
	ID       int64
	Name     string
	URL      string // base URL without trailing slash
	Language string // e.g. "en-US"
	IsActive bool
}

// LanguageCode returns the two-letter language code of the site.
func (s *Site) LanguageCode() string {
	if len(s.Language) < 2 {
		return ""
	}
	return strings.ToLower(s.Language[:2])
}

// Domain returns the host part of the site URL.
func (s *Site) Domain() string {
	u, err := url.Parse(s.URL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
