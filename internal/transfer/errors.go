// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package transfer

import "errors"

// Fatal errors abort the whole export or import.
var (
	ErrMissingSourceLanguage = errors.New("no source language code set")
	ErrContentNotFound       = errors.New("content not found")
	ErrMalformedDocument     = errors.New("document is not an XLIFF 2.0 file")
	ErrNoTargetSite          = errors.New("no target site available")
)

// Issue codes used for per-item errors and notices.
const (
	CodePostWriteFailed          = "post_write_failed"
	CodeMissingTranslationTarget = "missing_translation_target"
	CodeSourceContentLinks       = "source_content_links"
	CodeLinkPlaceholderLeft      = "link_placeholder_left"
	CodeTermWriteFailed          = "term_write_failed"
	CodeMediaWriteFailed         = "media_write_failed"
)

// Skip reasons for items left out of an export.
const (
	SkipTranslationNewer = "translation_newer"
	SkipNotFound         = "not_found"
	SkipExcluded         = "excluded"
	SkipFailed           = "failed"
)
