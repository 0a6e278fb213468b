// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package transfer

import (
	"strconv"
	"strings"

	"github.com/olegiv/ocms-xliff/internal/model"
)

// FieldKind tells which part of a content item a unit carries.
type FieldKind int

// Field kinds
const (
	FieldUnknown FieldKind = iota
	FieldTitle
	FieldBody
	FieldExcerpt
	FieldMeta
	FieldTerm
	FieldMedia
)

// Translatable media descriptors, in unit order.
const (
	MediaAltText     = "alt_text"
	MediaCaption     = "caption"
	MediaTitle       = "title"
	MediaDescription = "description"
)

var mediaFields = []string{MediaAltText, MediaCaption, MediaTitle, MediaDescription}

const (
	metaPrefix      = "_meta_"
	termPrefix      = "_term_"
	termInfix       = "_translation_term_id_"
	thumbnailPrefix = "post_thumbnail_"
	attachedPrefix  = "attached_img_"
	galleryPrefix   = "gallery_img_"
)

// Field is a parsed unit id.
type Field struct {
	Kind FieldKind

	// Key is the meta key for FieldMeta.
	Key string

	// Taxonomy is set for FieldTerm.
	Taxonomy string

	// ID is the source term ID for FieldTerm and the source media ID for
	// attached and gallery images. It is 0 for the featured image.
	ID int64

	// Scope and Attr are set for FieldMedia.
	Scope string
	Attr  string
}

// TitleField, BodyField and ExcerptField are the fixed content fields.
var (
	TitleField   = Field{Kind: FieldTitle}
	BodyField    = Field{Kind: FieldBody}
	ExcerptField = Field{Kind: FieldExcerpt}
)

// MetaField returns the field for a meta key.
func MetaField(key string) Field {
	return Field{Kind: FieldMeta, Key: key}
}

// TermField returns the field for a term without a translation.
func TermField(taxonomy string, id int64) Field {
	return Field{Kind: FieldTerm, Taxonomy: taxonomy, ID: id}
}

// MediaField returns the field for one descriptor of an image.
func MediaField(scope string, id int64, attr string) Field {
	if scope == model.MediaScopeFeatured {
		id = 0
	}
	return Field{Kind: FieldMedia, Scope: scope, ID: id, Attr: attr}
}

// UnitID formats the field as a unit id.
func (f Field) UnitID() string {
	switch f.Kind {
	case FieldTitle:
		return "title"
	case FieldBody:
		return "body"
	case FieldExcerpt:
		return "excerpt"
	case FieldMeta:
		return metaPrefix + f.Key
	case FieldTerm:
		return termPrefix + f.Taxonomy + termInfix + strconv.FormatInt(f.ID, 10)
	case FieldMedia:
		switch f.Scope {
		case model.MediaScopeFeatured:
			return thumbnailPrefix + f.Attr
		case model.MediaScopeAttached:
			return attachedPrefix + strconv.FormatInt(f.ID, 10) + "_" + f.Attr
		case model.MediaScopeGallery:
			return galleryPrefix + strconv.FormatInt(f.ID, 10) + "_" + f.Attr
		}
	}
	return ""
}

// ParseField parses a unit id. Unknown ids yield a FieldUnknown field.
func ParseField(unitID string) Field {
	switch unitID {
	case "title":
		return TitleField
	case "body":
		return BodyField
	case "excerpt":
		return ExcerptField
	}

	switch {
	case strings.HasPrefix(unitID, metaPrefix):
		key := strings.TrimPrefix(unitID, metaPrefix)
		if key != "" {
			return MetaField(key)
		}
	case strings.HasPrefix(unitID, termPrefix):
		rest := strings.TrimPrefix(unitID, termPrefix)
		idx := strings.LastIndex(rest, termInfix)
		if idx <= 0 {
			break
		}
		id, err := strconv.ParseInt(rest[idx+len(termInfix):], 10, 64)
		if err != nil || id <= 0 {
			break
		}
		return TermField(rest[:idx], id)
	case strings.HasPrefix(unitID, thumbnailPrefix):
		if attr := strings.TrimPrefix(unitID, thumbnailPrefix); isMediaAttr(attr) {
			return MediaField(model.MediaScopeFeatured, 0, attr)
		}
	case strings.HasPrefix(unitID, attachedPrefix):
		return parseImageField(model.MediaScopeAttached, strings.TrimPrefix(unitID, attachedPrefix))
	case strings.HasPrefix(unitID, galleryPrefix):
		return parseImageField(model.MediaScopeGallery, strings.TrimPrefix(unitID, galleryPrefix))
	}
	return Field{Kind: FieldUnknown}
}

// parseImageField parses "<id>_<attr>".
func parseImageField(scope, rest string) Field {
	idPart, attr, ok := strings.Cut(rest, "_")
	if !ok || !isMediaAttr(attr) {
		return Field{Kind: FieldUnknown}
	}
	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil || id <= 0 {
		return Field{Kind: FieldUnknown}
	}
	return MediaField(scope, id, attr)
}

func isMediaAttr(attr string) bool {
	for _, a := range mediaFields {
		if a == attr {
			return true
		}
	}
	return false
}

// mediaAttr returns one descriptor of m.
func mediaAttr(m *model.Media, attr string) string {
	switch attr {
	case MediaAltText:
		return m.AltText
	case MediaCaption:
		return m.Caption
	case MediaTitle:
		return m.Title
	case MediaDescription:
		return m.Description
	}
	return ""
}

// setMediaAttr changes one descriptor of m.
func setMediaAttr(m *model.Media, attr, value string) {
	switch attr {
	case MediaAltText:
		m.AltText = value
	case MediaCaption:
		m.Caption = value
	case MediaTitle:
		m.Title = value
	case MediaDescription:
		m.Description = value
	}
}
