// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package transfer

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Namespace is the XLIFF 2.0 document namespace.
const Namespace = "urn:oasis:names:tc:xliff:document:2.0"

// Version is the XLIFF version written to the root element.
const Version = "2.0"

// File block attributes.
const (
	AttrPostType             = "data-post-type"
	AttrSiteID               = "data-site-id"
	AttrTargetSiteID         = "data-target-site-id"
	AttrPostStatus           = "data-post-status"
	AttrTranslatedPost       = "data-translated-post"
	AttrTranslatedParentPost = "data-translated-parent-post"
	AttrParentPost           = "data-parent-post"
	AttrPostThumbnail        = "data-post-thumbnail"
	attrTaxonomyPrefix       = "data-taxonomy-"
	attrTaxonomyInfix        = "-term_id-"
)

// Document is the root <xliff> element. XMLName carries no tag so that
// the namespace set by Marshal is written and any root is accepted by
// ParseDocument for its own checks.
type Document struct {
	XMLName xml.Name
	Version string `xml:"version,attr"`
	SrcLang string `xml:"srcLang,attr"`
	TrgLang string `xml:"trgLang,attr,omitempty"`
	Files   []File `xml:"file"`
}

// File is one exported content item.
type File struct {
	ID    string     `xml:"id,attr"`
	Attrs []xml.Attr `xml:",any,attr"`
	Units []Unit     `xml:"unit"`
}

// Unit carries one translatable field.
type Unit struct {
	ID     string `xml:"id,attr"`
	Target Target `xml:"segment>target"`
}

// Target holds the field text, always written as CDATA.
type Target struct {
	Text string `xml:",cdata"`
}

// Attr returns the value of a file attribute.
func (f *File) Attr(name string) (string, bool) {
	for _, a := range f.Attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

// IntAttr returns a numeric file attribute, 0 when missing or invalid.
func (f *File) IntAttr(name string) int64 {
	v, ok := f.Attr(name)
	if !ok {
		return 0
	}
	n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// SetAttr appends an attribute.
func (f *File) SetAttr(name, value string) {
	f.Attrs = append(f.Attrs, xml.Attr{Name: xml.Name{Local: name}, Value: value})
}

// AddUnit appends a unit unless text is empty.
func (f *File) AddUnit(field Field, text string) {
	if text == "" {
		return
	}
	f.Units = append(f.Units, Unit{ID: field.UnitID(), Target: Target{Text: text}})
}

// TaxonomyAttr formats the attribute naming an already translated term.
func TaxonomyAttr(taxonomy string, targetTermID int64) string {
	return attrTaxonomyPrefix + taxonomy + attrTaxonomyInfix + strconv.FormatInt(targetTermID, 10)
}

// TranslatedTerms returns the target term IDs named by taxonomy attributes.
func (f *File) TranslatedTerms() []int64 {
	var ids []int64
	for _, a := range f.Attrs {
		name := a.Name.Local
		if !strings.HasPrefix(name, attrTaxonomyPrefix) {
			continue
		}
		idx := strings.LastIndex(name, attrTaxonomyInfix)
		if idx < len(attrTaxonomyPrefix) {
			continue
		}
		id, err := strconv.ParseInt(strings.TrimSpace(a.Value), 10, 64)
		if err != nil || id <= 0 {
			id, err = strconv.ParseInt(name[idx+len(attrTaxonomyInfix):], 10, 64)
			if err != nil || id <= 0 {
				continue
			}
		}
		ids = append(ids, id)
	}
	return ids
}

// Marshal renders the document with an XML header and indentation.
func (d *Document) Marshal() ([]byte, error) {
	out := *d
	out.XMLName = xml.Name{Space: Namespace, Local: "xliff"}
	out.Version = Version

	data, err := xml.MarshalIndent(&out, "", "  ")
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Grow(len(xml.Header) + len(data) + 1)
	buf.WriteString(xml.Header)
	buf.Write(data)
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

var targetPattern = regexp.MustCompile(`(?s)<target(\s[^>]*)?>(.*?)</target>`)

// wrapTargets puts every target payload that is not already CDATA into a
// CDATA section so that markup inside translations survives parsing.
func wrapTargets(data []byte) []byte {
	return targetPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		m := targetPattern.FindSubmatch(match)
		attrs, payload := m[1], m[2]
		if bytes.HasPrefix(bytes.TrimSpace(payload), []byte("<![CDATA[")) {
			return match
		}

		var buf bytes.Buffer
		buf.WriteString("<target")
		buf.Write(attrs)
		buf.WriteString("><![CDATA[")
		buf.Write(bytes.ReplaceAll(payload, []byte("]]>"), []byte("]]]]><![CDATA[>")))
		buf.WriteString("]]></target>")
		return buf.Bytes()
	})
}

// ParseDocument parses an XLIFF document. Any parse failure or a root
// element other than <xliff> yields ErrMalformedDocument.
func ParseDocument(data []byte) (*Document, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrMalformedDocument)
	}

	var doc Document
	if err := xml.Unmarshal(wrapTargets(data), &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	if doc.XMLName.Local != "xliff" {
		return nil, fmt.Errorf("%w: unexpected root <%s>", ErrMalformedDocument, doc.XMLName.Local)
	}
	if doc.XMLName.Space != "" && doc.XMLName.Space != Namespace {
		return nil, fmt.Errorf("%w: unexpected namespace %q", ErrMalformedDocument, doc.XMLName.Space)
	}

	for i := range doc.Files {
		if err := validateFile(&doc.Files[i]); err != nil {
			return nil, fmt.Errorf("%w: file %d: %v", ErrMalformedDocument, i+1, err)
		}
	}
	return &doc, nil
}

// validateFile checks the attributes every file block must carry.
func validateFile(f *File) error {
	id, err := strconv.ParseInt(strings.TrimSpace(f.ID), 10, 64)
	if err != nil || id <= 0 {
		return fmt.Errorf("invalid id %q", f.ID)
	}
	for _, name := range []string{AttrSiteID, AttrTargetSiteID} {
		if f.IntAttr(name) <= 0 {
			return fmt.Errorf("missing or invalid %s", name)
		}
	}
	if f.IntAttr(AttrSiteID) == f.IntAttr(AttrTargetSiteID) {
		return fmt.Errorf("%s equals %s", AttrSiteID, AttrTargetSiteID)
	}
	return nil
}

// SourceID returns the numeric file id.
func (f *File) SourceID() int64 {
	id, _ := strconv.ParseInt(strings.TrimSpace(f.ID), 10, 64)
	return id
}
