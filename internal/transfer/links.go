// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package transfer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/olegiv/ocms-xliff/internal/model"
)

// Placeholder token names.
const (
	tokenPostID = "hohenheim_url_post_id"
	tokenQuery  = "hohenheim_url_query"
	tokenHash   = "hohenheim_url_hash"
)

var placeholderPattern = regexp.MustCompile(
	`\{\{` + tokenPostID + `:(\d+)\}\}` +
		`(?:\{\{` + tokenQuery + `:([^}]*)\}\})?` +
		`(?:\{\{` + tokenHash + `:([^}]*)\}\})?`,
)

var idTokenPattern = regexp.MustCompile(`\{\{` + tokenPostID + `:\d+\}\}`)

// linkRef is a resolved internal link.
type linkRef struct {
	ID       int64
	Query    string
	Fragment string
}

// Placeholder returns the token group standing in for the link.
func (r linkRef) Placeholder() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "{{%s:%d}}", tokenPostID, r.ID)
	if r.Query != "" {
		fmt.Fprintf(&sb, "{{%s:%s}}", tokenQuery, r.Query)
	}
	if r.Fragment != "" {
		fmt.Fprintf(&sb, "{{%s:%s}}", tokenHash, r.Fragment)
	}
	return sb.String()
}

// LinkCodec turns internal links into placeholders on export and back into
// target-site links on import.
type LinkCodec struct {
	repo   Repository
	dir    Directory
	logger *slog.Logger

	mu       sync.Mutex
	patterns map[string]*regexp.Regexp
}

// NewLinkCodec creates a LinkCodec.
func NewLinkCodec(repo Repository, dir Directory, logger *slog.Logger) *LinkCodec {
	return &LinkCodec{
		repo:     repo,
		dir:      dir,
		logger:   logger,
		patterns: make(map[string]*regexp.Regexp),
	}
}

// hrefPattern matches href attributes pointing into siteURL.
func (c *LinkCodec) hrefPattern(siteURL string) *regexp.Regexp {
	c.mu.Lock()
	defer c.mu.Unlock()

	if re, ok := c.patterns[siteURL]; ok {
		return re
	}
	re := regexp.MustCompile(`href="(` + regexp.QuoteMeta(siteURL) + `(?:[/?#][^"]*)?)"`)
	c.patterns[siteURL] = re
	return re
}

// Encode replaces href values that resolve to content of the site with
// placeholder tokens. Unresolvable URLs are left untouched.
func (c *LinkCodec) Encode(ctx context.Context, site *model.Site, body string) (string, error) {
	if site.URL == "" || !strings.Contains(body, site.URL) {
		return body, nil
	}

	re := c.hrefPattern(site.URL)
	refs := make(map[string]*linkRef)
	for _, m := range re.FindAllStringSubmatch(body, -1) {
		rawURL := m[1]
		if _, seen := refs[rawURL]; seen {
			continue
		}
		id, err := c.repo.ResolveURL(ctx, site.ID, rawURL)
		if err != nil {
			return "", fmt.Errorf("resolving %s: %w", rawURL, err)
		}
		if id == 0 {
			refs[rawURL] = nil
			continue
		}
		ref := splitURL(rawURL)
		ref.ID = id
		refs[rawURL] = &ref
	}

	return re.ReplaceAllStringFunc(body, func(match string) string {
		rawURL := match[len(`href="`) : len(match)-1]
		ref := refs[rawURL]
		if ref == nil {
			return match
		}
		return `href="` + ref.Placeholder() + `"`
	}), nil
}

// splitURL extracts query and fragment from a URL without normalizing it.
func splitURL(rawURL string) linkRef {
	var ref linkRef
	rest := rawURL
	if before, frag, ok := strings.Cut(rest, "#"); ok {
		rest, ref.Fragment = before, frag
	}
	if _, query, ok := strings.Cut(rest, "?"); ok {
		ref.Query = query
	}
	return ref
}

// Decode replaces placeholder groups with links on the target site. Links
// whose item has no translation yet point at the source site and are
// recorded as pending against the importing item. Items that cannot be
// found at all keep their tokens.
func (c *LinkCodec) Decode(ctx context.Context, b *Batch, ref itemRef, body string) (string, error) {
	matches := placeholderPattern.FindAllStringSubmatch(body, -1)
	if len(matches) == 0 {
		return body, nil
	}

	bases := make(map[int64]string)
	for _, m := range matches {
		id, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			continue
		}
		if _, seen := bases[id]; seen {
			continue
		}

		link, err := c.targetLink(ctx, ref, id)
		if err != nil {
			return "", err
		}
		if link != "" {
			bases[id] = link
			continue
		}

		fallback, err := c.repo.Permalink(ctx, ref.SourceSite, id)
		switch {
		case errors.Is(err, ErrContentNotFound):
			c.logger.Debug("link target missing on source site", "batch", b.ID, "file", ref.SourceID, "linked", id)
			bases[id] = ""
			continue
		case err != nil:
			return "", fmt.Errorf("permalink for %d: %w", id, err)
		}
		bases[id] = fallback
		b.addPending(ref, PendingLink{LinkedID: id, Fallback: fallback})
	}

	return placeholderPattern.ReplaceAllStringFunc(body, func(match string) string {
		m := placeholderPattern.FindStringSubmatch(match)
		id, _ := strconv.ParseInt(m[1], 10, 64)
		base := bases[id]
		if base == "" {
			return match
		}
		if m[2] != "" {
			base += "?" + m[2]
		}
		if m[3] != "" {
			base += "#" + m[3]
		}
		return base
	}), nil
}

// targetLink returns the permalink of the translation of a source item on
// the target site, or "" when no translation exists.
func (c *LinkCodec) targetLink(ctx context.Context, ref itemRef, linkedID int64) (string, error) {
	translations, err := c.dir.Translations(ctx, ref.SourceSite, linkedID, model.RelationPost)
	if err != nil {
		return "", fmt.Errorf("translations of %d: %w", linkedID, err)
	}
	targetID, ok := translations[ref.TargetSite]
	if !ok {
		return "", nil
	}
	link, err := c.repo.Permalink(ctx, ref.TargetSite, targetID)
	if errors.Is(err, ErrContentNotFound) {
		return "", nil
	}
	return link, err
}

// ResolvePending runs the second and last link pass. Every pending link is
// looked up again; upgraded links are rewritten in the written item and the
// body is saved once per item. Links still unresolved become notices.
func (c *LinkCodec) ResolvePending(ctx context.Context, b *Batch) error {
	order := b.pendingOrder
	pending := b.pending
	b.pendingOrder = nil
	b.pending = make(map[itemRef][]PendingLink)

	for _, ref := range order {
		links := pending[ref]

		targetID, ok := b.translation(ref)
		if !ok {
			b.AddNotice(Issue{Code: CodeMissingTranslationTarget, SourceID: ref.SourceID})
			continue
		}
		item, err := c.repo.Content(ctx, ref.TargetSite, targetID)
		if errors.Is(err, ErrContentNotFound) {
			b.AddNotice(Issue{Code: CodeMissingTranslationTarget, SourceID: ref.SourceID, TargetID: targetID})
			continue
		}
		if err != nil {
			return fmt.Errorf("loading %d: %w", targetID, err)
		}

		body := item.Body
		var left []string
		for _, l := range links {
			link, err := c.targetLink(ctx, ref, l.LinkedID)
			if err != nil {
				return err
			}
			if link == "" {
				left = append(left, l.Fallback)
				continue
			}
			body = rewriteHref(body, l.Fallback, link)
		}

		if body != item.Body {
			if err := c.repo.UpdateContent(ctx, ref.TargetSite, targetID, model.ContentPatch{Body: &body}); err != nil {
				b.AddError(Issue{Code: CodePostWriteFailed, SourceID: ref.SourceID, TargetID: targetID, Err: err})
				continue
			}
			c.logger.Debug("upgraded deferred links", "batch", b.ID, "target", targetID)
		}

		if len(left) > 0 {
			permalink, _ := c.repo.Permalink(ctx, ref.TargetSite, targetID)
			b.AddNotice(Issue{
				Code:     CodeSourceContentLinks,
				SourceID: ref.SourceID,
				TargetID: targetID,
				Title:    item.Title,
				URL:      permalink,
				Links:    left,
			})
		}
	}
	return nil
}

// rewriteHref points href attributes starting with from at to, keeping any
// query or fragment that follows.
func rewriteHref(body, from, to string) string {
	re := regexp.MustCompile(`href="` + regexp.QuoteMeta(from) + `(["?#])`)
	return re.ReplaceAllStringFunc(body, func(match string) string {
		return `href="` + to + match[len(match)-1:]
	})
}

// CountPlaceholders returns the number of link placeholders in body.
func CountPlaceholders(body string) int {
	return len(idTokenPattern.FindAllStringIndex(body, -1))
}
