// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/olegiv/ocms-xliff/internal/i18n"
)

// ContextKeyLanguage holds the message language of the request.
const ContextKeyLanguage ContextKey = "language"

// LanguageCookieName is the cookie name for language preference.
const LanguageCookieName = "xliff_lang"

// Language creates middleware that selects the language of outcome messages.
// Priority order:
// 1. Query parameter ?lang=XX (also stored in the cookie)
// 2. Cookie preference
// 3. Accept-Language header
// 4. fallback
func Language(fallback string) func(http.Handler) http.Handler {
	if !i18n.IsSupported(fallback) {
		fallback = i18n.DefaultLanguage
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lang := fallback

			if q := r.URL.Query().Get("lang"); q != "" && i18n.IsSupported(q) {
				lang = strings.ToLower(q)
				SetLanguageCookie(w, lang)
			} else if cookie, err := r.Cookie(LanguageCookieName); err == nil && i18n.IsSupported(cookie.Value) {
				lang = strings.ToLower(cookie.Value)
			} else if accept := r.Header.Get("Accept-Language"); accept != "" {
				lang = i18n.MatchLanguage(accept)
			}

			ctx := context.WithValue(r.Context(), ContextKeyLanguage, lang)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetLanguage returns the language set by Language, or the default language.
func GetLanguage(r *http.Request) string {
	if lang, ok := r.Context().Value(ContextKeyLanguage).(string); ok {
		return lang
	}
	return i18n.DefaultLanguage
}

// SetLanguageCookie sets the language preference cookie.
func SetLanguageCookie(w http.ResponseWriter, langCode string) {
	http.SetCookie(w, &http.Cookie{
		Name:     LanguageCookieName,
		Value:    langCode,
		Path:     "/",
		MaxAge:   365 * 24 * 60 * 60, // 1 year
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
