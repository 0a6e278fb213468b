// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for the XLIFF endpoints.
package middleware

// ContextKey is the type of request context keys set by this package.
type ContextKey string
