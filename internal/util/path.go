// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/mozillazg/go-unidecode"
)

var (
	unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)
	repeatedSeparators  = regexp.MustCompile(`[-_]{2,}`)
)

// SanitizeFilename turns name into a portable file name: directory parts
// are dropped, text is transliterated to ASCII and every character outside
// [A-Za-z0-9._-] becomes a hyphen.
func SanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == ".." || name == "/" {
		return ""
	}

	name = unidecode.Unidecode(name)
	name = unsafeFilenameChars.ReplaceAllString(name, "-")
	name = repeatedSeparators.ReplaceAllStringFunc(name, func(s string) string {
		if strings.Contains(s, "_") {
			return "_"
		}
		return "-"
	})
	return strings.Trim(name, "-.")
}

// ValidatePathWithinBase ensures that a resolved path is within the expected
// base directory.
func ValidatePathWithinBase(basePath, targetPath string) error {
	absBase, err := filepath.Abs(filepath.Clean(basePath))
	if err != nil {
		return fmt.Errorf("invalid base path: %w", err)
	}

	absTarget, err := filepath.Abs(filepath.Clean(targetPath))
	if err != nil {
		return fmt.Errorf("invalid target path: %w", err)
	}

	// Trailing separator so /exports-other does not match /exports
	if absTarget != absBase && !strings.HasPrefix(absTarget, absBase+string(filepath.Separator)) {
		return fmt.Errorf("path traversal detected: path escapes base directory")
	}

	return nil
}

// SafeJoinPath joins path components and validates the result is within
// the base directory.
func SafeJoinPath(basePath string, components ...string) (string, error) {
	fullPath := filepath.Join(append([]string{basePath}, components...)...)
	if err := ValidatePathWithinBase(basePath, fullPath); err != nil {
		return "", err
	}
	return fullPath, nil
}
