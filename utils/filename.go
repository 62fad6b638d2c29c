package utils

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

var (
	whitespacePattern = regexp.MustCompile(`\s+`)
	unsafePattern     = regexp.MustCompile(`[^A-Za-z0-9_.-]`)
	underscoreRuns    = regexp.MustCompile(`_{2,}`)
)

// SanitizeFilename reduces a user-supplied name to a safe character
// subset: no path separators, traversal sequences, or control characters.
// Returns an empty string when nothing usable remains.
func SanitizeFilename(name string) string {
	// Strip any directory component, regardless of separator style.
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(name)

	name = whitespacePattern.ReplaceAllString(name, "_")
	name = unsafePattern.ReplaceAllString(name, "")
	name = underscoreRuns.ReplaceAllString(name, "_")

	// Leading dots would produce hidden or traversal-looking names.
	name = strings.TrimLeft(name, ".")
	name = strings.Trim(name, "_-")

	if name == "." || name == ".." {
		return ""
	}
	return name
}

// DeriveStoredName builds the on-disk name for an upload: sanitized stem,
// millisecond creation timestamp, normalized lowercase extension. The
// timestamp keeps concurrent uploads of the same display name from
// colliding.
func DeriveStoredName(displayName string, now time.Time) string {
	safe := SanitizeFilename(displayName)

	ext := filepath.Ext(safe)
	stem := strings.TrimSuffix(safe, ext)
	ext = strings.ToLower(ext)

	if stem == "" {
		stem = "file"
	}

	return fmt.Sprintf("%s_%d%s", stem, now.UnixMilli(), ext)
}

// DisplayNameFromStored strips the trailing _<digits> timestamp segment
// from a stored name. Presentation only; never an authorization input.
func DisplayNameFromStored(storedName string) string {
	ext := filepath.Ext(storedName)
	stem := strings.TrimSuffix(storedName, ext)

	if i := strings.LastIndex(stem, "_"); i >= 0 && isDigits(stem[i+1:]) {
		stem = stem[:i]
	}

	return stem + ext
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
