package utils

import (
	"mime"
	"path/filepath"
	"strings"
)

// IsAllowedFileType checks the filename extension against the configured
// allowlist. An empty allowlist means no restrictions.
func IsAllowedFileType(filename string, allowedTypes []string) bool {
	if len(allowedTypes) == 0 {
		return true
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	if ext == "" {
		return false
	}

	for _, allowed := range allowedTypes {
		if strings.TrimPrefix(strings.ToLower(allowed), ".") == ext {
			return true
		}
	}
	return false
}

// DetectContentType guesses the MIME type from the filename extension.
func DetectContentType(filename string) string {
	mimeType := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename)))
	if mimeType == "" {
		return "application/octet-stream"
	}
	return mimeType
}
