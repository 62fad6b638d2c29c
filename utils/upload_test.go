package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsAllowedFileType(t *testing.T) {
	allowed := []string{"jpg", "pdf", "txt"}

	assert.True(t, IsAllowedFileType("photo.jpg", allowed))
	assert.True(t, IsAllowedFileType("photo.JPG", allowed))
	assert.True(t, IsAllowedFileType("report.pdf", allowed))
	assert.False(t, IsAllowedFileType("script.sh", allowed))
	assert.False(t, IsAllowedFileType("noextension", allowed))

	// Empty allowlist means no restrictions.
	assert.True(t, IsAllowedFileType("anything.bin", nil))
}

func TestDetectContentType(t *testing.T) {
	assert.Equal(t, "application/pdf", DetectContentType("report_1700000000000.pdf"))
	assert.Equal(t, "image/jpeg", DetectContentType("photo.jpg"))
	assert.Equal(t, "application/octet-stream", DetectContentType("blob.unknownext"))
	assert.Equal(t, "application/octet-stream", DetectContentType("noextension"))
}
