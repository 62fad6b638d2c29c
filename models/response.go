package models

import "time"

// Machine-readable error kinds surfaced in APIError.Code.
const (
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeForbidden    = "FORBIDDEN"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeConflict     = "CONFLICT"
	ErrCodeInternal     = "INTERNAL"
)

type APIResponse struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Error     *APIError   `json:"error,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// SetPasswordRequest protects or unprotects a file. An empty password
// clears protection.
type SetPasswordRequest struct {
	Password string `json:"password"`
}

// SetViewLimitRequest sets or clears the view limit. A null viewLimit
// means unlimited.
type SetViewLimitRequest struct {
	ViewLimit *int `json:"viewLimit"`
}

type UploadResponse struct {
	Files     []UploadedFile `json:"files"`
	Skipped   []SkippedFile  `json:"skipped,omitempty"`
	TotalSize int64          `json:"totalSize"`
}

// SkippedFile reports an upload entry that was rejected without failing
// the whole batch.
type SkippedFile struct {
	OriginalName string `json:"originalName"`
	Reason       string `json:"reason"`
}

type ToggleHiddenResponse struct {
	Name        string  `json:"name"`
	IsHidden    bool    `json:"isHidden"`
	HiddenToken *string `json:"hiddenToken,omitempty"`
	ShareURL    *string `json:"shareUrl,omitempty"`
}
