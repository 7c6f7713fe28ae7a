package middleware

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Input validation and sanitization utilities

var allowedImageExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// ValidateImageUpload checks the uploaded file name and declared type.
// The content itself is validated by decoding.
func ValidateImageUpload(filename, contentType string) error {
	if strings.TrimSpace(filename) == "" {
		return fmt.Errorf("file name cannot be empty")
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedImageExt[ext] {
		return fmt.Errorf("invalid file type: %q (allowed: jpg, jpeg, png, webp)", ext)
	}
	if contentType != "" && contentType != "application/octet-stream" && !strings.HasPrefix(contentType, "image/") {
		return fmt.Errorf("invalid content type: %s", contentType)
	}
	return nil
}

// SanitizeString removes dangerous characters from strings
func SanitizeString(input string) string {
	// Remove null bytes
	input = strings.ReplaceAll(input, "\x00", "")

	// Remove control characters
	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' {
			result.WriteRune(r)
		}
	}

	return strings.TrimSpace(result.String())
}

// ValidateLimit clamps the history limit. 0 means the whole log.
func ValidateLimit(limit int) int {
	if limit <= 0 {
		return 0
	}
	if limit > 1000 {
		return 1000 // max limit
	}
	return limit
}
