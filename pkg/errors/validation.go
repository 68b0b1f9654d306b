package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidateVarietyName validates a variety name for safety and correctness.
// Names end up in file names, cache keys, and store documents, so the rules
// are intentionally conservative:
//   - No empty names
//   - No control characters
//   - No path traversal sequences (.., //, etc.)
//   - No null bytes
//   - Maximum length of 128 characters
func ValidateVarietyName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidVariety, "variety name cannot be empty")
	}

	if len(name) > 128 {
		return New(ErrCodeInvalidVariety, "variety name too long (max 128 characters)")
	}

	// Check for control characters and null bytes
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidVariety, "variety name contains invalid control characters")
		}
	}

	// Check for path traversal patterns
	dangerousPatterns := []string{
		"..",   // Parent directory
		"//",   // Double slash
		"\x00", // Null byte
		"\\",   // Backslash (Windows path)
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidVariety, "variety name contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// ValidateCatalogFilename validates a catalog filename for safety.
// It ensures the filename is a simple basename without path components.
func ValidateCatalogFilename(filename string) error {
	if filename == "" {
		return New(ErrCodeInvalidCatalog, "catalog filename cannot be empty")
	}

	// Must be a simple filename, not a path
	if strings.ContainsAny(filename, "/\\") {
		return New(ErrCodeInvalidCatalog, "catalog filename cannot contain path separators")
	}

	// No hidden files (starting with .)
	if strings.HasPrefix(filename, ".") {
		return New(ErrCodeInvalidCatalog, "catalog filename cannot be a hidden file")
	}

	return nil
}

// ValidateDimensions validates garden dimensions.
// Both sides must be positive and small enough that the placement search
// stays tractable.
func ValidateDimensions(width, height float64) error {
	if width <= 0 || height <= 0 {
		return New(ErrCodeInvalidInput, "garden dimensions must be positive, got %gx%g", width, height)
	}

	const maxSide = 1000
	if width > maxSide || height > maxSide {
		return New(ErrCodeInvalidInput, "garden dimensions too large (max %d per side)", maxSide)
	}

	return nil
}

// ValidateOutputPath validates an output file path for safety.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..)
func ValidateOutputPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	// Check for null bytes and control characters
	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	// Check for path traversal
	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	return nil
}

// redisAddrRegex matches host:port addresses accepted for the redis backend.
var redisAddrRegex = regexp.MustCompile(`^[a-zA-Z0-9.-]+:[0-9]{1,5}$`)

// ValidateRedisAddr validates a redis address of the form host:port.
func ValidateRedisAddr(addr string) error {
	if addr == "" {
		return New(ErrCodeInvalidConfig, "redis address cannot be empty")
	}

	if !redisAddrRegex.MatchString(addr) {
		return New(ErrCodeInvalidConfig, "invalid redis address: %q (expected host:port)", addr)
	}

	return nil
}

// ValidateMongoURI validates a MongoDB connection string scheme.
func ValidateMongoURI(uri string) error {
	if uri == "" {
		return New(ErrCodeInvalidConfig, "mongo URI cannot be empty")
	}

	if !strings.HasPrefix(uri, "mongodb://") && !strings.HasPrefix(uri, "mongodb+srv://") {
		return New(ErrCodeInvalidConfig, "mongo URI must use mongodb or mongodb+srv scheme")
	}

	return nil
}
