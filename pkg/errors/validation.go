package errors

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// ValidateName validates a distribution, module or maintainer name received
// from user input before it reaches the catalog or the registry.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - No path traversal sequences (.., //, etc.)
//   - Maximum length of 256 characters
func ValidateName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidName, "name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidName, "name too long (max 256 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidName, "name contains invalid control characters")
		}
	}

	dangerousPatterns := []string{
		"..",   // Parent directory
		"//",   // Double slash
		"\x00", // Null byte
		"\\",   // Backslash (Windows path)
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidName, "name contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// moduleNameRegex matches Perl module and distribution names in either the
// "::" or the "-" separated form (e.g. "Foo::Bar", "Foo-Bar", "Foo::Bar2").
var moduleNameRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*((::|-|')[A-Za-z0-9_]+)*$`)

// ValidateModuleName validates a Perl module or distribution name.
func ValidateModuleName(name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}

	if !moduleNameRegex.MatchString(name) {
		return New(ErrCodeInvalidName, "invalid module name: %q", name)
	}

	return nil
}

// maintainerIDRegex matches registry handles: uppercase letters and digits.
var maintainerIDRegex = regexp.MustCompile(`^[A-Z][A-Z0-9]*$`)

// ValidateMaintainerID validates a registry maintainer handle (e.g. "GRANTM").
// Lowercase input is rejected; callers should upper-case user input first.
func ValidateMaintainerID(id string) error {
	if err := ValidateName(id); err != nil {
		return err
	}

	if !maintainerIDRegex.MatchString(id) {
		return New(ErrCodeInvalidName, "invalid maintainer id: %q", id)
	}

	return nil
}

// ParseCoordinate parses a user-supplied grid coordinate. Decimal values
// are accepted as-is and hexadecimal values require a "0x" prefix, matching
// how the map data file encodes them.
func ParseCoordinate(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, New(ErrCodeInvalidCoordinate, "coordinate cannot be empty")
	}

	base := 10
	digits := s
	if rest, ok := strings.CutPrefix(strings.ToLower(s), "0x"); ok {
		base = 16
		digits = rest
	}

	n, err := strconv.ParseInt(digits, base, 32)
	if err != nil {
		return 0, Wrap(ErrCodeInvalidCoordinate, err, "invalid coordinate %q", s)
	}
	if n < 0 {
		return 0, New(ErrCodeInvalidCoordinate, "coordinate must not be negative: %q", s)
	}
	return int(n), nil
}

// ValidatePath validates a file path supplied for the map data file.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}
