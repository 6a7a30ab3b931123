package errors

import (
	"strings"
	"unicode"
)

// ValidateName validates an entity name (module, license, organization,
// product) for safety. It rejects names that could be used for path
// traversal or query injection:
//   - No empty names
//   - No control characters
//   - No path traversal sequences (.., //, \)
//   - No leading '$' (reserved by document stores)
//   - Maximum length of 256 characters
func ValidateName(kind, name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidInput, "%s name cannot be empty", kind)
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidInput, "%s name too long (max 256 characters)", kind)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "%s name contains invalid control characters", kind)
		}
	}

	for _, pattern := range []string{"..", "//", "\\"} {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidInput, "%s name contains invalid characters: %q", kind, pattern)
		}
	}

	if strings.HasPrefix(name, "$") {
		return New(ErrCodeInvalidInput, "%s name cannot start with '$'", kind)
	}

	return nil
}

// ValidateGavc validates an artifact identity key. A gavc needs at least a
// group-id and an artifact-id separated by ':' and at most five parts.
func ValidateGavc(gavc string) error {
	if err := ValidateName("artifact", gavc); err != nil {
		return err
	}

	parts := strings.Split(gavc, ":")
	if len(parts) < 2 || len(parts) > 5 {
		return New(ErrCodeInvalidGavc, "invalid gavc %q (expected groupId:artifactId[:version[:classifier[:extension]]])", gavc)
	}
	if parts[0] == "" || parts[1] == "" {
		return New(ErrCodeInvalidGavc, "invalid gavc %q: groupId and artifactId are required", gavc)
	}

	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}
