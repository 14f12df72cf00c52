package validation

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
)

var (
	// ErrInvalidInput indicates the input failed validation
	ErrInvalidInput = errors.New("invalid input")

	// Table and column names are spliced into SQL, so only plain identifiers
	// pass. A single schema qualifier is allowed.
	identRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,62}(\.[A-Za-z_][A-Za-z0-9_]{0,62})?$`)
)

// SanitizeString removes potentially dangerous characters and trims whitespace
func SanitizeString(input string) string {
	input = strings.TrimSpace(input)
	input = strings.ReplaceAll(input, "\x00", "")

	var builder strings.Builder
	for _, r := range input {
		if !unicode.IsControl(r) {
			builder.WriteRune(r)
		}
	}

	return builder.String()
}

// ValidateIdentifier checks a table or column name before it is used in a query.
func ValidateIdentifier(kind, name string) error {
	if name == "" {
		return fmt.Errorf("%w: %s name cannot be empty", ErrInvalidInput, kind)
	}
	if !identRegex.MatchString(name) {
		return fmt.Errorf("%w: %s %q is not a plain identifier", ErrInvalidInput, kind, name)
	}
	return nil
}

// ValidateFileName checks a dataset or artifact name that is joined onto a
// configured directory. It must not escape that directory.
func ValidateFileName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: file name cannot be empty", ErrInvalidInput)
	}
	if filepath.IsAbs(name) {
		return fmt.Errorf("%w: file name %q must be relative", ErrInvalidInput, name)
	}
	clean := filepath.Clean(name)
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return fmt.Errorf("%w: file name %q leaves its directory", ErrInvalidInput, name)
	}
	return nil
}

// NormalizeTopic cleans a client supplied topic name. Topics are short lower
// case words separated by underscores.
func NormalizeTopic(raw string) (string, error) {
	topic := strings.ToLower(SanitizeString(raw))
	if topic == "" {
		return "", fmt.Errorf("%w: topic cannot be empty", ErrInvalidInput)
	}
	if len(topic) > 64 {
		return "", fmt.Errorf("%w: topic must not exceed 64 characters", ErrInvalidInput)
	}
	for _, r := range topic {
		if r != '_' && (r < 'a' || r > 'z') {
			return "", fmt.Errorf("%w: topic %q has invalid characters", ErrInvalidInput, topic)
		}
	}
	return topic, nil
}
