package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Length limits, counted in characters.
const (
	MaxTagContentLength   = 20
	MaxFlagSourceLength   = 140
	MaxFreetContentLength = 140
	MaxUsernameLength     = 32
)

// Content validation errors. Services translate these into validation errors.
var (
	ErrBlank    = errors.New("must contain at least one non-whitespace character")
	ErrTooLong  = errors.New("exceeds maximum length")
	ErrBadChars = errors.New("contains invalid characters")
	ErrEncoding = errors.New("is not valid UTF-8")
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// ValidateTagContent checks a tag's content: valid UTF-8, 1-20 characters and not whitespace-only.
// Content is not trimmed or case-folded; tags are compared exactly.
func ValidateTagContent(content string) error {
	return validateText("tag content", content, MaxTagContentLength)
}

// ValidateFlagSource checks a flag's source text: 1-140 characters and not whitespace-only.
func ValidateFlagSource(source string) error {
	return validateText("flag source", source, MaxFlagSourceLength)
}

// ValidateFreetContent checks a freet's body: 1-140 characters and not whitespace-only.
func ValidateFreetContent(content string) error {
	return validateText("freet content", content, MaxFreetContentLength)
}

// ValidateUsername checks a username: 1-32 characters of letters, digits, or underscore.
func ValidateUsername(username string) error {
	if err := validateText("username", username, MaxUsernameLength); err != nil {
		return err
	}
	if !usernamePattern.MatchString(username) {
		return fmt.Errorf("username %w", ErrBadChars)
	}
	return nil
}

func validateText(field, s string, maxLen int) error {
	if !utf8.ValidString(s) {
		return fmt.Errorf("%s %w", field, ErrEncoding)
	}
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%s %w", field, ErrBlank)
	}
	if utf8.RuneCountInString(s) > maxLen {
		return fmt.Errorf("%s %w of %d characters", field, ErrTooLong, maxLen)
	}
	return nil
}
