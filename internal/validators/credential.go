// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package validators

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// PasswordMinLength is counted in characters.
	PasswordMinLength = 10

	// PasswordMaxBytes is the bcrypt input limit.
	PasswordMaxBytes = 72

	PhoneMaxLength       = 25
	DisplayNameMaxLength = 255

	passwordSpecials = "~!@#$%^&*()_+-=,."
)

var usernamePattern = regexp.MustCompile(`^[a-z0-9._-]+$`)

// NormalizeUsername trims and lower-cases raw and rejects anything outside
// [a-z0-9._-]. Any byte outside printable ASCII is rejected before the
// pattern is applied, so look-alike Unicode (soft hyphens, Cyrillic letters)
// never reaches storage.
func NormalizeUsername(raw string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if normalized == "" {
		return "", ErrEmptyUsername
	}

	for i := 0; i < len(normalized); i++ {
		if c := normalized[i]; c < 0x20 || c > 0x7e {
			return "", ErrInvalidUsername
		}
	}

	if !usernamePattern.MatchString(normalized) {
		return "", ErrInvalidUsername
	}

	return normalized, nil
}

// CanonicalUsername is the lookup form used for attempts and lockouts. Unlike
// NormalizeUsername it never fails, so malformed names are still counted.
func CanonicalUsername(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// CheckPasswordStrength reports whether secret has at least 10 characters,
// at most 72 bytes, and one each of upper-case, lower-case, digit and a
// character from ~!@#$%^&*()_+-=,.
func CheckPasswordStrength(secret string) bool {
	if utf8.RuneCountInString(secret) < PasswordMinLength || len(secret) > PasswordMaxBytes {
		return false
	}

	var upper, lower, digit, special bool
	for _, r := range secret {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		}
	}

	return upper && lower && digit && special
}

// ValidateDisplayName accepts nil (no name) or a non-blank name of bounded
// length.
func ValidateDisplayName(name *string) error {
	if name == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*name)
	if trimmed == "" || utf8.RuneCountInString(trimmed) > DisplayNameMaxLength {
		return ErrInvalidDisplayName
	}
	return nil
}

// ValidatePhone accepts nil (no phone) or at most 25 characters.
func ValidatePhone(phone *string) error {
	if phone == nil {
		return nil
	}
	if utf8.RuneCountInString(strings.TrimSpace(*phone)) > PhoneMaxLength {
		return ErrInvalidPhone
	}
	return nil
}
