package users

import (
	"fmt"
	"strings"
)

const (
	minUsernameLength = 3
	maxUsernameLength = 39
)

// ValidateEmailFormat checks login email shape before any store lookup
func ValidateEmailFormat(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("email is required")
	}

	// Basic email format validation
	if !strings.Contains(email, "@") || !strings.Contains(email, ".") {
		return fmt.Errorf("invalid email format")
	}

	if strings.ContainsAny(email, " \n\r\t") {
		return fmt.Errorf("email contains invalid characters")
	}

	return nil
}

// ValidateUsernameFormat checks username shape and length
func ValidateUsernameFormat(username string) error {
	if username != strings.TrimSpace(username) {
		return fmt.Errorf("username must not contain leading/trailing whitespace")
	}
	if len(username) < minUsernameLength {
		return fmt.Errorf("username must be at least %d characters", minUsernameLength)
	}
	if len(username) > maxUsernameLength {
		return fmt.Errorf("username must be at most %d characters", maxUsernameLength)
	}

	for _, r := range username {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '-' || r == '_':
		default:
			return fmt.Errorf("username contains invalid character %q", r)
		}
	}

	return nil
}
