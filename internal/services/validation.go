package services

import (
	"regexp"
	"strings"

	"github.com/dmitrijs2005/vinony/internal/common"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// normalizeEmail is the form in which emails are stored and compared.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return common.NewValidationError("name", "is required")
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return common.NewValidationError("email", "is required")
	}
	if !emailRegex.MatchString(email) {
		return common.NewValidationError("email", "is malformed")
	}
	return nil
}

func validatePassword(password []byte) error {
	if len(password) < common.MinPasswordLength {
		return common.NewValidationError("password", "must be at least 6 characters")
	}
	return nil
}
