// Package validation provides custom validation rules for the application.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/identity/internal/errors"
)

var (
	// emailRegex is a basic email validation pattern
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// Password policy violation codes.
const (
	CodePasswordTooShort                = "PasswordTooShort"
	CodePasswordRequiresUpper           = "PasswordRequiresUpper"
	CodePasswordRequiresLower           = "PasswordRequiresLower"
	CodePasswordRequiresDigit           = "PasswordRequiresDigit"
	CodePasswordRequiresNonAlphanumeric = "PasswordRequiresNonAlphanumeric"
	CodePasswordRequiresUniqueChars     = "PasswordRequiresUniqueChars"
)

// PasswordViolation is a single unmet password requirement.
type PasswordViolation struct {
	Code        string
	Description string
}

// PasswordPolicy validates password meets the configured requirements
type PasswordPolicy struct {
	MinLength              int
	RequireUpper           bool
	RequireLower           bool
	RequireDigit           bool
	RequireNonAlphanumeric bool
	RequiredUniqueChars    int
}

// Validate reports the first unmet requirement. It lets the policy be used as a validation.Rule.
func (p PasswordPolicy) Validate(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_password_strength", "password must be a string")
	}

	violations := p.Violations(s)
	if len(violations) == 0 {
		return nil
	}
	return validation.NewError("validation_"+strings.ToLower(violations[0].Code), violations[0].Description)
}

// Violations reports every unmet requirement, in a stable order.
func (p PasswordPolicy) Violations(s string) []PasswordViolation {
	var violations []PasswordViolation

	if utf8.RuneCountInString(s) < p.MinLength {
		violations = append(violations, PasswordViolation{
			Code:        CodePasswordTooShort,
			Description: fmt.Sprintf("Passwords must be at least %d characters.", p.MinLength),
		})
	}

	if p.RequireNonAlphanumeric && !hasNonAlphanumeric(s) {
		violations = append(violations, PasswordViolation{
			Code:        CodePasswordRequiresNonAlphanumeric,
			Description: "Passwords must have at least one non alphanumeric character.",
		})
	}

	if p.RequireDigit && !hasNumber(s) {
		violations = append(violations, PasswordViolation{
			Code:        CodePasswordRequiresDigit,
			Description: "Passwords must have at least one digit ('0'-'9').",
		})
	}

	if p.RequireLower && !hasLowerCase(s) {
		violations = append(violations, PasswordViolation{
			Code:        CodePasswordRequiresLower,
			Description: "Passwords must have at least one lowercase ('a'-'z').",
		})
	}

	if p.RequireUpper && !hasUpperCase(s) {
		violations = append(violations, PasswordViolation{
			Code:        CodePasswordRequiresUpper,
			Description: "Passwords must have at least one uppercase ('A'-'Z').",
		})
	}

	if p.RequiredUniqueChars > 1 && countUnique(s) < p.RequiredUniqueChars {
		violations = append(violations, PasswordViolation{
			Code:        CodePasswordRequiresUniqueChars,
			Description: fmt.Sprintf("Passwords must use at least %d different characters.", p.RequiredUniqueChars),
		})
	}

	return violations
}

// hasUpperCase checks if string contains uppercase letters
func hasUpperCase(s string) bool {
	for _, r := range s {
		if unicode.IsUpper(r) {
			return true
		}
	}
	return false
}

// hasLowerCase checks if string contains lowercase letters
func hasLowerCase(s string) bool {
	for _, r := range s {
		if unicode.IsLower(r) {
			return true
		}
	}
	return false
}

// hasNumber checks if string contains numbers
func hasNumber(s string) bool {
	for _, r := range s {
		if unicode.IsNumber(r) {
			return true
		}
	}
	return false
}

// hasNonAlphanumeric checks if string contains a rune that is neither a letter nor a digit
func hasNonAlphanumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

func countUnique(s string) int {
	seen := make(map[rune]struct{})
	for _, r := range s {
		seen[r] = struct{}{}
	}
	return len(seen)
}

// RoleName validates role names: 3 to 50 characters, no surrounding whitespace.
var RoleName = []validation.Rule{
	validation.Required,
	NotBlank,
	NoWhitespace,
	validation.RuneLength(3, 50),
}

// Email validates email format using regex
var Email = validation.NewStringRuleWithError(
	func(s string) bool {
		return emailRegex.MatchString(s)
	},
	validation.NewError("validation_email_format", "must be a valid email address"),
)

// NoWhitespace validates that string doesn't contain leading/trailing whitespace
var NoWhitespace = validation.NewStringRuleWithError(
	func(s string) bool {
		return s == strings.TrimSpace(s)
	},
	validation.NewError("validation_no_whitespace", "must not contain leading or trailing whitespace"),
)

// NotBlank validates that a string is not empty after trimming whitespace
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)
