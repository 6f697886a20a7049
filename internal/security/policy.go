package security

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/BBMRI-cz/fhir-place/internal/models"
)

// ValidatePassword runs every rule of the policy and collects one message
// per violated rule, in a fixed order.
func ValidatePassword(password string, req models.PasswordRequirements) models.PasswordValidationResult {
	errs := make([]string, 0, 6)
	length := utf8.RuneCountInString(password)

	if length < req.MinLength {
		errs = append(errs, fmt.Sprintf("Password must be at least %d characters long", req.MinLength))
	}
	if length > req.MaxLength {
		errs = append(errs, fmt.Sprintf("Password must be no more than %d characters long", req.MaxLength))
	}
	if req.RequireUppercase && !containsRange(password, 'A', 'Z') {
		errs = append(errs, "Password must contain at least one uppercase letter")
	}
	if req.RequireLowercase && !containsRange(password, 'a', 'z') {
		errs = append(errs, "Password must contain at least one lowercase letter")
	}
	if req.RequireNumbers && !containsRange(password, '0', '9') {
		errs = append(errs, "Password must contain at least one number")
	}
	if req.RequireSpecialChars && !strings.ContainsAny(password, req.SpecialChars) {
		errs = append(errs, fmt.Sprintf("Password must contain at least one special character (%s)", req.SpecialChars))
	}

	return models.PasswordValidationResult{
		IsValid:      len(errs) == 0,
		Errors:       errs,
		Requirements: req,
	}
}

// DescribeRequirements renders a one-line summary for forms, e.g.
// "Password must contain 8-128 characters, uppercase letter and number".
func DescribeRequirements(req models.PasswordRequirements) string {
	parts := []string{fmt.Sprintf("%d-%d characters", req.MinLength, req.MaxLength)}
	if req.RequireUppercase {
		parts = append(parts, "uppercase letter")
	}
	if req.RequireLowercase {
		parts = append(parts, "lowercase letter")
	}
	if req.RequireNumbers {
		parts = append(parts, "number")
	}
	if req.RequireSpecialChars {
		parts = append(parts, "special character")
	}

	if len(parts) == 1 {
		return "Password must be " + parts[0]
	}
	return "Password must contain " + strings.Join(parts[:len(parts)-1], ", ") + " and " + parts[len(parts)-1]
}

func containsRange(s string, lo, hi rune) bool {
	for _, r := range s {
		if r >= lo && r <= hi {
			return true
		}
	}
	return false
}
