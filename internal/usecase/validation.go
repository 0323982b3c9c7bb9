package usecase

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
)

// PlaceholderEmail is the "no address" sentinel several enquiry portals
// send. The feed mapper drops it before ingestion so it never becomes a
// dedup key; the gate below also refuses it when a caller hands it in
// directly, so it never receives a welcome email.
const PlaceholderEmail = "notprovided@gmail.com"

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var nonDigits = regexp.MustCompile(`\D`)

// ValidateLeadCandidate covers the manual-create path, which is stricter
// than webhook ingestion: a human typed this, so the core fields must exist.
func ValidateLeadCandidate(input IngestLeadInput) []ValidationError {
	var errs []ValidationError

	if strings.TrimSpace(input.Name) == "" {
		errs = append(errs, ValidationError{"name", "is required"})
	} else if len(input.Name) > 200 {
		errs = append(errs, ValidationError{"name", "must not exceed 200 characters"})
	}

	if strings.TrimSpace(input.Subject) == "" {
		errs = append(errs, ValidationError{"subject", "is required"})
	}

	if input.MobileNo == "" && input.Email == "" {
		errs = append(errs, ValidationError{"mobile_no", "mobile_no or email is required"})
	}

	if input.MobileNo != "" && !isValidMobile(input.MobileNo) {
		errs = append(errs, ValidationError{"mobile_no", "must be a valid mobile number"})
	}

	if input.Email != "" {
		if _, err := mail.ParseAddress(input.Email); err != nil {
			errs = append(errs, ValidationError{"email", "is invalid"})
		}
	}

	return errs
}

func isValidMobile(mobileNo string) bool {
	cleaned := nonDigits.ReplaceAllString(mobileNo, "")
	return len(cleaned) >= 10 && len(cleaned) <= 13
}

// isUsableEmail gates the welcome email: empty and sentinel addresses are
// skipped, everything else at least looks like an address.
func isUsableEmail(email string) bool {
	return email != "" && email != PlaceholderEmail && strings.Contains(email, "@")
}
