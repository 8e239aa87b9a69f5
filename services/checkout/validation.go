package checkout

import (
	"regexp"
	"strings"

	"mariiahub/models"
)

var (
	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	phonePattern = regexp.MustCompile(`^\+?[0-9]{9,15}$`)
)

// validateDetails checks the details step's mandatory fields. It collects
// every failing field rather than stopping at the first one.
func validateDetails(details models.CustomerDetails) *ValidationError {
	fields := make(map[string]string)

	if strings.TrimSpace(details.Name) == "" {
		fields["name"] = "name is required"
	}

	email := strings.TrimSpace(details.Email)
	if email == "" {
		fields["email"] = "email is required"
	} else if !emailPattern.MatchString(email) {
		fields["email"] = "email is not well-formed"
	}

	phone := normalizePhone(details.Phone)
	if phone == "" {
		fields["phone"] = "phone is required"
	} else if !phonePattern.MatchString(phone) {
		fields["phone"] = "phone is not well-formed"
	}

	if !details.TermsAccepted {
		fields["termsAccepted"] = "terms must be accepted"
	}
	if !details.PrivacyAccepted {
		fields["privacyAccepted"] = "privacy policy must be accepted"
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// normalizePhone strips the separators people type into phone numbers.
func normalizePhone(phone string) string {
	replacer := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "")
	return replacer.Replace(strings.TrimSpace(phone))
}
