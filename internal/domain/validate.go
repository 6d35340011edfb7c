package domain

import (
	"strings"
	"unicode/utf8"
)

// MinPhoneLength is a length heuristic, not a format check.
const MinPhoneLength = 8

// ValidateClaim trims and checks the guest input of a claim.
func ValidateClaim(name, phone string) (string, string, error) {
	name = strings.TrimSpace(name)
	phone = strings.TrimSpace(phone)

	if name == "" {
		return name, phone, &ValidationError{
			Field:  "name",
			Reason: "please tell us your name so the couple knows who the gift is from",
		}
	}
	if phone == "" || utf8.RuneCountInString(phone) < MinPhoneLength {
		return name, phone, &ValidationError{
			Field:  "phone",
			Reason: "please enter a valid phone number",
		}
	}
	return name, phone, nil
}

// ValidateItemName checks the name of a gift about to be added.
func ValidateItemName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return name, &ValidationError{Field: "name", Reason: "gift name is required"}
	}
	return name, nil
}
