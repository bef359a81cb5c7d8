// Package validation holds the format checks applied to member records.
package validation

import (
	"errors"
	"regexp"

	"github.com/go-playground/validator/v10"
)

var (
	ErrInvalidEmail = errors.New("invalid email address")
	ErrInvalidPhone = errors.New("invalid phone number")
)

// Messages returned to clients, keyed by the offending field.
const (
	MsgInvalidEmail = "It would appear that you haven't entered a valid email address!"
	MsgInvalidPhone = "Phone number is in an improper format. Please make sure the phone number is in the form xxx.xxx.xxxx"
)

var (
	phonePattern       = regexp.MustCompile(`^\d{3}\.\d{3}\.\d{4}$`)
	legacyEmailPattern = regexp.MustCompile(`^[a-z0-9]+[._]?[a-z0-9]+@\w+\.\w{2,3}$`)

	validate = validator.New()
)

// ValidateEmail accepts any syntactically valid address.
func ValidateEmail(email string) error {
	if err := validate.Var(email, "required,email"); err != nil {
		return ErrInvalidEmail
	}
	return nil
}

// ValidateLegacyEmail accepts only addresses matching the original roster
// pattern: a lowercase local part with at most one '.' or '_', and a single
// domain label followed by a 2-3 character TLD.
func ValidateLegacyEmail(email string) error {
	if !legacyEmailPattern.MatchString(email) {
		return ErrInvalidEmail
	}
	return nil
}

// ValidatePhone accepts only the dotted ddd.ddd.dddd form.
func ValidatePhone(phone string) error {
	if !phonePattern.MatchString(phone) {
		return ErrInvalidPhone
	}
	return nil
}

// EmailValidator selects between the conventional and legacy email checks.
type EmailValidator struct {
	Legacy bool
}

func (v EmailValidator) Validate(email string) error {
	if v.Legacy {
		return ValidateLegacyEmail(email)
	}
	return ValidateEmail(email)
}
