package identity

import (
	"errors"
	"strings"
)

const (
	// MinPhoneDigits is the shortest local phone number the console accepts.
	MinPhoneDigits = 8
	// MinPasswordLength is enforced before a password is sent upstream.
	MinPasswordLength = 6
)

var (
	ErrCountryCode      = errors.New("country code must start with +")
	ErrPhoneTooShort    = errors.New("phone number must be at least 8 digits")
	ErrPasswordTooShort = errors.New("password must be at least 6 characters long")
	ErrPasswordMismatch = errors.New("passwords do not match")
)

// FormatPhone validates a country code and local number and joins them in
// the "+<code> <digits>" form the lending API stores, e.g. "+31 615957803".
// Non-digit characters are stripped from both parts first.
func FormatPhone(countryCode, number string) (string, error) {
	code := strings.TrimSpace(countryCode)
	if !strings.HasPrefix(code, "+") {
		return "", ErrCountryCode
	}
	code = "+" + digitsOnly(code[1:])
	if code == "+" {
		return "", ErrCountryCode
	}

	local := digitsOnly(number)
	if len(local) < MinPhoneDigits {
		return "", ErrPhoneTooShort
	}
	return code + " " + local, nil
}

// CheckPassword applies the console's local password rules.
func CheckPassword(password, confirm string) error {
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if password != confirm {
		return ErrPasswordMismatch
	}
	return nil
}

func digitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
