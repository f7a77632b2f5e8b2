package handoff

import (
	"strings"

	pkgerrors "github.com/freshbowl/storefront/pkg/errors"
)

// PhoneFormat describes the numbering plan of the destination country.
type PhoneFormat struct {
	CountryCode string
	LocalDigits int
	TrunkPrefix string
}

// IndiaPhoneFormat is +91 with ten digit local numbers and a 0 trunk prefix.
var IndiaPhoneFormat = PhoneFormat{CountryCode: "91", LocalDigits: 10, TrunkPrefix: "0"}

// NormalizePhone converts raw into the digits-only international form the
// messaging channel expects.
//
//	"09812345678"      -> "919812345678"
//	"9812345678"       -> "919812345678"
//	"+91 98123 45678"  -> "919812345678"
func NormalizePhone(raw string, format PhoneFormat) (string, error) {
	digits := digitsOnly(raw)
	if digits == "" {
		return "", pkgerrors.New(pkgerrors.CodeMissingRequiredField, "a phone number is required").
			WithDetails(map[string]any{"field": "phone"})
	}
	switch {
	case format.TrunkPrefix != "" && strings.HasPrefix(digits, format.TrunkPrefix):
		digits = format.CountryCode + strings.TrimPrefix(digits, format.TrunkPrefix)
	case len(digits) == format.LocalDigits:
		digits = format.CountryCode + digits
	}
	return digits, nil
}

func digitsOnly(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
