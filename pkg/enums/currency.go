package enums

import "fmt"

// Currency is the single denomination the storefront sells in.
type Currency string

const (
	CurrencyINR Currency = "INR"
)

var validCurrencys = []Currency{
	CurrencyINR,
}

// String implements fmt.Stringer.
func (c Currency) String() string {
	return string(c)
}

// IsValid reports whether the value is a known Currency.
func (c Currency) IsValid() bool {
	for _, candidate := range validCurrencys {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCurrency converts raw input into a Currency.
func ParseCurrency(value string) (Currency, error) {
	for _, candidate := range validCurrencys {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid currency %q", value)
}

// Symbol returns the display prefix for amounts in this currency.
func (c Currency) Symbol() string {
	switch c {
	case CurrencyINR:
		return "₹"
	}
	return string(c) + " "
}
