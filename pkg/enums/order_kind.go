package enums

import "fmt"

// OrderKind selects the handoff message template. It is decided once per order.
type OrderKind string

const (
	OrderKindRegular      OrderKind = "regular"
	OrderKindSubscription OrderKind = "subscription"
)

var validOrderKinds = []OrderKind{
	OrderKindRegular,
	OrderKindSubscription,
}

// String implements fmt.Stringer.
func (k OrderKind) String() string {
	return string(k)
}

// IsValid reports whether the value is a known OrderKind.
func (k OrderKind) IsValid() bool {
	for _, candidate := range validOrderKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParseOrderKind converts raw input into a OrderKind.
func ParseOrderKind(value string) (OrderKind, error) {
	for _, candidate := range validOrderKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order kind %q", value)
}
