package enums

import "fmt"

// CheckoutState tracks the linear order handoff lifecycle.
type CheckoutState string

const (
	CheckoutStateIdle       CheckoutState = "idle"
	CheckoutStateComposing  CheckoutState = "composing"
	CheckoutStateEncoded    CheckoutState = "encoded"
	CheckoutStateDispatched CheckoutState = "dispatched"
)

var validCheckoutStates = []CheckoutState{
	CheckoutStateIdle,
	CheckoutStateComposing,
	CheckoutStateEncoded,
	CheckoutStateDispatched,
}

// String implements fmt.Stringer.
func (s CheckoutState) String() string {
	return string(s)
}

// IsValid reports whether the value is a known CheckoutState.
func (s CheckoutState) IsValid() bool {
	for _, candidate := range validCheckoutStates {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseCheckoutState converts raw input into a CheckoutState.
func ParseCheckoutState(value string) (CheckoutState, error) {
	for _, candidate := range validCheckoutStates {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid checkout state %q", value)
}

// Next returns the state that follows s, or s itself once dispatched.
func (s CheckoutState) Next() CheckoutState {
	for i, candidate := range validCheckoutStates {
		if candidate == s && i+1 < len(validCheckoutStates) {
			return validCheckoutStates[i+1]
		}
	}
	return s
}
