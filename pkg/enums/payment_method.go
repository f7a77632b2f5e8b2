package enums

import "fmt"

// PaymentMethod enumerates the settlement options offered in an order handoff.
type PaymentMethod string

const (
	PaymentMethodCashOnDelivery PaymentMethod = "cash_on_delivery"
	PaymentMethodOnlineTransfer PaymentMethod = "online_transfer"
	PaymentMethodWalletTransfer PaymentMethod = "wallet_transfer"
)

var validPaymentMethods = []PaymentMethod{
	PaymentMethodCashOnDelivery,
	PaymentMethodOnlineTransfer,
	PaymentMethodWalletTransfer,
}

// String implements fmt.Stringer.
func (p PaymentMethod) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentMethod.
func (p PaymentMethod) IsValid() bool {
	for _, candidate := range validPaymentMethods {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePaymentMethod converts raw input into a PaymentMethod.
func ParsePaymentMethod(value string) (PaymentMethod, error) {
	for _, candidate := range validPaymentMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment method %q", value)
}

// PaymentMethods returns the offered methods in display order.
func PaymentMethods() []PaymentMethod {
	out := make([]PaymentMethod, len(validPaymentMethods))
	copy(out, validPaymentMethods)
	return out
}

// Label returns the customer facing name of the method.
func (p PaymentMethod) Label() string {
	switch p {
	case PaymentMethodCashOnDelivery:
		return "Cash on Delivery"
	case PaymentMethodOnlineTransfer:
		return "Online Transfer (UPI / Bank)"
	case PaymentMethodWalletTransfer:
		return "In-app Wallet Transfer"
	}
	return string(p)
}
