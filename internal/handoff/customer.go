package handoff

import (
	"strings"

	"github.com/freshbowl/storefront/pkg/types"
)

const notProvided = "Not provided"

// Customer carries the delivery details collected at checkout.
type Customer struct {
	Name      string        `json:"name" validate:"omitempty,max=120"`
	FirstName string        `json:"first_name" validate:"omitempty,max=60"`
	LastName  string        `json:"last_name" validate:"omitempty,max=60"`
	Email     string        `json:"email" validate:"omitempty,email"`
	Phone     string        `json:"phone" validate:"omitempty,max=20"`
	Address   types.Address `json:"address"`
	Notes     string        `json:"notes,omitempty" validate:"omitempty,max=500"`
}

// DisplayName falls back from the full name to first plus last name, then
// to "Customer".
func (c Customer) DisplayName() string {
	if name := strings.TrimSpace(c.Name); name != "" {
		return name
	}
	joined := strings.TrimSpace(strings.TrimSpace(c.FirstName) + " " + strings.TrimSpace(c.LastName))
	if joined != "" {
		return joined
	}
	return "Customer"
}

func orPlaceholder(v string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return notProvided
}
