package types

import "strings"

// Address is a delivery address as entered by the shopper at checkout.
type Address struct {
	Line1      string `json:"line1" validate:"omitempty,max=200"`
	Line2      string `json:"line2,omitempty" validate:"omitempty,max=200"`
	Landmark   string `json:"landmark,omitempty" validate:"omitempty,max=120"`
	City       string `json:"city" validate:"omitempty,max=80"`
	State      string `json:"state" validate:"omitempty,max=80"`
	PostalCode string `json:"postal_code" validate:"omitempty,numeric,len=6"`
}

// Missing lists the required fields that are blank, in display order.
func (a Address) Missing() []string {
	var missing []string
	if strings.TrimSpace(a.Line1) == "" {
		missing = append(missing, "line1")
	}
	if strings.TrimSpace(a.City) == "" {
		missing = append(missing, "city")
	}
	if strings.TrimSpace(a.State) == "" {
		missing = append(missing, "state")
	}
	if strings.TrimSpace(a.PostalCode) == "" {
		missing = append(missing, "postal_code")
	}
	return missing
}

// IsComplete reports whether every required field is present.
func (a Address) IsComplete() bool {
	return len(a.Missing()) == 0
}

// Lines renders the address one line per populated field.
func (a Address) Lines() []string {
	lines := make([]string, 0, 4)
	for _, part := range []string{a.Line1, a.Line2, a.Landmark} {
		if p := strings.TrimSpace(part); p != "" {
			lines = append(lines, p)
		}
	}
	city := strings.TrimSpace(a.City)
	state := strings.TrimSpace(a.State)
	pin := strings.TrimSpace(a.PostalCode)
	tail := strings.TrimSpace(strings.Join(nonEmpty(city, state), ", "))
	if pin != "" {
		tail = strings.TrimSpace(tail + " - " + pin)
	}
	if tail != "" {
		lines = append(lines, tail)
	}
	return lines
}

func nonEmpty(values ...string) []string {
	out := values[:0:0]
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
